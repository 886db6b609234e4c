package submission

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
)

var (
	// errors
	ErrNotFound           = errors.New("submission not found")
	ErrAssignmentNotFound = errors.New("Assignment not found")
	ErrStudentNotFound    = errors.New("Student not found")
	ErrNotEnrolled        = errors.New("Student is not enrolled in this assignment's course")
)

type (
	Repository interface {
		// CheckReferences returns ErrAssignmentNotFound, ErrStudentNotFound or ErrNotEnrolled.
		CheckReferences(ctx context.Context, assignmentID, studentID int) error
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id int) (Row, error)
		// QuerySubmissions applies AND operation on available QueryFilter fields.
		QuerySubmissions(ctx context.Context, filter QueryFilter) ([]Row, error)
		UpdateGrade(ctx context.Context, id int, grade null.Float64) error
		DeleteSubmission(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckSubmittable(ctx context.Context, assignmentID, studentID int) error {
	if err := svc.repo.CheckReferences(ctx, assignmentID, studentID); err != nil {
		switch err {
		case ErrAssignmentNotFound:
			return core.NewValidationError(err, core.FieldError{Field: "assignment_id", Error: err.Error()})
		case ErrStudentNotFound, ErrNotEnrolled:
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubmission) (Submission, error) {
	s := ns.toSubmission()
	s.SubmittedAt = time.Now().UTC()
	return svc.repo.CreateSubmission(ctx, s)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Row, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Row, error) {
	filter.Clean()
	return svc.repo.QuerySubmissions(ctx, filter)
}

func (svc *Service) Grade(ctx context.Context, id int, us UpdateSubmission) error {
	return svc.repo.UpdateGrade(ctx, id, parseGrade(us.Grade))
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSubmission(ctx, id)
}
