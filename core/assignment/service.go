package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/lmsadmin/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound       = errors.New("assignment not found")
	ErrCourseNotFound = errors.New("Course not found")

	deleteGuardMessage = "Cannot delete assignment with existing submissions."
)

type (
	Repository interface {
		CheckCourse(ctx context.Context, courseID int) error // ErrCourseNotFound
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Row, error)
		// QueryAssignments applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of the title or description.
		QueryAssignments(ctx context.Context, filter QueryFilter) ([]Row, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		CountSubmissions(ctx context.Context, id int) (int, error)
		DeleteAssignment(ctx context.Context, id int) error

		GetSubmissionStats(ctx context.Context, id int) (Stats, error)
		QueryAssignmentSubmissions(ctx context.Context, id int) ([]Submission, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckCourse(ctx context.Context, courseID int) error {
	if err := svc.repo.CheckCourse(ctx, courseID); err != nil {
		if err == ErrCourseNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "course_id", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	return svc.repo.CreateAssignment(ctx, na.toAssignment())
}

func (svc *Service) GetByID(ctx context.Context, id int) (Row, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Row, error) {
	filter.Clean()
	return svc.repo.QueryAssignments(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, na NewAssignment) (Assignment, error) {
	a := na.toAssignment()
	a.ID = id
	return svc.repo.UpdateAssignment(ctx, a)
}

// Delete removes an assignment without submissions.
func (svc *Service) Delete(ctx context.Context, id int) error {
	n, err := svc.repo.CountSubmissions(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return core.NewIntegrityError(deleteGuardMessage)
	}
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *Service) Detail(ctx context.Context, row Row) (Detail, error) {
	var err error
	d := Detail{Row: row, IsOverdue: row.IsOverdue(NowFunc().UTC())}
	if d.Stats, err = svc.repo.GetSubmissionStats(ctx, row.ID); err != nil {
		return Detail{}, err
	}
	if d.Submissions, err = svc.repo.QueryAssignmentSubmissions(ctx, row.ID); err != nil {
		return Detail{}, err
	}
	return d, nil
}
