package review

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/lmsadmin/core"
)

var (
	// errors
	ErrNotFound        = errors.New("review not found")
	ErrCourseNotFound  = errors.New("Course not found")
	ErrStudentNotFound = errors.New("Student not found")
	ErrNotEnrolled     = errors.New("Student must be enrolled in this course to review it")
	ErrAlreadyReviewed = errors.New("Student has already reviewed this course")
)

type (
	Repository interface {
		// CheckReferences returns ErrCourseNotFound or ErrStudentNotFound.
		CheckReferences(ctx context.Context, courseID, studentID int) error
		IsEnrolled(ctx context.Context, courseID, studentID int) (bool, error)
		// CheckNotReviewed returns ErrAlreadyReviewed if the student already reviewed the course.
		CheckNotReviewed(ctx context.Context, courseID, studentID int) error
		// CreateReview returns ErrNotEnrolled or ErrAlreadyReviewed when the database refuses the row.
		CreateReview(ctx context.Context, r Review) (Review, error)
		GetReviewByID(ctx context.Context, id int) (Row, error)
		// QueryReviews applies AND operation on available QueryFilter fields.
		QueryReviews(ctx context.Context, filter QueryFilter) ([]Row, error)
		GetStats(ctx context.Context) (Stats, error)
		DeleteReview(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func fieldErr(err error) error {
	var field string
	switch err {
	case ErrCourseNotFound, ErrAlreadyReviewed:
		field = "course_id"
	case ErrStudentNotFound, ErrNotEnrolled:
		field = "student_id"
	default:
		return err
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// CheckReviewable returns a *core.ValidationError unless the student is enrolled in the course
// and has not reviewed it yet.
func (svc *Service) CheckReviewable(ctx context.Context, courseID, studentID int) error {
	if err := svc.repo.CheckReferences(ctx, courseID, studentID); err != nil {
		return fieldErr(err)
	}
	enrolled, err := svc.repo.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	if !enrolled {
		return fieldErr(ErrNotEnrolled)
	}
	if err = svc.repo.CheckNotReviewed(ctx, courseID, studentID); err != nil {
		return fieldErr(err)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nr NewReview) (Review, error) {
	r := nr.toReview()
	r.CreatedAt = time.Now().UTC()
	r, err := svc.repo.CreateReview(ctx, r)
	if err != nil {
		return Review{}, fieldErr(err)
	}
	return r, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Row, error) {
	return svc.repo.GetReviewByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Row, error) {
	filter.Clean()
	return svc.repo.QueryReviews(ctx, filter)
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	return svc.repo.GetStats(ctx)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteReview(ctx, id)
}
