package course

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/lmsadmin/core"
)

// RecentStudentsLimit is the number of students shown on a course page.
const RecentStudentsLimit = 10

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrCategoryNotFound   = errors.New("Category not found")
	ErrInstructorNotFound = errors.New("Instructor not found")

	deleteGuardMessage = "Cannot delete course with existing enrollments, assignments, or reviews."
)

type (
	Repository interface {
		// CheckReferences returns ErrCategoryNotFound or ErrInstructorNotFound.
		// The instructor must hold the instructor role.
		CheckReferences(ctx context.Context, categoryID, instructorID int) error
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourseByID(ctx context.Context, id int) (Row, error)
		// QueryCourses applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Course.Title or Course.Description.
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Row, error)
		QueryAllCourses(ctx context.Context) ([]Course, error) // by title, for select options
		GetListStats(ctx context.Context) (ListStats, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		CountDependencies(ctx context.Context, id int) (Dependencies, error)
		DeleteCourse(ctx context.Context, id int) error

		GetEnrollmentStats(ctx context.Context, id int) (EnrollmentStats, error)
		QueryRecentStudents(ctx context.Context, id, limit int) ([]Student, error)
		QueryCourseReviews(ctx context.Context, id int) ([]Review, error)
		GetRatingStats(ctx context.Context, id int) (RatingStats, error)
		QueryCourseAssignments(ctx context.Context, id int) ([]Assignment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// referenceError turns a missing category or instructor into a field error.
func referenceError(err error) error {
	switch err {
	case ErrCategoryNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "category_id", Error: err.Error()})
	case ErrInstructorNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "instructor_id", Error: err.Error()})
	}
	return err
}

// CheckReferences returns a *core.ValidationError when the category or instructor does not exist.
func (svc *Service) CheckReferences(ctx context.Context, categoryID, instructorID int) error {
	return referenceError(svc.repo.CheckReferences(ctx, categoryID, instructorID))
}

// Create inserts the course. A category or instructor removed since validation gives a field error.
func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	c := nc.toCourse()
	c.CreatedAt = time.Now().UTC()
	created, err := svc.repo.CreateCourse(ctx, c)
	if err != nil {
		return Course{}, referenceError(err)
	}
	return created, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Row, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Row, error) {
	filter.Clean()
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) ListStats(ctx context.Context) (ListStats, error) {
	return svc.repo.GetListStats(ctx)
}

func (svc *Service) Dependencies(ctx context.Context, id int) (Dependencies, error) {
	return svc.repo.CountDependencies(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, nc NewCourse) (Course, error) {
	c := nc.toCourse()
	c.ID = id
	updated, err := svc.repo.UpdateCourse(ctx, c)
	if err != nil {
		return Course{}, referenceError(err)
	}
	return updated, nil
}

// Delete removes a course without enrollments, assignments or reviews.
func (svc *Service) Delete(ctx context.Context, id int) error {
	deps, err := svc.repo.CountDependencies(ctx, id)
	if err != nil {
		return err
	}
	if deps.Any() {
		return core.NewIntegrityError(deleteGuardMessage)
	}
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) Detail(ctx context.Context, row Row) (Detail, error) {
	var err error
	d := Detail{Row: row}
	if d.EnrollmentStats, err = svc.repo.GetEnrollmentStats(ctx, row.ID); err != nil {
		return Detail{}, err
	}
	if d.Students, err = svc.repo.QueryRecentStudents(ctx, row.ID, RecentStudentsLimit); err != nil {
		return Detail{}, err
	}
	if d.Reviews, err = svc.repo.QueryCourseReviews(ctx, row.ID); err != nil {
		return Detail{}, err
	}
	if d.RatingStats, err = svc.repo.GetRatingStats(ctx, row.ID); err != nil {
		return Detail{}, err
	}
	if d.Assignments, err = svc.repo.QueryCourseAssignments(ctx, row.ID); err != nil {
		return Detail{}, err
	}
	return d, nil
}
