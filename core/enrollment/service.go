package enrollment

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/trezcool/lmsadmin/core"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrStudentNotFound = errors.New("Student not found")
	ErrCourseNotFound  = errors.New("Course not found")
	ErrAlreadyEnrolled = errors.New("Student is already enrolled in this course")
)

type (
	Repository interface {
		// CheckReferences returns ErrStudentNotFound or ErrCourseNotFound.
		// The student must hold the student role.
		CheckReferences(ctx context.Context, studentID, courseID int) error
		// CheckNotEnrolled returns ErrAlreadyEnrolled if the (student, course) pair exists.
		CheckNotEnrolled(ctx context.Context, studentID, courseID int) error
		// CreateEnrollment returns ErrAlreadyEnrolled on a unique violation.
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id int) (Row, error)
		// QueryEnrollments applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of the student name or course title.
		QueryEnrollments(ctx context.Context, filter QueryFilter) ([]Row, error)
		UpdateProgress(ctx context.Context, id, progress int) error
		DeleteEnrollment(ctx context.Context, id int) error

		QueryAssignmentProgress(ctx context.Context, studentID, courseID int) ([]AssignmentProgress, error)
		// GetStudentReview returns nil when the student did not review the course.
		GetStudentReview(ctx context.Context, studentID, courseID int) (*Review, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}

	// ConfirmationData feeds the "enrollment" email template.
	ConfirmationData struct {
		StudentName    string
		CourseTitle    string
		InstructorName string
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func fieldErr(err error) error {
	var field string
	switch err {
	case ErrStudentNotFound:
		field = "student_id"
	case ErrCourseNotFound, ErrAlreadyEnrolled:
		field = "course_id"
	default:
		return err
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// CheckEnrollable returns a *core.ValidationError when the student or course is missing,
// or when the student is already enrolled in the course.
func (svc *Service) CheckEnrollable(ctx context.Context, studentID, courseID int) error {
	if err := svc.repo.CheckReferences(ctx, studentID, courseID); err != nil {
		return fieldErr(err)
	}
	if err := svc.repo.CheckNotEnrolled(ctx, studentID, courseID); err != nil {
		return fieldErr(err)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	e := ne.toEnrollment()
	e.EnrolledAt = time.Now().UTC()
	e, err := svc.repo.CreateEnrollment(ctx, e)
	if err != nil {
		return Enrollment{}, fieldErr(err)
	}
	if row, err := svc.repo.GetEnrollmentByID(ctx, e.ID); err == nil {
		svc.sendConfirmationMail(row)
	}
	return e, nil
}

func (svc *Service) sendConfirmationMail(row Row) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: row.StudentName, Address: row.StudentEmail}},
		Subject:      "Enrollment confirmed: " + row.CourseTitle,
		TemplateName: "enrollment",
		TemplateData: ConfirmationData{
			StudentName:    row.StudentName,
			CourseTitle:    row.CourseTitle,
			InstructorName: row.InstructorName,
		},
	})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Row, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Row, error) {
	filter.Clean()
	return svc.repo.QueryEnrollments(ctx, filter)
}

func (svc *Service) UpdateProgress(ctx context.Context, id int, ue UpdateEnrollment) error {
	return svc.repo.UpdateProgress(ctx, id, ue.progress())
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteEnrollment(ctx, id)
}

func (svc *Service) Detail(ctx context.Context, row Row) (Detail, error) {
	var err error
	d := Detail{Row: row}
	if d.Assignments, err = svc.repo.QueryAssignmentProgress(ctx, row.StudentID, row.CourseID); err != nil {
		return Detail{}, err
	}
	if d.Review, err = svc.repo.GetStudentReview(ctx, row.StudentID, row.CourseID); err != nil {
		return Detail{}, err
	}
	return d, nil
}
