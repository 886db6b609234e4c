package enrollment

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
)

type Enrollment struct {
	ID         int       `db:"enrollment_id"`
	StudentID  int       `db:"student_id"`
	CourseID   int       `db:"course_id"`
	Progress   int       `db:"progress"`
	EnrolledAt time.Time `db:"enrolled_at"` // UTC
}

// Row is an Enrollment with its student, course, instructor and category.
type Row struct {
	Enrollment
	StudentName    string  `db:"student_name"`
	StudentEmail   string  `db:"student_email"`
	CourseTitle    string  `db:"course_title"`
	Price          float64 `db:"price"`
	InstructorID   int     `db:"instructor_id"`
	InstructorName string  `db:"instructor_name"`
	CategoryName   string  `db:"category_name"`
}

type (
	// AssignmentProgress is a course assignment with the student's submission, if any.
	AssignmentProgress struct {
		AssignmentID int          `db:"assignment_id"`
		Title        string       `db:"title"`
		DueDate      time.Time    `db:"due_date"`
		SubmissionID null.Int     `db:"submission_id"`
		SubmittedAt  null.Time    `db:"submitted_at"`
		Grade        null.Float64 `db:"grade"`
	}

	Review struct {
		ReviewID  int         `db:"review_id"`
		Rating    int         `db:"rating"`
		Comment   null.String `db:"comment"`
		CreatedAt time.Time   `db:"created_at"`
	}

	Detail struct {
		Row
		Assignments []AssignmentProgress
		Review      *Review
	}
)

func (ap AssignmentProgress) Submitted() bool {
	return ap.SubmissionID.Valid
}

type QueryFilter struct {
	Search    string `query:"search"`
	CourseID  int    `query:"course"`
	StudentID int    `query:"student"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.CourseID == 0 && qf.StudentID == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.CourseID < 0 {
		qf.CourseID = 0
	}
	if qf.StudentID < 0 {
		qf.StudentID = 0
	}
}

// NewEnrollment contains information needed to enroll a student. Progress defaults to 0.
type NewEnrollment struct {
	StudentID string `form:"student_id" validate:"required,id"`
	CourseID  string `form:"course_id" validate:"required,id"`
	Progress  string `form:"progress" validate:"omitempty,progress"`
}

func (ne *NewEnrollment) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ne.Progress = core.CleanString(ne.Progress)

	if err := validate.Struct(ne); err != nil {
		return err
	}
	return svc.CheckEnrollable(ctx, core.ParseID(ne.StudentID), core.ParseID(ne.CourseID))
}

func (ne NewEnrollment) toEnrollment() Enrollment {
	progress, _ := strconv.Atoi(ne.Progress)
	return Enrollment{
		StudentID: core.ParseID(ne.StudentID),
		CourseID:  core.ParseID(ne.CourseID),
		Progress:  progress,
	}
}

// UpdateEnrollment only changes the progress.
type UpdateEnrollment struct {
	Progress string `form:"progress" validate:"required,progress"`
}

func (ue *UpdateEnrollment) Validate(validate *validator.Validate) error {
	ue.Progress = core.CleanString(ue.Progress)
	return validate.Struct(ue)
}

func (ue UpdateEnrollment) progress() int {
	progress, _ := strconv.Atoi(ue.Progress)
	return progress
}
