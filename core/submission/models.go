package submission

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
)

// Grade status filter values
const (
	StatusGraded  = "graded"
	StatusPending = "pending"
)

type Submission struct {
	ID           int          `db:"submission_id"`
	AssignmentID int          `db:"assignment_id"`
	StudentID    int          `db:"student_id"`
	SubmittedAt  time.Time    `db:"submitted_at"` // UTC
	Grade        null.Float64 `db:"grade"`        // NULL while pending
}

// Row is a Submission with its assignment, course and student.
type Row struct {
	Submission
	AssignmentTitle string    `db:"assignment_title"`
	DueDate         time.Time `db:"due_date"`
	CourseID        int       `db:"course_id"`
	CourseTitle     string    `db:"course_title"`
	StudentName     string    `db:"student_name"`
}

// IsLate reports whether the submission was made after the due date.
func (r Row) IsLate() bool {
	return r.SubmittedAt.After(r.DueDate.Add(24 * time.Hour))
}

// GradeLetter maps a grade to its letter: A >= 90, B >= 80, C >= 70, D >= 60, F below; N/A when pending.
func GradeLetter(grade null.Float64) string {
	if !grade.Valid {
		return "N/A"
	}
	switch g := grade.Float64; {
	case g >= 90:
		return "A"
	case g >= 80:
		return "B"
	case g >= 70:
		return "C"
	case g >= 60:
		return "D"
	default:
		return "F"
	}
}

type QueryFilter struct {
	AssignmentID int    `query:"assignment"`
	StudentID    int    `query:"student"`
	Status       string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.AssignmentID == 0 && qf.StudentID == 0 && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	if qf.Status != StatusGraded && qf.Status != StatusPending {
		qf.Status = ""
	}
	if qf.AssignmentID < 0 {
		qf.AssignmentID = 0
	}
	if qf.StudentID < 0 {
		qf.StudentID = 0
	}
}

// NewSubmission records a student's submission. An empty Grade leaves it pending.
type NewSubmission struct {
	AssignmentID string `form:"assignment_id" validate:"required,id"`
	StudentID    string `form:"student_id" validate:"required,id"`
	Grade        string `form:"grade" validate:"omitempty,grade"`
}

func (ns *NewSubmission) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.Grade = core.CleanString(ns.Grade)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckSubmittable(ctx, core.ParseID(ns.AssignmentID), core.ParseID(ns.StudentID))
}

func (ns NewSubmission) toSubmission() Submission {
	return Submission{
		AssignmentID: core.ParseID(ns.AssignmentID),
		StudentID:    core.ParseID(ns.StudentID),
		Grade:        parseGrade(ns.Grade),
	}
}

// UpdateSubmission only (re)grades a submission. An empty Grade resets it to pending.
type UpdateSubmission struct {
	Grade string `form:"grade" validate:"omitempty,grade"`
}

func (us *UpdateSubmission) Validate(validate *validator.Validate) error {
	us.Grade = core.CleanString(us.Grade)
	return validate.Struct(us)
}

func parseGrade(s string) null.Float64 {
	if s == "" {
		return null.Float64{}
	}
	g, err := core.ParseDecimal(s)
	return null.NewFloat64(g, err == nil)
}
