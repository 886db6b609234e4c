package assignment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
)

type Assignment struct {
	ID          int         `db:"assignment_id"`
	CourseID    int         `db:"course_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	DueDate     time.Time   `db:"due_date"`
}

// Row is an Assignment with its course, instructor and submission aggregates.
type Row struct {
	Assignment
	CourseTitle     string       `db:"course_title"`
	InstructorID    int          `db:"instructor_id"`
	InstructorName  string       `db:"instructor_name"`
	SubmissionCount int          `db:"submission_count"`
	AvgGrade        null.Float64 `db:"avg_grade"`
}

// IsOverdue reports whether the due date is before today.
func (a Assignment) IsOverdue(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return a.DueDate.Before(today)
}

type (
	Stats struct {
		TotalSubmissions int          `db:"total_submissions"`
		AvgGrade         null.Float64 `db:"avg_grade"`
		MaxGrade         null.Float64 `db:"max_grade"`
		MinGrade         null.Float64 `db:"min_grade"`
		PendingCount     int          `db:"pending_count"`
		AGrade           int          `db:"a_grade"`
		BGrade           int          `db:"b_grade"`
		CGrade           int          `db:"c_grade"`
		BelowC           int          `db:"below_c"`
	}

	Submission struct {
		SubmissionID int          `db:"submission_id"`
		SubmittedAt  time.Time    `db:"submitted_at"`
		Grade        null.Float64 `db:"grade"`
		UserID       int          `db:"user_id"`
		StudentName  string       `db:"student_name"`
		StudentEmail string       `db:"student_email"`
	}

	Detail struct {
		Row
		Stats       Stats
		Submissions []Submission
		IsOverdue   bool
	}
)

type QueryFilter struct {
	Search   string `query:"search"`
	CourseID int    `query:"course"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.CourseID == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.CourseID < 0 {
		qf.CourseID = 0
	}
}

// NewAssignment is used to create and update assignments.
type NewAssignment struct {
	CourseID    string `form:"course_id" validate:"required,id"`
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description"`
	DueDate     string `form:"due_date" validate:"required,date"`
}

func (na *NewAssignment) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.DueDate = core.CleanString(na.DueDate)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckCourse(ctx, core.ParseID(na.CourseID))
}

func (na NewAssignment) toAssignment() Assignment {
	due, _ := core.ParseDate(na.DueDate)
	return Assignment{
		CourseID:    core.ParseID(na.CourseID),
		Title:       na.Title,
		Description: null.NewString(na.Description, na.Description != ""),
		DueDate:     due,
	}
}
