package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
)

type Course struct {
	ID           int         `db:"course_id"`
	Title        string      `db:"title"`
	Description  null.String `db:"description"`
	Price        float64     `db:"price"`
	CategoryID   int         `db:"category_id"`
	InstructorID int         `db:"instructor_id"`
	CreatedAt    time.Time   `db:"created_at"` // UTC
}

// Row is a Course with its category, instructor and listing aggregates.
type Row struct {
	Course
	CategoryName   string       `db:"category_name"`
	InstructorName string       `db:"instructor_name"`
	EnrolledCount  int          `db:"enrolled_count"`
	AvgRating      null.Float64 `db:"avg_rating"`
	ReviewCount    int          `db:"review_count"`
}

type ListStats struct {
	TotalCourses int          `db:"total_courses"`
	TotalValue   null.Float64 `db:"total_value"`
	AvgPrice     null.Float64 `db:"avg_price"`
}

// Dependencies counts the rows referencing a course.
type Dependencies struct {
	Enrollments int `db:"enrollments"`
	Assignments int `db:"assignments"`
	Reviews     int `db:"reviews"`
}

func (d Dependencies) Any() bool {
	return d.Enrollments > 0 || d.Assignments > 0 || d.Reviews > 0
}

type (
	EnrollmentStats struct {
		TotalEnrollments int          `db:"total_enrollments"`
		AvgProgress      null.Float64 `db:"avg_progress"`
	}

	Student struct {
		EnrollmentID int       `db:"enrollment_id"`
		EnrolledAt   time.Time `db:"enrolled_at"`
		Progress     int       `db:"progress"`
		UserID       int       `db:"user_id"`
		Name         string    `db:"name"`
		Email        string    `db:"email"`
	}

	Review struct {
		ReviewID    int         `db:"review_id"`
		Rating      int         `db:"rating"`
		Comment     null.String `db:"comment"`
		CreatedAt   time.Time   `db:"created_at"`
		StudentID   int         `db:"student_id"`
		StudentName string      `db:"student_name"`
	}

	RatingStats struct {
		AvgRating    null.Float64 `db:"avg_rating"`
		TotalReviews int          `db:"total_reviews"`
		FiveStars    int          `db:"five_stars"`
		FourStars    int          `db:"four_stars"`
		ThreeStars   int          `db:"three_stars"`
		TwoStars     int          `db:"two_stars"`
		OneStar      int          `db:"one_star"`
	}

	// RatingBucket is one bar of the rating histogram.
	RatingBucket struct {
		Stars   int
		Count   int
		Percent float64
	}

	Assignment struct {
		AssignmentID    int         `db:"assignment_id"`
		Title           string      `db:"title"`
		Description     null.String `db:"description"`
		DueDate         time.Time   `db:"due_date"`
		SubmissionCount int         `db:"submission_count"`
	}

	Detail struct {
		Row
		EnrollmentStats EnrollmentStats
		Students        []Student
		Reviews         []Review
		RatingStats     RatingStats
		Assignments     []Assignment
	}
)

// Histogram returns the rating buckets from 5 stars down to 1.
func (rs RatingStats) Histogram() []RatingBucket {
	counts := []int{rs.FiveStars, rs.FourStars, rs.ThreeStars, rs.TwoStars, rs.OneStar}
	buckets := make([]RatingBucket, 0, len(counts))
	for i, n := range counts {
		b := RatingBucket{Stars: 5 - i, Count: n}
		if rs.TotalReviews > 0 {
			b.Percent = float64(n) * 100 / float64(rs.TotalReviews)
		}
		buckets = append(buckets, b)
	}
	return buckets
}

type QueryFilter struct {
	Search       string `query:"search"`
	CategoryID   int    `query:"category"`
	InstructorID int    `query:"instructor"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.CategoryID == 0 && qf.InstructorID == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.CategoryID < 0 {
		qf.CategoryID = 0
	}
	if qf.InstructorID < 0 {
		qf.InstructorID = 0
	}
}

// NewCourse is used to create and update courses. Every field is required.
type NewCourse struct {
	Title        string `form:"title" validate:"required,max=200"`
	Description  string `form:"description" validate:"required"`
	Price        string `form:"price" validate:"required,price"`
	CategoryID   string `form:"category_id" validate:"required,id"`
	InstructorID string `form:"instructor_id" validate:"required,id"`
}

func (nc *NewCourse) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Price = core.CleanString(nc.Price)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckReferences(ctx, core.ParseID(nc.CategoryID), core.ParseID(nc.InstructorID))
}

func (nc NewCourse) toCourse() Course {
	price, _ := core.ParseDecimal(nc.Price)
	return Course{
		Title:        nc.Title,
		Description:  null.NewString(nc.Description, nc.Description != ""),
		Price:        price,
		CategoryID:   core.ParseID(nc.CategoryID),
		InstructorID: core.ParseID(nc.InstructorID),
	}
}
