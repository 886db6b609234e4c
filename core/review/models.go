package review

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
)

type Review struct {
	ID        int         `db:"review_id"`
	CourseID  int         `db:"course_id"`
	StudentID int         `db:"student_id"`
	Rating    int         `db:"rating"`
	Comment   null.String `db:"comment"`
	CreatedAt time.Time   `db:"created_at"` // UTC
}

// Row is a Review with its course, student and the course's instructor.
type Row struct {
	Review
	CourseTitle    string `db:"course_title"`
	StudentName    string `db:"student_name"`
	InstructorName string `db:"instructor_name"`
}

type (
	Stats struct {
		TotalReviews int          `db:"total_reviews"`
		AvgRating    null.Float64 `db:"avg_rating"`
		FiveStar     int          `db:"five_star"`
		FourStar     int          `db:"four_star"`
		ThreeStar    int          `db:"three_star"`
		TwoStar      int          `db:"two_star"`
		OneStar      int          `db:"one_star"`
	}

	StarCount struct {
		Stars int
		Count int
	}
)

// Counts returns the number of reviews per star, from 5 down to 1.
func (s Stats) Counts() []StarCount {
	return []StarCount{
		{Stars: 5, Count: s.FiveStar},
		{Stars: 4, Count: s.FourStar},
		{Stars: 3, Count: s.ThreeStar},
		{Stars: 2, Count: s.TwoStar},
		{Stars: 1, Count: s.OneStar},
	}
}

type QueryFilter struct {
	CourseID int `query:"course"`
	Rating   int `query:"rating"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.CourseID == 0 && qf.Rating == 0
}

func (qf *QueryFilter) Clean() {
	if qf.CourseID < 0 {
		qf.CourseID = 0
	}
	if qf.Rating < core.MinRating || qf.Rating > core.MaxRating {
		qf.Rating = 0
	}
}

// NewReview contains information needed to review a course.
type NewReview struct {
	CourseID  string `form:"course_id" validate:"required,id"`
	StudentID string `form:"student_id" validate:"required,id"`
	Rating    string `form:"rating" validate:"required,rating"`
	Comment   string `form:"comment" validate:"max=2000"`
}

func (nr *NewReview) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nr.Rating = core.CleanString(nr.Rating)
	nr.Comment = core.CleanString(nr.Comment)

	if err := validate.Struct(nr); err != nil {
		return err
	}
	return svc.CheckReviewable(ctx, core.ParseID(nr.CourseID), core.ParseID(nr.StudentID))
}

func (nr NewReview) toReview() Review {
	rating, _ := strconv.Atoi(nr.Rating)
	return Review{
		CourseID:  core.ParseID(nr.CourseID),
		StudentID: core.ParseID(nr.StudentID),
		Rating:    rating,
		Comment:   null.NewString(nr.Comment, nr.Comment != ""),
	}
}
