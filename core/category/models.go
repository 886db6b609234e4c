package category

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
)

type Category struct {
	ID          int         `db:"category_id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
}

// Row is a Category with its listing aggregates.
type Row struct {
	Category
	TotalCourses     int          `db:"total_courses"`
	TotalEnrollments int          `db:"total_enrollments"`
	AvgPrice         null.Float64 `db:"avg_price"`
}

type Stats struct {
	TotalCourses     int          `db:"total_courses"`
	TotalEnrollments int          `db:"total_enrollments"`
	TotalInstructors int          `db:"total_instructors"`
	AvgPrice         null.Float64 `db:"avg_price"`
	TotalValue       null.Float64 `db:"total_value"`
	AvgRating        null.Float64 `db:"avg_rating"`
}

type (
	CourseRow struct {
		CourseID       int          `db:"course_id"`
		Title          string       `db:"title"`
		Price          float64      `db:"price"`
		InstructorID   int          `db:"instructor_id"`
		InstructorName string       `db:"instructor_name"`
		EnrolledCount  int          `db:"enrolled_count"`
		AvgRating      null.Float64 `db:"avg_rating"`
		ReviewCount    int          `db:"review_count"`
	}

	InstructorRow struct {
		UserID        int          `db:"user_id"`
		Name          string       `db:"name"`
		Email         string       `db:"email"`
		CourseCount   int          `db:"course_count"`
		TotalStudents int          `db:"total_students"`
		AvgRating     null.Float64 `db:"avg_rating"`
	}

	Detail struct {
		Category
		Stats       Stats
		Courses     []CourseRow
		Instructors []InstructorRow
	}
)

// NewCategory is used to create and update categories.
type NewCategory struct {
	Name        string `form:"name" validate:"required,max=100"`
	Description string `form:"description" validate:"max=2000"`
}

func (nc *NewCategory) Validate(ctx context.Context, validate *validator.Validate, svc *Service, excludedIDs ...int) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nc.Name, excludedIDs...)
}

func (nc NewCategory) toCategory() Category {
	return Category{
		Name:        nc.Name,
		Description: null.NewString(nc.Description, nc.Description != ""),
	}
}
