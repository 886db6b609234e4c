// Package dashboard computes the rollups shown on the console home page.
package dashboard

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core/user"
)

const (
	RecentUsersLimit = 6
	TopCoursesLimit  = 5
)

type (
	Totals struct {
		user.RoleCounts
		Courses      int          `db:"courses"`
		Enrollments  int          `db:"enrollments"`
		Assignments  int          `db:"assignments"`
		AvgRating    null.Float64 `db:"avg_rating"`
		TotalRevenue float64      `db:"total_revenue"` // SUM of course price over enrollments
	}

	RecentUser struct {
		UserID    int       `db:"user_id"`
		Name      string    `db:"name"`
		Email     string    `db:"email"`
		Role      string    `db:"role"`
		CreatedAt time.Time `db:"created_at"`
	}

	TopCourse struct {
		CourseID         int          `db:"course_id"`
		Title            string       `db:"title"`
		Price            float64      `db:"price"`
		InstructorName   string       `db:"instructor_name"`
		AvgRating        null.Float64 `db:"avg_rating"`
		TotalEnrollments int          `db:"total_enrollments"`
	}

	CategoryStat struct {
		CategoryID       int          `db:"category_id"`
		CategoryName     string       `db:"category_name"`
		TotalCourses     int          `db:"total_courses"`
		TotalEnrollments int          `db:"total_enrollments"`
		AvgPrice         null.Float64 `db:"avg_price"`
	}

	Summary struct {
		Totals      Totals
		RecentUsers []RecentUser
		TopCourses  []TopCourse
		Categories  []CategoryStat
	}

	Repository interface {
		GetTotals(ctx context.Context) (Totals, error)
		QueryRecentUsers(ctx context.Context, limit int) ([]RecentUser, error)
		// QueryTopCourses returns rated courses by average rating, then enrollments.
		QueryTopCourses(ctx context.Context, limit int) ([]TopCourse, error)
		QueryCategoryStats(ctx context.Context) ([]CategoryStat, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.Totals, err = svc.repo.GetTotals(ctx); err != nil {
		return Summary{}, err
	}
	if s.RecentUsers, err = svc.repo.QueryRecentUsers(ctx, RecentUsersLimit); err != nil {
		return Summary{}, err
	}
	if s.TopCourses, err = svc.repo.QueryTopCourses(ctx, TopCoursesLimit); err != nil {
		return Summary{}, err
	}
	if s.Categories, err = svc.repo.QueryCategoryStats(ctx); err != nil {
		return Summary{}, err
	}
	return s, nil
}
