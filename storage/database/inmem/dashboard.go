package inmemdb

import (
	"context"
	"math"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core/dashboard"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/user"
)

type dashboardRepository struct {
	db *DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) GetTotals(_ context.Context) (dashboard.Totals, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var totals dashboard.Totals
	for _, u := range repo.db.users {
		switch u.Role {
		case user.RoleStudent:
			totals.Students++
		case user.RoleInstructor:
			totals.Instructors++
		case user.RoleAdmin:
			totals.Admins++
		}
	}
	totals.Courses = len(repo.db.courses)
	totals.Enrollments = len(repo.db.enrollments)
	totals.Assignments = len(repo.db.assignments)

	reviews := make([]*review.Review, 0, len(repo.db.reviews))
	for _, r := range repo.db.reviews {
		reviews = append(reviews, r)
	}
	if avg := avgRating(reviews); avg.Valid {
		totals.AvgRating = null.Float64From(math.Round(avg.Float64*10) / 10)
	}
	for _, e := range repo.db.enrollments {
		if c, ok := repo.db.courses[e.CourseID]; ok {
			totals.TotalRevenue += c.Price
		}
	}
	return totals, nil
}

func (repo *dashboardRepository) QueryRecentUsers(_ context.Context, limit int) ([]dashboard.RecentUser, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]dashboard.RecentUser, 0)
	for _, id := range sortedIDs(repo.db.users) {
		u := repo.db.users[id]
		rows = append(rows, dashboard.RecentUser{
			UserID:    u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].UserID > rows[j].UserID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (repo *dashboardRepository) QueryTopCourses(_ context.Context, limit int) ([]dashboard.TopCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]dashboard.TopCourse, 0)
	for _, id := range sortedIDs(repo.db.courses) {
		c := repo.db.courses[id]
		avg := avgRating(repo.db.courseReviews(c.ID))
		if !avg.Valid {
			continue
		}
		rows = append(rows, dashboard.TopCourse{
			CourseID:         c.ID,
			Title:            c.Title,
			Price:            c.Price,
			InstructorName:   repo.db.userName(c.InstructorID),
			AvgRating:        avg,
			TotalEnrollments: len(repo.db.courseEnrollments(c.ID)),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AvgRating.Float64 == rows[j].AvgRating.Float64 {
			return rows[i].TotalEnrollments > rows[j].TotalEnrollments
		}
		return rows[i].AvgRating.Float64 > rows[j].AvgRating.Float64
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (repo *dashboardRepository) QueryCategoryStats(_ context.Context) ([]dashboard.CategoryStat, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]dashboard.CategoryStat, 0)
	for _, id := range sortedIDs(repo.db.categories) {
		cat := repo.db.categories[id]
		stat := dashboard.CategoryStat{CategoryID: cat.ID, CategoryName: cat.Name}
		var price averager
		for _, cid := range sortedIDs(repo.db.courses) {
			c := repo.db.courses[cid]
			if c.CategoryID != cat.ID {
				continue
			}
			stat.TotalCourses++
			stat.TotalEnrollments += len(repo.db.courseEnrollments(c.ID))
			price.add(c.Price)
		}
		stat.AvgPrice = price.value()
		rows = append(rows, stat)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalEnrollments == rows[j].TotalEnrollments {
			return rows[i].CategoryName < rows[j].CategoryName
		}
		return rows[i].TotalEnrollments > rows[j].TotalEnrollments
	})
	return rows, nil
}
