package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/dashboard"
)

type dashboardRepository struct {
	exec core.DBExecutor
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(exec core.DBExecutor) *dashboardRepository {
	return &dashboardRepository{exec: exec}
}

func (repo dashboardRepository) GetTotals(ctx context.Context) (dashboard.Totals, error) {
	var totals dashboard.Totals
	q := psql.Select().
		Column(sq.Expr("(SELECT COUNT(*) FROM users WHERE role = 'student') AS students")).
		Column(sq.Expr("(SELECT COUNT(*) FROM users WHERE role = 'instructor') AS instructors")).
		Column(sq.Expr("(SELECT COUNT(*) FROM users WHERE role = 'admin') AS admins")).
		Column(sq.Expr("(SELECT COUNT(*) FROM courses) AS courses")).
		Column(sq.Expr("(SELECT COUNT(*) FROM enrollments) AS enrollments")).
		Column(sq.Expr("(SELECT COUNT(*) FROM assignments) AS assignments")).
		Column(sq.Expr("(SELECT ROUND(AVG(rating), 1) FROM reviews) AS avg_rating")).
		Column(sq.Expr("(SELECT COALESCE(SUM(c.price), 0) FROM enrollments e JOIN courses c ON e.course_id = c.course_id) AS total_revenue"))
	if err := get(ctx, repo.exec, "Dashboard totals", &totals, q); err != nil {
		return dashboard.Totals{}, errors.Wrap(err, "getting dashboard totals")
	}
	return totals, nil
}

func (repo dashboardRepository) QueryRecentUsers(ctx context.Context, limit int) ([]dashboard.RecentUser, error) {
	rows := make([]dashboard.RecentUser, 0)
	q := psql.Select("user_id", "name", "email", "role", "created_at").
		From("users").
		OrderBy("created_at DESC", "user_id DESC").
		Limit(uint64(limit))
	if err := selectAll(ctx, repo.exec, "Recent users", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying recent users")
	}
	return rows, nil
}

func (repo dashboardRepository) QueryTopCourses(ctx context.Context, limit int) ([]dashboard.TopCourse, error) {
	rows := make([]dashboard.TopCourse, 0)
	q := psql.Select(
		"c.course_id", "c.title", "c.price",
		"u.name AS instructor_name",
		"AVG(r.rating) AS avg_rating",
		"COUNT(DISTINCT e.enrollment_id) AS total_enrollments",
	).
		From("courses c").
		Join("users u ON c.instructor_id = u.user_id").
		LeftJoin("reviews r ON c.course_id = r.course_id").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		GroupBy("c.course_id", "u.user_id").
		Having("AVG(r.rating) IS NOT NULL").
		OrderBy("avg_rating DESC", "total_enrollments DESC").
		Limit(uint64(limit))
	if err := selectAll(ctx, repo.exec, "Top rated courses", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying top courses")
	}
	return rows, nil
}

func (repo dashboardRepository) QueryCategoryStats(ctx context.Context) ([]dashboard.CategoryStat, error) {
	rows := make([]dashboard.CategoryStat, 0)
	q := psql.Select(
		"cc.category_id", "cc.name AS category_name",
		"COUNT(DISTINCT c.course_id) AS total_courses",
		"COUNT(DISTINCT e.enrollment_id) AS total_enrollments",
		"AVG(c.price) AS avg_price",
	).
		From("course_categories cc").
		LeftJoin("courses c ON cc.category_id = c.category_id").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		GroupBy("cc.category_id").
		OrderBy("total_enrollments DESC", "cc.name ASC")
	if err := selectAll(ctx, repo.exec, "Category statistics", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying category stats")
	}
	return rows, nil
}
