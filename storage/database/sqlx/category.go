package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/category"
)

var categoryColumns = []string{"category_id", "name", "description"}

type categoryRepository struct {
	exec core.DBExecutor
}

var _ category.Repository = (*categoryRepository)(nil) // interface compliance check

func NewCategoryRepository(exec core.DBExecutor) *categoryRepository {
	return &categoryRepository{exec: exec}
}

// buildCategoriesQuery lists categories with their course and enrollment totals, by name.
func buildCategoriesQuery() sq.SelectBuilder {
	return psql.Select(
		"cc.category_id", "cc.name", "cc.description",
		"COUNT(DISTINCT c.course_id) AS total_courses",
		"COUNT(DISTINCT e.enrollment_id) AS total_enrollments",
		"AVG(c.price) AS avg_price",
	).
		From("course_categories cc").
		LeftJoin("courses c ON cc.category_id = c.category_id").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		GroupBy("cc.category_id").
		OrderBy("cc.name ASC")
}

func (repo categoryRepository) CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...int) error {
	q := psql.Select("1").From("course_categories").Where("LOWER(name) = LOWER(?)", name)
	if len(excludedIDs) > 0 {
		q = q.Where(sq.NotEq{"category_id": excludedIDs})
	}
	found, err := exists(ctx, repo.exec, "Check category name", q)
	if err != nil {
		return errors.Wrap(err, "checking category name uniqueness")
	}
	if found {
		return category.ErrNameExists
	}
	return nil
}

func (repo categoryRepository) CreateCategory(ctx context.Context, cat category.Category) (category.Category, error) {
	q := psql.Insert("course_categories").
		Columns("name", "description").
		Values(cat.Name, cat.Description).
		Suffix(returning(categoryColumns))

	var created category.Category
	if err := get(ctx, repo.exec, "Create category", &created, q); err != nil {
		if pqErrCode(err) == uniqueViolation {
			return category.Category{}, category.ErrNameExists
		}
		return category.Category{}, errors.Wrap(err, "inserting category")
	}
	return created, nil
}

func (repo categoryRepository) GetCategoryByID(ctx context.Context, id int) (category.Category, error) {
	var cat category.Category
	q := psql.Select(categoryColumns...).From("course_categories").Where(sq.Eq{"category_id": id})
	if err := get(ctx, repo.exec, "Category", &cat, q); err != nil {
		return category.Category{}, trapNoRowsErr(err, category.ErrNotFound, "getting category by ID")
	}
	return cat, nil
}

func (repo categoryRepository) QueryCategories(ctx context.Context) ([]category.Row, error) {
	rows := make([]category.Row, 0)
	if err := selectAll(ctx, repo.exec, "Categories", &rows, buildCategoriesQuery()); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return rows, nil
}

func (repo categoryRepository) QueryAllCategories(ctx context.Context) ([]category.Category, error) {
	cats := make([]category.Category, 0)
	q := psql.Select(categoryColumns...).From("course_categories").OrderBy("name")
	if err := selectAll(ctx, repo.exec, "Category options", &cats, q); err != nil {
		return nil, errors.Wrap(err, "querying category options")
	}
	return cats, nil
}

func (repo categoryRepository) UpdateCategory(ctx context.Context, cat category.Category) (category.Category, error) {
	q := psql.Update("course_categories").
		Set("name", cat.Name).
		Set("description", cat.Description).
		Where(sq.Eq{"category_id": cat.ID}).
		Suffix(returning(categoryColumns))

	var updated category.Category
	if err := get(ctx, repo.exec, "Update category", &updated, q); err != nil {
		if pqErrCode(err) == uniqueViolation {
			return category.Category{}, category.ErrNameExists
		}
		return category.Category{}, trapNoRowsErr(err, category.ErrNotFound, "updating category")
	}
	return updated, nil
}

func (repo categoryRepository) CountCourses(ctx context.Context, id int) (int, error) {
	var n int
	q := psql.Select("COUNT(*)").From("courses").Where(sq.Eq{"category_id": id})
	if err := get(ctx, repo.exec, "Category courses count", &n, q); err != nil {
		return 0, errors.Wrap(err, "counting category courses")
	}
	return n, nil
}

func (repo categoryRepository) DeleteCategory(ctx context.Context, id int) error {
	n, err := execute(ctx, repo.exec, "Delete category", psql.Delete("course_categories").Where(sq.Eq{"category_id": id}))
	if err != nil {
		return trapDeleteErr(err, "deleting category")
	}
	if n == 0 {
		return category.ErrNotFound
	}
	return nil
}

func (repo categoryRepository) GetCategoryStats(ctx context.Context, id int) (category.Stats, error) {
	var stats category.Stats
	q := psql.Select(
		"COUNT(DISTINCT c.course_id) AS total_courses",
		"COUNT(DISTINCT e.enrollment_id) AS total_enrollments",
		"COUNT(DISTINCT c.instructor_id) AS total_instructors",
		"AVG(r.rating) AS avg_rating",
	).
		From("courses c").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		LeftJoin("reviews r ON c.course_id = r.course_id").
		Where(sq.Eq{"c.category_id": id})
	if err := get(ctx, repo.exec, "Category statistics", &stats, q); err != nil {
		return category.Stats{}, errors.Wrap(err, "getting category stats")
	}

	// joins fan out course rows; price totals come from the courses alone
	var totals struct {
		AvgPrice   null.Float64 `db:"avg_price"`
		TotalValue null.Float64 `db:"total_value"`
	}
	prices := psql.Select("AVG(price) AS avg_price", "SUM(price) AS total_value").
		From("courses").
		Where(sq.Eq{"category_id": id})
	if err := get(ctx, repo.exec, "Category price totals", &totals, prices); err != nil {
		return category.Stats{}, errors.Wrap(err, "getting category price totals")
	}
	stats.AvgPrice, stats.TotalValue = totals.AvgPrice, totals.TotalValue
	return stats, nil
}

func (repo categoryRepository) QueryCategoryCourses(ctx context.Context, id int) ([]category.CourseRow, error) {
	rows := make([]category.CourseRow, 0)
	q := psql.Select(
		"c.course_id", "c.title", "c.price",
		"u.user_id AS instructor_id", "u.name AS instructor_name",
		"COUNT(DISTINCT e.enrollment_id) AS enrolled_count",
		"AVG(r.rating) AS avg_rating",
		"COUNT(DISTINCT r.review_id) AS review_count",
	).
		From("courses c").
		Join("users u ON c.instructor_id = u.user_id").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		LeftJoin("reviews r ON c.course_id = r.course_id").
		Where(sq.Eq{"c.category_id": id}).
		GroupBy("c.course_id", "u.user_id").
		OrderBy("enrolled_count DESC", "avg_rating DESC NULLS LAST")
	if err := selectAll(ctx, repo.exec, "Courses in category", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying category courses")
	}
	return rows, nil
}

func (repo categoryRepository) QueryTopInstructors(ctx context.Context, id, limit int) ([]category.InstructorRow, error) {
	rows := make([]category.InstructorRow, 0)
	q := psql.Select(
		"u.user_id", "u.name", "u.email",
		"COUNT(DISTINCT c.course_id) AS course_count",
		"COUNT(DISTINCT e.enrollment_id) AS total_students",
		"AVG(r.rating) AS avg_rating",
	).
		From("users u").
		Join("courses c ON u.user_id = c.instructor_id").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		LeftJoin("reviews r ON c.course_id = r.course_id").
		Where(sq.Eq{"c.category_id": id}).
		GroupBy("u.user_id").
		OrderBy("total_students DESC", "course_count DESC").
		Limit(uint64(limit))
	if err := selectAll(ctx, repo.exec, "Top instructors", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying top instructors")
	}
	return rows, nil
}
