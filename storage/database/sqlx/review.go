package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/user"
)

var reviewColumns = []string{"review_id", "course_id", "student_id", "rating", "comment", "created_at"}

type reviewRepository struct {
	exec core.DBExecutor
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(exec core.DBExecutor) *reviewRepository {
	return &reviewRepository{exec: exec}
}

func reviewRowsQuery() sq.SelectBuilder {
	return psql.Select(
		"r.review_id", "r.course_id", "r.student_id", "r.rating", "r.comment", "r.created_at",
		"c.title AS course_title",
		"s.name AS student_name",
		"i.name AS instructor_name",
	).
		From("reviews r").
		Join("courses c ON r.course_id = c.course_id").
		Join("users s ON r.student_id = s.user_id").
		Join("users i ON c.instructor_id = i.user_id")
}

// buildReviewsQuery lists reviews matching every present filter, newest first.
func buildReviewsQuery(filter review.QueryFilter) sq.SelectBuilder {
	q := reviewRowsQuery()
	if filter.CourseID > 0 {
		q = q.Where(sq.Eq{"r.course_id": filter.CourseID})
	}
	if filter.Rating > 0 {
		q = q.Where(sq.Eq{"r.rating": filter.Rating})
	}
	return q.OrderBy("r.created_at DESC", "r.review_id DESC")
}

func (repo reviewRepository) CheckReferences(ctx context.Context, courseID, studentID int) error {
	found, err := exists(ctx, repo.exec, "Check course",
		psql.Select("1").From("courses").Where(sq.Eq{"course_id": courseID}))
	if err != nil {
		return errors.Wrap(err, "checking course")
	}
	if !found {
		return review.ErrCourseNotFound
	}

	found, err = exists(ctx, repo.exec, "Check student",
		psql.Select("1").From("users").Where(sq.Eq{"user_id": studentID, "role": user.RoleStudent}))
	if err != nil {
		return errors.Wrap(err, "checking student")
	}
	if !found {
		return review.ErrStudentNotFound
	}
	return nil
}

func (repo reviewRepository) IsEnrolled(ctx context.Context, courseID, studentID int) (bool, error) {
	found, err := exists(ctx, repo.exec, "Check enrollment",
		psql.Select("1").From("enrollments").Where(sq.Eq{"student_id": studentID, "course_id": courseID}))
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return found, nil
}

func (repo reviewRepository) CheckNotReviewed(ctx context.Context, courseID, studentID int) error {
	found, err := exists(ctx, repo.exec, "Check existing review",
		psql.Select("1").From("reviews").Where(sq.Eq{"student_id": studentID, "course_id": courseID}))
	if err != nil {
		return errors.Wrap(err, "checking existing review")
	}
	if found {
		return review.ErrAlreadyReviewed
	}
	return nil
}

func (repo reviewRepository) CreateReview(ctx context.Context, r review.Review) (review.Review, error) {
	q := psql.Insert("reviews").
		Columns("course_id", "student_id", "rating", "comment", "created_at").
		Values(r.CourseID, r.StudentID, r.Rating, r.Comment, r.CreatedAt).
		Suffix(returning(reviewColumns))

	var created review.Review
	if err := get(ctx, repo.exec, "Create review", &created, q); err != nil {
		switch pqErrCode(err) {
		case uniqueViolation:
			return review.Review{}, review.ErrAlreadyReviewed
		case checkViolation: // reviews_require_enrollment trigger
			return review.Review{}, review.ErrNotEnrolled
		}
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return created, nil
}

func (repo reviewRepository) GetReviewByID(ctx context.Context, id int) (review.Row, error) {
	var row review.Row
	q := reviewRowsQuery().Where(sq.Eq{"r.review_id": id})
	if err := get(ctx, repo.exec, "Review", &row, q); err != nil {
		return review.Row{}, trapNoRowsErr(err, review.ErrNotFound, "getting review by ID")
	}
	return row, nil
}

func (repo reviewRepository) QueryReviews(ctx context.Context, filter review.QueryFilter) ([]review.Row, error) {
	rows := make([]review.Row, 0)
	if err := selectAll(ctx, repo.exec, "Reviews", &rows, buildReviewsQuery(filter)); err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	return rows, nil
}

func (repo reviewRepository) GetStats(ctx context.Context) (review.Stats, error) {
	var stats review.Stats
	q := psql.Select(
		"COUNT(*) AS total_reviews",
		"AVG(rating) AS avg_rating",
		"COUNT(*) FILTER (WHERE rating = 5) AS five_star",
		"COUNT(*) FILTER (WHERE rating = 4) AS four_star",
		"COUNT(*) FILTER (WHERE rating = 3) AS three_star",
		"COUNT(*) FILTER (WHERE rating = 2) AS two_star",
		"COUNT(*) FILTER (WHERE rating = 1) AS one_star",
	).From("reviews")
	if err := get(ctx, repo.exec, "Review statistics", &stats, q); err != nil {
		return review.Stats{}, errors.Wrap(err, "getting review stats")
	}
	return stats, nil
}

func (repo reviewRepository) DeleteReview(ctx context.Context, id int) error {
	n, err := execute(ctx, repo.exec, "Delete review", psql.Delete("reviews").Where(sq.Eq{"review_id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting review")
	}
	if n == 0 {
		return review.ErrNotFound
	}
	return nil
}
