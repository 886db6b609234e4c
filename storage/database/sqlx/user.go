package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

var userColumns = []string{"user_id", "name", "email", "password_hash", "role", "created_at"}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

// buildUsersQuery lists users matching every present filter, newest first.
func buildUsersQuery(filter user.QueryFilter) sq.SelectBuilder {
	q := psql.Select(userColumns...).From("users")
	if filter.Search != "" {
		val := like(filter.Search)
		q = q.Where(sq.Or{sq.ILike{"name": val}, sq.ILike{"email": val}})
	}
	if filter.Role != "" {
		q = q.Where(sq.Eq{"role": filter.Role})
	}
	return q.OrderBy("created_at DESC", "user_id DESC")
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...int) error {
	q := psql.Select("1").From("users").Where(sq.Eq{"email": email})
	if len(excludedIDs) > 0 {
		q = q.Where(sq.NotEq{"user_id": excludedIDs})
	}
	found, err := exists(ctx, repo.exec, "Check email uniqueness", q)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if found {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := psql.Insert("users").
		Columns("name", "email", "password_hash", "role", "created_at").
		Values(usr.Name, usr.Email, usr.PasswordHash, usr.Role, usr.CreatedAt).
		Suffix(returning(userColumns))

	var created user.User
	if err := get(ctx, repo.exec, "Create user", &created, q); err != nil {
		if pqErrCode(err) == uniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return created, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	q := psql.Select(userColumns...).From("users").Where(sq.Eq{"user_id": id})
	if err := get(ctx, repo.exec, "User", &usr, q); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	q := psql.Select(userColumns...).From("users").Where(sq.Eq{"email": email})
	if err := get(ctx, repo.exec, "User by email", &usr, q); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by email")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	users := make([]user.User, 0)
	if err := selectAll(ctx, repo.exec, "Users", &users, buildUsersQuery(filter)); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) QueryUsersByRole(ctx context.Context, role string) ([]user.User, error) {
	users := make([]user.User, 0)
	q := psql.Select(userColumns...).From("users").Where(sq.Eq{"role": role}).OrderBy("name")
	if err := selectAll(ctx, repo.exec, "Users by role", &users, q); err != nil {
		return nil, errors.Wrap(err, "querying users by role")
	}
	return users, nil
}

func (repo userRepository) CountRoles(ctx context.Context) (user.RoleCounts, error) {
	var rc user.RoleCounts
	q := psql.Select(
		"COUNT(*) FILTER (WHERE role = 'student') AS students",
		"COUNT(*) FILTER (WHERE role = 'instructor') AS instructors",
		"COUNT(*) FILTER (WHERE role = 'admin') AS admins",
	).From("users")
	if err := get(ctx, repo.exec, "User counts by role", &rc, q); err != nil {
		return user.RoleCounts{}, errors.Wrap(err, "counting roles")
	}
	return rc, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := psql.Update("users").
		Set("name", usr.Name).
		Set("email", usr.Email).
		Set("role", usr.Role)
	if len(usr.PasswordHash) > 0 {
		q = q.Set("password_hash", usr.PasswordHash)
	}
	q = q.Where(sq.Eq{"user_id": usr.ID}).Suffix(returning(userColumns))

	var updated user.User
	if err := get(ctx, repo.exec, "Update user", &updated, q); err != nil {
		if pqErrCode(err) == uniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return updated, nil
}

func (repo userRepository) CountDependencies(ctx context.Context, id int) (user.Dependencies, error) {
	var deps user.Dependencies
	q := psql.Select().
		Column(sq.Expr("(SELECT COUNT(*) FROM courses WHERE instructor_id = ?) AS courses", id)).
		Column(sq.Expr("(SELECT COUNT(*) FROM enrollments WHERE student_id = ?) AS enrollments", id)).
		Column(sq.Expr("(SELECT COUNT(*) FROM submissions WHERE student_id = ?) AS submissions", id))
	if err := get(ctx, repo.exec, "User dependencies", &deps, q); err != nil {
		return user.Dependencies{}, errors.Wrap(err, "counting user dependencies")
	}
	return deps, nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id int) error {
	n, err := execute(ctx, repo.exec, "Delete user", psql.Delete("users").Where(sq.Eq{"user_id": id}))
	if err != nil {
		return trapDeleteErr(err, "deleting user")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) QueryStudentEnrollments(ctx context.Context, studentID int) ([]user.EnrollmentSummary, error) {
	rows := make([]user.EnrollmentSummary, 0)
	q := psql.Select(
		"e.enrollment_id", "e.enrolled_at", "e.progress",
		"c.course_id", "c.title AS course_title", "c.price",
		"u.name AS instructor_name",
	).
		From("enrollments e").
		Join("courses c ON e.course_id = c.course_id").
		Join("users u ON c.instructor_id = u.user_id").
		Where(sq.Eq{"e.student_id": studentID}).
		OrderBy("e.enrolled_at DESC")
	if err := selectAll(ctx, repo.exec, "Student enrollments", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying student enrollments")
	}
	return rows, nil
}

func (repo userRepository) QueryStudentSubmissions(ctx context.Context, studentID, limit int) ([]user.SubmissionSummary, error) {
	rows := make([]user.SubmissionSummary, 0)
	q := psql.Select(
		"s.submission_id", "s.submitted_at", "s.grade",
		"a.title AS assignment_title", "c.title AS course_title",
	).
		From("submissions s").
		Join("assignments a ON s.assignment_id = a.assignment_id").
		Join("courses c ON a.course_id = c.course_id").
		Where(sq.Eq{"s.student_id": studentID}).
		OrderBy("s.submitted_at DESC").
		Limit(uint64(limit))
	if err := selectAll(ctx, repo.exec, "Recent submissions", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying student submissions")
	}
	return rows, nil
}

func (repo userRepository) QueryInstructorCourses(ctx context.Context, instructorID int) ([]user.CourseSummary, error) {
	rows := make([]user.CourseSummary, 0)
	q := psql.Select(
		"c.course_id", "c.title", "c.price",
		"COUNT(DISTINCT e.enrollment_id) AS enrolled_count",
		"AVG(r.rating) AS avg_rating",
	).
		From("courses c").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		LeftJoin("reviews r ON c.course_id = r.course_id").
		Where(sq.Eq{"c.instructor_id": instructorID}).
		GroupBy("c.course_id").
		OrderBy("c.created_at DESC")
	if err := selectAll(ctx, repo.exec, "Courses taught", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying instructor courses")
	}
	return rows, nil
}

func (repo userRepository) QueryUserReviews(ctx context.Context, userID int) ([]user.ReviewSummary, error) {
	rows := make([]user.ReviewSummary, 0)
	q := psql.Select(
		"r.review_id", "r.rating", "r.comment", "r.created_at",
		"c.course_id", "c.title AS course_title",
	).
		From("reviews r").
		Join("courses c ON r.course_id = c.course_id").
		Where(sq.Eq{"r.student_id": userID}).
		OrderBy("r.created_at DESC")
	if err := selectAll(ctx, repo.exec, "Reviews written", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying user reviews")
	}
	return rows, nil
}
