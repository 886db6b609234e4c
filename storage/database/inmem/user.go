package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func isExcluded(id int, excludedIDs []int) bool {
	for _, ex := range excludedIDs {
		if ex == id {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (repo *userRepository) query(match func(u user.User) bool) []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, id := range sortedIDs(repo.db.users) {
		if u := *repo.db.users[id]; match == nil || match(u) {
			users = append(users, u)
		}
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, u := range repo.db.users {
		if u.Email == email && !isExcluded(u.ID, excludedIDs) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = repo.db.nextID("users")
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if u, ok := repo.db.users[id]; ok {
		return *u, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, u := range repo.db.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := repo.query(func(u user.User) bool {
		if filter.Search != "" && !containsFold(u.Name, filter.Search) && !containsFold(u.Email, filter.Search) {
			return false
		}
		return filter.Role == "" || u.Role == filter.Role
	})
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (repo *userRepository) QueryUsersByRole(_ context.Context, role string) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := repo.query(func(u user.User) bool { return u.Role == role })
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (repo *userRepository) CountRoles(_ context.Context) (user.RoleCounts, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rc user.RoleCounts
	for _, u := range repo.db.users {
		switch u.Role {
		case user.RoleStudent:
			rc.Students++
		case user.RoleInstructor:
			rc.Instructors++
		case user.RoleAdmin:
			rc.Admins++
		}
	}
	return rc, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range repo.db.users {
		if u.Email == usr.Email && u.ID != usr.ID {
			return user.User{}, user.ErrEmailExists
		}
	}
	orig.Name = usr.Name
	orig.Email = usr.Email
	orig.Role = usr.Role
	if len(usr.PasswordHash) > 0 {
		orig.PasswordHash = usr.PasswordHash
	}
	return *orig, nil
}

func (repo *userRepository) CountDependencies(_ context.Context, id int) (user.Dependencies, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var deps user.Dependencies
	for _, c := range repo.db.courses {
		if c.InstructorID == id {
			deps.Courses++
		}
	}
	for _, e := range repo.db.enrollments {
		if e.StudentID == id {
			deps.Enrollments++
		}
	}
	for _, s := range repo.db.submissions {
		if s.StudentID == id {
			deps.Submissions++
		}
	}
	return deps, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	for _, c := range repo.db.courses {
		if c.InstructorID == id {
			return core.ErrReferenced
		}
	}
	for _, e := range repo.db.enrollments {
		if e.StudentID == id {
			return core.ErrReferenced
		}
	}
	for _, s := range repo.db.submissions {
		if s.StudentID == id {
			return core.ErrReferenced
		}
	}
	for _, r := range repo.db.reviews {
		if r.StudentID == id {
			return core.ErrReferenced
		}
	}
	delete(repo.db.users, id)
	return nil
}

func (repo *userRepository) QueryStudentEnrollments(_ context.Context, studentID int) ([]user.EnrollmentSummary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]user.EnrollmentSummary, 0)
	for _, id := range sortedIDs(repo.db.enrollments) {
		e := repo.db.enrollments[id]
		if e.StudentID != studentID {
			continue
		}
		c := repo.db.courses[e.CourseID]
		rows = append(rows, user.EnrollmentSummary{
			EnrollmentID:   e.ID,
			EnrolledAt:     e.EnrolledAt,
			Progress:       e.Progress,
			CourseID:       c.ID,
			CourseTitle:    c.Title,
			Price:          c.Price,
			InstructorName: repo.db.userName(c.InstructorID),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].EnrolledAt.After(rows[j].EnrolledAt) })
	return rows, nil
}

func (repo *userRepository) QueryStudentSubmissions(_ context.Context, studentID, limit int) ([]user.SubmissionSummary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]user.SubmissionSummary, 0)
	for _, id := range sortedIDs(repo.db.submissions) {
		s := repo.db.submissions[id]
		if s.StudentID != studentID {
			continue
		}
		a := repo.db.assignments[s.AssignmentID]
		rows = append(rows, user.SubmissionSummary{
			SubmissionID:    s.ID,
			SubmittedAt:     s.SubmittedAt,
			Grade:           s.Grade,
			AssignmentTitle: a.Title,
			CourseTitle:     repo.db.courses[a.CourseID].Title,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SubmittedAt.After(rows[j].SubmittedAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (repo *userRepository) QueryInstructorCourses(_ context.Context, instructorID int) ([]user.CourseSummary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]user.CourseSummary, 0)
	for _, id := range sortedIDs(repo.db.courses) {
		c := repo.db.courses[id]
		if c.InstructorID != instructorID {
			continue
		}
		rows = append(rows, user.CourseSummary{
			CourseID:      c.ID,
			Title:         c.Title,
			Price:         c.Price,
			EnrolledCount: len(repo.db.courseEnrollments(c.ID)),
			AvgRating:     avgRating(repo.db.courseReviews(c.ID)),
		})
	}
	return rows, nil
}

func (repo *userRepository) QueryUserReviews(_ context.Context, userID int) ([]user.ReviewSummary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]user.ReviewSummary, 0)
	for _, id := range sortedIDs(repo.db.reviews) {
		r := repo.db.reviews[id]
		if r.StudentID != userID {
			continue
		}
		rows = append(rows, user.ReviewSummary{
			ReviewID:    r.ID,
			Rating:      r.Rating,
			Comment:     r.Comment,
			CreatedAt:   r.CreatedAt,
			CourseID:    r.CourseID,
			CourseTitle: repo.db.courses[r.CourseID].Title,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}
