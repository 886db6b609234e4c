package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/user"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) row(e enrollment.Enrollment) enrollment.Row {
	row := enrollment.Row{Enrollment: e}
	if s, ok := repo.db.users[e.StudentID]; ok {
		row.StudentName, row.StudentEmail = s.Name, s.Email
	}
	if c, ok := repo.db.courses[e.CourseID]; ok {
		row.CourseTitle = c.Title
		row.Price = c.Price
		row.InstructorID = c.InstructorID
		row.InstructorName = repo.db.userName(c.InstructorID)
		if cat, ok := repo.db.categories[c.CategoryID]; ok {
			row.CategoryName = cat.Name
		}
	}
	return row
}

func (repo *enrollmentRepository) CheckReferences(_ context.Context, studentID, courseID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if !repo.db.hasRole(studentID, user.RoleStudent) {
		return enrollment.ErrStudentNotFound
	}
	if _, ok := repo.db.courses[courseID]; !ok {
		return enrollment.ErrCourseNotFound
	}
	return nil
}

func (repo *enrollmentRepository) CheckNotEnrolled(_ context.Context, studentID, courseID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.enrollmentOf(studentID, courseID) != nil {
		return enrollment.ErrAlreadyEnrolled
	}
	return nil
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.enrollmentOf(e.StudentID, e.CourseID) != nil {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
	}
	e.ID = repo.db.nextID("enrollments")
	repo.db.enrollments[e.ID] = &e
	return e, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(_ context.Context, id int) (enrollment.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.enrollments[id]; ok {
		return repo.row(*e), nil
	}
	return enrollment.Row{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter enrollment.QueryFilter) ([]enrollment.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]enrollment.Row, 0)
	for _, id := range sortedIDs(repo.db.enrollments) {
		row := repo.row(*repo.db.enrollments[id])
		if filter.Search != "" && !containsFold(row.StudentName, filter.Search) && !containsFold(row.CourseTitle, filter.Search) {
			continue
		}
		if filter.CourseID > 0 && row.CourseID != filter.CourseID {
			continue
		}
		if filter.StudentID > 0 && row.StudentID != filter.StudentID {
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].EnrolledAt.Equal(rows[j].EnrolledAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].EnrolledAt.After(rows[j].EnrolledAt)
	})
	return rows, nil
}

func (repo *enrollmentRepository) UpdateProgress(_ context.Context, id, progress int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e, ok := repo.db.enrollments[id]
	if !ok {
		return enrollment.ErrNotFound
	}
	e.Progress = progress
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollment(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.enrollments[id]; !ok {
		return enrollment.ErrNotFound
	}
	delete(repo.db.enrollments, id)
	return nil
}

func (repo *enrollmentRepository) QueryAssignmentProgress(_ context.Context, studentID, courseID int) ([]enrollment.AssignmentProgress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]enrollment.AssignmentProgress, 0)
	for _, id := range sortedIDs(repo.db.assignments) {
		a := repo.db.assignments[id]
		if a.CourseID != courseID {
			continue
		}
		ap := enrollment.AssignmentProgress{AssignmentID: a.ID, Title: a.Title, DueDate: a.DueDate}
		for _, s := range repo.db.assignmentSubmissions(a.ID) {
			if s.StudentID == studentID {
				ap.SubmissionID = null.IntFrom(s.ID)
				ap.SubmittedAt = null.TimeFrom(s.SubmittedAt)
				ap.Grade = s.Grade
				break
			}
		}
		rows = append(rows, ap)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DueDate.Before(rows[j].DueDate) })
	return rows, nil
}

func (repo *enrollmentRepository) GetStudentReview(_ context.Context, studentID, courseID int) (*enrollment.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, r := range repo.db.courseReviews(courseID) {
		if r.StudentID == studentID {
			return &enrollment.Review{ReviewID: r.ID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}, nil
		}
	}
	return nil, nil
}
