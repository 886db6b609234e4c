package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) row(s submission.Submission) submission.Row {
	row := submission.Row{Submission: s, StudentName: repo.db.userName(s.StudentID)}
	if a, ok := repo.db.assignments[s.AssignmentID]; ok {
		row.AssignmentTitle = a.Title
		row.DueDate = a.DueDate
		row.CourseID = a.CourseID
		if c, ok := repo.db.courses[a.CourseID]; ok {
			row.CourseTitle = c.Title
		}
	}
	return row
}

func (repo *submissionRepository) CheckReferences(_ context.Context, assignmentID, studentID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	a, ok := repo.db.assignments[assignmentID]
	if !ok {
		return submission.ErrAssignmentNotFound
	}
	if !repo.db.hasRole(studentID, user.RoleStudent) {
		return submission.ErrStudentNotFound
	}
	if repo.db.enrollmentOf(studentID, a.CourseID) == nil {
		return submission.ErrNotEnrolled
	}
	return nil
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, s submission.Submission) (submission.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = repo.db.nextID("submissions")
	repo.db.submissions[s.ID] = &s
	return s, nil
}

func (repo *submissionRepository) GetSubmissionByID(_ context.Context, id int) (submission.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.submissions[id]; ok {
		return repo.row(*s), nil
	}
	return submission.Row{}, submission.ErrNotFound
}

func (repo *submissionRepository) QuerySubmissions(_ context.Context, filter submission.QueryFilter) ([]submission.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]submission.Row, 0)
	for _, id := range sortedIDs(repo.db.submissions) {
		s := repo.db.submissions[id]
		if filter.AssignmentID > 0 && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID > 0 && s.StudentID != filter.StudentID {
			continue
		}
		if (filter.Status == submission.StatusGraded && !s.Grade.Valid) ||
			(filter.Status == submission.StatusPending && s.Grade.Valid) {
			continue
		}
		rows = append(rows, repo.row(*s))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SubmittedAt.Equal(rows[j].SubmittedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].SubmittedAt.After(rows[j].SubmittedAt)
	})
	return rows, nil
}

func (repo *submissionRepository) UpdateGrade(_ context.Context, id int, grade null.Float64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.submissions[id]
	if !ok {
		return submission.ErrNotFound
	}
	s.Grade = grade
	return nil
}

func (repo *submissionRepository) DeleteSubmission(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.submissions[id]; !ok {
		return submission.ErrNotFound
	}
	delete(repo.db.submissions, id)
	return nil
}
