package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) row(a assignment.Assignment) assignment.Row {
	row := assignment.Row{Assignment: a}
	if c, ok := repo.db.courses[a.CourseID]; ok {
		row.CourseTitle = c.Title
		row.InstructorID = c.InstructorID
		row.InstructorName = repo.db.userName(c.InstructorID)
	}
	var grade averager
	for _, s := range repo.db.assignmentSubmissions(a.ID) {
		row.SubmissionCount++
		if s.Grade.Valid {
			grade.add(s.Grade.Float64)
		}
	}
	row.AvgGrade = grade.value()
	return row
}

func (repo *assignmentRepository) CheckCourse(_ context.Context, courseID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return assignment.ErrCourseNotFound
	}
	return nil
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = repo.db.nextID("assignments")
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id int) (assignment.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return repo.row(*a), nil
	}
	return assignment.Row{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, filter assignment.QueryFilter) ([]assignment.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]assignment.Row, 0)
	for _, id := range sortedIDs(repo.db.assignments) {
		a := repo.db.assignments[id]
		if filter.Search != "" && !containsFold(a.Title, filter.Search) && !containsFold(a.Description.String, filter.Search) {
			continue
		}
		if filter.CourseID > 0 && a.CourseID != filter.CourseID {
			continue
		}
		rows = append(rows, repo.row(*a))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DueDate.Before(rows[j].DueDate) })
	return rows, nil
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.assignments[a.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	*orig = a
	return a, nil
}

func (repo *assignmentRepository) CountSubmissions(_ context.Context, id int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.assignmentSubmissions(id)), nil
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return assignment.ErrNotFound
	}
	if len(repo.db.assignmentSubmissions(id)) > 0 {
		return core.ErrReferenced
	}
	delete(repo.db.assignments, id)
	return nil
}

func (repo *assignmentRepository) GetSubmissionStats(_ context.Context, id int) (assignment.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var (
		stats assignment.Stats
		grade averager
	)
	for _, s := range repo.db.assignmentSubmissions(id) {
		stats.TotalSubmissions++
		if !s.Grade.Valid {
			stats.PendingCount++
			continue
		}
		g := s.Grade.Float64
		grade.add(g)
		if !stats.MaxGrade.Valid || g > stats.MaxGrade.Float64 {
			stats.MaxGrade.SetValid(g)
		}
		if !stats.MinGrade.Valid || g < stats.MinGrade.Float64 {
			stats.MinGrade.SetValid(g)
		}
		switch {
		case g >= 90:
			stats.AGrade++
		case g >= 80:
			stats.BGrade++
		case g >= 70:
			stats.CGrade++
		default:
			stats.BelowC++
		}
	}
	stats.AvgGrade = grade.value()
	return stats, nil
}

func (repo *assignmentRepository) QueryAssignmentSubmissions(_ context.Context, id int) ([]assignment.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]assignment.Submission, 0)
	for _, s := range repo.db.assignmentSubmissions(id) {
		u := repo.db.users[s.StudentID]
		rows = append(rows, assignment.Submission{
			SubmissionID: s.ID,
			SubmittedAt:  s.SubmittedAt,
			Grade:        s.Grade,
			UserID:       u.ID,
			StudentName:  u.Name,
			StudentEmail: u.Email,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SubmittedAt.After(rows[j].SubmittedAt) })
	return rows, nil
}
