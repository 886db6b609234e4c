package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/user"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) row(c course.Course) course.Row {
	reviews := repo.db.courseReviews(c.ID)
	row := course.Row{
		Course:         c,
		InstructorName: repo.db.userName(c.InstructorID),
		EnrolledCount:  len(repo.db.courseEnrollments(c.ID)),
		AvgRating:      avgRating(reviews),
		ReviewCount:    len(reviews),
	}
	if cat, ok := repo.db.categories[c.CategoryID]; ok {
		row.CategoryName = cat.Name
	}
	return row
}

// checkForeignKeys mirrors the courses foreign keys. The caller holds the lock.
func (repo *courseRepository) checkForeignKeys(c course.Course) error {
	if _, ok := repo.db.categories[c.CategoryID]; !ok {
		return course.ErrCategoryNotFound
	}
	if _, ok := repo.db.users[c.InstructorID]; !ok {
		return course.ErrInstructorNotFound
	}
	return nil
}

func (repo *courseRepository) CheckReferences(_ context.Context, categoryID, instructorID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.categories[categoryID]; !ok {
		return course.ErrCategoryNotFound
	}
	if !repo.db.hasRole(instructorID, user.RoleInstructor) {
		return course.ErrInstructorNotFound
	}
	return nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkForeignKeys(c); err != nil {
		return course.Course{}, err
	}
	c.ID = repo.db.nextID("courses")
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id int) (course.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return repo.row(*c), nil
	}
	return course.Row{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter) ([]course.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]course.Row, 0)
	for _, id := range sortedIDs(repo.db.courses) {
		c := repo.db.courses[id]
		if filter.Search != "" && !containsFold(c.Title, filter.Search) && !containsFold(c.Description.String, filter.Search) {
			continue
		}
		if filter.CategoryID > 0 && c.CategoryID != filter.CategoryID {
			continue
		}
		if filter.InstructorID > 0 && c.InstructorID != filter.InstructorID {
			continue
		}
		rows = append(rows, repo.row(*c))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, id := range sortedIDs(repo.db.courses) {
		courses = append(courses, *repo.db.courses[id])
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}

func (repo *courseRepository) GetListStats(_ context.Context) (course.ListStats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var price averager
	for _, c := range repo.db.courses {
		price.add(c.Price)
	}
	stats := course.ListStats{TotalCourses: price.n, AvgPrice: price.value()}
	if price.n > 0 {
		stats.TotalValue.SetValid(price.sum)
	}
	return stats, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.courses[c.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if err := repo.checkForeignKeys(c); err != nil {
		return course.Course{}, err
	}
	c.CreatedAt = orig.CreatedAt
	*orig = c
	return c, nil
}

func (repo *courseRepository) CountDependencies(_ context.Context, id int) (course.Dependencies, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.dependencies(id), nil
}

func (repo *courseRepository) dependencies(id int) course.Dependencies {
	deps := course.Dependencies{
		Enrollments: len(repo.db.courseEnrollments(id)),
		Reviews:     len(repo.db.courseReviews(id)),
	}
	for _, a := range repo.db.assignments {
		if a.CourseID == id {
			deps.Assignments++
		}
	}
	return deps
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	if repo.dependencies(id).Any() {
		return core.ErrReferenced
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *courseRepository) GetEnrollmentStats(_ context.Context, id int) (course.EnrollmentStats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var progress averager
	for _, e := range repo.db.courseEnrollments(id) {
		progress.add(float64(e.Progress))
	}
	return course.EnrollmentStats{TotalEnrollments: progress.n, AvgProgress: progress.value()}, nil
}

func (repo *courseRepository) QueryRecentStudents(_ context.Context, id, limit int) ([]course.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]course.Student, 0)
	for _, e := range repo.db.courseEnrollments(id) {
		u := repo.db.users[e.StudentID]
		rows = append(rows, course.Student{
			EnrollmentID: e.ID,
			EnrolledAt:   e.EnrolledAt,
			Progress:     e.Progress,
			UserID:       u.ID,
			Name:         u.Name,
			Email:        u.Email,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].EnrolledAt.After(rows[j].EnrolledAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (repo *courseRepository) QueryCourseReviews(_ context.Context, id int) ([]course.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]course.Review, 0)
	for _, r := range repo.db.courseReviews(id) {
		rows = append(rows, course.Review{
			ReviewID:    r.ID,
			Rating:      r.Rating,
			Comment:     r.Comment,
			CreatedAt:   r.CreatedAt,
			StudentID:   r.StudentID,
			StudentName: repo.db.userName(r.StudentID),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (repo *courseRepository) GetRatingStats(_ context.Context, id int) (course.RatingStats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reviews := repo.db.courseReviews(id)
	stats := course.RatingStats{AvgRating: avgRating(reviews), TotalReviews: len(reviews)}
	for _, r := range reviews {
		switch r.Rating {
		case 5:
			stats.FiveStars++
		case 4:
			stats.FourStars++
		case 3:
			stats.ThreeStars++
		case 2:
			stats.TwoStars++
		case 1:
			stats.OneStar++
		}
	}
	return stats, nil
}

func (repo *courseRepository) QueryCourseAssignments(_ context.Context, id int) ([]course.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]course.Assignment, 0)
	for _, aid := range sortedIDs(repo.db.assignments) {
		a := repo.db.assignments[aid]
		if a.CourseID != id {
			continue
		}
		rows = append(rows, course.Assignment{
			AssignmentID:    a.ID,
			Title:           a.Title,
			Description:     a.Description,
			DueDate:         a.DueDate,
			SubmissionCount: len(repo.db.assignmentSubmissions(a.ID)),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DueDate.Before(rows[j].DueDate) })
	return rows, nil
}
