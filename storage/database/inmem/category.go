package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/category"
)

type categoryRepository struct {
	db *DB
}

var _ category.Repository = (*categoryRepository)(nil) // interface compliance check

func NewCategoryRepository(db *DB) *categoryRepository {
	return &categoryRepository{db: db}
}

func (repo *categoryRepository) nameTaken(name string, excludedIDs ...int) bool {
	for _, cat := range repo.db.categories {
		if strings.EqualFold(cat.Name, name) && !isExcluded(cat.ID, excludedIDs) {
			return true
		}
	}
	return false
}

func (repo *categoryRepository) CheckNameUniqueness(_ context.Context, name string, excludedIDs ...int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.nameTaken(name, excludedIDs...) {
		return category.ErrNameExists
	}
	return nil
}

func (repo *categoryRepository) CreateCategory(_ context.Context, cat category.Category) (category.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.nameTaken(cat.Name) {
		return category.Category{}, category.ErrNameExists
	}
	cat.ID = repo.db.nextID("categories")
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *categoryRepository) GetCategoryByID(_ context.Context, id int) (category.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return *cat, nil
	}
	return category.Category{}, category.ErrNotFound
}

func (repo *categoryRepository) QueryCategories(_ context.Context) ([]category.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]category.Row, 0, len(repo.db.categories))
	for _, id := range sortedIDs(repo.db.categories) {
		row := category.Row{Category: *repo.db.categories[id]}
		var price averager
		for _, cid := range sortedIDs(repo.db.courses) {
			c := repo.db.courses[cid]
			if c.CategoryID != id {
				continue
			}
			row.TotalCourses++
			row.TotalEnrollments += len(repo.db.courseEnrollments(c.ID))
			price.add(c.Price)
		}
		row.AvgPrice = price.value()
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (repo *categoryRepository) QueryAllCategories(_ context.Context) ([]category.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cats := make([]category.Category, 0, len(repo.db.categories))
	for _, id := range sortedIDs(repo.db.categories) {
		cats = append(cats, *repo.db.categories[id])
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *categoryRepository) UpdateCategory(_ context.Context, cat category.Category) (category.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.categories[cat.ID]
	if !ok {
		return category.Category{}, category.ErrNotFound
	}
	if repo.nameTaken(cat.Name, cat.ID) {
		return category.Category{}, category.ErrNameExists
	}
	*orig = cat
	return cat, nil
}

func (repo *categoryRepository) CountCourses(_ context.Context, id int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, c := range repo.db.courses {
		if c.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (repo *categoryRepository) DeleteCategory(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.categories[id]; !ok {
		return category.ErrNotFound
	}
	for _, c := range repo.db.courses {
		if c.CategoryID == id {
			return core.ErrReferenced
		}
	}
	delete(repo.db.categories, id)
	return nil
}

func (repo *categoryRepository) GetCategoryStats(_ context.Context, id int) (category.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var (
		stats       category.Stats
		price       averager
		rating      averager
		instructors = make(map[int]bool)
	)
	for _, cid := range sortedIDs(repo.db.courses) {
		c := repo.db.courses[cid]
		if c.CategoryID != id {
			continue
		}
		stats.TotalCourses++
		stats.TotalEnrollments += len(repo.db.courseEnrollments(c.ID))
		instructors[c.InstructorID] = true
		price.add(c.Price)
		for _, r := range repo.db.courseReviews(c.ID) {
			rating.add(float64(r.Rating))
		}
	}
	stats.TotalInstructors = len(instructors)
	stats.AvgPrice = price.value()
	if price.n > 0 {
		stats.TotalValue.SetValid(price.sum)
	}
	stats.AvgRating = rating.value()
	return stats, nil
}

func (repo *categoryRepository) QueryCategoryCourses(_ context.Context, id int) ([]category.CourseRow, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]category.CourseRow, 0)
	for _, cid := range sortedIDs(repo.db.courses) {
		c := repo.db.courses[cid]
		if c.CategoryID != id {
			continue
		}
		reviews := repo.db.courseReviews(c.ID)
		rows = append(rows, category.CourseRow{
			CourseID:       c.ID,
			Title:          c.Title,
			Price:          c.Price,
			InstructorID:   c.InstructorID,
			InstructorName: repo.db.userName(c.InstructorID),
			EnrolledCount:  len(repo.db.courseEnrollments(c.ID)),
			AvgRating:      avgRating(reviews),
			ReviewCount:    len(reviews),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].EnrolledCount != rows[j].EnrolledCount {
			return rows[i].EnrolledCount > rows[j].EnrolledCount
		}
		return nullFloatDesc(rows[i].AvgRating, rows[j].AvgRating)
	})
	return rows, nil
}

func (repo *categoryRepository) QueryTopInstructors(_ context.Context, id, limit int) ([]category.InstructorRow, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byID := make(map[int]*category.InstructorRow)
	ratings := make(map[int]*averager)
	var order []int
	for _, cid := range sortedIDs(repo.db.courses) {
		c := repo.db.courses[cid]
		if c.CategoryID != id {
			continue
		}
		row, ok := byID[c.InstructorID]
		if !ok {
			u := repo.db.users[c.InstructorID]
			row = &category.InstructorRow{UserID: u.ID, Name: u.Name, Email: u.Email}
			byID[u.ID] = row
			ratings[u.ID] = new(averager)
			order = append(order, u.ID)
		}
		row.CourseCount++
		row.TotalStudents += len(repo.db.courseEnrollments(c.ID))
		for _, r := range repo.db.courseReviews(c.ID) {
			ratings[c.InstructorID].add(float64(r.Rating))
		}
	}

	rows := make([]category.InstructorRow, 0, len(order))
	for _, uid := range order {
		row := *byID[uid]
		row.AvgRating = ratings[uid].value()
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalStudents != rows[j].TotalStudents {
			return rows[i].TotalStudents > rows[j].TotalStudents
		}
		return rows[i].CourseCount > rows[j].CourseCount
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
