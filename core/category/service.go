package category

import (
	"context"
	"errors"

	"github.com/trezcool/lmsadmin/core"
)

// TopInstructorsLimit is the number of instructors shown on a category page.
const TopInstructorsLimit = 5

var (
	// errors
	ErrNotFound   = errors.New("category not found")
	ErrNameExists = errors.New("Category name already exists")

	deleteGuardMessage = "Cannot delete category with existing courses. Move or remove those courses first."
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...int) error
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		GetCategoryByID(ctx context.Context, id int) (Category, error)
		QueryCategories(ctx context.Context) ([]Row, error)
		QueryAllCategories(ctx context.Context) ([]Category, error) // by name, for select options
		UpdateCategory(ctx context.Context, cat Category) (Category, error)
		CountCourses(ctx context.Context, id int) (int, error)
		DeleteCategory(ctx context.Context, id int) error

		GetCategoryStats(ctx context.Context, id int) (Stats, error)
		QueryCategoryCourses(ctx context.Context, id int) ([]CourseRow, error)
		QueryTopInstructors(ctx context.Context, id, limit int) ([]InstructorRow, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(ctx context.Context, name string, excludedIDs ...int) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, excludedIDs...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCategory) (Category, error) {
	return svc.repo.CreateCategory(ctx, nc.toCategory())
}

func (svc *Service) GetByID(ctx context.Context, id int) (Category, error) {
	return svc.repo.GetCategoryByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]Row, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *Service) Update(ctx context.Context, id int, nc NewCategory) (Category, error) {
	cat := nc.toCategory()
	cat.ID = id
	return svc.repo.UpdateCategory(ctx, cat)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	n, err := svc.repo.CountCourses(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return core.NewIntegrityError(deleteGuardMessage)
	}
	return svc.repo.DeleteCategory(ctx, id)
}

func (svc *Service) Detail(ctx context.Context, cat Category) (Detail, error) {
	var err error
	d := Detail{Category: cat}
	if d.Stats, err = svc.repo.GetCategoryStats(ctx, cat.ID); err != nil {
		return Detail{}, err
	}
	if d.Courses, err = svc.repo.QueryCategoryCourses(ctx, cat.ID); err != nil {
		return Detail{}, err
	}
	if d.Instructors, err = svc.repo.QueryTopInstructors(ctx, cat.ID, TopInstructorsLimit); err != nil {
		return Detail{}, err
	}
	return d, nil
}
