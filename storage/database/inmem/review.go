package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/user"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) *reviewRepository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) row(r review.Review) review.Row {
	row := review.Row{Review: r, StudentName: repo.db.userName(r.StudentID)}
	if c, ok := repo.db.courses[r.CourseID]; ok {
		row.CourseTitle = c.Title
		row.InstructorName = repo.db.userName(c.InstructorID)
	}
	return row
}

func (repo *reviewRepository) reviewOf(courseID, studentID int) *review.Review {
	for _, r := range repo.db.courseReviews(courseID) {
		if r.StudentID == studentID {
			return r
		}
	}
	return nil
}

func (repo *reviewRepository) CheckReferences(_ context.Context, courseID, studentID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return review.ErrCourseNotFound
	}
	if !repo.db.hasRole(studentID, user.RoleStudent) {
		return review.ErrStudentNotFound
	}
	return nil
}

func (repo *reviewRepository) IsEnrolled(_ context.Context, courseID, studentID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.enrollmentOf(studentID, courseID) != nil, nil
}

func (repo *reviewRepository) CheckNotReviewed(_ context.Context, courseID, studentID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.reviewOf(courseID, studentID) != nil {
		return review.ErrAlreadyReviewed
	}
	return nil
}

// CreateReview enforces the enrollment and uniqueness rules the database trigger and constraint enforce.
func (repo *reviewRepository) CreateReview(_ context.Context, r review.Review) (review.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.enrollmentOf(r.StudentID, r.CourseID) == nil {
		return review.Review{}, review.ErrNotEnrolled
	}
	if repo.reviewOf(r.CourseID, r.StudentID) != nil {
		return review.Review{}, review.ErrAlreadyReviewed
	}
	r.ID = repo.db.nextID("reviews")
	repo.db.reviews[r.ID] = &r
	return r, nil
}

func (repo *reviewRepository) GetReviewByID(_ context.Context, id int) (review.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.reviews[id]; ok {
		return repo.row(*r), nil
	}
	return review.Row{}, review.ErrNotFound
}

func (repo *reviewRepository) QueryReviews(_ context.Context, filter review.QueryFilter) ([]review.Row, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]review.Row, 0)
	for _, id := range sortedIDs(repo.db.reviews) {
		r := repo.db.reviews[id]
		if filter.CourseID > 0 && r.CourseID != filter.CourseID {
			continue
		}
		if filter.Rating > 0 && r.Rating != filter.Rating {
			continue
		}
		rows = append(rows, repo.row(*r))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

func (repo *reviewRepository) GetStats(_ context.Context) (review.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var (
		stats   review.Stats
		reviews = make([]*review.Review, 0, len(repo.db.reviews))
	)
	for _, id := range sortedIDs(repo.db.reviews) {
		r := repo.db.reviews[id]
		reviews = append(reviews, r)
		switch r.Rating {
		case 5:
			stats.FiveStar++
		case 4:
			stats.FourStar++
		case 3:
			stats.ThreeStar++
		case 2:
			stats.TwoStar++
		case 1:
			stats.OneStar++
		}
	}
	stats.TotalReviews = len(reviews)
	stats.AvgRating = avgRating(reviews)
	return stats, nil
}

func (repo *reviewRepository) DeleteReview(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.reviews[id]; !ok {
		return review.ErrNotFound
	}
	delete(repo.db.reviews, id)
	return nil
}
