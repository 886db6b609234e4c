// Package inmemdb implements the core repositories in memory. It backs tests.
package inmemdb

import (
	"sort"
	"sync"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/category"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
)

// DB holds every table behind one lock.
type DB struct {
	mutex sync.RWMutex
	pk    map[string]int

	users       map[int]*user.User
	categories  map[int]*category.Category
	courses     map[int]*course.Course
	enrollments map[int]*enrollment.Enrollment
	assignments map[int]*assignment.Assignment
	submissions map[int]*submission.Submission
	reviews     map[int]*review.Review
}

func Open() *DB {
	return &DB{
		pk:          make(map[string]int),
		users:       make(map[int]*user.User),
		categories:  make(map[int]*category.Category),
		courses:     make(map[int]*course.Course),
		enrollments: make(map[int]*enrollment.Enrollment),
		assignments: make(map[int]*assignment.Assignment),
		submissions: make(map[int]*submission.Submission),
		reviews:     make(map[int]*review.Review),
	}
}

func (db *DB) nextID(table string) int {
	db.pk[table]++
	return db.pk[table]
}

func sortedIDs[T any](table map[int]*T) []int {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (db *DB) enrollmentOf(studentID, courseID int) *enrollment.Enrollment {
	for _, id := range sortedIDs(db.enrollments) {
		if e := db.enrollments[id]; e.StudentID == studentID && e.CourseID == courseID {
			return e
		}
	}
	return nil
}

func (db *DB) courseEnrollments(courseID int) []*enrollment.Enrollment {
	var out []*enrollment.Enrollment
	for _, id := range sortedIDs(db.enrollments) {
		if e := db.enrollments[id]; e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out
}

func (db *DB) courseReviews(courseID int) []*review.Review {
	var out []*review.Review
	for _, id := range sortedIDs(db.reviews) {
		if r := db.reviews[id]; r.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out
}

func (db *DB) assignmentSubmissions(assignmentID int) []*submission.Submission {
	var out []*submission.Submission
	for _, id := range sortedIDs(db.submissions) {
		if s := db.submissions[id]; s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out
}

func (db *DB) hasRole(userID int, role string) bool {
	u, ok := db.users[userID]
	return ok && u.Role == role
}

func (db *DB) userName(id int) string {
	if u, ok := db.users[id]; ok {
		return u.Name
	}
	return ""
}

func avgRating(reviews []*review.Review) null.Float64 {
	if len(reviews) == 0 {
		return null.Float64{}
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return null.Float64From(float64(sum) / float64(len(reviews)))
}

// averager accumulates an AVG() that is NULL over no values.
type averager struct {
	sum float64
	n   int
}

func (a *averager) add(v float64) {
	a.sum += v
	a.n++
}

func (a averager) value() null.Float64 {
	if a.n == 0 {
		return null.Float64{}
	}
	return null.Float64From(a.sum / float64(a.n))
}

func nullFloatDesc(a, b null.Float64) bool {
	if a.Valid != b.Valid {
		return a.Valid
	}
	return a.Float64 > b.Float64
}
