// Package testutil creates fixtures in the in-memory database.
package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/category"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/services/logger"
	"github.com/trezcool/lmsadmin/storage/database/inmem"
)

// Repos groups the in-memory repositories sharing one DB.
type Repos struct {
	DB          *inmemdb.DB
	Users       user.Repository
	Categories  category.Repository
	Courses     course.Repository
	Enrollments enrollment.Repository
	Assignments assignment.Repository
	Submissions submission.Repository
	Reviews     review.Repository
}

func NewRepos() Repos {
	db := inmemdb.Open()
	return Repos{
		DB:          db,
		Users:       inmemdb.NewUserRepository(db),
		Categories:  inmemdb.NewCategoryRepository(db),
		Courses:     inmemdb.NewCourseRepository(db),
		Enrollments: inmemdb.NewEnrollmentRepository(db),
		Assignments: inmemdb.NewAssignmentRepository(db),
		Submissions: inmemdb.NewSubmissionRepository(db),
		Reviews:     inmemdb.NewReviewRepository(db),
	}
}

func Config() *core.Config {
	return &core.Config{
		AppName:          "LMS Admin",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "LMS Admin", Address: "noreply@test.test"},
		SupportEmail:     mail.Address{Name: "LMS Support", Address: "support@test.test"},
		ConsoleBaseURL:   "http://console.test",
		Server:           core.ServerConfig{SessionTTL: time.Hour, DisableReqLogs: true},
	}
}

// Logger discards its output; Rollbar stays disabled without a token.
func Logger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), Config())
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd, role string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{Name: name, Email: email, Role: role, CreatedAt: tstamp}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCategory(t *testing.T, repo category.Repository, name string) category.Category {
	cat, err := repo.CreateCategory(context.Background(), category.Category{Name: name})
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}
	return cat
}

func CreateCourse(t *testing.T, repo course.Repository, title string, price float64, categoryID, instructorID int) course.Course {
	c, err := repo.CreateCourse(context.Background(), course.Course{
		Title:        title,
		Price:        price,
		CategoryID:   categoryID,
		InstructorID: instructorID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func Enroll(t *testing.T, repo enrollment.Repository, studentID, courseID, progress int) enrollment.Enrollment {
	e, err := repo.CreateEnrollment(context.Background(), enrollment.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		Progress:   progress,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return e
}

func CreateAssignment(t *testing.T, repo assignment.Repository, courseID int, title string, due time.Time) assignment.Assignment {
	a, err := repo.CreateAssignment(context.Background(), assignment.Assignment{CourseID: courseID, Title: title, DueDate: due})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}

func CreateSubmission(t *testing.T, repo submission.Repository, assignmentID, studentID int, grade null.Float64) submission.Submission {
	s, err := repo.CreateSubmission(context.Background(), submission.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		SubmittedAt:  time.Now().UTC(),
		Grade:        grade,
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return s
}

func CreateReview(t *testing.T, repo review.Repository, courseID, studentID, rating int) review.Review {
	r, err := repo.CreateReview(context.Background(), review.Review{
		CourseID:  courseID,
		StudentID: studentID,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateReview() failed: %v", err)
	}
	return r
}
