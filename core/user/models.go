package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/lmsadmin/core"
)

// Roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"

	// RoleAll is the list filter value meaning "any role".
	RoleAll = "all"
)

var Roles = []Role{
	{Name: "Student", Value: RoleStudent},
	{Name: "Instructor", Value: RoleInstructor},
	{Name: "Admin", Value: RoleAdmin},
}

type Role struct {
	Name  string
	Value string
}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r.Value == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           int       `db:"user_id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u User) IsStudent() bool    { return u.Role == RoleStudent }

// RoleCounts holds the number of users per role.
type RoleCounts struct {
	Students    int `db:"students"`
	Instructors int `db:"instructors"`
	Admins      int `db:"admins"`
}

func (rc RoleCounts) Total() int {
	return rc.Students + rc.Instructors + rc.Admins
}

// Dependencies counts the rows referencing a user.
type Dependencies struct {
	Courses     int `db:"courses"`
	Enrollments int `db:"enrollments"`
	Submissions int `db:"submissions"`
}

func (d Dependencies) Any() bool {
	return d.Courses > 0 || d.Enrollments > 0 || d.Submissions > 0
}

type (
	// EnrollmentSummary is one of a student's enrollments.
	EnrollmentSummary struct {
		EnrollmentID   int       `db:"enrollment_id"`
		EnrolledAt     time.Time `db:"enrolled_at"`
		Progress       int       `db:"progress"`
		CourseID       int       `db:"course_id"`
		CourseTitle    string    `db:"course_title"`
		Price          float64   `db:"price"`
		InstructorName string    `db:"instructor_name"`
	}

	// SubmissionSummary is one of a student's submissions.
	SubmissionSummary struct {
		SubmissionID    int          `db:"submission_id"`
		SubmittedAt     time.Time    `db:"submitted_at"`
		Grade           null.Float64 `db:"grade"`
		AssignmentTitle string       `db:"assignment_title"`
		CourseTitle     string       `db:"course_title"`
	}

	// CourseSummary is one of an instructor's courses.
	CourseSummary struct {
		CourseID      int          `db:"course_id"`
		Title         string       `db:"title"`
		Price         float64      `db:"price"`
		EnrolledCount int          `db:"enrolled_count"`
		AvgRating     null.Float64 `db:"avg_rating"`
	}

	// ReviewSummary is a review written by a user.
	ReviewSummary struct {
		ReviewID    int         `db:"review_id"`
		Rating      int         `db:"rating"`
		Comment     null.String `db:"comment"`
		CreatedAt   time.Time   `db:"created_at"`
		CourseID    int         `db:"course_id"`
		CourseTitle string      `db:"course_title"`
	}

	// Detail is everything the user page shows.
	Detail struct {
		User
		Enrollments []EnrollmentSummary
		Submissions []SubmissionSummary
		Courses     []CourseSummary
		Reviews     []ReviewSummary
	}
)

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required"`
	Role     string `form:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// An empty Password keeps the current one.
type UpdateUser struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password"`
	Role     string `form:"role" validate:"required,role"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc *Service) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Role = core.CleanString(uu.Role, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr.ID)
}

// Login holds sign-in credentials.
type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (l *Login) Validate(validate *validator.Validate) error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	return validate.Struct(l)
}

type QueryFilter struct {
	Search string `query:"search"`
	Role   string `query:"role"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	if qf.Role == RoleAll || !IsValidRole(qf.Role) {
		qf.Role = ""
	}
}
