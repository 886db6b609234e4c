package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/trezcool/lmsadmin/core"
)

// RecentSubmissionsLimit is the number of submissions shown on a student's page.
const RecentSubmissionsLimit = 5

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("Email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAdmin           = errors.New("only admins can sign in")

	deleteGuardMessage = "Cannot delete user with existing courses, enrollments, or submissions. Please remove those first."
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if another user (not in excludedIDs) has this email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...int) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		QueryUsersByRole(ctx context.Context, role string) ([]User, error)
		CountRoles(ctx context.Context) (RoleCounts, error)
		// UpdateUser updates name, email and role; the password hash only when set.
		UpdateUser(ctx context.Context, usr User) (User, error)
		CountDependencies(ctx context.Context, id int) (Dependencies, error)
		DeleteUser(ctx context.Context, id int) error

		QueryStudentEnrollments(ctx context.Context, studentID int) ([]EnrollmentSummary, error)
		QueryStudentSubmissions(ctx context.Context, studentID, limit int) ([]SubmissionSummary, error)
		QueryInstructorCourses(ctx context.Context, instructorID int) ([]CourseSummary, error)
		QueryUserReviews(ctx context.Context, userID int) ([]ReviewSummary, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}

	// WelcomeData feeds the "welcome" email template.
	WelcomeData struct {
		Name  string
		Email string
		Role  string
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

// CheckUniqueness returns a *core.ValidationError when the email is taken by another user.
func (svc *Service) CheckUniqueness(ctx context.Context, email string, excludedIDs ...int) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if err == ErrEmailExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *Service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your account is ready",
		TemplateName: "welcome",
		TemplateData: WelcomeData{Name: usr.Name, Email: usr.Email, Role: usr.Role},
	})
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter)
}

// QueryByRole lists users holding role, ordered by name.
func (svc *Service) QueryByRole(ctx context.Context, role string) ([]User, error) {
	return svc.repo.QueryUsersByRole(ctx, role)
}

func (svc *Service) CountRoles(ctx context.Context) (RoleCounts, error) {
	return svc.repo.CountRoles(ctx)
}

func (svc *Service) Dependencies(ctx context.Context, id int) (Dependencies, error) {
	return svc.repo.CountDependencies(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:    id,
		Name:  uu.Name,
		Email: uu.Email,
		Role:  uu.Role,
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err == ErrEmailExists {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return usr, err
}

// SetPassword replaces the password of the user with this email.
func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// Delete removes a user that nothing references.
func (svc *Service) Delete(ctx context.Context, id int) error {
	deps, err := svc.repo.CountDependencies(ctx, id)
	if err != nil {
		return err
	}
	if deps.Any() {
		return core.NewIntegrityError(deleteGuardMessage)
	}
	return svc.repo.DeleteUser(ctx, id)
}

// Detail loads what the user page shows, depending on the user's role.
func (svc *Service) Detail(ctx context.Context, usr User) (Detail, error) {
	var err error
	d := Detail{User: usr}

	switch usr.Role {
	case RoleStudent:
		if d.Enrollments, err = svc.repo.QueryStudentEnrollments(ctx, usr.ID); err != nil {
			return Detail{}, err
		}
		if d.Submissions, err = svc.repo.QueryStudentSubmissions(ctx, usr.ID, RecentSubmissionsLimit); err != nil {
			return Detail{}, err
		}
	case RoleInstructor:
		if d.Courses, err = svc.repo.QueryInstructorCourses(ctx, usr.ID); err != nil {
			return Detail{}, err
		}
	}
	if d.Reviews, err = svc.repo.QueryUserReviews(ctx, usr.ID); err != nil {
		return Detail{}, err
	}
	return d, nil
}

// Authenticate returns the admin matching the credentials.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsAdmin() {
		return User{}, ErrNotAdmin
	}
	return usr, nil
}
