package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/services/email"
	"github.com/trezcool/lmsadmin/tests"
)

func fieldErrs(err error) []string {
	var fields []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+":"+fe.Tag())
		}
		return fields
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Fields {
			fields = append(fields, fe.Field)
		}
	}
	return fields
}

func TestNewUser_Validate(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, nil)
	validate, _ := shared.NewValidator()
	testutil.CreateUser(t, repos.Users, "Taken", "taken@test.test", "", user.RoleStudent)

	valid := user.NewUser{Name: "Alice Admin", Email: "alice@test.test", Password: "Tr0ub4dor&3", Role: user.RoleAdmin}
	with := func(f func(nu *user.NewUser)) user.NewUser {
		nu := valid
		f(&nu)
		return nu
	}

	tests := []struct {
		name       string
		nu         user.NewUser
		wantFields []string
	}{
		{name: "valid", nu: valid},
		{name: "cleaned", nu: with(func(nu *user.NewUser) { nu.Email = "  ALICE@test.test "; nu.Role = " Admin" })},
		{name: "name required", nu: with(func(nu *user.NewUser) { nu.Name = "   " }), wantFields: []string{"name:required"}},
		{name: "invalid email", nu: with(func(nu *user.NewUser) { nu.Email = "alice" }), wantFields: []string{"email:email"}},
		{name: "invalid role", nu: with(func(nu *user.NewUser) { nu.Role = "root" }), wantFields: []string{"role:role"}},
		{name: "short password", nu: with(func(nu *user.NewUser) { nu.Password = "a1b2c3" }), wantFields: []string{"password:pwdminlen"}},
		{name: "password with space", nu: with(func(nu *user.NewUser) { nu.Password = "correct horse" }), wantFields: []string{"password:pwdnospace"}},
		{name: "numeric password", nu: with(func(nu *user.NewUser) { nu.Password = "1234567890" }), wantFields: []string{"password:pwdnotallnum"}},
		{name: "password like name", nu: with(func(nu *user.NewUser) { nu.Password = "aliceadmin1" }), wantFields: []string{"password:pwdtoosim"}},
		{name: "duplicate email", nu: with(func(nu *user.NewUser) { nu.Email = "TAKEN@test.test" }), wantFields: []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			err := nu.Validate(context.Background(), validate, svc)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, fieldErrs(err))
		})
	}
}

func TestUpdateUser_Validate(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, nil)
	validate, _ := shared.NewValidator()
	usr := testutil.CreateUser(t, repos.Users, "Bob", "bob@test.test", "", user.RoleStudent)
	testutil.CreateUser(t, repos.Users, "Carl", "carl@test.test", "", user.RoleStudent)

	uu := user.UpdateUser{Name: "Bob B", Email: "bob@test.test", Role: user.RoleInstructor}
	assert.NoError(t, uu.Validate(context.Background(), usr, validate, svc), "own email and empty password are accepted")

	uu.Email = "carl@test.test"
	assert.Equal(t, []string{"email"}, fieldErrs(uu.Validate(context.Background(), usr, validate, svc)))
}

func TestService_Create(t *testing.T) {
	repos := testutil.NewRepos()
	mailSvc := emailsvc.NewConsoleServiceMock(testutil.Config(), testutil.Logger())
	svc := user.NewService(repos.Users, mailSvc)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{Name: "Dana", Email: "dana@test.test", Password: "Tr0ub4dor&3", Role: user.RoleStudent})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.NoError(t, usr.CheckPassword("Tr0ub4dor&3"))

	sent := mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "dana@test.test", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "student role")

	_, err = svc.Create(ctx, user.NewUser{Name: "Dana 2", Email: "dana@test.test", Password: "Tr0ub4dor&3", Role: user.RoleStudent})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Fields[0].Field)
}

func TestService_Update(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, nil)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repos.Users, "Eve", "eve@test.test", "Tr0ub4dor&3", user.RoleStudent)

	_, err := svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Eve E", Email: "eve@test.test", Role: user.RoleInstructor})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eve E", got.Name)
	assert.Equal(t, user.RoleInstructor, got.Role)
	assert.NoError(t, got.CheckPassword("Tr0ub4dor&3"), "an empty password keeps the current one")

	_, err = svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Eve E", Email: "eve@test.test", Role: user.RoleInstructor, Password: "N3wPassw0rd!"})
	require.NoError(t, err)
	got, _ = svc.GetByID(ctx, usr.ID)
	assert.NoError(t, got.CheckPassword("N3wPassw0rd!"))
}

func TestService_Delete(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, nil)
	ctx := context.Background()

	instructor := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	loner := testutil.CreateUser(t, repos.Users, "Lone", "lone@test.test", "", user.RoleStudent)
	cat := testutil.CreateCategory(t, repos.Categories, "Science")
	testutil.CreateCourse(t, repos.Courses, "Physics", 10, cat.ID, instructor.ID)

	err := svc.Delete(ctx, instructor.ID)
	assert.True(t, core.IsIntegrity(err))
	assert.EqualError(t, err, "Cannot delete user with existing courses, enrollments, or submissions. Please remove those first.")

	require.NoError(t, svc.Delete(ctx, loner.ID))
	_, err = svc.GetByID(ctx, loner.ID)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_Authenticate(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, nil)
	admin := testutil.CreateUser(t, repos.Users, "Root", "root@test.test", "Tr0ub4dor&3", user.RoleAdmin)
	testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "Tr0ub4dor&3", user.RoleInstructor)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "admin", email: " ROOT@test.test", pwd: "Tr0ub4dor&3"},
		{name: "wrong password", email: "root@test.test", pwd: "nope", wantErr: user.ErrInvalidCredentials},
		{name: "unknown email", email: "who@test.test", pwd: "Tr0ub4dor&3", wantErr: user.ErrInvalidCredentials},
		{name: "not an admin", email: "ian@test.test", pwd: "Tr0ub4dor&3", wantErr: user.ErrNotAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(context.Background(), tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, admin.ID, usr.ID)
		})
	}
}

func TestPasswordSimilarity(t *testing.T) {
	assert.Zero(t, user.PasswordSimilarity("anything", ""))
	assert.Equal(t, 1.0, user.PasswordSimilarity("AliceAdmin", "aliceadmin"))
	assert.Less(t, user.PasswordSimilarity("Tr0ub4dor&3", "alice@test.test"), .7)
}
