package echoweb

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("LMS Admin")
	require.NoError(t, err)
	for _, name := range []string{"login", "error", "delete", "dashboard", "sql", "courses_list", "submissions_edit"} {
		assert.Contains(t, r.templates, name)
	}
}

func Test_money(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{in: 150.0, want: "$150.00"},
		{in: 0.0, want: "$0.00"},
		{in: 1234.5, want: "$1,234.50"},
		{in: 1234567.891, want: "$1,234,567.89"},
		{in: -42.0, want: "-$42.00"},
		{in: 7, want: "$7.00"},
		{in: null.Float64{}, want: "$0.00"},
		{in: null.Float64From(999.999), want: "$1,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, money(tt.in))
	}
}

func Test_decimal(t *testing.T) {
	assert.Equal(t, "4.5", decimal(4.45001))
	assert.Equal(t, "N/A", decimal(null.Float64{}))
	assert.Equal(t, "3.7", decimal(null.Float64From(3.66)))
}

func Test_grade(t *testing.T) {
	assert.Equal(t, "Pending", grade(null.Float64{}))
	assert.Equal(t, "85.00", grade(null.Float64From(85)))
}

func Test_stars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", stars(3))
	assert.Equal(t, "☆☆☆☆☆", stars(-1))
	assert.Equal(t, "★★★★★", stars(9))
}

func Test_selected(t *testing.T) {
	assert.EqualValues(t, "selected", selected("3", 3))
	assert.EqualValues(t, "", selected(0, 3))
}

func Test_safeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/courses?search=x": "/courses?search=x",
		"https://evil.test": "/",
		"//evil.test":       "/",
		`/\evil.test`:       "/",
	}
	for next, want := range tests {
		assert.Equal(t, want, safeNext(next), next)
	}
}

func Test_formErrors(t *testing.T) {
	validate, translator := shared.NewValidator()

	t.Run("validator errors", func(t *testing.T) {
		l := user.Login{Email: "nope"}
		err := l.Validate(validate)
		require.Error(t, err)

		fldErrs, ok := formErrors(errors.Wrap(err, "login"), translator)
		require.True(t, ok)
		assert.Contains(t, fldErrs, "email")
		assert.Contains(t, fldErrs, "password")
	})

	t.Run("field error", func(t *testing.T) {
		err := core.NewValidationError(user.ErrEmailExists, core.FieldError{Field: "email", Error: user.ErrEmailExists.Error()})
		fldErrs, ok := formErrors(err, translator)
		require.True(t, ok)
		assert.Equal(t, map[string]string{"email": user.ErrEmailExists.Error()}, fldErrs)
	})

	t.Run("other error", func(t *testing.T) {
		_, ok := formErrors(errors.New("boom"), translator)
		assert.False(t, ok)
	})
}
