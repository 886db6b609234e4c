package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

func Test_componentName(t *testing.T) {
	tests := map[string]string{
		"WEB : ":   "web",
		"DB : ":    "db",
		"ADMIN : ": "admin",
		"":         "",
	}
	for prefix, want := range tests {
		assert.Equal(t, want, componentName(prefix), prefix)
	}
}

func TestRollbarLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "WEB : ", 0), &core.Config{AppName: "LMS Admin", Env: "TEST"})
	logger.Enable(true) // no token: stays disabled
	assert.Equal(t, "web", logger.component)

	admin := user.User{ID: 7, Name: "Root", Email: "root@test.test", Role: user.RoleAdmin}
	other := user.User{ID: 8, Email: "other@test.test"}
	logger.Error("Something went wrong.",
		errors.New("boom"),
		map[string]interface{}{"path": "/courses", "method": "POST"},
		admin, other,
	)

	assert.Equal(t,
		"WEB : Something went wrong.\n"+
			"WEB : boom\n"+
			"WEB : method=POST path=/courses admin=root@test.test(#7)\n",
		buf.String(),
	)
}

func Test_newEntry(t *testing.T) {
	e := newEntry("db", []interface{}{"plain"})
	assert.Nil(t, e.admin)
	assert.Equal(t, map[string]interface{}{"component": "db"}, e.extras)
	assert.Equal(t, []string{"msg", "plain"}, e.lines("msg"))
}
