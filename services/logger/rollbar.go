package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

// RollbarLogger prints to a std logger and reports to Rollbar.
// The std logger prefix ("WEB : ", "DB : ", "ADMIN : ") names the reporting component.
type RollbarLogger struct {
	std       *log.Logger
	component string
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	l := &RollbarLogger{std: std, component: componentName(std.Prefix())}

	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(strings.ToLower(conf.Env))
	rollbar.SetServerHost(conf.ConsoleBaseURL)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetCustom(map[string]interface{}{"app": conf.AppName, "database": conf.Database.Name})
	rollbar.SetEnabled(conf.RollbarToken != "")
	return l
}

// componentName turns a log prefix like "WEB : " into "web".
func componentName(prefix string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(prefix), ":")))
}

// Enable turns Rollbar reporting on or off; it stays off without a token.
func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled && rollbar.Token() != "")
}

// Close waits for queued items to be sent.
func (l RollbarLogger) Close() {
	rollbar.Close()
}

// entry splits log args into the signed-in admin, request extras and anything else.
// expected fmt: msg | error, map[string]interface{}, user.User
type entry struct {
	admin  *user.User
	extras map[string]interface{}
	others []interface{}
}

func newEntry(component string, args []interface{}) entry {
	e := entry{extras: map[string]interface{}{"component": component}}
	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			if e.admin == nil { // only one user per item
				usr := v
				e.admin = &usr
			}
		case map[string]interface{}:
			for k, val := range v {
				e.extras[k] = val
			}
		default:
			e.others = append(e.others, arg)
		}
	}
	return e
}

func (e entry) rollbarArgs(msg string) []interface{} {
	if e.admin != nil {
		rollbar.SetPerson(strconv.Itoa(e.admin.ID), e.admin.Name, e.admin.Email)
	} else {
		rollbar.ClearPerson()
	}
	args := make([]interface{}, 0, len(e.others)+2)
	args = append(args, msg)
	args = append(args, e.others...)
	return append(args, e.extras)
}

// lines renders the entry for the std logger; extras are printed sorted by key.
func (e entry) lines(msg string) []string {
	out := []string{msg}
	for _, arg := range e.others {
		out = append(out, fmt.Sprintf("%+v", arg))
	}

	keys := make([]string, 0, len(e.extras))
	for k := range e.extras {
		if k != "component" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, e.extras[k]))
	}
	if e.admin != nil {
		pairs = append(pairs, fmt.Sprintf("admin=%s(#%d)", e.admin.Email, e.admin.ID))
	}
	if len(pairs) > 0 {
		out = append(out, strings.Join(pairs, " "))
	}
	return out
}

func (l RollbarLogger) log(report func(...interface{}), msg string, args []interface{}) entry {
	e := newEntry(l.component, args)
	report(e.rollbarArgs(msg)...)
	for _, line := range e.lines(msg) {
		l.std.Println(line)
	}
	return e
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.Debug, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.Info, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.Warning, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.Error, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.Critical, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}
