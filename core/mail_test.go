package core_test

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/user"
)

func TestParseEmailTemplates(t *testing.T) {
	require.NoError(t, core.ParseEmailTemplates())
}

func TestEmailMessage_Render(t *testing.T) {
	cd := core.ContextData{AppName: "LMS Admin", ConsoleBaseURL: "http://localhost:8000"}

	tests := []struct {
		name      string
		msg       core.EmailMessage
		wantParts []string
	}{
		{
			name: "welcome",
			msg: core.EmailMessage{
				TemplateName: "welcome",
				TemplateData: user.WelcomeData{Name: "Ada", Email: "ada@test.cd", Role: user.RoleStudent},
			},
			wantParts: []string{"Ada", "ada@test.cd", "LMS Admin"},
		},
		{
			name: "enrollment",
			msg: core.EmailMessage{
				TemplateName: "enrollment",
				TemplateData: enrollment.ConfirmationData{StudentName: "Ada", CourseTitle: "Physics", InstructorName: "Ian"},
			},
			wantParts: []string{"Ada", "Physics", "Ian"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			msg.To = []mail.Address{{Name: "Ada", Address: "ada@test.cd"}}
			require.NoError(t, msg.Render(cd))

			assert.True(t, msg.HasContent())
			assert.NotEmpty(t, msg.TextContent)
			assert.NotEmpty(t, msg.HTMLContent)
			for _, part := range tt.wantParts {
				assert.Contains(t, msg.TextContent, part)
				assert.Contains(t, msg.HTMLContent, part)
			}
			assert.Contains(t, msg.TextContent, cd.ConsoleBaseURL)
		})
	}

	t.Run("unknown template", func(t *testing.T) {
		msg := core.EmailMessage{TemplateName: "nope"}
		assert.Error(t, msg.Render(cd))
	})

	t.Run("plain body", func(t *testing.T) {
		msg := core.EmailMessage{BodyStr: "Hi"}
		require.NoError(t, msg.Render(cd))
		assert.Equal(t, "Hi", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
	})
}
