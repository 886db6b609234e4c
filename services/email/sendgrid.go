package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/lmsadmin/core"
)

const (
	sgHost     = "https://api.sendgrid.com"
	sgEndpoint = "/v3/mail/send"

	plainCategory = "plain" // messages without a template
)

// sendgridService sends console mail (welcome, enrollment confirmation) through the SendGrid v3 API.
// Every recipient gets its own personalization, so students never see each other's addresses.
// In test mode, SendGrid's sandbox validates messages without delivering them.
type sendgridService struct {
	key        string
	from       *sgmail.Email
	replyTo    *sgmail.Email
	subjPrefix string
	category   string
	sandbox    bool
	context    core.ContextData
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *sendgridService {
	svc := &sendgridService{
		key:        conf.SendgridApiKey,
		from:       sgEmail(conf.DefaultFromEmail),
		subjPrefix: "[" + conf.AppName + "] ",
		category:   "lms-" + core.CleanString(conf.Env, true /* lower */),
		sandbox:    conf.TestMode,
		context:    core.ContextData{AppName: conf.AppName, ConsoleBaseURL: conf.ConsoleBaseURL},
		logger:     logger,
	}
	if conf.SupportEmail.Address != "" {
		svc.replyTo = sgEmail(conf.SupportEmail)
	}
	return svc
}

func (svc sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc sendgridService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(svc.context); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering email %q", msg.TemplateName), errors.Wrap(err, "rendering email"))
		return
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	svc.send(*msg)
}

// prepare builds the v3 payload of an already rendered message.
func (svc sendgridService) prepare(msg core.EmailMessage) *sgmail.SGMailV3 {
	template := msg.TemplateName
	if template == "" {
		template = plainCategory
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	if svc.replyTo != nil {
		m.SetReplyTo(svc.replyTo)
	}
	for _, to := range msg.To {
		p := sgmail.NewPersonalization()
		p.Subject = svc.subjPrefix + msg.Subject
		p.AddTos(sgEmail(to))
		p.SetCustomArg("template", template)
		m.AddPersonalizations(p)
	}
	m.AddCategories(svc.category, template)

	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	if svc.sandbox {
		m.SetMailSettings(sgmail.NewMailSettings().SetSandboxMode(sgmail.NewSetting(true)))
	}
	return m
}

func sgEmail(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}

func (svc sendgridService) send(msg core.EmailMessage) {
	req := sendgrid.GetRequest(svc.key, sgEndpoint, sgHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := sendgrid.API(req)
	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("sending %q email: %v", msg.TemplateName, err), errors.WithStack(err))
	case res.StatusCode >= http.StatusBadRequest:
		svc.logger.Error(fmt.Sprintf("sending %q email to %d recipient(s) - status: %d - body: %s",
			msg.TemplateName, len(msg.To), res.StatusCode, res.Body))
	}
}
