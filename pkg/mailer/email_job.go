package mailer

import (
	"errors"
	"fmt"
	"strings"

	tpl "github.com/oksasatya/go-ddd-social/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "profile_updated"
	Data     map[string]any `json:"data,omitempty"`
}

var ErrUnknownTemplate = errors.New("unknown email template")

// ensureEmail backfills Data.Email from the recipient.
func (j *EmailJob) ensureEmail() {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if v, ok := j.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		j.Data["Email"] = j.To
	}
}

// Build returns the subject, text and html bodies to send.
func (j *EmailJob) Build() (subject, text, html string, err error) {
	if strings.TrimSpace(j.To) == "" {
		return "", "", "", errors.New("email job has no recipient")
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return "", "", "", errors.New("email job has neither template nor body")
		}
		return j.Subject, j.Text, j.HTML, nil
	}
	name := strings.ToLower(j.Template)
	if !tpl.Known(name) {
		return "", "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, j.Template)
	}
	j.ensureEmail()
	return tpl.Render(name, j.Data)
}
