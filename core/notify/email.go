package notify

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"statuspulse/core/store"
)

type EmailMessage struct {
	Subject string
	Body    string
}

type MailSender interface {
	Send(settings store.NotificationSettings, msg EmailMessage) error
}

// SMTPSender delivers through the configured SMTP relay.
type SMTPSender struct{}

func (SMTPSender) Send(settings store.NotificationSettings, msg EmailMessage) error {
	addr := net.JoinHostPort(settings.SMTPHost, strconv.Itoa(settings.SMTPPort))
	from := strings.TrimSpace(settings.EmailFrom)
	if from == "" {
		from = settings.SMTPUser
	}
	var auth smtp.Auth
	if settings.SMTPPassword != "" {
		auth = smtp.PlainAuth("", settings.SMTPUser, settings.SMTPPassword, settings.SMTPHost)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(settings.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return smtp.SendMail(addr, auth, from, settings.Recipients, []byte(b.String()))
}

// BuildEmail renders the alert or recovery message for an event.
func BuildEmail(ev Event) EmailMessage {
	var msg EmailMessage
	lines := []string{
		fmt.Sprintf("Endpoint: %s", ev.Endpoint.Name),
		fmt.Sprintf("URL: %s", ev.Endpoint.URL),
		fmt.Sprintf("Incident: #%d", ev.Incident.ID),
		fmt.Sprintf("Started at: %s", ev.Incident.StartedAt.UTC().Format(time.RFC3339)),
	}
	if ev.Kind == EventUp {
		msg.Subject = fmt.Sprintf("[statuspulse] RECOVERED: %s is back up", ev.Endpoint.Name)
		if ev.Incident.ResolvedAt != nil {
			lines = append(lines, fmt.Sprintf("Resolved at: %s", ev.Incident.ResolvedAt.UTC().Format(time.RFC3339)))
		}
		if minutes, ok := ev.Incident.DowntimeMinutes(); ok {
			lines = append(lines, fmt.Sprintf("Downtime: %d minutes", minutes))
		}
	} else {
		msg.Subject = fmt.Sprintf("[statuspulse] DOWN: %s is unreachable", ev.Endpoint.Name)
		if ev.Reason != "" {
			lines = append(lines, fmt.Sprintf("Reason: %s", ev.Reason))
		}
	}
	msg.Body = strings.Join(lines, "\n") + "\n"
	return msg
}
