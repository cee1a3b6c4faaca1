package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/domodwyer/mailyak/v3"

	"github.com/edalquez/facegate/internal/config"
	"github.com/edalquez/facegate/internal/store"
)

// Mailer sends guardian notifications over SMTP.
type Mailer struct {
	cfg    *config.SMTPConfig
	notify *config.NotifyConfig
}

// NewMailer creates an SMTP sender. Callers should check cfg.Enabled()
// before wiring it in.
func NewMailer(cfg *config.SMTPConfig, notify *config.NotifyConfig) *Mailer {
	return &Mailer{cfg: cfg, notify: notify}
}

// Send builds and delivers one guardian email. The captured frame is
// attached inline when available.
func (m *Mailer) Send(ctx context.Context, n Notification) error {
	if n.GuardianEmail == "" {
		return fmt.Errorf("no guardian email for %s", n.StudentName)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Email, m.cfg.Password, m.cfg.Host)

	mail := mailyak.New(addr, auth)
	mail.From(m.cfg.Email)
	mail.FromName(m.cfg.FromName)
	mail.To(n.GuardianEmail)
	mail.Subject(m.subject(n))

	hasImage := false
	if n.ImagePath != "" {
		if f, err := os.Open(n.ImagePath); err == nil {
			defer f.Close()
			mail.AttachInline("capture.jpg", f)
			hasImage = true
		}
	}

	mail.Plain().Set(plainBody(n))
	mail.HTML().Set(htmlBody(n, hasImage))

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mail.Send(); err != nil {
		return fmt.Errorf("send mail to %s: %w", n.GuardianEmail, err)
	}
	return nil
}

func (m *Mailer) subject(n Notification) string {
	tpl := m.notify.SubjectIn
	if n.LogType == store.LogOut {
		tpl = m.notify.SubjectOut
	}
	if strings.Contains(tpl, "%s") {
		return fmt.Sprintf(tpl, n.StudentName)
	}
	return tpl
}

func action(t store.LogType) (verb, status string) {
	if t == store.LogOut {
		return "left", "TIME OUT"
	}
	return "arrived at", "TIME IN"
}

func guardianName(n Notification) string {
	if n.GuardianName != "" {
		return n.GuardianName
	}
	return "Guardian"
}

func plainBody(n Notification) string {
	verb, status := action(n.LogType)
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", guardianName(n))
	fmt.Fprintf(&b, "This is to inform you that %s has %s school.\n\n", n.StudentName, verb)
	fmt.Fprintf(&b, "Student: %s\n", n.StudentName)
	if n.YearLevel != "" {
		fmt.Fprintf(&b, "Year Level: %s\n", n.YearLevel)
	}
	fmt.Fprintf(&b, "Date: %s\n", n.Timestamp.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Time: %s\n", n.Timestamp.Format("3:04 PM"))
	fmt.Fprintf(&b, "Status: %s\n\n", status)
	b.WriteString("This is an automated message from the attendance system.\n")
	return b.String()
}

func htmlBody(n Notification, hasImage bool) string {
	verb, status := action(n.LogType)
	color := "#00cc7a"
	if n.LogType == store.LogOut {
		color = "#f59e0b"
	}

	var rows strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&rows, `<tr><td style="padding:8px 0;border-bottom:1px solid #e9ecef;"><strong style="color:#666;">%s:</strong><span style="float:right;color:#333;">%s</span></td></tr>`, label, value)
	}
	row("Student Name", n.StudentName)
	if n.YearLevel != "" {
		row("Year Level", n.YearLevel)
	}
	row("Date", n.Timestamp.Format("January 2, 2006"))
	row("Time", n.Timestamp.Format("3:04 PM"))
	fmt.Fprintf(&rows, `<tr><td style="padding:8px 0;"><strong style="color:#666;">Status:</strong><span style="float:right;color:%s;font-weight:bold;">%s</span></td></tr>`, color, status)

	imageSection := ""
	if hasImage {
		imageSection = `<p style="text-align:center;"><img src="cid:capture.jpg" alt="Captured Photo" style="max-width:100%;max-height:300px;border-radius:8px;"></p>`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html><body style="margin:0;padding:0;font-family:sans-serif;background-color:#f5f5f5;">
<table width="100%%" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff;">
<tr><td style="background-color:%s;padding:20px;text-align:center;"><h2 style="color:white;margin:0;">%s</h2></td></tr>
<tr><td style="padding:30px;">
<p>Dear <strong>%s</strong>,</p>
<p>This is to inform you that <strong>%s</strong> has %s school.</p>
<table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f8f9fa;border-radius:10px;padding:15px;">%s</table>
%s
<p style="font-size:13px;color:#666;">This is an automated message from the attendance system.</p>
</td></tr>
</table></body></html>`,
		color, status, guardianName(n), n.StudentName, verb, rows.String(), imageSection)
}
