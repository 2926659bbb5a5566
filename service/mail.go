package service

import (
	"errors"
	"fmt"

	"postframe/queue-api/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends the transactional mails (invites, password resets) over
// plain SMTP.
type Mailer struct {
	cfg *config.Config
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendInviteMail(sendTo, inviteLink, message, senderEmail string) error {
	body := fmt.Sprintf("You've been invited to join a workspace. Click <a href='%s'>here</a> to accept.<br><br>This link will expire in 30 days.", inviteLink)
	if message != "" {
		body = fmt.Sprintf("<p>%s</p>", message) + body
	}
	if senderEmail != "" {
		body += fmt.Sprintf("<br><br>Invited by %s", senderEmail)
	}

	return m.send(sendTo, "You've been invited to a workspace", body)
}

func (m *Mailer) SendResetMail(sendTo, resetLink string) error {
	body := fmt.Sprintf("Click <a href='%s'>here</a> to reset your password.<br><br>This link will expire in 1 hour. If you didn't request a reset you can ignore this mail.", resetLink)

	return m.send(sendTo, "Reset your password", body)
}

func (m *Mailer) send(sendTo, subject, body string) error {
	from := m.cfg.Mail.Sender
	if sendTo == from {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", sendTo)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Mail.Host, m.cfg.Mail.Port, from, m.cfg.Mail.Password)

	if err := d.DialAndSend(msg); err != nil {
		return err
	}

	return nil
}
