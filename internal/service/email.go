package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) Send(ctx context.Context, email, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailService) SendReturnReminder(ctx context.Context, email, name, productName string, endDate time.Time) error {
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder that your reservation of %s ends on %s. Please return the equipment on time.\n\nBest regards,\nThe Gearbook Team",
		name, productName, endDate.Format("2006-01-02"))
	return s.Send(ctx, email, "Return reminder", body)
}
