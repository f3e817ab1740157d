package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// GomailProvider реализует Provider поверх SMTP через gomail
type GomailProvider struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func NewGomailProvider(host string, port int, username, password, fromEmail, fromName string) *GomailProvider {
	return &GomailProvider{
		dialer:    gomail.NewDialer(host, port, username, password),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (p *GomailProvider) Send(email *Email) error {
	m := gomail.NewMessage()

	from := email.From
	if from == "" {
		from = p.fromEmail
	}
	if p.fromName != "" {
		from = m.FormatAddress(from, p.fromName)
	}

	m.SetHeader("From", from)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.Body)

	return p.dialer.DialAndSend(m)
}

func (p *GomailProvider) SendVerificationCode(to string, code string) error {
	return p.Send(&Email{
		To:      []string{to},
		Subject: "Your verification code",
		Body:    fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p>", code),
	})
}

func (p *GomailProvider) Close() error {
	// gomail открывает соединение на каждый DialAndSend
	return nil
}
