package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/prospector/internal/infra/queue"
)

var ErrNoRecipient = errors.New("nenhum destinatário configurado")

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

const meetingTemplate = `Good news! A meeting was set with {{.FirstName}}{{if .LastName}} {{.LastName}}{{end}} from {{.Company}}.

Contact: {{.Email}}
`

var meetingBody = template.Must(template.New("meeting").Parse(meetingTemplate))

func NewEmailSender(host string, port int, user, password, from, notifyTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		NotifyTo: notifyTo,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// WithDialer troca o transporte SMTP (usado nos testes).
func (s *EmailSender) WithDialer(d Dialer) *EmailSender {
	s.dialer = d
	return s
}

func (s *EmailSender) Configured() bool {
	return s != nil && s.Host != ""
}

// SendCSVExport envia o CSV exportado como anexo.
func (s *EmailSender) SendCSVExport(ctx context.Context, to, filename, csv string) error {
	if to == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.exportMessage(to, filename, csv)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

// NotifyMeetingSet implements queue.Notifier.
func (s *EmailSender) NotifyMeetingSet(ctx context.Context, event queue.ProspectEvent) error {
	if s.NotifyTo == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.meetingMessage(event)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) exportMessage(to, filename, csv string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Prospect list export")
	m.SetBody("text/plain", "Your prospect list is attached.")
	m.Attach(filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, csv)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"text/csv"}}),
	)
	return m
}

func (s *EmailSender) meetingMessage(event queue.ProspectEvent) (*gomail.Message, error) {
	var body bytes.Buffer
	err := meetingBody.Execute(&body, MeetingEmailData{
		FirstName: event.FirstName,
		LastName:  event.LastName,
		Company:   event.Company,
		Email:     event.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.NotifyTo)
	m.SetHeader("Subject", fmt.Sprintf("📅 Meeting set: %s @ %s", event.FirstName, event.Company))
	m.SetBody("text/plain", body.String())
	return m, nil
}
