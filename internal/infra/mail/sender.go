package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host string
	Port int
	From string

	creds  []Credential
	mu     sync.Mutex
	active int

	// Injection point for tests; defaults to a real SMTP dial.
	dialAndSend func(d *gomail.Dialer, m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, from string, creds []Credential) *EmailSender {
	return &EmailSender{
		Host:  host,
		Port:  port,
		From:  from,
		creds: creds,
		dialAndSend: func(d *gomail.Dialer, m ...*gomail.Message) error {
			return d.DialAndSend(m...)
		},
	}
}

// ParseCredentials reads "user1:pass1,user2:pass2" from the environment.
func ParseCredentials(raw string) []Credential {
	var creds []Credential
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		creds = append(creds, Credential{User: parts[0], Password: parts[1]})
	}
	return creds
}

// SendWelcome mails the welcome template, rotating through the configured
// credentials on failure. The credential that worked stays active for the
// next send; when every credential fails, the last error comes back and the
// caller (the queue worker) decides what to do with the message.
func (s *EmailSender) SendWelcome(to, name string) error {
	if len(s.creds) == 0 {
		return fmt.Errorf("no smtp credentials configured")
	}

	tmplPath := filepath.Join("templates", "welcome.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("failed to read welcome template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, WelcomeEmailData{Name: name}); err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Thank you for your enquiry!")
	m.SetBody("text/html", body.String())

	s.mu.Lock()
	start := s.active
	s.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < len(s.creds); attempt++ {
		idx := (start + attempt) % len(s.creds)
		cred := s.creds[idx]

		d := gomail.NewDialer(s.Host, s.Port, cred.User, cred.Password)
		if err := s.dialAndSend(d, m); err != nil {
			log.Printf("⚠️ [MAIL] credential %d failed, rotating: %v", idx, err)
			lastErr = err
			continue
		}

		s.mu.Lock()
		s.active = idx
		s.mu.Unlock()
		return nil
	}

	return fmt.Errorf("all smtp credentials failed: %w", lastErr)
}
