package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/marcelovidal/padel-v1-sub001/config"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

var claimResolvedTmpl = template.Must(template.New("claim_resolved").Parse(`
<h2>Заявка на клуб «{{.ClubName}}»</h2>
{{if .Approved}}
<p>Ваша заявка одобрена. Теперь вы управляете страницей клуба.</p>
{{else}}
<p>Ваша заявка отклонена. Вы можете подать новую заявку, уточнив контактные данные.</p>
{{end}}
`))

var resultRecordedTmpl = template.Must(template.New("result_recorded").Parse(`
<h2>Результат матча записан</h2>
<p>Счёт: {{.Score}}. Победила команда {{.WinnerTeam}}.</p>
`))

func (s *EmailService) SendClaimResolved(to string, clubName string, approved bool) error {
	var body bytes.Buffer
	err := claimResolvedTmpl.Execute(&body, struct {
		ClubName string
		Approved bool
	}{ClubName: clubName, Approved: approved})
	if err != nil {
		return fmt.Errorf("failed to render claim email: %w", err)
	}

	subject := "Заявка на клуб отклонена"
	if approved {
		subject = "Заявка на клуб одобрена"
	}
	return s.send([]string{to}, subject, body.String())
}

func (s *EmailService) SendResultRecorded(to string, score string, winnerTeam string) error {
	var body bytes.Buffer
	err := resultRecordedTmpl.Execute(&body, struct {
		Score      string
		WinnerTeam string
	}{Score: score, WinnerTeam: winnerTeam})
	if err != nil {
		return fmt.Errorf("failed to render result email: %w", err)
	}
	return s.send([]string{to}, "Результат матча записан", body.String())
}

func (s *EmailService) send(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка команды MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("ошибка команды RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи тела письма: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка завершения письма: %w", err)
	}

	return nil
}
