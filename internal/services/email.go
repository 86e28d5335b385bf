package services

import (
	"context"
	"fmt"
	"net/smtp"

	"clubhub/internal/config"
	"clubhub/internal/logger"

	"go.uber.org/zap"
)

type EmailService struct {
	auth     smtp.Auth
	from     string
	host     string
	port     string
	clubName string
}

func NewEmailService(cfg *config.Config) *EmailService {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth:     auth,
		from:     cfg.SMTPUser,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		clubName: cfg.ClubName,
	}
}

func (s *EmailService) Send(to []string, subject, body string) error {
	msg := []byte("Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, to, msg)
}

func (s *EmailService) SendHTML(to []string, subject, body string) error {
	msg := []byte("Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"utf-8\"\r\n\r\n" +
		body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, to, msg)
}

// SendLoginLink ставит письмо со ссылкой для входа в очередь отправки.
// Отказ транспорта логируется воркером, повторов нет.
func (s *EmailService) SendLoginLink(_ context.Context, to, link string) error {
	subject := fmt.Sprintf("Вход в %s", s.clubName)
	body := fmt.Sprintf(
		`<p>Здравствуйте!</p>
<p>Чтобы войти, перейдите по ссылке (действует 15 минут, одноразовая):</p>
<p><a href="%s">%s</a></p>
<p>Если вы не запрашивали вход — просто проигнорируйте это письмо.</p>`,
		link, link,
	)

	EmailQueue <- EmailJob{To: []string{to}, Subject: subject, Body: body, IsHTML: true}
	return nil
}

type EmailJob struct {
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}

var EmailQueue = make(chan EmailJob, 100) // глобальная очередь на 100 писем

func StartEmailWorker(emailService *EmailService) {
	go func() {
		for job := range EmailQueue {
			var err error
			if job.IsHTML {
				err = emailService.SendHTML(job.To, job.Subject, job.Body)
			} else {
				err = emailService.Send(job.To, job.Subject, job.Body)
			}
			if err != nil {
				logger.Log.Error("Не удалось отправить письмо", zap.Error(err))
			}
		}
	}()
}
