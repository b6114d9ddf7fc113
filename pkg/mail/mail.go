package mail

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/camtauxe/nmsu-cfr/config"
)

// Sender SMTP 邮件发送器
// 接口化便于在单元测试中替换为记录型假实现
type Sender interface {
	Send(to []string, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSender 根据配置创建 SMTP 发送器
func NewSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	return &smtpSender{
		dialer: dialer,
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpSender) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Warn("邮件发送失败",
			zap.String("subject", subject),
			zap.Int("recipients", len(to)),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// NopSender 未配置邮件时的空实现
type NopSender struct{}

func (NopSender) Send(_ []string, _, _ string) error { return nil }
