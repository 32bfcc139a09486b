package notifier

import (
	"context"
	"fmt"

	"caredoc-expiry/internal/models"
	"caredoc-expiry/internal/report"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPConfig SMTP 发送配置
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Recipient string // single static recipient, not per-patient
}

// SMTPNotifier 通过 SMTP 发送汇总邮件
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSMTPNotifier 创建 SMTP 通知器
func NewSMTPNotifier(cfg SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

// Send delivers the summary as an HTML email with a plain-text alternative.
func (n *SMTPNotifier) Send(ctx context.Context, subject string, summary *report.Summary) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return n.wrap(fmt.Errorf("invalid from address %q: %w", n.cfg.From, err))
	}
	if err := msg.To(n.cfg.Recipient); err != nil {
		return n.wrap(fmt.Errorf("invalid recipient address %q: %w", n.cfg.Recipient, err))
	}
	msg.Subject(subject)

	html, err := summary.RenderHTML()
	if err != nil {
		return n.wrap(err)
	}
	msg.SetBodyString(mail.TypeTextPlain, summary.RenderText())
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return n.wrap(fmt.Errorf("failed to create smtp client: %w", err))
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return n.wrap(fmt.Errorf("failed to send report email: %w", err))
	}

	n.logger.Info("Report email sent",
		zap.String("recipient", n.cfg.Recipient),
		zap.String("subject", subject),
	)
	return nil
}

func (n *SMTPNotifier) wrap(err error) error {
	return &models.DeliveryError{Provider: n.Name(), Recipient: n.cfg.Recipient, Err: err}
}
