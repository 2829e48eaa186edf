package mailer

import (
	"context"

	"go.uber.org/zap"

	userDomain "github.com/davicafu/devcamper/internal/user/domain"
)

// LogMailer no envía nada: deja el correo en el log. Sirve para desarrollo.
type LogMailer struct {
	log *zap.Logger
}

var _ userDomain.Mailer = (*LogMailer)(nil)

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg userDomain.Message) error {
	m.log.Info("📧 Email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
