package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogDeliverer "entrega" los avisos escribiéndolos en el log estructurado.
// Es el transporte por defecto en despliegues locales.
type LogDeliverer struct {
	log *zap.Logger
}

var _ Deliverer = (*LogDeliverer)(nil)

func NewLogDeliverer(log *zap.Logger) *LogDeliverer {
	return &LogDeliverer{log: log}
}

func (d *LogDeliverer) Deliver(ctx context.Context, n Notice) error {
	emails := make([]string, len(n.Recipients))
	for i, r := range n.Recipients {
		emails[i] = r.Email
	}

	d.log.Info("📧 Notificación entregada",
		zap.String("subject", n.Subject),
		zap.Strings("to", emails),
		zap.String("body", n.Body),
	)
	return nil
}
