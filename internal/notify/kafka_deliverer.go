package notify

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaDeliverer publica cada aviso en un topic de Kafka para que lo recoja
// un servicio de correo externo. La clave del mensaje es el asunto, de forma
// que los avisos de un mismo evento caen en la misma partición.
type KafkaDeliverer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

var _ Deliverer = (*KafkaDeliverer)(nil)

func NewKafkaDeliverer(writer *kafka.Writer, log *zap.Logger) *KafkaDeliverer {
	return &KafkaDeliverer{writer: writer, log: log}
}

func (d *KafkaDeliverer) Deliver(ctx context.Context, n Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(n.Subject),
		Value: data,
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("Error publishing notice to Kafka", zap.Error(err))
		return err
	}

	d.log.Debug("Notice published successfully", zap.String("subject", n.Subject))
	return nil
}
