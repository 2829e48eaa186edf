package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/devcamper/shared/platform/bus"
)

var ErrNoTopic = errors.New("event has no topic")

// KafkaPublisher escribe en el topic que indica cada evento (sharedBus.Topicer).
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// Verificación estática
var _ sharedBus.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaWriter crea un writer sin topic fijo; el topic va en cada mensaje.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{}, // misma clave -> misma partición
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	topicer, ok := event.(sharedBus.Topicer)
	if !ok || topicer.EventTopic() == "" {
		return ErrNoTopic
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var key []byte
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = []byte(keyer.PartitionKey())
	}

	msg := kafka.Message{
		Topic: topicer.EventTopic(),
		Key:   key,
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("topic", msg.Topic), zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.String("topic", msg.Topic), zap.ByteString("key", key))
	return nil
}
