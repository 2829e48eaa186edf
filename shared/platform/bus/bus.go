package bus

import "context"

// Keyer lo implementan los eventos que necesitan orden por clave (partición Kafka).
type Keyer interface {
	PartitionKey() string
}

// Topicer lo implementan los eventos que saben a qué topic van.
type Topicer interface {
	EventTopic() string
}

// La semántica de topic/nombre y formato del payload la decides en los adapters.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// MessageHandler es lo que cualquier consumidor de eventos debe cumplir,
// venga el mensaje de Kafka o del bus en memoria.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}
