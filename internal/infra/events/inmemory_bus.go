package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	sharedBus "github.com/davicafu/devcamper/shared/platform/bus"
)

// message es lo que viaja por los canales: misma forma que un mensaje de Kafka.
type message struct {
	key     string
	payload []byte
}

// InMemoryEventBus reparte eventos por topic entre suscriptores locales (canales de Go).
type InMemoryEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan message
	log         *zap.Logger
}

// Verifica en tiempo de compilación que cumple la interfaz
var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make(map[string][]chan message),
		log:         log,
	}
}

// Publish serializa el evento y lo entrega a los suscriptores de su topic.
// Si el buffer de un suscriptor está lleno el evento se descarta para ese suscriptor.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	topicer, ok := event.(sharedBus.Topicer)
	if !ok || topicer.EventTopic() == "" {
		return ErrNoTopic
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var key string
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = keyer.PartitionKey()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers[topicer.EventTopic()] {
		select {
		case ch <- message{key: key, payload: payload}:
		default:
			b.log.Warn("⚠️ Suscriptor saturado, evento descartado", zap.String("topic", topicer.EventTopic()))
		}
	}
	return nil
}

// Subscribe arranca una goroutine que entrega al handler los eventos de los topics indicados.
func (b *InMemoryEventBus) Subscribe(ctx context.Context, handler sharedBus.MessageHandler, bufferSize int, topics ...string) {
	ch := make(chan message, bufferSize)

	b.mu.Lock()
	for _, t := range topics {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				handler.HandleMessage(ctx, msg.key, msg.payload)
			}
		}
	}()
}
