package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	activityDomain "github.com/davicafu/devcamper/internal/activity/domain"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedBus "github.com/davicafu/devcamper/shared/platform/bus"
	sharedUtils "github.com/davicafu/devcamper/shared/utils"
)

// ActivityConsumer acumula los eventos de todos los topics y los vuelca por lotes
// en el almacén analítico, por tamaño o cada FlushEvery.
type ActivityConsumer struct {
	repo       activityDomain.ActivityRepository
	log        *zap.Logger
	batchSize  int
	flushEvery time.Duration

	mu     sync.Mutex
	buffer []activityDomain.Activity
}

var _ sharedBus.MessageHandler = (*ActivityConsumer)(nil)

// Topics a los que hay que suscribir el consumidor.
var Topics = sharedEvents.AllTopics

func NewActivityConsumer(repo activityDomain.ActivityRepository, batchSize int, flushEvery time.Duration, logger *zap.Logger) *ActivityConsumer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &ActivityConsumer{
		repo:       repo,
		log:        logger,
		batchSize:  batchSize,
		flushEvery: flushEvery,
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *ActivityConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var evt sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, activityDomain.Activity{
		EventID:     evt.ID,
		Type:        evt.Type,
		Topic:       evt.Topic,
		AggregateID: evt.AggregateID,
		OccurredAt:  sharedUtils.Ternary(evt.Timestamp.IsZero(), time.Now().UTC(), evt.Timestamp),
	})
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()

	if full {
		c.Flush(ctx)
	}
}

// Flush vuelca lo acumulado. Si el almacén falla el lote se conserva para el siguiente intento.
func (c *ActivityConsumer) Flush(ctx context.Context) {
	c.mu.Lock()
	batch := c.buffer
	c.buffer = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	ctxLog, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := c.repo.LogBatch(ctxLog, batch); err != nil {
		c.log.Warn("Failed to log activity batch", zap.Int("size", len(batch)), zap.Error(err))
		c.mu.Lock()
		c.buffer = append(batch, c.buffer...)
		c.mu.Unlock()
		return
	}
	c.log.Debug("Actividad registrada", zap.Int("size", len(batch)))
}

// Pending devuelve cuántos eventos esperan a ser volcados.
func (c *ActivityConsumer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

// Start vacía el buffer periódicamente y una última vez al cancelar el contexto.
func (c *ActivityConsumer) Start(ctx context.Context) {
	if c.flushEvery <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(c.flushEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.Flush(ctx)
				c.log.Info("ActivityConsumer stopped")
				return
			case <-ticker.C:
				c.Flush(ctx)
			}
		}
	}()
}
