package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedBus "github.com/davicafu/devcamper/shared/platform/bus"
)

// Worker procesa eventos pendientes de la tabla outbox de forma genérica.
type Worker struct {
	name          string
	repo          sharedDomain.OutboxRepository
	publisher     sharedBus.EventPublisher
	eventRegistry map[string]sharedEvents.EventMetadata
	interval      time.Duration
	batchSize     int
	log           *zap.Logger
}

func NewOutboxWorker(
	name string,
	repo sharedDomain.OutboxRepository,
	publisher sharedBus.EventPublisher,
	registry map[string]sharedEvents.EventMetadata,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	return &Worker{
		name:          name,
		repo:          repo,
		publisher:     publisher,
		eventRegistry: registry,
		interval:      interval,
		batchSize:     batchSize,
		log:           log.With(zap.String("outbox", name)),
	}
}

// Start inicia el bucle de polling del worker. Bloquea hasta que ctx se cancela.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Outbox worker iniciado", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🛑 Outbox worker detenido.")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

func (w *Worker) ProcessBatch(ctx context.Context) {
	events, err := w.repo.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Error al obtener eventos pendientes", zap.Error(err))
		return
	}
	if len(events) > 0 {
		w.log.Debug(fmt.Sprintf("📬 %d eventos encontrados para procesar", len(events)))
	}

	for _, evt := range events {
		w.publishAndMark(ctx, evt)
	}
}

func (w *Worker) publishAndMark(ctx context.Context, evt sharedDomain.OutboxEvent) {
	integration, err := w.toIntegrationEvent(evt)
	if err != nil {
		// Reintentar no lo arreglaría: se aparta con el motivo para no bloquear los siguientes.
		w.log.Error("Evento de outbox no publicable", zap.String("event_id", evt.ID.String()), zap.Error(err))
		if markErr := w.repo.MarkOutboxFailed(ctx, evt.ID, err.Error()); markErr != nil {
			w.log.Warn("⚠️ No se pudo apartar evento fallido",
				zap.String("event_id", evt.ID.String()),
				zap.Error(markErr),
			)
		}
		return
	}

	if err := w.publisher.Publish(ctx, integration); err != nil {
		w.log.Warn("⚠️ No se pudo publicar evento",
			zap.String("event_id", evt.ID.String()),
			zap.Error(err),
		)
		return // No lo marcamos como procesado para que se reintente
	}

	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		w.log.Warn("⚠️ No se pudo marcar evento como procesado",
			zap.String("event_id", evt.ID.String()),
			zap.Error(err),
		)
		return
	}
	w.log.Info("✅ Evento publicado y marcado",
		zap.String("event_id", evt.ID.String()),
		zap.String("event_type", evt.EventType),
	)
}

// toIntegrationEvent valida el payload contra el tipo registrado y lo envuelve con su topic.
func (w *Worker) toIntegrationEvent(evt sharedDomain.OutboxEvent) (sharedEvents.IntegrationEvent, error) {
	metadata, ok := w.eventRegistry[evt.EventType]
	if !ok {
		return sharedEvents.IntegrationEvent{}, fmt.Errorf("tipo de evento desconocido: %s", evt.EventType)
	}

	typed := reflect.New(metadata.Type).Interface()
	raw, err := json.Marshal(evt.Payload)
	if err != nil {
		return sharedEvents.IntegrationEvent{}, err
	}
	if err := json.Unmarshal(raw, typed); err != nil {
		return sharedEvents.IntegrationEvent{}, fmt.Errorf("payload inválido para %s: %w", evt.EventType, err)
	}
	data, err := json.Marshal(typed)
	if err != nil {
		return sharedEvents.IntegrationEvent{}, err
	}

	return sharedEvents.IntegrationEvent{
		ID:          evt.ID.String(),
		Type:        evt.EventType,
		Topic:       metadata.Topic,
		AggregateID: evt.AggregateID,
		Timestamp:   evt.CreatedAt,
		Data:        data,
	}, nil
}
