package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedBus "github.com/davicafu/devcamper/shared/platform/bus"
	sharedUtils "github.com/davicafu/devcamper/shared/utils"
)

// AveragesService es lo único que el consumidor necesita del servicio de bootcamps.
type AveragesService interface {
	RecalculateAverages(ctx context.Context, id uuid.UUID) error
}

// BootcampConsumer recalcula las medias de un bootcamp cuando cambian sus cursos o reseñas.
type BootcampConsumer struct {
	service AveragesService
	log     *zap.Logger
}

var _ sharedBus.MessageHandler = (*BootcampConsumer)(nil)

// Topics a los que hay que suscribir el consumidor.
var Topics = []string{sharedEvents.TopicCourses, sharedEvents.TopicReviews}

func NewBootcampConsumer(service AveragesService, logger *zap.Logger) *BootcampConsumer {
	return &BootcampConsumer{
		service: service,
		log:     logger,
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *BootcampConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Topic {
	case sharedEvents.TopicCourses:
		sharedUtils.UnmarshalAndHandle[sharedEvents.CourseChanged](c.log, base.Data, func(evt sharedEvents.CourseChanged) {
			c.recalculate(ctx, evt.BootcampID, base.Type)
		})
	case sharedEvents.TopicReviews:
		sharedUtils.UnmarshalAndHandle[sharedEvents.ReviewChanged](c.log, base.Data, func(evt sharedEvents.ReviewChanged) {
			c.recalculate(ctx, evt.BootcampID, base.Type)
		})
	default:
		c.log.Debug("Evento ignorado por el consumidor de bootcamps", zap.String("type", base.Type), zap.String("topic", base.Topic))
	}
}

func (c *BootcampConsumer) recalculate(ctx context.Context, rawID, eventType string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		c.log.Warn("Evento con bootcampId inválido", zap.String("type", eventType), zap.String("bootcamp_id", rawID))
		return
	}

	ctxAvg, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.service.RecalculateAverages(ctxAvg, id); err != nil {
		// El bootcamp puede haberse borrado en cascada: no hay nada que recalcular.
		if errors.Is(err, bootcampDomain.ErrBootcampNotFound) {
			c.log.Info("Bootcamp ya no existe, medias no recalculadas", zap.String("bootcamp_id", rawID))
			return
		}
		c.log.Warn("Failed to recalculate averages",
			zap.String("bootcamp_id", rawID),
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}
	c.log.Info("Medias recalculadas", zap.String("bootcamp_id", rawID), zap.String("type", eventType))
}
