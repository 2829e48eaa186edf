package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	activityDomain "github.com/davicafu/devcamper/internal/activity/domain"
)

// DefaultWindow es el rango que se consulta si no se indica ninguno.
const DefaultWindow = 30 * 24 * time.Hour

type ActivityService struct {
	repo activityDomain.ActivityRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewActivityService acepta repo nil: en ese caso la analítica queda deshabilitada.
func NewActivityService(repo activityDomain.ActivityRepository, log *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log, now: time.Now}
}

// DailyTrend devuelve la actividad diaria entre from y to. Los ceros toman la ventana por defecto.
func (s *ActivityService) DailyTrend(ctx context.Context, from, to time.Time) ([]activityDomain.DailyActivity, error) {
	if s.repo == nil {
		return nil, activityDomain.ErrAnalyticsDisabled
	}
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-DefaultWindow)
	}
	if !from.Before(to) {
		return nil, activityDomain.ErrInvalidRange
	}

	trend, err := s.repo.GetDailyTrend(ctx, from, to)
	if err != nil {
		s.log.Error("Error leyendo la tendencia de actividad", zap.Error(err))
		return nil, err
	}
	if trend == nil {
		trend = []activityDomain.DailyActivity{}
	}
	return trend, nil
}
