package domain

import (
	"context"
	"errors"
	"time"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// Activity es una fila del registro analítico: un evento de integración ya publicado.
type Activity struct {
	EventID     string
	Type        string
	Topic       string
	AggregateID string
	OccurredAt  time.Time
}

// DailyActivity agrega por día y topic los eventos registrados.
type DailyActivity struct {
	Day     time.Time `json:"day"`
	Topic   string    `json:"topic"`
	Created uint64    `json:"created"`
	Updated uint64    `json:"updated"`
	Deleted uint64    `json:"deleted"`
}

var ErrInvalidRange = sharedDomain.NewError(sharedDomain.ErrInvalid, "The 'from' date must be before the 'to' date")

// ErrAnalyticsDisabled se devuelve cuando no hay almacén analítico configurado.
var ErrAnalyticsDisabled = errors.New("analytics store is not configured")

type ActivityRepository interface {
	LogBatch(ctx context.Context, batch []Activity) error
	GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyActivity, error)
}
