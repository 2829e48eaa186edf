package domain

import (
	"context"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

var (
	ErrReviewNotFound      = sharedDomain.NewError(sharedDomain.ErrNotFound, "No review")
	ErrBootcampNotFound    = sharedDomain.NewError(sharedDomain.ErrNotFound, "No bootcamp")
	ErrReviewAlreadyExists = sharedDomain.NewError(sharedDomain.ErrConflict, "Duplicate field value entered")
)

// --- Repositorio de Reseñas ---
type ReviewRepository interface {
	// Debe devolver ErrReviewAlreadyExists si el usuario ya reseñó el bootcamp.
	Create(ctx context.Context, r *Review, evt sharedDomain.OutboxEvent) error
	Update(ctx context.Context, r *Review, evt sharedDomain.OutboxEvent) error
	Delete(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
}

// BootcampLookup comprueba que el bootcamp existe. Debe devolver ErrBootcampNotFound si no.
type BootcampLookup interface {
	BootcampOwner(ctx context.Context, bootcampID uuid.UUID) (uuid.UUID, error)
}
