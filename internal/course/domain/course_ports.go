package domain

import (
	"context"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

var (
	ErrCourseNotFound   = sharedDomain.NewError(sharedDomain.ErrNotFound, "No course")
	ErrBootcampNotFound = sharedDomain.NewError(sharedDomain.ErrNotFound, "No bootcamp")
)

// --- Repositorio de Cursos ---
type CourseRepository interface {
	Create(ctx context.Context, c *Course, evt sharedDomain.OutboxEvent) error
	Update(ctx context.Context, c *Course, evt sharedDomain.OutboxEvent) error
	Delete(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Course, error)
}

// BootcampLookup resuelve el propietario del bootcamp al que se añade un curso.
// Debe devolver ErrBootcampNotFound si no existe.
type BootcampLookup interface {
	BootcampOwner(ctx context.Context, bootcampID uuid.UUID) (uuid.UUID, error)
}
