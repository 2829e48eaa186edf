package domain

import (
	"context"
	"io"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

var (
	ErrBootcampNotFound      = sharedDomain.NewError(sharedDomain.ErrNotFound, "Bootcamp not found")
	ErrBootcampAlreadyExists = sharedDomain.NewError(sharedDomain.ErrConflict, "Duplicate field value entered")
	ErrLocationNotFound      = sharedDomain.NewError(sharedDomain.ErrInvalid, "Could not geocode the given address")
	ErrPhotoRequired         = sharedDomain.NewError(sharedDomain.ErrInvalid, "Please upload a file")
	ErrPhotoNotImage         = sharedDomain.NewError(sharedDomain.ErrInvalid, "Please upload an image file")
)

// --- Repositorio de Bootcamps ---
type BootcampRepository interface {
	// Debe devolver ErrBootcampAlreadyExists si el nombre ya existe.
	Create(ctx context.Context, b *Bootcamp, evt sharedDomain.OutboxEvent) error
	Update(ctx context.Context, b *Bootcamp, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bootcamp, error)
	// DeleteCascade elimina el bootcamp junto con sus cursos y reseñas en una transacción.
	DeleteCascade(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
	CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error)
	// FindWithinRadius busca bootcamps cuyo punto cae dentro del círculo (radio en radianes).
	FindWithinRadius(ctx context.Context, lng, lat, radius float64) ([]*Bootcamp, error)
	// SetAverages fija los campos calculados; nil elimina el campo.
	SetAverages(ctx context.Context, id uuid.UUID, averageCost, averageRating *float64) error
}

// AveragesReader agrega los cursos y reseñas de un bootcamp.
// ok=false indica que no hay documentos sobre los que calcular.
type AveragesReader interface {
	AverageTuition(ctx context.Context, bootcampID uuid.UUID) (avg float64, ok bool, err error)
	AverageRating(ctx context.Context, bootcampID uuid.UUID) (avg float64, ok bool, err error)
}

// Geocoder traduce una dirección o código postal a un punto.
// Debe devolver ErrLocationNotFound si el proveedor no encuentra resultados.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// PhotoStorage guarda la foto subida y devuelve el nombre con el que quedó guardada.
type PhotoStorage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}
