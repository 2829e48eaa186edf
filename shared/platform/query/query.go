package query

import (
	"context"
	"errors"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// ---------- Tipos de filtrado / paginación / ordenamiento ----------

const (
	DefaultPage  = 1
	DefaultLimit = 25

	// IDField es el campo de identidad que toda proyección conserva.
	IDField = "_id"

	// DefaultSortField se usa cuando la petición no indica orden.
	DefaultSortField = "createdAt"
)

// ErrQueryExecution envuelve cualquier fallo del almacén durante Find o Count.
var ErrQueryExecution = errors.New("query execution failed")

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "createdAt", "name", "averageCost"
	Desc  bool
}

// Document es un registro tal como sale del almacén, ya proyectado.
type Document map[string]interface{}

// Populate describe cómo resolver una relación en línea en lugar de su identificador.
//
// Directa (Many=false): LocalField guarda el id del documento relacionado,
// p.ej. course.bootcamp -> bootcamps._id.
// Inversa (Many=true): los documentos relacionados apuntan al actual,
// p.ej. bootcamp._id <- courses.bootcamp.
type Populate struct {
	Path         string   // campo del resultado que recibe la relación
	From         string   // colección de los documentos relacionados
	LocalField   string   // por defecto Path
	ForeignField string   // por defecto "_id"
	Select       []string // proyección de los documentos relacionados (vacío = todo)
	Many         bool
}

// Local devuelve el campo local efectivo de la relación.
func (p Populate) Local() string {
	if p.LocalField != "" {
		return p.LocalField
	}
	return p.Path
}

// Foreign devuelve el campo remoto efectivo de la relación.
func (p Populate) Foreign() string {
	if p.ForeignField != "" {
		return p.ForeignField
	}
	return IDField
}

// FindSpec es la consulta ya estructurada que se entrega al almacén.
type FindSpec struct {
	Conditions []sharedDomain.Criterion
	Select     []string
	Sort       []Sort
	Skip       int
	Limit      int
	Populate   []Populate
}

// Collection es la abstracción mínima de una colección consultable.
// Find y Count deben interpretar Conditions de la misma forma.
type Collection interface {
	Find(ctx context.Context, spec FindSpec) ([]Document, error)
	Count(ctx context.Context, conds []sharedDomain.Criterion) (int64, error)
}
