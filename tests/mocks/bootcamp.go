package mocks

import (
	"bytes"
	"context"
	"io"
	"math"
	"sync"

	"github.com/google/uuid"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// InMemoryBootcampRepo simula BootcampRepository y AveragesReader con outbox incluido.
type InMemoryBootcampRepo struct {
	Bootcamps map[uuid.UUID]*bootcampDomain.Bootcamp
	Outbox    []sharedDomain.OutboxEvent
	// Tuitions y Ratings alimentan las medias por bootcamp.
	Tuitions map[uuid.UUID][]float64
	Ratings  map[uuid.UUID][]float64
	// Cascaded guarda los bootcamps cuyo borrado arrastró cursos y reseñas.
	Cascaded []uuid.UUID
	GetCalls int
	GetErr   error
	mu       sync.Mutex
}

var (
	_ bootcampDomain.BootcampRepository = (*InMemoryBootcampRepo)(nil)
	_ bootcampDomain.AveragesReader     = (*InMemoryBootcampRepo)(nil)
)

func NewInMemoryBootcampRepo() *InMemoryBootcampRepo {
	return &InMemoryBootcampRepo{
		Bootcamps: make(map[uuid.UUID]*bootcampDomain.Bootcamp),
		Tuitions:  make(map[uuid.UUID][]float64),
		Ratings:   make(map[uuid.UUID][]float64),
	}
}

func copyBootcamp(b *bootcampDomain.Bootcamp) *bootcampDomain.Bootcamp {
	c := *b
	return &c
}

func (r *InMemoryBootcampRepo) Create(ctx context.Context, b *bootcampDomain.Bootcamp, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Bootcamps {
		if existing.Name == b.Name {
			return bootcampDomain.ErrBootcampAlreadyExists
		}
	}
	r.Bootcamps[b.ID] = copyBootcamp(b)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryBootcampRepo) Update(ctx context.Context, b *bootcampDomain.Bootcamp, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Bootcamps[b.ID]; !ok {
		return bootcampDomain.ErrBootcampNotFound
	}
	r.Bootcamps[b.ID] = copyBootcamp(b)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryBootcampRepo) GetByID(ctx context.Context, id uuid.UUID) (*bootcampDomain.Bootcamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetCalls++
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	b, ok := r.Bootcamps[id]
	if !ok {
		return nil, bootcampDomain.ErrBootcampNotFound
	}
	return copyBootcamp(b), nil
}

func (r *InMemoryBootcampRepo) DeleteCascade(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Bootcamps[id]; !ok {
		return bootcampDomain.ErrBootcampNotFound
	}
	delete(r.Bootcamps, id)
	delete(r.Tuitions, id)
	delete(r.Ratings, id)
	r.Cascaded = append(r.Cascaded, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryBootcampRepo) CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.Bootcamps {
		if b.User == owner {
			n++
		}
	}
	return n, nil
}

// FindWithinRadius usa la distancia del círculo máximo (haversine) sobre la esfera unidad.
func (r *InMemoryBootcampRepo) FindWithinRadius(ctx context.Context, lng, lat, radius float64) ([]*bootcampDomain.Bootcamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bootcampDomain.Bootcamp
	for _, b := range r.Bootcamps {
		if b.Location == nil || len(b.Location.Coordinates) != 2 {
			continue
		}
		if angularDistance(lng, lat, b.Location.Coordinates[0], b.Location.Coordinates[1]) <= radius {
			out = append(out, copyBootcamp(b))
		}
	}
	return out, nil
}

func (r *InMemoryBootcampRepo) SetAverages(ctx context.Context, id uuid.UUID, averageCost, averageRating *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Bootcamps[id]
	if !ok {
		return bootcampDomain.ErrBootcampNotFound
	}
	b.AverageCost = averageCost
	b.AverageRating = averageRating
	return nil
}

func (r *InMemoryBootcampRepo) AverageTuition(ctx context.Context, id uuid.UUID) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return mean(r.Tuitions[id])
}

func (r *InMemoryBootcampRepo) AverageRating(ctx context.Context, id uuid.UUID) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return mean(r.Ratings[id])
}

func mean(values []float64) (float64, bool, error) {
	if len(values) == 0 {
		return 0, false, nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true, nil
}

func angularDistance(lng1, lat1, lng2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// FakeGeocoder devuelve ubicaciones fijas por dirección.
type FakeGeocoder struct {
	Locations map[string]*bootcampDomain.Location
	Calls     []string
	mu        sync.Mutex
}

var _ bootcampDomain.Geocoder = (*FakeGeocoder)(nil)

func NewFakeGeocoder() *FakeGeocoder {
	return &FakeGeocoder{Locations: make(map[string]*bootcampDomain.Location)}
}

func (g *FakeGeocoder) Geocode(ctx context.Context, address string) (*bootcampDomain.Location, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, address)
	loc, ok := g.Locations[address]
	if !ok {
		return nil, bootcampDomain.ErrLocationNotFound
	}
	c := *loc
	return &c, nil
}

// MemPhotoStorage guarda las fotos en memoria.
type MemPhotoStorage struct {
	Files map[string][]byte
	mu    sync.Mutex
}

var _ bootcampDomain.PhotoStorage = (*MemPhotoStorage)(nil)

func NewMemPhotoStorage() *MemPhotoStorage {
	return &MemPhotoStorage{Files: make(map[string][]byte)}
}

func (s *MemPhotoStorage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[name] = buf.Bytes()
	return name, nil
}
