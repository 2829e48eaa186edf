package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// InMemoryCourseRepo simula CourseRepository guardando también el outbox.
type InMemoryCourseRepo struct {
	Courses map[uuid.UUID]*courseDomain.Course
	Outbox  []sharedDomain.OutboxEvent
	mu      sync.Mutex
}

var _ courseDomain.CourseRepository = (*InMemoryCourseRepo)(nil)

func NewInMemoryCourseRepo() *InMemoryCourseRepo {
	return &InMemoryCourseRepo{Courses: make(map[uuid.UUID]*courseDomain.Course)}
}

func (r *InMemoryCourseRepo) Create(ctx context.Context, c *courseDomain.Course, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.Courses[c.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCourseRepo) Update(ctx context.Context, c *courseDomain.Course, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Courses[c.ID]; !ok {
		return courseDomain.ErrCourseNotFound
	}
	cp := *c
	r.Courses[c.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCourseRepo) Delete(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Courses[id]; !ok {
		return courseDomain.ErrCourseNotFound
	}
	delete(r.Courses, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*courseDomain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Courses[id]
	if !ok {
		return nil, courseDomain.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

// FakeBootcampOwners resuelve propietarios de bootcamps desde un mapa.
// NotFound es el error que devuelve cuando el id no está en el mapa.
type FakeBootcampOwners struct {
	Owners   map[uuid.UUID]uuid.UUID
	NotFound error
}

func NewFakeBootcampOwners(notFound error) *FakeBootcampOwners {
	return &FakeBootcampOwners{Owners: make(map[uuid.UUID]uuid.UUID), NotFound: notFound}
}

func (f *FakeBootcampOwners) BootcampOwner(ctx context.Context, bootcampID uuid.UUID) (uuid.UUID, error) {
	owner, ok := f.Owners[bootcampID]
	if !ok {
		return uuid.Nil, f.NotFound
	}
	return owner, nil
}
