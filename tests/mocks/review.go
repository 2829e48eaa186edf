package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// InMemoryReviewRepo simula ReviewRepository con la restricción única (bootcamp, user).
type InMemoryReviewRepo struct {
	Reviews map[uuid.UUID]*reviewDomain.Review
	Outbox  []sharedDomain.OutboxEvent
	mu      sync.Mutex
}

var _ reviewDomain.ReviewRepository = (*InMemoryReviewRepo)(nil)

func NewInMemoryReviewRepo() *InMemoryReviewRepo {
	return &InMemoryReviewRepo{Reviews: make(map[uuid.UUID]*reviewDomain.Review)}
}

func (r *InMemoryReviewRepo) Create(ctx context.Context, rv *reviewDomain.Review, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Reviews {
		if existing.Bootcamp == rv.Bootcamp && existing.User == rv.User {
			return reviewDomain.ErrReviewAlreadyExists
		}
	}
	cp := *rv
	r.Reviews[rv.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryReviewRepo) Update(ctx context.Context, rv *reviewDomain.Review, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Reviews[rv.ID]; !ok {
		return reviewDomain.ErrReviewNotFound
	}
	cp := *rv
	r.Reviews[rv.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryReviewRepo) Delete(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Reviews[id]; !ok {
		return reviewDomain.ErrReviewNotFound
	}
	delete(r.Reviews, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.Reviews[id]
	if !ok {
		return nil, reviewDomain.ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}
