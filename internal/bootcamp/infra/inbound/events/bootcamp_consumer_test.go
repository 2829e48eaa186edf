package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
)

type fakeAverages struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (f *fakeAverages) RecalculateAverages(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	return f.err
}

func envelope(t *testing.T, topic, eventType string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(sharedEvents.IntegrationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Topic:     topic,
		Timestamp: time.Now(),
		Data:      raw,
	})
	require.NoError(t, err)
	return payload
}

func TestBootcampConsumer_RecalculatesOnCourseAndReviewEvents(t *testing.T) {
	svc := &fakeAverages{}
	consumer := NewBootcampConsumer(svc, zap.NewNop())
	bootcampID := uuid.New()

	consumer.HandleMessage(context.Background(), "k", envelope(t, sharedEvents.TopicCourses, "course.created",
		sharedEvents.CourseChanged{ID: uuid.NewString(), BootcampID: bootcampID.String(), Tuition: 8000}))
	consumer.HandleMessage(context.Background(), "k", envelope(t, sharedEvents.TopicReviews, "review.deleted",
		sharedEvents.ReviewChanged{ID: uuid.NewString(), BootcampID: bootcampID.String(), Rating: 9}))

	assert.Equal(t, []uuid.UUID{bootcampID, bootcampID}, svc.calls)
}

func TestBootcampConsumer_IgnoresOtherTopicsAndBadPayloads(t *testing.T) {
	svc := &fakeAverages{}
	consumer := NewBootcampConsumer(svc, zap.NewNop())

	consumer.HandleMessage(context.Background(), "k", envelope(t, sharedEvents.TopicUsers, "user.created",
		sharedEvents.UserChanged{ID: uuid.NewString()}))
	consumer.HandleMessage(context.Background(), "k", []byte("not-json"))
	consumer.HandleMessage(context.Background(), "k", envelope(t, sharedEvents.TopicCourses, "course.created",
		sharedEvents.CourseChanged{BootcampID: "not-a-uuid"}))

	assert.Empty(t, svc.calls)
}

func TestBootcampConsumer_DeletedBootcampIsNotAnError(t *testing.T) {
	svc := &fakeAverages{err: bootcampDomain.ErrBootcampNotFound}
	consumer := NewBootcampConsumer(svc, zap.NewNop())

	assert.NotPanics(t, func() {
		consumer.HandleMessage(context.Background(), "k", envelope(t, sharedEvents.TopicCourses, "course.deleted",
			sharedEvents.CourseChanged{BootcampID: uuid.NewString()}))
	})
	assert.Len(t, svc.calls, 1)
}
