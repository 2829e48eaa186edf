package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
	"github.com/davicafu/devcamper/tests/mocks"
)

const courseCreated = "course.created"

func courseRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		courseCreated: {Type: reflect.TypeOf(sharedEvents.CourseChanged{}), Topic: "courses"},
	}
}

func TestOutboxWorker_ProcessBatch_Success(t *testing.T) {
	// ARRANGE
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	eventID := uuid.New()
	testEvent := sharedDomain.OutboxEvent{
		ID:          eventID,
		AggregateID: "course-1",
		EventType:   courseCreated,
		Payload:     json.RawMessage(`{"id":"course-1","bootcampId":"bc-1","tuition":8000}`),
	}

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e sharedEvents.IntegrationEvent) bool {
		var payload sharedEvents.CourseChanged
		_ = json.Unmarshal(e.Data, &payload)
		return e.Topic == "courses" && e.PartitionKey() == "course-1" && payload.BootcampID == "bc-1" && payload.Tuition == 8000
	})).Return(nil).Once()
	repo.On("MarkOutboxProcessed", mock.Anything, eventID).Return(nil).Once()

	worker := NewOutboxWorker("test", repo, publisher, courseRegistry(), 0, 10, zap.NewNop())

	// ACT
	worker.ProcessBatch(context.Background())

	// ASSERT
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOutboxWorker_ProcessBatch_PublisherFails(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: courseCreated, Payload: map[string]interface{}{}}

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("kafka is down")).Once()

	worker := NewOutboxWorker("test", repo, publisher, courseRegistry(), 0, 10, zap.NewNop())
	worker.ProcessBatch(context.Background())

	publisher.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_UnknownEventType(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: "unregistered.event", Payload: map[string]interface{}{}}
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	repo.On("MarkOutboxFailed", mock.Anything, testEvent.ID, mock.MatchedBy(func(reason string) bool {
		return strings.Contains(reason, "unregistered.event")
	})).Return(nil).Once()

	worker := NewOutboxWorker("test", repo, publisher, map[string]sharedEvents.EventMetadata{}, 0, 10, zap.NewNop())
	worker.ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_InvalidPayload(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: courseCreated, Payload: json.RawMessage(`{"tuition":"mucho"}`)}
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	repo.On("MarkOutboxFailed", mock.Anything, testEvent.ID, mock.Anything).Return(nil).Once()

	worker := NewOutboxWorker("test", repo, publisher, courseRegistry(), 0, 10, zap.NewNop())
	worker.ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

// Un lote lleno de eventos rotos no debe impedir que los válidos salgan en la siguiente pasada.
func TestOutboxWorker_BrokenEventsDoNotBlockQueue(t *testing.T) {
	broken := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: "unregistered.event", Payload: map[string]interface{}{}}
	valid := sharedDomain.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: "course-2",
		EventType:   courseCreated,
		Payload:     json.RawMessage(`{"id":"course-2","bootcampId":"bc-1","tuition":100}`),
	}

	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)
	repo.On("FetchPendingOutbox", mock.Anything, 1).Return([]sharedDomain.OutboxEvent{broken}, nil).Once()
	repo.On("MarkOutboxFailed", mock.Anything, broken.ID, mock.Anything).Return(nil).Once()
	repo.On("FetchPendingOutbox", mock.Anything, 1).Return([]sharedDomain.OutboxEvent{valid}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("MarkOutboxProcessed", mock.Anything, valid.ID).Return(nil).Once()

	worker := NewOutboxWorker("test", repo, publisher, courseRegistry(), 0, 1, zap.NewNop())
	worker.ProcessBatch(context.Background())
	worker.ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOutboxWorker_FetchError(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)
	repo.On("FetchPendingOutbox", mock.Anything, 5).Return([]sharedDomain.OutboxEvent(nil), errors.New("db down")).Once()

	worker := NewOutboxWorker("test", repo, publisher, courseRegistry(), 0, 5, zap.NewNop())
	worker.ProcessBatch(context.Background())

	assert.True(t, repo.AssertExpectations(t))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
