package contracts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	activityDomain "github.com/davicafu/devcamper/internal/activity/domain"
	activityEvents "github.com/davicafu/devcamper/internal/activity/infra/inbound/events"
	bootcampApp "github.com/davicafu/devcamper/internal/bootcamp/application"
	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	bootcampEvents "github.com/davicafu/devcamper/internal/bootcamp/infra/inbound/events"
	courseApp "github.com/davicafu/devcamper/internal/course/application"
	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	infraEvents "github.com/davicafu/devcamper/internal/infra/events"
	infraRelayer "github.com/davicafu/devcamper/internal/infra/relayer"
	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
	"github.com/davicafu/devcamper/tests/mocks"
)

// sliceOutbox sirve al relayer los eventos que dejó un repositorio en memoria.
type sliceOutbox struct {
	mu        sync.Mutex
	events    []sharedDomain.OutboxEvent
	processed map[uuid.UUID]bool
}

func (o *sliceOutbox) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []sharedDomain.OutboxEvent
	for _, e := range o.events {
		if !o.processed[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *sliceOutbox) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processed[id] = true
	return nil
}

func (o *sliceOutbox) MarkOutboxFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return o.MarkOutboxProcessed(ctx, id)
}

type activitySink struct {
	mu   sync.Mutex
	rows []activityDomain.Activity
}

func (s *activitySink) LogBatch(ctx context.Context, batch []activityDomain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, batch...)
	return nil
}

func (s *activitySink) GetDailyTrend(ctx context.Context, start, end time.Time) ([]activityDomain.DailyActivity, error) {
	return nil, nil
}

func (s *activitySink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r.Type)
	}
	return out
}

// Un curso creado viaja outbox -> relayer -> bus y lo entienden los dos consumidores.
func TestCourseCreated_FlowsToAveragesAndActivity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	owner := uuid.New()
	bootcamps := mocks.NewInMemoryBootcampRepo()
	bootcamp, err := bootcampDomain.NewBootcamp(owner, bootcampDomain.BootcampInput{
		Name:        "Devworks Bootcamp",
		Description: "Full stack JavaScript bootcamp",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development"},
	})
	require.NoError(t, err)
	require.NoError(t, bootcamps.Create(ctx, bootcamp, sharedDomain.OutboxEvent{}))
	bootcamps.Tuitions[bootcamp.ID] = []float64{8000, 10000}

	bootcampService := bootcampApp.NewBootcampService(bootcampApp.Deps{
		Repo:     bootcamps,
		Averages: bootcamps,
		Listing:  mocks.NewMemStore().Collection("bootcamps"),
	}, zap.NewNop())

	owners := mocks.NewFakeBootcampOwners(courseDomain.ErrBootcampNotFound)
	owners.Owners[bootcamp.ID] = owner
	courses := mocks.NewInMemoryCourseRepo()
	courseService := courseApp.NewCourseService(courses, owners, mocks.NewMemStore().Collection("courses"), zap.NewNop())

	_, err = courseService.CreateCourse(ctx, sharedDomain.Principal{ID: owner, Role: sharedDomain.RolePublisher}, bootcamp.ID, courseDomain.CourseInput{
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        8,
		Tuition:      8000,
		MinimumSkill: courseDomain.SkillBeginner,
	})
	require.NoError(t, err)
	require.Len(t, courses.Outbox, 1)

	bus := infraEvents.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(ctx, bootcampEvents.NewBootcampConsumer(bootcampService, zap.NewNop()), 8, bootcampEvents.Topics...)
	sink := &activitySink{}
	bus.Subscribe(ctx, activityEvents.NewActivityConsumer(sink, 1, 0, zap.NewNop()), 8, activityEvents.Topics...)

	outbox := &sliceOutbox{events: courses.Outbox, processed: map[uuid.UUID]bool{}}
	registry := sharedEvents.MergeRegistries(
		bootcampDomain.NewEventRegistry(),
		courseDomain.NewEventRegistry(),
		reviewDomain.NewEventRegistry(),
		userDomain.NewEventRegistry(),
	)
	infraRelayer.NewOutboxWorker("contract", outbox, bus, registry, time.Second, 10, zap.NewNop()).ProcessBatch(ctx)

	assert.True(t, outbox.processed[courses.Outbox[0].ID])

	require.Eventually(t, func() bool {
		got, err := bootcamps.GetByID(ctx, bootcamp.ID)
		return err == nil && got.AverageCost != nil && *got.AverageCost == 9000
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(sink.types()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{courseDomain.CourseCreated}, sink.types())
}

func TestRegistries_CoverEveryAggregateTopic(t *testing.T) {
	registry := sharedEvents.MergeRegistries(
		bootcampDomain.NewEventRegistry(),
		courseDomain.NewEventRegistry(),
		reviewDomain.NewEventRegistry(),
		userDomain.NewEventRegistry(),
	)
	assert.Len(t, registry, 12)

	topics := map[string]bool{}
	for _, meta := range registry {
		topics[meta.Topic] = true
	}
	for _, topic := range sharedEvents.AllTopics {
		assert.True(t, topics[topic], topic)
	}
}
