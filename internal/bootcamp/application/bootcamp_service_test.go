package application_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/devcamper/internal/bootcamp/application"
	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
	"github.com/davicafu/devcamper/tests/mocks"
)

const bostonAddress = "233 Bay State Rd Boston MA 02215"

type fixture struct {
	svc      *application.BootcampService
	repo     *mocks.InMemoryBootcampRepo
	cache    *mocks.DummyCache
	geocoder *mocks.FakeGeocoder
	photos   *mocks.MemPhotoStorage
	store    *mocks.MemStore
}

func newFixture() *fixture {
	f := &fixture{
		repo:     mocks.NewInMemoryBootcampRepo(),
		cache:    mocks.NewDummyCache(),
		geocoder: mocks.NewFakeGeocoder(),
		photos:   mocks.NewMemPhotoStorage(),
		store:    mocks.NewMemStore(),
	}
	boston := bootcampDomain.NewPoint(42.350846, -71.105021)
	boston.City = "Boston"
	f.geocoder.Locations[bostonAddress] = boston
	f.geocoder.Locations["02118"] = bootcampDomain.NewPoint(42.3388, -71.0765)

	f.svc = application.NewBootcampService(application.Deps{
		Repo:         f.repo,
		Averages:     f.repo,
		Listing:      f.store.Collection("bootcamps"),
		Geocoder:     f.geocoder,
		Photos:       f.photos,
		Cache:        f.cache,
		MaxPhotoSize: 1000,
	}, zap.NewNop())
	return f
}

func input(name string) bootcampDomain.BootcampInput {
	return bootcampDomain.BootcampInput{
		Name:        name,
		Description: "Full stack web development",
		Address:     bostonAddress,
		Careers:     []string{"Web Development"},
	}
}

func publisher() sharedDomain.Principal {
	return sharedDomain.Principal{ID: uuid.New(), Role: sharedDomain.RolePublisher}
}

func TestCreateBootcamp(t *testing.T) {
	f := newFixture()
	p := publisher()

	b, err := f.svc.CreateBootcamp(context.Background(), p, input("Devworks Bootcamp"))
	require.NoError(t, err)

	assert.Equal(t, p.ID, b.User)
	require.NotNil(t, b.Location)
	assert.Equal(t, "Boston", b.Location.City)
	require.Len(t, f.repo.Outbox, 1)
	assert.Equal(t, bootcampDomain.BootcampCreated, f.repo.Outbox[0].EventType)
	assert.Equal(t, b.ID.String(), f.repo.Outbox[0].AggregateID)
}

func TestCreateBootcamp_PublisherLimit(t *testing.T) {
	f := newFixture()
	p := publisher()

	_, err := f.svc.CreateBootcamp(context.Background(), p, input("Devworks Bootcamp"))
	require.NoError(t, err)

	_, err = f.svc.CreateBootcamp(context.Background(), p, input("Second Bootcamp"))
	assert.ErrorIs(t, err, sharedDomain.ErrInvalid)
	assert.Contains(t, err.Error(), "has already published a bootcamp")

	admin := sharedDomain.Principal{ID: uuid.New(), Role: sharedDomain.RoleAdmin}
	_, err = f.svc.CreateBootcamp(context.Background(), admin, input("Admin One"))
	require.NoError(t, err)
	_, err = f.svc.CreateBootcamp(context.Background(), admin, input("Admin Two"))
	require.NoError(t, err)
}

func TestCreateBootcamp_DuplicateName(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateBootcamp(context.Background(), publisher(), input("Devworks Bootcamp"))
	require.NoError(t, err)

	_, err = f.svc.CreateBootcamp(context.Background(), publisher(), input("Devworks Bootcamp"))
	assert.ErrorIs(t, err, sharedDomain.ErrConflict)
}

func TestCreateBootcamp_UnknownAddress(t *testing.T) {
	f := newFixture()
	in := input("Devworks Bootcamp")
	in.Address = "nowhere"

	_, err := f.svc.CreateBootcamp(context.Background(), publisher(), in)
	assert.ErrorIs(t, err, bootcampDomain.ErrLocationNotFound)
	assert.Empty(t, f.repo.Bootcamps)
}

func TestGetBootcamp_CacheAside(t *testing.T) {
	f := newFixture()
	b, err := f.svc.CreateBootcamp(context.Background(), publisher(), input("Devworks Bootcamp"))
	require.NoError(t, err)

	key := "bootcamp:id:" + b.ID.String()
	require.Eventually(t, func() bool { return f.cache.Has(key) }, time.Second, 10*time.Millisecond)
	assert.Zero(t, f.cache.TTL(key), "the cache's configured TTL must apply")

	got, err := f.svc.GetBootcamp(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Name, got.Name)
	assert.Equal(t, 0, f.repo.GetCalls, "cache hit must not reach the repository")
}

func TestGetBootcamp_NotFoundIsNotRetried(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	_, err := f.svc.GetBootcamp(context.Background(), id)
	assert.ErrorIs(t, err, bootcampDomain.ErrBootcampNotFound)
	assert.ErrorIs(t, err, sharedDomain.ErrNotFound)
	assert.Contains(t, err.Error(), id.String())
	assert.Equal(t, 1, f.repo.GetCalls)
}

func TestGetBootcamp_RetriesTransientErrors(t *testing.T) {
	f := newFixture()
	f.repo.GetErr = errors.New("connection reset")

	_, err := f.svc.GetBootcamp(context.Background(), uuid.New())
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, 3, f.repo.GetCalls)
}

func TestUpdateBootcamp_Authorization(t *testing.T) {
	f := newFixture()
	owner := publisher()
	b, err := f.svc.CreateBootcamp(context.Background(), owner, input("Devworks Bootcamp"))
	require.NoError(t, err)

	desc := "Updated description"
	_, err = f.svc.UpdateBootcamp(context.Background(), publisher(), b.ID, bootcampDomain.BootcampPatch{Description: &desc})
	assert.ErrorIs(t, err, sharedDomain.ErrForbidden)

	updated, err := f.svc.UpdateBootcamp(context.Background(), owner, b.ID, bootcampDomain.BootcampPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Contains(t, f.cache.Deletes, "bootcamp:id:"+b.ID.String())

	admin := sharedDomain.Principal{ID: uuid.New(), Role: sharedDomain.RoleAdmin}
	_, err = f.svc.UpdateBootcamp(context.Background(), admin, b.ID, bootcampDomain.BootcampPatch{Description: &desc})
	require.NoError(t, err)
}

func TestUpdateBootcamp_RegeocodesOnAddressChange(t *testing.T) {
	f := newFixture()
	owner := publisher()
	b, err := f.svc.CreateBootcamp(context.Background(), owner, input("Devworks Bootcamp"))
	require.NoError(t, err)

	addr := "02118"
	updated, err := f.svc.UpdateBootcamp(context.Background(), owner, b.ID, bootcampDomain.BootcampPatch{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, []float64{-71.0765, 42.3388}, updated.Location.Coordinates)
	assert.Equal(t, []string{bostonAddress, "02118"}, f.geocoder.Calls)
}

func TestDeleteBootcamp(t *testing.T) {
	f := newFixture()
	owner := publisher()
	b, err := f.svc.CreateBootcamp(context.Background(), owner, input("Devworks Bootcamp"))
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteBootcamp(context.Background(), publisher(), b.ID), sharedDomain.ErrForbidden)
	require.NoError(t, f.svc.DeleteBootcamp(context.Background(), owner, b.ID))

	assert.Equal(t, []uuid.UUID{b.ID}, f.repo.Cascaded)
	assert.Equal(t, bootcampDomain.BootcampDeleted, f.repo.Outbox[len(f.repo.Outbox)-1].EventType)
	assert.ErrorIs(t, f.svc.DeleteBootcamp(context.Background(), owner, b.ID), sharedDomain.ErrNotFound)
}

func TestBootcampsInRadius(t *testing.T) {
	f := newFixture()
	near, err := f.svc.CreateBootcamp(context.Background(), publisher(), input("Devworks Bootcamp"))
	require.NoError(t, err)

	farAddr := "Los Angeles"
	f.geocoder.Locations[farAddr] = bootcampDomain.NewPoint(34.05, -118.24)
	far := input("LA Bootcamp")
	far.Address = farAddr
	_, err = f.svc.CreateBootcamp(context.Background(), publisher(), far)
	require.NoError(t, err)

	found, err := f.svc.BootcampsInRadius(context.Background(), "02118", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, near.ID, found[0].ID)

	found, err = f.svc.BootcampsInRadius(context.Background(), "02118", 5000)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestUploadPhoto(t *testing.T) {
	f := newFixture()
	owner := publisher()
	b, err := f.svc.CreateBootcamp(context.Background(), owner, input("Devworks Bootcamp"))
	require.NoError(t, err)

	photo := application.Photo{Filename: "Logo.JPG", ContentType: "image/jpeg", Size: 4, Content: strings.NewReader("jpeg")}
	name, err := f.svc.UploadPhoto(context.Background(), owner, b.ID, photo)
	require.NoError(t, err)
	assert.Equal(t, "photo_"+b.ID.String()+".jpg", name)
	assert.Equal(t, []byte("jpeg"), f.photos.Files[name])
	assert.Equal(t, name, f.repo.Bootcamps[b.ID].Photo)

	_, err = f.svc.UploadPhoto(context.Background(), owner, b.ID,
		application.Photo{Filename: "doc.pdf", ContentType: "application/pdf", Size: 4, Content: strings.NewReader("%PDF")})
	assert.ErrorIs(t, err, bootcampDomain.ErrPhotoNotImage)

	_, err = f.svc.UploadPhoto(context.Background(), owner, b.ID,
		application.Photo{Filename: "big.png", ContentType: "image/png", Size: 5000, Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalid)
	assert.Contains(t, err.Error(), "less than 1000")
}

func TestRecalculateAverages(t *testing.T) {
	f := newFixture()
	b, err := f.svc.CreateBootcamp(context.Background(), publisher(), input("Devworks Bootcamp"))
	require.NoError(t, err)

	f.repo.Tuitions[b.ID] = []float64{10000, 8000, 7000}
	f.repo.Ratings[b.ID] = []float64{8, 10}
	require.NoError(t, f.svc.RecalculateAverages(context.Background(), b.ID))

	stored := f.repo.Bootcamps[b.ID]
	require.NotNil(t, stored.AverageCost)
	assert.Equal(t, 8340.0, *stored.AverageCost)
	require.NotNil(t, stored.AverageRating)
	assert.Equal(t, 9.0, *stored.AverageRating)

	// sin cursos ni reseñas las medias desaparecen
	delete(f.repo.Tuitions, b.ID)
	delete(f.repo.Ratings, b.ID)
	require.NoError(t, f.svc.RecalculateAverages(context.Background(), b.ID))
	assert.Nil(t, f.repo.Bootcamps[b.ID].AverageCost)
	assert.Nil(t, f.repo.Bootcamps[b.ID].AverageRating)
}

func TestListBootcamps_PopulatesCourses(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.store.Insert("bootcamps",
		sharedQuery.Document{"_id": "b1", "name": "Devworks", "averageCost": int64(10000), "createdAt": now},
		sharedQuery.Document{"_id": "b2", "name": "Codemasters", "averageCost": int64(6000), "createdAt": now.Add(time.Minute)},
	)
	f.store.Insert("courses",
		sharedQuery.Document{"_id": "c1", "title": "Front End", "bootcamp": "b1"},
		sharedQuery.Document{"_id": "c2", "title": "Full Stack", "bootcamp": "b1"},
	)

	res, err := f.svc.ListBootcamps(context.Background(), url.Values{"averageCost[lte]": {"8000"}})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Codemasters", res.Data[0]["name"])
	assert.Equal(t, []sharedQuery.Document{}, res.Data[0]["courses"])

	res, err = f.svc.ListBootcamps(context.Background(), url.Values{"sort": {"name"}})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "Devworks", res.Data[1]["name"])
	assert.Len(t, res.Data[1]["courses"], 2)
}
