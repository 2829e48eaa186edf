package integration

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	bootcampRepo "github.com/davicafu/devcamper/internal/bootcamp/infra/outbound/db/mongodb"
	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	courseRepo "github.com/davicafu/devcamper/internal/course/infra/outbound/db/mongodb"
	infraMongo "github.com/davicafu/devcamper/internal/infra/db/mongodb"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

// Estos tests necesitan un MongoDB en replica set (transacciones): MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0
func setupMongo(t *testing.T) (*mongo.Client, string) {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := infraMongo.Connect(ctx, uri)
	require.NoError(t, err)

	dbName := "devcamper_it_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return client, dbName
}

func TestQueryCollection_FilterSortSelectPaginate(t *testing.T) {
	client, dbName := setupMongo(t)
	ctx := context.Background()
	db := client.Database(dbName)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var docs []interface{}
	for i := 0; i < 6; i++ {
		docs = append(docs, bson.M{
			"_id":         uuid.NewString(),
			"name":        []string{"A", "B", "C", "D", "E", "F"}[i],
			"averageCost": float64(5000 + i*2000),
			"careers":     bson.A{"Web Development", []string{"UI/UX", "Business"}[i%2]},
			"housing":     i%2 == 0,
			"createdAt":   base.Add(time.Duration(i) * time.Hour),
		})
	}
	_, err := db.Collection(infraMongo.BootcampsCollection).InsertMany(ctx, docs)
	require.NoError(t, err)

	coll := infraMongo.NewQueryCollection(db, infraMongo.BootcampsCollection)

	res, err := sharedQuery.Run(ctx, coll, url.Values{
		"averageCost[lte]": {"12000"},
		"careers[in]":      {"UI/UX"},
		"select":           {"name,averageCost"},
		"sort":             {"-averageCost"},
		"limit":            {"2"},
	})
	require.NoError(t, err)

	// averageCost <= 12000 -> A..D; UI/UX solo en los pares -> A y C
	assert.Equal(t, int64(2), res.Total)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "C", res.Data[0]["name"])
	assert.Equal(t, "A", res.Data[1]["name"])
	assert.Contains(t, res.Data[0], "_id")
	assert.NotContains(t, res.Data[0], "careers")
	assert.Nil(t, res.Pagination.Next)

	res, err = sharedQuery.Run(ctx, coll, url.Values{"housing": {"true"}, "page": {"2"}, "limit": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Len(t, res.Data, 1)
	assert.NotNil(t, res.Pagination.Prev)
}

func TestBootcampRepo_DeleteCascadeAndPopulate(t *testing.T) {
	client, dbName := setupMongo(t)
	ctx := context.Background()

	bootcamps := bootcampRepo.NewBootcampRepoMongoDB(client, dbName)
	courses := courseRepo.NewCourseRepoMongoDB(client, dbName)
	require.NoError(t, bootcamps.EnsureIndexes(ctx))
	require.NoError(t, courses.EnsureIndexes(ctx))

	owner := uuid.New()
	b, err := bootcampDomain.NewBootcamp(owner, bootcampDomain.BootcampInput{
		Name:        "Devworks Bootcamp",
		Description: "Full stack JavaScript bootcamp",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development"},
	})
	require.NoError(t, err)
	require.NoError(t, bootcamps.Create(ctx, b, sharedDomain.NewOutboxEvent("bootcamp", b.ID.String(), bootcampDomain.BootcampCreated, b.ToEvent())))

	c, err := courseDomain.NewCourse(b.ID, owner, courseDomain.CourseInput{
		Title: "Front End", Description: "HTML", Weeks: 8, Tuition: 8000, MinimumSkill: courseDomain.SkillBeginner,
	})
	require.NoError(t, err)
	require.NoError(t, courses.Create(ctx, c, sharedDomain.NewOutboxEvent("course", c.ID.String(), courseDomain.CourseCreated, c.ToEvent())))

	listing := infraMongo.NewQueryCollection(client.Database(dbName), infraMongo.BootcampsCollection)
	res, err := sharedQuery.Run(ctx, listing, url.Values{}, sharedQuery.Populate{
		Path: "courses", From: infraMongo.CoursesCollection, LocalField: sharedQuery.IDField, ForeignField: "bootcamp", Many: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Len(t, res.Data[0]["courses"], 1)

	avg, ok, err := bootcamps.AverageTuition(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8000.0, avg)

	require.NoError(t, bootcamps.DeleteCascade(ctx, b.ID, sharedDomain.NewOutboxEvent("bootcamp", b.ID.String(), bootcampDomain.BootcampDeleted, b.ToEvent())))
	_, err = courses.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, courseDomain.ErrCourseNotFound)

	pending, err := infraMongo.NewOutboxRepoMongoDB(client, dbName).FetchPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}
