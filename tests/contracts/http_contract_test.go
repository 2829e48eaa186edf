package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bootcampApp "github.com/davicafu/devcamper/internal/bootcamp/application"
	bootcampHttp "github.com/davicafu/devcamper/internal/bootcamp/infra/inbound/http"
	courseApp "github.com/davicafu/devcamper/internal/course/application"
	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	courseHttp "github.com/davicafu/devcamper/internal/course/infra/inbound/http"
	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	reviewApp "github.com/davicafu/devcamper/internal/review/application"
	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	reviewHttp "github.com/davicafu/devcamper/internal/review/infra/inbound/http"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
	"github.com/davicafu/devcamper/tests/mocks"
)

type noAuth struct{}

func (noAuth) Authenticate(ctx context.Context, token string) (sharedDomain.Principal, error) {
	return sharedDomain.Principal{}, sharedDomain.ErrUnauthenticated
}

// listEnvelope es el formato que comparten todos los listados paginados.
type listEnvelope struct {
	Success    bool `json:"success"`
	Count      int  `json:"count"`
	Pagination struct {
		Prev *sharedQuery.PageRef `json:"prev"`
		Next *sharedQuery.PageRef `json:"next"`
	} `json:"pagination"`
	Data []map[string]interface{} `json:"data"`
}

func seededRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := mocks.NewMemStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		bootcampID := uuid.NewString()
		store.Insert("bootcamps", sharedQuery.Document{
			"_id": bootcampID, "name": fmt.Sprintf("Bootcamp %d", i), "description": "desc",
			"createdAt": base.Add(time.Duration(i) * time.Hour),
		})
		store.Insert("courses", sharedQuery.Document{
			"_id": uuid.NewString(), "title": fmt.Sprintf("Course %d", i), "tuition": int64(1000 * (i + 1)),
			"bootcamp": bootcampID, "createdAt": base.Add(time.Duration(i) * time.Hour),
		})
		store.Insert("reviews", sharedQuery.Document{
			"_id": uuid.NewString(), "title": fmt.Sprintf("Review %d", i), "rating": int64(i + 5),
			"bootcamp": bootcampID, "createdAt": base.Add(time.Duration(i) * time.Hour),
		})
	}

	log := zap.NewNop()
	bootcamps := bootcampApp.NewBootcampService(bootcampApp.Deps{
		Repo:     mocks.NewInMemoryBootcampRepo(),
		Listing:  store.Collection("bootcamps"),
		Averages: mocks.NewInMemoryBootcampRepo(),
	}, log)
	courses := courseApp.NewCourseService(mocks.NewInMemoryCourseRepo(), mocks.NewFakeBootcampOwners(courseDomain.ErrBootcampNotFound), store.Collection("courses"), log)
	reviews := reviewApp.NewReviewService(mocks.NewInMemoryReviewRepo(), mocks.NewFakeBootcampOwners(reviewDomain.ErrBootcampNotFound), store.Collection("reviews"), log)

	r := gin.New()
	api := r.Group("/api/v1")
	protect := middleware.Protect(noAuth{})
	bootcampHttp.RegisterBootcampRoutes(api, bootcampHttp.NewBootcampHandler(bootcamps), protect)
	courseHttp.RegisterCourseRoutes(api, courseHttp.NewCourseHandler(courses), protect)
	reviewHttp.RegisterReviewRoutes(api, reviewHttp.NewReviewHandler(reviews), protect)
	return r
}

func TestListings_ShareThePaginatedEnvelope(t *testing.T) {
	r := seededRouter(t)

	for _, path := range []string{"/api/v1/bootcamps", "/api/v1/courses", "/api/v1/reviews"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path+"?limit=1&page=2", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var body listEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.True(t, body.Success)
			assert.Equal(t, 1, body.Count)
			require.Len(t, body.Data, 1)
			assert.Contains(t, body.Data[0], "_id")
			assert.Equal(t, &sharedQuery.PageRef{Page: 1, Limit: 1}, body.Pagination.Prev)
			assert.Equal(t, &sharedQuery.PageRef{Page: 3, Limit: 1}, body.Pagination.Next)
		})
	}
}

func TestListings_PopulateBootcamp(t *testing.T) {
	r := seededRouter(t)

	for _, path := range []string{"/api/v1/courses", "/api/v1/reviews"} {
		req := httptest.NewRequest(http.MethodGet, path+"?sort=createdAt", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body listEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 3)
		bootcamp, ok := body.Data[0]["bootcamp"].(map[string]interface{})
		require.True(t, ok, "%s: bootcamp not populated", path)
		assert.Equal(t, "Bootcamp 0", bootcamp["name"])
		assert.Contains(t, bootcamp, "description")
	}
}

func TestWriteRoutes_RequireAuthentication(t *testing.T) {
	r := seededRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/bootcamps"},
		{http.MethodPost, "/api/v1/bootcamps/" + uuid.NewString() + "/courses"},
		{http.MethodPost, "/api/v1/bootcamps/" + uuid.NewString() + "/reviews"},
		{http.MethodDelete, "/api/v1/courses/" + uuid.NewString()},
		{http.MethodPut, "/api/v1/reviews/" + uuid.NewString()},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.JSONEq(t, `{"success":false,"error":"not authorized to access this route"}`, w.Body.String())
	}
}
