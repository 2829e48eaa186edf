package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/devcamper/internal/bootcamp/application"
	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	bootcampHttp "github.com/davicafu/devcamper/internal/bootcamp/infra/inbound/http"
	"github.com/davicafu/devcamper/internal/infra/export"
	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
	"github.com/davicafu/devcamper/tests/mocks"
)

// tokenAuth acepta como token "<rol>:<uuid>".
type tokenAuth struct{}

func (tokenAuth) Authenticate(ctx context.Context, token string) (sharedDomain.Principal, error) {
	var role, id string
	for i := 0; i < len(token); i++ {
		if token[i] == ':' {
			role, id = token[:i], token[i+1:]
			break
		}
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return sharedDomain.Principal{}, sharedDomain.ErrUnauthenticated
	}
	return sharedDomain.Principal{ID: uid, Role: role}, nil
}

type env struct {
	router *gin.Engine
	repo   *mocks.InMemoryBootcampRepo
	store  *mocks.MemStore
	photos *mocks.MemPhotoStorage
}

func setup() *env {
	gin.SetMode(gin.TestMode)
	e := &env{
		repo:   mocks.NewInMemoryBootcampRepo(),
		store:  mocks.NewMemStore(),
		photos: mocks.NewMemPhotoStorage(),
	}
	svc := application.NewBootcampService(application.Deps{
		Repo:         e.repo,
		Averages:     e.repo,
		Listing:      e.store.Collection("bootcamps"),
		Photos:       e.photos,
		Cache:        mocks.NewDummyCache(),
		MaxPhotoSize: 1 << 20,
	}, zap.NewNop())

	e.router = gin.New()
	api := e.router.Group("/api/v1")
	bootcampHttp.RegisterBootcampRoutes(api, bootcampHttp.NewBootcampHandler(svc), middleware.Protect(tokenAuth{}))
	return e
}

func (e *env) do(method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestListBootcamps_Pagination(t *testing.T) {
	e := setup()
	base := time.Now()
	for i := 0; i < 25; i++ {
		e.store.Insert("bootcamps", sharedQuery.Document{
			"_id":       fmt.Sprintf("b%02d", i),
			"name":      fmt.Sprintf("Bootcamp %02d", i),
			"createdAt": base.Add(time.Duration(i) * time.Minute),
		})
	}

	w := e.do(http.MethodGet, "/api/v1/bootcamps?limit=10&page=2&select=name", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success    bool                     `json:"success"`
		Count      int                      `json:"count"`
		Pagination map[string]map[string]int `json:"pagination"`
		Data       []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 10, body.Count)
	assert.Equal(t, map[string]int{"page": 1, "limit": 10}, body.Pagination["prev"])
	assert.Equal(t, map[string]int{"page": 3, "limit": 10}, body.Pagination["next"])
	// orden por defecto: createdAt descendente
	assert.Equal(t, "Bootcamp 14", body.Data[0]["name"])
	assert.NotContains(t, body.Data[0], "createdAt")
	assert.Contains(t, body.Data[0], "_id")
	assert.Contains(t, body.Data[0], "courses")
}

func TestListBootcamps_StoreFailureIs500(t *testing.T) {
	e := setup()
	coll := e.store.Collection("bootcamps")
	coll.FindErr = fmt.Errorf("boom")

	svc := application.NewBootcampService(application.Deps{Repo: e.repo, Averages: e.repo, Listing: coll}, zap.NewNop())
	r := gin.New()
	bootcampHttp.RegisterBootcampRoutes(r.Group("/api/v1"), bootcampHttp.NewBootcampHandler(svc), middleware.Protect(tokenAuth{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bootcamps", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server Error"}`, w.Body.String())
}

func TestGetBootcamp_NotFound(t *testing.T) {
	e := setup()

	w := e.do(http.MethodGet, "/api/v1/bootcamps/not-a-uuid", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Bootcamp not found with id of not-a-uuid")

	w = e.do(http.MethodGet, "/api/v1/bootcamps/"+uuid.NewString(), "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBootcamp_Auth(t *testing.T) {
	e := setup()
	payload, _ := json.Marshal(bootcampDomain.BootcampInput{
		Name:        "Devworks Bootcamp",
		Description: "Full stack web development",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development"},
	})

	w := e.do(http.MethodPost, "/api/v1/bootcamps", "", payload, "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/v1/bootcamps", "user:"+uuid.NewString(), payload, "application/json")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "User role user is not authorized")

	w = e.do(http.MethodPost, "/api/v1/bootcamps", "publisher:"+uuid.NewString(), payload, "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"devworks-bootcamp"`)
	assert.Len(t, e.repo.Bootcamps, 1)
}

func TestCreateBootcamp_ValidationError(t *testing.T) {
	e := setup()
	w := e.do(http.MethodPost, "/api/v1/bootcamps", "publisher:"+uuid.NewString(), []byte(`{"name":""}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please add a name")
}

func TestUploadPhoto(t *testing.T) {
	e := setup()
	owner := uuid.New()
	b, err := bootcampDomain.NewBootcamp(owner, bootcampDomain.BootcampInput{
		Name: "Devworks", Description: "d", Address: "a", Careers: []string{"Other"},
	})
	require.NoError(t, err)
	require.NoError(t, e.repo.Create(context.Background(), b, sharedDomain.OutboxEvent{}))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	w := e.do(http.MethodPut, "/api/v1/bootcamps/"+b.ID.String()+"/photo", "publisher:"+owner.String(), buf.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"success":true,"data":"photo_%s.png"}`, b.ID), w.Body.String())
	assert.Equal(t, []byte("png-bytes"), e.photos.Files["photo_"+b.ID.String()+".png"])

	w = e.do(http.MethodPut, "/api/v1/bootcamps/"+b.ID.String()+"/photo", "publisher:"+owner.String(), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please upload a file")
}

func TestExportBootcamps(t *testing.T) {
	e := setup()
	e.store.Insert("bootcamps", sharedQuery.Document{"_id": "b1", "name": "Devworks", "createdAt": time.Now()})

	w := e.do(http.MethodGet, "/api/v1/bootcamps/export?name=Devworks", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bootcamps_")
	assert.NotZero(t, w.Body.Len())
}
