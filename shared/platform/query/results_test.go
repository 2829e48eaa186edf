package query_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
	"github.com/davicafu/devcamper/tests/mocks"
)

func seedBootcamps(store *mocks.MemStore, n int) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		store.Insert("bootcamps", sharedQuery.Document{
			"_id":         uuid.NewString(),
			"name":        fmt.Sprintf("Bootcamp %d", i),
			"averageCost": int64(1000 * i),
			"housing":     i%2 == 0,
			"createdAt":   base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestRun_PaginationWindow(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantCount int
		wantPrev  *sharedQuery.PageRef
		wantNext  *sharedQuery.PageRef
		wantFirst string
	}{
		{"first page", url.Values{"limit": {"10"}}, 10, nil, &sharedQuery.PageRef{Page: 2, Limit: 10}, "Bootcamp 24"},
		{"middle page", url.Values{"limit": {"10"}, "page": {"2"}}, 10, &sharedQuery.PageRef{Page: 1, Limit: 10}, &sharedQuery.PageRef{Page: 3, Limit: 10}, "Bootcamp 14"},
		{"last partial page", url.Values{"limit": {"10"}, "page": {"3"}}, 5, &sharedQuery.PageRef{Page: 2, Limit: 10}, nil, "Bootcamp 4"},
		{"beyond the end", url.Values{"limit": {"10"}, "page": {"9"}}, 0, &sharedQuery.PageRef{Page: 8, Limit: 10}, nil, ""},
		{"everything fits", url.Values{}, 25, nil, nil, "Bootcamp 24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMemStore()
			seedBootcamps(store, 25)

			res, err := sharedQuery.Run(context.Background(), store.Collection("bootcamps"), tt.values)
			require.NoError(t, err)

			assert.True(t, res.Success)
			assert.Equal(t, tt.wantCount, res.Count)
			assert.Len(t, res.Data, tt.wantCount)
			assert.NotNil(t, res.Data)
			assert.Equal(t, int64(25), res.Total)
			assert.Equal(t, tt.wantPrev, res.Pagination.Prev)
			assert.Equal(t, tt.wantNext, res.Pagination.Next)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, res.Data[0]["name"])
			}
		})
	}
}

func TestRun_TotalIsFiltered(t *testing.T) {
	store := mocks.NewMemStore()
	seedBootcamps(store, 25)
	coll := store.Collection("bootcamps")

	res, err := sharedQuery.Run(context.Background(), coll, url.Values{
		"housing": {"true"}, "averageCost[gte]": {"10000"}, "limit": {"3"}, "sort": {"averageCost"},
	})
	require.NoError(t, err)

	// pares entre 10 y 24 -> 10,12,...,24
	assert.Equal(t, int64(8), res.Total)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, int64(10000), res.Data[0]["averageCost"])
	assert.NotNil(t, res.Pagination.Next)

	// Find y Count recibieron el mismo filtro
	require.Len(t, coll.FindCalls, 1)
	require.Len(t, coll.CountCalls, 1)
	assert.Equal(t, coll.FindCalls[0].Conditions, coll.CountCalls[0])
	assert.Equal(t, 0, coll.FindCalls[0].Skip)
	assert.Equal(t, 3, coll.FindCalls[0].Limit)
}

func TestRun_NumericLookingTextMatches(t *testing.T) {
	store := mocks.NewMemStore()
	store.Insert("bootcamps",
		sharedQuery.Document{"_id": "1", "zipcode": "10001", "phone": "5551234567", "weeks": int64(12)},
		sharedQuery.Document{"_id": "2", "zipcode": "02118", "phone": "(111) 111-1111", "weeks": int64(8)},
		sharedQuery.Document{"_id": "3", "zipcode": "10002", "phone": "5550000000", "weeks": 12.0},
	)

	tests := []struct {
		name    string
		values  url.Values
		wantIDs []string
	}{
		{"text zipcode", url.Values{"zipcode": {"10001"}}, []string{"1"}},
		{"leading zero zipcode", url.Values{"zipcode": {"02118"}}, []string{"2"}},
		{"text phone", url.Values{"phone": {"5551234567"}}, []string{"1"}},
		{"numeric field", url.Values{"weeks": {"12"}}, []string{"1", "3"}},
		{"text in list", url.Values{"zipcode[in]": {"10001,10002"}}, []string{"1", "3"}},
		{"repeated key", url.Values{"zipcode": {"02118", "10002"}}, []string{"2", "3"}},
		{"range stays numeric", url.Values{"weeks[gt]": {"10"}}, []string{"1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.values.Set("sort", "_id")
			res, err := sharedQuery.Run(context.Background(), store.Collection("bootcamps"), tt.values)
			require.NoError(t, err)

			var ids []string
			for _, doc := range res.Data {
				ids = append(ids, doc["_id"].(string))
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, int64(len(tt.wantIDs)), res.Total)
		})
	}
}

func TestRun_HugePageDoesNotWrap(t *testing.T) {
	store := mocks.NewMemStore()
	seedBootcamps(store, 5)
	coll := store.Collection("bootcamps")

	res, err := sharedQuery.Run(context.Background(), coll, url.Values{
		"page": {"4611686018427387905"}, "limit": {"4"},
	})
	require.NoError(t, err)

	maxPage := math.MaxInt / 4
	assert.Equal(t, 0, res.Count)
	assert.Nil(t, res.Pagination.Next)
	assert.Equal(t, &sharedQuery.PageRef{Page: maxPage - 1, Limit: 4}, res.Pagination.Prev)
	require.Len(t, coll.FindCalls, 1)
	assert.Equal(t, (maxPage-1)*4, coll.FindCalls[0].Skip)

	// un Request construido a mano pasa por el mismo tope
	res, err = sharedQuery.Execute(context.Background(), coll, sharedQuery.Request{Page: math.MaxInt, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Pagination.Prev)
	assert.Nil(t, res.Pagination.Next)
}

func TestRun_SelectKeepsID(t *testing.T) {
	store := mocks.NewMemStore()
	seedBootcamps(store, 2)

	res, err := sharedQuery.Run(context.Background(), store.Collection("bootcamps"), url.Values{"select": {"name"}})
	require.NoError(t, err)
	for _, doc := range res.Data {
		assert.Len(t, doc, 2)
		assert.Contains(t, doc, sharedQuery.IDField)
		assert.Contains(t, doc, "name")
	}
}

func TestRun_EmptyResultIsNotNil(t *testing.T) {
	store := mocks.NewMemStore()
	res, err := sharedQuery.Run(context.Background(), store.Collection("bootcamps"), url.Values{})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Equal(t, 0, res.Count)
	assert.Nil(t, res.Pagination.Prev)
	assert.Nil(t, res.Pagination.Next)
}

func TestRun_StoreFailuresAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")

	store := mocks.NewMemStore()
	coll := store.Collection("bootcamps")
	coll.FindErr = boom
	_, err := sharedQuery.Run(context.Background(), coll, url.Values{})
	assert.ErrorIs(t, err, sharedQuery.ErrQueryExecution)
	assert.ErrorIs(t, err, boom)

	coll = store.Collection("bootcamps")
	coll.CountErr = boom
	_, err = sharedQuery.Run(context.Background(), coll, url.Values{})
	assert.ErrorIs(t, err, sharedQuery.ErrQueryExecution)
}

func TestRun_PopulateReverseAndDirect(t *testing.T) {
	store := mocks.NewMemStore()
	bootcampID := uuid.NewString()
	store.Insert("bootcamps", sharedQuery.Document{"_id": bootcampID, "name": "Devworks", "description": "d", "createdAt": time.Now()})
	store.Insert("courses",
		sharedQuery.Document{"_id": "c1", "title": "Front End", "bootcamp": bootcampID, "createdAt": time.Now()},
		sharedQuery.Document{"_id": "c2", "title": "Back End", "bootcamp": bootcampID, "createdAt": time.Now()},
	)

	res, err := sharedQuery.Run(context.Background(), store.Collection("bootcamps"), url.Values{}, sharedQuery.Populate{
		Path: "courses", From: "courses", LocalField: sharedQuery.IDField, ForeignField: "bootcamp", Many: true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Data[0]["courses"], 2)

	res, err = sharedQuery.Run(context.Background(), store.Collection("courses"), url.Values{"sort": {"title"}}, sharedQuery.Populate{
		Path: "bootcamp", From: "bootcamps", Select: []string{"name"},
	})
	require.NoError(t, err)
	bootcamp, ok := res.Data[0]["bootcamp"].(sharedQuery.Document)
	require.True(t, ok)
	assert.Equal(t, "Devworks", bootcamp["name"])
	assert.NotContains(t, bootcamp, "description")
}
