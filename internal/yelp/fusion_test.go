package yelp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", 5*time.Second)
	c.baseURL = srv.URL
	return c, srv
}

func TestSearchRestaurantsQuery(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"businesses": [{"name": "Trattoria Bella", "price": "$$", "distance": 1931.2}]}`))
	})

	got, err := c.SearchRestaurants(context.Background(), SearchQuery{
		Location:     "Dallas, TX",
		Cuisines:     []string{"Italian", "Indian", "middle eastern", "Martian"},
		Prices:       []string{"$", "$$"},
		RadiusMeters: 99999,
		Limit:        200,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Trattoria Bella", got[0].Name)

	assert.Equal(t, "/businesses/search", gotPath)
	assert.Equal(t, "Dallas, TX", gotQuery.Get("location"))
	// Known cuisines map to category aliases; unknown ones are dropped.
	assert.Equal(t, "italian,indpak,mideastern", gotQuery.Get("categories"))
	assert.Equal(t, "1,2", gotQuery.Get("price"))
	// Caps: 50 results, 40km radius.
	assert.Equal(t, "50", gotQuery.Get("limit"))
	assert.Equal(t, "40000", gotQuery.Get("radius"))
}

func TestSearchRestaurantsDefaultCategory(t *testing.T) {
	var gotQuery url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"businesses": []}`))
	})

	_, err := c.SearchRestaurants(context.Background(), SearchQuery{Location: "Oakland"})
	require.NoError(t, err)
	assert.Equal(t, "restaurants", gotQuery.Get("categories"))
	assert.Empty(t, gotQuery.Get("price"))
	assert.Empty(t, gotQuery.Get("radius"))
}

func TestSearchRestaurantsAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": "VALIDATION_ERROR"}}`, http.StatusBadRequest)
	})

	_, err := c.SearchRestaurants(context.Background(), SearchQuery{Location: "Oakland"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestBusinessDetails(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/businesses/some-id", r.URL.Path)
		w.Write([]byte(`{"id": "some-id", "name": "Golden Dragon", "rating": 4.4}`))
	})

	biz, err := c.BusinessDetails(context.Background(), "some-id")
	require.NoError(t, err)
	assert.Equal(t, "Golden Dragon", biz.Name)
	assert.Equal(t, 4.4, biz.Rating)
}
