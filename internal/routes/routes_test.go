package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cache-viewer/internal/cache"
	"cache-viewer/internal/handlers"
	"cache-viewer/internal/models"
	"cache-viewer/internal/realtime"
	"cache-viewer/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCacheRoutes_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupCacheRoutes(cache.NewTTLCache(cache.Options{ConcurrencySafe: true}), 60, zerolog.Nop())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCacheRoutes_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := cache.NewTTLCache(cache.Options{ConcurrencySafe: true})
	r := SetupCacheRoutes(c, 60, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/cache", bytes.NewBufferString(`{"key":"a","value":"1","expiry":30}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, c.Len())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, c.Len())
}

type noopIntents struct{}

func (noopIntents) AddEntry(context.Context, string, string, string) error { return nil }
func (noopIntents) DeleteEntry(context.Context, string) error              { return nil }
func (noopIntents) ClearAll(context.Context) error                         { return nil }
func (noopIntents) ManualRefresh(context.Context) error                    { return nil }
func (noopIntents) RefreshOne(context.Context, string) error               { return nil }

func TestGatewayRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New(realtime.NewHub())
	st.Replace([]models.CacheEntry{{Key: "a", Value: "1", Expiry: 9}})
	h := handlers.NewGatewayHandler(noopIntents{}, st, nil, zerolog.Nop())
	r := SetupGatewayRoutes(h, zerolog.Nop())

	for _, tc := range []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/snapshot", http.StatusOK},
		{http.MethodPost, "/api/refresh", http.StatusOK},
		{http.MethodDelete, "/api/entries", http.StatusOK},
		{http.MethodDelete, "/api/entries/a", http.StatusOK},
		{http.MethodPost, "/api/entries/a/refresh", http.StatusOK},
		{http.MethodGet, "/api/activity", http.StatusServiceUnavailable},
		{http.MethodOptions, "/api/entries", http.StatusNoContent},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
	}
}
