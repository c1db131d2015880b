package cacheclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cache-viewer/internal/models"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080")
	require.Error(t, err)
	_, err = New("/api")
	require.Error(t, err)
}

func TestList_DecodesEntries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/cache", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[{"key":"b","value":"2","expiry":5},{"key":"a","value":"1","expiry":0}]}`)
	})

	entries, err := c.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []models.CacheEntry{
		{Key: "b", Value: "2", Expiry: 5},
		{Key: "a", Value: "1", Expiry: 0},
	}, entries)
}

func TestList_NullOrAbsentDataIsEmpty(t *testing.T) {
	for _, body := range []string{`{"data":null}`, `{}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		entries, err := c.List(context.Background())
		require.NoError(t, err, body)
		require.NotNil(t, entries, body)
		require.Empty(t, entries, body)
	}
}

func TestList_NonJSONIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>proxy error</html>")
	})
	_, err := c.List(context.Background())
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindTransport, kind)
}

func TestList_ServerErrorIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Failed to clear cache"}`)
	})
	_, err := c.List(context.Background())
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindTransport, kind)
	require.Contains(t, err.Error(), "500")
}

func TestList_TimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.List(context.Background())
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
	require.False(t, IsNotFound(err))
	require.False(t, IsValidation(err))
	_, ok := KindOf(err)
	require.True(t, ok)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestList_UnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	_, err = c.List(context.Background())
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindTransport, kind)
}

func TestGet_BareAndEnvelope(t *testing.T) {
	bodies := map[string]string{
		"bare":     `{"key":"session:42","value":"alice","expiry":60}`,
		"envelope": `{"data":{"key":"session:42","value":"alice","expiry":60}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/cache/session:42", r.URL.Path)
				_, _ = io.WriteString(w, body)
			})
			entry, err := c.Get(context.Background(), "session:42")
			require.NoError(t, err)
			require.Equal(t, models.CacheEntry{Key: "session:42", Value: "alice", Expiry: 60}, entry)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Unable to retrieve data for the provided key."}`)
	})
	_, err := c.Get(context.Background(), "gone")
	require.True(t, IsNotFound(err))
	require.Equal(t, "Unable to retrieve data for the provided key.", err.Error())
}

func TestGet_EscapesKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/cache/a%2Fb", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"key":"a/b","value":"v","expiry":1}`)
	})
	entry, err := c.Get(context.Background(), "a/b")
	require.NoError(t, err)
	require.Equal(t, "a/b", entry.Key)
}

func TestDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/cache/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"key not found: missing"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "present"))

	err := c.Delete(context.Background(), "missing")
	require.True(t, IsNotFound(err))
	require.Equal(t, "key not found: missing", err.Error())
}

func TestClear(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/cache", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"success"}`)
	})
	require.NoError(t, c.Clear(context.Background()))
	require.Equal(t, 1, calls)
}

func TestClear_NotFoundStatusIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := c.Clear(context.Background())
	require.False(t, IsNotFound(err))
	kind, _ := KindOf(err)
	require.Equal(t, KindTransport, kind)
}

func TestCreate_SendsEntry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		require.Equal(t, map[string]any{"key": "k", "value": "v", "expiry": float64(30)}, got)
		_, _ = io.WriteString(w, `{"status":"success"}`)
	})
	require.NoError(t, c.Create(context.Background(), models.CacheEntry{Key: "k", Value: "v", Expiry: 30}))
}

func TestCreate_ValidationMessageVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Expiry must be in range 1 - 86400"}`)
	})
	err := c.Create(context.Background(), models.CacheEntry{Key: "k", Value: "v", Expiry: 0})
	require.True(t, IsValidation(err))
	require.Equal(t, "Expiry must be in range 1 - 86400", err.Error())
}

func TestCreate_BadRequestWithoutMessageIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "bad")
	})
	err := c.Create(context.Background(), models.CacheEntry{Key: "k", Value: "v", Expiry: 1})
	require.False(t, IsValidation(err))
	require.Contains(t, err.Error(), "400")
}
