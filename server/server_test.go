package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/chinook/chinooktest"
	"github.com/syssam/chinook/dialect/sql"
	"github.com/syssam/chinook/engine"
	"github.com/syssam/chinook/graph"
	"github.com/syssam/chinook/metrics"
	"github.com/syssam/chinook/relation"
	"github.com/syssam/chinook/repository"
	"github.com/syssam/chinook/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newServer(t *testing.T) (*server.Server, *sql.Driver, *metrics.Metrics) {
	t.Helper()
	drv := chinooktest.Open(t)
	repo := repository.New(drv, repository.WithLogger(discard))
	eng, err := engine.New(repo, engine.WithLogger(discard))
	require.NoError(t, err)
	exec, err := graph.New(eng, relation.New(repo, relation.WithLogger(discard)), graph.WithLogger(discard))
	require.NoError(t, err)
	m := metrics.New()
	return server.New(exec, drv, server.WithLogger(discard), server.WithMetrics(m)), drv, m
}

func post(t *testing.T, h http.Handler, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestQuery(t *testing.T) {
	s, _, _ := newServer(t)
	h := s.Handler()

	t.Run("Post", func(t *testing.T) {
		w := post(t, h, `{
			"query": "query GetAlbumById($albumId: ID!) { album(id: $albumId) { id title } }",
			"operationName": "GetAlbumById",
			"variables": {"albumId": "1"}
		}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, server.ContentTypeJSON, w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"data":{"album":{"id":"1","title":"For Those About To Rock We Salute You"}}}`, w.Body.String())
	})

	t.Run("NumericID", func(t *testing.T) {
		w := post(t, h, `{"query": "query ($id: ID!) { artist(id: $id) { name } }", "variables": {"id": 118}}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"artist":{"name":"The Rolling Stones"}}}`, w.Body.String())
	})

	t.Run("FieldError", func(t *testing.T) {
		w := post(t, h, `{"query": "{ album(id: \"100000\") { id } }"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, map[string]any{"album": nil}, body["data"])
		require.Len(t, body["errors"], 1)
	})

	t.Run("NullVariable", func(t *testing.T) {
		w := post(t, h, `{"query": "query ($id: ID!) { album(id: $id) { id } }", "variables": {"id": null}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotContains(t, body, "data")
		assert.NotEmpty(t, body["errors"])
	})

	t.Run("Get", func(t *testing.T) {
		q := url.Values{}
		q.Set("query", `query ($title: String) { albums(title: $title) { id } }`)
		q.Set("variables", `{"title": "BackBeat soundtrack"}`)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/query?"+q.Encode(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"albums":[{"id":"12"}]}}`, w.Body.String())
	})

	t.Run("Msgpack", func(t *testing.T) {
		w := post(t, h, `{"query": "{ track(id: 1) { name milliseconds } }"}`, "Accept", "application/msgpack, application/json;q=0.5")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, server.ContentTypeMsgpack, w.Header().Get("Content-Type"))
		var body map[string]any
		require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &body))
		track := body["data"].(map[string]any)["track"].(map[string]any)
		assert.Equal(t, "For Those About To Rock (We Salute You)", track["name"])
		assert.EqualValues(t, 343719, track["milliseconds"])
	})
}

func TestBadRequest(t *testing.T) {
	s, _, _ := newServer(t)
	h := s.Handler()

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"InvalidJSON", httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":`)), "body:"},
		{"EmptyQuery", httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":" "}`)), "query is required"},
		{"InvalidVariables", httptest.NewRequest(http.MethodGet, "/query?query=%7B__typename%7D&variables=%7B", nil), "variables:"},
		{"TooLarge", httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(bytes.Repeat([]byte(" "), 1<<20+1))), "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body struct {
				Errors []struct {
					Message    string         `json:"message"`
					Extensions map[string]any `json:"extensions"`
				} `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Len(t, body.Errors, 1)
			assert.Contains(t, body.Errors[0].Message, tt.want)
			assert.Equal(t, server.CodeBadRequest, body.Errors[0].Extensions["code"])
		})
	}
}

func TestHealth(t *testing.T) {
	s, drv, _ := newServer(t)
	h := s.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, drv.Close())
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	s, _, _ := newServer(t)
	h := s.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get(server.HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(server.HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	router := gin.New()
	router.Use(server.RequestID(), server.Recovery(slog.New(slog.NewTextHandler(&logs, nil))))
	router.GET("/panic", func(_ *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Contains(t, logs.String(), "panic=boom")
}

func TestMetrics(t *testing.T) {
	s, _, _ := newServer(t)
	h := s.Handler()

	post(t, h, `{"query": "{ album(id: 1) { id } }"}`)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `chinook_http_requests_total{method="POST",route="/query",status="200"} 1`)
}

func TestServe(t *testing.T) {
	s, _, _ := newServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
