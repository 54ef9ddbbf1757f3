package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/syssam/chinook/dialect/sql"
	"github.com/syssam/chinook/graph"
	"github.com/syssam/chinook/metrics"
)

func TestObserveQuery(t *testing.T) {
	m := metrics.New()
	var observe sql.QueryObserver = m.ObserveQuery

	observe(context.Background(), "SELECT 1", time.Millisecond, nil)
	observe(context.Background(), "SELECT 1", time.Millisecond, nil)
	observe(context.Background(), "SELECT 1", time.Millisecond, errors.New("no such table: albums"))
	observe(context.Background(), "SELECT 1", time.Millisecond, context.Canceled)

	n, err := testutil.GatherAndCount(m.Registry(), "chinook_storage_queries_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	body := scrape(t, m)
	assert.Contains(t, body, `chinook_storage_queries_total{class="ok"} 2`)
	assert.Contains(t, body, `chinook_storage_queries_total{class="schema"} 1`)
	assert.Contains(t, body, `chinook_storage_queries_total{class="canceled"} 1`)
	assert.Contains(t, body, `chinook_storage_query_duration_seconds_count 4`)
}

func TestObserveOperation(t *testing.T) {
	m := metrics.New()
	notFound := &gqlerror.Error{Message: "x", Extensions: map[string]any{"code": "ALBUM_NOT_FOUND"}}
	invalid := &gqlerror.Error{Message: "y", Extensions: map[string]any{"code": graph.CodeValidation}}

	m.ObserveOperation("A", time.Millisecond, &graph.Response{Executed: true})
	m.ObserveOperation("A", time.Millisecond, &graph.Response{Executed: true, Errors: gqlerror.List{notFound}})
	m.ObserveOperation("", time.Millisecond, &graph.Response{Errors: gqlerror.List{invalid}})

	body := scrape(t, m)
	assert.Contains(t, body, `chinook_graphql_operations_total{outcome="ok"} 1`)
	assert.Contains(t, body, `chinook_graphql_operations_total{outcome="field_error"} 1`)
	assert.Contains(t, body, `chinook_graphql_operations_total{outcome="request_error"} 1`)
	assert.Contains(t, body, `chinook_graphql_errors_total{code="ALBUM_NOT_FOUND"} 1`)
	assert.Contains(t, body, `chinook_graphql_errors_total{code="GRAPHQL_VALIDATION_FAILED"} 1`)
}

func TestObserveRequest(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest(http.MethodPost, "/query", http.StatusOK, time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/query", http.StatusBadRequest, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `chinook_http_requests_total{method="POST",route="/query",status="200"} 1`)
	assert.Contains(t, body, `chinook_http_requests_total{method="POST",route="/query",status="400"} 1`)
	assert.Contains(t, body, `chinook_http_request_duration_seconds_count{route="/query"} 2`)
}

func TestIsolatedRegistries(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 0)
	assert.Contains(t, scrape(t, a), `route="/health"`)
	assert.NotContains(t, scrape(t, b), `route="/health"`)
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
