package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

func TestObserveTransitionByResult(t *testing.T) {
	m := New(config.MetricsConfig{Enabled: true, Namespace: "test"})

	m.ObserveTransition("MarkAsLent", nil, time.Millisecond)
	m.ObserveTransition("MarkAsLent", fmt.Errorf("%w: only the owner", lending.ErrForbidden), time.Millisecond)
	m.ObserveTransition("MarkAsLent", lending.ErrConflict, time.Millisecond)
	m.ObserveTransition("MarkAsLent", errors.New("disk"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("MarkAsLent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("MarkAsLent", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("MarkAsLent", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("MarkAsLent", "error")))
}

func TestObserveEvent(t *testing.T) {
	m := New(config.MetricsConfig{Enabled: true, Namespace: "test"})

	m.ObserveEvent(model.NotificationRequestCreated, nil)
	m.ObserveEvent(model.NotificationRequestCreated, errors.New("full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("REQUEST_CREATED", "queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("REQUEST_CREATED", "dropped")))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New(config.MetricsConfig{Enabled: true, Namespace: "test"})
	m.ObserveHTTP("GET /api/items", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_http_requests_total{code="200",route="GET /api/items"} 1`))
}

func TestDisabledMetricsAreInert(t *testing.T) {
	m := New(config.MetricsConfig{})

	m.ObserveTransition("CreateRequest", nil, time.Second)
	m.ObserveEvent(model.NotificationRequestCreated, nil)
	m.ObserveHTTP("GET /", 200, time.Second)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
