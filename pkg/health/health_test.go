package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysHealthy(_ context.Context) error { return nil }

func alwaysFailing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func decode(t *testing.T, w *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	s := New()
	s.AddLivenessCheck("goroutines", time.Second, alwaysHealthy)
	s.AddLivenessCheck("gc", time.Second, alwaysHealthy)

	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode(t, w).Status)
}

func TestLiveEndpoint_FailureThreshold(t *testing.T) {
	s := New()
	s.AddLivenessCheck("postgres", time.Second, alwaysFailing("connection refused"))
	p := s.liveness[0]
	ctx := context.Background()

	// Two failures stay under the threshold of three.
	p.run(ctx)
	p.run(ctx)

	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	p.run(ctx)

	w = httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decode(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["postgres"])
}

func TestProbeRecovery(t *testing.T) {
	failing := true
	s := New()
	s.AddLivenessCheck("flaky", time.Second, func(_ context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	})
	p := s.liveness[0]
	ctx := context.Background()

	p.run(ctx)
	p.run(ctx)
	p.run(ctx)
	assert.False(t, p.healthy.Load())

	failing = false
	p.run(ctx)
	assert.True(t, p.healthy.Load(), "one pass should recover the probe")
}

func TestReadyEndpoint_ManualGate(t *testing.T) {
	s := New()
	s.AddReadinessCheck("redis", time.Second, alwaysHealthy)

	w := httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decode(t, w).Checks, "_readiness")

	s.SetReady(true)

	w = httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Shutdown drain: closing the gate makes the probe fail again.
	s.SetReady(false)

	w = httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIsReady_FailingCheck(t *testing.T) {
	s := New()
	s.AddReadinessCheck("postgres", time.Second, alwaysHealthy)
	s.AddReadinessCheck("redis", time.Second, alwaysFailing("redis: connection pool timeout"))
	s.SetReady(true)

	assert.True(t, s.IsReady(), "probes start healthy before any run")

	ctx := context.Background()
	for range 3 {
		s.readiness[1].run(ctx)
	}
	assert.False(t, s.IsReady())

	w := httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	body := decode(t, w)
	assert.Contains(t, body.Checks, "redis")
	assert.NotContains(t, body.Checks, "postgres")
}

func TestStartStop(t *testing.T) {
	s := New()
	s.AddLivenessCheck("goroutines", time.Second, alwaysHealthy)

	s.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	s.Stop()
	s.Stop() // idempotent
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
