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

func probe(handler http.HandlerFunc) (*httptest.ResponseRecorder, map[string]string) {
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestReadyEndpoint_GatedUntilSetReady(t *testing.T) {
	h := New()

	rec, _ := probe(h.ReadyEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec, _ = probe(h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, rec.Code)

	h.SetReady(false)
	rec, _ = probe(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChecksRunAndReport(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("always-ok", time.Second, func(ctx context.Context) error {
		return nil
	})
	h.AddReadinessCheck("broken", time.Second, func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	h.Start(context.Background(), time.Minute)
	defer h.Stop()

	// Start runs every check once before returning control to the ticker
	// loop, but on another goroutine; poll briefly.
	require.Eventually(t, func() bool {
		rec, _ := probe(h.ReadyEndpoint)
		return rec.Code == http.StatusServiceUnavailable
	}, time.Second, 10*time.Millisecond)

	_, body := probe(h.ReadyEndpoint)
	assert.Equal(t, "ok", body["always-ok"])
	assert.Equal(t, "connection refused", body["broken"])
}

func TestLiveEndpoint_IgnoresReadinessGate(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, GoroutineCountCheck(1 << 20))

	h.Start(context.Background(), time.Minute)
	defer h.Stop()

	require.Eventually(t, func() bool {
		rec, _ := probe(h.LiveEndpoint)
		return rec.Code == http.StatusOK
	}, time.Second, 10*time.Millisecond)
}

func TestStop_TerminatesRunner(t *testing.T) {
	h := New()
	ran := make(chan struct{}, 1)
	h.AddLivenessCheck("tick", time.Second, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("check never ran")
	}

	h.Stop()
}
