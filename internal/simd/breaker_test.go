package simd

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

func TestCallbackBreakerTransitions(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newCallbackBreaker(2, time.Minute)
	b.now = func() time.Time { return now }

	if !b.Allow("h") || b.State("h") != breakerClosed {
		t.Fatal("Expected a fresh host to be closed")
	}

	b.RecordFailure("h")
	if b.State("h") != breakerClosed {
		t.Errorf("Expected closed below threshold, got %s", b.State("h"))
	}
	b.RecordFailure("h")
	if b.State("h") != breakerOpen || b.Allow("h") {
		t.Fatalf("Expected open after threshold, got %s", b.State("h"))
	}

	now = now.Add(time.Minute)
	if !b.Allow("h") || b.State("h") != breakerHalfOpen {
		t.Fatalf("Expected half-open after timeout, got %s", b.State("h"))
	}

	b.RecordFailure("h")
	if b.State("h") != breakerOpen {
		t.Errorf("Expected a failed trial to reopen, got %s", b.State("h"))
	}

	now = now.Add(time.Minute)
	b.Allow("h")
	b.RecordSuccess("h")
	if b.State("h") != breakerClosed {
		t.Errorf("Expected success to close, got %s", b.State("h"))
	}
}

func TestNotifierSkipsOpenCircuit(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n := NewNotifier()
	host := callbackHost(ts.URL)
	for i := 0; i < 3; i++ {
		n.breaker.RecordFailure(host)
	}

	n.Notify(ts.URL, "", &RunRecord{Run: &models.Run{ID: "run-1", Status: models.RunStatusCompleted}})
	time.Sleep(50 * time.Millisecond)
	if got := hits.Load(); got != 0 {
		t.Errorf("Expected no delivery while the circuit is open, got %d", got)
	}
}
