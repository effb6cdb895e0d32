package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndExposition(t *testing.T) {
	rooms := 3
	m := New(func() int { return rooms })

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()
	m.Received("offer")
	m.Sent("offer", 2)
	m.Sent("offer", 0)
	m.Dropped(DropRateLimited)

	if got := testutil.ToFloat64(m.connections); got != 1 {
		t.Fatalf("connections=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.outbound.WithLabelValues("offer")); got != 2 {
		t.Fatalf("sent offer=%v, want 2", got)
	}
	if got := testutil.ToFloat64(m.dropped.WithLabelValues(DropRateLimited)); got != 1 {
		t.Fatalf("dropped=%v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", rec.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"rendezvous_rooms 3",
		"rendezvous_connections 1",
		`rendezvous_events_received_total{event="offer"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("exposition missing %q:\n%s", want, body)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ConnOpened()
	m.Received("x")
	m.Sent("x", 1)
	m.Dropped(DropBadFrame)
	m.ConnClosed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want %d", rec.Code, http.StatusNotFound)
	}
}
