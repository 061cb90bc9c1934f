package httpstatus

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/publisher"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Port = 0
	s, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error constructing server: %v", err)
	}
	return s
}

func TestHandleHealthz_ReturnsOK(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHandleBudget_EmptyWhenNoStack(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/budget", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var body struct {
		Monitors []monitorStatus `json:"monitors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if len(body.Monitors) != 0 {
		t.Fatalf("expected no monitors, got %v", body.Monitors)
	}
}

func TestHandleBudget_ReflectsStack(t *testing.T) {
	s := newTestServer(t)
	stack := budget.NewStack(nil, nil, budget.NewMonitor(budget.ScopeMethod, 0, 1000))
	stack.RecordTokens(42)
	s.SetStack(stack)

	req := httptest.NewRequest(http.MethodGet, "/budget", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var body struct {
		Monitors []monitorStatus `json:"monitors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if len(body.Monitors) != 1 || body.Monitors[0].TokensConsumed != 42 {
		t.Fatalf("unexpected monitors: %v", body.Monitors)
	}
}

func TestHandleVerdicts_EvictsOldestBeyondMax(t *testing.T) {
	s := newTestServer(t)
	s.config.MaxVerdicts = 2
	for i := 0; i < 3; i++ {
		s.RecordVerdict(publisher.PublishedVerdict{UseCaseID: "uc", Method: "m"})
	}

	req := httptest.NewRequest(http.MethodGet, "/verdicts", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var body struct {
		Verdicts []publisher.PublishedVerdict `json:"verdicts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if len(body.Verdicts) != 2 {
		t.Fatalf("expected eviction down to 2 verdicts, got %d", len(body.Verdicts))
	}
}
