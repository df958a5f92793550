package simd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/brownout-core/internal/metrics"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestHTTPServer(t *testing.T) (*HTTPServer, *RunStore, *httptest.Server) {
	t.Helper()
	store := NewRunStore()
	exporter := metrics.NewExporter(prometheus.NewRegistry())
	executor := NewRunExecutor(store, exporter)
	srv := NewHTTPServer(store, executor, exporter)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, store, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, out
}

func TestHTTPHealthz(t *testing.T) {
	_, _, ts := newTestHTTPServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestHTTPRunLifecycle(t *testing.T) {
	srv, store, ts := newTestHTTPServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/runs", map[string]any{
		"run_id":        "run-1",
		"scenario_yaml": saturatedScenario,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}
	run := body["run"].(map[string]any)
	if run["id"] != "run-1" || run["status"] != string(models.RunStatusRunning) {
		t.Errorf("Unexpected run %v", run)
	}

	waitDone(t, srv.Executor, "run-1")
	waitForStatus(t, store, "run-1", models.RunStatusCompleted)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/runs/run-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["run"].(map[string]any)["status"] != "completed" {
		t.Errorf("Expected completed, got %v", body["run"])
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/runs/run-1/report", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	report := body["report"].(map[string]any)
	if report["dimmer_trigger_count"] != float64(2) {
		t.Errorf("Expected 2 triggers, got %v", report["dimmer_trigger_count"])
	}

	resp, body = doJSON(t, http.MethodGet,
		ts.URL+"/v1/runs/run-1/metrics/timeseries?name="+metrics.MetricHostUtilization+"&host=host-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if points := body["points"].([]any); len(points) != 4 {
		t.Errorf("Expected 4 utilization points, got %d", len(points))
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/runs/run-1/metrics/timeseries?host=nope", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if points := body["points"].([]any); len(points) != 0 {
		t.Errorf("Expected no points for unknown host, got %d", len(points))
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/runs", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if runs := body["runs"].([]any); len(runs) != 1 {
		t.Errorf("Expected 1 run, got %d", len(runs))
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", resp.StatusCode)
	}
}

func TestHTTPCreateRunValidation(t *testing.T) {
	_, store, ts := newTestHTTPServer(t)
	store.Create("taken", &RunInput{ScenarioYAML: saturatedScenario})

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"missing scenario", map[string]any{"run_id": "a"}, http.StatusBadRequest},
		{"bad run id", map[string]any{"run_id": "a/b", "scenario_yaml": saturatedScenario}, http.StatusBadRequest},
		{"metadata callback", map[string]any{
			"scenario_yaml": saturatedScenario,
			"callback_url":  "http://169.254.169.254/latest",
		}, http.StatusBadRequest},
		{"duplicate", map[string]any{"run_id": "taken", "scenario_yaml": saturatedScenario}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/runs", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d: %v", tt.wantStatus, resp.StatusCode, body)
			}
			if body["error"] == nil {
				t.Error("Expected an error message")
			}
		})
	}

	resp, err := http.Post(ts.URL+"/v1/runs", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", resp.StatusCode)
	}
}

func TestHTTPRunNotFoundAndMethods(t *testing.T) {
	_, store, ts := newTestHTTPServer(t)
	store.Create("pending", &RunInput{ScenarioYAML: saturatedScenario})

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/v1/runs/missing", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/missing/report", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/missing/metrics/timeseries", http.StatusNotFound},
		{http.MethodPost, "/v1/runs/missing:stop", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/pending/report", http.StatusPreconditionFailed},
		{http.MethodGet, "/v1/runs/pending/metrics/timeseries", http.StatusPreconditionFailed},
		{http.MethodGet, "/v1/runs/pending/unknown", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/pending:stop", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/v1/runs/pending", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/v1/runs", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/compare", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/runs/", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, _ := doJSON(t, tt.method, ts.URL+tt.path, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestHTTPStopRun(t *testing.T) {
	srv, _, ts := newTestHTTPServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/runs", map[string]any{
		"run_id":        "long",
		"scenario_yaml": longScenario,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/runs/long:stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["run"].(map[string]any)["status"] != "cancelled" {
		t.Errorf("Expected cancelled, got %v", body["run"])
	}
	waitDone(t, srv.Executor, "long")
}

func TestHTTPListRunsFilter(t *testing.T) {
	_, store, ts := newTestHTTPServer(t)
	store.Create("a", &RunInput{})
	store.Create("b", &RunInput{})
	store.SetStatus("b", models.RunStatusFailed, "x")

	_, body := doJSON(t, http.MethodGet, ts.URL+"/v1/runs?status=FAILED&limit=5", nil)
	runs := body["runs"].([]any)
	if len(runs) != 1 || runs[0].(map[string]any)["id"] != "b" {
		t.Errorf("Expected only run b, got %v", runs)
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["limit"] != float64(5) {
		t.Errorf("Expected limit 5, got %v", pagination["limit"])
	}
}

func TestHTTPCompare(t *testing.T) {
	_, _, ts := newTestHTTPServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/compare", map[string]any{
		"scenario_yaml": saturatedScenario,
		"objective":     "revenue_loss",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	comparison := body["comparison"].(map[string]any)
	if comparison["best_policy"] == "" {
		t.Error("Expected a best policy")
	}
	if results := comparison["results"].([]any); len(results) != 5 {
		t.Errorf("Expected 5 results, got %d", len(results))
	}

	for _, bad := range []map[string]any{
		{},
		{"scenario_yaml": "hosts: ["},
		{"scenario_yaml": saturatedScenario, "objective": "latency"},
	} {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/compare", bad)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 for %v, got %d", bad, resp.StatusCode)
		}
	}
}
