package simd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/brownout-core/internal/improvement"
	"github.com/GoSim-25-26J-441/brownout-core/internal/metrics"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
	limiter  *submitLimiter
}

// NewHTTPServer wires the run API. With a non-nil exporter the Prometheus
// metrics are served on /metrics.
func NewHTTPServer(store *RunStore, executor *RunExecutor, exporter *metrics.Exporter) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)
	s.mux.HandleFunc("/v1/compare", s.handleCompare)
	if exporter != nil {
		s.mux.Handle("/metrics", exporter.Handler())
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

// SetSubmitRateLimit caps run and compare submissions per client and
// second. Zero disables the limit.
func (s *HTTPServer) SetSubmitRateLimit(perSecond int) {
	s.limiter = newSubmitLimiter(perSecond)
}

func (s *HTTPServer) allowSubmit(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter.Allow(clientKey(r)) {
		return true
	}
	w.Header().Set("Retry-After", "1")
	s.writeError(w, http.StatusTooManyRequests, "submission rate limit exceeded")
	return false
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRuns handles /v1/runs endpoint
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id} and related endpoints
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	// Parse path: /v1/runs/{id}, /v1/runs/{id}:stop, /v1/runs/{id}/report
	// or /v1/runs/{id}/metrics/timeseries
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	route := func(suffix, method string, handle func(http.ResponseWriter, *http.Request, string)) bool {
		if !strings.HasSuffix(path, suffix) {
			return false
		}
		if r.Method != method {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return true
		}
		handle(w, r, strings.TrimSuffix(path, suffix))
		return true
	}

	switch {
	case route(":stop", http.MethodPost, s.handleStopRun):
	case route("/report", http.MethodGet, s.handleGetReport):
	case route("/metrics/timeseries", http.MethodGet, s.handleTimeSeries):
	case strings.Contains(path, "/"):
		s.writeError(w, http.StatusNotFound, "not found")
	default:
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetRun(w, r, path)
	}
}

// handleCreateRun handles POST /v1/runs: the run is stored and started
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if !s.allowSubmit(w, r) {
		return
	}
	var req struct {
		RunID string `json:"run_id,omitempty"`
		RunInput
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ScenarioYAML) == "" {
		s.writeError(w, http.StatusBadRequest, "scenario_yaml is required")
		return
	}
	if strings.ContainsAny(req.RunID, "/:") {
		s.writeError(w, http.StatusBadRequest, "run_id cannot contain '/' or ':'")
		return
	}
	if req.CallbackURL != "" {
		if err := validateCallbackURL(req.CallbackURL); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	input := req.RunInput
	rec, err := s.store.Create(req.RunID, &input)
	if err != nil {
		if errors.Is(err, ErrRunExists) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	started, err := s.Executor.Start(rec.Run.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": started.Run,
	})
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = minInt(parsed, 1000)
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	status := models.RunStatus(strings.ToLower(r.URL.Query().Get("status")))
	recs := s.store.List(limit, offset, status)

	runs := make([]*models.Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": rec.Run,
	})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRunIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleGetReport handles GET /v1/runs/{id}/report
func (s *HTTPServer) handleGetReport(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Report == nil {
		s.writeError(w, http.StatusPreconditionFailed, "report not available")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"report": rec.Report,
	})
}

// handleTimeSeries handles GET /v1/runs/{id}/metrics/timeseries. The name
// query parameter selects one metric, host filters per-host series.
func (s *HTTPServer) handleTimeSeries(w http.ResponseWriter, r *http.Request, runID string) {
	if _, ok := s.store.Get(runID); !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	collector, ok := s.store.GetCollector(runID)
	if !ok {
		s.writeError(w, http.StatusPreconditionFailed, "time-series metrics not available")
		return
	}

	host := r.URL.Query().Get("host")
	var names []string
	if name := r.URL.Query().Get("name"); name != "" {
		names = []string{name}
	} else {
		names = collector.GetMetricNames()
	}

	points := make([]*models.MetricPoint, 0)
	for _, name := range names {
		for _, p := range collector.GetAllTimeSeries(name) {
			if host != "" && p.Labels["host"] != host {
				continue
			}
			points = append(points, p)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"points": points,
	})
}

// handleCompare handles POST /v1/compare. The comparison runs synchronously.
func (s *HTTPServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.allowSubmit(w, r) {
		return
	}
	var req struct {
		ScenarioYAML string `json:"scenario_yaml"`
		Objective    string `json:"objective,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ScenarioYAML) == "" {
		s.writeError(w, http.StatusBadRequest, "scenario_yaml is required")
		return
	}

	comparison, err := s.Executor.Compare(r.Context(), req.ScenarioYAML, req.Objective)
	if err != nil {
		var unknown *improvement.UnknownObjectiveError
		switch {
		case errors.As(err, &unknown), strings.HasPrefix(err.Error(), "invalid scenario"):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"comparison": comparison,
	})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
