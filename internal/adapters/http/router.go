package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/ats-match-engine/internal/config"
	"github.com/kirillkom/ats-match-engine/internal/core/domain"
	"github.com/kirillkom/ats-match-engine/internal/core/ports"
	"github.com/kirillkom/ats-match-engine/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	creator ports.MatchCreator
	reader  ports.AttemptReader
	configs ports.ConfigStore
	metrics *metrics.HTTPServerMetrics
	cfg     config.Config
}

func NewRouter(
	creator ports.MatchCreator,
	reader ports.AttemptReader,
	configs ports.ConfigStore,
	serverMetrics *metrics.HTTPServerMetrics,
	cfg config.Config,
) *Router {
	return &Router{
		creator: creator,
		reader:  reader,
		configs: configs,
		metrics: serverMetrics,
		cfg:     cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/matches", rt.createMatch)
	mux.HandleFunc("/v1/matches/", rt.getMatchByID)
	mux.HandleFunc("/v1/admin/scoring-config", rt.scoringConfig)

	var handler http.Handler = mux
	handler = rt.rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 50*time.Millisecond)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		ProfileID  string `json:"profile_id"`
		JobID      string `json:"job_id"`
		ResumeText string `json:"resume_text"`
		JobText    string `json:"job_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	attempt, err := rt.creator.Create(r.Context(), req.ProfileID, req.JobID, req.ResumeText, req.JobText)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordMatchRequest(serviceName)
	}
	writeJSON(w, http.StatusAccepted, attempt)
}

func (rt *Router) getMatchByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/matches/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "attempt id is required"})
		return
	}

	attempt, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (rt *Router) scoringConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snapshot, err := rt.configs.Snapshot(r.Context())
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	case http.MethodPut:
		var cfg domain.ScoringConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		snapshot, err := rt.configs.Update(r.Context(), cfg)
		if rt.metrics != nil {
			rt.metrics.RecordConfigUpdate(serviceName, err)
		}
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
