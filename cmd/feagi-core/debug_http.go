package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/feagi/feagi-core/pkg/apierr"
	"github.com/feagi/feagi-core/pkg/burst"
	"github.com/feagi/feagi-core/pkg/config"
	"github.com/feagi/feagi-core/pkg/session"
)

// debugServer exposes the minimal HTTP surface spec.md leaves room for once
// the full REST/OpenAPI layer is excluded as out of scope: /health,
// /debug/sessions, /debug/sessions/snapshot, /debug/burst,
// /debug/burst/parameter and /debug/burst/snapshot. Built with net/http.ServeMux, matching
// the teacher's own router-free pkg/api/server.go.
type debugServer struct {
	httpServer *http.Server
	registry   *session.Registry
	engine     *burst.Engine
}

func newDebugServer(cfg *config.Config, registry *session.Registry, engine *burst.Engine) *debugServer {
	s := &debugServer{registry: registry, engine: engine}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/debug/sessions", s.handleSessions)
	mux.HandleFunc("/debug/burst", s.handleBurst)
	mux.HandleFunc("/debug/burst/parameter", s.handleBurstParameter)
	mux.HandleFunc("/debug/sessions/snapshot", s.handleSessionsSnapshot)
	mux.HandleFunc("/debug/burst/snapshot", s.handleBurstSnapshot)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.APIHost, cfg.Server.APIPort),
		Handler: mux,
	}
	return s
}

func (s *debugServer) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *debugServer) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *debugServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierr.MethodNotAllowed(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":           true,
		"sessionCount": s.registry.Count(),
		"burstIndex":   s.engine.BurstIndex(),
	})
}

type sessionSummary struct {
	AgentID string            `json:"agentId"`
	Phase   string            `json:"phase"`
	Error   string            `json:"error,omitempty"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

func (s *debugServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierr.MethodNotAllowed(w)
		return
	}

	ids := s.registry.ActiveSessions()
	summaries := make([]sessionSummary, 0, len(ids))
	for _, id := range ids {
		rec, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		summary := sessionSummary{AgentID: id.String(), Phase: rec.Phase().String()}
		if err := rec.LastError(); err != nil {
			summary.Error = err.Error()
		}
		if eps := rec.Endpoints(); len(eps) > 0 {
			summary.Endpoints = make(map[string]string, len(eps))
			for capability, addr := range eps {
				summary.Endpoints[string(capability)] = addr
			}
		}
		summaries = append(summaries, summary)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "sessions": summaries})
}

func (s *debugServer) handleBurst(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierr.MethodNotAllowed(w)
		return
	}

	areas := s.engine.Ledger().Areas()
	counts := make(map[string]int, len(areas))
	for _, area := range areas {
		counts[area.String()] = len(s.engine.Ledger().Recent(area))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":           true,
		"burstIndex":   s.engine.BurstIndex(),
		"frequencyHz":  s.engine.Frequency(),
		"archivedAreas": counts,
	})
}

// parameterUpdateRequest is the body handleBurstParameter accepts — a debug
// escape hatch for feagictl to force a ParameterUpdate without a real
// control-channel endpoint, per SPEC_FULL.md §10.3.
type parameterUpdateRequest struct {
	CorticalID    string `json:"corticalId,omitempty"`
	ParameterName string `json:"parameterName"`
	Value         any    `json:"value"`
}

func (s *debugServer) handleBurstParameter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apierr.MethodNotAllowed(w)
		return
	}

	var req parameterUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, apierr.CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ParameterName == "" {
		apierr.BadRequest(w, apierr.CodeBadRequest, "parameterName is required")
		return
	}

	s.engine.Parameters().Enqueue(burst.ParameterUpdate{
		CorticalID:    burst.CorticalTarget(req.CorticalID),
		ParameterName: req.ParameterName,
		Value:         req.Value,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}

// handleSessionsSnapshot returns the full registry dump as msgpack — not
// JSON, since this is a binary point-in-time snapshot for feagictl to save
// and inspect offline, not a response any HTTP client is expected to parse
// inline.
func (s *debugServer) handleSessionsSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierr.MethodNotAllowed(w)
		return
	}
	data, err := s.registry.DumpSnapshot()
	if err != nil {
		apierr.Internal(w, "failed to encode snapshot: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.Write(data)
}

// handleBurstSnapshot returns the burst engine's current state (index,
// frequency, fire ledger) as msgpack.
func (s *debugServer) handleBurstSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierr.MethodNotAllowed(w)
		return
	}
	data, err := s.engine.DumpSnapshot()
	if err != nil {
		apierr.Internal(w, "failed to encode snapshot: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.Write(data)
}
