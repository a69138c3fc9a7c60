// Package handlers implements the HTTP surface described in the router's
// external interfaces: POST /api/v1/route, backed by router.Route.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ometrics "github.com/evidentbank/router/internal/metrics"
	"github.com/evidentbank/router/internal/router"
	"github.com/evidentbank/router/internal/util"
)

// RouteHandler serves POST /api/v1/route.
type RouteHandler struct {
	rc     *router.Context
	logger *zap.Logger
}

func NewRouteHandler(rc *router.Context, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{rc: rc, logger: logger}
}

type routeRequest struct {
	SessionID string `json:"session_id"`
	Utterance string `json:"utterance"`
	Timestamp string `json:"timestamp"`
}

type operationView struct {
	Tag                string       `json:"tag"`
	Scope              router.Scope `json:"scope"`
	RewrittenUtterance string       `json:"rewritten_utterance,omitempty"`
}

type routeResponse struct {
	Operations         []operationView `json:"operations"`
	ClarifyPrompt      string          `json:"clarify_prompt,omitempty"`
	RewrittenUtterance string          `json:"rewritten_utterance,omitempty"`
	Debug              debugView       `json:"debug"`
}

type debugView struct {
	Signals   router.Signals  `json:"signals"`
	Evidence  router.Evidence `json:"evidence"`
	Rewritten string          `json:"rewritten"`
}

func (h *RouteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Utterance == "" {
		writeError(w, http.StatusBadRequest, "utterance is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	start := time.Now()
	decision := router.Route(r.Context(), h.rc, req.SessionID, req.Utterance)
	elapsed := time.Since(start)

	h.logger.Info("routed utterance",
		zap.String("session_id", req.SessionID),
		zap.String("utterance", util.TruncateString(req.Utterance, 120, true)),
		zap.Int("operations", len(decision.Operations)),
		zap.Duration("elapsed", elapsed),
	)

	operation := "clarify"
	if len(decision.Operations) > 0 {
		operation = string(decision.Operations[0].Tag)
	}
	ometrics.RecordRoutingDecision(operation, elapsed.Seconds())

	resp := routeResponse{
		ClarifyPrompt:      decision.ClarifyPrompt,
		RewrittenUtterance: decision.RewrittenUtterance,
		Debug: debugView{
			Signals:   decision.Debug.Signals,
			Evidence:  decision.Debug.Evidence,
			Rewritten: decision.Debug.Rewritten,
		},
	}
	for _, op := range decision.Operations {
		resp.Operations = append(resp.Operations, operationView{
			Tag:                string(op.Tag),
			Scope:              op.Scope,
			RewrittenUtterance: op.RewrittenClause,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode route response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
