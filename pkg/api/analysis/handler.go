// Package analysis exposes the valuation pipeline over HTTP for the
// dashboard frontend.
package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"equitylens/pkg/core/derive"
	"equitylens/pkg/core/pipeline"
	"equitylens/pkg/core/report"
	"equitylens/pkg/models"
)

// Handler serves analysis requests.
type Handler struct {
	orch *pipeline.Orchestrator
}

// NewHandler creates the handler around a configured orchestrator.
func NewHandler(orch *pipeline.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// AnalyzeRequest is the POST body for both endpoints.
type AnalyzeRequest struct {
	Ticker string                 `json:"ticker"`
	Peers  []models.PeerMultiples `json:"peers,omitempty"`
}

// HandleAnalyze runs the pipeline and returns the full report as JSON.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !cors(w, r) {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	rep, err := h.orch.Analyze(r.Context(), strings.ToUpper(req.Ticker), req.Peers)
	if err != nil {
		// An unresolvable company halts this analysis only; the caller gets
		// a clean 422 rather than a server error.
		if errors.Is(err, derive.ErrUnresolvableCompany) {
			http.Error(w, "company financials unusable: revenue not found in any period", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}

// HandleReport runs the pipeline and returns the Markdown analyst report,
// consumed by the PDF export layer.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !cors(w, r) {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	rep, err := h.orch.Analyze(r.Context(), strings.ToUpper(req.Ticker), req.Peers)
	if err != nil {
		if errors.Is(err, derive.ErrUnresolvableCompany) {
			http.Error(w, "company financials unusable: revenue not found in any period", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	md := report.BuildMarkdown(rep)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

// cors applies the permissive headers the dashboard dev setup needs and
// short-circuits preflight requests. Returns false when handled.
func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return false
	}
	return true
}
