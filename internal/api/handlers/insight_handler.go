package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/linkstash-app/linkstash/internal/services"
)

type InsightHandler struct {
	insights *services.InsightService
}

func NewInsightHandler(insights *services.InsightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

func (h *InsightHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	clusters, err := h.insights.Clusters(r.Context(), userID)
	if err != nil {
		http.Error(w, fmt.Sprintf("cluster analysis failed: %v", err), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clusters)
}

func (h *InsightHandler) KnowledgeGaps(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	gaps, err := h.insights.KnowledgeGaps(r.Context(), userID)
	if err != nil {
		http.Error(w, fmt.Sprintf("gap analysis failed: %v", err), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(gaps)
}

func (h *InsightHandler) SuggestedReading(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	results, err := h.insights.SuggestedReading(r.Context(), userID)
	if err != nil {
		http.Error(w, fmt.Sprintf("suggested reading failed: %v", err), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
