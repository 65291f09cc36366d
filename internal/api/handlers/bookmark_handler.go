package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/core/ingest"
	"github.com/linkstash-app/linkstash/internal/services"
)

type BookmarkHandler struct {
	bookmarks *services.BookmarkService
	search    *services.SearchService
	log       *zap.Logger
}

func NewBookmarkHandler(bookmarks *services.BookmarkService, search *services.SearchService, log *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks, search: search, log: log}
}

type saveRequest struct {
	URL      string `json:"url"`
	MediaURL string `json:"media_url"`
}

// Save runs the full ingestion pipeline for one URL and persists the result.
func (h *BookmarkHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "invalid body", 400)
		return
	}

	bookmark, err := h.bookmarks.Save(r.Context(), userID, req.URL, req.MediaURL)
	if err != nil {
		h.log.Error("save failed", zap.String("url", req.URL), zap.Error(err))
		switch {
		case errors.Is(err, ingest.ErrFetch):
			http.Error(w, "could not fetch page", http.StatusBadGateway)
		case errors.Is(err, ingest.ErrEmbedding):
			http.Error(w, "embedding service unavailable", http.StatusBadGateway)
		default:
			http.Error(w, fmt.Sprintf("save failed: %v", err), 500)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bookmark)
}

func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	bookmarks, err := h.bookmarks.ListForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookmarks)
}

func (h *BookmarkHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	bookmark, err := h.bookmarks.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if bookmark == nil {
		http.Error(w, "bookmark not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookmark)
}

type updateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Summary     *string   `json:"summary"`
	Tags        *[]string `json:"tags"`
	SharedWith  *[]string `json:"shared_with"`
}

// Update applies partial user edits. Only explicitly whitelisted fields ever
// reach the store.
func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Summary != nil {
		fields["summary"] = *req.Summary
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
	}
	if req.SharedWith != nil {
		fields["shared_with"] = *req.SharedWith
	}
	if len(fields) == 0 {
		http.Error(w, "no editable fields in body", 400)
		return
	}

	if err := h.bookmarks.Update(r.Context(), userID, chi.URLParam(r, "id"), fields); err != nil {
		http.Error(w, "bookmark not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.bookmarks.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search answers GET /api/bookmarks/search?q=...&limit=...
func (h *BookmarkHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing q parameter", 400)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	results, err := h.search.Search(r.Context(), userID, query, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("search failed: %v", err), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
