package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/halvard/ansuz/internal/apperr"
	"github.com/halvard/ansuz/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func noteID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// ListNotes handles GET /api/notes with an optional tag filter.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	notes := h.svc.ListNotes(r.Context(), tag)
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" && req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title or content is required"))
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.Title, req.Content, req.Tags, models.NoteType(req.Type))
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			writeJSON(w, http.StatusConflict, errorBody("conflict"))
			return
		}
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("persistence failed"))
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}. The response carries the note
// state after the debounced persistence sequence settled.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.UpdateNote(r.Context(), id, req.Title, req.Content, req.Tags, models.NoteType(req.Type))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("conflict"))
		default:
			slog.Error("update note failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("persistence failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete note failed", slog.String("id", id.String()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("persistence failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, similar := h.svc.Search(r.Context(), q)
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, SimilarTerms: similar})
}

// Tags handles GET /api/tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TagListResponse{Tags: h.svc.Tags(r.Context())})
}

// RelatedTags handles GET /api/tags/{tag}/related.
func (h *Handler) RelatedTags(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	writeJSON(w, http.StatusOK, TagListResponse{Tags: h.svc.RelatedTags(r.Context(), tag)})
}

// NotesByTag handles GET /api/tags/{tag}/notes.
func (h *Handler) NotesByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	notes := h.svc.ListNotes(r.Context(), tag)
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links := h.svc.Graph(r.Context())
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// Sync handles POST /api/sync: pull-refresh the collection from the
// remote store.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Sync(r.Context()); err != nil {
		slog.Error("sync failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("sync failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
