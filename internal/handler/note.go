package handler

import (
	"log/slog"
	"net/http"

	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/httputil"
)

// NoteHandler handles note HTTP requests
type NoteHandler struct {
	noteService services.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService services.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// ListNotes lists the caller's tenant notes, newest first
// GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.noteService.ListNotes(r.Context(), httputil.GetIdentity(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// CreateNote creates a note in the caller's tenant
// POST /api/notes
// Returns 201 if created, 403 with quota details when the plan limit is reached
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req services.NoteInput
	if !parseBody(w, r, &req) {
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), httputil.GetIdentity(r), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves a note
// GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteService.GetNote(r.Context(), httputil.GetIdentity(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// UpdateNote replaces a note's title and content
// PUT /api/notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req services.NoteInput
	if !parseBody(w, r, &req) {
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), httputil.GetIdentity(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// DeleteNote deletes a note
// DELETE /api/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.noteService.DeleteNote(r.Context(), httputil.GetIdentity(r), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
}
