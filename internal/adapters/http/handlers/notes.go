package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studynotes/studynotes/internal/adapters/http/dto"
	"github.com/studynotes/studynotes/internal/app"
)

// NoteHandler handles note-related HTTP endpoints.
type NoteHandler struct {
	service *app.NoteService
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(service *app.NoteService) *NoteHandler {
	return &NoteHandler{
		service: service,
	}
}

// ListNotes handles GET /api/notes?[subjectId]&[search]
// Returns notes ordered by most recently updated. A search term limits
// the listing to matching notes and takes precedence over the subject
// filter when both are present.
//
// @Summary List, filter, or search notes
// @Tags notes
// @Produce json
// @Param subjectId query int false "Restrict to one subject"
// @Param search query string false "Case-insensitive term matched against title, content, and tags"
// @Success 200 {array} dto.NoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/notes [get]
func (h *NoteHandler) ListNotes(c *gin.Context) {
	var query dto.ListNotesQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, err)
		return
	}

	notes, err := h.service.ListNotes(c.Request.Context(), app.NoteListOptions{
		Query:     query.Search,
		SubjectID: query.SubjectID,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteResponses(notes))
}

// GetNote handles GET /api/notes/:id
//
// @Summary Get a note
// @Tags notes
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} dto.NoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/notes/{id} [get]
func (h *NoteHandler) GetNote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	note, err := h.service.GetNote(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteResponse(note))
}

// CreateNote handles POST /api/notes
// The subject reference is accepted as-is; notes may point at subjects
// that no longer exist.
//
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Success 201 {object} dto.NoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	note, err := h.service.CreateNote(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToNoteResponse(note))
}

// UpdateNote handles PUT /api/notes/:id
// Applies a partial update and refreshes updatedAt even when no field
// changes.
//
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} dto.NoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/notes/{id} [put]
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	note, err := h.service.UpdateNote(c.Request.Context(), id, req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteResponse(note))
}

// DeleteNote handles DELETE /api/notes/:id
//
// @Summary Delete a note
// @Tags notes
// @Param id path int true "Note ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteNote(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterNoteRoutes registers note routes on the given router group.
func (h *NoteHandler) RegisterNoteRoutes(rg *gin.RouterGroup) {
	notes := rg.Group("/notes")
	notes.GET("", h.ListNotes)
	notes.GET("/:id", h.GetNote)
	notes.POST("", h.CreateNote)
	notes.PUT("/:id", h.UpdateNote)
	notes.DELETE("/:id", h.DeleteNote)
}
