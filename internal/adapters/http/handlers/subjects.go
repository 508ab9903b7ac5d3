package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studynotes/studynotes/internal/adapters/http/dto"
	"github.com/studynotes/studynotes/internal/app"
)

// SubjectHandler handles subject-related HTTP endpoints.
type SubjectHandler struct {
	service *app.SubjectService
}

// NewSubjectHandler creates a new subject handler.
func NewSubjectHandler(service *app.SubjectService) *SubjectHandler {
	return &SubjectHandler{
		service: service,
	}
}

// ListSubjects handles GET /api/subjects
// Returns all subjects ordered by name, each with its note count.
//
// @Summary List subjects
// @Description Lists all subjects with per-subject note counts
// @Tags subjects
// @Produce json
// @Success 200 {array} dto.SubjectWithCountResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/subjects [get]
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubjectWithCountResponses(subjects))
}

// CreateSubject handles POST /api/subjects
// Creates a subject; icon and color default server-side when omitted.
//
// @Summary Create a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Success 201 {object} dto.SubjectResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/subjects [post]
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	subject, err := h.service.CreateSubject(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubjectResponse(subject))
}

// UpdateSubject handles PUT /api/subjects/:id
// Applies a partial update; absent fields keep their current values.
//
// @Summary Update a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.SubjectResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/subjects/{id} [put]
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	subject, err := h.service.UpdateSubject(c.Request.Context(), id, req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubjectResponse(subject))
}

// DeleteSubject handles DELETE /api/subjects/:id
// Deletes the subject and every note that references it.
//
// @Summary Delete a subject and its notes
// @Tags subjects
// @Param id path int true "Subject ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/subjects/{id} [delete]
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSubject(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterSubjectRoutes registers subject routes on the given router group.
func (h *SubjectHandler) RegisterSubjectRoutes(rg *gin.RouterGroup) {
	subjects := rg.Group("/subjects")
	subjects.GET("", h.ListSubjects)
	subjects.POST("", h.CreateSubject)
	subjects.PUT("/:id", h.UpdateSubject)
	subjects.DELETE("/:id", h.DeleteSubject)
}

// pathID parses the :id path parameter. On failure it writes a 400
// response and reports false.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"id must be a positive integer",
		).WithTraceID(dto.GetTraceID(c)))

		return 0, false
	}

	return id, true
}
