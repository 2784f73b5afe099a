package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/service"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
	"github.com/timetable-ace/scheduler-api/pkg/response"
)

// OverrideHandler wires HTTP endpoints to the manual edit workflow.
type OverrideHandler struct {
	service *service.OverrideService
	metrics *service.MetricsService
}

// NewOverrideHandler creates a new handler.
func NewOverrideHandler(svc *service.OverrideService, metrics *service.MetricsService) *OverrideHandler {
	return &OverrideHandler{service: svc, metrics: metrics}
}

// Begin godoc
// @Summary Open edit session
// @Description Open a manual edit session over the committed timetable
// @Tags Override
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/edit-sessions [post]
func (h *OverrideHandler) Begin(c *gin.Context) {
	res, err := h.service.Begin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.IncEditSession()
	response.Created(c, res)
}

// ApplyEdit godoc
// @Summary Apply edit
// @Description Overwrite one field of a working-copy entry
// @Tags Override
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ApplyEditRequest true "Edit payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /timetable/edit-sessions/{id}/entries [patch]
func (h *OverrideHandler) ApplyEdit(c *gin.Context) {
	var req dto.ApplyEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}

	res, err := h.service.ApplyEdit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Commit godoc
// @Summary Commit edit session
// @Description Atomically publish the working copy and audit the diff
// @Tags Override
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /timetable/edit-sessions/{id}/commit [post]
func (h *OverrideHandler) Commit(c *gin.Context) {
	user, role := identityFromContext(c)
	res, err := h.service.Commit(c.Request.Context(), c.Param("id"), user, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.IncCommit()
	response.JSON(c, http.StatusOK, res, nil)
}

// Cancel godoc
// @Summary Cancel edit session
// @Description Discard a working copy without touching committed state
// @Tags Override
// @Produce json
// @Param id path string true "Session ID"
// @Success 204 {object} response.Envelope
// @Router /timetable/edit-sessions/{id} [delete]
func (h *OverrideHandler) Cancel(c *gin.Context) {
	h.service.Cancel(c.Request.Context(), c.Param("id"))
	response.NoContent(c)
}
