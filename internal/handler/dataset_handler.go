package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/service"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
	"github.com/timetable-ace/scheduler-api/pkg/response"
)

// DatasetHandler wires HTTP endpoints to the session catalog.
type DatasetHandler struct {
	service *service.CatalogService
}

// NewDatasetHandler creates a new handler.
func NewDatasetHandler(svc *service.CatalogService) *DatasetHandler {
	return &DatasetHandler{service: svc}
}

// Import godoc
// @Summary Import dataset
// @Description Load students, faculty, courses, and rooms into the session catalog
// @Tags Dataset
// @Accept json
// @Produce json
// @Param payload body dto.DatasetImportRequest true "Dataset payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dataset/import [post]
func (h *DatasetHandler) Import(c *gin.Context) {
	var req dto.DatasetImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dataset payload"))
		return
	}

	user, role := identityFromContext(c)
	res, err := h.service.Import(c.Request.Context(), &req, user, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Get godoc
// @Summary Current dataset
// @Description Return a copy of the session catalog
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dataset [get]
func (h *DatasetHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Snapshot(), nil)
}

// GetConstraints godoc
// @Summary Current constraints
// @Description Return the session constraint configuration
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dataset/constraints [get]
func (h *DatasetHandler) GetConstraints(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Constraints(), nil)
}

// UpdateConstraints godoc
// @Summary Update constraints
// @Description Replace the session constraint configuration
// @Tags Dataset
// @Accept json
// @Produce json
// @Param payload body dto.ConstraintsUpdateRequest true "Constraints payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dataset/constraints [put]
func (h *DatasetHandler) UpdateConstraints(c *gin.Context) {
	var req dto.ConstraintsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid constraints payload"))
		return
	}

	user, role := identityFromContext(c)
	if err := h.service.UpdateConstraints(c.Request.Context(), &req, user, role); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req.Constraints, nil)
}
