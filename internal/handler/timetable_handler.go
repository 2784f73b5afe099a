package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/models"
	"github.com/timetable-ace/scheduler-api/internal/service"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
	"github.com/timetable-ace/scheduler-api/pkg/response"
)

// snapshotReader serves cached committed timetables. Nil disables the cache
// fast path.
type snapshotReader interface {
	GetCommitted(ctx context.Context) (models.GenerationResult, error)
}

// TimetableHandler wires HTTP endpoints to the generation and read services.
type TimetableHandler struct {
	generator *service.GeneratorService
	override  *service.OverrideService
	catalog   *service.CatalogService
	exports   *service.ExportService
	cache     snapshotReader
	audit     *service.AuditService
	metrics   *service.MetricsService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(
	generator *service.GeneratorService,
	override *service.OverrideService,
	catalog *service.CatalogService,
	exports *service.ExportService,
	cache snapshotReader,
	audit *service.AuditService,
	metrics *service.MetricsService,
) *TimetableHandler {
	return &TimetableHandler{
		generator: generator,
		override:  override,
		catalog:   catalog,
		exports:   exports,
		cache:     cache,
		audit:     audit,
		metrics:   metrics,
	}
}

// Generate godoc
// @Summary Generate timetable
// @Description Generate a schedule for the requested days and publish it as the committed timetable
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	h.fillFromCatalog(&req)

	res, err := h.generator.Generate(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.override.Publish(c.Request.Context(), models.GenerationResult{
		Timetable: res.Timetable,
		Conflicts: res.Conflicts,
		Report:    res.Report,
	})

	impacted := 0
	for _, entry := range res.Timetable {
		if entry.IsConstraintImpact {
			impacted++
		}
	}
	h.metrics.ObserveGeneration(impacted, len(res.Conflicts))

	response.JSON(c, http.StatusOK, res, nil)
}

// GetCommitted godoc
// @Summary Committed timetable
// @Description Return the committed timetable, served from cache when possible
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) GetCommitted(c *gin.Context) {
	if h.cache != nil {
		if result, err := h.cache.GetCommitted(c.Request.Context()); err == nil {
			response.JSON(c, http.StatusOK, result, nil)
			return
		}
	}

	result, err := h.override.Committed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// StudentTimetable godoc
// @Summary Student timetable
// @Description Return the committed timetable filtered to one student's courses
// @Tags Timetable
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/students/{id} [get]
func (h *TimetableHandler) StudentTimetable(c *gin.Context) {
	result, err := h.override.Committed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filtered, err := h.catalog.StudentTimetable(c.Param("id"), result.Timetable)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, filtered, nil)
}

// MarkAttendance godoc
// @Summary Mark attendance
// @Description Record attendance against one committed timetable entry
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.AttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/attendance [post]
func (h *TimetableHandler) MarkAttendance(c *gin.Context) {
	var req dto.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	result, err := h.override.Committed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	var target *models.TimetableEntry
	for i := range result.Timetable {
		if result.Timetable[i].Day == req.Day && result.Timetable[i].Time == req.Time {
			target = &result.Timetable[i]
			break
		}
	}
	if target == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no timetable entry at that slot"))
		return
	}

	user, role := identityFromContext(c)
	record := h.audit.Record(user, role, models.AuditActionAttendanceMarked,
		fmt.Sprintf("Marked attendance for %s at %s %s.", target.Course, target.Day, target.Time))

	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Export timetable
// @Description Download the committed timetable as PDF or CSV
// @Tags Timetable
// @Produce application/pdf
// @Param format query string true "Export format" Enums(pdf, csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	result, err := h.override.Committed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.exports.Render(c.DefaultQuery("format", "pdf"), result.Timetable)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// SuggestFaculty godoc
// @Summary Suggest substitute faculty
// @Description Rank available instructors for a course slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.SuggestFacultyRequest true "Suggestion payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/suggest-faculty [post]
func (h *TimetableHandler) SuggestFaculty(c *gin.Context) {
	var req dto.SuggestFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}

	dataset := h.catalog.Snapshot()
	var timetable []models.TimetableEntry
	if result, err := h.override.Committed(c.Request.Context()); err == nil {
		timetable = result.Timetable
	}

	res, err := h.generator.SuggestFaculty(c.Request.Context(), &req, dataset.Faculty, dataset.Courses, timetable)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// fillFromCatalog backfills omitted request collections from the session
// catalog so clients can import once and generate many times.
func (h *TimetableHandler) fillFromCatalog(req *dto.GenerateTimetableRequest) {
	dataset := h.catalog.Snapshot()
	if len(req.Students) == 0 {
		req.Students = dataset.Students
	}
	if len(req.Faculty) == 0 {
		req.Faculty = dataset.Faculty
	}
	if len(req.Courses) == 0 {
		req.Courses = dataset.Courses
	}
	if len(req.Rooms) == 0 {
		req.Rooms = dataset.Rooms
	}
	if req.Constraints.IsZero() {
		req.Constraints = h.catalog.Constraints()
	}
}
