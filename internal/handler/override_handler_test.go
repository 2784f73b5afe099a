package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/middleware"
	"github.com/timetable-ace/scheduler-api/internal/models"
	"github.com/timetable-ace/scheduler-api/internal/service"
	"github.com/timetable-ace/scheduler-api/pkg/response"
)

func newOverrideHandlerFixture(t *testing.T) (*OverrideHandler, *service.OverrideService) {
	t.Helper()
	validate := validator.New()
	audit := service.NewAuditService(nil, 100, 1, 1, zap.NewNop())
	catalog := service.NewCatalogService(validate, audit, zap.NewNop())
	override := service.NewOverrideService(service.NewConflictService(), catalog, audit, nil,
		validate, time.Minute, zap.NewNop())
	return NewOverrideHandler(override, service.NewMetricsService()), override
}

func adminContext(t *testing.T, w *httptest.ResponseRecorder) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Name: "Admin", Role: models.RoleAdmin})
	return c
}

func TestOverrideHandlerBeginWithoutCommitted(t *testing.T) {
	handler, _ := newOverrideHandlerFixture(t)

	w := httptest.NewRecorder()
	c := adminContext(t, w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/edit-sessions", nil)
	c.Request = req

	handler.Begin(c)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestOverrideHandlerEditAndCommitFlow(t *testing.T) {
	handler, override := newOverrideHandlerFixture(t)
	override.Publish(context.Background(), models.GenerationResult{
		Timetable: []models.TimetableEntry{
			{ID: "Monday-09:00 - 10:00-ALG", Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", CourseCode: "ALG", Faculty: "Dr. A", Room: "R101"},
		},
	})

	w := httptest.NewRecorder()
	c := adminContext(t, w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/timetable/edit-sessions", nil)
	handler.Begin(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var beginEnvelope struct {
		Data dto.BeginOverrideResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &beginEnvelope))
	sessionID := beginEnvelope.Data.SessionID
	require.NotEmpty(t, sessionID)

	body, _ := json.Marshal(dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "faculty", Value: "Dr. B",
	})
	w = httptest.NewRecorder()
	c = adminContext(t, w)
	c.Request, _ = http.NewRequest(http.MethodPatch, "/timetable/edit-sessions/"+sessionID+"/entries", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: sessionID}}
	handler.ApplyEdit(c)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c = adminContext(t, w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/timetable/edit-sessions/"+sessionID+"/commit", nil)
	c.Params = gin.Params{{Key: "id", Value: sessionID}}
	handler.Commit(c)
	require.Equal(t, http.StatusOK, w.Code)

	var commitEnvelope struct {
		Data dto.CommitOverrideResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &commitEnvelope))
	require.Len(t, commitEnvelope.Data.AuditLogs, 1)
	assert.Contains(t, commitEnvelope.Data.AuditLogs[0].Details, "from Dr. A to Dr. B")
	assert.Equal(t, "Dr. B", commitEnvelope.Data.Timetable[0].Faculty)
}

func TestOverrideHandlerApplyEditInvalidField(t *testing.T) {
	handler, override := newOverrideHandlerFixture(t)
	override.Publish(context.Background(), models.GenerationResult{
		Timetable: []models.TimetableEntry{
			{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		},
	})

	begin, err := override.Begin(context.Background())
	require.NoError(t, err)

	body, _ := json.Marshal(dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "building", Value: "Annex",
	})
	w := httptest.NewRecorder()
	c := adminContext(t, w)
	c.Request, _ = http.NewRequest(http.MethodPatch, "/timetable/edit-sessions/x/entries", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: begin.SessionID}}
	handler.ApplyEdit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}
