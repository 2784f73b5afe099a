package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/models"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
)

type stubCatalog struct {
	dataset models.Dataset
}

func (s *stubCatalog) FindCourseByName(name string) (models.Course, bool) {
	for _, c := range s.dataset.Courses {
		if c.Name == name {
			return c, true
		}
	}
	return models.Course{}, false
}

func (s *stubCatalog) Snapshot() models.Dataset {
	return s.dataset.Clone()
}

func newTestOverride(t *testing.T) (*OverrideService, *AuditService) {
	t.Helper()
	audit := NewAuditService(nil, 100, 1, 1, zap.NewNop())
	catalog := &stubCatalog{dataset: models.Dataset{
		Faculty: []models.Faculty{
			{ID: "f1", Name: "Dr. A", Workload: 20},
			{ID: "f2", Name: "Dr. B", Workload: 20},
		},
		Courses: []models.Course{
			{ID: "c1", Name: "Algebra", Code: "ALG"},
			{ID: "c2", Name: "Botany", Code: "BOT"},
		},
	}}
	svc := NewOverrideService(NewConflictService(), catalog, audit, nil,
		validator.New(), time.Minute, zap.NewNop())
	return svc, audit
}

func committedFixture() models.GenerationResult {
	return models.GenerationResult{
		Timetable: []models.TimetableEntry{
			{ID: "Monday-09:00 - 10:00-ALG", Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", CourseCode: "ALG", Faculty: "Dr. A", Room: "R101"},
			{ID: "Monday-10:00 - 11:00-BOT", Day: "Monday", Time: "10:00 - 11:00", Course: "Botany", CourseCode: "BOT", Faculty: "Dr. B", Room: "Lab 1"},
		},
	}
}

func TestBeginWithoutCommittedTimetable(t *testing.T) {
	svc, _ := newTestOverride(t)

	_, err := svc.Begin(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestApplyEditUnknownSession(t *testing.T) {
	svc, _ := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	_, err := svc.ApplyEdit(context.Background(), "missing", &dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "faculty", Value: "Dr. B",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestApplyEditMissingTargetIsNotAnError(t *testing.T) {
	svc, _ := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	res, err := svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Friday", Time: "09:00 - 10:00", Field: "faculty", Value: "Dr. B",
	})
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestApplyEditDoesNotTouchCommittedState(t *testing.T) {
	svc, _ := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	res, err := svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "faculty", Value: "Dr. B",
	})
	require.NoError(t, err)
	assert.True(t, res.Found)

	committed, err := svc.Committed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dr. A", committed.Timetable[0].Faculty)
}

func TestCommitEmitsSingleAuditRecordForDiff(t *testing.T) {
	svc, audit := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	_, err = svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "faculty", Value: "Dr. B",
	})
	require.NoError(t, err)
	_, err = svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Monday", Time: "10:00 - 11:00", Field: "room", Value: "R202",
	})
	require.NoError(t, err)

	res, err := svc.Commit(context.Background(), begin.SessionID, "Admin", models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, res.AuditLogs, 1)

	record := res.AuditLogs[0]
	assert.Equal(t, models.AuditActionTimetableUpdate, record.Action)
	assert.Equal(t, "Admin", record.User)
	assert.Contains(t, record.Details, "Made 2 change(s):")
	assert.Contains(t, record.Details, "Changed Algebra at Monday 09:00 - 10:00 from Dr. A to Dr. B.")
	assert.Contains(t, record.Details, "Moved Botany at Monday 10:00 - 11:00 from Lab 1 to R202.")

	logs, total, err := audit.List(context.Background(), models.AuditLogFilter{Action: models.AuditActionTimetableUpdate})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, record.Details, logs[0].Details)

	committed, err := svc.Committed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dr. B", committed.Timetable[0].Faculty)
	assert.Equal(t, "R202", committed.Timetable[1].Room)
}

func TestCommitWithoutChangesEmitsNoAudit(t *testing.T) {
	svc, audit := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	res, err := svc.Commit(context.Background(), begin.SessionID, "Admin", models.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, res.AuditLogs)

	_, total, err := audit.List(context.Background(), models.AuditLogFilter{Action: models.AuditActionTimetableUpdate})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCommitConsumesSession(t *testing.T) {
	svc, _ := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), begin.SessionID, "Admin", models.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), begin.SessionID, "Admin", models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestCourseEditResolvesCode(t *testing.T) {
	svc, _ := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	res, err := svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "course", Value: "Botany",
	})
	require.NoError(t, err)
	assert.Equal(t, "BOT", res.WorkingCopy[0].CourseCode)

	res, err = svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "course", Value: "Astrology",
	})
	require.NoError(t, err)
	assert.Equal(t, "Astrology", res.WorkingCopy[0].Course)
	assert.Empty(t, res.WorkingCopy[0].CourseCode)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _ := newTestOverride(t)
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	svc.Cancel(context.Background(), begin.SessionID)
	svc.Cancel(context.Background(), begin.SessionID)

	_, err = svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "faculty", Value: "Dr. B",
	})
	require.Error(t, err)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	audit := NewAuditService(nil, 100, 1, 1, zap.NewNop())
	catalog := &stubCatalog{}
	svc := NewOverrideService(NewConflictService(), catalog, audit, nil,
		validator.New(), time.Millisecond, zap.NewNop())
	svc.Publish(context.Background(), committedFixture())

	begin, err := svc.Begin(context.Background())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.ApplyEdit(context.Background(), begin.SessionID, &dto.ApplyEditRequest{
		Day: "Monday", Time: "09:00 - 10:00", Field: "faculty", Value: "Dr. B",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}
