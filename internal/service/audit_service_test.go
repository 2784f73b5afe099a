package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/models"
)

func TestRecordAssignsIdentityAndTimestamp(t *testing.T) {
	svc := NewAuditService(nil, 10, 1, 1, zap.NewNop())

	record := svc.Record("Admin", models.RoleAdmin, models.AuditActionUserLogin, "Admin logged in.")
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Timestamp.IsZero())
	assert.Equal(t, models.AuditActionUserLogin, record.Action)
}

func TestListReturnsNewestFirst(t *testing.T) {
	svc := NewAuditService(nil, 10, 1, 1, zap.NewNop())

	svc.Record("Admin", models.RoleAdmin, models.AuditActionDataImport, "first")
	svc.Record("Admin", models.RoleAdmin, models.AuditActionDataImport, "second")

	logs, total, err := svc.List(context.Background(), models.AuditLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "second", logs[0].Details)
	assert.Equal(t, "first", logs[1].Details)
}

func TestListFiltersByActionAndRole(t *testing.T) {
	svc := NewAuditService(nil, 10, 1, 1, zap.NewNop())

	svc.Record("Admin", models.RoleAdmin, models.AuditActionDataImport, "import")
	svc.Record("Prof", models.RoleFaculty, models.AuditActionAttendanceMarked, "attendance")

	logs, total, err := svc.List(context.Background(), models.AuditLogFilter{Action: models.AuditActionAttendanceMarked})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "Prof", logs[0].User)

	_, total, err = svc.List(context.Background(), models.AuditLogFilter{Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTrailIsBounded(t *testing.T) {
	svc := NewAuditService(nil, 3, 1, 1, zap.NewNop())

	for i := 0; i < 5; i++ {
		svc.Record("Admin", models.RoleAdmin, models.AuditActionDataImport, fmt.Sprintf("entry %d", i))
	}

	logs, total, err := svc.List(context.Background(), models.AuditLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "entry 4", logs[0].Details)
	assert.Equal(t, "entry 2", logs[2].Details)
}

func TestListPaginates(t *testing.T) {
	svc := NewAuditService(nil, 10, 1, 1, zap.NewNop())

	for i := 0; i < 5; i++ {
		svc.Record("Admin", models.RoleAdmin, models.AuditActionDataImport, fmt.Sprintf("entry %d", i))
	}

	logs, total, err := svc.List(context.Background(), models.AuditLogFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, logs, 2)
	assert.Equal(t, "entry 2", logs[0].Details)
}
