package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/timetable-ace/scheduler-api/internal/models"
)

// AuditLogRepository persists the append-only audit trail in Postgres.
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository creates the repository.
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Insert appends one audit record. Records are never updated or deleted.
func (r *AuditLogRepository) Insert(ctx context.Context, log models.AuditLog) error {
	const query = `INSERT INTO audit_logs (id, created_at, user_name, role, action, details)
		VALUES (:id, :created_at, :user_name, :role, :action, :details)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("insert audit log %s: %w", log.ID, err)
	}
	return nil
}

// List returns audit records newest first with optional action and role
// filters.
func (r *AuditLogRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	where := []string{}
	args := []interface{}{}
	if filter.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}
	if filter.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int
	countQuery := "SELECT COUNT(*) FROM audit_logs" + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	listQuery := fmt.Sprintf(
		"SELECT id, created_at, user_name, role, action, details FROM audit_logs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		whereClause, len(args)+1, len(args)+2)
	args = append(args, size, offset)

	logs := []models.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, total, nil
}
