package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionTimetableUpdate  = "TIMETABLE_UPDATE"
	AuditActionConstraintChange = "CONSTRAINT_CHANGE"
	AuditActionDataImport       = "DATA_IMPORT"
	AuditActionUserLogin        = "USER_LOGIN"
	AuditActionAttendanceMarked = "ATTENDANCE_MARKED"
)

// Role constants for audit records and JWT claims.
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// AuditLog represents one append-only audit trail record. Entries are never
// mutated or deleted once created.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
	User      string    `db:"user_name" json:"user"`
	Role      string    `db:"role" json:"role"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
}

// AuditLogFilter describes query params for listing audit logs.
type AuditLogFilter struct {
	Action   string
	Role     string
	Page     int
	PageSize int
}
