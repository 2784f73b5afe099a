package dto

import "github.com/timetable-ace/scheduler-api/internal/models"

// BeginOverrideResponse opens an edit session over the committed timetable.
type BeginOverrideResponse struct {
	SessionID   string                  `json:"sessionId"`
	WorkingCopy []models.TimetableEntry `json:"workingCopy"`
}

// ApplyEditRequest targets one (day, time) entry and overwrites one field.
type ApplyEditRequest struct {
	Day   string `json:"day" validate:"required"`
	Time  string `json:"time" validate:"required"`
	Field string `json:"field" validate:"required,oneof=faculty room course"`
	Value string `json:"value" validate:"required"`
}

// ApplyEditResponse reports whether the target existed. A missing target is
// data, not an error, so editing sessions survive concurrent structural
// changes.
type ApplyEditResponse struct {
	Found       bool                    `json:"found"`
	WorkingCopy []models.TimetableEntry `json:"workingCopy"`
}

// CommitOverrideResponse returns the new committed state, the audit records
// emitted for the diff, and whatever conflicts remain.
type CommitOverrideResponse struct {
	Timetable []models.TimetableEntry `json:"timetable"`
	Conflicts []models.Conflict       `json:"conflicts"`
	AuditLogs []models.AuditLog       `json:"auditLogs"`
}
