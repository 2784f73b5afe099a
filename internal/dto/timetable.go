package dto

import "github.com/timetable-ace/scheduler-api/internal/models"

// GenerateTimetableRequest instructs the engine to build a schedule for the
// requested day subset. Entity collections are read-only snapshots; the
// scenario and constraints are session state injected per call.
type GenerateTimetableRequest struct {
	Days              []string                `json:"days" validate:"required,min=1"`
	Programs          []string                `json:"programs"`
	Students          []models.Student        `json:"students"`
	Faculty           []models.Faculty        `json:"faculty"`
	Courses           []models.Course         `json:"courses"`
	Rooms             []models.Room           `json:"rooms"`
	Constraints       models.Constraints      `json:"constraints"`
	Scenario          models.Scenario         `json:"scenario"`
	ExistingTimetable []models.TimetableEntry `json:"existingTimetable,omitempty"`
}

// GenerateTimetableResponse returns the populated grid, the conflicts found
// in it, and a free-text utilization report.
type GenerateTimetableResponse struct {
	Timetable []models.TimetableEntry `json:"timetable"`
	Conflicts []models.Conflict       `json:"conflicts"`
	Report    string                  `json:"report"`
}

// SuggestFacultyRequest asks for a ranked substitute for a course slot.
type SuggestFacultyRequest struct {
	CourseCode string `json:"courseCode" validate:"required"`
	Day        string `json:"day"`
	Time       string `json:"time"`
}

// SuggestFacultyResponse names the best available instructor and why.
type SuggestFacultyResponse struct {
	FacultyName   string `json:"facultyName"`
	Justification string `json:"justification"`
}

// AttendanceRequest marks attendance against one committed entry.
type AttendanceRequest struct {
	Day  string `json:"day" validate:"required"`
	Time string `json:"time" validate:"required"`
}
