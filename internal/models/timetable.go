package models

import (
	"strconv"
	"strings"
)

// Weekdays is the canonical weekday ordering shared with every caller. The
// coverage guarantee depends on it being fixed.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// TimeSlots is the fixed ordered slot list, seven slots per day with one
// designated lunch break. Part of the external contract, not configurable.
var TimeSlots = []string{
	"09:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
	BreakSlot,
	"02:00 - 03:00",
	"03:00 - 04:00",
	"04:00 - 05:00",
}

// BreakSlot is the only slot allowed to be non-academic.
const BreakSlot = "12:00 - 01:00"

// Fixed labels used for non-academic and degraded entries.
const (
	BreakCourseName  = "Lunch Break"
	BreakCourseCode  = "LUNCH"
	BreakRoomName    = "Cafeteria"
	BlockCourseName  = "Teaching Practice"
	BlockCourseCode  = "TP"
	BlockFacultyName = "Field Supervisor"
	BlockRoomName    = "School/Institution"

	PlaceholderCourseName  = "Emergency Course"
	PlaceholderCourseCode  = "EMRG"
	PlaceholderFacultyName = "Emergency Faculty"
	PlaceholderRoomName    = "Emergency Room"

	DefaultFacultyName = "Assigned Faculty"
	DefaultRoomName    = "Classroom 101"
)

// Constraint impact labels recorded on degraded entries.
const (
	ConstraintFacultyOnLeave   = "Faculty on Leave"
	ConstraintRoomUnavailable  = "Room Unavailable"
	ConstraintTeachingPractice = "Teaching Practice"
)

// Conflict type labels produced by the detector.
const (
	ConflictFacultyDoubleBooking = "Faculty Double-Booking"
	ConflictRoomDoubleBooking    = "Room Double-Booking"
	ConflictWorkloadOverrun      = "Workload Overrun"
)

// TimetableEntry is one cell of the weekly grid. A valid schedule has at most
// one entry per (day, time, faculty) and per (day, time, room); violations are
// what the conflict detector reports, transient invalid states are tolerated
// during editing.
type TimetableEntry struct {
	ID                 string `json:"id"`
	Day                string `json:"day"`
	Time               string `json:"time"`
	Course             string `json:"course"`
	CourseCode         string `json:"courseCode"`
	Faculty            string `json:"faculty"`
	Room               string `json:"room"`
	ClassID            string `json:"classId,omitempty"`
	ClassName          string `json:"className,omitempty"`
	Program            string `json:"program,omitempty"`
	IsConstraintImpact bool   `json:"isConstraintImpact,omitempty"`
	ConstraintType     string `json:"constraintType,omitempty"`
	AffectedProgram    string `json:"affectedProgram,omitempty"`
}

// IsBreak reports whether the entry occupies the designated lunch slot.
func (e TimetableEntry) IsBreak() bool {
	return e.Time == BreakSlot
}

// Conflict is a derived record describing an irreconcilable overlap. Always
// recomputed on demand, never hand-edited.
type Conflict struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Involved    []string `json:"involved"`
}

// GenerationResult is the full outcome of a generation run or commit.
type GenerationResult struct {
	Timetable []TimetableEntry `json:"timetable"`
	Conflicts []Conflict       `json:"conflicts"`
	Report    string           `json:"report"`
}

// Clone deep-copies the result so committed state is never aliased.
func (r GenerationResult) Clone() GenerationResult {
	out := GenerationResult{
		Timetable: make([]TimetableEntry, len(r.Timetable)),
		Conflicts: make([]Conflict, len(r.Conflicts)),
		Report:    r.Report,
	}
	copy(out.Timetable, r.Timetable)
	for i, c := range r.Conflicts {
		c.Involved = append([]string(nil), c.Involved...)
		out.Conflicts[i] = c
	}
	return out
}

// WeekdayIndex returns the canonical position of the day name, or -1 for an
// unknown weekday.
func WeekdayIndex(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

// IsBreakSlot reports whether the slot label is the lunch break.
func IsBreakSlot(slot string) bool {
	return slot == BreakSlot
}

// SlotStartHour extracts the numeric start hour of a slot label such as
// "09:00 - 10:00". Returns -1 when the label is malformed.
func SlotStartHour(slot string) int {
	start, _, found := strings.Cut(slot, " - ")
	if !found {
		return -1
	}
	return ParseHour(start)
}

// ParseHour converts a clock value such as "09:00" into its hour component.
// Returns -1 when the value is malformed.
func ParseHour(clock string) int {
	hour, _, found := strings.Cut(strings.TrimSpace(clock), ":")
	if !found {
		return -1
	}
	value, err := strconv.Atoi(hour)
	if err != nil {
		return -1
	}
	return value
}

// AcademicSlotsPerDay is the number of teaching slots in one day.
func AcademicSlotsPerDay() int {
	return len(TimeSlots) - 1
}
