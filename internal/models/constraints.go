package models

import "time"

// AvailabilityWindow describes one weekday's usable window for a faculty
// member or room. Inactive windows exclude the whole day.
type AvailabilityWindow struct {
	Active bool   `json:"active"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// Contains reports whether the slot's start hour falls inside the window.
// Empty bounds leave that side open.
func (w AvailabilityWindow) Contains(slot string) bool {
	if !w.Active {
		return false
	}
	hour := SlotStartHour(slot)
	if hour < 0 {
		return false
	}
	if w.Start != "" {
		if start := ParseHour(w.Start); start >= 0 && hour < start {
			return false
		}
	}
	if w.End != "" {
		if end := ParseHour(w.End); end >= 0 && hour >= end {
			return false
		}
	}
	return true
}

// FacultyConstraints configures limits for selected faculty.
type FacultyConstraints struct {
	SelectedFaculty     string                        `json:"selectedFaculty,omitempty"`
	MaxConsecutiveHours int                           `json:"maxConsecutiveHours,omitempty"`
	Availability        map[string]AvailabilityWindow `json:"availability,omitempty"`
	Expertise           []string                      `json:"expertise,omitempty"`
}

// RoomConstraints configures room eligibility.
type RoomConstraints struct {
	MinCapacity  int                           `json:"minCapacity,omitempty"`
	Equipment    map[string]bool               `json:"equipment,omitempty"`
	Availability map[string]AvailabilityWindow `json:"availability,omitempty"`
}

// CourseConstraints configures per-course requirements.
type CourseConstraints struct {
	RequiredRoomType RoomType `json:"requiredRoomType,omitempty"`
}

// TeachingPracticeBlock reserves a recurring weekday window for a program.
type TeachingPracticeBlock struct {
	Program   string `json:"program"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Defined reports whether the block is configured at all.
func (b TeachingPracticeBlock) Defined() bool {
	return b.Program != "" && b.Day != ""
}

// Blocks reports whether the block covers the given day and slot. The slot's
// start hour must fall within [StartTime, EndTime).
func (b TeachingPracticeBlock) Blocks(day, slot string) bool {
	if !b.Defined() || b.Day != day {
		return false
	}
	slotHour := SlotStartHour(slot)
	startHour := ParseHour(b.StartTime)
	endHour := ParseHour(b.EndTime)
	if slotHour < 0 || startHour < 0 || endHour < 0 {
		return false
	}
	return slotHour >= startHour && slotHour < endHour
}

// FieldWorkBlock reserves a date range for an off-campus activity.
type FieldWorkBlock struct {
	ActivityType string     `json:"activityType"`
	Program      string     `json:"program"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

// ProgramSpecificConstraints groups recurring and date-ranged program blocks.
type ProgramSpecificConstraints struct {
	TeachingPractice TeachingPracticeBlock `json:"teachingPractice"`
	FieldWork        FieldWorkBlock        `json:"fieldWork"`
}

// Constraints is the full constraint configuration injected per generation
// call. It has no identity of its own.
type Constraints struct {
	Faculty         FacultyConstraints         `json:"faculty"`
	Room            RoomConstraints            `json:"room"`
	Course          CourseConstraints          `json:"course"`
	ProgramSpecific ProgramSpecificConstraints `json:"programSpecific"`
}

// IsZero reports whether no constraint has been configured.
func (c Constraints) IsZero() bool {
	return c.Faculty.SelectedFaculty == "" &&
		c.Faculty.MaxConsecutiveHours == 0 &&
		len(c.Faculty.Availability) == 0 &&
		len(c.Faculty.Expertise) == 0 &&
		c.Room.MinCapacity == 0 &&
		len(c.Room.Equipment) == 0 &&
		len(c.Room.Availability) == 0 &&
		c.Course.RequiredRoomType == "" &&
		!c.ProgramSpecific.TeachingPractice.Defined() &&
		c.ProgramSpecific.FieldWork.ActivityType == ""
}

// PopularityForecast simulates a demand increase for a course.
type PopularityForecast struct {
	CourseID string  `json:"courseId"`
	Increase float64 `json:"increase"`
}

// WorkloadForecast replaces a faculty member's workload during simulation.
type WorkloadForecast struct {
	FacultyID   string `json:"facultyId"`
	NewWorkload int    `json:"newWorkload"`
}

// Scenario is an ephemeral simulation overlay applied as a read-time filter.
// It never mutates the underlying records.
type Scenario struct {
	FacultyOnLeave    []string           `json:"facultyOnLeave"`
	UnavailableRooms  []string           `json:"unavailableRooms"`
	StudentPopularity PopularityForecast `json:"studentPopularity"`
	FacultyWorkload   WorkloadForecast   `json:"facultyWorkload"`
}

// FacultyIsOnLeave reports whether the faculty id is in the leave set.
func (s Scenario) FacultyIsOnLeave(id string) bool {
	for _, f := range s.FacultyOnLeave {
		if f == id {
			return true
		}
	}
	return false
}

// RoomIsUnavailable reports whether the room id is in the unavailable set.
func (s Scenario) RoomIsUnavailable(id string) bool {
	for _, r := range s.UnavailableRooms {
		if r == id {
			return true
		}
	}
	return false
}
