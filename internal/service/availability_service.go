package service

import (
	"github.com/timetable-ace/scheduler-api/internal/models"
)

// AvailabilityService computes the filtered pools of assignable faculty and
// rooms for one (day, slot) cell. Pure functions over copies; no side effects.
type AvailabilityService struct{}

// NewAvailabilityService constructs the resolver.
func NewAvailabilityService() *AvailabilityService {
	return &AvailabilityService{}
}

// Resolve returns the eligible faculty and room pools for the given day and
// slot. Empty pools are a valid outcome the caller must handle; the engine
// favours always producing a schedule over failing generation.
func (s *AvailabilityService) Resolve(
	faculty []models.Faculty,
	rooms []models.Room,
	scenario models.Scenario,
	constraints models.Constraints,
	day, slot string,
) ([]models.Faculty, []models.Room) {
	eligibleFaculty := make([]models.Faculty, 0, len(faculty))
	for _, f := range faculty {
		if scenario.FacultyIsOnLeave(f.ID) {
			continue
		}
		if !facultyWindowAllows(constraints.Faculty, f, day, slot) {
			continue
		}
		eligibleFaculty = append(eligibleFaculty, f)
	}

	eligibleRooms := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if scenario.RoomIsUnavailable(r.ID) {
			continue
		}
		if constraints.Room.MinCapacity > 0 && r.Capacity < constraints.Room.MinCapacity {
			continue
		}
		if !windowAllows(constraints.Room.Availability, day, slot) {
			continue
		}
		eligibleRooms = append(eligibleRooms, r)
	}

	return eligibleFaculty, eligibleRooms
}

// ApplyScenario returns faculty copies with the workload forecast applied as
// a replacement. The stored records are never touched.
func (s *AvailabilityService) ApplyScenario(faculty []models.Faculty, scenario models.Scenario) []models.Faculty {
	out := make([]models.Faculty, len(faculty))
	copy(out, faculty)
	if scenario.FacultyWorkload.FacultyID == "" {
		return out
	}
	for i := range out {
		if out[i].ID == scenario.FacultyWorkload.FacultyID {
			out[i].Workload = scenario.FacultyWorkload.NewWorkload
		}
	}
	return out
}

// facultyWindowAllows applies the weekly availability window. When a specific
// faculty member is selected in the constraint set, the window binds only
// that member; otherwise it binds everyone.
func facultyWindowAllows(fc models.FacultyConstraints, f models.Faculty, day, slot string) bool {
	if len(fc.Availability) == 0 {
		return true
	}
	if fc.SelectedFaculty != "" && fc.SelectedFaculty != f.ID {
		return true
	}
	window, ok := fc.Availability[day]
	if !ok {
		return true
	}
	return window.Contains(slot)
}

func windowAllows(availability map[string]models.AvailabilityWindow, day, slot string) bool {
	if len(availability) == 0 {
		return true
	}
	window, ok := availability[day]
	if !ok {
		return true
	}
	return window.Contains(slot)
}
