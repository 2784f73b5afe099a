package service

import (
	"fmt"
	"strings"

	"github.com/timetable-ace/scheduler-api/internal/models"
)

// underutilizationThreshold marks faculty assigned less than this share of
// their expected workload as under-used in the utilization report.
const underutilizationThreshold = 0.8

// ConflictService post-processes a timetable to surface irreconcilable
// overlaps. Conflicts are data, never errors; they are recomputed on demand
// and their emission order is stable for identical input.
type ConflictService struct{}

// NewConflictService constructs the detector.
func NewConflictService() *ConflictService {
	return &ConflictService{}
}

// Detect reports faculty and room double-bookings per (day, time) cell and
// workload overruns per faculty member. Ordering is day-major, faculty groups
// before room groups, followed by overruns in faculty input order.
func (s *ConflictService) Detect(timetable []models.TimetableEntry, faculty []models.Faculty) []models.Conflict {
	conflicts := make([]models.Conflict, 0)

	for _, day := range models.Weekdays {
		for _, slot := range models.TimeSlots {
			var cell []models.TimetableEntry
			for _, entry := range timetable {
				if entry.Day == day && entry.Time == slot {
					cell = append(cell, entry)
				}
			}
			if len(cell) < 2 {
				continue
			}
			conflicts = append(conflicts, doubleBookings(cell, day, slot)...)
		}
	}

	for _, f := range faculty {
		assigned := assignedHours(timetable, f.Name)
		if assigned > f.Workload {
			conflicts = append(conflicts, models.Conflict{
				Type: models.ConflictWorkloadOverrun,
				Description: fmt.Sprintf("%s is assigned %d hours against an expected workload of %d hours.",
					f.Name, assigned, f.Workload),
				Involved: []string{f.Name},
			})
		}
	}

	return conflicts
}

// FacultyUtilization summarises one instructor's assigned vs expected hours.
type FacultyUtilization struct {
	Name     string
	Assigned int
	Expected int
}

// Ratio returns assigned/expected, or 1 when no workload is expected.
func (u FacultyUtilization) Ratio() float64 {
	if u.Expected <= 0 {
		return 1
	}
	return float64(u.Assigned) / float64(u.Expected)
}

// Utilization computes per-faculty load for the report. Underutilization is
// an informational signal, kept out of the conflict list so that "must fix"
// and "under-used" never blur together.
func (s *ConflictService) Utilization(timetable []models.TimetableEntry, faculty []models.Faculty) []FacultyUtilization {
	out := make([]FacultyUtilization, 0, len(faculty))
	for _, f := range faculty {
		out = append(out, FacultyUtilization{
			Name:     f.Name,
			Assigned: assignedHours(timetable, f.Name),
			Expected: f.Workload,
		})
	}
	return out
}

// BuildReport renders the free-text utilization summary returned alongside a
// generated or committed timetable. It is not machine-parsed.
func (s *ConflictService) BuildReport(timetable []models.TimetableEntry, faculty []models.Faculty, conflicts []models.Conflict) string {
	academic := 0
	impacted := 0
	for _, entry := range timetable {
		if entry.IsBreak() {
			continue
		}
		academic++
		if entry.IsConstraintImpact {
			impacted++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scheduled %d academic sessions across %d entries.", academic, len(timetable))
	if impacted > 0 {
		fmt.Fprintf(&b, " %d sessions were placed under constraint impact.", impacted)
	}
	if len(conflicts) > 0 {
		fmt.Fprintf(&b, " %d conflicts require attention.", len(conflicts))
	} else {
		b.WriteString(" No conflicts detected.")
	}

	var underused []string
	for _, u := range s.Utilization(timetable, faculty) {
		if u.Expected > 0 && u.Ratio() < underutilizationThreshold {
			underused = append(underused, fmt.Sprintf("%s (%d/%d hours)", u.Name, u.Assigned, u.Expected))
		}
	}
	if len(underused) > 0 {
		fmt.Fprintf(&b, " Underutilized faculty: %s.", strings.Join(underused, ", "))
	}

	return b.String()
}

func doubleBookings(cell []models.TimetableEntry, day, slot string) []models.Conflict {
	var conflicts []models.Conflict

	byFaculty := groupBy(cell, func(e models.TimetableEntry) string { return e.Faculty })
	for _, group := range byFaculty {
		name := group[0].Faculty
		conflicts = append(conflicts, models.Conflict{
			Type: models.ConflictFacultyDoubleBooking,
			Description: fmt.Sprintf("%s is booked for %d classes at %s %s.",
				name, len(group), day, slot),
			Involved: involvedNames(name, group),
		})
	}

	byRoom := groupBy(cell, func(e models.TimetableEntry) string { return e.Room })
	for _, group := range byRoom {
		name := group[0].Room
		conflicts = append(conflicts, models.Conflict{
			Type: models.ConflictRoomDoubleBooking,
			Description: fmt.Sprintf("%s hosts %d classes at %s %s.",
				name, len(group), day, slot),
			Involved: involvedNames(name, group),
		})
	}

	return conflicts
}

// groupBy buckets entries by a non-empty key, preserving first-occurrence
// order, and keeps only buckets with two or more members.
func groupBy(cell []models.TimetableEntry, key func(models.TimetableEntry) string) [][]models.TimetableEntry {
	buckets := make(map[string][]models.TimetableEntry)
	var order []string
	for _, entry := range cell {
		k := key(entry)
		if k == "" {
			continue
		}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], entry)
	}

	var out [][]models.TimetableEntry
	for _, k := range order {
		if len(buckets[k]) >= 2 {
			out = append(out, buckets[k])
		}
	}
	return out
}

func involvedNames(subject string, group []models.TimetableEntry) []string {
	involved := []string{subject}
	for _, entry := range group {
		involved = append(involved, entry.Course)
	}
	return involved
}

func assignedHours(timetable []models.TimetableEntry, facultyName string) int {
	if facultyName == "" {
		return 0
	}
	count := 0
	for _, entry := range timetable {
		if entry.IsBreak() {
			continue
		}
		if entry.Faculty == facultyName {
			count++
		}
	}
	return count
}
