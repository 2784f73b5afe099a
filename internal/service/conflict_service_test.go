package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetable-ace/scheduler-api/internal/models"
)

func TestDetectFacultyDoubleBooking(t *testing.T) {
	svc := NewConflictService()

	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Botany", Faculty: "Dr. A", Room: "R202"},
	}

	conflicts := svc.Detect(timetable, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictFacultyDoubleBooking, conflicts[0].Type)
	assert.Contains(t, conflicts[0].Description, "Dr. A")
	assert.Contains(t, conflicts[0].Involved, "Dr. A")
	assert.Contains(t, conflicts[0].Involved, "Algebra")
	assert.Contains(t, conflicts[0].Involved, "Botany")
}

func TestDetectRoomDoubleBooking(t *testing.T) {
	svc := NewConflictService()

	timetable := []models.TimetableEntry{
		{Day: "Tuesday", Time: "02:00 - 03:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		{Day: "Tuesday", Time: "02:00 - 03:00", Course: "Botany", Faculty: "Dr. B", Room: "R101"},
	}

	conflicts := svc.Detect(timetable, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictRoomDoubleBooking, conflicts[0].Type)
	assert.Contains(t, conflicts[0].Description, "R101")
}

func TestDetectOrdersFacultyBeforeRoomConflicts(t *testing.T) {
	svc := NewConflictService()

	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Botany", Faculty: "Dr. A", Room: "R101"},
	}

	first := svc.Detect(timetable, nil)
	require.Len(t, first, 2)
	assert.Equal(t, models.ConflictFacultyDoubleBooking, first[0].Type)
	assert.Equal(t, models.ConflictRoomDoubleBooking, first[1].Type)

	// Same input, same output order.
	second := svc.Detect(timetable, nil)
	assert.Equal(t, first, second)
}

func TestDetectIsSymmetricUnderEntryOrder(t *testing.T) {
	svc := NewConflictService()

	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Botany", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: "10:00 - 11:00", Course: "Zoology", Faculty: "Dr. B", Room: "R202"},
		{Day: "Monday", Time: "10:00 - 11:00", Course: "Chemistry", Faculty: "Dr. C", Room: "R202"},
	}
	reversed := make([]models.TimetableEntry, len(timetable))
	for i, entry := range timetable {
		reversed[len(timetable)-1-i] = entry
	}

	forward := svc.Detect(timetable, nil)
	backward := svc.Detect(reversed, nil)

	require.Len(t, forward, 3)
	require.Len(t, backward, 3)
	for i := range forward {
		assert.Equal(t, forward[i].Type, backward[i].Type)
		assert.Equal(t, forward[i].Description, backward[i].Description)
		assert.ElementsMatch(t, forward[i].Involved, backward[i].Involved)
	}
}

func TestDetectIgnoresEmptyNames(t *testing.T) {
	svc := NewConflictService()

	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: models.BreakSlot, Course: models.BreakCourseName, Room: models.BreakRoomName},
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "", Room: "R101"},
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Botany", Faculty: "", Room: "R202"},
	}

	conflicts := svc.Detect(timetable, nil)
	assert.Empty(t, conflicts)
}

func TestDetectWorkloadOverrun(t *testing.T) {
	svc := NewConflictService()

	faculty := []models.Faculty{{ID: "f1", Name: "Dr. A", Workload: 2}}
	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: "10:00 - 11:00", Course: "Botany", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: "11:00 - 12:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
	}

	conflicts := svc.Detect(timetable, faculty)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictWorkloadOverrun, conflicts[0].Type)
	assert.Contains(t, conflicts[0].Description, "3 hours")
	assert.Contains(t, conflicts[0].Description, "2 hours")
}

func TestDetectWorkloadIgnoresBreakEntries(t *testing.T) {
	svc := NewConflictService()

	faculty := []models.Faculty{{ID: "f1", Name: "Dr. A", Workload: 1}}
	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: models.BreakSlot, Course: models.BreakCourseName, Faculty: "Dr. A", Room: models.BreakRoomName},
	}

	conflicts := svc.Detect(timetable, faculty)
	assert.Empty(t, conflicts)
}

func TestUtilizationReportsUnderusedFaculty(t *testing.T) {
	svc := NewConflictService()

	faculty := []models.Faculty{
		{ID: "f1", Name: "Dr. A", Workload: 10},
		{ID: "f2", Name: "Dr. B", Workload: 2},
	}
	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101"},
		{Day: "Monday", Time: "10:00 - 11:00", Course: "Botany", Faculty: "Dr. B", Room: "R101"},
		{Day: "Monday", Time: "11:00 - 12:00", Course: "Algebra", Faculty: "Dr. B", Room: "R101"},
	}

	report := svc.BuildReport(timetable, faculty, nil)
	assert.Contains(t, report, "Underutilized faculty")
	assert.Contains(t, report, "Dr. A (1/10 hours)")
	assert.NotContains(t, report, "Dr. B (")
}

func TestBuildReportCountsConstraintImpacts(t *testing.T) {
	svc := NewConflictService()

	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A", Room: "R101", IsConstraintImpact: true},
		{Day: "Monday", Time: models.BreakSlot, Course: models.BreakCourseName, Room: models.BreakRoomName},
	}

	report := svc.BuildReport(timetable, nil, nil)
	assert.Contains(t, report, "1 sessions were placed under constraint impact")
	assert.Contains(t, report, "No conflicts detected")
}
