package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/models"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
)

// firstPicker always selects the first candidate so assignments are
// predictable.
type firstPicker struct{}

func (firstPicker) Pick(n int) int { return 0 }

func newTestGenerator() *GeneratorService {
	return NewGeneratorService(
		NewAvailabilityService(),
		NewConflictService(),
		firstPicker{},
		validator.New(),
		zap.NewNop(),
	)
}

func baseRequest(days ...string) *dto.GenerateTimetableRequest {
	return &dto.GenerateTimetableRequest{
		Days: days,
		Faculty: []models.Faculty{
			{ID: "f1", Name: "Dr. A", Specialization: "Algebra", Workload: 20, StudentFeedback: 4.0},
			{ID: "f2", Name: "Dr. B", Specialization: "Zoology", Workload: 20, StudentFeedback: 5.0},
		},
		Courses: []models.Course{
			{ID: "c1", Name: "Algebra", Code: "ALG", Credits: 3, Type: models.CourseTheory, Category: models.CategoryMajor, Capacity: 40},
			{ID: "c2", Name: "Botany", Code: "BOT", Credits: 3, Type: models.CourseTheory, Category: models.CategoryMajor, Capacity: 40},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "R101", Capacity: 50, Type: models.RoomLecture},
			{ID: "r2", Name: "Lab 1", Capacity: 30, Type: models.RoomLab},
		},
	}
}

func entryAt(t *testing.T, timetable []models.TimetableEntry, day, slot string) models.TimetableEntry {
	t.Helper()
	for _, entry := range timetable {
		if entry.Day == day && entry.Time == slot {
			return entry
		}
	}
	t.Fatalf("no entry at %s %s", day, slot)
	return models.TimetableEntry{}
}

func TestGenerateCoversEverySlot(t *testing.T) {
	svc := newTestGenerator()

	res, err := svc.Generate(context.Background(), baseRequest("Monday", "Tuesday"))
	require.NoError(t, err)
	require.Len(t, res.Timetable, 2*len(models.TimeSlots))

	seen := make(map[string]int)
	for _, entry := range res.Timetable {
		seen[entry.Day+"|"+entry.Time]++
	}
	for _, day := range []string{"Monday", "Tuesday"} {
		for _, slot := range models.TimeSlots {
			assert.Equal(t, 1, seen[day+"|"+slot], "cell %s %s", day, slot)
		}
	}
}

func TestGenerateBreakSlotIsAlwaysLunch(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Scenario.FacultyOnLeave = []string{"f1", "f2"}
	req.Scenario.UnavailableRooms = []string{"r1", "r2"}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	entry := entryAt(t, res.Timetable, "Monday", models.BreakSlot)
	assert.Equal(t, models.BreakCourseName, entry.Course)
	assert.Equal(t, models.BreakCourseCode, entry.CourseCode)
	assert.Equal(t, models.BreakRoomName, entry.Room)
	assert.Empty(t, entry.Faculty)
	assert.False(t, entry.IsConstraintImpact)
}

func TestGenerateTeachingPracticeTakesPrecedence(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Constraints.ProgramSpecific.TeachingPractice = models.TeachingPracticeBlock{
		Program:   "B.Ed",
		Day:       "Monday",
		StartTime: "09:00",
		EndTime:   "11:00",
	}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	for _, slot := range []string{"09:00 - 10:00", "10:00 - 11:00"} {
		entry := entryAt(t, res.Timetable, "Monday", slot)
		assert.Equal(t, models.BlockCourseName, entry.Course)
		assert.Equal(t, models.BlockFacultyName, entry.Faculty)
		assert.Equal(t, models.BlockRoomName, entry.Room)
		assert.True(t, entry.IsConstraintImpact)
		assert.Equal(t, models.ConstraintTeachingPractice, entry.ConstraintType)
		assert.Equal(t, "B.Ed", entry.AffectedProgram)
	}

	after := entryAt(t, res.Timetable, "Monday", "11:00 - 12:00")
	assert.NotEqual(t, models.BlockCourseName, after.Course)
}

func TestGenerateExcludesFacultyOnLeave(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Scenario.FacultyOnLeave = []string{"f1"}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	for _, entry := range res.Timetable {
		if entry.IsBreak() {
			continue
		}
		assert.Equal(t, "Dr. B", entry.Faculty)
		assert.False(t, entry.IsConstraintImpact)
	}
}

func TestGenerateFallsBackWhenAllFacultyOnLeave(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Scenario.FacultyOnLeave = []string{"f1", "f2"}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	for _, entry := range res.Timetable {
		if entry.IsBreak() {
			continue
		}
		assert.NotEmpty(t, entry.Faculty, "slot %s still gets an instructor", entry.Time)
		assert.True(t, entry.IsConstraintImpact)
		assert.Equal(t, models.ConstraintFacultyOnLeave, entry.ConstraintType)
	}
}

func TestGenerateFallsBackWhenAllRoomsUnavailable(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Scenario.UnavailableRooms = []string{"r1", "r2"}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	for _, entry := range res.Timetable {
		if entry.IsBreak() {
			continue
		}
		assert.NotEmpty(t, entry.Room)
		assert.True(t, entry.IsConstraintImpact)
		assert.Equal(t, models.ConstraintRoomUnavailable, entry.ConstraintType)
	}
}

func TestGenerateWindowEmptiedPoolIsNotTaggedAsLeave(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Constraints.Faculty.Availability = map[string]models.AvailabilityWindow{
		"Monday": {Active: false},
	}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	for _, entry := range res.Timetable {
		if entry.IsBreak() {
			continue
		}
		assert.NotEmpty(t, entry.Faculty, "slot %s still gets an instructor", entry.Time)
		assert.False(t, entry.IsConstraintImpact, "slot %s", entry.Time)
		assert.Empty(t, entry.ConstraintType, "slot %s", entry.Time)
	}
}

func TestGenerateUsesDefaultNamesWithoutFacultyAndRooms(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Faculty = nil
	req.Rooms = nil

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Timetable, len(models.TimeSlots))

	for _, entry := range res.Timetable {
		if entry.IsBreak() {
			continue
		}
		assert.Equal(t, models.DefaultFacultyName, entry.Faculty)
		assert.Equal(t, models.DefaultRoomName, entry.Room)
		assert.False(t, entry.IsConstraintImpact)
	}
}

func TestGenerateRejectsUnknownWeekday(t *testing.T) {
	svc := newTestGenerator()

	_, err := svc.Generate(context.Background(), baseRequest("Funday"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateEmptyCatalogYieldsEmptyTimetable(t *testing.T) {
	svc := newTestGenerator()

	req := &dto.GenerateTimetableRequest{Days: []string{"Monday"}}
	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, res.Timetable)
	assert.Empty(t, res.Conflicts)
}

func TestGenerateFillsPlaceholdersWhenProgramFilterMatchesNothing(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Programs = []string{"Nursing"}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Timetable, len(models.TimeSlots))

	placeholders := 0
	for _, entry := range res.Timetable {
		if entry.Course == models.PlaceholderCourseName {
			placeholders++
			assert.Equal(t, models.PlaceholderCourseCode, entry.CourseCode)
			assert.Equal(t, models.PlaceholderFacultyName, entry.Faculty)
			assert.False(t, entry.IsConstraintImpact)
			assert.Empty(t, entry.ConstraintType)
		}
	}
	assert.Equal(t, models.AcademicSlotsPerDay(), placeholders)
}

func TestGenerateCyclesCoursesAndStaysConflictFree(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.Faculty = append(req.Faculty,
		models.Faculty{ID: "f3", Name: "Dr. C", Workload: 20},
		models.Faculty{ID: "f4", Name: "Dr. D", Workload: 20},
	)
	req.Rooms = append(req.Rooms, models.Room{ID: "r3", Name: "R202", Capacity: 60, Type: models.RoomLecture})

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Timetable, len(models.TimeSlots))
	assert.Empty(t, res.Conflicts)

	wantCourses := []string{"Algebra", "Botany", "Algebra", "Botany", "Algebra", "Botany"}
	i := 0
	for _, entry := range res.Timetable {
		if entry.IsBreak() {
			continue
		}
		assert.Equal(t, wantCourses[i], entry.Course, "slot %s", entry.Time)
		i++
	}
	assert.Contains(t, res.Report, "No conflicts detected")
}

func TestGenerateCarriesOverOtherDays(t *testing.T) {
	svc := newTestGenerator()

	req := baseRequest("Monday")
	req.ExistingTimetable = []models.TimetableEntry{
		{ID: "Tuesday-09:00 - 10:00-BOT", Day: "Tuesday", Time: "09:00 - 10:00", Course: "Botany", CourseCode: "BOT", Faculty: "Dr. B", Room: "Lab 1"},
		{ID: "Monday-09:00 - 10:00-OLD", Day: "Monday", Time: "09:00 - 10:00", Course: "Old Course", CourseCode: "OLD"},
	}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	carried := entryAt(t, res.Timetable, "Tuesday", "09:00 - 10:00")
	assert.Equal(t, "Botany", carried.Course)

	regenerated := entryAt(t, res.Timetable, "Monday", "09:00 - 10:00")
	assert.NotEqual(t, "Old Course", regenerated.Course)
}

func TestGenerateSortsDayMajor(t *testing.T) {
	svc := newTestGenerator()

	res, err := svc.Generate(context.Background(), baseRequest("Wednesday", "Monday"))
	require.NoError(t, err)
	require.Len(t, res.Timetable, 2*len(models.TimeSlots))

	assert.Equal(t, "Monday", res.Timetable[0].Day)
	assert.Equal(t, models.TimeSlots[0], res.Timetable[0].Time)
	assert.Equal(t, "Wednesday", res.Timetable[len(models.TimeSlots)].Day)
}

func TestGenerateEntryIDFormat(t *testing.T) {
	svc := newTestGenerator()

	res, err := svc.Generate(context.Background(), baseRequest("Monday"))
	require.NoError(t, err)

	first := entryAt(t, res.Timetable, "Monday", "09:00 - 10:00")
	assert.Equal(t, "Monday-09:00 - 10:00-"+first.CourseCode, first.ID)
}

func TestSuggestFacultyPrefersSpecialization(t *testing.T) {
	svc := newTestGenerator()
	req := baseRequest("Monday")

	res, err := svc.SuggestFaculty(context.Background(),
		&dto.SuggestFacultyRequest{CourseCode: "ALG"},
		req.Faculty, req.Courses, nil)
	require.NoError(t, err)
	assert.Equal(t, "Dr. A", res.FacultyName)
	assert.Contains(t, res.Justification, "Algebra")
}

func TestSuggestFacultySkipsBookedInstructors(t *testing.T) {
	svc := newTestGenerator()
	req := baseRequest("Monday")

	timetable := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00 - 10:00", Course: "Algebra", Faculty: "Dr. A"},
	}

	res, err := svc.SuggestFaculty(context.Background(),
		&dto.SuggestFacultyRequest{CourseCode: "ALG", Day: "Monday", Time: "09:00 - 10:00"},
		req.Faculty, req.Courses, timetable)
	require.NoError(t, err)
	assert.Equal(t, "Dr. B", res.FacultyName)
}

func TestSuggestFacultyUnknownCourse(t *testing.T) {
	svc := newTestGenerator()
	req := baseRequest("Monday")

	_, err := svc.SuggestFaculty(context.Background(),
		&dto.SuggestFacultyRequest{CourseCode: "NOPE"},
		req.Faculty, req.Courses, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
