package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/models"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
)

// Picker selects an index from a pool of size n. Injected so tests can force
// deterministic choices while production runs use a seeded random source.
type Picker interface {
	Pick(n int) int
}

type randomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker returns the default picker backed by its own random source.
// A fixed seed reproduces the same schedule for the same input.
func NewRandomPicker(seed int64) Picker {
	return &randomPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *randomPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return p.rng.Intn(n)
}

// GeneratorService builds weekly timetables. Every requested day ends up with
// exactly one entry per time slot; shortage never aborts a run, it degrades
// into fallback or placeholder entries instead.
type GeneratorService struct {
	availability *AvailabilityService
	conflicts    *ConflictService
	picker       Picker
	validate     *validator.Validate
	log          *zap.Logger
}

// NewGeneratorService constructs the engine.
func NewGeneratorService(availability *AvailabilityService, conflicts *ConflictService, picker Picker, validate *validator.Validate, log *zap.Logger) *GeneratorService {
	return &GeneratorService{
		availability: availability,
		conflicts:    conflicts,
		picker:       picker,
		validate:     validate,
		log:          log,
	}
}

// Generate produces a full schedule for the requested days. Days outside the
// request keep their entries from the existing timetable untouched.
func (s *GeneratorService) Generate(ctx context.Context, req *dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid generation request")
	}

	days, err := normalizeDays(req.Days)
	if err != nil {
		return nil, err
	}

	dataset := models.Dataset{
		Students: req.Students,
		Faculty:  req.Faculty,
		Courses:  req.Courses,
		Rooms:    req.Rooms,
	}.Clone()

	courses := filterCoursesByProgram(dataset.Courses, req.Programs)
	if len(courses) == 0 && len(dataset.Courses) == 0 {
		// Nothing to schedule at all. An empty grid is a valid answer; the
		// coverage guarantee only applies once there is material to place.
		return &dto.GenerateTimetableResponse{
			Timetable: []models.TimetableEntry{},
			Conflicts: []models.Conflict{},
			Report:    "No courses available. Nothing was scheduled.",
		}, nil
	}

	timetable := s.buildDays(days, courses, dataset, req)
	timetable = append(timetable, carryOver(req.ExistingTimetable, days)...)
	timetable = fillUncovered(timetable, days)
	sortTimetable(timetable)

	effectiveFaculty := s.availability.ApplyScenario(dataset.Faculty, req.Scenario)
	conflicts := s.conflicts.Detect(timetable, effectiveFaculty)
	report := s.conflicts.BuildReport(timetable, effectiveFaculty, conflicts)

	if s.log != nil {
		s.log.Info("timetable generated",
			zap.Int("days", len(days)),
			zap.Int("entries", len(timetable)),
			zap.Int("conflicts", len(conflicts)))
	}

	return &dto.GenerateTimetableResponse{
		Timetable: timetable,
		Conflicts: conflicts,
		Report:    report,
	}, nil
}

func (s *GeneratorService) buildDays(days []string, courses []models.Course, dataset models.Dataset, req *dto.GenerateTimetableRequest) []models.TimetableEntry {
	tpBlock := req.Constraints.ProgramSpecific.TeachingPractice

	// The course list repeats cyclically across every academic slot of the
	// run so a short catalog still fills the grid.
	needed := len(days) * models.AcademicSlotsPerDay()
	extended := extendCourses(courses, needed)

	timetable := make([]models.TimetableEntry, 0, len(days)*len(models.TimeSlots))
	courseIdx := 0

	for _, day := range days {
		for _, slot := range models.TimeSlots {
			if models.IsBreakSlot(slot) {
				timetable = append(timetable, breakEntry(day))
				continue
			}
			if tpBlock.Blocks(day, slot) {
				timetable = append(timetable, teachingPracticeEntry(day, slot, tpBlock.Program))
				continue
			}
			if courseIdx >= len(extended) {
				// Program filter emptied the catalog; the coverage pass
				// backfills these cells with placeholders.
				continue
			}
			course := extended[courseIdx]
			courseIdx++
			timetable = append(timetable, s.assignEntry(day, slot, course, dataset, req))
		}
	}

	return timetable
}

// assignEntry picks a faculty member and room for one academic cell. An empty
// eligible pool falls back to the full pool so the cell is still filled; the
// entry is flagged only when the seat actually went to someone the scenario
// marks on leave or into a room it marks unavailable.
func (s *GeneratorService) assignEntry(day, slot string, course models.Course, dataset models.Dataset, req *dto.GenerateTimetableRequest) models.TimetableEntry {
	eligibleFaculty, eligibleRooms := s.availability.Resolve(
		dataset.Faculty, dataset.Rooms, req.Scenario, req.Constraints, day, slot)

	entry := models.TimetableEntry{
		ID:         entryID(day, slot, course.Code),
		Day:        day,
		Time:       slot,
		Course:     course.Name,
		CourseCode: course.Code,
		Program:    course.Program,
	}

	facultyPool := eligibleFaculty
	if len(facultyPool) == 0 {
		facultyPool = dataset.Faculty
	}
	if len(facultyPool) > 0 {
		chosen := facultyPool[s.picker.Pick(len(facultyPool))]
		entry.Faculty = chosen.Name
		if req.Scenario.FacultyIsOnLeave(chosen.ID) {
			entry.IsConstraintImpact = true
			entry.ConstraintType = models.ConstraintFacultyOnLeave
		}
	} else {
		entry.Faculty = models.DefaultFacultyName
	}

	roomPool := eligibleRooms
	if len(roomPool) == 0 {
		roomPool = dataset.Rooms
	}
	if len(roomPool) > 0 {
		chosen := roomPool[s.picker.Pick(len(roomPool))]
		entry.Room = chosen.Name
		if req.Scenario.RoomIsUnavailable(chosen.ID) {
			entry.IsConstraintImpact = true
			entry.ConstraintType = models.ConstraintRoomUnavailable
		}
	} else {
		entry.Room = models.DefaultRoomName
	}

	return entry
}

// SuggestFaculty ranks instructors for a course slot and returns the best
// candidate. Ranking is deterministic: specialization match first, then
// student feedback, then name, and anyone already booked in the slot is
// skipped.
func (s *GeneratorService) SuggestFaculty(ctx context.Context, req *dto.SuggestFacultyRequest, faculty []models.Faculty, courses []models.Course, timetable []models.TimetableEntry) (*dto.SuggestFacultyResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid suggestion request")
	}

	var course *models.Course
	for i := range courses {
		if courses[i].Code == req.CourseCode {
			course = &courses[i]
			break
		}
	}
	if course == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", req.CourseCode))
	}

	booked := make(map[string]bool)
	if req.Day != "" && req.Time != "" {
		for _, entry := range timetable {
			if entry.Day == req.Day && entry.Time == req.Time && entry.Faculty != "" {
				booked[entry.Faculty] = true
			}
		}
	}

	candidates := make([]models.Faculty, 0, len(faculty))
	for _, f := range faculty {
		if booked[f.Name] {
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no available faculty for this slot")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		mi := specializationMatches(candidates[i], *course)
		mj := specializationMatches(candidates[j], *course)
		if mi != mj {
			return mi
		}
		if candidates[i].StudentFeedback != candidates[j].StudentFeedback {
			return candidates[i].StudentFeedback > candidates[j].StudentFeedback
		}
		return candidates[i].Name < candidates[j].Name
	})

	best := candidates[0]
	justification := fmt.Sprintf("%s is free in this slot with a %.1f feedback score.", best.Name, best.StudentFeedback)
	if specializationMatches(best, *course) {
		justification = fmt.Sprintf("%s specializes in %s and has a %.1f feedback score.", best.Name, best.Specialization, best.StudentFeedback)
	}

	return &dto.SuggestFacultyResponse{
		FacultyName:   best.Name,
		Justification: justification,
	}, nil
}

func specializationMatches(f models.Faculty, course models.Course) bool {
	if f.Specialization == "" {
		return false
	}
	spec := strings.ToLower(f.Specialization)
	return strings.Contains(strings.ToLower(course.Name), spec) ||
		strings.Contains(spec, strings.ToLower(course.Name))
}

// normalizeDays validates the requested day names and returns them in
// canonical weekday order with duplicates removed.
func normalizeDays(requested []string) ([]string, error) {
	seen := make(map[string]bool, len(requested))
	for _, day := range requested {
		if models.WeekdayIndex(day) < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", day))
		}
		seen[day] = true
	}
	days := make([]string, 0, len(seen))
	for _, day := range models.Weekdays {
		if seen[day] {
			days = append(days, day)
		}
	}
	return days, nil
}

func filterCoursesByProgram(courses []models.Course, programs []string) []models.Course {
	if len(programs) == 0 {
		return courses
	}
	wanted := make(map[string]bool, len(programs))
	for _, p := range programs {
		wanted[p] = true
	}
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if wanted[c.Program] {
			out = append(out, c)
		}
	}
	return out
}

func extendCourses(courses []models.Course, needed int) []models.Course {
	if len(courses) == 0 || needed <= 0 {
		return nil
	}
	extended := make([]models.Course, 0, needed)
	for i := 0; i < needed; i++ {
		extended = append(extended, courses[i%len(courses)])
	}
	return extended
}

func breakEntry(day string) models.TimetableEntry {
	return models.TimetableEntry{
		ID:         entryID(day, models.BreakSlot, models.BreakCourseCode),
		Day:        day,
		Time:       models.BreakSlot,
		Course:     models.BreakCourseName,
		CourseCode: models.BreakCourseCode,
		Room:       models.BreakRoomName,
	}
}

func teachingPracticeEntry(day, slot, program string) models.TimetableEntry {
	return models.TimetableEntry{
		ID:                 entryID(day, slot, models.BlockCourseCode),
		Day:                day,
		Time:               slot,
		Course:             models.BlockCourseName,
		CourseCode:         models.BlockCourseCode,
		Faculty:            models.BlockFacultyName,
		Room:               models.BlockRoomName,
		IsConstraintImpact: true,
		ConstraintType:     models.ConstraintTeachingPractice,
		AffectedProgram:    program,
	}
}

func placeholderEntry(day, slot string) models.TimetableEntry {
	return models.TimetableEntry{
		ID:         entryID(day, slot, models.PlaceholderCourseCode),
		Day:        day,
		Time:       slot,
		Course:     models.PlaceholderCourseName,
		CourseCode: models.PlaceholderCourseCode,
		Faculty:    models.PlaceholderFacultyName,
		Room:       models.PlaceholderRoomName,
	}
}

func entryID(day, slot, code string) string {
	return fmt.Sprintf("%s-%s-%s", day, slot, code)
}

// carryOver keeps entries from the previous timetable for days outside the
// regenerated set.
func carryOver(existing []models.TimetableEntry, regenerated []string) []models.TimetableEntry {
	if len(existing) == 0 {
		return nil
	}
	skip := make(map[string]bool, len(regenerated))
	for _, day := range regenerated {
		skip[day] = true
	}
	var kept []models.TimetableEntry
	for _, entry := range existing {
		if !skip[entry.Day] {
			kept = append(kept, entry)
		}
	}
	return kept
}

// fillUncovered backfills any (day, slot) cell still empty after assignment
// with an emergency placeholder. Every requested day leaves with a full
// column.
func fillUncovered(timetable []models.TimetableEntry, days []string) []models.TimetableEntry {
	covered := make(map[string]bool, len(timetable))
	for _, entry := range timetable {
		covered[entry.Day+"|"+entry.Time] = true
	}
	for _, day := range days {
		for _, slot := range models.TimeSlots {
			if !covered[day+"|"+slot] {
				timetable = append(timetable, placeholderEntry(day, slot))
			}
		}
	}
	return timetable
}

func slotIndex(slot string) int {
	for i, s := range models.TimeSlots {
		if s == slot {
			return i
		}
	}
	return len(models.TimeSlots)
}

func sortTimetable(timetable []models.TimetableEntry) {
	sort.SliceStable(timetable, func(i, j int) bool {
		di, dj := models.WeekdayIndex(timetable[i].Day), models.WeekdayIndex(timetable[j].Day)
		if di != dj {
			return di < dj
		}
		return slotIndex(timetable[i].Time) < slotIndex(timetable[j].Time)
	})
}
