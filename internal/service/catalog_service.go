package service

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/models"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
)

// auditRecorder is the slice of the audit service the other services need.
type auditRecorder interface {
	Record(user, role, action, details string) models.AuditLog
}

// courseCodePattern splits a course code into its subject prefix and year
// digit, e.g. "CS301" into "CS" and 3.
var courseCodePattern = regexp.MustCompile(`^([a-zA-Z]+)(\d)`)

// commonCoursePrefixes are foundation subjects every junior student takes
// regardless of branch.
var commonCoursePrefixes = []string{"HS", "PH"}

// CatalogService holds the session's entity collections and constraint
// configuration. Everything is served as deep copies; callers never see the
// stored slices.
type CatalogService struct {
	validate *validator.Validate
	audit    auditRecorder
	log      *zap.Logger

	mu          sync.RWMutex
	dataset     models.Dataset
	constraints models.Constraints
}

// NewCatalogService constructs an empty catalog.
func NewCatalogService(validate *validator.Validate, audit auditRecorder, log *zap.Logger) *CatalogService {
	return &CatalogService{
		validate: validate,
		audit:    audit,
		log:      log,
	}
}

// Import loads entity collections into the catalog. Collections merge by id
// unless Replace is set, and every import leaves an audit record.
func (s *CatalogService) Import(ctx context.Context, req *dto.DatasetImportRequest, user, role string) (*dto.DatasetImportResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid dataset")
	}

	s.mu.Lock()
	if req.Replace {
		s.dataset = models.Dataset{
			Students: req.Students,
			Faculty:  req.Faculty,
			Courses:  req.Courses,
			Rooms:    req.Rooms,
		}.Clone()
	} else {
		s.dataset.Students = mergeStudents(s.dataset.Students, req.Students)
		s.dataset.Faculty = mergeFaculty(s.dataset.Faculty, req.Faculty)
		s.dataset.Courses = mergeCourses(s.dataset.Courses, req.Courses)
		s.dataset.Rooms = mergeRooms(s.dataset.Rooms, req.Rooms)
	}
	resp := &dto.DatasetImportResponse{
		Students: len(s.dataset.Students),
		Faculty:  len(s.dataset.Faculty),
		Courses:  len(s.dataset.Courses),
		Rooms:    len(s.dataset.Rooms),
	}
	s.mu.Unlock()

	s.audit.Record(user, role, models.AuditActionDataImport,
		"Imported dataset: "+strconv.Itoa(resp.Students)+" students, "+
			strconv.Itoa(resp.Faculty)+" faculty, "+
			strconv.Itoa(resp.Courses)+" courses, "+
			strconv.Itoa(resp.Rooms)+" rooms.")

	if s.log != nil {
		s.log.Info("dataset imported",
			zap.Int("students", resp.Students),
			zap.Int("faculty", resp.Faculty),
			zap.Int("courses", resp.Courses),
			zap.Int("rooms", resp.Rooms),
			zap.Bool("replace", req.Replace))
	}
	return resp, nil
}

// Snapshot returns a deep copy of the current dataset.
func (s *CatalogService) Snapshot() models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset.Clone()
}

// Constraints returns a copy of the current constraint configuration.
func (s *CatalogService) Constraints() models.Constraints {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.constraints
}

// UpdateConstraints replaces the constraint configuration and audits the
// change.
func (s *CatalogService) UpdateConstraints(ctx context.Context, req *dto.ConstraintsUpdateRequest, user, role string) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid constraints")
	}

	s.mu.Lock()
	s.constraints = req.Constraints
	s.mu.Unlock()

	s.audit.Record(user, role, models.AuditActionConstraintChange, "Updated scheduling constraints.")
	return nil
}

// FindCourseByName resolves a course by display name, case-insensitively.
func (s *CatalogService) FindCourseByName(name string) (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.dataset.Courses {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return models.Course{}, false
}

// StudentTimetable filters a committed timetable down to the entries relevant
// to one student: elective picks, branch courses at the student's year level,
// foundation courses for junior years, and break slots.
func (s *CatalogService) StudentTimetable(studentID string, timetable []models.TimetableEntry) ([]models.TimetableEntry, error) {
	s.mu.RLock()
	var student *models.Student
	for i := range s.dataset.Students {
		if s.dataset.Students[i].ID == studentID {
			st := s.dataset.Students[i]
			student = &st
			break
		}
	}
	s.mu.RUnlock()

	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	electives := make(map[string]bool, len(student.ElectiveChoices))
	for _, code := range student.ElectiveChoices {
		electives[strings.ToUpper(code)] = true
	}
	branch := branchCode(student.Branch)

	filtered := make([]models.TimetableEntry, 0, len(timetable))
	for _, entry := range timetable {
		if entry.IsBreak() || s.relevantToStudent(entry.CourseCode, *student, branch, electives) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

func (s *CatalogService) relevantToStudent(courseCode string, student models.Student, branch string, electives map[string]bool) bool {
	code := strings.ToUpper(courseCode)
	if electives[code] {
		return true
	}

	m := courseCodePattern.FindStringSubmatch(code)
	if m == nil {
		return false
	}
	prefix := m[1]
	yearLevel, _ := strconv.Atoi(m[2])

	if branch != "" && prefix == branch && yearLevel == student.Year {
		return true
	}
	if student.Year <= 2 {
		for _, common := range commonCoursePrefixes {
			if prefix == common {
				return true
			}
		}
	}
	return false
}

// branchCode derives the course code prefix from a branch name. Short codes
// pass through, full names reduce to their initials.
func branchCode(branch string) string {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return ""
	}
	if len(branch) <= 4 && !strings.ContainsRune(branch, ' ') {
		return strings.ToUpper(branch)
	}
	var b strings.Builder
	for _, word := range strings.Fields(branch) {
		r := []rune(word)[0]
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func mergeStudents(existing, incoming []models.Student) []models.Student {
	index := make(map[string]int, len(existing))
	for i, s := range existing {
		index[s.ID] = i
	}
	for _, s := range incoming {
		if i, ok := index[s.ID]; ok {
			existing[i] = s
		} else {
			index[s.ID] = len(existing)
			existing = append(existing, s)
		}
	}
	return existing
}

func mergeFaculty(existing, incoming []models.Faculty) []models.Faculty {
	index := make(map[string]int, len(existing))
	for i, f := range existing {
		index[f.ID] = i
	}
	for _, f := range incoming {
		if i, ok := index[f.ID]; ok {
			existing[i] = f
		} else {
			index[f.ID] = len(existing)
			existing = append(existing, f)
		}
	}
	return existing
}

func mergeCourses(existing, incoming []models.Course) []models.Course {
	index := make(map[string]int, len(existing))
	for i, c := range existing {
		index[c.ID] = i
	}
	for _, c := range incoming {
		if i, ok := index[c.ID]; ok {
			existing[i] = c
		} else {
			index[c.ID] = len(existing)
			existing = append(existing, c)
		}
	}
	return existing
}

func mergeRooms(existing, incoming []models.Room) []models.Room {
	index := make(map[string]int, len(existing))
	for i, r := range existing {
		index[r.ID] = i
	}
	for _, r := range incoming {
		if i, ok := index[r.ID]; ok {
			existing[i] = r
		} else {
			index[r.ID] = len(existing)
			existing = append(existing, r)
		}
	}
	return existing
}
