package models

// CourseType classifies how a course is delivered.
type CourseType string

const (
	CourseTheory    CourseType = "Theory"
	CoursePractical CourseType = "Practical"
	CourseHybrid    CourseType = "Hybrid"
)

// CourseCategory buckets courses for curriculum planning.
type CourseCategory string

const (
	CategoryMajor      CourseCategory = "Major"
	CategoryMinor      CourseCategory = "Minor"
	CategorySkill      CourseCategory = "Skill"
	CategoryValueAdded CourseCategory = "ValueAdded"
	CategoryCommon     CourseCategory = "Common"
)

// RoomType distinguishes laboratories from lecture halls.
type RoomType string

const (
	RoomLab     RoomType = "Lab"
	RoomLecture RoomType = "Lecture"
)

// Student represents an enrolled student record. Read-only to the scheduler.
type Student struct {
	ID                 string   `json:"id" validate:"required"`
	Name               string   `json:"name" validate:"required"`
	Branch             string   `json:"branch"`
	Year               int      `json:"year" validate:"required,min=1"`
	Major              string   `json:"major"`
	Minor              string   `json:"minor"`
	ElectiveChoices    []string `json:"electiveChoices"`
	EnrolledCredits    int      `json:"enrolledCredits"`
	PreferredTimeSlots []string `json:"preferredTimeSlots,omitempty"`
}

// Faculty represents an instructor. Workload is the expected weekly hours.
type Faculty struct {
	ID              string  `json:"id" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	Department      string  `json:"department"`
	Specialization  string  `json:"specialization"`
	Workload        int     `json:"workload" validate:"min=0"`
	StudentFeedback float64 `json:"studentFeedback"`
}

// CourseClass is a sub-section of a course.
type CourseClass struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Year     int    `json:"year,omitempty"`
	Section  string `json:"section,omitempty"`
}

// Course represents an academic activity. Code is the stable join key used
// for enrollment and timetable matching and is never regenerated.
type Course struct {
	ID       string         `json:"id" validate:"required"`
	Name     string         `json:"name" validate:"required"`
	Code     string         `json:"code" validate:"required"`
	Credits  int            `json:"credits" validate:"required,min=1"`
	Type     CourseType     `json:"type" validate:"required,oneof=Theory Practical Hybrid"`
	Category CourseCategory `json:"category" validate:"required,oneof=Major Minor Skill ValueAdded Common"`
	Capacity int            `json:"capacity" validate:"required,min=1"`
	Program  string         `json:"program"`
	Classes  []CourseClass  `json:"classes,omitempty"`
}

// Room represents a physical teaching space.
type Room struct {
	ID       string   `json:"id" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Capacity int      `json:"capacity" validate:"required,min=1"`
	Type     RoomType `json:"type" validate:"required,oneof=Lab Lecture"`
}

// Dataset bundles the entity collections supplied by the caller for a
// generation run.
type Dataset struct {
	Students []Student `json:"students"`
	Faculty  []Faculty `json:"faculty"`
	Courses  []Course  `json:"courses"`
	Rooms    []Room    `json:"rooms"`
}

// Clone returns a deep copy so generation runs never share mutable state.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Students: make([]Student, len(d.Students)),
		Faculty:  make([]Faculty, len(d.Faculty)),
		Courses:  make([]Course, len(d.Courses)),
		Rooms:    make([]Room, len(d.Rooms)),
	}
	for i, s := range d.Students {
		s.ElectiveChoices = append([]string(nil), s.ElectiveChoices...)
		s.PreferredTimeSlots = append([]string(nil), s.PreferredTimeSlots...)
		out.Students[i] = s
	}
	copy(out.Faculty, d.Faculty)
	for i, c := range d.Courses {
		c.Classes = append([]CourseClass(nil), c.Classes...)
		out.Courses[i] = c
	}
	copy(out.Rooms, d.Rooms)
	return out
}
