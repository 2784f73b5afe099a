package dto

import "github.com/timetable-ace/scheduler-api/internal/models"

// DatasetImportRequest loads entity collections into the session catalog.
// When Replace is false the collections are merged by id.
type DatasetImportRequest struct {
	Students []models.Student `json:"students" validate:"omitempty,dive"`
	Faculty  []models.Faculty `json:"faculty" validate:"omitempty,dive"`
	Courses  []models.Course  `json:"courses" validate:"omitempty,dive"`
	Rooms    []models.Room    `json:"rooms" validate:"omitempty,dive"`
	Replace  bool             `json:"replace"`
}

// DatasetImportResponse summarises what was loaded.
type DatasetImportResponse struct {
	Students int `json:"students"`
	Faculty  int `json:"faculty"`
	Courses  int `json:"courses"`
	Rooms    int `json:"rooms"`
}

// ConstraintsUpdateRequest replaces the session constraint configuration.
type ConstraintsUpdateRequest struct {
	Constraints models.Constraints `json:"constraints"`
}
