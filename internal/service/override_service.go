package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/dto"
	"github.com/timetable-ace/scheduler-api/internal/models"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
)

// catalogReader is the slice of the catalog the override engine needs: course
// name resolution for edits and the faculty roster for conflict re-detection.
type catalogReader interface {
	FindCourseByName(name string) (models.Course, bool)
	Snapshot() models.Dataset
}

// committedCache mirrors the committed timetable into an external cache so
// read traffic can skip the service. Nil disables mirroring.
type committedCache interface {
	SetCommitted(ctx context.Context, result models.GenerationResult) error
	InvalidateCommitted(ctx context.Context) error
}

type editSession struct {
	workingCopy []models.TimetableEntry
	createdAt   time.Time
}

// OverrideService owns the committed timetable and the manual edit workflow.
// Edits accumulate in per-session working copies and only touch committed
// state at commit, where the whole diff lands atomically with one audit
// record.
type OverrideService struct {
	conflicts *ConflictService
	catalog   catalogReader
	audit     auditRecorder
	cache     committedCache
	validate  *validator.Validate
	log       *zap.Logger

	sessionTTL time.Duration

	mu        sync.RWMutex
	committed *models.GenerationResult

	sessionMu sync.Mutex
	sessions  map[string]*editSession
}

// NewOverrideService constructs the engine. cache may be nil.
func NewOverrideService(conflicts *ConflictService, catalog catalogReader, audit auditRecorder, cache committedCache, validate *validator.Validate, sessionTTL time.Duration, log *zap.Logger) *OverrideService {
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &OverrideService{
		conflicts:  conflicts,
		catalog:    catalog,
		audit:      audit,
		cache:      cache,
		validate:   validate,
		log:        log,
		sessionTTL: sessionTTL,
		sessions:   make(map[string]*editSession),
	}
}

// Publish replaces the committed timetable with a freshly generated result.
func (s *OverrideService) Publish(ctx context.Context, result models.GenerationResult) {
	clone := result.Clone()

	s.mu.Lock()
	s.committed = &clone
	s.mu.Unlock()

	s.mirror(ctx, clone)
}

// Committed returns a copy of the committed timetable, or ErrNotFound when
// nothing has been published yet.
func (s *OverrideService) Committed(ctx context.Context) (models.GenerationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.committed == nil {
		return models.GenerationResult{}, appErrors.Clone(appErrors.ErrNotFound, "no committed timetable")
	}
	return s.committed.Clone(), nil
}

// Begin opens an edit session seeded with a copy of the committed timetable.
func (s *OverrideService) Begin(ctx context.Context) (*dto.BeginOverrideResponse, error) {
	s.mu.RLock()
	committed := s.committed
	s.mu.RUnlock()
	if committed == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no committed timetable to edit")
	}

	clone := committed.Clone()
	session := &editSession{
		workingCopy: clone.Timetable,
		createdAt:   time.Now(),
	}

	id := uuid.NewString()
	s.sessionMu.Lock()
	s.purgeExpiredLocked()
	s.sessions[id] = session
	s.sessionMu.Unlock()

	return &dto.BeginOverrideResponse{
		SessionID:   id,
		WorkingCopy: append([]models.TimetableEntry(nil), session.workingCopy...),
	}, nil
}

// ApplyEdit overwrites one field of the targeted entry in the session's
// working copy. A missing target is answered with Found=false, not an error,
// because the grid may have been regenerated since the client last looked.
func (s *OverrideService) ApplyEdit(ctx context.Context, sessionID string, req *dto.ApplyEditRequest) (*dto.ApplyEditResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid edit")
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	session, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range session.workingCopy {
		entry := &session.workingCopy[i]
		if entry.Day != req.Day || entry.Time != req.Time {
			continue
		}
		found = true
		switch req.Field {
		case "faculty":
			entry.Faculty = req.Value
		case "room":
			entry.Room = req.Value
		case "course":
			entry.Course = req.Value
			if course, ok := s.catalog.FindCourseByName(req.Value); ok {
				entry.CourseCode = course.Code
			} else {
				entry.CourseCode = ""
			}
		}
		break
	}

	return &dto.ApplyEditResponse{
		Found:       found,
		WorkingCopy: append([]models.TimetableEntry(nil), session.workingCopy...),
	}, nil
}

// Commit diffs the working copy against the committed timetable, emits one
// audit record covering the whole diff, re-runs conflict detection, and
// atomically replaces the committed state. A no-change commit emits nothing.
func (s *OverrideService) Commit(ctx context.Context, sessionID, user, role string) (*dto.CommitOverrideResponse, error) {
	s.sessionMu.Lock()
	session, err := s.sessionLocked(sessionID)
	if err != nil {
		s.sessionMu.Unlock()
		return nil, err
	}
	working := append([]models.TimetableEntry(nil), session.workingCopy...)
	delete(s.sessions, sessionID)
	s.sessionMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no committed timetable to edit")
	}

	fragments := diffFragments(s.committed.Timetable, working)

	auditLogs := make([]models.AuditLog, 0, 1)
	if len(fragments) > 0 {
		record := s.audit.Record(user, role, models.AuditActionTimetableUpdate,
			fmt.Sprintf("Made %d change(s): %s", len(fragments), strings.Join(fragments, " ")))
		auditLogs = append(auditLogs, record)
	}

	faculty := s.catalog.Snapshot().Faculty
	conflicts := s.conflicts.Detect(working, faculty)
	report := s.conflicts.BuildReport(working, faculty, conflicts)

	next := models.GenerationResult{
		Timetable: working,
		Conflicts: conflicts,
		Report:    report,
	}
	clone := next.Clone()
	s.committed = &clone

	s.mirror(ctx, clone)

	if s.log != nil {
		s.log.Info("timetable committed",
			zap.String("session", sessionID),
			zap.Int("changes", len(fragments)),
			zap.Int("conflicts", len(conflicts)))
	}

	return &dto.CommitOverrideResponse{
		Timetable: next.Timetable,
		Conflicts: next.Conflicts,
		AuditLogs: auditLogs,
	}, nil
}

// Cancel discards a session. Idempotent; cancelling an unknown or expired
// session is a no-op.
func (s *OverrideService) Cancel(ctx context.Context, sessionID string) {
	s.sessionMu.Lock()
	delete(s.sessions, sessionID)
	s.sessionMu.Unlock()
}

func (s *OverrideService) sessionLocked(sessionID string) (*editSession, error) {
	s.purgeExpiredLocked()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, appErrors.ErrSessionExpired
	}
	return session, nil
}

func (s *OverrideService) purgeExpiredLocked() {
	cutoff := time.Now().Add(-s.sessionTTL)
	for id, session := range s.sessions {
		if session.createdAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func (s *OverrideService) mirror(ctx context.Context, result models.GenerationResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetCommitted(ctx, result); err != nil && s.log != nil {
		s.log.Warn("committed timetable not mirrored to cache", zap.Error(err))
	}
}

// diffFragments describes every faculty and room change between the committed
// timetable and the working copy, keyed by (day, time). Each fragment is a
// complete sentence; together they form the audit detail.
func diffFragments(committed, working []models.TimetableEntry) []string {
	index := make(map[string]models.TimetableEntry, len(committed))
	for _, entry := range committed {
		index[entry.Day+"|"+entry.Time] = entry
	}

	var fragments []string
	for _, entry := range working {
		old, ok := index[entry.Day+"|"+entry.Time]
		if !ok {
			continue
		}
		if old.Faculty != entry.Faculty {
			fragments = append(fragments, fmt.Sprintf("Changed %s at %s %s from %s to %s.",
				entry.Course, entry.Day, entry.Time, old.Faculty, entry.Faculty))
		}
		if old.Room != entry.Room {
			fragments = append(fragments, fmt.Sprintf("Moved %s at %s %s from %s to %s.",
				entry.Course, entry.Day, entry.Time, old.Room, entry.Room))
		}
	}
	return fragments
}
