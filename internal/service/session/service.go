package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/repository"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
	"github.com/okulab/therapy-api/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 50
)

// Service records session telemetry and serves history and aggregates.
// Sessions are an append-only log: once recorded they are never mutated.
type Service struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	logger   *logger.Logger
}

func NewService(sessions repository.SessionRepository, users repository.UserRepository, logger *logger.Logger) *Service {
	return &Service{
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

// Record validates and persists one played session for the patient
func (s *Service) Record(ctx context.Context, patientID uuid.UUID, req *model.LogSessionRequest) (*model.Session, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}

	var prescriptionID *uuid.UUID
	if req.PrescriptionID != nil {
		id, err := uuid.Parse(*req.PrescriptionID)
		if err != nil {
			return nil, apperrors.ValidationField("prescription_id", "must be a valid UUID")
		}
		prescriptionID = &id
	}

	performanceData := model.JSONMap(req.PerformanceData)
	if performanceData == nil {
		performanceData = model.JSONMap{}
	}

	session := &model.Session{
		ID:              uuid.New(),
		PatientID:       patientID,
		PrescriptionID:  prescriptionID,
		ProtocolID:      req.ProtocolID,
		ProtocolName:    req.ProtocolName,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationSeconds: req.DurationSeconds,
		Score:           req.Score,
		Accuracy:        req.Accuracy,
		Status:          model.SessionStatus(req.Status),
		PerformanceData: performanceData,
	}

	event, err := recordedEvent(session)
	if err != nil {
		s.logger.Error(err, "failed to build session event")
		event = nil
	}

	if err := s.sessions.Create(ctx, session, event); err != nil {
		return nil, apperrors.Internal(err)
	}
	return session, nil
}

// History returns the patient's own sessions, newest first by default.
// Charting callers pass ascending=true for chronological order.
func (s *Service) History(ctx context.Context, patientID uuid.UUID, limit int, ascending bool) ([]*model.Session, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	sessions, err := s.sessions.ListByPatient(ctx, patientID, limit, ascending)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return sessions, nil
}

// HistoryFor serves a doctor reading an assigned patient's sessions
func (s *Service) HistoryFor(ctx context.Context, actor model.Actor, patientID uuid.UUID, limit int, ascending bool) ([]*model.Session, error) {
	if err := s.authorizeDoctor(ctx, actor, patientID); err != nil {
		return nil, err
	}
	return s.History(ctx, patientID, limit, ascending)
}

// Stats aggregates over the patient's full session log
func (s *Service) Stats(ctx context.Context, patientID uuid.UUID) (*model.SessionStats, error) {
	stats, err := s.sessions.Stats(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

// StatsFor serves a doctor reading an assigned patient's aggregates
func (s *Service) StatsFor(ctx context.Context, actor model.Actor, patientID uuid.UUID) (*model.SessionStats, error) {
	if err := s.authorizeDoctor(ctx, actor, patientID); err != nil {
		return nil, err
	}
	return s.Stats(ctx, patientID)
}

func (s *Service) authorizeDoctor(ctx context.Context, actor model.Actor, patientID uuid.UUID) error {
	patient, err := s.users.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient", err)
		}
		return apperrors.Internal(err)
	}
	if patient.AssignedDoctorID == nil || *patient.AssignedDoctorID != actor.UserID {
		return apperrors.Forbidden("patient is not assigned to you")
	}
	return nil
}

func validatePayload(req *model.LogSessionRequest) error {
	var fields []apperrors.FieldError

	if req.ProtocolID == "" {
		fields = append(fields, apperrors.FieldError{Field: "protocol_id", Message: "must not be empty"})
	}
	if !req.EndTime.After(req.StartTime) {
		fields = append(fields, apperrors.FieldError{Field: "end_time", Message: "must be after start time"})
	}
	if req.DurationSeconds < 0 {
		fields = append(fields, apperrors.FieldError{Field: "duration_seconds", Message: "must not be negative"})
	}
	if req.Accuracy < 0 || req.Accuracy > 100 {
		fields = append(fields, apperrors.FieldError{Field: "accuracy", Message: "must be between 0 and 100"})
	}
	switch model.SessionStatus(req.Status) {
	case model.SessionStatusCompleted, model.SessionStatusAborted, model.SessionStatusFailed:
	default:
		fields = append(fields, apperrors.FieldError{Field: "status", Message: "must be one of completed, aborted, failed"})
	}

	if len(fields) > 0 {
		return apperrors.Validation("invalid session payload", fields...)
	}
	return nil
}

func recordedEvent(sess *model.Session) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"session_id":  sess.ID,
		"patient_id":  sess.PatientID,
		"protocol_id": sess.ProtocolID,
		"status":      sess.Status,
	})
	if err != nil {
		return nil, err
	}
	return &model.OutboxEvent{
		EventType: model.EventSessionRecorded,
		Payload:   payload,
	}, nil
}
