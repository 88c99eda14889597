package therapy

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/protocol"
	"github.com/okulab/therapy-api/internal/repository"
	"github.com/okulab/therapy-api/internal/service/notification"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
	"github.com/okulab/therapy-api/pkg/logger"
)

const defaultDurationSeconds = 300

// Service owns the prescription lifecycle: one active prescription per
// (patient, protocol), previous versions kept for audit.
type Service struct {
	prescriptions repository.PrescriptionRepository
	users         repository.UserRepository
	registry      *protocol.Registry
	notifier      *notification.Service
	logger        *logger.Logger
}

func NewService(
	prescriptions repository.PrescriptionRepository,
	users repository.UserRepository,
	registry *protocol.Registry,
	notifier *notification.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		prescriptions: prescriptions,
		users:         users,
		registry:      registry,
		notifier:      notifier,
		logger:        logger,
	}
}

// Catalog lists the known protocols with their default configs
func (s *Service) Catalog() []protocol.CatalogEntry {
	return s.registry.Catalog()
}

// Prescribe validates the config against the protocol's schema and
// supersedes any active prescription for the same (patient, protocol)
// key. The deactivate+insert pair runs in one transaction; the caller
// must be the patient's assigned doctor.
func (s *Service) Prescribe(ctx context.Context, actor model.Actor, req *model.PrescribeRequest) (*model.Prescription, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.ValidationField("patient_id", "must be a valid UUID")
	}

	patient, err := s.users.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}

	if patient.AssignedDoctorID == nil || *patient.AssignedDoctorID != actor.UserID {
		return nil, apperrors.Forbidden("patient is not assigned to you")
	}

	def, err := s.registry.Get(req.ProtocolID)
	if err != nil {
		return nil, err
	}
	config, err := def.Validate(req.Config)
	if err != nil {
		return nil, err
	}

	duration := req.DurationSeconds
	if duration == 0 {
		duration = defaultDurationSeconds
	}

	prescription := &model.Prescription{
		Base: model.Base{
			ID: uuid.New(),
		},
		PatientID:       patientID,
		DoctorID:        actor.UserID,
		ProtocolID:      def.ID,
		ProtocolName:    def.Name,
		DurationSeconds: duration,
		Config:          config,
		ClinicalNote:    req.ClinicalNote,
		IsActive:        true,
	}

	event, err := prescribedEvent(prescription)
	if err != nil {
		s.logger.Error(err, "failed to build prescription event")
		event = nil
	}

	if err := s.prescriptions.Prescribe(ctx, prescription, event); err != nil {
		if errors.Is(err, repository.ErrDuplicateActive) {
			return nil, apperrors.Conflict("a concurrent prescription for this protocol was just created")
		}
		return nil, apperrors.Internal(err)
	}

	s.notifier.NotifyPrescribed(patient, prescription)
	return prescription, nil
}

// ListActive returns the patient's active prescriptions, newest first
func (s *Service) ListActive(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	prescriptions, err := s.prescriptions.ListActive(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return prescriptions, nil
}

func prescribedEvent(p *model.Prescription) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"prescription_id": p.ID,
		"patient_id":      p.PatientID,
		"doctor_id":       p.DoctorID,
		"protocol_id":     p.ProtocolID,
	})
	if err != nil {
		return nil, err
	}
	return &model.OutboxEvent{
		EventType: model.EventPrescriptionCreated,
		Payload:   payload,
	}, nil
}
