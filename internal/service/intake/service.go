package intake

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/repository"
	"github.com/okulab/therapy-api/internal/service/notification"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
	"github.com/okulab/therapy-api/pkg/logger"
)

// Service coordinates the intake queue and the claim transition
type Service struct {
	users    repository.UserRepository
	outbox   repository.OutboxRepository
	notifier *notification.Service
	logger   *logger.Logger
}

func NewService(users repository.UserRepository, outbox repository.OutboxRepository, notifier *notification.Service, logger *logger.Logger) *Service {
	return &Service{
		users:    users,
		outbox:   outbox,
		notifier: notifier,
		logger:   logger,
	}
}

// ListQueue returns unclaimed pending patients, oldest registration first
func (s *Service) ListQueue(ctx context.Context) ([]*model.User, error) {
	patients, err := s.users.ListIntakeQueue(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

// MyPatients returns the doctor's assigned roster, newest first
func (s *Service) MyPatients(ctx context.Context, doctorID uuid.UUID) ([]*model.User, error) {
	patients, err := s.users.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

// Claim assigns the patient to the doctor. The check and the write are a
// single conditional update in the repository; when two doctors race,
// exactly one wins and the other gets a conflict.
func (s *Service) Claim(ctx context.Context, actor model.Actor, patientID uuid.UUID) (*model.User, error) {
	patient, err := s.users.Claim(ctx, patientID, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotClaimed) {
			// Predicate failed: distinguish a missing patient from a lost race
			if _, getErr := s.users.Get(ctx, patientID); getErr != nil {
				if errors.Is(getErr, repository.ErrNotFound) {
					return nil, apperrors.NotFound("patient", getErr)
				}
				return nil, apperrors.Internal(getErr)
			}
			return nil, apperrors.Conflict("patient already claimed")
		}
		return nil, apperrors.Internal(err)
	}

	s.emitClaimed(ctx, patient, actor.UserID)
	return patient, nil
}

type claimedEvent struct {
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

func (s *Service) emitClaimed(ctx context.Context, patient *model.User, doctorID uuid.UUID) {
	payload, err := json.Marshal(claimedEvent{
		PatientID: patient.ID,
		DoctorID:  doctorID,
		ClaimedAt: time.Now(),
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal claim event")
		return
	}

	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: model.EventPatientClaimed,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to stage claim event", "patient_id", patient.ID.String())
	}

	if doctor, err := s.users.Get(ctx, doctorID); err == nil {
		s.notifier.NotifyClaimed(patient, doctor)
	}
}
