package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/okulab/therapy-api/internal/model"
)

// Sentinel errors surfaced by repositories; services translate them
// into the API error taxonomy.
var (
	// ErrNotFound means the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrNotClaimed means the claim predicate did not match: the patient
	// row is missing or already has a doctor assigned
	ErrNotClaimed = errors.New("patient not claimed")
	// ErrDuplicateActive means a concurrent prescribe won the race for the
	// same (patient, protocol) key
	ErrDuplicateActive = errors.New("duplicate active prescription")
	// ErrDuplicateEmail means the email is already registered
	ErrDuplicateEmail = errors.New("email already registered")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListIntakeQueue(ctx context.Context) ([]*model.User, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.User, error)
	ListAll(ctx context.Context) ([]*model.User, error)
	// Claim atomically assigns the patient to the doctor, but only if no
	// doctor is assigned yet. Returns ErrNotClaimed when the predicate
	// does not match.
	Claim(ctx context.Context, patientID, doctorID uuid.UUID) (*model.User, error)
}

type PrescriptionRepository interface {
	// Prescribe deactivates the current active prescription for the
	// (patient, protocol) key and inserts the new one in a single
	// transaction. A lost race surfaces as ErrDuplicateActive.
	Prescribe(ctx context.Context, prescription *model.Prescription, event *model.OutboxEvent) error
	ListActive(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session, event *model.OutboxEvent) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int, ascending bool) ([]*model.Session, error)
	Stats(ctx context.Context, patientID uuid.UUID) (*model.SessionStats, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, lastError *string) error
}
