package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/repository"
)

type prescriptionRepository struct {
	db *sqlx.DB
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

// Prescribe deactivates the current active row for (patient, protocol) and
// inserts the replacement inside one transaction. The partial unique index
// uq_prescriptions_active serializes concurrent calls for the same key: the
// loser's insert fails with a unique violation, which we report as a
// conflict instead of ending up with two active rows. Calls for different
// keys touch different index entries and never contend.
func (r *prescriptionRepository) Prescribe(ctx context.Context, prescription *model.Prescription, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deactivate := `
		UPDATE prescriptions
		SET is_active = FALSE, updated_at = $1
		WHERE patient_id = $2 AND protocol_id = $3 AND is_active = TRUE
	`
	if _, err := tx.ExecContext(ctx, deactivate,
		time.Now(),
		prescription.PatientID,
		prescription.ProtocolID,
	); err != nil {
		return fmt.Errorf("failed to deactivate previous prescription: %w", err)
	}

	insert := `
		INSERT INTO prescriptions (id, patient_id, doctor_id, protocol_id, protocol_name,
			duration_seconds, config, clinical_note, is_active, created_at, updated_at)
		VALUES (:id, :patient_id, :doctor_id, :protocol_id, :protocol_name,
			:duration_seconds, :config, :clinical_note, :is_active, :created_at, :updated_at)
	`
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = time.Now()
	prescription.IsActive = true

	if _, err := tx.NamedExecContext(ctx, insert, prescription); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateActive
		}
		return fmt.Errorf("failed to insert prescription: %w", err)
	}

	if event != nil {
		if err := insertOutboxTx(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListActive(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT * FROM prescriptions
		WHERE patient_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`
	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list active prescriptions: %w", err)
	}
	return prescriptions, nil
}
