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

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sessions (id, patient_id, prescription_id, protocol_id, protocol_name,
			start_time, end_time, duration_seconds, score, accuracy, status,
			performance_data, created_at)
		VALUES (:id, :patient_id, :prescription_id, :protocol_id, :protocol_name,
			:start_time, :end_time, :duration_seconds, :score, :accuracy, :status,
			:performance_data, :created_at)
	`
	session.CreatedAt = time.Now()

	if _, err := tx.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if event != nil {
		if err := insertOutboxTx(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

func (r *sessionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int, ascending bool) ([]*model.Session, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := fmt.Sprintf(`
		SELECT * FROM sessions
		WHERE patient_id = $1
		ORDER BY created_at %s
		LIMIT $2
	`, order)

	var sessions []*model.Session
	if err := r.db.SelectContext(ctx, &sessions, query, patientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *sessionRepository) Stats(ctx context.Context, patientID uuid.UUID) (*model.SessionStats, error) {
	query := `
		SELECT COUNT(*) AS count,
			COALESCE(AVG(accuracy), 0) AS mean_accuracy,
			COALESCE(MAX(score), 0) AS max_score
		FROM sessions
		WHERE patient_id = $1
	`
	var stats model.SessionStats
	if err := r.db.GetContext(ctx, &stats, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to compute session stats: %w", err)
	}
	return &stats, nil
}
