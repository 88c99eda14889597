package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, assigned_doctor_id,
			medical_condition, severity, intake_status, verification_status,
			license_number, specialization, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :role, :assigned_doctor_id,
			:medical_condition, :severity, :intake_status, :verification_status,
			:license_number, :specialization, :created_at, :updated_at)
	`
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM users WHERE id = $1`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM users WHERE email = $1`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET name = :name, email = :email, role = :role,
			medical_condition = :medical_condition, severity = :severity,
			verification_status = :verification_status,
			license_number = :license_number, specialization = :specialization,
			updated_at = :updated_at
		WHERE id = :id
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) ListIntakeQueue(ctx context.Context) ([]*model.User, error) {
	// FIFO by registration time
	query := `
		SELECT * FROM users
		WHERE role = $1 AND assigned_doctor_id IS NULL AND intake_status = $2
		ORDER BY created_at ASC
	`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, model.RolePatient, model.IntakeStatusPending); err != nil {
		return nil, fmt.Errorf("failed to list intake queue: %w", err)
	}
	return users, nil
}

func (r *userRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.User, error) {
	query := `
		SELECT * FROM users
		WHERE role = $1 AND assigned_doctor_id = $2
		ORDER BY created_at DESC
	`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, model.RolePatient, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list patients for doctor: %w", err)
	}
	return users, nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	query := `SELECT * FROM users ORDER BY created_at DESC`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Claim is the one place two actors race for the same row. The guard and
// the mutation are a single conditional UPDATE so the check and the write
// cannot interleave with a concurrent claim.
func (r *userRepository) Claim(ctx context.Context, patientID, doctorID uuid.UUID) (*model.User, error) {
	query := `
		UPDATE users
		SET assigned_doctor_id = $1, intake_status = $2, updated_at = $3
		WHERE id = $4 AND role = $5 AND assigned_doctor_id IS NULL
		RETURNING *
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query,
		doctorID,
		model.IntakeStatusAssigned,
		time.Now(),
		patientID,
		model.RolePatient,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotClaimed
		}
		return nil, fmt.Errorf("failed to claim patient: %w", err)
	}
	return &user, nil
}
