package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/repository"
	"github.com/okulab/therapy-api/pkg/auth"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
	"github.com/okulab/therapy-api/pkg/security"
)

const bcryptCost = 12

// Service handles registration, login and the doctor verification flow
type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	jwt    auth.JWTService
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		users:  users,
		hasher: security.NewBcryptHasher(bcryptCost),
		jwt:    jwtSvc,
	}
}

// Register creates a patient account. New accounts always enter the
// intake queue as unassigned patients.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		Base: model.Base{
			ID: uuid.New(),
		},
		Name:               req.Name,
		Email:              req.Email,
		PasswordHash:       hash,
		Role:               model.RolePatient,
		MedicalCondition:   "General Checkup",
		Severity:           model.SeverityLow,
		IntakeStatus:       model.IntakeStatusPending,
		VerificationStatus: model.VerificationStatusIdle,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	return &model.TokenResponse{
		AccessToken: token,
		User:        user,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// UpdateTriage records the patient's self-reported condition while they
// wait in the intake queue.
func (s *Service) UpdateTriage(ctx context.Context, actor model.Actor, req *model.TriageRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	user.MedicalCondition = req.MedicalCondition
	user.Severity = model.Severity(req.Severity)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// ApplyForDoctor moves a patient's verification state to pending
func (s *Service) ApplyForDoctor(ctx context.Context, actor model.Actor, req *model.ApplyDoctorRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if user.Role == model.RoleDoctor {
		return nil, apperrors.Conflict("user is already a doctor")
	}
	if user.VerificationStatus == model.VerificationStatusPending {
		return nil, apperrors.Conflict("application already pending")
	}

	user.VerificationStatus = model.VerificationStatusPending
	user.LicenseNumber = &req.LicenseNumber
	user.Specialization = &req.Specialization

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// ApproveDoctor flips an applicant to the doctor role
func (s *Service) ApproveDoctor(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.VerificationStatus != model.VerificationStatusPending {
		return nil, apperrors.Conflict("user has not applied for doctor access")
	}

	user.Role = model.RoleDoctor
	user.VerificationStatus = model.VerificationStatusApproved

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

// TokenExpiry converts configured hours into a duration
func TokenExpiry(hours int) time.Duration {
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}
