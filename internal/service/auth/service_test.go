package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/repository"
	pkgauth "github.com/okulab/therapy-api/pkg/auth"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) ListIntakeQueue(context.Context) ([]*model.User, error) { return nil, nil }

func (r *fakeUserRepo) ListByDoctor(context.Context, uuid.UUID) ([]*model.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.User
	for _, u := range r.users {
		copied := *u
		all = append(all, &copied)
	}
	return all, nil
}

func (r *fakeUserRepo) Claim(context.Context, uuid.UUID, uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotClaimed
}

func newTestService(repo *fakeUserRepo) *Service {
	jwtSvc := pkgauth.NewJWTService("test-secret", time.Hour, "okulab-test")
	return NewService(repo, jwtSvc)
}

func TestRegisterCreatesPendingPatient(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@patients.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RolePatient, user.Role)
	assert.Equal(t, model.IntakeStatusPending, user.IntakeStatus)
	assert.Nil(t, user.AssignedDoctorID)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	req := &model.RegisterRequest{Name: "Ana", Email: "ana@patients.test", Password: "secret123"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestLoginIssuesToken(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@patients.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "ana@patients.test",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "ana@patients.test", resp.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@patients.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "ana@patients.test",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "ghost@patients.test",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestUpdateTriage(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@patients.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTriage(context.Background(), model.Actor{UserID: user.ID, Role: model.RolePatient}, &model.TriageRequest{
		MedicalCondition: "Convergence insufficiency",
		Severity:         "high",
	})
	require.NoError(t, err)
	assert.Equal(t, "Convergence insufficiency", updated.MedicalCondition)
	assert.Equal(t, model.SeverityHigh, updated.Severity)
}

func TestDoctorVerificationFlow(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Reyes",
		Email:    "reyes@clinic.test",
		Password: "secret123",
	})
	require.NoError(t, err)
	actor := model.Actor{UserID: user.ID, Role: model.RolePatient}

	applied, err := svc.ApplyForDoctor(context.Background(), actor, &model.ApplyDoctorRequest{
		LicenseNumber:  "LIC-1234",
		Specialization: "Orthoptics",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusPending, applied.VerificationStatus)

	// A second application while pending is rejected
	_, err = svc.ApplyForDoctor(context.Background(), actor, &model.ApplyDoctorRequest{
		LicenseNumber:  "LIC-1234",
		Specialization: "Orthoptics",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	approved, err := svc.ApproveDoctor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, approved.Role)
	assert.Equal(t, model.VerificationStatusApproved, approved.VerificationStatus)
}

func TestApproveDoctorWithoutApplication(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@patients.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ApproveDoctor(context.Background(), user.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestGetUserNotFound(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.GetUser(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestTokenExpiryDefaults(t *testing.T) {
	assert.Equal(t, 24*time.Hour, TokenExpiry(0))
	assert.Equal(t, 72*time.Hour, TokenExpiry(72))
}
