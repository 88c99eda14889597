package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/internal/repository"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
	"github.com/okulab/therapy-api/pkg/logger"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*model.Session
	events   []*model.OutboxEvent
}

func (r *fakeSessionRepo) Create(_ context.Context, session *model.Session, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.CreatedAt = time.Now()
	r.sessions = append(r.sessions, session)
	if event != nil {
		r.events = append(r.events, event)
	}
	return nil
}

func (r *fakeSessionRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit int, ascending bool) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.Session
	for _, s := range r.sessions {
		if s.PatientID == patientID {
			matched = append(matched, s)
		}
	}
	if !ascending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeSessionRepo) Stats(_ context.Context, patientID uuid.UUID) (*model.SessionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &model.SessionStats{}
	var accuracySum float64
	for _, s := range r.sessions {
		if s.PatientID != patientID {
			continue
		}
		stats.Count++
		accuracySum += s.Accuracy
		if s.Score > stats.MaxScore {
			stats.MaxScore = s.Score
		}
	}
	if stats.Count > 0 {
		stats.MeanAccuracy = accuracySum / float64(stats.Count)
	}
	return stats, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(context.Context, *model.User) error { return nil }

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(context.Context, *model.User) error { return nil }

func (r *fakeUserRepo) ListIntakeQueue(context.Context) ([]*model.User, error) { return nil, nil }

func (r *fakeUserRepo) ListByDoctor(context.Context, uuid.UUID) ([]*model.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListAll(context.Context) ([]*model.User, error) { return nil, nil }

func (r *fakeUserRepo) Claim(context.Context, uuid.UUID, uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotClaimed
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func newTestService(sessions *fakeSessionRepo, users map[uuid.UUID]*model.User) *Service {
	return NewService(sessions, &fakeUserRepo{users: users}, testLogger())
}

func validRequest() *model.LogSessionRequest {
	start := time.Now().Add(-5 * time.Minute)
	return &model.LogSessionRequest{
		ProtocolID:      "space-pursuits",
		ProtocolName:    "Space Pursuits",
		StartTime:       start,
		EndTime:         start.Add(5 * time.Minute),
		DurationSeconds: 300,
		Score:           120,
		Accuracy:        85,
		Status:          "completed",
	}
}

func TestRecordPersistsSession(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestService(repo, nil)
	patientID := uuid.New()

	sess, err := svc.Record(context.Background(), patientID, validRequest())
	require.NoError(t, err)

	assert.Equal(t, patientID, sess.PatientID)
	assert.Equal(t, model.SessionStatusCompleted, sess.Status)
	assert.NotNil(t, sess.PerformanceData)
	assert.Len(t, repo.events, 1)
}

func TestRecordRejectsAccuracyOverHundred(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestService(repo, nil)

	req := validRequest()
	req.Accuracy = 150

	_, err := svc.Record(context.Background(), uuid.New(), req)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "accuracy", appErr.Fields[0].Field)
	assert.Empty(t, repo.sessions)
}

func TestRecordRejectsEndBeforeStart(t *testing.T) {
	svc := newTestService(&fakeSessionRepo{}, nil)

	req := validRequest()
	req.EndTime = req.StartTime.Add(-time.Minute)

	_, err := svc.Record(context.Background(), uuid.New(), req)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "end_time", appErr.Fields[0].Field)
}

func TestRecordRejectsEqualTimestamps(t *testing.T) {
	svc := newTestService(&fakeSessionRepo{}, nil)

	req := validRequest()
	req.EndTime = req.StartTime

	_, err := svc.Record(context.Background(), uuid.New(), req)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "end_time", appErr.Fields[0].Field)
}

func TestRecordRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(&fakeSessionRepo{}, nil)

	req := validRequest()
	req.Status = "paused"

	_, err := svc.Record(context.Background(), uuid.New(), req)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "status", appErr.Fields[0].Field)
}

func TestRecordCollectsAllFieldErrors(t *testing.T) {
	svc := newTestService(&fakeSessionRepo{}, nil)

	start := time.Now()
	req := &model.LogSessionRequest{
		ProtocolID:      "",
		StartTime:       start,
		EndTime:         start,
		DurationSeconds: -10,
		Accuracy:        -5,
		Status:          "maybe",
	}

	_, err := svc.Record(context.Background(), uuid.New(), req)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 5)
}

func TestRecordRejectsMalformedPrescriptionID(t *testing.T) {
	svc := newTestService(&fakeSessionRepo{}, nil)

	req := validRequest()
	bad := "not-a-uuid"
	req.PrescriptionID = &bad

	_, err := svc.Record(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}

func TestStatsAggregates(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestService(repo, nil)
	patientID := uuid.New()

	for _, tc := range []struct {
		score    float64
		accuracy float64
	}{
		{score: 100, accuracy: 90},
		{score: 200, accuracy: 80},
		{score: 150, accuracy: 70},
	} {
		req := validRequest()
		req.Score = tc.score
		req.Accuracy = tc.accuracy
		_, err := svc.Record(context.Background(), patientID, req)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), patientID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.InDelta(t, 80.0, stats.MeanAccuracy, 0.001)
	assert.Equal(t, 200.0, stats.MaxScore)
}

func TestStatsEmptyHistory(t *testing.T) {
	svc := newTestService(&fakeSessionRepo{}, nil)

	stats, err := svc.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Count)
	assert.Equal(t, 0.0, stats.MeanAccuracy)
	assert.Equal(t, 0.0, stats.MaxScore)
}

func TestHistoryNewestFirstByDefault(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestService(repo, nil)
	patientID := uuid.New()

	for i := 0; i < 3; i++ {
		req := validRequest()
		req.Score = float64(i)
		_, err := svc.Record(context.Background(), patientID, req)
		require.NoError(t, err)
	}

	sessions, err := svc.History(context.Background(), patientID, 0, false)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, 2.0, sessions[0].Score)
	assert.Equal(t, 0.0, sessions[2].Score)

	ascending, err := svc.History(context.Background(), patientID, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ascending[0].Score)
}

func TestHistoryLimitCapped(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestService(repo, nil)
	patientID := uuid.New()

	for i := 0; i < 60; i++ {
		_, err := svc.Record(context.Background(), patientID, validRequest())
		require.NoError(t, err)
	}

	sessions, err := svc.History(context.Background(), patientID, 0, false)
	require.NoError(t, err)
	assert.Len(t, sessions, defaultHistoryLimit)

	sessions, err = svc.History(context.Background(), patientID, 1000, false)
	require.NoError(t, err)
	assert.Len(t, sessions, maxHistoryLimit)
}

func TestHistoryForRequiresAssignment(t *testing.T) {
	doctorID := uuid.New()
	otherDoctorID := uuid.New()
	patient := &model.User{
		Base:             model.Base{ID: uuid.New()},
		Role:             model.RolePatient,
		AssignedDoctorID: &doctorID,
	}
	svc := newTestService(&fakeSessionRepo{}, map[uuid.UUID]*model.User{patient.ID: patient})

	_, err := svc.HistoryFor(context.Background(), model.Actor{UserID: doctorID, Role: model.RoleDoctor}, patient.ID, 0, false)
	assert.NoError(t, err)

	_, err = svc.HistoryFor(context.Background(), model.Actor{UserID: otherDoctorID, Role: model.RoleDoctor}, patient.ID, 0, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestStatsForUnknownPatient(t *testing.T) {
	svc := newTestService(&fakeSessionRepo{}, nil)

	_, err := svc.StatsFor(context.Background(), model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
