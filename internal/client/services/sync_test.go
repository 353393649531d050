package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/selfplanner/internal/client/models"
	"github.com/dmitrijs2005/selfplanner/internal/logging"
	"github.com/dmitrijs2005/selfplanner/internal/planner"
)

// stubSyncer records calls and plays back canned results. Health fails
// healthFails times, then succeeds.
type stubSyncer struct {
	healthFails int
	healthN     int
	pushErr     error
	pushCalls   []models.SyncPayload
	pullResult  map[string]models.PlannerDocument
	pullErr     error
}

func (s *stubSyncer) Health(_ context.Context) error {
	s.healthN++
	if s.healthN <= s.healthFails {
		return errors.New("connection refused")
	}
	return nil
}

func (s *stubSyncer) Push(_ context.Context, payload models.SyncPayload) error {
	s.pushCalls = append(s.pushCalls, payload)
	return s.pushErr
}

func (s *stubSyncer) Pull(_ context.Context, _ string) (map[string]models.PlannerDocument, error) {
	return s.pullResult, s.pullErr
}

func newSyncService(t *testing.T, remote *stubSyncer) *SyncService {
	t.Helper()
	store := newStore(t)
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewSyncService(remote, store, log, DefaultCooldown)
}

func login(t *testing.T, s *SyncService) models.User {
	t.Helper()
	ctx := context.Background()
	user, err := s.store.SaveUser(ctx, models.User{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, s.store.SetSession(ctx, user))
	return user
}

func TestPush_RequiresSession(t *testing.T) {
	svc := newSyncService(t, &stubSyncer{})
	err := svc.Push(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestPush_AggregatesAllDates(t *testing.T) {
	remote := &stubSyncer{}
	svc := newSyncService(t, remote)
	ctx := context.Background()
	user := login(t, svc)

	doc := models.PlannerDocument{Tasks: models.TimeSlotMap{
		planner.DefaultSlot: {Subtasks: []models.Subtask{{Text: "Read"}}},
	}}
	require.NoError(t, svc.store.SavePlannerDocument(ctx, user.ID, "2025-03-01", doc))
	require.NoError(t, svc.store.SavePlannerDocument(ctx, user.ID, "2025-03-02", doc))

	require.NoError(t, svc.Push(ctx))
	require.Len(t, remote.pushCalls, 1)

	payload := remote.pushCalls[0]
	assert.Equal(t, user.ID, payload.User.ID)
	assert.Len(t, payload.Planner, 2)
	assert.Contains(t, payload.Planner, "2025-03-01")
	assert.Contains(t, payload.Planner, "2025-03-02")
}

func TestPush_CooldownBlocksSecondCall(t *testing.T) {
	remote := &stubSyncer{}
	svc := newSyncService(t, remote)
	ctx := context.Background()
	login(t, svc)

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	require.NoError(t, svc.Push(ctx))
	require.Len(t, remote.pushCalls, 1)

	// ten minutes later: rejected locally, no network request
	clock = clock.Add(10 * time.Minute)
	err := svc.Push(ctx)
	var cdErr *CooldownError
	require.ErrorAs(t, err, &cdErr)
	assert.Equal(t, 50*time.Minute, cdErr.Remaining)
	assert.Len(t, remote.pushCalls, 1)

	// past the window: exactly one more request
	clock = clock.Add(51 * time.Minute)
	require.NoError(t, svc.Push(ctx))
	assert.Len(t, remote.pushCalls, 2)
}

func TestPush_FailureLeavesCooldownUntouched(t *testing.T) {
	remote := &stubSyncer{pushErr: errors.New("boom")}
	svc := newSyncService(t, remote)
	ctx := context.Background()
	login(t, svc)

	err := svc.Push(ctx)
	require.Error(t, err)
	var cdErr *CooldownError
	assert.False(t, errors.As(err, &cdErr))

	// a failed push must not start the cooldown
	assert.Zero(t, svc.Remaining(ctx))
	remote.pushErr = nil
	require.NoError(t, svc.Push(ctx))
	assert.Len(t, remote.pushCalls, 2)
}

func TestPull_OverwritesPerDate(t *testing.T) {
	day := models.PlannerDocument{Tasks: models.TimeSlotMap{
		"Evening (6:00 PM - 8:00 PM)": {Subtasks: []models.Subtask{{Text: "Gym", Done: true}}},
	}}
	remote := &stubSyncer{pullResult: map[string]models.PlannerDocument{"2025-03-01": day}}
	svc := newSyncService(t, remote)
	ctx := context.Background()
	user := login(t, svc)

	stale := models.PlannerDocument{Tasks: models.TimeSlotMap{
		"Old (1:00 PM - 2:00 PM)": {Subtasks: []models.Subtask{{Text: "Stale"}}},
	}}
	require.NoError(t, svc.store.SavePlannerDocument(ctx, user.ID, "2025-03-01", stale))

	n, err := svc.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := svc.store.PlannerDocument(ctx, user.ID, "2025-03-01")
	assert.NotContains(t, got.Tasks, "Old (1:00 PM - 2:00 PM)")
	require.Contains(t, got.Tasks, "Evening (6:00 PM - 8:00 PM)")
	assert.True(t, got.Tasks["Evening (6:00 PM - 8:00 PM)"].Subtasks[0].Done)
}

func TestPull_FailureLeavesLocalDataUntouched(t *testing.T) {
	remote := &stubSyncer{pullErr: errors.New("boom")}
	svc := newSyncService(t, remote)
	ctx := context.Background()
	user := login(t, svc)

	doc := models.PlannerDocument{Tasks: models.TimeSlotMap{
		planner.DefaultSlot: {Subtasks: []models.Subtask{{Text: "Keep me"}}},
	}}
	require.NoError(t, svc.store.SavePlannerDocument(ctx, user.ID, "2025-03-01", doc))

	_, err := svc.Pull(ctx)
	require.Error(t, err)
	assert.Len(t, svc.store.PlannerDocument(ctx, user.ID, "2025-03-01").Tasks, 1)
}

func TestRunHealthProbe_RetriesUntilHealthy(t *testing.T) {
	remote := &stubSyncer{healthFails: 2}
	svc := newSyncService(t, remote)
	assert.False(t, svc.Ready())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.RunHealthProbe(ctx, time.Millisecond)

	assert.True(t, svc.Ready())
	assert.Equal(t, 3, remote.healthN, "two failures then a success")
}

func TestRunHealthProbe_StopsOnCancel(t *testing.T) {
	remote := &stubSyncer{healthFails: 1 << 20}
	svc := newSyncService(t, remote)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.RunHealthProbe(ctx, time.Millisecond)

	assert.False(t, svc.Ready())
}
