package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/selfplanner/internal/client/models"
	"github.com/dmitrijs2005/selfplanner/internal/client/storage"
	"github.com/dmitrijs2005/selfplanner/internal/logging"
)

const (
	// DefaultCooldown bounds how often a push may run.
	DefaultCooldown = time.Hour

	// DefaultProbeDelay is how long the health probe waits between
	// attempts.
	DefaultProbeDelay = 3 * time.Second
)

// CooldownError reports that a push came too early and how long the
// caller has to wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d more seconds to sync", int(e.Remaining.Seconds()+0.999))
}

// RemoteSyncer is the slice of the API client the sync workflow uses.
type RemoteSyncer interface {
	Health(ctx context.Context) error
	Push(ctx context.Context, payload models.SyncPayload) error
	Pull(ctx context.Context, userID string) (map[string]models.PlannerDocument, error)
}

// SyncService mirrors the session user's full dataset to and from the
// remote service. It is not authoritative and does no merging: a push
// sends everything, a pull overwrites per date, last writer wins.
type SyncService struct {
	remote   RemoteSyncer
	store    *storage.Store
	log      logging.Logger
	cooldown time.Duration
	ready    atomic.Bool
	now      func() time.Time
}

func NewSyncService(remote RemoteSyncer, store *storage.Store, log logging.Logger, cooldown time.Duration) *SyncService {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &SyncService{
		remote:   remote,
		store:    store,
		log:      log,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Remaining returns how much of the cooldown is left, 0 when a push is
// allowed. The last-sync time survives restarts: it lives in storage.
func (s *SyncService) Remaining(ctx context.Context) time.Duration {
	last := s.store.LastSync(ctx)
	if last.IsZero() {
		return 0
	}
	remaining := s.cooldown - s.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Push gathers every stored date of the session user into one
// aggregate and ships it in a single request. A push inside the
// cooldown window is rejected locally with a CooldownError and no
// network call. The cooldown restarts only on a successful response;
// failures leave all local state untouched.
func (s *SyncService) Push(ctx context.Context) error {
	user := s.store.Session(ctx)
	if user == nil {
		return ErrNotLoggedIn
	}

	if remaining := s.Remaining(ctx); remaining > 0 {
		return &CooldownError{Remaining: remaining}
	}

	dates := s.store.ListPlannerDates(ctx, user.ID)
	planner := make(map[string]models.PlannerDocument, len(dates))
	for _, date := range dates {
		planner[date] = s.store.PlannerDocument(ctx, user.ID, date)
	}

	payload := models.SyncPayload{User: *user, Planner: planner}
	if err := s.remote.Push(ctx, payload); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if err := s.store.SetLastSync(ctx, s.now()); err != nil {
		return err
	}
	s.log.Info(ctx, "planner pushed", "user", user.ID, "dates", len(dates))
	return nil
}

// Pull fetches the remote aggregate for the session user and writes
// each returned date's document into local storage, overwriting
// whatever is there. On failure local data is untouched.
func (s *SyncService) Pull(ctx context.Context) (int, error) {
	user := s.store.Session(ctx)
	if user == nil {
		return 0, ErrNotLoggedIn
	}

	planner, err := s.remote.Pull(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load planner: %w", err)
	}

	for date, doc := range planner {
		if err := s.store.SavePlannerDocument(ctx, user.ID, date, doc); err != nil {
			return 0, err
		}
	}
	s.log.Info(ctx, "planner loaded", "user", user.ID, "dates", len(planner))
	return len(planner), nil
}

// Ready reports whether the readiness probe has seen the server up.
func (s *SyncService) Ready() bool {
	return s.ready.Load()
}

// RunHealthProbe polls the server until it answers, waiting delay
// between attempts, then marks the service ready and returns. Probe
// failures are never surfaced as errors; the only ways out are a
// healthy server or ctx cancellation. Run it in its own goroutine tied
// to the app's lifetime.
func (s *SyncService) RunHealthProbe(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		delay = DefaultProbeDelay
	}
	for {
		err := s.remote.Health(ctx)
		if err == nil {
			s.ready.Store(true)
			s.log.Debug(ctx, "server ready")
			return
		}
		s.log.Debug(ctx, "server not ready, retrying", "delay", delay, "err", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
