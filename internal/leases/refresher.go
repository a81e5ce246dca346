package leases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Refresher periodically reclassifies every active lease so period
// statuses, penalties and lease expiry stay current without waiting for
// a read.
type Refresher struct {
	service *Service
	logger  zerolog.Logger

	interval time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	lastRun  time.Time
	nextRun  time.Time
}

// DefaultRefreshInterval is how often statuses are recomputed. Statuses
// only change at day boundaries, so hourly is already generous.
const DefaultRefreshInterval = time.Hour

// NewRefresher creates a status refresher for the given service.
func NewRefresher(service *Service, interval time.Duration, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		service:  service,
		logger:   logger.With().Str("component", "LeaseRefresher").Logger(),
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start starts the refresh loop.
func (r *Refresher) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher already running")
	}
	r.running = true
	r.mu.Unlock()

	r.logger.Info().Dur("interval", r.interval).Msg("Starting lease status refresher")

	r.wg.Add(1)
	go r.runLoop()

	return nil
}

// Stop stops the refresh loop and waits for an in-flight sweep to finish.
func (r *Refresher) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()

	r.logger.Info().Msg("Stopping lease status refresher")
	close(r.stopChan)
	r.wg.Wait()

	return nil
}

// IsRunning returns whether the refresher is running.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// GetStatus returns the refresher status for the health endpoint.
func (r *Refresher) GetStatus() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	return map[string]interface{}{
		"running":  r.running,
		"interval": r.interval.String(),
		"last_run": r.lastRun,
		"next_run": r.nextRun,
	}
}

func (r *Refresher) runLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Initial sweep on startup
	r.runOnce()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.runOnce()
		}
	}
}

func (r *Refresher) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	started := time.Now().UTC()

	r.mu.Lock()
	r.lastRun = started
	r.nextRun = started.Add(r.interval)
	r.mu.Unlock()

	if err := r.service.RefreshAll(ctx); err != nil {
		r.logger.Error().Err(err).Msg("Lease refresh sweep failed")
		return
	}

	r.logger.Info().Dur("took", time.Since(started)).Msg("Lease refresh sweep complete")
}

// RunNow triggers a single sweep immediately, outside the schedule.
func (r *Refresher) RunNow(ctx context.Context) error {
	r.mu.Lock()
	r.lastRun = time.Now().UTC()
	r.mu.Unlock()

	return r.service.RefreshAll(ctx)
}
