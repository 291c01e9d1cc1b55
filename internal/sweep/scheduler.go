package sweep

import (
	"sync"
	"time"

	"auctionhub/utils"
)

// Default job intervals: close expired auctions every minute, remind about
// ending ones every five.
const (
	DefaultCloseInterval  = time.Minute
	DefaultRemindInterval = 5 * time.Minute
)

// Scheduler owns the background sweep lifecycle. Each job runs on its own
// ticker goroutine with a sequential loop, so two passes of the same job can
// never overlap and every expired listing is settled exactly once.
type Scheduler struct {
	sweeper        *Sweeper
	closeInterval  time.Duration
	remindInterval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewScheduler creates a Scheduler around a Sweeper. Non-positive intervals
// fall back to the defaults.
func NewScheduler(sweeper *Sweeper, closeInterval, remindInterval time.Duration) *Scheduler {
	if closeInterval <= 0 {
		closeInterval = DefaultCloseInterval
	}
	if remindInterval <= 0 {
		remindInterval = DefaultRemindInterval
	}
	return &Scheduler{
		sweeper:        sweeper,
		closeInterval:  closeInterval,
		remindInterval: remindInterval,
	}
}

// Start launches the background jobs. Calling Start on a running scheduler is
// a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.runEvery(s.closeInterval, "close_expired", func() error {
		closed, err := s.sweeper.CloseExpiredAuctions()
		if closed > 0 {
			utils.Info("sweep pass closed auctions", map[string]any{"closed": closed})
		}
		return err
	})
	s.runEvery(s.remindInterval, "ending_soon", func() error {
		_, err := s.sweeper.NotifyEndingSoon()
		return err
	})

	utils.Info("sweep scheduler started", map[string]any{
		"close_interval":  s.closeInterval.String(),
		"remind_interval": s.remindInterval.String(),
	})
}

// runEvery runs job on every tick until Stop. Errors are logged and the job
// simply retries on the next tick.
func (s *Scheduler) runEvery(interval time.Duration, name string, job func() error) {
	stop := s.stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := job(); err != nil {
					utils.Error("sweep job failed", map[string]any{
						"job":   name,
						"error": err.Error(),
					})
				}
			}
		}
	}()
}

// Stop halts the background jobs and waits for in-flight passes to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	utils.Info("sweep scheduler stopped", nil)
}
