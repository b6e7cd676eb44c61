package scheduler

import (
	"time"

	"github.com/banglehouse/bangles-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// IdleEvicter drops in-memory sessions idle for longer than maxIdle and
// reports how many it dropped. The cart and wishlist services implement it.
type IdleEvicter interface {
	EvictIdle(maxIdle time.Duration) int
}

// SessionEvictionScheduler periodically evicts idle cart and wishlist
// sessions from memory. Their snapshots stay in the key-value store.
type SessionEvictionScheduler struct {
	cron     *cron.Cron
	schedule string
	maxIdle  time.Duration
	evicters map[string]IdleEvicter
}

func NewSessionEvictionScheduler(schedule string, maxIdle time.Duration, evicters map[string]IdleEvicter) *SessionEvictionScheduler {
	return &SessionEvictionScheduler{
		cron:     cron.New(),
		schedule: schedule,
		maxIdle:  maxIdle,
		evicters: evicters,
	}
}

// Start registers the eviction job and starts the cron runner.
func (s *SessionEvictionScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.RunOnce)
	if err != nil {
		logger.Error("Failed to add cron job for session eviction", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session eviction scheduler started", map[string]interface{}{
		"schedule": s.schedule,
		"max_idle": s.maxIdle.String(),
	})
	return nil
}

// RunOnce evicts idle sessions from every registered service.
func (s *SessionEvictionScheduler) RunOnce() {
	total := 0
	for name, evicter := range s.evicters {
		evicted := evicter.EvictIdle(s.maxIdle)
		total += evicted
		logger.Debug("Evicted idle sessions", map[string]interface{}{
			"service": name,
			"evicted": evicted,
		})
	}

	logger.Info("Scheduled session eviction finished", map[string]interface{}{
		"evicted": total,
	})
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *SessionEvictionScheduler) Stop() {
	logger.Info("Stopping session eviction scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Session eviction scheduler stopped", nil)
}
