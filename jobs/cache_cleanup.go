package jobs

import (
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/sirupsen/logrus"
)

// SessionSweeper is a session store that holds expired values until swept
type SessionSweeper interface {
	PurgeExpired() int
}

// CacheCleanupJob sweeps expired entries out of the in-process caches and session store
// and drops idle rate-limit buckets
type CacheCleanupJob struct {
	Caches   []*services.CacheService
	Limiter  *shared.KeyedRateLimiter
	Sessions SessionSweeper
}

func NewCacheCleanupJob(limiter *shared.KeyedRateLimiter, caches ...*services.CacheService) *CacheCleanupJob {
	return &CacheCleanupJob{
		Caches:  caches,
		Limiter: limiter,
	}
}

func (j *CacheCleanupJob) Run() {
	startTime := time.Now()
	logrus.Debug("Starting Cache Cleanup Job")

	purged := 0
	for _, cache := range j.Caches {
		if cache == nil {
			continue
		}
		purged += cache.PurgeExpired()
	}

	sessions := 0
	if j.Sessions != nil {
		sessions = j.Sessions.PurgeExpired()
	}

	pruned := 0
	if j.Limiter != nil {
		pruned = j.Limiter.Prune()
	}

	logrus.WithFields(logrus.Fields{
		"component":       "CacheCleanupJob",
		"purged_entries":  purged,
		"purged_sessions": sessions,
		"pruned_clients":  pruned,
		"duration":        time.Since(startTime),
	}).Info("Cache Cleanup Job completed")
}
