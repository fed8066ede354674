package jobs

import (
	"context"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/sirupsen/logrus"
)

// AlertExpiryJob deletes persisted arbitrage alerts whose expiration date has passed
type AlertExpiryJob struct {
	AlertService *services.AlertService
	Interval     time.Duration
}

func NewAlertExpiryJob(alertService *services.AlertService, interval time.Duration) *AlertExpiryJob {
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	return &AlertExpiryJob{
		AlertService: alertService,
		Interval:     interval,
	}
}

// Start runs the job immediately and then on every tick until ctx is cancelled
func (j *AlertExpiryJob) Start(ctx context.Context) {
	logrus.Infof("Starting Alert Expiry Job (runs every %v)...", j.Interval)
	ticker := time.NewTicker(j.Interval)

	go func() {
		defer ticker.Stop()
		j.Run()

		for {
			select {
			case <-ticker.C:
				j.Run()
			case <-ctx.Done():
				logrus.Info("Alert Expiry Job stopped")
				return
			}
		}
	}()
}

func (j *AlertExpiryJob) Run() {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	removed, err := j.AlertService.PurgeExpired(ctx)
	if err != nil {
		logrus.Errorf("Alert Expiry Job failed: %v", err)
		return
	}

	logrus.Infof("Alert Expiry Job completed: removed %d expired alerts (took %v)", removed, time.Since(startTime))
}
