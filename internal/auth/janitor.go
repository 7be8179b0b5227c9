package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const staleRetention = 24 * time.Hour

// Janitor periodically deletes stale auth sessions.
type Janitor struct {
	svc    *Service
	cron   *cron.Cron
	logger *zap.Logger
}

// NewJanitor schedules the cleanup with a cron spec such as "@every 1h".
func NewJanitor(svc *Service, spec string, logger *zap.Logger) (*Janitor, error) {
	j := &Janitor{
		svc:    svc,
		cron:   cron.New(),
		logger: logger,
	}
	if _, err := j.cron.AddFunc(spec, j.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop waits for a running cleanup to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := j.svc.Cleanup(ctx, staleRetention)
	if err != nil {
		j.logger.Warn("auth session cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("removed stale auth sessions", zap.Int64("count", n))
	}
}
