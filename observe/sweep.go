package observe

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RunSweep periodically calls CleanupStale(maxAge, time.Now()) every
// interval until ctx is cancelled, logging how many stale subscriptions it
// removed. Callers start this alongside their accept/dispatch loops and
// stop it on shutdown.
func (r *Registry) RunSweep(ctx context.Context, interval, maxAge time.Duration, log *logrus.Entry) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.CleanupStale(maxAge, now); n > 0 && log != nil {
				log.WithField("removed", n).Debug("observe: swept stale subscriptions")
			}
		}
	}
}
