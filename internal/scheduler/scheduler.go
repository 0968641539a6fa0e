package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/makerspace-access/internal/repo"
)

// Run starts the background scheduler. The only job is the nightly blocklist
// prune at 01:00, which drops revoked token ids older than maxAgeDays. The
// returned cron can be stopped for a clean shutdown.
func Run(blocklist *repo.TokenBlocklistRepo, maxAgeDays int) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 1 * * *", func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)
		n, err := blocklist.DeleteOlderThan(context.Background(), cutoff)
		if err != nil {
			slog.Error("blocklist prune failed", "error", err)
			return
		}
		slog.Info("blocklist pruned", "deleted", n, "cutoff", cutoff)
	})
	if err != nil {
		// the expression is a constant, so this only fires on a bad edit
		slog.Error("scheduler: invalid cron expression", "error", err)
		return c
	}

	c.Start()
	return c
}
