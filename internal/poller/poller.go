// Package poller refreshes the game seed on a schedule.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/engine"
)

const refreshTimeout = 10 * time.Second

type Refresher interface {
	Snapshot() engine.Snapshot
	Refresh(ctx context.Context) (engine.RefreshResult, error)
}

type Poller struct {
	refresher Refresher
	schedule  cron.Schedule
	logger    *slog.Logger
}

// New validates schedule, a standard cron spec or descriptor such as
// "@every 5s".
func New(r Refresher, schedule string, logger *slog.Logger) (*Poller, error) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("parsing refresh schedule %q: %w", schedule, err)
	}
	return &Poller{refresher: r, schedule: sched, logger: logger}, nil
}

// Run polls until ctx is done. A tick still running when the next one is
// due is skipped.
func (p *Poller) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(p.schedule, cron.FuncJob(func() { p.tick(ctx) }))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (p *Poller) tick(ctx context.Context) {
	if !p.refresher.Snapshot().InGame {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	res, err := p.refresher.Refresh(ctx)
	switch {
	case errors.Is(err, chatguessr.ErrNoActiveRound):
		return
	case err != nil:
		p.logger.Warn("refreshing seed", "error", err)
		return
	}
	if res.Kind != engine.Unchanged {
		p.logger.Info("seed refreshed", "kind", res.Kind.String(), "round", res.Round, "finished", res.Finished)
	}
}
