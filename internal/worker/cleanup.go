package worker

import (
	"context"
	"log/slog"
	"time"

	"library-lending/internal/pkg/clock"
	"library-lending/internal/pkg/config"
	"library-lending/internal/usecase/commands"
)

// CleanupWorker periodically purges decided extension requests past the
// retention window. Pending requests are never removed.
type CleanupWorker struct {
	extensionCommands commands.ExtensionCommands
	clock             clock.Clock
	logger            *slog.Logger
	interval          time.Duration
	retention         time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewCleanupWorker(
	extensionCommands commands.ExtensionCommands,
	clk clock.Clock,
	logger *slog.Logger,
	cfg config.Config,
) *CleanupWorker {
	return &CleanupWorker{
		extensionCommands: extensionCommands,
		clock:             clk,
		logger:            logger,
		interval:          cfg.Lending.CleanupInterval,
		retention:         cfg.Lending.RequestRetention,
	}
}

func (w *CleanupWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(ctx)
}

func (w *CleanupWorker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *CleanupWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// One pass at startup so a long-stopped instance catches up immediately.
	w.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *CleanupWorker) purge(ctx context.Context) {
	cutoff := w.clock.Now().Add(-w.retention)

	purged, err := w.extensionCommands.PurgeDecidedBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("extension request cleanup failed", "error", err.Error())
		}
		return
	}

	if purged > 0 {
		w.logger.Info("purged decided extension requests",
			"count", purged,
			"cutoff", cutoff.Format(time.RFC3339))
	}
}
