package components

import (
	"context"

	"library-lending/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewCleanupWorker,
	),
	fx.Invoke(startCleanupWorker),
)

func startCleanupWorker(lc fx.Lifecycle, w *worker.CleanupWorker) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			w.Stop()
			return nil
		},
	})
}
