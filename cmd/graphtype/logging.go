package main

import (
	"context"
	"log/slog"

	"github.com/hanpama/graphtype/internal/eventbus"
	"github.com/hanpama/graphtype/internal/events"
)

// logEvents mirrors bus events as debug records.
func logEvents(bus *eventbus.Bus, logger *slog.Logger) (unsubscribe func()) {
	unsubscribers := []func(){
		eventbus.Subscribe(bus, func(ctx context.Context, e events.SchemaBuildFinish) {
			if e.Err != nil {
				logger.DebugContext(ctx, "schema build failed", "source", e.Source, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "schema built", "source", e.Source, "types", e.Types, "duration", e.Duration)
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.OverlayApplied) {
			logger.DebugContext(ctx, "annotation applied", "coordinate", e.Coordinate, "target", e.Target)
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.CoercionFinish) {
			logger.DebugContext(ctx, "coerced", "type", e.Type, "err", e.Err, "duration", e.Duration)
		}),
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}
