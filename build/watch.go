package build

import (
	"context"
	"log/slog"

	"github.com/skekre98/cfgstack/config"
)

// Watch builds the plan once, then rebuilds it every time one of its
// documents changes, until ctx is cancelled. onWrite, if set, is called after
// each successful write.
//
// The initial build must succeed. Later failures, a malformed edit or a
// deleted profile, are logged and leave the last good output in place.
func Watch(ctx context.Context, plan Plan, logger *slog.Logger, onWrite func(*Result)) error {
	if err := plan.checkProfile(); err != nil {
		return err
	}

	mgr, err := config.NewManager(ctx, plan.Sources()...)
	if err != nil {
		return err
	}

	events := make(chan config.Event, 8)
	mgr.Subscribe(events)
	if err := mgr.Watch(ctx); err != nil {
		return err
	}

	if err := writeDocument(plan, mgr.Document(), onWrite); err != nil {
		return err
	}
	logger.Info("watching for changes", "profile", plan.Profile, "output", plan.Output)

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-events:
			if evt.Err != nil {
				logger.Error("reload failed, keeping previous output",
					"source", evt.Source, "error", evt.Err)
				continue
			}
			if err := writeDocument(plan, evt.NewDocument, onWrite); err != nil {
				logger.Error("rebuild failed", "source", evt.Source, "error", err)
				continue
			}
			logger.Info("rebuilt", "source", evt.Source, "keys", evt.ChangedKeys)
		}
	}
}

func writeDocument(plan Plan, doc config.Table, onWrite func(*Result)) error {
	res, err := plan.render(doc)
	if err != nil {
		return err
	}
	if err := Write(res); err != nil {
		return err
	}
	if onWrite != nil {
		onWrite(res)
	}
	return nil
}
