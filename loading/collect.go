package loading

import (
	"context"
	"fmt"
	"time"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/collection"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

// InitCollection loads one collection outside of any loading phase and
// installs it into w. It polls the store every interval until the
// collection is built, fails, or ctx is done. A nil table resolves no keys.
func InitCollection(ctx context.Context, w *ecs.World, store asset.Store, c collection.Collection, table *dynamic.Table, interval time.Duration) error {
	if table == nil {
		table = dynamic.NewTable(nil)
	}
	table.Seal()
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}

	tracker := NewTracker(store)
	run := c.NewRun()
	run.Start(store, tracker)
	run.ResolveKeys(store, tracker, table)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for _, f := range tracker.Poll() {
			for _, owner := range f.Owners {
				run.Fail(&collection.FieldError{Collection: owner.Collection, Field: owner.Field, Path: f.Handle.Path(), Err: f.Err})
			}
		}
		switch run.Poll(store, tracker, w.View()) {
		case collection.Built:
			return run.Install(w)
		case collection.Failed:
			return run.Err()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("loading: init %s: %w", c.Name(), ctx.Err())
		case <-ticker.C:
		}
	}
}
