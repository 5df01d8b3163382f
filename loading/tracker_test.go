package loading

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/asset/assettest"
	"github.com/milk9111/assetloader/collection"
)

func TestTrackerDedupsAndMergesOwners(t *testing.T) {
	store := assettest.New()
	tracker := NewTracker(store)
	h := store.Load("tree.png")

	a := collection.Owner{Collection: "A", Field: "tree"}
	b := collection.Owner{Collection: "B", Field: "tree"}
	tracker.Track(h, a)
	tracker.Track(h, a)
	tracker.Track(h, b)

	if got := tracker.Progress(); got != (Progress{Done: 0, Total: 1}) {
		t.Fatalf("expected one tracked handle, got %+v", got)
	}

	store.Fail("tree.png", errors.New("gone"))
	failures := tracker.Poll()
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if diff := cmp.Diff([]collection.Owner{a, b}, failures[0].Owners); diff != "" {
		t.Fatalf("owners mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(failures[0].Err, asset.ErrHandleFailure) {
		t.Fatalf("expected handle failure, got %v", failures[0].Err)
	}
	if again := tracker.Poll(); len(again) != 0 {
		t.Fatalf("a failure is reported once, got %d again", len(again))
	}
}

func TestTrackerExpandsFolders(t *testing.T) {
	store := assettest.New()
	tracker := NewTracker(store)
	owner := collection.Owner{Collection: "Tiles", Field: "all"}
	folder := store.LoadFolder("tiles")
	tracker.Track(folder, owner)

	var totals []int
	poll := func() {
		tracker.Poll()
		totals = append(totals, tracker.Progress().Total)
	}

	poll()
	store.CompleteFolder("tiles", "tiles/a.png", "tiles/b.png")
	poll()
	if state, _ := tracker.Settled(folder); state != asset.Loading {
		t.Fatalf("folder with loading members must not settle, got %s", state)
	}

	store.Complete("tiles/a.png", nil)
	store.Complete("tiles/b.png", nil)
	poll()
	if state, err := tracker.Settled(folder); state != asset.Loaded || err != nil {
		t.Fatalf("expected folder settled, got %s (%v)", state, err)
	}
	if diff := cmp.Diff([]int{1, 3, 3}, totals); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}
	if got := tracker.Progress(); got.Done != 3 {
		t.Fatalf("expected 3 loaded handles, got %+v", got)
	}

	late := collection.Owner{Collection: "Other", Field: "tiles"}
	tracker.Track(folder, late)
	store.Fail("tiles/a.png", errors.New("reloaded broken"))
	if failures := tracker.Poll(); len(failures) != 0 {
		t.Fatalf("settled handles are not polled again, got %d failures", len(failures))
	}
}

func TestTrackerMemberFailureFailsFolder(t *testing.T) {
	store := assettest.New()
	tracker := NewTracker(store)
	folder := store.LoadFolder("tiles")
	tracker.Track(folder, collection.Owner{Collection: "Tiles", Field: "all"})

	store.CompleteFolder("tiles", "tiles/a.png", "tiles/b.png")
	store.Fail("tiles/b.png", errors.New("corrupt"))
	failures := tracker.Poll()
	if len(failures) != 1 || failures[0].Handle.Path() != "tiles/b.png" {
		t.Fatalf("expected the member failure, got %+v", failures)
	}
	if failures[0].Owners[0].Collection != "Tiles" {
		t.Fatalf("members inherit folder owners, got %+v", failures[0].Owners)
	}
	state, err := tracker.Settled(folder)
	if state != asset.Failed || !errors.Is(err, asset.ErrHandleFailure) {
		t.Fatalf("expected failed folder, got %s (%v)", state, err)
	}
}

func TestCounterSumsPhases(t *testing.T) {
	c := NewCounter()
	c.Report("game", Progress{Done: 1, Total: 4})
	c.Report("audio", Progress{Done: 2, Total: 2})
	c.Report("game", Progress{Done: 3, Total: 4})

	if got := c.Total(); got != (Progress{Done: 5, Total: 6}) {
		t.Fatalf("unexpected total %+v", got)
	}
	if diff := cmp.Diff([]string{"audio", "game"}, c.Phases()); diff != "" {
		t.Fatalf("phases mismatch (-want +got):\n%s", diff)
	}
	if f := (Progress{}).Fraction(); f != 1 {
		t.Fatalf("empty progress should be complete, got %v", f)
	}
	c.Reset()
	if _, ok := c.Phase("game"); ok {
		t.Fatalf("expected reset counter")
	}
}
