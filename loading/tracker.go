package loading

import (
	"slices"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/collection"
)

// Tracker owns every handle requested during one phase run. Loaded folders
// are expanded into their members, which become tracked handles of their own.
type Tracker struct {
	store   asset.Store
	entries map[asset.HandleID]*tracked
	order   []*tracked
	loaded  int
}

type tracked struct {
	handle  asset.Handle
	owners  []collection.Owner
	state   asset.LoadState
	err     error
	members []asset.Handle
}

// Failure is a handle that failed during the last poll, with everyone who
// requested it.
type Failure struct {
	Handle asset.Handle
	Owners []collection.Owner
	Err    error
}

func NewTracker(store asset.Store) *Tracker {
	return &Tracker{
		store:   store,
		entries: make(map[asset.HandleID]*tracked),
	}
}

// Track adds a handle, or another owner to an already tracked one.
func (t *Tracker) Track(h asset.Handle, owner collection.Owner) {
	if e, ok := t.entries[h.ID()]; ok {
		if slices.Contains(e.owners, owner) {
			return
		}
		e.owners = append(e.owners, owner)
		for _, m := range e.members {
			t.Track(m, owner)
		}
		return
	}
	e := &tracked{handle: h, owners: []collection.Owner{owner}, state: asset.Loading}
	t.entries[h.ID()] = e
	t.order = append(t.order, e)
}

// Poll refreshes every unsettled handle. Members of folders that load during
// the poll are polled in the same pass.
func (t *Tracker) Poll() []Failure {
	var failures []Failure
	for i := 0; i < len(t.order); i++ {
		e := t.order[i]
		if e.state == asset.Loaded || e.state == asset.Failed {
			continue
		}
		switch t.store.State(e.handle) {
		case asset.Loaded:
			e.state = asset.Loaded
			t.loaded++
			if members, ok := t.store.Folder(e.handle); ok {
				e.members = members
				for _, m := range members {
					for _, o := range e.owners {
						t.Track(m, o)
					}
				}
			}
		case asset.Failed:
			e.state = asset.Failed
			e.err = t.store.Err(e.handle)
			failures = append(failures, Failure{
				Handle: e.handle,
				Owners: append([]collection.Owner(nil), e.owners...),
				Err:    e.err,
			})
		}
	}
	return failures
}

// Settled reports a handle as Loaded once it and, for folders, every member
// is loaded. A failed member fails the folder.
func (t *Tracker) Settled(h asset.Handle) (asset.LoadState, error) {
	e, ok := t.entries[h.ID()]
	if !ok {
		return asset.NotLoaded, nil
	}
	if e.state != asset.Loaded {
		return e.state, e.err
	}
	state := asset.Loaded
	for _, m := range e.members {
		s, err := t.Settled(m)
		if s == asset.Failed {
			return s, err
		}
		if s != asset.Loaded {
			state = asset.Loading
		}
	}
	return state, nil
}

// Progress counts loaded handles against every handle tracked so far. Total
// only grows within a run.
func (t *Tracker) Progress() Progress {
	return Progress{Done: t.loaded, Total: len(t.order)}
}

var _ collection.Tracker = (*Tracker)(nil)
