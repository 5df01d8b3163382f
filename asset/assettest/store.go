// Package assettest provides a scripted asset.Store for tick-by-tick tests.
// Nothing loads on its own: tests decide when a path completes or fails.
package assettest

import (
	"fmt"

	"github.com/milk9111/assetloader/asset"
)

type Store struct {
	byKey   map[string]asset.HandleID
	entries map[asset.HandleID]*entry
	nextID  asset.HandleID
	calls   int
}

type entry struct {
	handle  asset.Handle
	folder  bool
	kind    asset.Kind
	state   asset.LoadState
	value   any
	err     error
	members []asset.Handle
}

func New() *Store {
	return &Store{
		byKey:   make(map[string]asset.HandleID),
		entries: make(map[asset.HandleID]*entry),
	}
}

// Calls counts Load and LoadFolder invocations, including repeats.
func (s *Store) Calls() int {
	return s.calls
}

func (s *Store) Load(path string) asset.Handle {
	s.calls++
	return s.file(path).handle
}

func (s *Store) LoadFolder(path string) asset.Handle {
	s.calls++
	return s.folder(path).handle
}

// Complete marks a file loaded with the given value. Unrequested files are
// created already loaded, as if cached.
func (s *Store) Complete(path string, value any) asset.Handle {
	e := s.file(path)
	e.state, e.value, e.err = asset.Loaded, value, nil
	return e.handle
}

// CompleteAs is Complete with an explicit kind.
func (s *Store) CompleteAs(path string, kind asset.Kind, value any) asset.Handle {
	h := s.Complete(path, value)
	s.entries[h.ID()].kind = kind
	return h
}

// CompleteFolder lists members for a folder; members start out loading.
func (s *Store) CompleteFolder(path string, members ...string) asset.Handle {
	e := s.folder(path)
	e.members = e.members[:0]
	for _, m := range members {
		e.members = append(e.members, s.file(m).handle)
	}
	e.state = asset.Loaded
	return e.handle
}

func (s *Store) Fail(path string, cause error) asset.Handle {
	e := s.file(path)
	e.state = asset.Failed
	e.err = fmt.Errorf("%w: %s: %w", asset.ErrHandleFailure, asset.CleanPath(path), cause)
	return e.handle
}

func (s *Store) FailFolder(path string, cause error) asset.Handle {
	e := s.folder(path)
	e.state = asset.Failed
	e.err = fmt.Errorf("%w: %s: %w", asset.ErrHandleFailure, asset.CleanPath(path), cause)
	return e.handle
}

// Requested reports whether a file path has a handle.
func (s *Store) Requested(path string) bool {
	_, ok := s.byKey["file:"+asset.CleanPath(path)]
	return ok
}

func (s *Store) State(h asset.Handle) asset.LoadState {
	if e, ok := s.entries[h.ID()]; ok {
		return e.state
	}
	return asset.NotLoaded
}

func (s *Store) Kind(h asset.Handle) asset.Kind {
	if e, ok := s.entries[h.ID()]; ok {
		return e.kind
	}
	return ""
}

func (s *Store) Folder(h asset.Handle) ([]asset.Handle, bool) {
	e, ok := s.entries[h.ID()]
	if !ok || !e.folder || e.state != asset.Loaded {
		return nil, false
	}
	return append([]asset.Handle(nil), e.members...), true
}

func (s *Store) Get(h asset.Handle) (any, bool) {
	e, ok := s.entries[h.ID()]
	if !ok || e.folder || e.state != asset.Loaded {
		return nil, false
	}
	return e.value, true
}

func (s *Store) Err(h asset.Handle) error {
	if e, ok := s.entries[h.ID()]; ok {
		return e.err
	}
	return nil
}

func (s *Store) Add(kind asset.Kind, value any) asset.Handle {
	s.nextID++
	h := asset.NewHandle(s.nextID, "")
	s.entries[h.ID()] = &entry{handle: h, kind: kind, state: asset.Loaded, value: value}
	return h
}

func (s *Store) file(path string) *entry {
	clean := asset.CleanPath(path)
	return s.lookupOrCreate("file:"+clean, clean, false, asset.KindByExtension(clean))
}

func (s *Store) folder(path string) *entry {
	clean := asset.CleanPath(path)
	return s.lookupOrCreate("folder:"+clean, clean, true, asset.KindFolder)
}

func (s *Store) lookupOrCreate(key, clean string, folder bool, kind asset.Kind) *entry {
	if id, ok := s.byKey[key]; ok {
		return s.entries[id]
	}
	s.nextID++
	e := &entry{
		handle: asset.NewHandle(s.nextID, clean),
		folder: folder,
		kind:   kind,
		state:  asset.Loading,
	}
	s.byKey[key] = e.handle.ID()
	s.entries[e.handle.ID()] = e
	return e
}

var _ asset.Store = (*Store)(nil)
