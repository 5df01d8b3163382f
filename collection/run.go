package collection

import (
	"fmt"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

// Owner names the field a tracked handle was requested for. The dynamic file
// loader tracks its files with an empty Collection.
type Owner struct {
	Collection string
	Field      string
}

// Tracker records requested handles and reports their settled state. A folder
// is Loaded only once it and all of its members are; it is Failed, with the
// member's error, as soon as one member fails.
type Tracker interface {
	Track(h asset.Handle, owner Owner)
	Settled(h asset.Handle) (asset.LoadState, error)
}

type Status int

const (
	Pending Status = iota
	Built
	Failed
)

func (s Status) String() string {
	switch s {
	case Built:
		return "built"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Run is one resolution of a schema. It remembers per-field progress between
// polls and builds at most once.
type Run struct {
	name     string
	fields   []FieldSpec
	slots    []slot
	assemble func(Fields) (any, error)
	install  func(*ecs.World, any) error
	remove   func(*ecs.World) bool

	started      bool
	keysResolved bool
	status       Status
	err          error
	value        any
}

type slot struct {
	config    dynamic.AssetConfig
	handles   []asset.Handle
	requested bool
	empty     bool
}

func (r *Run) Name() string {
	return r.name
}

func (r *Run) Status() Status {
	return r.status
}

// Err returns the first failure of the run.
func (r *Run) Err() error {
	return r.err
}

// Value returns the built collection, nil unless Built.
func (r *Run) Value() any {
	return r.value
}

// Start requests every field with a literal source. A run without key
// fields can build before the dynamic asset table is sealed.
func (r *Run) Start(store asset.Store, tracker Tracker) {
	if r.started || r.status != Pending {
		return
	}
	r.started = true
	keys := false
	for i, f := range r.fields {
		switch {
		case f.Source != nil:
			r.request(i, f.Source, store, tracker)
		case f.Key != "":
			keys = true
		}
	}
	// without key fields there is nothing to wait for in the table
	if !keys {
		r.keysResolved = true
	}
}

// ResolveKeys looks up every key field in a sealed table and requests what
// the keys stand for. It runs once; later table changes are not seen.
func (r *Run) ResolveKeys(store asset.Store, tracker Tracker, table *dynamic.Table) {
	if r.keysResolved || r.status != Pending {
		return
	}
	r.keysResolved = true
	for i, f := range r.fields {
		if f.Key == "" {
			continue
		}
		cfg, ok := table.Get(f.Key)
		if !ok {
			if f.Optional {
				r.slots[i].empty = true
				continue
			}
			r.Fail(&FieldError{Collection: r.name, Field: f.Name, Key: f.Key, Err: ErrMissingKey})
			return
		}
		if cfg.Shape() != f.Shape {
			r.Fail(&FieldError{
				Collection: r.name,
				Field:      f.Name,
				Key:        f.Key,
				Err:        fmt.Errorf("%w: key holds a %s config, field expects %s", dynamic.ErrMalformedConfig, cfg.Shape(), f.Shape),
			})
			return
		}
		r.request(i, cfg, store, tracker)
	}
}

func (r *Run) request(i int, cfg dynamic.AssetConfig, store asset.Store, tracker Tracker) {
	s := &r.slots[i]
	if s.requested {
		return
	}
	s.config = cfg
	s.handles = cfg.Load(store)
	s.requested = true
	owner := Owner{Collection: r.name, Field: r.fields[i].Name}
	for _, h := range s.handles {
		tracker.Track(h, owner)
	}
}

// Poll builds the collection once keys are resolved and every requested
// handle is settled as Loaded.
func (r *Run) Poll(store asset.Store, tracker Tracker, view ecs.View) Status {
	if r.status != Pending || !r.started || !r.keysResolved {
		return r.status
	}
	for i, s := range r.slots {
		for _, h := range s.handles {
			state, err := tracker.Settled(h)
			switch state {
			case asset.Loaded:
			case asset.Failed:
				if err == nil {
					err = fmt.Errorf("%w: %s", asset.ErrHandleFailure, h)
				}
				r.Fail(&FieldError{Collection: r.name, Field: r.fields[i].Name, Key: r.fields[i].Key, Path: h.Path(), Err: err})
				return r.status
			default:
				return r.status
			}
		}
	}
	r.build(store, view)
	return r.status
}

// Fail marks the run failed. Only the first failure is kept.
func (r *Run) Fail(err error) {
	if r.status != Pending {
		return
	}
	r.status = Failed
	r.err = err
}

// Install inserts the built value into the world.
func (r *Run) Install(w *ecs.World) error {
	if r.status != Built {
		return fmt.Errorf("collection %s: install: run is %s", r.name, r.status)
	}
	return r.install(w, r.value)
}

// Uninstall removes a previously installed value.
func (r *Run) Uninstall(w *ecs.World) bool {
	return r.remove(w)
}

func (r *Run) build(store asset.Store, view ecs.View) {
	values := make(map[string]Value, len(r.fields))
	for i, f := range r.fields {
		v, err := r.resolveField(i, f, store, view)
		if err != nil {
			r.Fail(err)
			return
		}
		values[f.Name] = v
	}
	out, err := r.assemble(Fields{store: store, values: values})
	if err != nil {
		r.Fail(fmt.Errorf("collection %s: assemble: %w", r.name, err))
		return
	}
	r.value = out
	r.status = Built
}

func (r *Run) resolveField(i int, f FieldSpec, store asset.Store, view ecs.View) (Value, error) {
	s := r.slots[i]
	fail := func(p string, err error) (Value, error) {
		return Value{}, &FieldError{Collection: r.name, Field: f.Name, Key: f.Key, Path: p, Err: err}
	}

	switch {
	case f.Derive != nil:
		v, err := f.Derive(view)
		if err != nil {
			return fail("", err)
		}
		return Value{Derived: v}, nil
	case s.empty:
		return Value{Empty: true}, nil
	}

	res, err := s.config.Build(store, s.handles)
	if err != nil {
		return fail("", err)
	}
	members := res.Handles
	if f.Shape == dynamic.ShapeSingle {
		members = []asset.Handle{res.Handle}
	}
	if f.Kind != "" {
		for _, h := range members {
			if got := store.Kind(h); got != f.Kind {
				return fail(h.Path(), fmt.Errorf("%w: loaded as %s, want %s", ErrTypeMismatch, got, f.Kind))
			}
		}
	}

	v := Value{Handle: res.Handle, Handles: res.Handles}
	if f.Mapped != 0 {
		v.Mapped = make(map[string]asset.Handle, len(members))
		for _, h := range members {
			k := f.Mapped.key(h.Path())
			if prev, ok := v.Mapped[k]; ok {
				return fail(h.Path(), fmt.Errorf("%w: %q used by %s and %s", ErrMappedCollision, k, prev.Path(), h.Path()))
			}
			v.Mapped[k] = h
		}
	}
	return v, nil
}
