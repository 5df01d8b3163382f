// Package loading drives asset collections through a loading phase of the
// host and moves the host on once they are ready.
package loading

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/collection"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

type Status int

const (
	Idle Status = iota
	AwaitingDynamicConfig
	TrackingAssets
	Finalizing
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingDynamicConfig:
		return "awaiting_dynamic_config"
	case TrackingAssets:
		return "tracking_assets"
	case Finalizing:
		return "finalizing"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// World event types pushed by machines. Data is a PhaseEvent.
const (
	EventStarted  = "loading.started"
	EventFinished = "loading.finished"
	EventFailed   = "loading.failed"
)

type PhaseEvent struct {
	Phase string
	Err   error
}

// Machine is the system driving one loading phase.
type Machine[S comparable] struct {
	state   ecs.StateHandle[S]
	loading S
	phase   string
	logger  *zap.Logger

	next       S
	hasNext    bool
	failure    S
	hasFailure bool

	collections  []collection.Collection
	registered   map[ecs.ResourceID]bool
	configErrs   []error
	files        []string
	endings      []dynamic.Ending
	registry     *dynamic.Registry
	initializers []Initializer
	onEnter      []func(*dynamic.Table)
	sinks        []ProgressSink

	entered  uint64
	status   Status
	outcome  Status
	err      error
	progress Progress
	run      *phaseRun
}

// phaseRun is everything owned by one entry into the loading phase.
type phaseRun struct {
	store   asset.Store
	table   *dynamic.Table
	tracker *Tracker
	loader  *dynamic.Loader
	runs    []*collection.Run
}

func newMachine[S comparable](state ecs.StateHandle[S], loading S, logger *zap.Logger) *Machine[S] {
	if logger == nil {
		logger = zap.NewNop()
	}
	phase := fmt.Sprintf("%s(%v)", state.Name(), loading)
	return &Machine[S]{
		state:      state,
		loading:    loading,
		phase:      phase,
		logger:     logger.With(zap.String("phase", phase)),
		registered: make(map[ecs.ResourceID]bool),
	}
}

func (m *Machine[S]) Phase() string {
	return m.phase
}

func (m *Machine[S]) Status() Status {
	return m.status
}

// Outcome is Succeeded or Failed for the last finished run, Idle before
// any run finished.
func (m *Machine[S]) Outcome() Status {
	return m.outcome
}

// Err returns the failure of the last run.
func (m *Machine[S]) Err() error {
	return m.err
}

// Progress returns the progress of the active run, or of the last one.
func (m *Machine[S]) Progress() Progress {
	return m.progress
}

// Table returns the dynamic asset table of the active run. Keys registered
// after dynamic files were merged only reach fields not yet resolved.
func (m *Machine[S]) Table() (*dynamic.Table, bool) {
	if m.run == nil {
		return nil, false
	}
	return m.run.table, true
}

func (m *Machine[S]) Update(w *ecs.World) {
	current, ok := m.state.Current(w)
	if !ok || current != m.loading {
		if m.run != nil {
			m.logger.Info("left loading phase before completion, discarding run")
			m.run = nil
		}
		m.status = Idle
		m.entered = 0
		return
	}

	if gen := m.state.Generation(w); gen != m.entered {
		m.enter(w, gen)
		return
	}
	if m.run != nil {
		m.tick(w)
	}
}

func (m *Machine[S]) enter(w *ecs.World, gen uint64) {
	if m.run != nil {
		m.logger.Info("loading phase re-entered, discarding run")
	}
	m.entered = gen
	m.run = nil
	m.err = nil
	m.progress = Progress{}
	w.Events().Push(ecs.Event{Type: EventStarted, Data: PhaseEvent{Phase: m.phase}})

	table := dynamic.NewTable(m.logger)
	for _, fn := range m.onEnter {
		fn(table)
	}
	if len(m.configErrs) > 0 {
		m.fail(w, &PhaseError{Phase: m.phase, Errs: m.configErrs})
		return
	}
	if len(m.collections) == 0 && len(m.files) == 0 {
		m.finalize(w, nil)
		return
	}

	store, ok := ecs.Get(w, asset.StoreResource)
	if !ok || store == nil {
		m.fail(w, &PhaseError{Phase: m.phase, Errs: []error{ErrNoStore}})
		return
	}

	run := &phaseRun{
		store:   store,
		table:   table,
		tracker: NewTracker(store),
		loader:  dynamic.NewLoader(m.files, m.endings, m.registry, m.logger),
	}
	handles, err := run.loader.Start(store)
	if err != nil {
		m.fail(w, &PhaseError{Phase: m.phase, Errs: []error{err}})
		return
	}
	for _, h := range handles {
		run.tracker.Track(h, collection.Owner{Field: h.Path()})
	}
	if len(m.files) == 0 {
		table.Seal()
	}

	for _, c := range m.collections {
		r := c.NewRun()
		r.Start(store, run.tracker)
		if table.Sealed() {
			r.ResolveKeys(store, run.tracker, table)
		}
		run.runs = append(run.runs, r)
	}

	m.run = run
	m.status = TrackingAssets
	if !table.Sealed() {
		m.status = AwaitingDynamicConfig
	}
	m.logger.Debug("loading phase entered",
		zap.Int("collections", len(m.collections)),
		zap.Int("dynamic_files", len(m.files)))
	m.tick(w)
}

func (m *Machine[S]) tick(w *ecs.World) {
	run := m.run
	if !run.table.Sealed() {
		done, err := run.loader.Poll(run.store, run.table)
		if err != nil {
			m.fail(w, &PhaseError{Phase: m.phase, Errs: []error{err}})
			return
		}
		if done {
			for _, r := range run.runs {
				r.ResolveKeys(run.store, run.tracker, run.table)
			}
			m.status = TrackingAssets
		}
	}

	for _, f := range run.tracker.Poll() {
		for _, owner := range f.Owners {
			// dynamic files report their own failures through the loader
			if owner.Collection == "" {
				continue
			}
			for _, r := range run.runs {
				if r.Name() == owner.Collection {
					r.Fail(&collection.FieldError{
						Collection: owner.Collection,
						Field:      owner.Field,
						Path:       f.Handle.Path(),
						Err:        f.Err,
					})
				}
			}
		}
	}

	view := w.View()
	pending := !run.table.Sealed()
	for _, r := range run.runs {
		if r.Poll(run.store, run.tracker, view) == collection.Pending {
			pending = true
		}
	}

	m.progress = run.tracker.Progress()
	for _, sink := range m.sinks {
		sink.Report(m.phase, m.progress)
	}
	if pending {
		return
	}
	m.finalize(w, run.runs)
}

// finalize installs every collection and runs initializers. A failed run or
// initializer leaves nothing installed.
func (m *Machine[S]) finalize(w *ecs.World, runs []*collection.Run) {
	m.status = Finalizing

	var errs []error
	for _, r := range runs {
		if r.Status() == collection.Failed {
			errs = append(errs, r.Err())
		}
	}
	if len(errs) > 0 {
		m.fail(w, &PhaseError{Phase: m.phase, Errs: errs})
		return
	}

	var installed []*collection.Run
	var applied []Initializer
	rollback := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			applied[i].undo(w)
		}
		for _, r := range installed {
			r.Uninstall(w)
		}
	}
	for _, r := range runs {
		if err := r.Install(w); err != nil {
			rollback()
			m.fail(w, &PhaseError{Phase: m.phase, Errs: []error{err}})
			return
		}
		installed = append(installed, r)
	}
	for _, initializer := range m.initializers {
		if err := initializer.apply(w); err != nil {
			rollback()
			m.fail(w, &PhaseError{Phase: m.phase, Errs: []error{err}})
			return
		}
		applied = append(applied, initializer)
	}

	m.run = nil
	m.status = Idle
	m.outcome = Succeeded
	m.logger.Info("loading phase finished", zap.Int("collections", len(runs)))
	w.Events().Push(ecs.Event{Type: EventFinished, Data: PhaseEvent{Phase: m.phase}})
	if m.hasNext {
		m.state.Set(w, m.next)
	}
}

// fail ends the run. Without a failure phase the host stays in the loading
// phase and the machine stays in TrackingAssets until the phase is entered
// again.
func (m *Machine[S]) fail(w *ecs.World, err error) {
	m.run = nil
	m.err = err
	m.outcome = Failed
	m.logger.Error("loading phase failed", zap.Error(err))
	w.Events().Push(ecs.Event{Type: EventFailed, Data: PhaseEvent{Phase: m.phase, Err: err}})

	if m.hasFailure {
		m.status = Idle
		m.state.Set(w, m.failure)
		return
	}
	m.status = TrackingAssets
	m.logger.Warn("no failure phase configured, staying in loading phase")
}
