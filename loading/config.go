package loading

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/assetloader/collection"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

// LoadingState configures the loading phase of one state family:
//
//	loading.New(gameState, Loading).
//		ContinueTo(Menu).
//		Collection(imageAssets).
//		DynamicFiles("dynamic/level.assets.yaml").
//		Build(world)
type LoadingState[S comparable] struct {
	state   ecs.StateHandle[S]
	loading S

	next       S
	hasNext    bool
	failure    S
	hasFailure bool

	collections  []collection.Collection
	files        []string
	endings      []dynamic.Ending
	registry     *dynamic.Registry
	initializers []Initializer
	onEnter      []func(*dynamic.Table)
	sinks        []ProgressSink
	logger       *zap.Logger
}

func New[S comparable](state ecs.StateHandle[S], loading S) *LoadingState[S] {
	return &LoadingState[S]{state: state, loading: loading}
}

// ContinueTo sets the phase entered once every collection is ready.
func (l *LoadingState[S]) ContinueTo(next S) *LoadingState[S] {
	l.next, l.hasNext = next, true
	return l
}

// OnFailureContinueTo sets the phase entered when loading fails. Without it a
// failed phase stays where it is.
func (l *LoadingState[S]) OnFailureContinueTo(failure S) *LoadingState[S] {
	l.failure, l.hasFailure = failure, true
	return l
}

func (l *LoadingState[S]) Collection(c collection.Collection) *LoadingState[S] {
	l.collections = append(l.collections, c)
	return l
}

// DynamicFiles declares dynamic asset files loaded on every entry.
func (l *LoadingState[S]) DynamicFiles(paths ...string) *LoadingState[S] {
	l.files = append(l.files, paths...)
	return l
}

// FileEndings replaces the recognised dynamic file endings.
func (l *LoadingState[S]) FileEndings(endings ...dynamic.Ending) *LoadingState[S] {
	l.endings = append([]dynamic.Ending(nil), endings...)
	return l
}

// Registry sets the variants known to dynamic files.
func (l *LoadingState[S]) Registry(r *dynamic.Registry) *LoadingState[S] {
	l.registry = r
	return l
}

// Init appends initializers, run in order after the collections are
// installed.
func (l *LoadingState[S]) Init(inits ...Initializer) *LoadingState[S] {
	l.initializers = append(l.initializers, inits...)
	return l
}

// OnEnter runs fn with the fresh dynamic asset table on every entry, before
// anything is requested.
func (l *LoadingState[S]) OnEnter(fn func(*dynamic.Table)) *LoadingState[S] {
	l.onEnter = append(l.onEnter, fn)
	return l
}

func (l *LoadingState[S]) WithLogger(logger *zap.Logger) *LoadingState[S] {
	l.logger = logger
	return l
}

// Progress adds a sink that receives progress every tick of a run.
func (l *LoadingState[S]) Progress(sink ProgressSink) *LoadingState[S] {
	l.sinks = append(l.sinks, sink)
	return l
}

type machineKey struct {
	state ecs.ResourceID
	phase any
}

var machinesResource = ecs.NewResource[map[machineKey]any]()

// Build adds the configuration to w. The first configuration of a phase
// creates its machine and adds it as a system; later ones for the same phase
// extend that machine.
func (l *LoadingState[S]) Build(w *ecs.World) *Machine[S] {
	machines, ok := ecs.Get(w, machinesResource)
	if !ok {
		machines = make(map[machineKey]any)
		_ = ecs.Insert(w, machinesResource, machines)
	}
	key := machineKey{state: l.state.ID(), phase: l.loading}
	if existing, ok := machines[key].(*Machine[S]); ok {
		existing.extend(l)
		return existing
	}

	m := newMachine(l.state, l.loading, l.logger)
	m.extend(l)
	machines[key] = m
	w.AddSystem(m)
	return m
}

func (m *Machine[S]) extend(l *LoadingState[S]) {
	if l.logger != nil {
		m.logger = l.logger.With(zap.String("phase", m.phase))
	}
	if l.hasNext {
		if m.hasNext && m.next != l.next {
			m.logger.Warn("next phase replaced", zap.String("next", fmt.Sprint(l.next)))
		}
		m.next, m.hasNext = l.next, true
	}
	if l.hasFailure {
		if m.hasFailure && m.failure != l.failure {
			m.logger.Warn("failure phase replaced", zap.String("failure", fmt.Sprint(l.failure)))
		}
		m.failure, m.hasFailure = l.failure, true
	}
	for _, c := range l.collections {
		if m.registered[c.ResourceID()] {
			err := fmt.Errorf("%w: %s for phase %s", ErrDuplicateRegistration, c.Name(), m.phase)
			m.configErrs = append(m.configErrs, err)
			m.logger.Error("duplicate collection registration", zap.String("collection", c.Name()))
			continue
		}
		m.registered[c.ResourceID()] = true
		m.collections = append(m.collections, c)
	}
	m.files = append(m.files, l.files...)
	if l.endings != nil {
		m.endings = l.endings
	}
	if l.registry != nil {
		m.registry = l.registry
	}
	m.initializers = append(m.initializers, l.initializers...)
	m.onEnter = append(m.onEnter, l.onEnter...)
	m.sinks = append(m.sinks, l.sinks...)
}
