package dynamic

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/assetloader/asset"
)

// Loader pulls dynamic asset files through the store and merges them into a
// table once all of them are available.
type Loader struct {
	files    []string
	endings  []Ending
	registry *Registry
	logger   *zap.Logger

	handles []asset.Handle
	formats []Format
	started bool
	done    bool
}

func NewLoader(files []string, endings []Ending, registry *Registry, logger *zap.Logger) *Loader {
	if len(endings) == 0 {
		endings = DefaultEndings()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		files:    append([]string(nil), files...),
		endings:  endings,
		registry: registry,
		logger:   logger,
	}
}

// Start requests every file. A file with an unrecognised ending fails before
// anything is requested.
func (l *Loader) Start(store asset.Store) ([]asset.Handle, error) {
	if l.started {
		return l.handles, nil
	}
	formats := make([]Format, 0, len(l.files))
	for _, f := range l.files {
		format, ok := FormatFor(f, l.endings)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unrecognised dynamic asset file ending", ErrMalformedConfig, f)
		}
		formats = append(formats, format)
	}
	l.formats = formats
	for _, f := range l.files {
		l.handles = append(l.handles, store.Load(f))
	}
	l.started = true
	return l.handles, nil
}

// Poll reports true once every file is loaded, decoded and merged into table
// in declaration order. The table is sealed at that point. A file that failed
// to load or decode is returned as an error.
func (l *Loader) Poll(store asset.Store, table *Table) (bool, error) {
	if l.done {
		return true, nil
	}
	for i, h := range l.handles {
		switch store.State(h) {
		case asset.Loaded:
		case asset.Failed:
			return false, fmt.Errorf("dynamic asset file %s: %w", l.files[i], store.Err(h))
		default:
			return false, nil
		}
	}

	decoded := make([][]Entry, len(l.handles))
	for i, h := range l.handles {
		data, ok := asset.Typed[[]byte](store, h)
		if !ok {
			return false, fmt.Errorf("%w: %s: file content is not text", ErrMalformedConfig, l.files[i])
		}
		entries, err := l.formats[i].Decode(l.files[i], data, l.registry)
		if err != nil {
			return false, err
		}
		decoded[i] = entries
	}
	for i, entries := range decoded {
		table.Merge(l.files[i], entries)
		l.logger.Debug("merged dynamic asset file", zap.String("file", l.files[i]), zap.Int("keys", len(entries)))
	}
	table.Seal()
	l.done = true
	return true, nil
}

func (l *Loader) Done() bool {
	return l.done
}
