package dynamic

import (
	"sort"

	"go.uber.org/zap"
)

// Table maps dynamic keys to configs for one loading run. Manual
// registrations shadow entries merged from files.
type Table struct {
	logger *zap.Logger
	manual map[string]AssetConfig
	files  map[string]fileEntry
	sealed bool
}

type fileEntry struct {
	config AssetConfig
	source string
}

func NewTable(logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{
		logger: logger,
		manual: make(map[string]AssetConfig),
		files:  make(map[string]fileEntry),
	}
}

// Register sets a key directly. A later registration of the same key
// replaces the earlier one.
func (t *Table) Register(key string, cfg AssetConfig) {
	if _, ok := t.manual[key]; ok {
		t.logger.Warn("dynamic asset key registered again, replacing", zap.String("key", key))
	}
	if t.sealed {
		t.logger.Debug("dynamic asset key registered after resolution started", zap.String("key", key))
	}
	t.manual[key] = cfg
}

// Merge adds the entries of one file. The last merge of a key wins.
func (t *Table) Merge(source string, entries []Entry) {
	for _, e := range entries {
		if prev, ok := t.files[e.Key]; ok {
			t.logger.Warn("dynamic asset key redefined",
				zap.String("key", e.Key),
				zap.String("previous", prev.source),
				zap.String("source", source))
		}
		if _, ok := t.manual[e.Key]; ok {
			t.logger.Warn("dynamic asset key from file shadowed by manual registration",
				zap.String("key", e.Key),
				zap.String("source", source))
		}
		t.files[e.Key] = fileEntry{config: e.Config, source: source}
	}
}

func (t *Table) Get(key string) (AssetConfig, bool) {
	if cfg, ok := t.manual[key]; ok {
		return cfg, true
	}
	if e, ok := t.files[key]; ok {
		return e.config, true
	}
	return nil, false
}

// Seal marks that every file is merged and key lookups may start.
func (t *Table) Seal() {
	t.sealed = true
}

func (t *Table) Sealed() bool {
	return t.sealed
}

func (t *Table) Len() int {
	return len(t.Keys())
}

// Keys returns every known key, sorted.
func (t *Table) Keys() []string {
	seen := make(map[string]struct{}, len(t.manual)+len(t.files))
	for k := range t.manual {
		seen[k] = struct{}{}
	}
	for k := range t.files {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset forgets every key and unseals the table.
func (t *Table) Reset() {
	clear(t.manual)
	clear(t.files)
	t.sealed = false
}
