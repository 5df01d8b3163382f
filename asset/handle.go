package asset

import (
	"errors"
	"fmt"
)

// ErrHandleFailure marks every error a store reports for a failed load.
var ErrHandleFailure = errors.New("asset: load failed")

type HandleID uint64

// Handle is an opaque reference to an in-flight or completed load.
type Handle struct {
	id   HandleID
	path string
}

// NewHandle is for Store implementations.
func NewHandle(id HandleID, path string) Handle {
	return Handle{id: id, path: path}
}

func (h Handle) ID() HandleID { return h.id }

// Path is the slash-separated asset path, empty for values added at run time.
func (h Handle) Path() string { return h.path }

func (h Handle) IsZero() bool { return h.id == 0 }

func (h Handle) String() string {
	if h.path == "" {
		return fmt.Sprintf("#%d", h.id)
	}
	return fmt.Sprintf("#%d(%s)", h.id, h.path)
}

type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("load_state(%d)", int(s))
	}
}

// Kind names what a loaded value is, so folders can be checked for uniform
// content.
type Kind string

const (
	KindBytes    Kind = "bytes"
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindScript   Kind = "script"
	KindFolder   Kind = "folder"
	KindAtlas    Kind = "atlas"
	KindMaterial Kind = "material"
)

// Store is the asynchronous asset cache polled by the loading machinery.
// None of its methods may block on a load.
type Store interface {
	// Load requests a single file. Requesting the same path twice returns the
	// same handle.
	Load(path string) Handle
	// LoadFolder requests every file under path, recursively.
	LoadFolder(path string) Handle
	State(h Handle) LoadState
	Kind(h Handle) Kind
	// Folder returns the member handles of a loaded folder.
	Folder(h Handle) ([]Handle, bool)
	Get(h Handle) (any, bool)
	// Err returns the failure of a Failed handle.
	Err(h Handle) error
	// Add stores a value built at run time and returns an already loaded
	// handle for it.
	Add(kind Kind, value any) Handle
}

// Typed fetches a loaded value with a concrete type.
func Typed[T any](s Store, h Handle) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	v, ok := s.Get(h)
	if !ok {
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}
