package asset

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const defaultWorkers = 4

// Server is a Store backed by an fs.FS. Files are read and decoded on worker
// goroutines; every query only reads the latest published result.
type Server struct {
	fsys    fs.FS
	loaders map[string]Loader
	logger  *zap.Logger
	sem     *semaphore.Weighted

	mu      sync.Mutex
	byKey   map[string]HandleID
	entries map[HandleID]*entry
	nextID  HandleID
	wg      sync.WaitGroup
}

type entry struct {
	handle  Handle
	folder  bool
	kind    Kind
	state   LoadState
	value   any
	err     error
	members []Handle
	// version guards against a stale worker publishing after a reload.
	version uint64
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers bounds how many files are read and decoded at once.
func WithWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLoader registers a loader for an extension such as ".json".
func WithLoader(ext string, loader Loader) Option {
	return func(s *Server) {
		s.loaders[strings.ToLower(ext)] = loader
	}
}

func NewServer(fsys fs.FS, opts ...Option) *Server {
	s := &Server{
		fsys:    fsys,
		loaders: DefaultLoaders(),
		logger:  zap.NewNop(),
		sem:     semaphore.NewWeighted(defaultWorkers),
		byKey:   make(map[string]HandleID),
		entries: make(map[HandleID]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Load(p string) Handle {
	clean := CleanPath(p)
	e, created := s.lookupOrCreate("file:"+clean, clean, false, s.loaderFor(clean).Kind)
	if created {
		s.spawnFile(e.handle, e.version)
	}
	return e.handle
}

func (s *Server) LoadFolder(p string) Handle {
	clean := CleanPath(p)
	e, created := s.lookupOrCreate("folder:"+clean, clean, true, KindFolder)
	if created {
		s.spawnFolder(e.handle, e.version)
	}
	return e.handle
}

func (s *Server) State(h Handle) LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[h.id]; ok {
		return e.state
	}
	return NotLoaded
}

func (s *Server) Kind(h Handle) Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[h.id]; ok {
		return e.kind
	}
	return ""
}

func (s *Server) Folder(h Handle) ([]Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h.id]
	if !ok || !e.folder || e.state != Loaded {
		return nil, false
	}
	return append([]Handle(nil), e.members...), true
}

func (s *Server) Get(h Handle) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h.id]
	if !ok || e.state != Loaded || e.folder {
		return nil, false
	}
	return e.value, true
}

func (s *Server) Err(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[h.id]; ok {
		return e.err
	}
	return nil
}

func (s *Server) Add(kind Kind, value any) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	h := NewHandle(s.nextID, "")
	s.entries[h.id] = &entry{handle: h, kind: kind, state: Loaded, value: value}
	return h
}

// Reload re-reads a file that was loaded before and relists every loaded
// folder containing it. Unknown paths are ignored.
func (s *Server) Reload(p string) {
	clean := CleanPath(p)
	type job struct {
		handle  Handle
		folder  bool
		version uint64
	}
	var jobs []job

	s.mu.Lock()
	if id, ok := s.byKey["file:"+clean]; ok {
		e := s.entries[id]
		e.version++
		e.state = Loading
		e.value, e.err = nil, nil
		jobs = append(jobs, job{handle: e.handle, version: e.version})
	}
	for key, id := range s.byKey {
		dir, ok := strings.CutPrefix(key, "folder:")
		if !ok || !containsPath(dir, clean) {
			continue
		}
		e := s.entries[id]
		e.version++
		e.state = Loading
		e.members, e.err = nil, nil
		jobs = append(jobs, job{handle: e.handle, folder: true, version: e.version})
	}
	s.mu.Unlock()

	for _, j := range jobs {
		s.logger.Debug("reloading asset", zap.String("path", j.handle.path), zap.Bool("folder", j.folder))
		if j.folder {
			s.spawnFolder(j.handle, j.version)
		} else {
			s.spawnFile(j.handle, j.version)
		}
	}
}

// Wait blocks until every worker started so far has published its result.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) lookupOrCreate(key, clean string, folder bool, kind Kind) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[key]; ok {
		return s.entries[id], false
	}
	s.nextID++
	e := &entry{
		handle: NewHandle(s.nextID, clean),
		folder: folder,
		kind:   kind,
		state:  Loading,
	}
	s.byKey[key] = e.handle.id
	s.entries[e.handle.id] = e
	return e, true
}

func (s *Server) loaderFor(p string) Loader {
	if l, ok := s.loaders[Ext(p)]; ok {
		return l
	}
	return bytesLoader
}

func (s *Server) spawnFile(h Handle, version uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		value, err := s.readFile(h.path)
		s.publish(h, version, func(e *entry) {
			if err != nil {
				e.state, e.err = Failed, err
				return
			}
			e.state, e.value = Loaded, value
		})
		if err != nil {
			s.logger.Warn("asset load failed", zap.String("path", h.path), zap.Error(err))
		}
	}()
}

func (s *Server) spawnFolder(h Handle, version uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		files, err := s.listFolder(h.path)
		if err != nil {
			s.publish(h, version, func(e *entry) { e.state, e.err = Failed, err })
			s.logger.Warn("asset folder load failed", zap.String("path", h.path), zap.Error(err))
			return
		}
		members := make([]Handle, 0, len(files))
		for _, f := range files {
			members = append(members, s.Load(f))
		}
		s.publish(h, version, func(e *entry) { e.state, e.members = Loaded, members })
	}()
}

func (s *Server) publish(h Handle, version uint64, apply func(*entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h.id]
	if !ok || e.version != version {
		return
	}
	apply(e)
}

func (s *Server) readFile(p string) (any, error) {
	if err := s.sem.Acquire(context.Background(), 1); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHandleFailure, p, err)
	}
	defer s.sem.Release(1)

	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrHandleFailure, p, err)
	}
	value, err := s.loaderFor(p).Decode(p, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandleFailure, err)
	}
	return value, nil
}

// listFolder walks a directory in lexical order, skipping hidden files.
func (s *Server) listFolder(dir string) ([]string, error) {
	if err := s.sem.Acquire(context.Background(), 1); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHandleFailure, dir, err)
	}
	defer s.sem.Release(1)

	var files []string
	err := fs.WalkDir(s.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != dir {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrHandleFailure, dir, err)
	}
	return files, nil
}

func containsPath(dir, p string) bool {
	if dir == "." {
		return true
	}
	return strings.HasPrefix(p, dir+"/") || path.Dir(p) == dir
}
