package asset

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recordingReloader struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingReloader) Reload(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
}

func (r *recordingReloader) reloaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func waitEvent(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case p, ok := <-w.Events:
		if !ok {
			t.Fatalf("watcher closed")
		}
		return p
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a reload")
	}
	return ""
}

func TestWatcherReadsFinalWriteOfBurst(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "note.txt")
	writeFile(t, file, "v1")

	s := NewServer(os.DirFS(dir))
	h := s.Load("note.txt")
	s.Wait()

	w, err := NewWatcher(s, dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFile(t, file, "")
	time.Sleep(20 * time.Millisecond)
	writeFile(t, file, "v2-full")

	if p := waitEvent(t, w); p != "note.txt" {
		t.Fatalf("expected note.txt, got %q", p)
	}
	s.Wait()

	v, ok := Typed[[]byte](s, h)
	if !ok || string(v) != "v2-full" {
		t.Fatalf("expected store to hold %q, got %q (ok=%v, state %v)", "v2-full", v, ok, s.State(h))
	}
}

func TestWatcherReloadsOncePerBurst(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "level.assets.yaml")
	writeFile(t, file, "a")

	r := &recordingReloader{}
	w, err := NewWatcher(r, dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	for _, content := range []string{"b", "", "c"} {
		writeFile(t, file, content)
		time.Sleep(10 * time.Millisecond)
	}
	waitEvent(t, w)
	time.Sleep(3 * debounceDelay)

	if diff := cmp.Diff([]string{"level.assets.yaml"}, r.reloaded()); diff != "" {
		t.Fatalf("reloads mismatch (-want +got):\n%s", diff)
	}
}
