// Package filemanager provides ArtifactManager implementations: one
// backed by a directory on disk and one by in-memory buffers.
package filemanager

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"streamtiff/internal/ports"
)

// MultiFile writes artifacts as files under a base directory. Names may
// contain sub-directories; parents are created on demand. Every file is
// opened with exclusive-create so a repeated name fails instead of
// clobbering earlier output.
type MultiFile struct {
	mu        sync.Mutex
	dir       string
	reserved  map[string]struct{}
	open      map[string]*trackedFile
	artifacts map[string][]string
	closed    bool
}

func NewMultiFile(dir string) *MultiFile {
	return &MultiFile{
		dir:       dir,
		reserved:  map[string]struct{}{},
		open:      map[string]*trackedFile{},
		artifacts: map[string][]string{},
	}
}

func (m *MultiFile) Open(label, name string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.New("file manager is closed")
	}
	if _, dup := m.reserved[name]; dup {
		return nil, fmt.Errorf("%w: %q", ports.ErrArtifactExists, name)
	}

	path := filepath.Join(m.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %q", ports.ErrArtifactExists, name)
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}

	tf := &trackedFile{f: f}
	m.reserved[name] = struct{}{}
	m.open[name] = tf
	m.artifacts[label] = append(m.artifacts[label], path)
	return tf, nil
}

func (m *MultiFile) Artifacts() map[string][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]string, len(m.artifacts))
	for label, names := range m.artifacts {
		out[label] = append([]string(nil), names...)
	}
	return out
}

// Close closes every file still open, even if some closes fail.
func (m *MultiFile) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	names := make([]string, 0, len(m.open))
	for name := range m.open {
		names = append(names, name)
	}
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		if err := m.open[name].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// trackedFile closes its file at most once so that both the codec and
// the manager can safely call Close.
type trackedFile struct {
	f    *os.File
	once sync.Once
	err  error
}

func (t *trackedFile) Write(p []byte) (int, error) { return t.f.Write(p) }

func (t *trackedFile) Close() error {
	t.once.Do(func() { t.err = t.f.Close() })
	return t.err
}

var _ ports.ArtifactManager = (*MultiFile)(nil)
