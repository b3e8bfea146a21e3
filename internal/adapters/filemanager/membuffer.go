package filemanager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"streamtiff/internal/ports"
)

// MemoryBuffer keeps artifacts in memory. Useful for tests and for
// callers that post-process output instead of landing it on disk.
type MemoryBuffer struct {
	mu        sync.Mutex
	buffers   map[string]*bytes.Buffer
	artifacts map[string][]string
	closed    bool
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{
		buffers:   map[string]*bytes.Buffer{},
		artifacts: map[string][]string{},
	}
}

func (m *MemoryBuffer) Open(label, name string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.New("buffer manager is closed")
	}
	if _, dup := m.buffers[name]; dup {
		return nil, fmt.Errorf("%w: %q", ports.ErrArtifactExists, name)
	}

	buf := &bytes.Buffer{}
	m.buffers[name] = buf
	m.artifacts[label] = append(m.artifacts[label], name)
	return nopCloser{buf}, nil
}

// Buffer returns the contents written under name, or nil if the
// artifact was never opened.
func (m *MemoryBuffer) Buffer(name string) *bytes.Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffers[name]
}

func (m *MemoryBuffer) Artifacts() map[string][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]string, len(m.artifacts))
	for label, names := range m.artifacts {
		out[label] = append([]string(nil), names...)
	}
	return out
}

func (m *MemoryBuffer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

var _ ports.ArtifactManager = (*MemoryBuffer)(nil)
