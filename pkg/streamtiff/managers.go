package streamtiff

import "streamtiff/internal/adapters/filemanager"

// MemoryBuffer is an ArtifactManager that keeps artifacts in memory
// instead of landing them on disk. Use it with WithManager for tests
// or callers that post-process output before storing it.
type MemoryBuffer = filemanager.MemoryBuffer

// NewMemoryBuffer returns an in-memory artifact manager.
func NewMemoryBuffer() *MemoryBuffer {
	return filemanager.NewMemoryBuffer()
}
