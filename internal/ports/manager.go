package ports

import (
	"errors"
	"io"
)

// ErrArtifactExists is returned when the same resolved artifact name is
// opened twice within one run.
var ErrArtifactExists = errors.New("artifact name already in use")

// ArtifactManager hands out writable sinks on demand and owns every
// artifact it opens until Close. Callers hold the returned writer only
// for writing and must not assume anything about its backing store.
type ArtifactManager interface {
	// Open creates a new artifact under the given label ("stream_data",
	// "run_metadata") with exclusive-create semantics: opening a name
	// that was already opened fails with ErrArtifactExists.
	Open(label, name string) (io.WriteCloser, error)

	// Artifacts maps each label to the artifact names opened so far.
	Artifacts() map[string][]string

	// Close releases every artifact still open. Idempotent.
	Close() error
}
