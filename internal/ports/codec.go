package ports

import (
	"io"

	"streamtiff/internal/domain"
)

// FrameEncoder appends 2-D frames to one image container. Close flushes
// the container and closes the underlying sink; it is idempotent.
type FrameEncoder interface {
	WriteFrame(frame *domain.NDArray) error
	Close() error
}

// Codec binds a FrameEncoder to a writable sink. One encoder writes
// exactly one artifact.
type Codec interface {
	NewEncoder(w io.WriteCloser) (FrameEncoder, error)
}
