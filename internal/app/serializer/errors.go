package serializer

import "errors"

var (
	// ErrMultipleRuns is returned when a second start document reaches a
	// serializer that already belongs to a run.
	ErrMultipleRuns = errors.New("serializer accepts documents from one run only")

	// ErrNoRunStart is returned for any document that arrives before the
	// start document. No artifact may be created before the naming
	// context exists.
	ErrNoRunStart = errors.New("document received before run start")

	// ErrRunClosed is returned for documents that arrive after the stop
	// document.
	ErrRunClosed = errors.New("run already stopped")

	// ErrUnknownDescriptor is returned when an event references a
	// descriptor uid (or a bulk event a stream name) that was never
	// declared.
	ErrUnknownDescriptor = errors.New("unknown descriptor")

	// ErrBadTemplate is returned when the file-prefix template cannot be
	// parsed or a placeholder cannot be resolved.
	ErrBadTemplate = errors.New("bad file prefix template")
)
