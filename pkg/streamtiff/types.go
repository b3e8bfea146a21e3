package streamtiff

import (
	"streamtiff/internal/adapters/tiffcodec"
	"streamtiff/internal/app/serializer"
	"streamtiff/internal/domain"
	"streamtiff/internal/ports"
)

// Kind classifies a document: start, descriptor, event, event_page,
// bulk_event or stop.
type Kind = domain.Kind

const (
	KindStart      = domain.KindStart
	KindDescriptor = domain.KindDescriptor
	KindEvent      = domain.KindEvent
	KindEventPage  = domain.KindEventPage
	KindBulkEvent  = domain.KindBulkEvent
	KindStop       = domain.KindStop
)

// Tagged pairs a document with its kind; it is the unit Export consumes.
type Tagged = domain.Tagged

// Document types.
type (
	RunStart   = domain.RunStart
	RunStop    = domain.RunStop
	Descriptor = domain.Descriptor
	DataKey    = domain.DataKey
	Event      = domain.Event
	EventPage  = domain.EventPage
	BulkEvent  = domain.BulkEvent
	NDArray    = domain.NDArray
)

// Serializer is the single-run document router.
type Serializer = serializer.Serializer

// Mode selects stacked (multi-page file per stream/field) or series
// (one file per frame) output layout.
type Mode = serializer.Mode

const (
	ModeStacked = serializer.ModeStacked
	ModeSeries  = serializer.ModeSeries
)

// Artifact labels used in the map returned by Export and Artifacts.
const (
	LabelStreamData  = serializer.LabelStreamData
	LabelRunMetadata = serializer.LabelRunMetadata
)

// DefaultFilePrefix is the naming template used when none is given.
const DefaultFilePrefix = serializer.DefaultFilePrefix

// Capability interfaces for custom backends.
type (
	ArtifactManager = ports.ArtifactManager
	Codec           = ports.Codec
	FrameEncoder    = ports.FrameEncoder
	Observability   = ports.Observability
	Field           = ports.Field
)

// DType selects the numeric type frames are coerced to before encoding.
type DType = tiffcodec.DType

const (
	DTypeUint8  = tiffcodec.DTypeUint8
	DTypeUint16 = tiffcodec.DTypeUint16
)

// ContainerOptions carries TIFF container flags.
type ContainerOptions = tiffcodec.ContainerOptions

// Sentinel errors surfaced by the serializer.
var (
	ErrMultipleRuns      = serializer.ErrMultipleRuns
	ErrNoRunStart        = serializer.ErrNoRunStart
	ErrRunClosed         = serializer.ErrRunClosed
	ErrUnknownDescriptor = serializer.ErrUnknownDescriptor
	ErrBadTemplate       = serializer.ErrBadTemplate
	ErrArtifactExists    = ports.ErrArtifactExists
)
