// Package tiffcodec implements the FrameEncoder port on top of
// github.com/chai2010/tiff. Frames are buffered per artifact and the
// multi-page container is written once, on Close.
package tiffcodec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/chai2010/tiff"

	"streamtiff/internal/domain"
	"streamtiff/internal/ports"
)

// DType selects the numeric type frames are coerced to before encoding.
// The default is uint16: many image viewers cannot open deeper files.
type DType string

const (
	DTypeUint8  DType = "uint8"
	DTypeUint16 DType = "uint16"
)

// ParseDType validates a dtype name from configuration.
func ParseDType(s string) (DType, error) {
	switch DType(s) {
	case DTypeUint8, DTypeUint16:
		return DType(s), nil
	case "":
		return DTypeUint16, nil
	}
	return "", fmt.Errorf("unsupported output dtype %q", s)
}

// ContainerOptions carries the TIFF container flags from the
// configuration surface. The underlying encoder writes little-endian
// classic TIFF; flags it cannot honor are rejected at construction
// instead of being silently dropped.
type ContainerOptions struct {
	BigTIFF   bool
	ByteOrder string // "", "little" or "big"
	ImageJ    bool
}

// Codec builds frame encoders for one dtype/container configuration.
type Codec struct {
	dtype DType
}

func New(dtype DType, opts ContainerOptions) (*Codec, error) {
	if _, err := ParseDType(string(dtype)); err != nil {
		return nil, err
	}
	if dtype == "" {
		dtype = DTypeUint16
	}
	if opts.BigTIFF {
		return nil, errors.New("bigtiff output is not supported by this codec")
	}
	if opts.ImageJ {
		return nil, errors.New("imagej-compatible output is not supported by this codec")
	}
	switch opts.ByteOrder {
	case "", "little":
	case "big":
		return nil, errors.New("big-endian output is not supported by this codec")
	default:
		return nil, fmt.Errorf("unknown byte order %q", opts.ByteOrder)
	}
	return &Codec{dtype: dtype}, nil
}

func (c *Codec) NewEncoder(w io.WriteCloser) (ports.FrameEncoder, error) {
	if w == nil {
		return nil, errors.New("nil sink")
	}
	return &encoder{w: w, dtype: c.dtype}, nil
}

type encoder struct {
	w      io.WriteCloser
	dtype  DType
	pages  [][]image.Image
	closed bool
	err    error
}

func (e *encoder) WriteFrame(frame *domain.NDArray) error {
	if e.closed {
		return errors.New("encoder is closed")
	}
	if frame.NDim() != 2 {
		return fmt.Errorf("frame must be 2-dimensional, got %d dimensions", frame.NDim())
	}
	img, err := e.toImage(frame)
	if err != nil {
		return err
	}
	e.pages = append(e.pages, []image.Image{img})
	return nil
}

// Close encodes the buffered pages and closes the sink. Safe to call
// more than once; later calls return the first error.
func (e *encoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true

	if len(e.pages) > 0 {
		e.err = tiff.EncodeAll(e.w, e.pages, nil)
	}
	if cerr := e.w.Close(); cerr != nil && e.err == nil {
		e.err = cerr
	}
	return e.err
}

func (e *encoder) toImage(frame *domain.NDArray) (image.Image, error) {
	h, w := frame.Shape[0], frame.Shape[1]
	rect := image.Rect(0, 0, w, h)

	switch e.dtype {
	case DTypeUint8:
		img := image.NewGray(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(clamp(frame.Data[y*w+x], math.MaxUint8))})
			}
		}
		return img, nil
	case DTypeUint16:
		img := image.NewGray16(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(clamp(frame.Data[y*w+x], math.MaxUint16))})
			}
		}
		return img, nil
	}
	return nil, fmt.Errorf("unsupported output dtype %q", e.dtype)
}

// clamp truncates toward zero and clips to [0, max].
func clamp(v, max float64) float64 {
	v = math.Trunc(v)
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

var _ ports.Codec = (*Codec)(nil)
