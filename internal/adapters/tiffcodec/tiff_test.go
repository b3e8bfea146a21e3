package tiffcodec

import (
	"bytes"
	"image"
	"testing"

	"github.com/chai2010/tiff"

	"streamtiff/internal/domain"
)

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

func decodePages(t *testing.T, raw []byte) []image.Image {
	t.Helper()
	groups, errs, err := tiff.DecodeAll(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode container: %v", err)
	}
	var pages []image.Image
	for i, group := range groups {
		for j, img := range group {
			if errs[i][j] != nil {
				t.Fatalf("decode page %d/%d: %v", i, j, errs[i][j])
			}
			pages = append(pages, img)
		}
	}
	return pages
}

func TestEncodeMultiPageRoundTrip(t *testing.T) {
	c, err := New(DTypeUint16, ContainerOptions{})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	sink := &closableBuffer{}
	enc, err := c.NewEncoder(sink)
	if err != nil {
		t.Fatalf("new encoder: %v", err)
	}

	for i := 0; i < 3; i++ {
		frame := domain.Filled(float64(100*(i+1)), 4, 5)
		if err := enc.WriteFrame(frame); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !sink.closed {
		t.Fatalf("sink not closed")
	}

	pages := decodePages(t, sink.Bytes())
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, img := range pages {
		b := img.Bounds()
		if b.Dx() != 5 || b.Dy() != 4 {
			t.Fatalf("page %d bounds %v, want 5x4", i, b)
		}
		// Gray16 reports the raw 16-bit value on every RGBA channel.
		got, _, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
		if want := uint32(100 * (i + 1)); got != want {
			t.Fatalf("page %d pixel = %d, want %d", i, got, want)
		}
	}
}

func TestEncodedPixelValues(t *testing.T) {
	c, err := New(DTypeUint16, ContainerOptions{})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	sink := &closableBuffer{}
	enc, _ := c.NewEncoder(sink)

	frame := &domain.NDArray{Shape: []int{1, 3}, Data: []float64{0, 513, 70000}}
	if err := enc.WriteFrame(frame); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	pages := decodePages(t, sink.Bytes())
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	img, ok := pages[0].(*image.Gray16)
	if !ok {
		t.Fatalf("expected Gray16 page, got %T", pages[0])
	}
	if got := img.Gray16At(0, 0).Y; got != 0 {
		t.Fatalf("pixel 0 = %d", got)
	}
	if got := img.Gray16At(1, 0).Y; got != 513 {
		t.Fatalf("pixel 1 = %d", got)
	}
	// Values above the dtype range clip instead of wrapping.
	if got := img.Gray16At(2, 0).Y; got != 65535 {
		t.Fatalf("pixel 2 = %d, want clipped max", got)
	}
}

func TestUint8Clamping(t *testing.T) {
	c, err := New(DTypeUint8, ContainerOptions{})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	sink := &closableBuffer{}
	enc, _ := c.NewEncoder(sink)

	frame := &domain.NDArray{Shape: []int{1, 4}, Data: []float64{-5, 7.9, 200, 300}}
	if err := enc.WriteFrame(frame); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	pages := decodePages(t, sink.Bytes())
	img, ok := pages[0].(*image.Gray)
	if !ok {
		t.Fatalf("expected Gray page, got %T", pages[0])
	}
	want := []uint8{0, 7, 200, 255}
	for x, w := range want {
		if got := img.GrayAt(x, 0).Y; got != w {
			t.Fatalf("pixel %d = %d, want %d", x, got, w)
		}
	}
}

func TestRejectsNonFrameArrays(t *testing.T) {
	c, _ := New(DTypeUint16, ContainerOptions{})
	enc, _ := c.NewEncoder(&closableBuffer{})

	if err := enc.WriteFrame(domain.Filled(1, 8)); err == nil {
		t.Fatalf("1-D frame should be rejected")
	}
	if err := enc.WriteFrame(domain.Filled(1, 2, 2, 2)); err == nil {
		t.Fatalf("3-D frame should be rejected")
	}
}

func TestCloseIsIdempotentAndEmptyIsLegal(t *testing.T) {
	c, _ := New(DTypeUint16, ContainerOptions{})
	sink := &closableBuffer{}
	enc, _ := c.NewEncoder(sink)

	if err := enc.Close(); err != nil {
		t.Fatalf("close without frames: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("empty encoder wrote %d bytes", sink.Len())
	}
	if err := enc.WriteFrame(domain.Filled(1, 2, 2)); err == nil {
		t.Fatalf("write after close should fail")
	}
}

func TestUnsupportedContainerOptions(t *testing.T) {
	if _, err := New(DTypeUint16, ContainerOptions{BigTIFF: true}); err == nil {
		t.Fatalf("bigtiff should be rejected")
	}
	if _, err := New(DTypeUint16, ContainerOptions{ImageJ: true}); err == nil {
		t.Fatalf("imagej should be rejected")
	}
	if _, err := New(DTypeUint16, ContainerOptions{ByteOrder: "big"}); err == nil {
		t.Fatalf("big-endian should be rejected")
	}
	if _, err := New(DTypeUint16, ContainerOptions{ByteOrder: "middle"}); err == nil {
		t.Fatalf("unknown byte order should be rejected")
	}
	if _, err := New("float32", ContainerOptions{}); err == nil {
		t.Fatalf("unsupported dtype should be rejected")
	}
	if _, err := New(DTypeUint8, ContainerOptions{ByteOrder: "little"}); err != nil {
		t.Fatalf("little-endian uint8 should be accepted: %v", err)
	}
}
