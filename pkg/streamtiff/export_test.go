package streamtiff

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/tiff"

	"streamtiff/internal/domain"
)

func runDocs() []Tagged {
	docs := []Tagged{
		{Kind: KindStart, Doc: &RunStart{UID: "run-1", Time: 1, Extra: map[string]any{"plan_name": "scan"}}},
		{Kind: KindDescriptor, Doc: &Descriptor{
			UID:      "desc-1",
			Name:     "primary",
			RunStart: "run-1",
			DataKeys: map[string]DataKey{"img": {Dtype: "array", Shape: []int{4, 4}}},
		}},
	}
	for i := 1; i <= 3; i++ {
		docs = append(docs, Tagged{Kind: KindEvent, Doc: &Event{
			Descriptor: "desc-1",
			SeqNum:     i,
			Time:       float64(i),
			UID:        "ev",
			Data:       map[string]*NDArray{"img": domain.Filled(float64(i), 4, 4)},
			Timestamps: map[string]float64{"img": float64(i)},
		}})
	}
	docs = append(docs, Tagged{Kind: KindStop, Doc: &RunStop{UID: "stop-1", RunStart: "run-1", ExitStatus: "success"}})
	return docs
}

func TestExportSliceWritesStackedTIFF(t *testing.T) {
	dir := t.TempDir()

	artifacts, err := ExportSlice(runDocs(), WithDirectory(dir))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	data := artifacts[LabelStreamData]
	if len(data) != 1 || filepath.Base(data[0]) != "run-1-primary-img.tiff" {
		t.Fatalf("stream_data = %v", data)
	}

	raw, err := os.ReadFile(data[0])
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	groups, _, err := tiff.DecodeAll(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	pages := 0
	for _, g := range groups {
		pages += len(g)
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}

	meta := artifacts[LabelRunMetadata]
	if len(meta) != 1 || filepath.Base(meta[0]) != "run-1-meta.json" {
		t.Fatalf("run_metadata = %v", meta)
	}
	if _, err := os.Stat(meta[0]); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
}

func TestExportSliceSeriesNaming(t *testing.T) {
	dir := t.TempDir()

	artifacts, err := ExportSlice(runDocs(),
		WithDirectory(dir),
		WithMode(ModeSeries),
		WithFilePrefix("{start[plan_name]}-"),
	)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	data := artifacts[LabelStreamData]
	if len(data) != 3 {
		t.Fatalf("expected 3 series files, got %v", data)
	}
	want := map[string]bool{
		"scan-primary-img-00000.tiff": true,
		"scan-primary-img-00001.tiff": true,
		"scan-primary-img-00002.tiff": true,
	}
	for _, path := range data {
		if !want[filepath.Base(path)] {
			t.Fatalf("unexpected artifact %s", path)
		}
	}
}

func TestExportChannelAndCancellation(t *testing.T) {
	docs := make(chan Tagged)
	go func() {
		for _, doc := range runDocs() {
			docs <- doc
		}
		close(docs)
	}()

	artifacts, err := Export(context.Background(), docs, WithDirectory(t.TempDir()))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(artifacts[LabelStreamData]) != 1 {
		t.Fatalf("stream_data = %v", artifacts[LabelStreamData])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := make(chan Tagged)
	if _, err := Export(ctx, blocked, WithDirectory(t.TempDir())); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExportFailsFastOnBadDocument(t *testing.T) {
	docs := runDocs()
	// A second start document mid-stream aborts the export.
	docs = append(docs[:2], Tagged{Kind: KindStart, Doc: &RunStart{UID: "run-2"}})

	_, err := ExportSlice(docs, WithDirectory(t.TempDir()))
	if !errors.Is(err, ErrMultipleRuns) {
		t.Fatalf("expected ErrMultipleRuns, got %v", err)
	}
}

func TestExportToMemoryBuffer(t *testing.T) {
	mgr := NewMemoryBuffer()

	artifacts, err := ExportSlice(runDocs(), WithManager(mgr))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	data := artifacts[LabelStreamData]
	if len(data) != 1 || data[0] != "run-1-primary-img.tiff" {
		t.Fatalf("stream_data = %v", data)
	}
	if mgr.Buffer(data[0]).Len() == 0 {
		t.Fatalf("buffered artifact is empty")
	}
	if mgr.Buffer("run-1-meta.json") == nil {
		t.Fatalf("sidecar not buffered")
	}
}

func TestNewSerializerRequiresOutput(t *testing.T) {
	if _, err := NewSerializer(); err == nil {
		t.Fatalf("expected error without directory or manager")
	}
	if _, err := NewSerializer(WithDirectory(t.TempDir()), WithTIFFOptions(ContainerOptions{BigTIFF: true})); err == nil {
		t.Fatalf("expected error for unsupported container options")
	}
}

func TestFromConfigBuildsWorkingOptions(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cfg.Output.Dir = dir
	cfg.Naming.Mode = "series"
	cfg.TIFF.DType = "uint8"

	opts, err := FromConfig(cfg, WithFilePrefix("fixed-"))
	if err != nil {
		t.Fatalf("from config: %v", err)
	}

	artifacts, err := ExportSlice(runDocs(), opts...)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data := artifacts[LabelStreamData]
	if len(data) != 3 || filepath.Base(data[0]) != "fixed-primary-img-00000.tiff" {
		t.Fatalf("stream_data = %v", data)
	}
}
