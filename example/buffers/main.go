// Serializes a run into in-memory buffers instead of files.
package main

import (
	"fmt"
	"log"

	"streamtiff"
)

func main() {
	manager := streamtiff.NewMemoryBuffer()

	docs := []streamtiff.Tagged{
		{Kind: streamtiff.KindStart, Doc: &streamtiff.RunStart{UID: "buffered-run", Time: 1}},
		{Kind: streamtiff.KindDescriptor, Doc: &streamtiff.Descriptor{
			UID:      "desc-1",
			Name:     "primary",
			RunStart: "buffered-run",
			DataKeys: map[string]streamtiff.DataKey{
				"img": {Dtype: "array", Shape: []int{4, 4}},
			},
		}},
		{Kind: streamtiff.KindEvent, Doc: &streamtiff.Event{
			Descriptor: "desc-1",
			SeqNum:     1,
			Time:       2,
			UID:        "event-1",
			Data: map[string]*streamtiff.NDArray{
				"img": {Shape: []int{4, 4}, Data: make([]float64, 16)},
			},
			Timestamps: map[string]float64{"img": 2},
		}},
		{Kind: streamtiff.KindStop, Doc: &streamtiff.RunStop{
			UID: "stop-1", Time: 3, RunStart: "buffered-run", ExitStatus: "success",
		}},
	}

	artifacts, err := streamtiff.ExportSlice(docs, streamtiff.WithManager(manager))
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	for _, name := range artifacts[streamtiff.LabelStreamData] {
		fmt.Printf("%s: %d bytes of TIFF\n", name, manager.Buffer(name).Len())
	}
}
