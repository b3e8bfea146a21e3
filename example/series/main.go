// Exports the same frame stream as one file per image, with an
// operator-readable file prefix templated from the start document.
package main

import (
	"fmt"
	"log"

	"streamtiff"
)

func main() {
	frame := &streamtiff.NDArray{Shape: []int{2, 4, 4}, Data: make([]float64, 32)}
	for i := range frame.Data {
		frame.Data[i] = float64(i)
	}

	docs := []streamtiff.Tagged{
		{Kind: streamtiff.KindStart, Doc: &streamtiff.RunStart{
			UID:   "series-run",
			Time:  1,
			Extra: map[string]any{"plan_name": "count"},
		}},
		{Kind: streamtiff.KindDescriptor, Doc: &streamtiff.Descriptor{
			UID:      "desc-1",
			Name:     "primary",
			RunStart: "series-run",
			DataKeys: map[string]streamtiff.DataKey{
				"det": {Dtype: "array", Shape: []int{2, 4, 4}},
			},
		}},
		{Kind: streamtiff.KindEvent, Doc: &streamtiff.Event{
			Descriptor: "desc-1",
			SeqNum:     1,
			Time:       2,
			UID:        "event-1",
			Data:       map[string]*streamtiff.NDArray{"det": frame},
			Timestamps: map[string]float64{"det": 2},
		}},
		{Kind: streamtiff.KindStop, Doc: &streamtiff.RunStop{
			UID: "stop-1", Time: 3, RunStart: "series-run", ExitStatus: "success",
		}},
	}

	artifacts, err := streamtiff.ExportSlice(docs,
		streamtiff.WithDirectory("./out"),
		streamtiff.WithMode(streamtiff.ModeSeries),
		streamtiff.WithFilePrefix("{start[plan_name]}-{start[uid]}-"),
	)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	// The 3-D event decomposes into two frames, so two series files.
	for _, name := range artifacts[streamtiff.LabelStreamData] {
		fmt.Println(name)
	}
}
