// Exports a tiny in-memory run to stacked TIFF files in ./out.
package main

import (
	"fmt"
	"log"

	"streamtiff"
)

func main() {
	docs := []streamtiff.Tagged{
		{Kind: streamtiff.KindStart, Doc: &streamtiff.RunStart{UID: "example-run", Time: 1}},
		{Kind: streamtiff.KindDescriptor, Doc: &streamtiff.Descriptor{
			UID:      "desc-1",
			Name:     "primary",
			RunStart: "example-run",
			DataKeys: map[string]streamtiff.DataKey{
				"img": {Dtype: "array", Shape: []int{8, 8}},
			},
		}},
	}
	for seq := 1; seq <= 3; seq++ {
		frame := &streamtiff.NDArray{Shape: []int{8, 8}, Data: make([]float64, 64)}
		for i := range frame.Data {
			frame.Data[i] = float64(seq)
		}
		docs = append(docs, streamtiff.Tagged{Kind: streamtiff.KindEvent, Doc: &streamtiff.Event{
			Descriptor: "desc-1",
			SeqNum:     seq,
			Time:       float64(seq),
			UID:        fmt.Sprintf("event-%d", seq),
			Data:       map[string]*streamtiff.NDArray{"img": frame},
			Timestamps: map[string]float64{"img": float64(seq)},
		}})
	}
	docs = append(docs, streamtiff.Tagged{Kind: streamtiff.KindStop, Doc: &streamtiff.RunStop{
		UID: "stop-1", Time: 4, RunStart: "example-run", ExitStatus: "success",
	}})

	artifacts, err := streamtiff.ExportSlice(docs, streamtiff.WithDirectory("./out"))
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	for label, names := range artifacts {
		for _, name := range names {
			fmt.Printf("%s\t%s\n", label, name)
		}
	}
}
