package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	base "streamtiff/pkg/streamtiff"
)

// syntheticRun builds a complete document sequence: one start, one
// descriptor per stream, a ramp of image events, and a stop. Pixel
// values encode the event index so exported frames are visually
// distinguishable.
func syntheticRun(streams, events, size int) []base.Tagged {
	now := float64(time.Now().Unix())
	runUID := uuid.NewString()

	docs := []base.Tagged{{
		Kind: base.KindStart,
		Doc: &base.RunStart{
			UID:  runUID,
			Time: now,
			Extra: map[string]any{
				"plan_name": "synthetic",
				"operator":  "streamtiff-demo",
			},
		},
	}}

	descUIDs := make([]string, streams)
	for i := 0; i < streams; i++ {
		name := "primary"
		if i > 0 {
			name = fmt.Sprintf("baseline%d", i)
		}
		descUIDs[i] = uuid.NewString()
		docs = append(docs, base.Tagged{
			Kind: base.KindDescriptor,
			Doc: &base.Descriptor{
				UID:      descUIDs[i],
				Name:     name,
				RunStart: runUID,
				DataKeys: map[string]base.DataKey{
					"img":           {Dtype: "array", Shape: []int{size, size}},
					"exposure_time": {Dtype: "number", Shape: nil},
				},
			},
		})
	}

	for seq := 1; seq <= events; seq++ {
		for i := 0; i < streams; i++ {
			ts := now + float64(seq)
			frame := &base.NDArray{Shape: []int{size, size}}
			frame.Data = make([]float64, size*size)
			for p := range frame.Data {
				frame.Data[p] = float64(seq * 100)
			}
			docs = append(docs, base.Tagged{
				Kind: base.KindEvent,
				Doc: &base.Event{
					Descriptor: descUIDs[i],
					SeqNum:     seq,
					Time:       ts,
					UID:        uuid.NewString(),
					Data:       map[string]*base.NDArray{"img": frame},
					Timestamps: map[string]float64{"img": ts},
				},
			})
		}
	}

	docs = append(docs, base.Tagged{
		Kind: base.KindStop,
		Doc: &base.RunStop{
			UID:        uuid.NewString(),
			Time:       now + float64(events) + 1,
			RunStart:   runUID,
			ExitStatus: "success",
		},
	})
	return docs
}
