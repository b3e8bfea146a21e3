package domain

import (
	"reflect"
	"testing"
)

func TestPackEventsAndUnpack(t *testing.T) {
	events := []*Event{
		{
			Descriptor: "desc-1",
			SeqNum:     1,
			Time:       10,
			UID:        "ev-1",
			Data:       map[string]*NDArray{"img": Filled(1, 2, 2)},
			Timestamps: map[string]float64{"img": 10},
		},
		{
			Descriptor: "desc-1",
			SeqNum:     2,
			Time:       11,
			UID:        "ev-2",
			Data:       map[string]*NDArray{"img": Filled(2, 2, 2)},
			Timestamps: map[string]float64{"img": 11},
		},
	}

	page := PackEvents("desc-1", events)
	if !reflect.DeepEqual(page.SeqNum, []int{1, 2}) {
		t.Fatalf("seq_num = %v", page.SeqNum)
	}
	if len(page.Data["img"]) != 2 {
		t.Fatalf("expected 2 samples for img, got %d", len(page.Data["img"]))
	}
	if !reflect.DeepEqual(page.Timestamps["img"], []float64{10, 11}) {
		t.Fatalf("timestamps = %v", page.Timestamps["img"])
	}

	back := page.Events()
	if len(back) != 2 {
		t.Fatalf("expected 2 events back, got %d", len(back))
	}
	if back[1].UID != "ev-2" || back[1].SeqNum != 2 {
		t.Fatalf("event 1 mismatch: %+v", back[1])
	}
	if back[0].Data["img"].Data[0] != 1 {
		t.Fatalf("event 0 lost its array")
	}
}

func TestEventPage(t *testing.T) {
	e := &Event{
		Descriptor: "desc-1",
		SeqNum:     7,
		Time:       3,
		UID:        "ev-7",
		Data:       map[string]*NDArray{"img": Filled(0, 2, 2)},
		Timestamps: map[string]float64{"img": 3},
	}

	page := e.Page()
	if page.Descriptor != "desc-1" {
		t.Fatalf("descriptor = %q", page.Descriptor)
	}
	if !reflect.DeepEqual(page.UID, []string{"ev-7"}) {
		t.Fatalf("uid = %v", page.UID)
	}
	if len(page.Data["img"]) != 1 {
		t.Fatalf("expected one sample, got %d", len(page.Data["img"]))
	}
}
