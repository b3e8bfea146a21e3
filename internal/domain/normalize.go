package domain

// Page packs a single event into the canonical event-page form.
func (e *Event) Page() *EventPage {
	return PackEvents(e.Descriptor, []*Event{e})
}

// PackEvents batches events into one event page under the given
// descriptor uid. Per-field slices only contain values from events
// that carry the field.
func PackEvents(descriptorUID string, events []*Event) *EventPage {
	page := &EventPage{
		Descriptor: descriptorUID,
		SeqNum:     make([]int, 0, len(events)),
		Time:       make([]float64, 0, len(events)),
		UID:        make([]string, 0, len(events)),
		Data:       map[string][]*NDArray{},
		Timestamps: map[string][]float64{},
	}
	for _, e := range events {
		page.SeqNum = append(page.SeqNum, e.SeqNum)
		page.Time = append(page.Time, e.Time)
		page.UID = append(page.UID, e.UID)
		for field, arr := range e.Data {
			page.Data[field] = append(page.Data[field], arr)
		}
		for field, ts := range e.Timestamps {
			page.Timestamps[field] = append(page.Timestamps[field], ts)
		}
	}
	return page
}

// Events unpacks the page back into singular events, mainly so that
// per-event naming context is available when a file is first opened.
func (p *EventPage) Events() []*Event {
	events := make([]*Event, len(p.SeqNum))
	for i := range events {
		e := &Event{
			Descriptor: p.Descriptor,
			Data:       map[string]*NDArray{},
			Timestamps: map[string]float64{},
		}
		e.SeqNum = p.SeqNum[i]
		if i < len(p.Time) {
			e.Time = p.Time[i]
		}
		if i < len(p.UID) {
			e.UID = p.UID[i]
		}
		for field, arrs := range p.Data {
			if i < len(arrs) {
				e.Data[field] = arrs[i]
			}
		}
		for field, ts := range p.Timestamps {
			if i < len(ts) {
				e.Timestamps[field] = ts[i]
			}
		}
		events[i] = e
	}
	return events
}
