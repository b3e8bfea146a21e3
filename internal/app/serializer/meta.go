package serializer

import "streamtiff/internal/domain"

// runMeta accumulates the JSON metadata sidecar:
//
//	{"metadata": {"start": ..., "stop": ..., "descriptors": {stream: doc}},
//	 "streams": {stream: {"seq_num": [], "uid": [], "time": [],
//	             "timestamps": {field: []}}}}
//
// Streams described by more than one descriptor merge into a single
// streams entry; the descriptors snapshot keeps the latest document
// per stream name.
type runMeta struct {
	Metadata struct {
		Start       *domain.RunStart              `json:"start"`
		Stop        *domain.RunStop               `json:"stop"`
		Descriptors map[string]*domain.Descriptor `json:"descriptors"`
	} `json:"metadata"`
	Streams map[string]*streamMeta `json:"streams"`
}

type streamMeta struct {
	SeqNum     []int                `json:"seq_num"`
	UID        []string             `json:"uid"`
	Time       []float64            `json:"time"`
	Timestamps map[string][]float64 `json:"timestamps"`
}

func newRunMeta() *runMeta {
	m := &runMeta{Streams: map[string]*streamMeta{}}
	m.Metadata.Descriptors = map[string]*domain.Descriptor{}
	return m
}

func (m *runMeta) addDescriptor(doc *domain.Descriptor) {
	m.Metadata.Descriptors[doc.Name] = doc
	if _, ok := m.Streams[doc.Name]; !ok {
		m.Streams[doc.Name] = &streamMeta{
			SeqNum:     []int{},
			UID:        []string{},
			Time:       []float64{},
			Timestamps: map[string][]float64{},
		}
	}
}

func (m *runMeta) addPage(stream string, page *domain.EventPage) {
	sm, ok := m.Streams[stream]
	if !ok {
		return
	}
	sm.SeqNum = append(sm.SeqNum, page.SeqNum...)
	sm.UID = append(sm.UID, page.UID...)
	sm.Time = append(sm.Time, page.Time...)
	for field, ts := range page.Timestamps {
		if sm.Timestamps[field] == nil {
			sm.Timestamps[field] = []float64{}
		}
		sm.Timestamps[field] = append(sm.Timestamps[field], ts...)
	}
}
