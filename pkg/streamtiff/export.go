package streamtiff

import "context"

// Export drives a serializer over a channel of tagged documents until
// the channel closes, the context is cancelled, or a document fails.
// The serializer is closed on every exit path, so all file resources
// are released even when processing aborts partway through.
//
// The returned map lists the artifacts written per label; it is
// populated even on error so callers can verify or clean up.
func Export(ctx context.Context, docs <-chan Tagged, opts ...Option) (map[string][]string, error) {
	s, err := NewSerializer(opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for {
		select {
		case <-ctx.Done():
			return s.Artifacts(), ctx.Err()
		case doc, ok := <-docs:
			if !ok {
				return s.Artifacts(), s.Close()
			}
			if err := s.Route(doc); err != nil {
				return s.Artifacts(), err
			}
		}
	}
}

// ExportSlice is Export for an in-memory document sequence.
func ExportSlice(docs []Tagged, opts ...Option) (map[string][]string, error) {
	s, err := NewSerializer(opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for _, doc := range docs {
		if err := s.Route(doc); err != nil {
			return s.Artifacts(), err
		}
	}
	return s.Artifacts(), s.Close()
}
