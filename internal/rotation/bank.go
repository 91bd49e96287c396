package rotation

// Bank maps question identifiers to opaque content and remembers the order in
// which identifiers were first added. The engine only reads identifiers.
type Bank[C any] struct {
	ids  []string
	byID map[string]C
}

// NewBank creates an empty bank sized for capacity questions.
func NewBank[C any](capacity int) *Bank[C] {
	return &Bank[C]{
		ids:  make([]string, 0, capacity),
		byID: make(map[string]C, capacity),
	}
}

// Put adds or replaces a question. Replacing keeps the original position.
func (b *Bank[C]) Put(id string, content C) {
	if _, ok := b.byID[id]; !ok {
		b.ids = append(b.ids, id)
	}
	b.byID[id] = content
}

// Lookup returns the content stored under id.
func (b *Bank[C]) Lookup(id string) (C, bool) {
	c, ok := b.byID[id]
	return c, ok
}

// IDs returns a copy of the identifiers in insertion order.
func (b *Bank[C]) IDs() []string {
	out := make([]string, len(b.ids))
	copy(out, b.ids)
	return out
}

func (b *Bank[C]) Len() int {
	return len(b.ids)
}
