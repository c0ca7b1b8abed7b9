package utils

// Bounded is a newest-first list that keeps at most Cap items.
type Bounded[T any] struct {
	Cap   int
	Items []T
}

// NewBounded wraps existing items, trimming them to capacity.
func NewBounded[T any](capacity int, items []T) *Bounded[T] {
	b := &Bounded[T]{Cap: capacity, Items: append([]T(nil), items...)}
	b.trim()
	return b
}

// Push inserts v at the front, evicting the oldest item past capacity.
func (b *Bounded[T]) Push(v T) {
	b.Items = append([]T{v}, b.Items...)
	b.trim()
}

// PushUnique removes any item equal to v before pushing it to the front.
func (b *Bounded[T]) PushUnique(v T, eq func(a, b T) bool) {
	kept := b.Items[:0:0]
	for _, it := range b.Items {
		if !eq(it, v) {
			kept = append(kept, it)
		}
	}
	b.Items = kept
	b.Push(v)
}

func (b *Bounded[T]) trim() {
	if b.Cap >= 0 && len(b.Items) > b.Cap {
		b.Items = b.Items[:b.Cap]
	}
}
