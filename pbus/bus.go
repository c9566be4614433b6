package pbus

// Bus broadcasts the last published value to its subscribers.
type Bus struct {
	writers []*Writer
	last    float64
}

// NewBus returns a bus holding initial and no subscriber.
func NewBus(initial float64) *Bus {
	return &Bus{last: initial}
}

// Subscribe returns a reader already holding the current value.
func (b *Bus) Subscribe() *Reader {
	w, r := Link(b.last)
	b.writers = append(b.writers, w)
	return r
}

// Attach registers a writer created elsewhere and syncs it to the
// current value.
func (b *Bus) Attach(w *Writer) {
	if w.Write(b.last) != nil {
		return
	}
	b.writers = append(b.writers, w)
}

// Publish sends v to every live subscriber and drops the dead ones.
func (b *Bus) Publish(v float64) {
	b.last = v
	live := b.writers[:0]
	for _, w := range b.writers {
		if w.Write(v) == nil {
			live = append(live, w)
		}
	}
	clear(b.writers[len(live):])
	b.writers = live
}

// Value returns the last published value.
func (b *Bus) Value() float64 { return b.last }

// Subscribers returns the writer count. Dead subscribers are only
// collected by Publish.
func (b *Bus) Subscribers() int { return len(b.writers) }
