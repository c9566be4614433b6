// Package delay provides a fixed length delay line.
package delay

// Line delays its input by Len samples.
type Line struct {
	buf []float64
	pos int
}

// New returns a line of n samples, all zero. n is clamped to 1.
func New(n int) *Line {
	if n < 1 {
		n = 1
	}
	return &Line{buf: make([]float64, n)}
}

// Len returns the delay in samples.
func (l *Line) Len() int { return len(l.buf) }

// Shift pushes x and returns the value pushed Len calls ago.
func (l *Line) Shift(x float64) float64 {
	out := l.buf[l.pos]
	l.buf[l.pos] = x
	l.pos++
	if l.pos == len(l.buf) {
		l.pos = 0
	}
	return out
}

// Reset sets every sample to v.
func (l *Line) Reset(v float64) {
	for i := range l.buf {
		l.buf[i] = v
	}
}
