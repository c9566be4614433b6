package delay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLine(t *testing.T) {
	const n = 10
	line := New(n)
	assert.Equal(t, n, line.Len())

	for i := 1; i < 100; i++ {
		out := line.Shift(float64(i))
		if i <= n {
			assert.Equal(t, 0.0, out)
		} else {
			assert.Equal(t, float64(i-n), out)
		}
	}
}

func TestLineLengths(t *testing.T) {
	for _, n := range []int{1, 2, 7, 441} {
		line := New(n)
		for i := 0; i < 3*n; i++ {
			out := line.Shift(float64(i + 1))
			if i >= n {
				assert.Equal(t, float64(i+1-n), out, "n=%d i=%d", n, i)
			}
		}
	}
}

func TestResetAndClamp(t *testing.T) {
	line := New(0)
	assert.Equal(t, 1, line.Len())
	line.Reset(0.5)
	assert.Equal(t, 0.5, line.Shift(1))
	assert.Equal(t, 1.0, line.Shift(2))
}
