package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := newQueue()
	_, ok := q.pop()
	assert.False(t, ok)

	for i := range 5 {
		q.push(Command{Kind: SetBusValue, Value: float64(i)})
	}
	for i := range 5 {
		c, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, float64(i), c.Value)
	}
	_, ok = q.pop()
	assert.False(t, ok)
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 1000
	q := newQueue()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.push(Command{Channel: fmt.Sprint(p), Value: float64(i)})
			}
		}()
	}

	next := make(map[string]float64)
	received := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	drain := func() {
		for {
			c, ok := q.pop()
			if !ok {
				return
			}
			// every producer's commands come out in the order pushed
			assert.Equal(t, next[c.Channel], c.Value)
			next[c.Channel] = c.Value + 1
			received++
		}
	}
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		drain()
	}
	drain()

	assert.Equal(t, producers*perProducer, received)
}
