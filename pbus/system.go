// Package pbus implements the parameter buses: named float64 channels
// broadcasting their last value to lock-free single writer cells.
//
// A System is not safe for concurrent use. It belongs to the goroutine
// sampling the tree; only the Readers it hands out cross goroutines.
package pbus

import "fmt"

// DefaultValue is the value of a channel created by a subscription.
const DefaultValue = 0.0

// ErrNoSuchChannel is returned when publishing to a channel nobody ever
// subscribed to.
type ErrNoSuchChannel struct {
	Channel string
}

func (e ErrNoSuchChannel) Error() string {
	return fmt.Sprintf("pbus: no such channel %q", e.Channel)
}

// System is the registry of named buses. Channels are never removed.
type System struct {
	buses map[string]*Bus
}

// NewSystem returns an empty registry.
func NewSystem() *System {
	return &System{buses: make(map[string]*Bus)}
}

func (s *System) bus(channel string) *Bus {
	b, ok := s.buses[channel]
	if !ok {
		b = NewBus(DefaultValue)
		s.buses[channel] = b
	}
	return b
}

// Subscribe returns a reader on channel, creating the channel if unseen.
func (s *System) Subscribe(channel string) *Reader {
	return s.bus(channel).Subscribe()
}

// Attach connects a pre-linked writer to channel, creating the channel if
// unseen.
func (s *System) Attach(channel string, w *Writer) {
	s.bus(channel).Attach(w)
}

// Declare creates channel holding initial. An existing channel is left
// untouched.
func (s *System) Declare(channel string, initial float64) {
	if _, ok := s.buses[channel]; !ok {
		s.buses[channel] = NewBus(initial)
	}
}

// Publish sets the value of an existing channel.
func (s *System) Publish(channel string, v float64) error {
	b, ok := s.buses[channel]
	if !ok {
		return ErrNoSuchChannel{Channel: channel}
	}
	b.Publish(v)
	return nil
}

// Value returns the current value of channel.
func (s *System) Value(channel string) (float64, bool) {
	b, ok := s.buses[channel]
	if !ok {
		return 0, false
	}
	return b.Value(), true
}

// Channels returns the number of known channels.
func (s *System) Channels() int { return len(s.buses) }

// Subscribers returns the subscriber count of channel, zero if unknown.
func (s *System) Subscribers(channel string) int {
	if b, ok := s.buses[channel]; ok {
		return b.Subscribers()
	}
	return 0
}
