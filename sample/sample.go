// Package sample holds the frame algebra shared by every node of the
// synthesis tree.
package sample

import "fmt"

// Value is one non-silent frame, mono or stereo.
type Value struct {
	stereo      bool
	right, left float64
}

// Mono returns a single channel frame.
func Mono(x float64) Value { return Value{right: x, left: x} }

// Stereo returns a two channel frame. Right comes first.
func Stereo(right, left float64) Value { return Value{stereo: true, right: right, left: left} }

// IsStereo reports whether v carries two independent channels.
func (v Value) IsStereo() bool { return v.stereo }

// Mono returns the mono value. For a stereo frame it returns the average
// of both channels.
func (v Value) Mono() float64 {
	if v.stereo {
		return (v.right + v.left) / 2
	}
	return v.right
}

// Channels returns the right and left values. A mono frame has the same
// value on both.
func (v Value) Channels() (right, left float64) { return v.right, v.left }

// Add mixes two frames. Mono is up-mixed by adding it to both channels.
func (v Value) Add(o Value) Value {
	switch {
	case !v.stereo && !o.stereo:
		return Mono(v.right + o.right)
	default:
		return Stereo(v.right+o.right, v.left+o.left)
	}
}

// Scale multiplies every channel by k.
func (v Value) Scale(k float64) Value {
	if v.stereo {
		return Stereo(v.right*k, v.left*k)
	}
	return Mono(v.right * k)
}

func (v Value) String() string {
	if v.stereo {
		return fmt.Sprintf("Stereo(%g, %g)", v.right, v.left)
	}
	return fmt.Sprintf("Mono(%g)", v.right)
}

// State tells what a Sound carries.
type State uint8

const (
	// Done asks for the emitter to be removed from the tree. It is the
	// zero value and the identity of Add.
	Done State = iota
	// Silence means alive but contributing nothing.
	Silence
	// Frame means the Sound carries a Value.
	Frame
)

// Sound is the output of one tick of a synth, effect or mixer.
type Sound struct {
	State State
	Value Value
}

// Of wraps v in a Sound.
func Of(v Value) Sound { return Sound{State: Frame, Value: v} }

// MonoSound is shorthand for Of(Mono(x)).
func MonoSound(x float64) Sound { return Of(Mono(x)) }

// StereoSound is shorthand for Of(Stereo(right, left)).
func StereoSound(right, left float64) Sound { return Of(Stereo(right, left)) }

// SilenceSound is the non-terminal empty Sound.
var SilenceSound = Sound{State: Silence}

// IsDone reports whether s asks for removal.
func (s Sound) IsDone() bool { return s.State == Done }

// IsFrame reports whether s carries a Value.
func (s Sound) IsFrame() bool { return s.State == Frame }

// Add combines two sounds. Frames add up, Silence absorbs Done and a Frame
// absorbs both.
func (s Sound) Add(o Sound) Sound {
	switch {
	case s.State == Frame && o.State == Frame:
		return Of(s.Value.Add(o.Value))
	case s.State == Frame:
		return s
	case o.State == Frame:
		return o
	case s.State == Silence || o.State == Silence:
		return SilenceSound
	default:
		return Sound{}
	}
}

// Sum folds Add over sounds, starting from Done.
func Sum(sounds ...Sound) Sound {
	var acc Sound
	for _, s := range sounds {
		acc = acc.Add(s)
	}
	return acc
}

func (s Sound) String() string {
	switch s.State {
	case Frame:
		return s.Value.String()
	case Silence:
		return "Silence"
	default:
		return "Done"
	}
}
