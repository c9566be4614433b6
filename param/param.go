// Package param describes unit parameters: constant, default, bus driven
// or computed from a formula over buses.
package param

import (
	"fmt"

	"git.disy.net/goetz/moomoot/pbus"
)

// Formula is a computed parameter source. Connect resolves the buses it
// reads; Evaluate is called once per sample afterwards.
type Formula interface {
	Evaluate() float64
	Connect(buses *pbus.System)
}

type kind uint8

const (
	kindDefault kind = iota
	kindConstant
	kindBus
	kindFormula
)

// Value is a parameter slot. The zero Value is Default(0).
type Value struct {
	kind      kind
	v         float64
	channel   string
	w         *pbus.Writer
	r         *pbus.Reader
	formula   Formula
	connected bool
}

// Constant is a fixed value given by the caller.
func Constant(v float64) Value { return Value{kind: kindConstant, v: v} }

// Default is the fixed value a unit uses when the caller gave none.
func Default(v float64) Value { return Value{kind: kindDefault, v: v} }

// Bus follows the named channel once connected. The reader cell is
// allocated here so connecting does not have to.
func Bus(channel string) Value {
	w, r := pbus.Link(pbus.DefaultValue)
	return Value{kind: kindBus, channel: channel, w: w, r: r}
}

// Expr computes its value with f once connected.
func Expr(f Formula) Value { return Value{kind: kindFormula, formula: f} }

// IsConstant reports whether p is Constant or Default.
func (p *Value) IsConstant() bool { return p.kind == kindConstant || p.kind == kindDefault }

// Channel returns the bus name of a Bus value.
func (p *Value) Channel() (string, bool) { return p.channel, p.kind == kindBus }

// Connect binds a Bus or Formula value to buses. It is a no-op for fixed
// values and for values already connected.
func (p *Value) Connect(buses *pbus.System) {
	if p.connected {
		return
	}
	switch p.kind {
	case kindBus:
		buses.Attach(p.channel, p.w)
	case kindFormula:
		p.formula.Connect(buses)
	}
	p.connected = true
}

// Get returns the current value. Reading a Bus or Formula value that was
// never connected is a programming error and panics.
func (p *Value) Get() float64 {
	switch p.kind {
	case kindBus:
		if !p.connected {
			panic(fmt.Sprintf("param: read of unconnected bus parameter %q", p.channel))
		}
		return p.r.Value()
	case kindFormula:
		if !p.connected {
			panic("param: read of unconnected formula parameter")
		}
		return p.formula.Evaluate()
	default:
		return p.v
	}
}

func (p Value) String() string {
	switch p.kind {
	case kindConstant:
		return fmt.Sprintf("Constant(%g)", p.v)
	case kindBus:
		return fmt.Sprintf("Bus(%s)", p.channel)
	case kindFormula:
		return "Formula"
	default:
		return fmt.Sprintf("Default(%g)", p.v)
	}
}
