// Package formula turns arithmetic expressions over bus names, such as
// "freq * 1.5 + 2", into parameter values.
//
// The expression syntax is the Lua expression grammar; parsing is done by
// gopher-lua and the resulting syntax tree is compiled once into a tree of
// plain evaluators, so evaluating a formula on the audio thread neither
// allocates nor touches a Lua state.
package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"

	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/pbus"
)

// ErrSyntax is returned for sources that are not an expression.
type ErrSyntax struct {
	Source string
	Err    error
}

func (e ErrSyntax) Error() string {
	return fmt.Sprintf("formula: syntax error in %q: %v", e.Source, e.Err)
}

func (e ErrSyntax) Unwrap() error { return e.Err }

// ErrUnsupported is returned for valid Lua that is not arithmetic.
type ErrUnsupported struct {
	Source string
	What   string
}

func (e ErrUnsupported) Error() string {
	return fmt.Sprintf("formula: unsupported %s in %q", e.What, e.Source)
}

var unary = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"abs":  math.Abs,
	"sqrt": math.Sqrt,
	"exp":  math.Exp,
}

var binary = map[string]func(float64, float64) float64{
	"min": math.Min,
	"max": math.Max,
}

type node interface {
	eval() float64
	connect(buses *pbus.System)
}

type constant float64

func (c constant) eval() float64      { return float64(c) }
func (constant) connect(*pbus.System) {}

type bus struct{ v param.Value }

func (b *bus) eval() float64              { return b.v.Get() }
func (b *bus) connect(buses *pbus.System) { b.v.Connect(buses) }

type op struct {
	fn   func(float64, float64) float64
	l, r node
}

func (o *op) eval() float64 { return o.fn(o.l.eval(), o.r.eval()) }
func (o *op) connect(buses *pbus.System) {
	o.l.connect(buses)
	o.r.connect(buses)
}

type call struct {
	fn  func(float64) float64
	arg node
}

func (c *call) eval() float64              { return c.fn(c.arg.eval()) }
func (c *call) connect(buses *pbus.System) { c.arg.connect(buses) }

type neg struct{ n node }

func (n *neg) eval() float64              { return -n.n.eval() }
func (n *neg) connect(buses *pbus.System) { n.n.connect(buses) }

// Expr is a compiled expression. It implements param.Formula.
type Expr struct {
	src  string
	root node
}

// Evaluate computes the expression from the current bus values.
func (e *Expr) Evaluate() float64 { return e.root.eval() }

// Connect subscribes every bus the expression reads.
func (e *Expr) Connect(buses *pbus.System) { e.root.connect(buses) }

func (e *Expr) String() string { return e.src }

// Compile parses src into an Expr.
func Compile(src string) (*Expr, error) {
	chunk, err := parse.Parse(strings.NewReader("return "+src), "formula")
	if err != nil {
		return nil, ErrSyntax{Source: src, Err: err}
	}
	if len(chunk) != 1 {
		return nil, ErrUnsupported{Source: src, What: "statement"}
	}
	ret, ok := chunk[0].(*ast.ReturnStmt)
	if !ok || len(ret.Exprs) != 1 {
		return nil, ErrUnsupported{Source: src, What: "statement"}
	}
	c := compiler{src: src}
	root, err := c.compile(ret.Exprs[0])
	if err != nil {
		return nil, err
	}
	return &Expr{src: src, root: root}, nil
}

// Parse turns src into a parameter value: a bare number is a Constant, a
// bare name is a Bus and anything else a compiled formula.
func Parse(src string) (param.Value, error) {
	e, err := Compile(src)
	if err != nil {
		return param.Value{}, err
	}
	switch n := e.root.(type) {
	case constant:
		return param.Constant(float64(n)), nil
	case *bus:
		return n.v, nil
	}
	return param.Expr(e), nil
}

type compiler struct {
	src string
}

func (c compiler) compile(expr ast.Expr) (node, error) {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		v, err := parseNumber(e.Value)
		if err != nil {
			return nil, ErrSyntax{Source: c.src, Err: err}
		}
		return constant(v), nil
	case *ast.IdentExpr:
		return &bus{v: param.Bus(e.Value)}, nil
	case *ast.UnaryMinusOpExpr:
		n, err := c.compile(e.Expr)
		if err != nil {
			return nil, err
		}
		if k, ok := n.(constant); ok {
			return -k, nil
		}
		return &neg{n: n}, nil
	case *ast.ArithmeticOpExpr:
		return c.arithmetic(e)
	case *ast.FuncCallExpr:
		return c.call(e)
	}
	return nil, ErrUnsupported{Source: c.src, What: fmt.Sprintf("%T", expr)}
}

func (c compiler) arithmetic(e *ast.ArithmeticOpExpr) (node, error) {
	var fn func(float64, float64) float64
	switch e.Operator {
	case "+":
		fn = func(a, b float64) float64 { return a + b }
	case "-":
		fn = func(a, b float64) float64 { return a - b }
	case "*":
		fn = func(a, b float64) float64 { return a * b }
	case "/":
		fn = func(a, b float64) float64 { return a / b }
	case "%":
		fn = math.Mod
	case "^":
		fn = math.Pow
	default:
		return nil, ErrUnsupported{Source: c.src, What: "operator " + e.Operator}
	}
	l, err := c.compile(e.Lhs)
	if err != nil {
		return nil, err
	}
	r, err := c.compile(e.Rhs)
	if err != nil {
		return nil, err
	}
	return &op{fn: fn, l: l, r: r}, nil
}

func (c compiler) call(e *ast.FuncCallExpr) (node, error) {
	ident, ok := e.Func.(*ast.IdentExpr)
	if !ok || e.Receiver != nil {
		return nil, ErrUnsupported{Source: c.src, What: "call"}
	}
	args := make([]node, len(e.Args))
	for i, a := range e.Args {
		n, err := c.compile(a)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}
	if fn, ok := unary[ident.Value]; ok && len(args) == 1 {
		return &call{fn: fn, arg: args[0]}, nil
	}
	if fn, ok := binary[ident.Value]; ok && len(args) == 2 {
		return &op{fn: fn, l: args[0], r: args[1]}, nil
	}
	return nil, ErrUnsupported{Source: c.src, What: fmt.Sprintf("function %s/%d", ident.Value, len(args))}
}

func parseNumber(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	i, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return float64(i), nil
}
