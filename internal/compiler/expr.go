// Package compiler turns node logic strings into bound, evaluable expressions.
package compiler

import (
	"fmt"
	"strings"
)

// Kind identifies the expression node type.
type Kind uint8

const (
	KindConst Kind = iota
	KindVar
	KindNot
	KindAnd
	KindOr
)

// Expr is a parsed Boolean expression.
// Variables carry a node index once Bind has run; Eval only reads that index.
type Expr struct {
	Kind  Kind
	Value bool   // KindConst
	Name  string // KindVar
	Index int    // KindVar, -1 until bound
	Args  []*Expr
}

// Vars returns the distinct variable names in order of first appearance.
func (e *Expr) Vars() []string {
	seen := make(map[string]bool)
	var names []string
	e.walk(func(x *Expr) {
		if x.Kind == KindVar && !seen[x.Name] {
			seen[x.Name] = true
			names = append(names, x.Name)
		}
	})
	return names
}

// Bind resolves every variable to its index. Unknown names are reported together.
func (e *Expr) Bind(index map[string]int) error {
	var missing []string
	e.walk(func(x *Expr) {
		if x.Kind != KindVar {
			return
		}
		i, ok := index[x.Name]
		if !ok {
			missing = append(missing, x.Name)
			return
		}
		x.Index = i
	})
	if len(missing) > 0 {
		return fmt.Errorf("undeclared node(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// Eval computes the expression over a full state vector.
// It is pure: the same vector always yields the same result.
func (e *Expr) Eval(state []bool) bool {
	switch e.Kind {
	case KindConst:
		return e.Value
	case KindVar:
		return state[e.Index]
	case KindNot:
		return !e.Args[0].Eval(state)
	case KindAnd:
		for _, a := range e.Args {
			if !a.Eval(state) {
				return false
			}
		}
		return true
	case KindOr:
		for _, a := range e.Args {
			if a.Eval(state) {
				return true
			}
		}
		return false
	}
	return false
}

// Negated reports whether name appears under a NOT anywhere in the expression.
func (e *Expr) Negated(name string) bool {
	found := false
	var visit func(x *Expr, neg bool)
	visit = func(x *Expr, neg bool) {
		if x.Kind == KindVar && x.Name == name && neg {
			found = true
		}
		for _, a := range x.Args {
			visit(a, neg != (x.Kind == KindNot))
		}
	}
	visit(e, false)
	return found
}

// String renders the expression in canonical keyword form.
func (e *Expr) String() string {
	switch e.Kind {
	case KindConst:
		if e.Value {
			return "true"
		}
		return "false"
	case KindVar:
		return e.Name
	case KindNot:
		inner := e.Args[0].String()
		if len(e.Args[0].Args) > 1 {
			inner = "(" + inner + ")"
		}
		return "NOT " + inner
	}
	sep := " AND "
	if e.Kind == KindOr {
		sep = " OR "
	}
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
		if len(a.Args) > 1 && a.Kind != e.Kind {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, sep)
}

func (e *Expr) walk(fn func(*Expr)) {
	fn(e)
	for _, a := range e.Args {
		a.walk(fn)
	}
}
