package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindAll(t *testing.T, e *Expr, names ...string) {
	t.Helper()
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	require.NoError(t, e.Bind(index))
}

func TestParse_Evaluation(t *testing.T) {
	names := []string{"A", "B", "C"}
	tests := []struct {
		expr  string
		state []bool
		want  bool
	}{
		{"A", []bool{true, false, false}, true},
		{"NOT A", []bool{true, false, false}, false},
		{"A AND B", []bool{true, false, false}, false},
		{"A OR B", []bool{false, true, false}, true},
		{"A OR B AND C", []bool{true, false, false}, true},    // AND binds tighter
		{"(A OR B) AND C", []bool{true, false, false}, false}, // parentheses win
		{"!A & B", []bool{false, true, false}, true},
		{"A || B && !C", []bool{false, true, true}, false},
		{"true AND NOT false", []bool{false, false, false}, true},
		{"1 & A", []bool{false, false, false}, false},
		{"NOT NOT A", []bool{true, false, false}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Parse(tt.expr)
			require.NoError(t, err)
			bindAll(t, e, names...)
			assert.Equal(t, tt.want, e.Eval(tt.state))
		})
	}
}

func TestParse_ApoptosisRule(t *testing.T) {
	e, err := Parse("NOT BCL2 AND NOT ERK AND FOXO3 AND p53")
	require.NoError(t, err)
	assert.Equal(t, KindAnd, e.Kind)
	assert.Len(t, e.Args, 4)
	assert.Equal(t, []string{"BCL2", "ERK", "FOXO3", "p53"}, e.Vars())
	assert.True(t, e.Negated("BCL2"))
	assert.False(t, e.Negated("p53"))

	bindAll(t, e, "BCL2", "ERK", "FOXO3", "p53")
	assert.False(t, e.Eval([]bool{false, false, false, false}))
	assert.True(t, e.Eval([]bool{false, false, true, true}))
	assert.False(t, e.Eval([]bool{true, false, true, true}))
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"A AND",
		"(A OR B",
		"A B",
		"A ) B",
		"A # B",
		"AND A",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestBind_UndeclaredNames(t *testing.T) {
	e, err := Parse("A AND (Ghost OR Phantom)")
	require.NoError(t, err)

	err = e.Bind(map[string]int{"A": 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
	assert.Contains(t, err.Error(), "Phantom")
}

func TestExpr_StringRoundTrip(t *testing.T) {
	for _, src := range []string{
		"A AND (B OR C)",
		"NOT (A OR B)",
		"A OR B AND NOT C",
	} {
		e, err := Parse(src)
		require.NoError(t, err)
		again, err := Parse(e.String())
		require.NoError(t, err, e.String())
		bindAll(t, e, "A", "B", "C")
		bindAll(t, again, "A", "B", "C")
		for mask := 0; mask < 8; mask++ {
			state := []bool{mask&1 != 0, mask&2 != 0, mask&4 != 0}
			assert.Equal(t, e.Eval(state), again.Eval(state), "%s with %v", src, state)
		}
	}
}
