package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		bindings map[string]float64
		expected float64
	}{
		{"addition", "8000+100", nil, 8100},
		{"shorthand divide", "/2", map[string]float64{"v": 10}, 5},
		{"shorthand multiply", "*3", map[string]float64{"v": 4}, 12},
		{"shorthand power", "**2", map[string]float64{"v": 3}, 9},
		{"caret is power", "2^3", nil, 8},
		{"x alias", "x*2+1", map[string]float64{"x": 5}, 11},
		{"bounds midpoint", "min + (max-min)/2", map[string]float64{"min": 10, "max": 20}, 15},
		{"precedence", "2+3*4", nil, 14},
		{"parentheses", "(2+3)*4", nil, 20},
		{"unary binds looser than power", "-2**2", nil, -4},
		{"power is right associative", "2**3**2", nil, 512},
		{"negative exponent", "2**-1", nil, 0.5},
		{"modulo follows divisor sign", "-7 % 3", nil, 2},
		{"float literal", ".5 + 1.25", nil, 1.75},
		{"exponent literal", "1e3", nil, 1000},
		{"underscore literal", "1_000 + 1", nil, 1001},
		{"abs", "abs(-3)", nil, 3},
		{"sqrt", "sqrt(16)", nil, 4},
		{"round half even", "round(2.5)", nil, 2},
		{"round digits", "round(3.14159, 2)", nil, 3.14},
		{"min max", "max(1, min(5, 3), 2)", nil, 3},
		{"constants", "round(pi * 100)", nil, 314},
		{"e constant", "e", nil, math.E},
		{"binding shadows constant", "e + 1", map[string]float64{"e": 1}, 2},
		{"whitespace", "  12 *  2 ", nil, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, tt.bindings)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestEvaluate_NoResult(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		bindings map[string]float64
	}{
		{"import call", "__import__('os')", nil},
		{"attribute access", "v.real", map[string]float64{"v": 1}},
		{"dunder chain", "().__class__", nil},
		{"subscript", "v[0]", map[string]float64{"v": 1}},
		{"string literal", "'abc'", nil},
		{"unknown function", "pow(2, 3)", nil},
		{"unknown name", "y + 1", nil},
		{"shorthand without binding", "/2", nil},
		{"min unbound", "min + 1", nil},
		{"calling a binding", "v(2)", map[string]float64{"v": 1}},
		{"division by zero", "1/0", nil},
		{"modulo by zero", "5 % 0", nil},
		{"sqrt domain", "sqrt(-1)", nil},
		{"overflow", "10**400", nil},
		{"fractional power of negative", "(-8)**(1/3)", nil},
		{"wrong arity", "abs(1, 2)", nil},
		{"min needs two", "min(1)", nil},
		{"round fractional digits", "round(1.5, 0.5)", nil},
		{"empty", "   ", nil},
		{"trailing operator", "1+", nil},
		{"unbalanced", "(1+2", nil},
		{"unexpected character", "1 & 2", nil},
		{"lambda keyword", "lambda: 1", nil},
		{"plain word", "hello", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr, tt.bindings)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoResult), "error %v should wrap ErrNoResult", err)
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	deep := ""
	for range maxDepth + 1 {
		deep += "("
	}

	deep += "1"
	for range maxDepth + 1 {
		deep += ")"
	}

	_, err := Parse(deep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested too deeply")
}

func TestCheck_ReportsPosition(t *testing.T) {
	n, err := Parse("1 + foo")
	require.NoError(t, err)

	err = Check(n, func(string) bool { return false })

	var exprErr *Error
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, 4, exprErr.Pos)
	assert.Equal(t, `offset 4: unknown name "foo"`, exprErr.Error())
}
