package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	toks, err := lex("max(v, 2.5e1) ** 'x'")
	require.NoError(t, err)

	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	assert.Equal(t, []Kind{
		KindIdent, KindLParen, KindIdent, KindComma, KindNumber, KindRParen,
		KindPow, KindString, KindEOF,
	}, kinds)
	assert.Equal(t, "2.5e1", toks[4].Text)
	assert.Equal(t, "x", toks[7].Text)
}

func TestLex_Errors(t *testing.T) {
	_, err := lex("'open")
	require.Error(t, err)

	_, err = lex("1 $ 2")
	require.Error(t, err)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "'**'", KindPow.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
