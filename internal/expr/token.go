package expr

import "dynconf/internal/common"

// Kind identifies the lexical class of a token.
type Kind int

const (
	KindEOF Kind = iota
	KindNumber
	KindString
	KindIdent
	KindPlus
	KindMinus
	KindStar
	KindSlash
	KindPercent
	KindPow
	KindLParen
	KindRParen
	KindComma
	KindDot
	KindLBracket
	KindRBracket
)

var kindNames = map[Kind]string{
	KindEOF:      "end of input",
	KindNumber:   "number",
	KindString:   "string",
	KindIdent:    "identifier",
	KindPlus:     "'+'",
	KindMinus:    "'-'",
	KindStar:     "'*'",
	KindSlash:    "'/'",
	KindPercent:  "'%'",
	KindPow:      "'**'",
	KindLParen:   "'('",
	KindRParen:   "')'",
	KindComma:    "','",
	KindDot:      "'.'",
	KindLBracket: "'['",
	KindRBracket: "']'",
}

// String returns a human-readable token kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return common.UnknownStr
}

// Token is a lexed token with its byte offset in the source.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}
