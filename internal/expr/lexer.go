package expr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lex splits src into tokens, ending with a KindEOF token.
func lex(src string) ([]Token, error) {
	var toks []Token

	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])

		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigit(r) || (r == '.' && i+1 < len(src) && isDigit(rune(src[i+1]))):
			end := scanNumber(src, i)
			toks = append(toks, Token{Kind: KindNumber, Text: src[i:end], Pos: i})
			i = end
		case r == '_' || unicode.IsLetter(r):
			end := i + size
			for end < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[end:])
				if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}

				end += s2
			}

			toks = append(toks, Token{Kind: KindIdent, Text: src[i:end], Pos: i})
			i = end
		case r == '\'' || r == '"':
			end := strings.IndexRune(src[i+1:], r)
			if end < 0 {
				return nil, errorf(i, "unterminated string")
			}

			toks = append(toks, Token{Kind: KindString, Text: src[i+1 : i+1+end], Pos: i})
			i += end + 2
		case r == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, Token{Kind: KindPow, Text: "**", Pos: i})
			i += 2
		default:
			k, ok := singleChar[r]
			if !ok {
				return nil, errorf(i, "unexpected character %q", r)
			}

			toks = append(toks, Token{Kind: k, Text: string(r), Pos: i})
			i += size
		}
	}

	return append(toks, Token{Kind: KindEOF, Pos: len(src)}), nil
}

var singleChar = map[rune]Kind{
	'+': KindPlus,
	'-': KindMinus,
	'*': KindStar,
	'/': KindSlash,
	'%': KindPercent,
	'(': KindLParen,
	')': KindRParen,
	',': KindComma,
	'.': KindDot,
	'[': KindLBracket,
	']': KindRBracket,
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// scanNumber returns the end offset of the numeric literal starting at i.
// Accepted forms: 12, 1_000, 1.5, .5, 1., 1e3, 2.5E-4.
func scanNumber(src string, i int) int {
	end := i

	digits := func() {
		for end < len(src) && (isDigit(rune(src[end])) || src[end] == '_') {
			end++
		}
	}

	digits()

	if end < len(src) && src[end] == '.' {
		end++
		digits()
	}

	if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
		j := end + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}

		if j < len(src) && isDigit(rune(src[j])) {
			end = j
			digits()
		}
	}

	return end
}
