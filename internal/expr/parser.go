package expr

import (
	"strconv"
	"strings"
)

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 64

// maxLen bounds the source length accepted by Parse.
const maxLen = 1024

type parser struct {
	toks  []Token
	pos   int
	depth int
}

// Parse parses src into an expression tree. The tree is not checked; use Check
// before evaluating it.
//
// Grammar, loosest binding first:
//
//	expr    = term   { ("+" | "-") term }
//	term    = unary  { ("*" | "/" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = postfix [ "**" unary ]
//	postfix = primary { "(" args ")" | "." ident | "[" expr "]" }
//	primary = number | string | ident | "(" expr ")"
func Parse(src string) (Node, error) {
	if len(src) > maxLen {
		return nil, errorf(0, "expression longer than %d bytes", maxLen)
	}

	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}

	n, err := p.expr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != KindEOF {
		return nil, errorf(tok.Pos, "unexpected %s", tok.Kind)
	}

	return n, nil
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != KindEOF {
		p.pos++
	}

	return tok
}

func (p *parser) expect(k Kind) (Token, error) {
	tok := p.next()
	if tok.Kind != k {
		return tok, errorf(tok.Pos, "expected %s, found %s", k, tok.Kind)
	}

	return tok, nil
}

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > maxDepth {
		return errorf(pos, "expression nested too deeply")
	}

	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != KindPlus && tok.Kind != KindMinus {
			return left, nil
		}

		p.next()

		right, err := p.term()
		if err != nil {
			return nil, err
		}

		left = &Binary{At: tok.Pos, Op: tok.Kind, L: left, R: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != KindStar && tok.Kind != KindSlash && tok.Kind != KindPercent {
			return left, nil
		}

		p.next()

		right, err := p.unary()
		if err != nil {
			return nil, err
		}

		left = &Binary{At: tok.Pos, Op: tok.Kind, L: left, R: right}
	}
}

func (p *parser) unary() (Node, error) {
	tok := p.peek()
	if tok.Kind != KindPlus && tok.Kind != KindMinus {
		return p.power()
	}

	if err := p.enter(tok.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	p.next()

	x, err := p.unary()
	if err != nil {
		return nil, err
	}

	return &Unary{At: tok.Pos, Op: tok.Kind, X: x}, nil
}

// power binds tighter than a unary minus on its left (-2**2 == -4) and is
// right-associative through the unary on its right (2**-1, 2**3**2).
func (p *parser) power() (Node, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.Kind != KindPow {
		return base, nil
	}

	p.next()

	if err := p.enter(tok.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	exp, err := p.unary()
	if err != nil {
		return nil, err
	}

	return &Binary{At: tok.Pos, Op: KindPow, L: base, R: exp}, nil
}

func (p *parser) postfix() (Node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		switch tok.Kind {
		case KindLParen:
			p.next()

			args, err := p.args()
			if err != nil {
				return nil, err
			}

			x = &Call{At: tok.Pos, Func: x, Args: args}
		case KindDot:
			p.next()

			name, err := p.expect(KindIdent)
			if err != nil {
				return nil, err
			}

			x = &Attr{At: tok.Pos, X: x, Name: name.Text}
		case KindLBracket:
			p.next()

			idx, err := p.nested()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(KindRBracket); err != nil {
				return nil, err
			}

			x = &Index{At: tok.Pos, X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *parser) args() ([]Node, error) {
	var args []Node

	if p.peek().Kind == KindRParen {
		p.next()
		return args, nil
	}

	for {
		arg, err := p.nested()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		tok := p.next()

		switch tok.Kind {
		case KindComma:
			continue
		case KindRParen:
			return args, nil
		default:
			return nil, errorf(tok.Pos, "expected ',' or ')', found %s", tok.Kind)
		}
	}
}

// nested parses a full sub-expression one level deeper.
func (p *parser) nested() (Node, error) {
	if err := p.enter(p.peek().Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.expr()
}

func (p *parser) primary() (Node, error) {
	tok := p.next()

	switch tok.Kind {
	case KindNumber:
		v, err := parseNumber(tok.Text)
		if err != nil {
			return nil, errorf(tok.Pos, "invalid number %q", tok.Text)
		}

		return &Num{At: tok.Pos, Value: v}, nil
	case KindString:
		return &Str{At: tok.Pos, Value: tok.Text}, nil
	case KindIdent:
		return &Name{At: tok.Pos, Ident: tok.Text}, nil
	case KindLParen:
		x, err := p.nested()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(KindRParen); err != nil {
			return nil, err
		}

		return x, nil
	default:
		return nil, errorf(tok.Pos, "unexpected %s", tok.Kind)
	}
}

func parseNumber(text string) (float64, error) {
	if strings.Contains(text, "__") || strings.HasSuffix(text, "_") {
		return 0, strconv.ErrSyntax
	}

	return strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
}
