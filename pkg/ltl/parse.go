package ltl

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSyntax is wrapped by every error returned from Parse.
var ErrSyntax = errors.New("ltl syntax error")

// SyntaxError reports a malformed formula at a byte offset of the input.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("ltl: %s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokTrue
	tokFalse
	tokNot
	tokAnd
	tokOr
	tokXor
	tokImplies
	tokEquiv
	tokNext
	tokEventually
	tokGlobally
	tokUntil
	tokRelease
	tokWeakUntil
	tokStrongRelease
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]tokenKind{
	"true":  tokTrue,
	"false": tokFalse,
	"X":     tokNext,
	"F":     tokEventually,
	"G":     tokGlobally,
	"U":     tokUntil,
	"R":     tokRelease,
	"V":     tokRelease,
	"W":     tokWeakUntil,
	"M":     tokStrongRelease,
	"xor":   tokXor,
}

func isKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}

// symbols are matched longest first.
var symbols = []struct {
	text string
	kind tokenKind
}{
	{"<->", tokEquiv},
	{"<=>", tokEquiv},
	{"->", tokImplies},
	{"=>", tokImplies},
	{"&&", tokAnd},
	{"||", tokOr},
	{"/\\", tokAnd},
	{"\\/", tokOr},
	{"[]", tokGlobally},
	{"<>", tokEventually},
	{"!", tokNot},
	{"~", tokNot},
	{"&", tokAnd},
	{"*", tokAnd},
	{"|", tokOr},
	{"+", tokOr},
	{"^", tokXor},
	{"(", tokLParen},
	{")", tokRParen},
	{"1", tokTrue},
	{"0", tokFalse},
}

func lex(input string) ([]token, error) {
	var out []token
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++
			continue
		case c == '"':
			j := i + 1
			var sb strings.Builder
			for j < len(input) && input[j] != '"' {
				if input[j] == '\\' && j+1 < len(input) {
					j++
				}
				sb.WriteByte(input[j])
				j++
			}
			if j >= len(input) {
				return nil, &SyntaxError{Offset: i, Msg: "unterminated quoted proposition"}
			}
			out = append(out, token{kind: tokIdent, text: sb.String(), pos: i})
			i = j + 1
			continue
		case c == '_' || unicode.IsLetter(c):
			j := i
			for j < len(input) && (input[j] == '_' || input[j] == '.' || unicode.IsLetter(rune(input[j])) || unicode.IsDigit(rune(input[j]))) {
				j++
			}
			word := input[i:j]
			kind, ok := keywords[word]
			if !ok {
				kind = tokIdent
			}
			out = append(out, token{kind: kind, text: word, pos: i})
			i = j
			continue
		}

		matched := false
		for _, s := range symbols {
			if strings.HasPrefix(input[i:], s.text) {
				out = append(out, token{kind: s.kind, text: s.text, pos: i})
				i += len(s.text)
				matched = true
				break
			}
		}
		if !matched {
			return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(input)})
	return out, nil
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads a formula in the usual LTL syntax. Binary temporal operators
// bind tighter than the boolean ones and associate to the right; unary
// operators bind tightest.
func Parse(input string) (*Formula, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	f, err := p.equiv()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return f, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) *Formula {
	f, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return f
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) equiv() (*Formula, error) {
	left, err := p.implies()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokEquiv {
		p.next()
		right, err := p.implies()
		if err != nil {
			return nil, err
		}
		left = Equiv(left, right)
	}
	return left, nil
}

func (p *parser) implies() (*Formula, error) {
	left, err := p.xor()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokImplies {
		p.next()
		right, err := p.implies()
		if err != nil {
			return nil, err
		}
		return Implies(left, right), nil
	}
	return left, nil
}

func (p *parser) xor() (*Formula, error) {
	left, err := p.or()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokXor {
		p.next()
		right, err := p.or()
		if err != nil {
			return nil, err
		}
		left = Xor(left, right)
	}
	return left, nil
}

func (p *parser) or() (*Formula, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	operands := []*Formula{left}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	return Or(operands...), nil
}

func (p *parser) and() (*Formula, error) {
	left, err := p.temporal()
	if err != nil {
		return nil, err
	}
	operands := []*Formula{left}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.temporal()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	return And(operands...), nil
}

func (p *parser) temporal() (*Formula, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	switch t.kind {
	case tokUntil, tokRelease, tokWeakUntil, tokStrongRelease:
		p.next()
		right, err := p.temporal()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokUntil:
			return U(left, right), nil
		case tokRelease:
			return R(left, right), nil
		case tokWeakUntil:
			return W(left, right), nil
		default:
			return M(left, right), nil
		}
	}
	return left, nil
}

func (p *parser) unary() (*Formula, error) {
	t := p.next()
	switch t.kind {
	case tokNot, tokNext, tokEventually, tokGlobally:
		f, err := p.unary()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokNot:
			return Not(f), nil
		case tokNext:
			return X(f), nil
		case tokEventually:
			return F(f), nil
		default:
			return G(f), nil
		}
	case tokTrue:
		return tt, nil
	case tokFalse:
		return ff, nil
	case tokIdent:
		return AP(t.text), nil
	case tokLParen:
		f, err := p.equiv()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &SyntaxError{Offset: c.pos, Msg: "missing closing parenthesis"}
		}
		return f, nil
	case tokEOF:
		return nil, &SyntaxError{Offset: t.pos, Msg: "unexpected end of formula"}
	}
	return nil, &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}
