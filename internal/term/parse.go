package term

import (
	"fmt"
	"strings"
	"unicode"

	"trunckernel/internal/grade"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokGrade
	tokLParen
	tokRParen
	tokComma
	tokStar
	tokPlus
	tokArrow
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var out []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			out = append(out, token{tokLParen, "(", i})
			i++
		case r == ')':
			out = append(out, token{tokRParen, ")", i})
			i++
		case r == ',':
			out = append(out, token{tokComma, ",", i})
			i++
		case r == '*' || r == '×':
			out = append(out, token{tokStar, "*", i})
			i++
		case r == '+':
			out = append(out, token{tokPlus, "+", i})
			i++
		case r == '∞':
			out = append(out, token{tokGrade, "inf", i})
			i++
		case r == '-' && i+1 < len(rs) && rs[i+1] == '>':
			out = append(out, token{tokArrow, "->", i})
			i += 2
		case r == '→':
			out = append(out, token{tokArrow, "->", i})
			i++
		case r == '-' || unicode.IsDigit(r):
			j := i + 1
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			if j == i+1 && r == '-' {
				return nil, fmt.Errorf("%w: stray '-' at %d", ErrSyntax, i)
			}
			out = append(out, token{tokGrade, string(rs[i:j]), i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_' || rs[j] == '\'') {
				j++
			}
			out = append(out, token{tokName, string(rs[i:j]), i})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, i)
		}
	}
	return append(out, token{tokEOF, "", len(rs)}), nil
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads a type expression.
func Parse(src string) (Term, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty term", ErrSyntax)
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	t, err := p.arrow()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: trailing %q at %d", ErrSyntax, tok.text, tok.pos)
	}
	return t, nil
}

// MustParse is Parse for literals known to be well formed.
func MustParse(src string) Term {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) error {
	if t := p.next(); t.kind != k {
		return fmt.Errorf("%w: expected %s at %d, got %q", ErrSyntax, what, t.pos, t.text)
	}
	return nil
}

func (p *parser) arrow() (Term, error) {
	dom, err := p.sum()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokArrow {
		return dom, nil
	}
	p.next()
	cod, err := p.arrow()
	if err != nil {
		return nil, err
	}
	return Arrow{Dom: dom, Cod: cod}, nil
}

func (p *parser) sum() (Term, error) {
	left, err := p.prod()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokPlus {
		p.next()
		right, err := p.prod()
		if err != nil {
			return nil, err
		}
		left = Sum{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) prod() (Term, error) {
	left, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokStar {
		p.next()
		right, err := p.atom()
		if err != nil {
			return nil, err
		}
		left = Prod{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) atom() (Term, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		inner, err := p.arrow()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokName:
		switch {
		case t.text == "Tr" && p.peek().kind == tokLParen:
			return p.tr()
		case t.text == "Id" && p.peek().kind == tokLParen:
			p.next()
			over, err := p.arrow()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRParen, "')'"); err != nil {
				return nil, err
			}
			return Id{Over: over}, nil
		}
		return Base{Name: t.text}, nil
	}
	return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
}

func (p *parser) tr() (Term, error) {
	p.next()
	g := p.next()
	if g.kind != tokGrade && g.kind != tokName {
		return nil, fmt.Errorf("%w: expected a grade at %d", ErrSyntax, g.pos)
	}
	n, err := grade.Parse(g.text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if err := p.expect(tokComma, "','"); err != nil {
		return nil, err
	}
	body, err := p.arrow()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return Tr{Grade: n, Body: body}, nil
}
