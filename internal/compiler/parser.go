package compiler

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseError reports a malformed logic expression.
type ParseError struct {
	Pos int // byte offset into the source
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("position %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokConst
	tokNot
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	pos   int
	value bool
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// lex splits src into tokens. Keywords are matched case-insensitively and symbolic
// operators (!, &, &&, |, ||) are accepted alongside them.
func lex(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	offset := func(i int) int { return len(string(runes[:i])) }

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: offset(i)})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: offset(i)})
			i++
		case r == '!':
			toks = append(toks, token{kind: tokNot, text: "!", pos: offset(i)})
			i++
		case r == '&' || r == '|':
			kind, text := tokAnd, "&"
			if r == '|' {
				kind, text = tokOr, "|"
			}
			start := i
			i++
			if i < len(runes) && runes[i] == r {
				text += string(r)
				i++
			}
			toks = append(toks, token{kind: kind, text: text, pos: offset(start)})
		case isIdentRune(r):
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			tok := token{kind: tokIdent, text: word, pos: offset(start)}
			switch strings.ToLower(word) {
			case "not":
				tok.kind = tokNot
			case "and":
				tok.kind = tokAnd
			case "or":
				tok.kind = tokOr
			case "true", "1":
				tok.kind, tok.value = tokConst, true
			case "false", "0":
				tok.kind, tok.value = tokConst, false
			}
			toks = append(toks, tok)
		default:
			return nil, &ParseError{Pos: offset(i), Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// Parse compiles a Boolean logic expression.
// Precedence is NOT > AND > OR; parentheses group.
func Parse(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return expr, nil
}

func (p *parser) parseOr() (*Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	args := []*Expr{left}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		args = append(args, right)
	}
	if len(args) == 1 {
		return left, nil
	}
	return &Expr{Kind: KindOr, Args: args}, nil
}

func (p *parser) parseAnd() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	args := []*Expr{left}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		args = append(args, right)
	}
	if len(args) == 1 {
		return left, nil
	}
	return &Expr{Kind: KindAnd, Args: args}, nil
}

func (p *parser) parseUnary() (*Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: KindNot, Args: []*Expr{operand}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Expr, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		return &Expr{Kind: KindVar, Name: t.text, Index: -1}, nil
	case tokConst:
		return &Expr{Kind: KindConst, Value: t.value}, nil
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &ParseError{Pos: closing.pos, Msg: "missing closing parenthesis"}
		}
		return inner, nil
	case tokEOF:
		return nil, &ParseError{Pos: t.pos, Msg: "unexpected end of expression"}
	}
	return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}
