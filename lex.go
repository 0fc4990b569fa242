package mexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a decimal number, possibly with a fraction and exponent.
	tokenNum
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
	// tokenSep is a separator, either , between arguments or ; between
	// statements.
	tokenSep
	// tokenEquals is the = of an assignment or function definition.
	tokenEquals
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "Num"
	case tokenIdent:
		return "Ident"
	case tokenOp:
		return "Op"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	case tokenSep:
		return "Sep"
	case tokenEquals:
		return "Equals"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/%^"

type lexer struct {
	src string
	// off is the byte offset of the next rune in src.
	off int
	// rune is the 1-based column of the next rune in src.
	rune int
}

// lex scans all tokens in src. The last token in a successful result is always
// an EOF token.
func lex(src string) ([]lexToken, error) {
	l := lexer{src: src, rune: 1}
	var toks []lexToken
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokenEOF {
			return toks, nil
		}
	}
}

// peek returns the rune at byte offset off without consuming it. The result
// is utf8.RuneError with zero size at the end of the input.
func (l *lexer) peek(off int) (rune, int) {
	if off >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[off:])
}

// advance consumes one rune of sz bytes.
func (l *lexer) advance(sz int) {
	l.off += sz
	l.rune++
}

// next scans the next token from the input.
func (l *lexer) next() (lexToken, error) {
	for {
		r, sz := l.peek(l.off)
		tok := lexToken{pos: l.rune}
		switch {
		case sz == 0:
			tok.kind = tokenEOF
			return tok, nil
		case unicode.IsSpace(r):
			l.advance(sz)
			continue
		case '0' <= r && r <= '9', r == '.':
			start := l.off
			if err := l.scanNum(); err != nil {
				return tok, err
			}
			tok.text = l.src[start:l.off]
			tok.kind = tokenNum
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			start := l.off
			l.scanIdent()
			tok.text = l.src[start:l.off]
			tok.kind = tokenIdent
			return tok, nil
		case r == ',', r == ';':
			l.advance(sz)
			tok.text = string(r)
			tok.kind = tokenSep
			return tok, nil
		case r == '=':
			l.advance(sz)
			tok.text = "="
			tok.kind = tokenEquals
			return tok, nil
		case r == '(':
			l.advance(sz)
			tok.text = "("
			tok.kind = tokenOpen
			return tok, nil
		case r == ')':
			l.advance(sz)
			tok.text = ")"
			tok.kind = tokenClose
			return tok, nil
		case strings.ContainsRune(Operators, r):
			l.advance(sz)
			tok.text = string(r)
			tok.kind = tokenOp
			return tok, nil
		default:
			return tok, &LexError{Text: string(r), Col: l.rune}
		}
	}
}

// scanNum consumes the longest number at the current offset: digits with an
// optional fraction, then an optional exponent. An e or E that is not
// followed by digits (after an optional sign) does not belong to the number,
// so that 2e lexes as 2 followed by the identifier e.
func (l *lexer) scanNum() error {
	start, col := l.off, l.rune
	var dig, dot bool
	for {
		r, sz := l.peek(l.off)
		switch {
		case '0' <= r && r <= '9':
			dig = true
		case r == '.':
			if dot {
				// A second point can't start a new number here.
				l.advance(sz)
				return &LexError{Text: l.src[start:l.off], Kind: "number", Col: col}
			}
			dot = true
		default:
			if !dig {
				return &LexError{Text: l.src[start:l.off], Kind: "number", Col: col}
			}
			if r == 'e' || r == 'E' {
				l.scanExp()
			}
			return nil
		}
		l.advance(sz)
	}
}

// scanExp consumes an exponent suffix if one is present at the current offset,
// which must hold an e or E.
func (l *lexer) scanExp() {
	off := l.off + 1
	n := 1
	if r, _ := l.peek(off); r == '+' || r == '-' {
		off++
		n++
	}
	if r, _ := l.peek(off); r < '0' || r > '9' {
		return
	}
	for {
		r, _ := l.peek(off)
		if r < '0' || r > '9' {
			break
		}
		off++
		n++
	}
	l.off = off
	l.rune += n
}

func (l *lexer) scanIdent() {
	for {
		r, sz := l.peek(l.off)
		switch {
		case sz == 0:
			return
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.advance(sz)
		default:
			return
		}
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the invalid rune, or the malformed token up to and including
	// the rune where scanning failed.
	Text string
	// Kind is the type of token the lexer was scanning. This is "number" or
	// the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the 1-based column of the first rune of Text.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid character at " + pos + ": " + strconv.Quote(err.Text)
	}
	return "invalid " + err.Kind + " at " + pos + ": " + strconv.Quote(err.Text)
}

func (err *LexError) Pos() int {
	return err.Col
}
