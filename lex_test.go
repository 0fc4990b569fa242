package mexer

import (
	"errors"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		err    bool
	}{
		// spaces
		{"", nil, false},
		{" \t \r\n ", nil, false},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, false},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, false},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, false},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, false},
		{"1.", []lexToken{{text: "1.", kind: tokenNum, pos: 1}}, false},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, false},
		{"1e1", []lexToken{{text: "1e1", kind: tokenNum, pos: 1}}, false},
		{"1E1", []lexToken{{text: "1E1", kind: tokenNum, pos: 1}}, false},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenNum, pos: 1}}, false},
		{"1e-1", []lexToken{{text: "1e-1", kind: tokenNum, pos: 1}}, false},
		{"1.0e1", []lexToken{{text: "1.0e1", kind: tokenNum, pos: 1}}, false},
		{".1", []lexToken{{text: ".1", kind: tokenNum, pos: 1}}, false},
		{".1e1", []lexToken{{text: ".1e1", kind: tokenNum, pos: 1}}, false},
		{"1e3+2", []lexToken{{text: "1e3", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 4}, {text: "2", kind: tokenNum, pos: 5}}, false},
		// an e without exponent digits is an identifier
		{"1e", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "e", kind: tokenIdent, pos: 2}}, false},
		{"2e+", []lexToken{{text: "2", kind: tokenNum, pos: 1}, {text: "e", kind: tokenIdent, pos: 2}, {text: "+", kind: tokenOp, pos: 3}}, false},
		{"2ex", []lexToken{{text: "2", kind: tokenNum, pos: 1}, {text: "ex", kind: tokenIdent, pos: 2}}, false},
		{"1e3x", []lexToken{{text: "1e3", kind: tokenNum, pos: 1}, {text: "x", kind: tokenIdent, pos: 4}}, false},
		{"2x", []lexToken{{text: "2", kind: tokenNum, pos: 1}, {text: "x", kind: tokenIdent, pos: 2}}, false},
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, false},
		{"1%0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "%", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, false},
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, false},
		{".", nil, true},
		{"1.1.1", nil, true},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenIdent, pos: 1}}, false},
		{"e1", []lexToken{{text: "e1", kind: tokenIdent, pos: 1}}, false},
		{"π", []lexToken{{text: "π", kind: tokenIdent, pos: 1}}, false},
		{"eπ", []lexToken{{text: "eπ", kind: tokenIdent, pos: 1}}, false},
		{"_1234_", []lexToken{{text: "_1234_", kind: tokenIdent, pos: 1}}, false},
		{"e(", []lexToken{{text: "e", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 2}}, false},
		{"π+1", []lexToken{{text: "π", kind: tokenIdent, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "1", kind: tokenNum, pos: 3}}, false},
		// operators and punctuation
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, false},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, false},
		{"x = 5; y", []lexToken{
			{text: "x", kind: tokenIdent, pos: 1},
			{text: "=", kind: tokenEquals, pos: 3},
			{text: "5", kind: tokenNum, pos: 5},
			{text: ";", kind: tokenSep, pos: 6},
			{text: "y", kind: tokenIdent, pos: 8},
		}, false},
		{"f(a,b)", []lexToken{
			{text: "f", kind: tokenIdent, pos: 1},
			{text: "(", kind: tokenOpen, pos: 2},
			{text: "a", kind: tokenIdent, pos: 3},
			{text: ",", kind: tokenSep, pos: 4},
			{text: "b", kind: tokenIdent, pos: 5},
			{text: ")", kind: tokenClose, pos: 6},
		}, false},
		// erroneous symbols
		{"$", nil, true},
		{"a$", nil, true},
		{"[1]", nil, true},
		{"1×2", nil, true},
	}

	for _, c := range cases {
		toks, err := lex(c.src)
		if c.err {
			var le *LexError
			if !errors.As(err, &le) {
				t.Errorf("scanning %q: expected LexError, got %v", c.src, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("scanning %q: unexpected error %v", c.src, err)
			continue
		}
		if len(toks) != len(c.tokens)+1 {
			t.Errorf("scanning %q: want %v then EOF, got %v", c.src, c.tokens, toks)
			continue
		}
		for i, want := range c.tokens {
			if toks[i] != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, toks[i])
			}
		}
		if eof := toks[len(toks)-1]; eof.kind != tokenEOF {
			t.Errorf("scanning %q: last token is %v, not EOF", c.src, eof)
		}
	}
}

func TestLexErrorPos(t *testing.T) {
	cases := []struct {
		src string
		col int
	}{
		{"$", 1},
		{"a$", 2},
		{"1 + @", 5},
		{"π$", 2},
		{"1.2.3", 1},
	}
	for _, c := range cases {
		_, err := lex(c.src)
		var le *LexError
		if !errors.As(err, &le) {
			t.Errorf("scanning %q: expected LexError, got %v", c.src, err)
			continue
		}
		if le.Pos() != c.col {
			t.Errorf("scanning %q: want error at column %d, got %d", c.src, c.col, le.Pos())
		}
	}
}
