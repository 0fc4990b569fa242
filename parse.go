package mexer

import (
	"errors"
	"strconv"
	"strings"
)

// Program = [ Stmt ] { ';' [ Stmt ] }
// Stmt = Assign | Def | Expr
// Assign = name '=' Expr
// Def = name '(' [ name { ',' name } ] ')' '=' Expr
// Expr = num | name | Call | Neg | Plus | Add | Sub | Mul | Div | Mod | Pow | Juxt | '(' Expr ')'
// Call = name '(' [ Expr { ',' Expr } ] ')'
// Neg = '-' Expr
// Plus = '+' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Mod = Expr '%' Expr
// Pow = Expr '^' Expr
// Juxt = Expr Expr

// Program is a parsed sequence of statements that can be run in a Session.
type Program struct {
	// stmts are the statements in source order. There is always at least one.
	stmts []*node
	// names is the list of variable names read by the program.
	names []string
}

// scanner is a cursor over lexed tokens. The last token is always EOF, and
// reading past it keeps returning it.
type scanner struct {
	toks []lexToken
	i    int
}

// next scans the next token.
func (s *scanner) next() lexToken {
	tok := s.peek(0)
	s.i++
	return tok
}

// back unreads the last token returned from next.
func (s *scanner) back() {
	s.i--
}

// peek returns the token k positions ahead without scanning it.
func (s *scanner) peek(k int) lexToken {
	if j := s.i + k; j < len(s.toks) {
		return s.toks[j]
	}
	return s.toks[len(s.toks)-1]
}

// parsectx holds general data for parsing.
type parsectx struct {
	scan *scanner
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
}

// Parse parses a sequence of semicolon-separated statements. Empty statements
// are skipped, so a trailing semicolon is allowed, but there must be at least
// one statement.
func Parse(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := parsectx{
		scan:  &scanner{toks: toks},
		names: make(map[string]bool),
	}
	var stmts []*node
	for {
		tok := p.scan.peek(0)
		if tok.kind == tokenEOF {
			if len(stmts) == 0 {
				return nil, &EmptyExpressionError{Col: tok.pos}
			}
			break
		}
		if tok.kind == tokenSep && tok.text == ";" {
			p.scan.next()
			continue
		}
		n, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, n)
		switch end := p.scan.next(); {
		case end.kind == tokenEOF:
			p.scan.back()
		case end.kind == tokenSep && end.text == ";":
			// next statement
		default:
			return nil, itShouldNotHaveEndedThisWay(end, nil)
		}
	}
	prog := Program{
		stmts: stmts,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		prog.names = append(prog.names, k)
	}
	sortstrs(prog.names)
	return &prog, nil
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// statement parses one statement. It leaves the token that ended the
// statement unscanned.
func (p *parsectx) statement() (*node, error) {
	first, second := p.scan.peek(0), p.scan.peek(1)
	if first.kind != tokenIdent {
		return p.expr()
	}
	switch second.kind {
	case tokenEquals:
		if p.scan.peek(2).kind == tokenEquals {
			// name == ... is not an assignment; let the expression parser
			// reject the operator.
			break
		}
		p.scan.next()
		p.scan.next()
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeAssign, name: first.text, left: rhs}, nil
	case tokenOpen:
		if p.isdef() {
			return p.def()
		}
	}
	return p.expr()
}

// isdef reports whether the scanner is at name(...) = where the = is not the
// start of ==.
func (p *parsectx) isdef() bool {
	depth := 0
	for k := 1; ; k++ {
		tok := p.scan.peek(k)
		switch tok.kind {
		case tokenOpen:
			depth++
		case tokenClose:
			depth--
			if depth == 0 {
				return p.scan.peek(k+1).kind == tokenEquals && p.scan.peek(k+2).kind != tokenEquals
			}
		case tokenEOF:
			return false
		case tokenSep:
			if tok.text == ";" {
				return false
			}
		}
	}
}

// def parses a function definition. The scanner must be at its name.
func (p *parsectx) def() (*node, error) {
	name := p.scan.next()
	p.scan.next() // (
	var params []string
	seen := make(map[string]bool)
	for {
		tok := p.scan.next()
		if tok.kind == tokenClose && len(params) == 0 {
			break
		}
		if tok.kind != tokenIdent {
			return nil, &ParamError{Col: tok.pos, Func: name.text, Reason: "expected parameter name, found " + strconv.Quote(tok.text)}
		}
		if seen[tok.text] {
			return nil, &ParamError{Col: tok.pos, Func: name.text, Reason: "duplicate parameter " + tok.text}
		}
		seen[tok.text] = true
		params = append(params, tok.text)
		sep := p.scan.next()
		if sep.kind == tokenClose {
			break
		}
		if sep.kind != tokenSep || sep.text != "," {
			return nil, &ParamError{Col: sep.pos, Func: name.text, Reason: "expected , or ), found " + strconv.Quote(sep.text)}
		}
	}
	p.scan.next() // =
	body, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeDef, name: name.text, params: params, left: body}, nil
}

// expr parses a complete, non-empty expression.
func (p *parsectx) expr() (*node, error) {
	n, err := p.parseterm(exprprec)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, p.empty()
	}
	return n, nil
}

// empty creates an error for an empty subexpression ending at the next token.
func (p *parsectx) empty() error {
	tok := p.scan.peek(0)
	return &EmptyExpressionError{Col: tok.pos, End: tok.text}
}

// parseterm parses a single term. If there is no error, then parseterm leaves
// the last token it scans unscanned, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func (p *parsectx) parseterm(until operator) (*node, error) {
	n, err := p.parselhs(until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok := p.scan.next()
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// (parsed) x -> (parsed) * (x)
			// (parsed) (expr) -> (parsed) * (expr)
			// (parsed) x^(expr) -> (parsed) * (x^(expr))
			p.scan.back()
			if !termprec.moreBinding(until) {
				return n, nil
			}
			rhs, err := p.parseterm(termprec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				p.scan.back()
				return n, nil
			}
			rhs, err := p.parseterm(prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, p.empty()
			}
			n = &node{kind: prec.op, left: n, right: rhs}
		case tokenClose, tokenSep, tokenEquals, tokenEOF:
			// End of expression.
			p.scan.back()
			return n, nil
		default:
			panic("mexer: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary
// and any encountered token must be valid as the start of a subexpression.
func (p *parsectx) parselhs(until operator) (*node, error) {
	tok := p.scan.next()
	switch tok.kind {
	case tokenNum:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			// The lexer only produces valid numbers.
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		return &node{kind: nodeNum, name: tok.text, num: v}, nil
	case tokenIdent:
		if p.scan.peek(0).kind != tokenOpen {
			p.names[tok.text] = true
			return &node{kind: nodeName, name: tok.text}, nil
		}
		open := p.scan.next()
		args, err := p.parsearglist(open)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			// name(arg) multiplies when name is a variable.
			p.names[tok.text] = true
		}
		return &node{kind: nodeCall, name: tok.text, args: args}, nil
	case tokenOp:
		// unary operator
		prec, ok := unop(tok.text)
		if !ok {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := p.parseterm(prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, p.empty()
		}
		if prec.op == nodeNone {
			// Unary plus.
			return rhs, nil
		}
		return &node{kind: prec.op, left: rhs}, nil
	case tokenOpen:
		rhs, err := p.parseterm(exprprec)
		if err != nil {
			return nil, err
		}
		end := p.scan.next()
		if end.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(end, &tok)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return rhs, nil
	case tokenClose, tokenSep, tokenEOF:
		// Let the caller decide whether an empty expression is allowed.
		p.scan.back()
		return nil, nil
	case tokenEquals:
		return nil, &TokenError{Col: tok.pos, Token: tok.text}
	default:
		panic("mexer: unknown token: " + tok.String())
	}
}

// parsearglist parses a parenthesized list of zero or more arguments. The open
// parenthesis has already been scanned; parsearglist scans the close.
func (p *parsectx) parsearglist(open lexToken) ([]*node, error) {
	var args []*node
	for {
		rhs, err := p.parseterm(exprprec)
		if err != nil {
			return nil, err
		}
		end := p.scan.next()
		switch {
		case end.kind == tokenClose:
			if rhs == nil {
				// f() is allowed, but f(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			return append(args, rhs), nil
		case end.kind == tokenSep && end.text == ",":
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args = append(args, rhs)
		default:
			return nil, itShouldNotHaveEndedThisWay(end, &open)
		}
	}
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. open is the open parenthesis that the
// subexpression is inside, or nil if none.
func itShouldNotHaveEndedThisWay(tok lexToken, open *lexToken) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		if open != nil {
			return &BracketError{Col: open.pos, Left: open.text}
		}
		return &EmptyExpressionError{Col: tok.pos}
	case tokenClose:
		return &BracketError{Col: tok.pos, Right: tok.text}
	case tokenSep:
		if tok.text == ";" && open != nil {
			// Statements can't end inside brackets.
			return &BracketError{Col: open.pos, Left: open.text}
		}
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEquals:
		return &TokenError{Col: tok.pos, Token: tok.text}
	default:
		panic("mexer: it really should not have ended this way: " + tok.String())
	}
}

// Vars returns the variable names that running the program may read, sorted.
// A name called with one argument is included, since it multiplies when it is
// a variable.
func (prog *Program) Vars() []string {
	return append(([]string)(nil), prog.names...)
}

// Len returns the number of statements in the program.
func (prog *Program) Len() int {
	return len(prog.stmts)
}

// String creates a string representation of the parsed program, with
// alternating round and square brackets grouping each term.
func (prog *Program) String() string {
	var b strings.Builder
	for i, n := range prog.stmts {
		if i > 0 {
			b.WriteString("; ")
		}
		n.fmt(&b, false)
	}
	return b.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "%":
		return operator{5, false, nodeMod}
	case "^":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. Unary plus has an op of
// nodeNone. The second result is false if there is no such unary operator.
func unop(text string) (operator, bool) {
	switch text {
	case "+":
		return operator{10, true, nodeNone}, true
	case "-":
		return operator{10, true, nodeNeg}, true
	default:
		return operator{}, false
	}
}

var (
	// termprec is the precedence for implicit multiplication of juxtaposed
	// terms. It matches that of multiplication.
	termprec = operator{5, false, nodeMul}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)
