/*
   Operand expression trees and their evaluator.

   Copyright (c) 2025, Hugo Pinto

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   HUGO PINTO BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package assembler

import "fmt"

// Expression node kinds.
const (
	exNumber = iota
	exSymbol
	exHere   // * or bare $: the current address
	exUnary  // - ~ +
	exBinary // arithmetic, bitwise, shift, comparison
	exFunc   // HIGH(x), LOW(x)
)

// Expr is a small operand tree.
type Expr struct {
	Kind  int
	Value int
	Name  string // symbol or function name, operator text
	Left  *Expr
	Right *Expr
	Loc   Loc
}

// Precedence ladder, loosest first: comparison, |, ^, &, shifts,
// additive, multiplicative, unary, primary.
var binaryLevels = [][]string{
	{"<", "<=", ">", ">=", "==", "!="},
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

// exprParser consumes tokens from a shared cursor.
type exprParser struct {
	tokens []Token
	pos    int
}

func (par *exprParser) peek() Token {
	return par.tokens[par.pos]
}

func (par *exprParser) next() Token {
	tok := par.tokens[par.pos]
	if tok.Type != tEOF {
		par.pos++
	}
	return tok
}

// parseExpr parses at the loosest precedence.
func (par *exprParser) parseExpr() (*Expr, *Error) {
	return par.parseLevel(0)
}

func (par *exprParser) parseLevel(level int) (*Expr, *Error) {
	if level >= len(binaryLevels) {
		return par.parseUnary()
	}
	left, err := par.parseLevel(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok := par.peek()
		if tok.Type != tOp || !contains(binaryLevels[level], tok.Text) {
			return left, nil
		}
		par.next()
		right, err := par.parseLevel(level + 1)
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: exBinary, Name: tok.Text, Left: left, Right: right, Loc: tok.Loc}
	}
}

func (par *exprParser) parseUnary() (*Expr, *Error) {
	tok := par.peek()
	if tok.Type == tOp && (tok.Text == "-" || tok.Text == "+" || tok.Text == "~") {
		par.next()
		operand, err := par.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.Text == "+" {
			return operand, nil
		}
		return &Expr{Kind: exUnary, Name: tok.Text, Left: operand, Loc: tok.Loc}, nil
	}
	return par.parsePrimary()
}

func (par *exprParser) parsePrimary() (*Expr, *Error) {
	tok := par.next()
	switch tok.Type {
	case tNumber:
		return &Expr{Kind: exNumber, Value: tok.Value, Loc: tok.Loc}, nil
	case tDollar:
		return &Expr{Kind: exHere, Loc: tok.Loc}, nil
	case tOp:
		if tok.Text == "*" {
			return &Expr{Kind: exHere, Loc: tok.Loc}, nil
		}
	case tIdent:
		if (tok.Text == "HIGH" || tok.Text == "LOW") && par.peek().Type == tLParen {
			par.next()
			arg, err := par.parseExpr()
			if err != nil {
				return nil, err
			}
			if par.peek().Type != tRParen {
				return nil, &Error{Loc: par.peek().Loc, Msg: "expected ) after " + tok.Text}
			}
			par.next()
			return &Expr{Kind: exFunc, Name: tok.Text, Left: arg, Loc: tok.Loc}, nil
		}
		return &Expr{Kind: exSymbol, Name: tok.Text, Loc: tok.Loc}, nil
	case tLParen:
		inner, err := par.parseExpr()
		if err != nil {
			return nil, err
		}
		if par.peek().Type != tRParen {
			return nil, &Error{Loc: par.peek().Loc, Msg: "expected )"}
		}
		par.next()
		return inner, nil
	}
	return nil, &Error{Loc: tok.Loc, Msg: "expected expression"}
}

func contains(set []string, text string) bool {
	for _, item := range set {
		if item == text {
			return true
		}
	}
	return false
}

// symtab binds names to values; label symbols are marked so the
// relocation pass knows which words are addresses.
type symtab struct {
	values map[string]int
	labels map[string]bool
	locs   map[string]Loc
}

func newSymtab() *symtab {
	return &symtab{
		values: make(map[string]int),
		labels: make(map[string]bool),
		locs:   make(map[string]Loc),
	}
}

func (tab *symtab) define(name string, value int, isLabel bool, loc Loc) {
	tab.values[name] = value
	tab.labels[name] = isLabel
	tab.locs[name] = loc
}

func (tab *symtab) lookup(name string) (int, bool) {
	value, ok := tab.values[name]
	return value, ok
}

// eval computes an expression. here is the current address.
// usesLabel comes back true when any referenced symbol is an address.
func (tab *symtab) eval(expr *Expr, here int) (value int, usesLabel bool, err error) {
	switch expr.Kind {
	case exNumber:
		return expr.Value, false, nil
	case exHere:
		return here, true, nil
	case exSymbol:
		value, ok := tab.lookup(expr.Name)
		if !ok {
			return 0, false, &undefinedError{name: expr.Name}
		}
		return value, tab.labels[expr.Name], nil
	case exUnary:
		operand, uses, err := tab.eval(expr.Left, here)
		if err != nil {
			return 0, false, err
		}
		switch expr.Name {
		case "-":
			return -operand, uses, nil
		case "~":
			return ^operand, uses, nil
		}
	case exFunc:
		operand, _, err := tab.eval(expr.Left, here)
		if err != nil {
			return 0, false, err
		}
		switch expr.Name {
		case "HIGH":
			return (operand >> 8) & 0xFF, false, nil
		case "LOW":
			return operand & 0xFF, false, nil
		}
	case exBinary:
		left, usesL, err := tab.eval(expr.Left, here)
		if err != nil {
			return 0, false, err
		}
		right, usesR, err := tab.eval(expr.Right, here)
		if err != nil {
			return 0, false, err
		}
		uses := usesL || usesR
		switch expr.Name {
		case "+":
			return left + right, uses, nil
		case "-":
			return left - right, usesL != usesR, nil
		case "*":
			return left * right, uses, nil
		case "/":
			if right == 0 {
				return 0, false, fmt.Errorf("division by zero")
			}
			return left / right, uses, nil
		case "%":
			if right == 0 {
				return 0, false, fmt.Errorf("division by zero")
			}
			return left % right, uses, nil
		case "&":
			return left & right, uses, nil
		case "|":
			return left | right, uses, nil
		case "^":
			return left ^ right, uses, nil
		case "<<":
			return left << uint(right&31), uses, nil
		case ">>":
			return left >> uint(right&31), uses, nil
		case "<":
			return boolVal(left < right), false, nil
		case "<=":
			return boolVal(left <= right), false, nil
		case ">":
			return boolVal(left > right), false, nil
		case ">=":
			return boolVal(left >= right), false, nil
		case "==":
			return boolVal(left == right), false, nil
		case "!=":
			return boolVal(left != right), false, nil
		}
	}
	return 0, false, fmt.Errorf("malformed expression")
}

func boolVal(b bool) int {
	if b {
		return 1
	}
	return 0
}
