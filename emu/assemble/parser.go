/*
   Assembly parser: labels, instructions, directives, macros and
   conditional blocks.

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

import (
	"os"
	"path/filepath"
	"strings"

	op "github.com/hugojpinto/psion-org2-sdk/emu/opcodemap"
)

// Statement kinds.
const (
	stLabel = iota
	stInstr
	stDirective
)

// Parsed addressing modes. Direct versus extended stays open until
// the code generator knows the operand value.
const (
	amInherent = iota
	amImmediate
	amIndexed
	amRelative
	amDirExt
	amBitDirect
	amBitIndexed
)

// Statement is one parsed source statement.
type Statement struct {
	Kind   int
	Loc    Loc
	Source string
	Name   string  // label, mnemonic or directive name
	Mode   int     // addressing mode for instructions
	Exprs  []*Expr // operand expressions
	Strs   []string
}

type macroDef struct {
	name  string
	lines []string
}

type parser struct {
	includePaths []string
	defines      *symtab
	macros       map[string]*macroDef
	errs         ErrorList
	depth        int
}

type condFrame struct {
	emitting bool // this branch emits
	taken    bool // some branch of this block already emitted
	parent   bool // the enclosing block was emitting
}

// directives the code generator consumes.
var codegenDirectives = map[string]bool{
	"ORG": true, "EQU": true, "SET": true,
	"FCB": true, "DB": true, "BYTE": true,
	"FDB": true, "DW": true, "WORD": true,
	"FCC": true, "ASCII": true,
	"RMB": true, "DS": true, "FILL": true,
	"MODEL": true, "END": true,
}

// parseSource turns source text into statements, resolving includes,
// expanding macros and applying conditional assembly.
func parseSource(src, file string, includePaths []string, defines *symtab) ([]Statement, ErrorList) {
	par := &parser{
		includePaths: includePaths,
		defines:      defines,
		macros:       make(map[string]*macroDef),
	}
	stmts := par.parse(src, file)
	return stmts, par.errs
}

func (par *parser) errorf(loc Loc, source, msg string) {
	par.errs = append(par.errs, &Error{Loc: loc, Msg: msg, SourceLine: source})
}

// parse handles one source unit. Includes and macro bodies recurse
// through here.
func (par *parser) parse(src, file string) []Statement {
	if par.depth > 16 {
		par.errorf(Loc{File: file, Line: 1, Col: 1}, "", "include nesting too deep")
		return nil
	}

	lex := newLexer(src, file)
	tokens, lexErr := lex.tokenize()
	if lexErr != nil {
		par.errs = append(par.errs, lexErr)
		return nil
	}

	srcLines := strings.Split(src, "\n")
	line := func(loc Loc) string {
		if loc.Line-1 < len(srcLines) {
			return srcLines[loc.Line-1]
		}
		return ""
	}

	var stmts []Statement
	var conds []condFrame
	var mac *macroDef // non-nil while collecting a macro body

	emitting := func() bool {
		for _, frame := range conds {
			if !frame.emitting {
				return false
			}
		}
		return true
	}

	pos := 0
	for tokens[pos].Type != tEOF {
		// Slice one line of tokens.
		start := pos
		for tokens[pos].Type != tNewline && tokens[pos].Type != tEOF {
			pos++
		}
		lineToks := tokens[start:pos]
		if tokens[pos].Type == tNewline {
			pos++
		}
		if len(lineToks) == 0 {
			continue
		}
		loc := lineToks[0].Loc
		source := line(loc)

		// Conditional directives work even while skipping.
		if handled := par.conditional(lineToks, source, &conds); handled {
			continue
		}
		if !emitting() {
			continue
		}

		// Macro collection.
		if mac != nil {
			if len(lineToks) >= 1 && lineToks[0].Type == tIdent &&
				strings.EqualFold(lineToks[0].Text, "ENDM") {
				par.macros[strings.ToUpper(mac.name)] = mac
				mac = nil
			} else {
				mac.lines = append(mac.lines, source)
			}
			continue
		}
		if lineToks[0].Type == tIdent && strings.EqualFold(lineToks[0].Text, "MACRO") {
			if len(lineToks) < 2 || lineToks[1].Type != tIdent {
				par.errorf(loc, source, "MACRO needs a name")
				continue
			}
			mac = &macroDef{name: lineToks[1].Text}
			continue
		}

		stmts = append(stmts, par.parseLine(lineToks, source)...)
	}

	if mac != nil {
		par.errorf(Loc{File: file, Line: lex.line, Col: 1}, "", "missing ENDM for macro "+mac.name)
	}
	if len(conds) != 0 {
		par.errorf(Loc{File: file, Line: lex.line, Col: 1}, "", "missing #ENDIF")
	}
	return stmts
}

// conditional processes #IF/#IFDEF/#IFNDEF/#ELSE/#ENDIF lines,
// reporting whether the line was one.
func (par *parser) conditional(lineToks []Token, source string, conds *[]condFrame) bool {
	if len(lineToks) < 2 || lineToks[0].Type != tHash || lineToks[1].Type != tIdent {
		return false
	}
	name := strings.ToUpper(lineToks[1].Text)
	loc := lineToks[0].Loc

	parentEmitting := true
	for _, frame := range *conds {
		if !frame.emitting {
			parentEmitting = false
		}
	}

	switch name {
	case "IF":
		emit := false
		if parentEmitting {
			expr := &exprParser{tokens: append(append([]Token{}, lineToks[2:]...), Token{Type: tEOF})}
			tree, err := expr.parseExpr()
			if err != nil {
				par.errs = append(par.errs, err)
			} else {
				value, _, evalErr := par.defines.eval(tree, 0)
				if evalErr != nil {
					par.errorf(loc, source, evalErr.Error())
				} else {
					emit = value != 0
				}
			}
		}
		*conds = append(*conds, condFrame{emitting: emit, taken: emit, parent: parentEmitting})
	case "IFDEF", "IFNDEF":
		emit := false
		if parentEmitting {
			if len(lineToks) < 3 || lineToks[2].Type != tIdent {
				par.errorf(loc, source, name+" needs a symbol name")
			} else {
				_, defined := par.defines.lookup(lineToks[2].Text)
				emit = defined == (name == "IFDEF")
			}
		}
		*conds = append(*conds, condFrame{emitting: emit, taken: emit, parent: parentEmitting})
	case "ELSE":
		if len(*conds) == 0 {
			par.errorf(loc, source, "#ELSE without #IF")
			return true
		}
		frame := &(*conds)[len(*conds)-1]
		frame.emitting = frame.parent && !frame.taken
		if frame.emitting {
			frame.taken = true
		}
	case "ENDIF":
		if len(*conds) == 0 {
			par.errorf(loc, source, "#ENDIF without #IF")
			return true
		}
		*conds = (*conds)[:len(*conds)-1]
	default:
		return false
	}
	return true
}

// parseLine parses one logical line into statements. A line may hold
// a label, an instruction or directive, or both.
func (par *parser) parseLine(lineToks []Token, source string) []Statement {
	var stmts []Statement
	loc := lineToks[0].Loc

	// Leading label: identifier at column one, or identifier followed
	// by a colon.
	if lineToks[0].Type == tIdent {
		isLabel := false
		rest := lineToks[1:]
		if len(lineToks) > 1 && lineToks[1].Type == tColon {
			isLabel = true
			rest = lineToks[2:]
		} else if loc.Col == 1 && !op.IsMnemonic(strings.ToUpper(lineToks[0].Text)) &&
			!codegenDirectives[strings.ToUpper(lineToks[0].Text)] &&
			par.macros[strings.ToUpper(lineToks[0].Text)] == nil {
			// EQU and SET name their symbol with the leading field.
			if len(lineToks) > 1 && lineToks[1].Type == tIdent &&
				(strings.EqualFold(lineToks[1].Text, "EQU") || strings.EqualFold(lineToks[1].Text, "SET")) {
				return par.parseEquate(lineToks, source)
			}
			isLabel = true
		}
		if isLabel {
			stmts = append(stmts, Statement{
				Kind: stLabel, Loc: loc, Source: source, Name: lineToks[0].Text,
			})
			if len(rest) == 0 {
				return stmts
			}
			more := par.parseLine(rest, source)
			return append(stmts, more...)
		}
	}

	if lineToks[0].Type != tIdent {
		par.errorf(loc, source, "expected label, instruction or directive")
		return stmts
	}

	name := strings.ToUpper(lineToks[0].Text)
	rest := lineToks[1:]

	switch {
	case name == "INCLUDE":
		stmts = append(stmts, par.include(rest, loc, source)...)
	case codegenDirectives[name]:
		stmt, ok := par.parseDirective(name, rest, loc, source)
		if ok {
			stmts = append(stmts, stmt)
		}
	case op.IsMnemonic(name):
		stmt, ok := par.parseInstr(name, rest, loc, source)
		if ok {
			stmts = append(stmts, stmt)
		}
	case par.macros[name] != nil:
		stmts = append(stmts, par.expandMacro(par.macros[name], rest, loc, source)...)
	default:
		par.errorf(loc, source, "unknown mnemonic or directive "+lineToks[0].Text)
	}
	return stmts
}

// parseEquate handles "NAME EQU expr" and "NAME SET expr".
func (par *parser) parseEquate(lineToks []Token, source string) []Statement {
	loc := lineToks[0].Loc
	expr := &exprParser{tokens: append(append([]Token{}, lineToks[2:]...), Token{Type: tEOF})}
	tree, err := expr.parseExpr()
	if err != nil {
		par.errs = append(par.errs, err)
		return nil
	}
	return []Statement{{
		Kind: stDirective, Loc: loc, Source: source,
		Name:  strings.ToUpper(lineToks[1].Text),
		Strs:  []string{lineToks[0].Text},
		Exprs: []*Expr{tree},
	}}
}

// include splices another source file in place.
func (par *parser) include(rest []Token, loc Loc, source string) []Statement {
	if len(rest) != 1 || rest[0].Type != tString {
		par.errorf(loc, source, "INCLUDE needs a quoted file name")
		return nil
	}
	name := rest[0].Text
	var data []byte
	var err error
	tried := []string{name}
	data, err = os.ReadFile(name)
	if err != nil {
		for _, dir := range par.includePaths {
			path := filepath.Join(dir, name)
			tried = append(tried, path)
			data, err = os.ReadFile(path)
			if err == nil {
				break
			}
		}
	}
	if err != nil {
		par.errorf(loc, source, "cannot find include file "+name+" (tried "+strings.Join(tried, ", ")+")")
		return nil
	}
	par.depth++
	stmts := par.parse(string(data), name)
	par.depth--
	return stmts
}

// expandMacro substitutes positional arguments into the stored body
// and parses the result. Errors inside the body surface at the
// invocation line.
func (par *parser) expandMacro(mac *macroDef, rest []Token, loc Loc, source string) []Statement {
	// Collect comma separated argument texts.
	var args []string
	var current []string
	for _, tok := range rest {
		if tok.Type == tComma {
			args = append(args, strings.Join(current, ""))
			current = nil
			continue
		}
		current = append(current, tokenText(tok))
	}
	if len(current) > 0 {
		args = append(args, strings.Join(current, ""))
	}

	body := strings.Join(mac.lines, "\n")
	for i, arg := range args {
		body = strings.ReplaceAll(body, "\\"+string(rune('1'+i)), arg)
	}

	errBefore := len(par.errs)
	par.depth++
	stmts := par.parse(body, loc.File)
	par.depth--

	// Remap positions to the invocation site.
	for i := range stmts {
		stmts[i].Loc = loc
		stmts[i].Source = source
	}
	for i := errBefore; i < len(par.errs); i++ {
		par.errs[i] = &Error{
			Loc:        loc,
			Msg:        "in macro " + mac.name + ": " + par.errs[i].Msg,
			SourceLine: source,
		}
	}
	return stmts
}

// tokenText reconstructs a token's source spelling for macro
// substitution.
func tokenText(tok Token) string {
	switch tok.Type {
	case tNumber:
		return intToString(tok.Value)
	case tHash:
		return "#"
	case tDollar:
		return "$"
	case tLParen:
		return "("
	case tRParen:
		return ")"
	case tColon:
		return ":"
	case tString:
		return "\"" + tok.Text + "\""
	default:
		return tok.Text
	}
}

func intToString(value int) string {
	if value == 0 {
		return "0"
	}
	neg := value < 0
	if neg {
		value = -value
	}
	var digits []byte
	for value > 0 {
		digits = append([]byte{byte('0' + value%10)}, digits...)
		value /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// parseDirective builds a directive statement with its operand list.
func (par *parser) parseDirective(name string, rest []Token, loc Loc, source string) (Statement, bool) {
	stmt := Statement{Kind: stDirective, Loc: loc, Source: source, Name: name}

	switch name {
	case "END":
		return stmt, true
	case "MODEL":
		if len(rest) != 1 || rest[0].Type != tIdent {
			par.errorf(loc, source, "MODEL needs a model name")
			return stmt, false
		}
		stmt.Strs = []string{strings.ToUpper(rest[0].Text)}
		return stmt, true
	case "FCC", "ASCII":
		if len(rest) != 1 || rest[0].Type != tString {
			par.errorf(loc, source, name+" needs a quoted string")
			return stmt, false
		}
		stmt.Strs = []string{rest[0].Text}
		return stmt, true
	case "EQU", "SET":
		par.errorf(loc, source, name+" needs a leading symbol name")
		return stmt, false
	}

	// Expression list directives: ORG, FCB/DB/BYTE, FDB/DW/WORD,
	// RMB/DS, FILL. FCB accepts strings mixed in.
	expr := &exprParser{tokens: append(append([]Token{}, rest...), Token{Type: tEOF})}
	for expr.peek().Type != tEOF {
		if expr.peek().Type == tString {
			stmt.Strs = append(stmt.Strs, expr.next().Text)
			stmt.Exprs = append(stmt.Exprs, nil) // keep ordering
		} else {
			tree, err := expr.parseExpr()
			if err != nil {
				par.errs = append(par.errs, err)
				return stmt, false
			}
			stmt.Exprs = append(stmt.Exprs, tree)
		}
		if expr.peek().Type == tComma {
			expr.next()
			continue
		}
		break
	}
	if expr.peek().Type != tEOF {
		par.errorf(expr.peek().Loc, source, "unexpected operand after "+name)
		return stmt, false
	}
	if len(stmt.Exprs) == 0 {
		par.errorf(loc, source, name+" needs at least one operand")
		return stmt, false
	}
	return stmt, true
}

// parseInstr detects the addressing mode from the operand syntax.
func (par *parser) parseInstr(name string, rest []Token, loc Loc, source string) (Statement, bool) {
	stmt := Statement{Kind: stInstr, Loc: loc, Source: source, Name: name}

	if len(rest) == 0 {
		stmt.Mode = amInherent
		if _, ok := op.Opcode(name, op.ModeInherent); !ok {
			par.errorf(loc, source, name+" needs an operand")
			return stmt, false
		}
		return stmt, true
	}

	expr := &exprParser{tokens: append(append([]Token{}, rest...), Token{Type: tEOF})}

	immediate := false
	if expr.peek().Type == tHash {
		expr.next()
		immediate = true
	}

	tree, err := expr.parseExpr()
	if err != nil {
		par.errs = append(par.errs, err)
		return stmt, false
	}
	stmt.Exprs = append(stmt.Exprs, tree)

	// ,X suffix and the bit-manipulate second operand.
	indexed := false
	if expr.peek().Type == tComma {
		expr.next()
		if expr.peek().Type == tIdent && strings.EqualFold(expr.peek().Text, "X") {
			expr.next()
			indexed = true
		} else {
			// AIM/OIM/EIM/TIM: #imm,addr or #imm,addr,X
			second, err := expr.parseExpr()
			if err != nil {
				par.errs = append(par.errs, err)
				return stmt, false
			}
			stmt.Exprs = append(stmt.Exprs, second)
			if expr.peek().Type == tComma {
				expr.next()
				if expr.peek().Type != tIdent || !strings.EqualFold(expr.peek().Text, "X") {
					par.errorf(expr.peek().Loc, source, "expected X after ,")
					return stmt, false
				}
				expr.next()
				indexed = true
			}
		}
	}
	if expr.peek().Type != tEOF {
		par.errorf(expr.peek().Loc, source, "unexpected operand")
		return stmt, false
	}

	switch {
	case len(stmt.Exprs) == 2 && immediate:
		if indexed {
			stmt.Mode = amBitIndexed
		} else {
			stmt.Mode = amBitDirect
		}
		if _, ok := op.Opcode(name, bitMode(stmt.Mode)); !ok {
			par.errorf(loc, source, name+" does not take an immediate and address pair")
			return stmt, false
		}
	case immediate:
		stmt.Mode = amImmediate
		okByte := hasMode(name, op.ModeImmediate)
		okWord := hasMode(name, op.ModeImmediate16)
		if !okByte && !okWord {
			par.errorf(loc, source, name+" does not take immediate mode")
			return stmt, false
		}
	case indexed:
		stmt.Mode = amIndexed
		if !hasMode(name, op.ModeIndexed) {
			par.errorf(loc, source, name+" does not take indexed mode")
			return stmt, false
		}
	case op.IsBranch(name):
		stmt.Mode = amRelative
	default:
		stmt.Mode = amDirExt
		if !hasMode(name, op.ModeDirect) && !hasMode(name, op.ModeExtended) {
			par.errorf(loc, source, name+" does not take a memory operand")
			return stmt, false
		}
	}
	return stmt, true
}

func hasMode(name string, mode int) bool {
	_, ok := op.Opcode(name, mode)
	return ok
}

func bitMode(mode int) int {
	if mode == amBitIndexed {
		return op.ModeBitIndexed
	}
	return op.ModeBitDirect
}
