/*
   Two-pass code generator with branch relaxation.

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
	"fmt"
	"strings"

	op "github.com/hugojpinto/psion-org2-sdk/emu/opcodemap"
	"github.com/hugojpinto/psion-org2-sdk/util/hex"
)

// Pass one walks the statements assigning addresses and sizes;
// branches to forward or unknown targets start long and a fixpoint
// shrinks them to two-byte short branches when the final offset fits.
// Pass two emits bytes with the full symbol table in hand.

const (
	shortBranchSize = 2
	longJumpSize    = 3 // BRA and BSR relax to JMP / JSR
	longCondSize    = 5 // inverted short branch over a JMP
)

type listLine struct {
	addr   int
	data   []uint8
	source string
}

type codegen struct {
	syms    *symtab
	reloc   bool
	model   func(string) error // .MODEL directive callback

	origin   int
	orgSeen  bool
	code     []uint8
	listing  []listLine
	fixups   []int
	errs     ErrorList
	sizes    []int // per-statement size from the sizing passes
	longForm []bool
	ended    bool
}

func newCodegen(syms *symtab, reloc bool, model func(string) error) *codegen {
	return &codegen{syms: syms, reloc: reloc, model: model}
}

func (gen *codegen) errorf(stmt *Statement, format string, args ...interface{}) {
	gen.errs = append(gen.errs, &Error{
		Loc:        stmt.Loc,
		Msg:        fmt.Sprintf(format, args...),
		SourceLine: stmt.Source,
	})
}

// expandLocals rewrites .name labels and references against the last
// global label.
func expandLocals(stmts []Statement) {
	lastGlobal := ""
	var walk func(expr *Expr, global string)
	walk = func(expr *Expr, global string) {
		if expr == nil {
			return
		}
		if expr.Kind == exSymbol && strings.HasPrefix(expr.Name, ".") {
			expr.Name = global + expr.Name
		}
		walk(expr.Left, global)
		walk(expr.Right, global)
	}
	for i := range stmts {
		stmt := &stmts[i]
		if stmt.Kind == stLabel {
			if strings.HasPrefix(stmt.Name, ".") {
				stmt.Name = lastGlobal + stmt.Name
			} else {
				lastGlobal = stmt.Name
			}
		}
		for _, expr := range stmt.Exprs {
			walk(expr, lastGlobal)
		}
	}
}

// generate runs both passes and returns the object bytes.
func (gen *codegen) generate(stmts []Statement) []uint8 {
	expandLocals(stmts)

	gen.sizes = make([]int, len(stmts))
	gen.longForm = make([]bool, len(stmts))
	for i := range gen.longForm {
		gen.longForm[i] = true // branches assumed long until proven short
	}

	if gen.reloc {
		gen.origin = relocStubSize
	}

	// Sizing fixpoint.
	for iter := 0; iter < 32; iter++ {
		if !gen.sizingPass(stmts) {
			break
		}
	}

	gen.emitPass(stmts)

	if gen.reloc {
		return gen.relocOutput()
	}
	return gen.code
}

// sizingPass recomputes addresses and sizes, reporting whether
// anything changed.
func (gen *codegen) sizingPass(stmts []Statement) bool {
	changed := false
	addr := gen.origin
	seen := make(map[string]bool)
	gen.ended = false

	for i := range stmts {
		stmt := &stmts[i]
		if gen.ended {
			break
		}
		switch stmt.Kind {
		case stLabel:
			if seen[stmt.Name] {
				// Reported on the emit pass.
				continue
			}
			seen[stmt.Name] = true
			gen.syms.define(stmt.Name, addr, true, stmt.Loc)
		case stDirective:
			addr = gen.directiveSize(stmt, addr, true)
		case stInstr:
			size := gen.instrSize(stmt, i, addr)
			if size != gen.sizes[i] {
				gen.sizes[i] = size
				changed = true
			}
			addr += size
		}
	}
	return changed
}

// instrSize picks the encoding size for the current estimates.
func (gen *codegen) instrSize(stmt *Statement, index, addr int) int {
	switch stmt.Mode {
	case amInherent:
		return 1
	case amImmediate:
		if op.WordImmediate[stmt.Name] {
			return 3
		}
		return 2
	case amIndexed:
		return 2
	case amBitDirect, amBitIndexed:
		return 3
	case amRelative:
		return gen.branchSize(stmt, index, addr)
	case amDirExt:
		if !hasMode(stmt.Name, op.ModeDirect) {
			return 3
		}
		value, _, err := gen.syms.eval(stmt.Exprs[0], addr)
		if err != nil {
			return 3 // unknown: assume extended
		}
		if value >= 0 && value < 0x100 {
			return 2
		}
		return 3
	}
	return 1
}

// branchSize relaxes a branch: once the target is known and the
// offset fits a signed byte, the branch shrinks to its short form.
func (gen *codegen) branchSize(stmt *Statement, index, addr int) int {
	if stmt.Name == "BRN" {
		gen.longForm[index] = false
		return shortBranchSize
	}
	target, _, err := gen.syms.eval(stmt.Exprs[0], addr)
	if err == nil {
		offset := target - (addr + shortBranchSize)
		if offset >= -128 && offset <= 127 {
			gen.longForm[index] = false
			return shortBranchSize
		}
		gen.longForm[index] = true
	}
	if !gen.longForm[index] {
		return shortBranchSize
	}
	if stmt.Name == "BRA" || stmt.Name == "BSR" {
		return longJumpSize
	}
	return longCondSize
}

// directiveSize advances the address for a directive; during the
// emit pass (sizing=false) it also produces bytes and diagnostics.
func (gen *codegen) directiveSize(stmt *Statement, addr int, sizing bool) int {
	switch stmt.Name {
	case "ORG":
		value, _, err := gen.syms.eval(stmt.Exprs[0], addr)
		if err != nil {
			if !sizing {
				gen.errorf(stmt, "ORG needs a resolvable address: %v", err)
			}
			return addr
		}
		if gen.reloc {
			if !sizing {
				gen.errorf(stmt, "ORG is not allowed in relocatable mode")
			}
			return addr
		}
		if !gen.orgSeen {
			gen.orgSeen = true
			gen.origin = value
		} else if !sizing && value < addr {
			gen.errorf(stmt, "ORG $%04X moves backwards over emitted code", value)
			return addr
		}
		if !sizing && value > addr && gen.orgSeen && len(gen.code) > 0 {
			// Pad forward gaps.
			for addr < value {
				gen.code = append(gen.code, 0)
				addr++
			}
		}
		return value
	case "EQU", "SET":
		name := stmt.Strs[0]
		value, _, err := gen.syms.eval(stmt.Exprs[0], addr)
		if err != nil {
			if !sizing {
				gen.errorf(stmt, "%s: %v", stmt.Name, err)
			}
			return addr
		}
		if stmt.Name == "EQU" {
			if prev, defined := gen.syms.lookup(name); defined && prev != value && !sizing {
				gen.errorf(stmt, "symbol %s already defined at %s", name, gen.syms.locs[name])
				return addr
			}
		}
		gen.syms.define(name, value, false, stmt.Loc)
		return addr
	case "FCB", "DB", "BYTE":
		count := 0
		for i, expr := range stmt.Exprs {
			if expr == nil {
				count += len(stmt.Strs[strIndex(stmt, i)])
			} else {
				count++
			}
		}
		if !sizing {
			gen.emitBytesDirective(stmt, addr)
		}
		return addr + count
	case "FDB", "DW", "WORD":
		if !sizing {
			gen.emitWordsDirective(stmt, addr)
		}
		return addr + 2*len(stmt.Exprs)
	case "FCC", "ASCII":
		if !sizing {
			gen.emit(stmt, addr, []uint8(stmt.Strs[0]))
		}
		return addr + len(stmt.Strs[0])
	case "RMB", "DS":
		count, _, err := gen.syms.eval(stmt.Exprs[0], addr)
		if err != nil || count < 0 {
			if !sizing {
				gen.errorf(stmt, "%s needs a resolvable non-negative size", stmt.Name)
			}
			return addr
		}
		if !sizing {
			gen.emit(stmt, addr, make([]uint8, count))
		}
		return addr + count
	case "FILL":
		count, _, err := gen.syms.eval(stmt.Exprs[0], addr)
		if err != nil || count < 0 {
			if !sizing {
				gen.errorf(stmt, "FILL needs a resolvable non-negative count")
			}
			return addr
		}
		if !sizing {
			value := 0
			if len(stmt.Exprs) > 1 {
				value, _, err = gen.syms.eval(stmt.Exprs[1], addr)
				if err != nil {
					gen.errorf(stmt, "FILL value: %v", err)
				}
			}
			data := make([]uint8, count)
			for i := range data {
				data[i] = uint8(value)
			}
			gen.emit(stmt, addr, data)
		}
		return addr + count
	case "MODEL":
		if !sizing && gen.model != nil {
			if err := gen.model(stmt.Strs[0]); err != nil {
				gen.errorf(stmt, "%v", err)
			}
		}
		return addr
	case "END":
		gen.ended = true
		return addr
	}
	return addr
}

func strIndex(stmt *Statement, exprIndex int) int {
	// Count nil expressions before exprIndex; each consumed one
	// string in order.
	index := 0
	for i := 0; i < exprIndex; i++ {
		if stmt.Exprs[i] == nil {
			index++
		}
	}
	return index
}

// emitPass produces the final bytes.
func (gen *codegen) emitPass(stmts []Statement) {
	addr := gen.origin
	seen := make(map[string]bool)
	gen.ended = false
	gen.code = nil
	gen.listing = nil
	gen.fixups = nil

	for i := range stmts {
		stmt := &stmts[i]
		if gen.ended {
			break
		}
		switch stmt.Kind {
		case stLabel:
			if seen[stmt.Name] {
				gen.errorf(stmt, "duplicate label %s", stmt.Name)
				continue
			}
			seen[stmt.Name] = true
			gen.listing = append(gen.listing, listLine{addr: addr, source: stmt.Source})
		case stDirective:
			addr = gen.directiveSize(stmt, addr, false)
		case stInstr:
			data := gen.encode(stmt, i, addr)
			gen.emit(stmt, addr, data)
			addr += len(data)
		}
	}
}

// emit appends bytes and their listing line.
func (gen *codegen) emit(stmt *Statement, addr int, data []uint8) {
	gen.code = append(gen.code, data...)
	gen.listing = append(gen.listing, listLine{addr: addr, data: data, source: stmt.Source})
}

func (gen *codegen) emitBytesDirective(stmt *Statement, addr int) {
	var data []uint8
	for i, expr := range stmt.Exprs {
		if expr == nil {
			data = append(data, []uint8(stmt.Strs[strIndex(stmt, i)])...)
			continue
		}
		value, _, err := gen.syms.eval(expr, addr)
		if err != nil {
			gen.errorf(stmt, "%v", err)
			value = 0
		}
		if value < -128 || value > 255 {
			gen.errorf(stmt, "byte value %d out of range", value)
		}
		data = append(data, uint8(value))
	}
	gen.emit(stmt, addr, data)
}

func (gen *codegen) emitWordsDirective(stmt *Statement, addr int) {
	var data []uint8
	pos := addr
	for _, expr := range stmt.Exprs {
		value, usesLabel, err := gen.syms.eval(expr, addr)
		if err != nil {
			gen.errorf(stmt, "%v", err)
			value = 0
		}
		if usesLabel && gen.reloc {
			gen.fixups = append(gen.fixups, pos)
		}
		data = append(data, uint8(value>>8), uint8(value))
		pos += 2
	}
	gen.emit(stmt, addr, data)
}

// encode produces the bytes for one instruction.
func (gen *codegen) encode(stmt *Statement, index, addr int) []uint8 {
	eval := func(expr *Expr) (int, bool) {
		value, usesLabel, err := gen.syms.eval(expr, addr)
		if err != nil {
			gen.errorf(stmt, "%v", err)
			return 0, false
		}
		return value, usesLabel
	}

	switch stmt.Mode {
	case amInherent:
		opcode, _ := op.Opcode(stmt.Name, op.ModeInherent)
		return []uint8{opcode}

	case amImmediate:
		value, usesLabel := eval(stmt.Exprs[0])
		if op.WordImmediate[stmt.Name] {
			opcode, _ := op.Opcode(stmt.Name, op.ModeImmediate16)
			if usesLabel && gen.reloc {
				gen.fixups = append(gen.fixups, addr+1)
			}
			return []uint8{opcode, uint8(value >> 8), uint8(value)}
		}
		opcode, _ := op.Opcode(stmt.Name, op.ModeImmediate)
		if value < -128 || value > 255 {
			gen.errorf(stmt, "immediate value %d does not fit a byte", value)
		}
		return []uint8{opcode, uint8(value)}

	case amIndexed:
		value, _ := eval(stmt.Exprs[0])
		if value < 0 || value > 255 {
			gen.errorf(stmt, "indexed offset %d out of range", value)
		}
		opcode, _ := op.Opcode(stmt.Name, op.ModeIndexed)
		return []uint8{opcode, uint8(value)}

	case amBitDirect:
		imm, _ := eval(stmt.Exprs[0])
		target, _ := eval(stmt.Exprs[1])
		if target < 0 || target > 255 {
			gen.errorf(stmt, "%s needs a direct page address", stmt.Name)
		}
		opcode, _ := op.Opcode(stmt.Name, op.ModeBitDirect)
		return []uint8{opcode, uint8(imm), uint8(target)}

	case amBitIndexed:
		imm, _ := eval(stmt.Exprs[0])
		offset, _ := eval(stmt.Exprs[1])
		if offset < 0 || offset > 255 {
			gen.errorf(stmt, "indexed offset %d out of range", offset)
		}
		opcode, _ := op.Opcode(stmt.Name, op.ModeBitIndexed)
		return []uint8{opcode, uint8(imm), uint8(offset)}

	case amRelative:
		return gen.encodeBranch(stmt, index, addr)

	case amDirExt:
		value, usesLabel := eval(stmt.Exprs[0])
		if gen.sizes[index] == 2 && hasMode(stmt.Name, op.ModeDirect) &&
			value >= 0 && value < 0x100 {
			opcode, _ := op.Opcode(stmt.Name, op.ModeDirect)
			return []uint8{opcode, uint8(value)}
		}
		opcode, ok := op.Opcode(stmt.Name, op.ModeExtended)
		if !ok {
			gen.errorf(stmt, "%s does not take extended mode", stmt.Name)
			return nil
		}
		if usesLabel && gen.reloc {
			gen.fixups = append(gen.fixups, addr+1)
		}
		return []uint8{opcode, uint8(value >> 8), uint8(value)}
	}
	return nil
}

// encodeBranch emits a short branch or its relaxed long construct: an
// inverted short branch over a JMP for conditionals, JMP or JSR for
// BRA and BSR.
func (gen *codegen) encodeBranch(stmt *Statement, index, addr int) []uint8 {
	target, usesLabel, err := gen.syms.eval(stmt.Exprs[0], addr)
	if err != nil {
		gen.errorf(stmt, "%v", err)
		return make([]uint8, gen.sizes[index])
	}

	if !gen.longForm[index] {
		offset := target - (addr + shortBranchSize)
		if offset < -128 || offset > 127 {
			gen.errorf(stmt, "branch target out of range by %d bytes", offset)
			offset = 0
		}
		opcode, _ := op.Opcode(stmt.Name, op.ModeRelative)
		return []uint8{opcode, uint8(int8(offset))}
	}

	jmpFixup := func(pos int) {
		if usesLabel && gen.reloc {
			gen.fixups = append(gen.fixups, pos)
		}
	}

	switch stmt.Name {
	case "BRA":
		jmpFixup(addr + 1)
		return []uint8{0x7E, uint8(target >> 8), uint8(target)} // JMP
	case "BSR":
		jmpFixup(addr + 1)
		return []uint8{0xBD, uint8(target >> 8), uint8(target)} // JSR
	}

	inverse := op.Inverse(stmt.Name)
	if inverse == "" {
		gen.errorf(stmt, "branch target out of range for %s", stmt.Name)
		return make([]uint8, gen.sizes[index])
	}
	invOpcode, _ := op.Opcode(inverse, op.ModeRelative)
	jmpFixup(addr + 3)
	return []uint8{invOpcode, 0x03, 0x7E, uint8(target >> 8), uint8(target)}
}

// relocOutput prepends the self-locating stub and appends the fixup
// table: stub, code, count word, one offset word per fixup.
func (gen *codegen) relocOutput() []uint8 {
	out := relocStub(len(gen.code))
	out = append(out, gen.code...)
	out = append(out, uint8(len(gen.fixups)>>8), uint8(len(gen.fixups)))
	for _, fixup := range gen.fixups {
		out = append(out, uint8(fixup>>8), uint8(fixup))
	}
	return out
}

const relocStubSize = 62

// relocStub computes its own load address with a BSR/PULX pair, adds
// the base to every word the fixup table names, then jumps to the
// code that follows. Scratch goes in the UTW_S words.
func relocStub(codeLen int) []uint8 {
	tableOff := relocStubSize + codeLen
	return []uint8{
		0x8D, 0x00, // BSR +0
		0x38,       // PULX          X = base+2
		0x09,       // DEX
		0x09,       // DEX           X = base
		0xDF, 0x41, // STX $41       save base
		0xCC, uint8(tableOff >> 8), uint8(tableOff), // LDD #table
		0xD3, 0x41, // ADDD $41
		0xDD, 0x45, // STD $45       table address
		0xDE, 0x45, // LDX $45
		0xEC, 0x00, // LDD 0,X       fixup count
		0xDD, 0x49, // STD $49
		0x08,       // INX
		0x08,       // INX
		0xDC, 0x49, // loop: LDD $49
		0x27, 0x19, // BEQ done
		0x83, 0x00, 0x01, // SUBD #1
		0xDD, 0x49, // STD $49
		0xEC, 0x00, // LDD 0,X       offset within image
		0xD3, 0x41, // ADDD $41      absolute patch address
		0xDD, 0x45, // STD $45
		0x3C,       // PSHX
		0xDE, 0x45, // LDX $45
		0xEC, 0x00, // LDD 0,X
		0xD3, 0x41, // ADDD $41      relocate the word
		0xED, 0x00, // STD 0,X
		0x38,       // PULX
		0x08,       // INX
		0x08,       // INX
		0x20, 0xE3, // BRA loop
		0xDC, 0x41, // done: LDD $41
		0xC3, 0x00, relocStubSize, // ADDD #stub size
		0xDD, 0x45, // STD $45
		0xDE, 0x45, // LDX $45
		0x6E, 0x00, // JMP 0,X       into the code
	}
}

// listingText renders the classic listing: address, bytes, source.
func (gen *codegen) listingText() string {
	var str strings.Builder
	for _, line := range gen.listing {
		fmt.Fprintf(&str, "%04X  ", line.addr)
		var bytes strings.Builder
		hex.FormatBytes(&bytes, true, line.data)
		fmt.Fprintf(&str, "%-15s %s\n", bytes.String(), line.source)
	}
	return str.String()
}
