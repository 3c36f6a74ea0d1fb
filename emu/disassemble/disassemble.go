/*
   HD6303 disassembler.

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

package disassembler

import (
	"fmt"
	"strings"

	op "github.com/hugojpinto/psion-org2-sdk/emu/opcodemap"
	"github.com/hugojpinto/psion-org2-sdk/util/hex"
)

// Inst is one decoded instruction.
type Inst struct {
	Addr     uint16
	Bytes    []uint8
	Mnemonic string
	Operand  string
	Comment  string // known system address or service, when recognized
}

// String renders the classic listing shape: address, bytes, mnemonic.
func (inst Inst) String() string {
	var str strings.Builder
	fmt.Fprintf(&str, "%04X  ", inst.Addr)
	hex.FormatBytes(&str, true, inst.Bytes)
	for i := len(inst.Bytes); i < 4; i++ {
		str.WriteString("   ")
	}
	str.WriteString(inst.Mnemonic)
	if inst.Operand != "" {
		str.WriteByte(' ')
		str.WriteString(inst.Operand)
	}
	if inst.Comment != "" {
		str.WriteString("\t; ")
		str.WriteString(inst.Comment)
	}
	return str.String()
}

// annotate names a memory operand when it is a known system address.
func annotate(addr uint16) string {
	return SysVars[addr]
}

// DisassembleOne decodes the instruction at addr.
func DisassembleOne(read func(uint16) uint8, addr uint16) Inst {
	opcode := read(addr)
	entry, ok := op.Table[opcode]
	if !ok {
		return Inst{
			Addr:     addr,
			Bytes:    []uint8{opcode},
			Mnemonic: "DB",
			Operand:  fmt.Sprintf("$%02X", opcode),
			Comment:  "undefined opcode, switches off",
		}
	}

	raw := make([]uint8, entry.Size)
	for i := range raw {
		raw[i] = read(addr + uint16(i))
	}
	inst := Inst{Addr: addr, Bytes: raw, Mnemonic: entry.Name}

	switch entry.Mode {
	case op.ModeInherent:
	case op.ModeImmediate:
		inst.Operand = fmt.Sprintf("#$%02X", raw[1])
	case op.ModeImmediate16:
		inst.Operand = fmt.Sprintf("#$%04X", uint16(raw[1])<<8|uint16(raw[2]))
	case op.ModeDirect:
		inst.Operand = fmt.Sprintf("$%02X", raw[1])
		inst.Comment = annotate(uint16(raw[1]))
	case op.ModeExtended:
		target := uint16(raw[1])<<8 | uint16(raw[2])
		inst.Operand = fmt.Sprintf("$%04X", target)
		inst.Comment = annotate(target)
	case op.ModeIndexed:
		inst.Operand = fmt.Sprintf("$%02X,X", raw[1])
	case op.ModeRelative:
		target := addr + uint16(entry.Size) + uint16(int16(int8(raw[1])))
		inst.Operand = fmt.Sprintf("$%04X", target)
	case op.ModeBitDirect:
		inst.Operand = fmt.Sprintf("#$%02X,$%02X", raw[1], raw[2])
		inst.Comment = annotate(uint16(raw[2]))
	case op.ModeBitIndexed:
		inst.Operand = fmt.Sprintf("#$%02X,$%02X,X", raw[1], raw[2])
	}
	return inst
}

// Disassemble decodes count instructions starting at addr. A leading
// LDAA immediate names the service of the SWI that follows it.
func Disassemble(read func(uint16) uint8, addr uint16, count int) []Inst {
	out := make([]Inst, 0, count)
	pendingService := -1
	for i := 0; i < count; i++ {
		inst := DisassembleOne(read, addr)
		if inst.Mnemonic == "SWI" && pendingService >= 0 {
			if name, ok := Syscalls[uint8(pendingService)]; ok {
				inst.Comment = name
			}
		}
		if inst.Mnemonic == "LDAA" && len(inst.Bytes) == 2 && inst.Bytes[0] == 0x86 {
			pendingService = int(inst.Bytes[1])
		} else {
			pendingService = -1
		}
		out = append(out, inst)
		addr += uint16(len(inst.Bytes))
	}
	return out
}

// DisassembleBytes decodes a byte slice as if loaded at origin.
func DisassembleBytes(code []uint8, origin uint16) []Inst {
	read := func(addr uint16) uint8 {
		index := int(addr) - int(origin)
		if index < 0 || index >= len(code) {
			return 0xFF
		}
		return code[index]
	}
	var out []Inst
	addr := origin
	for int(addr)-int(origin) < len(code) {
		chunk := Disassemble(read, addr, 1)
		out = append(out, chunk[0])
		addr += uint16(len(chunk[0].Bytes))
	}
	return out
}
