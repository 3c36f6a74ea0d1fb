/*
   QCode disassembler for the OPL interpreter's bytecode.

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

import "fmt"

// The interpreter reads qcodes sequentially; most are a bare opcode,
// a few carry inline operands. This decoder covers the opcodes that
// matter when tracing procedure calls and falls back to DB for the
// rest.

type qcodeEntry struct {
	name     string
	operands int
}

var qcodeTable = map[uint8]qcodeEntry{
	0x22: {"PUSH_INT", 2},
	0x59: {"STOP", 0},
	0x7B: {"RETURN", 0},
	0x7D: {"PROC", 1},
	0x9C: {"PEEKW", 0},
	0x9F: {"USR", 0},
	0xB2: {"SIN", 0},
}

// QInst is one decoded qcode.
type QInst struct {
	Addr    uint16
	Bytes   []uint8
	Name    string
	Operand string
}

func (inst QInst) String() string {
	if inst.Operand != "" {
		return fmt.Sprintf("%04X  %s %s", inst.Addr, inst.Name, inst.Operand)
	}
	return fmt.Sprintf("%04X  %s", inst.Addr, inst.Name)
}

// DisassembleQCode decodes a qcode stream loaded at origin.
func DisassembleQCode(code []uint8, origin uint16) []QInst {
	var out []QInst
	pos := 0
	for pos < len(code) {
		opcode := code[pos]
		addr := origin + uint16(pos)
		entry, ok := qcodeTable[opcode]
		if !ok {
			out = append(out, QInst{
				Addr:  addr,
				Bytes: code[pos : pos+1],
				Name:  "DB",
				Operand: fmt.Sprintf("$%02X", opcode),
			})
			pos++
			continue
		}
		size := 1 + entry.operands
		if pos+size > len(code) {
			size = len(code) - pos
		}
		inst := QInst{Addr: addr, Bytes: code[pos : pos+size], Name: entry.name}
		switch entry.operands {
		case 1:
			if size > 1 {
				inst.Operand = fmt.Sprintf("$%02X", code[pos+1])
			}
		case 2:
			if size > 2 {
				inst.Operand = fmt.Sprintf("$%04X", uint16(code[pos+1])<<8|uint16(code[pos+2]))
			}
		}
		out = append(out, inst)
		pos += size
	}
	return out
}
