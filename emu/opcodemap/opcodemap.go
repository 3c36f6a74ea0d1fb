/*
   HD6303 opcode catalog shared by the assembler, disassembler and CPU core.

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

package opcodemap

// Addressing modes of the HD6303. Direct page is $00-$FF, indexed is
// X plus an unsigned 8 bit offset, relative is a signed 8 bit branch
// displacement. The bit-manipulate group (AIM/OIM/EIM/TIM) carries an
// immediate byte in front of a direct address or an indexed offset.
const (
	ModeInherent = 1 + iota
	ModeImmediate
	ModeImmediate16
	ModeDirect
	ModeExtended
	ModeIndexed
	ModeRelative
	ModeBitDirect
	ModeBitIndexed
)

// One catalog entry. Size includes the opcode byte, Cycles includes
// the fetch cycle.
type Inst struct {
	Name   string // Mnemonic.
	Mode   int    // Addressing mode.
	Size   int    // Instruction length in bytes, 1 to 4.
	Cycles int    // Base cycle count.
}

// Table maps every defined opcode byte to its entry. Bytes without an
// entry are undefined: on real hardware they drive the semi-custom
// switch-off line, they are not errors.
var Table = map[byte]Inst{
	0x00: {"TRAP", ModeInherent, 1, 12},
	0x01: {"NOP", ModeInherent, 1, 1},
	0x04: {"LSRD", ModeInherent, 1, 1},
	0x05: {"ASLD", ModeInherent, 1, 1},
	0x06: {"TAP", ModeInherent, 1, 1},
	0x07: {"TPA", ModeInherent, 1, 1},
	0x08: {"INX", ModeInherent, 1, 1},
	0x09: {"DEX", ModeInherent, 1, 1},
	0x0A: {"CLV", ModeInherent, 1, 1},
	0x0B: {"SEV", ModeInherent, 1, 1},
	0x0C: {"CLC", ModeInherent, 1, 1},
	0x0D: {"SEC", ModeInherent, 1, 1},
	0x0E: {"CLI", ModeInherent, 1, 1},
	0x0F: {"SEI", ModeInherent, 1, 1},
	0x10: {"SBA", ModeInherent, 1, 1},
	0x11: {"CBA", ModeInherent, 1, 1},
	0x16: {"TAB", ModeInherent, 1, 1},
	0x17: {"TBA", ModeInherent, 1, 1},
	0x18: {"XGDX", ModeInherent, 1, 2},
	0x19: {"DAA", ModeInherent, 1, 2},
	0x1A: {"SLP", ModeInherent, 1, 4},
	0x1B: {"ABA", ModeInherent, 1, 1},
	0x20: {"BRA", ModeRelative, 2, 3},
	0x21: {"BRN", ModeRelative, 2, 3},
	0x22: {"BHI", ModeRelative, 2, 3},
	0x23: {"BLS", ModeRelative, 2, 3},
	0x24: {"BCC", ModeRelative, 2, 3},
	0x25: {"BCS", ModeRelative, 2, 3},
	0x26: {"BNE", ModeRelative, 2, 3},
	0x27: {"BEQ", ModeRelative, 2, 3},
	0x28: {"BVC", ModeRelative, 2, 3},
	0x29: {"BVS", ModeRelative, 2, 3},
	0x2A: {"BPL", ModeRelative, 2, 3},
	0x2B: {"BMI", ModeRelative, 2, 3},
	0x2C: {"BGE", ModeRelative, 2, 3},
	0x2D: {"BLT", ModeRelative, 2, 3},
	0x2E: {"BGT", ModeRelative, 2, 3},
	0x2F: {"BLE", ModeRelative, 2, 3},
	0x30: {"TSX", ModeInherent, 1, 1},
	0x31: {"INS", ModeInherent, 1, 1},
	0x32: {"PULA", ModeInherent, 1, 3},
	0x33: {"PULB", ModeInherent, 1, 3},
	0x34: {"DES", ModeInherent, 1, 1},
	0x35: {"TXS", ModeInherent, 1, 1},
	0x36: {"PSHA", ModeInherent, 1, 4},
	0x37: {"PSHB", ModeInherent, 1, 4},
	0x38: {"PULX", ModeInherent, 1, 4},
	0x39: {"RTS", ModeInherent, 1, 5},
	0x3A: {"ABX", ModeInherent, 1, 1},
	0x3B: {"RTI", ModeInherent, 1, 10},
	0x3C: {"PSHX", ModeInherent, 1, 5},
	0x3D: {"MUL", ModeInherent, 1, 7},
	0x3E: {"WAI", ModeInherent, 1, 9},
	0x3F: {"SWI", ModeInherent, 1, 12},
	0x40: {"NEGA", ModeInherent, 1, 1},
	0x43: {"COMA", ModeInherent, 1, 1},
	0x44: {"LSRA", ModeInherent, 1, 1},
	0x46: {"RORA", ModeInherent, 1, 1},
	0x47: {"ASRA", ModeInherent, 1, 1},
	0x48: {"ASLA", ModeInherent, 1, 1},
	0x49: {"ROLA", ModeInherent, 1, 1},
	0x4A: {"DECA", ModeInherent, 1, 1},
	0x4C: {"INCA", ModeInherent, 1, 1},
	0x4D: {"TSTA", ModeInherent, 1, 1},
	0x4F: {"CLRA", ModeInherent, 1, 1},
	0x50: {"NEGB", ModeInherent, 1, 1},
	0x53: {"COMB", ModeInherent, 1, 1},
	0x54: {"LSRB", ModeInherent, 1, 1},
	0x56: {"RORB", ModeInherent, 1, 1},
	0x57: {"ASRB", ModeInherent, 1, 1},
	0x58: {"ASLB", ModeInherent, 1, 1},
	0x59: {"ROLB", ModeInherent, 1, 1},
	0x5A: {"DECB", ModeInherent, 1, 1},
	0x5C: {"INCB", ModeInherent, 1, 1},
	0x5D: {"TSTB", ModeInherent, 1, 1},
	0x5F: {"CLRB", ModeInherent, 1, 1},
	0x60: {"NEG", ModeIndexed, 2, 6},
	0x61: {"AIM", ModeBitIndexed, 3, 7},
	0x62: {"OIM", ModeBitIndexed, 3, 7},
	0x63: {"COM", ModeIndexed, 2, 6},
	0x64: {"LSR", ModeIndexed, 2, 6},
	0x65: {"EIM", ModeBitIndexed, 3, 7},
	0x66: {"ROR", ModeIndexed, 2, 6},
	0x67: {"ASR", ModeIndexed, 2, 6},
	0x68: {"ASL", ModeIndexed, 2, 6},
	0x69: {"ROL", ModeIndexed, 2, 6},
	0x6A: {"DEC", ModeIndexed, 2, 6},
	0x6B: {"TIM", ModeBitIndexed, 3, 5},
	0x6C: {"INC", ModeIndexed, 2, 6},
	0x6D: {"TST", ModeIndexed, 2, 4},
	0x6E: {"JMP", ModeIndexed, 2, 3},
	0x6F: {"CLR", ModeIndexed, 2, 5},
	0x70: {"NEG", ModeExtended, 3, 6},
	0x71: {"AIM", ModeBitDirect, 3, 6},
	0x72: {"OIM", ModeBitDirect, 3, 6},
	0x73: {"COM", ModeExtended, 3, 6},
	0x74: {"LSR", ModeExtended, 3, 6},
	0x75: {"EIM", ModeBitDirect, 3, 6},
	0x76: {"ROR", ModeExtended, 3, 6},
	0x77: {"ASR", ModeExtended, 3, 6},
	0x78: {"ASL", ModeExtended, 3, 6},
	0x79: {"ROL", ModeExtended, 3, 6},
	0x7A: {"DEC", ModeExtended, 3, 6},
	0x7B: {"TIM", ModeBitDirect, 3, 4},
	0x7C: {"INC", ModeExtended, 3, 6},
	0x7D: {"TST", ModeExtended, 3, 4},
	0x7E: {"JMP", ModeExtended, 3, 3},
	0x7F: {"CLR", ModeExtended, 3, 5},
	0x80: {"SUBA", ModeImmediate, 2, 2},
	0x81: {"CMPA", ModeImmediate, 2, 2},
	0x82: {"SBCA", ModeImmediate, 2, 2},
	0x83: {"SUBD", ModeImmediate16, 3, 3},
	0x84: {"ANDA", ModeImmediate, 2, 2},
	0x85: {"BITA", ModeImmediate, 2, 2},
	0x86: {"LDAA", ModeImmediate, 2, 2},
	0x88: {"EORA", ModeImmediate, 2, 2},
	0x89: {"ADCA", ModeImmediate, 2, 2},
	0x8A: {"ORAA", ModeImmediate, 2, 2},
	0x8B: {"ADDA", ModeImmediate, 2, 2},
	0x8C: {"CPX", ModeImmediate16, 3, 3},
	0x8D: {"BSR", ModeRelative, 2, 5},
	0x8E: {"LDS", ModeImmediate16, 3, 3},
	0x90: {"SUBA", ModeDirect, 2, 3},
	0x91: {"CMPA", ModeDirect, 2, 3},
	0x92: {"SBCA", ModeDirect, 2, 3},
	0x93: {"SUBD", ModeDirect, 2, 4},
	0x94: {"ANDA", ModeDirect, 2, 3},
	0x95: {"BITA", ModeDirect, 2, 3},
	0x96: {"LDAA", ModeDirect, 2, 3},
	0x97: {"STAA", ModeDirect, 2, 3},
	0x98: {"EORA", ModeDirect, 2, 3},
	0x99: {"ADCA", ModeDirect, 2, 3},
	0x9A: {"ORAA", ModeDirect, 2, 3},
	0x9B: {"ADDA", ModeDirect, 2, 3},
	0x9C: {"CPX", ModeDirect, 2, 4},
	0x9D: {"JSR", ModeDirect, 2, 5},
	0x9E: {"LDS", ModeDirect, 2, 4},
	0x9F: {"STS", ModeDirect, 2, 4},
	0xA0: {"SUBA", ModeIndexed, 2, 4},
	0xA1: {"CMPA", ModeIndexed, 2, 4},
	0xA2: {"SBCA", ModeIndexed, 2, 4},
	0xA3: {"SUBD", ModeIndexed, 2, 5},
	0xA4: {"ANDA", ModeIndexed, 2, 4},
	0xA5: {"BITA", ModeIndexed, 2, 4},
	0xA6: {"LDAA", ModeIndexed, 2, 4},
	0xA7: {"STAA", ModeIndexed, 2, 4},
	0xA8: {"EORA", ModeIndexed, 2, 4},
	0xA9: {"ADCA", ModeIndexed, 2, 4},
	0xAA: {"ORAA", ModeIndexed, 2, 4},
	0xAB: {"ADDA", ModeIndexed, 2, 4},
	0xAC: {"CPX", ModeIndexed, 2, 5},
	0xAD: {"JSR", ModeIndexed, 2, 5},
	0xAE: {"LDS", ModeIndexed, 2, 5},
	0xAF: {"STS", ModeIndexed, 2, 5},
	0xB0: {"SUBA", ModeExtended, 3, 4},
	0xB1: {"CMPA", ModeExtended, 3, 4},
	0xB2: {"SBCA", ModeExtended, 3, 4},
	0xB3: {"SUBD", ModeExtended, 3, 5},
	0xB4: {"ANDA", ModeExtended, 3, 4},
	0xB5: {"BITA", ModeExtended, 3, 4},
	0xB6: {"LDAA", ModeExtended, 3, 4},
	0xB7: {"STAA", ModeExtended, 3, 4},
	0xB8: {"EORA", ModeExtended, 3, 4},
	0xB9: {"ADCA", ModeExtended, 3, 4},
	0xBA: {"ORAA", ModeExtended, 3, 4},
	0xBB: {"ADDA", ModeExtended, 3, 4},
	0xBC: {"CPX", ModeExtended, 3, 5},
	0xBD: {"JSR", ModeExtended, 3, 6},
	0xBE: {"LDS", ModeExtended, 3, 5},
	0xBF: {"STS", ModeExtended, 3, 5},
	0xC0: {"SUBB", ModeImmediate, 2, 2},
	0xC1: {"CMPB", ModeImmediate, 2, 2},
	0xC2: {"SBCB", ModeImmediate, 2, 2},
	0xC3: {"ADDD", ModeImmediate16, 3, 3},
	0xC4: {"ANDB", ModeImmediate, 2, 2},
	0xC5: {"BITB", ModeImmediate, 2, 2},
	0xC6: {"LDAB", ModeImmediate, 2, 2},
	0xC8: {"EORB", ModeImmediate, 2, 2},
	0xC9: {"ADCB", ModeImmediate, 2, 2},
	0xCA: {"ORAB", ModeImmediate, 2, 2},
	0xCB: {"ADDB", ModeImmediate, 2, 2},
	0xCC: {"LDD", ModeImmediate16, 3, 3},
	0xCE: {"LDX", ModeImmediate16, 3, 3},
	0xD0: {"SUBB", ModeDirect, 2, 3},
	0xD1: {"CMPB", ModeDirect, 2, 3},
	0xD2: {"SBCB", ModeDirect, 2, 3},
	0xD3: {"ADDD", ModeDirect, 2, 4},
	0xD4: {"ANDB", ModeDirect, 2, 3},
	0xD5: {"BITB", ModeDirect, 2, 3},
	0xD6: {"LDAB", ModeDirect, 2, 3},
	0xD7: {"STAB", ModeDirect, 2, 3},
	0xD8: {"EORB", ModeDirect, 2, 3},
	0xD9: {"ADCB", ModeDirect, 2, 3},
	0xDA: {"ORAB", ModeDirect, 2, 3},
	0xDB: {"ADDB", ModeDirect, 2, 3},
	0xDC: {"LDD", ModeDirect, 2, 4},
	0xDD: {"STD", ModeDirect, 2, 4},
	0xDE: {"LDX", ModeDirect, 2, 4},
	0xDF: {"STX", ModeDirect, 2, 4},
	0xE0: {"SUBB", ModeIndexed, 2, 4},
	0xE1: {"CMPB", ModeIndexed, 2, 4},
	0xE2: {"SBCB", ModeIndexed, 2, 4},
	0xE3: {"ADDD", ModeIndexed, 2, 5},
	0xE4: {"ANDB", ModeIndexed, 2, 4},
	0xE5: {"BITB", ModeIndexed, 2, 4},
	0xE6: {"LDAB", ModeIndexed, 2, 4},
	0xE7: {"STAB", ModeIndexed, 2, 4},
	0xE8: {"EORB", ModeIndexed, 2, 4},
	0xE9: {"ADCB", ModeIndexed, 2, 4},
	0xEA: {"ORAB", ModeIndexed, 2, 4},
	0xEB: {"ADDB", ModeIndexed, 2, 4},
	0xEC: {"LDD", ModeIndexed, 2, 5},
	0xED: {"STD", ModeIndexed, 2, 5},
	0xEE: {"LDX", ModeIndexed, 2, 5},
	0xEF: {"STX", ModeIndexed, 2, 5},
	0xF0: {"SUBB", ModeExtended, 3, 4},
	0xF1: {"CMPB", ModeExtended, 3, 4},
	0xF2: {"SBCB", ModeExtended, 3, 4},
	0xF3: {"ADDD", ModeExtended, 3, 5},
	0xF4: {"ANDB", ModeExtended, 3, 4},
	0xF5: {"BITB", ModeExtended, 3, 4},
	0xF6: {"LDAB", ModeExtended, 3, 4},
	0xF7: {"STAB", ModeExtended, 3, 4},
	0xF8: {"EORB", ModeExtended, 3, 4},
	0xF9: {"ADCB", ModeExtended, 3, 4},
	0xFA: {"ORAB", ModeExtended, 3, 4},
	0xFB: {"ADDB", ModeExtended, 3, 4},
	0xFC: {"LDD", ModeExtended, 3, 5},
	0xFD: {"STD", ModeExtended, 3, 5},
	0xFE: {"LDX", ModeExtended, 3, 5},
	0xFF: {"STX", ModeExtended, 3, 5},
}

// WordImmediate lists the mnemonics whose immediate operand is 16 bit.
var WordImmediate = map[string]bool{
	"LDX":  true,
	"LDD":  true,
	"LDS":  true,
	"CPX":  true,
	"ADDD": true,
	"SUBD": true,
}

// Branches maps every branch mnemonic to its opposite-polarity pair.
// BRA, BRN and BSR have no inverse; the long forms of BRA and BSR are
// JMP and JSR.
var Branches = map[string]string{
	"BRA": "",
	"BRN": "",
	"BSR": "",
	"BHI": "BLS",
	"BLS": "BHI",
	"BCC": "BCS",
	"BCS": "BCC",
	"BNE": "BEQ",
	"BEQ": "BNE",
	"BVC": "BVS",
	"BVS": "BVC",
	"BPL": "BMI",
	"BMI": "BPL",
	"BGE": "BLT",
	"BLT": "BGE",
	"BGT": "BLE",
	"BLE": "BGT",
}

// Unconditional control transfers; code after one of these is
// unreachable until the next label.
var Unconditional = map[string]bool{
	"BRA":  true,
	"JMP":  true,
	"RTS":  true,
	"RTI":  true,
	"TRAP": true,
}

// Lookup by mnemonic, built once from Table. Each name maps to the set
// of addressing modes it supports and their opcodes.
var byName map[string]map[int]byte

func init() {
	byName = make(map[string]map[int]byte)
	for op, inst := range Table {
		modes, ok := byName[inst.Name]
		if !ok {
			modes = make(map[int]byte)
			byName[inst.Name] = modes
		}
		modes[inst.Mode] = op
	}
}

// IsMnemonic reports whether name is a known instruction mnemonic.
func IsMnemonic(name string) bool {
	_, ok := byName[name]
	return ok
}

// Opcode returns the opcode byte for a mnemonic in a given addressing
// mode.
func Opcode(name string, mode int) (byte, bool) {
	modes, ok := byName[name]
	if !ok {
		return 0, false
	}
	op, ok := modes[mode]
	return op, ok
}

// Modes returns the set of addressing modes a mnemonic supports.
func Modes(name string) map[int]byte {
	return byName[name]
}

// IsBranch reports whether the mnemonic is a branch, conditional or
// not.
func IsBranch(name string) bool {
	_, ok := Branches[name]
	return ok
}

// Inverse returns the opposite-polarity branch for a conditional
// branch, or "" when none exists.
func Inverse(name string) string {
	return Branches[name]
}
