/*
   HD6303 instruction dispatch.

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

package cpu

// branch consumes the displacement byte and takes the branch when the
// condition holds.
func (cpu *CPU) branch(cond bool) {
	disp := cpu.fetchByte()
	if cond {
		cpu.PC += uint16(int16(int8(disp)))
	}
}

// dispatch executes one opcode and returns the cycles it consumed
// beyond the fetch cycle. Every opcode is handled explicitly; an
// undefined byte drives the switch-off latch, exactly as the real
// machine does.
func (cpu *CPU) dispatch(opcode uint8) int {
	switch opcode {

	// Control.
	case 0x00: // TRAP
		return cpu.interrupt(VecTrap)
	case 0x01: // NOP
		return 0
	case 0x04: // LSRD
		cpu.SetD(cpu.lsr16(cpu.D()))
		return 0
	case 0x05: // ASLD
		cpu.SetD(cpu.asl16(cpu.D()))
		return 0
	case 0x06: // TAP
		cpu.SetP(cpu.A)
		return 0
	case 0x07: // TPA
		cpu.A = cpu.P()
		return 0
	case 0x08: // INX
		cpu.X++
		cpu.setFlag(FlagZ, cpu.X == 0)
		return 0
	case 0x09: // DEX
		cpu.X--
		cpu.setFlag(FlagZ, cpu.X == 0)
		return 0
	case 0x0A: // CLV
		cpu.setFlag(FlagV, false)
		return 0
	case 0x0B: // SEV
		cpu.setFlag(FlagV, true)
		return 0
	case 0x0C: // CLC
		cpu.setFlag(FlagC, false)
		return 0
	case 0x0D: // SEC
		cpu.setFlag(FlagC, true)
		return 0
	case 0x0E: // CLI
		cpu.setFlag(FlagI, false)
		return 0
	case 0x0F: // SEI
		cpu.setFlag(FlagI, true)
		return 0

	// Register transfer.
	case 0x10: // SBA
		cpu.A = cpu.sub8(cpu.A, cpu.B)
		return 0
	case 0x11: // CBA
		cpu.sub8(cpu.A, cpu.B)
		return 0
	case 0x16: // TAB
		cpu.B = cpu.ld8(cpu.A)
		return 0
	case 0x17: // TBA
		cpu.A = cpu.ld8(cpu.B)
		return 0
	case 0x18: // XGDX
		tmp := cpu.X
		cpu.X = cpu.D()
		cpu.SetD(tmp)
		return 1
	case 0x19: // DAA
		cpu.daa()
		return 1
	case 0x1A: // SLP
		cpu.Sleep = true
		return 3
	case 0x1B: // ABA
		cpu.A = cpu.add8(cpu.A, cpu.B)
		return 0

	// Branches.
	case 0x20: // BRA
		cpu.branch(true)
		return 2
	case 0x21: // BRN
		cpu.branch(false)
		return 2
	case 0x22: // BHI
		cpu.branch(!cpu.Flag(FlagC) && !cpu.Flag(FlagZ))
		return 2
	case 0x23: // BLS
		cpu.branch(cpu.Flag(FlagC) || cpu.Flag(FlagZ))
		return 2
	case 0x24: // BCC
		cpu.branch(!cpu.Flag(FlagC))
		return 2
	case 0x25: // BCS
		cpu.branch(cpu.Flag(FlagC))
		return 2
	case 0x26: // BNE
		cpu.branch(!cpu.Flag(FlagZ))
		return 2
	case 0x27: // BEQ
		cpu.branch(cpu.Flag(FlagZ))
		return 2
	case 0x28: // BVC
		cpu.branch(!cpu.Flag(FlagV))
		return 2
	case 0x29: // BVS
		cpu.branch(cpu.Flag(FlagV))
		return 2
	case 0x2A: // BPL
		cpu.branch(!cpu.Flag(FlagN))
		return 2
	case 0x2B: // BMI
		cpu.branch(cpu.Flag(FlagN))
		return 2
	case 0x2C: // BGE
		cpu.branch(cpu.Flag(FlagN) == cpu.Flag(FlagV))
		return 2
	case 0x2D: // BLT
		cpu.branch(cpu.Flag(FlagN) != cpu.Flag(FlagV))
		return 2
	case 0x2E: // BGT
		cpu.branch(cpu.Flag(FlagN) == cpu.Flag(FlagV) && !cpu.Flag(FlagZ))
		return 2
	case 0x2F: // BLE
		cpu.branch(cpu.Flag(FlagN) != cpu.Flag(FlagV) || cpu.Flag(FlagZ))
		return 2

	// Stack and index.
	case 0x30: // TSX: X = SP, no 6800 off-by-one
		cpu.X = cpu.SP
		return 0
	case 0x31: // INS
		cpu.SP++
		return 0
	case 0x32: // PULA
		cpu.A = cpu.popByte()
		return 2
	case 0x33: // PULB
		cpu.B = cpu.popByte()
		return 2
	case 0x34: // DES
		cpu.SP--
		return 0
	case 0x35: // TXS
		cpu.SP = cpu.X
		return 0
	case 0x36: // PSHA
		cpu.pushByte(cpu.A)
		return 3
	case 0x37: // PSHB
		cpu.pushByte(cpu.B)
		return 3
	case 0x38: // PULX
		cpu.X = cpu.popWord()
		return 3
	case 0x39: // RTS
		cpu.PC = cpu.popWord()
		return 4
	case 0x3A: // ABX
		cpu.X += uint16(cpu.B)
		return 0
	case 0x3B: // RTI
		cpu.SetP(cpu.popByte())
		cpu.B = cpu.popByte()
		cpu.A = cpu.popByte()
		cpu.X = cpu.popWord()
		cpu.PC = cpu.popWord()
		return 9
	case 0x3C: // PSHX
		cpu.pushWord(cpu.X)
		return 4
	case 0x3D: // MUL
		cpu.SetD(uint16(cpu.A) * uint16(cpu.B))
		cpu.setFlag(FlagC, cpu.B&0x80 != 0)
		return 6
	case 0x3E: // WAI
		return 8
	case 0x3F: // SWI
		return cpu.interrupt(VecSWI)

	// Accumulator A inherent.
	case 0x40: // NEGA
		cpu.A = cpu.neg8(cpu.A)
		return 0
	case 0x43: // COMA
		cpu.A = cpu.com8(cpu.A)
		return 0
	case 0x44: // LSRA
		cpu.A = cpu.lsr8(cpu.A)
		return 0
	case 0x46: // RORA
		cpu.A = cpu.ror8(cpu.A)
		return 0
	case 0x47: // ASRA
		cpu.A = cpu.asr8(cpu.A)
		return 0
	case 0x48: // ASLA
		cpu.A = cpu.asl8(cpu.A)
		return 0
	case 0x49: // ROLA
		cpu.A = cpu.rol8(cpu.A)
		return 0
	case 0x4A: // DECA
		cpu.A = cpu.dec8(cpu.A)
		return 0
	case 0x4C: // INCA
		cpu.A = cpu.inc8(cpu.A)
		return 0
	case 0x4D: // TSTA
		cpu.tst8(cpu.A)
		return 0
	case 0x4F: // CLRA
		cpu.A = cpu.clr8()
		return 0

	// Accumulator B inherent.
	case 0x50: // NEGB
		cpu.B = cpu.neg8(cpu.B)
		return 0
	case 0x53: // COMB
		cpu.B = cpu.com8(cpu.B)
		return 0
	case 0x54: // LSRB
		cpu.B = cpu.lsr8(cpu.B)
		return 0
	case 0x56: // RORB
		cpu.B = cpu.ror8(cpu.B)
		return 0
	case 0x57: // ASRB
		cpu.B = cpu.asr8(cpu.B)
		return 0
	case 0x58: // ASLB
		cpu.B = cpu.asl8(cpu.B)
		return 0
	case 0x59: // ROLB
		cpu.B = cpu.rol8(cpu.B)
		return 0
	case 0x5A: // DECB
		cpu.B = cpu.dec8(cpu.B)
		return 0
	case 0x5C: // INCB
		cpu.B = cpu.inc8(cpu.B)
		return 0
	case 0x5D: // TSTB
		cpu.tst8(cpu.B)
		return 0
	case 0x5F: // CLRB
		cpu.B = cpu.clr8()
		return 0

	// Indexed read-modify-write.
	case 0x60: // NEG d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.neg8(cpu.readByte(addr)))
		return 5
	case 0x61: // AIM #,d,X
		imm := cpu.fetchByte()
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.and8(imm, cpu.readByte(addr)))
		return 6
	case 0x62: // OIM #,d,X
		imm := cpu.fetchByte()
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.or8(imm, cpu.readByte(addr)))
		return 6
	case 0x63: // COM d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.com8(cpu.readByte(addr)))
		return 5
	case 0x64: // LSR d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.lsr8(cpu.readByte(addr)))
		return 5
	case 0x65: // EIM #,d,X
		imm := cpu.fetchByte()
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.eor8(imm, cpu.readByte(addr)))
		return 6
	case 0x66: // ROR d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.ror8(cpu.readByte(addr)))
		return 5
	case 0x67: // ASR d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.asr8(cpu.readByte(addr)))
		return 5
	case 0x68: // ASL d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.asl8(cpu.readByte(addr)))
		return 5
	case 0x69: // ROL d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.rol8(cpu.readByte(addr)))
		return 5
	case 0x6A: // DEC d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.dec8(cpu.readByte(addr)))
		return 5
	case 0x6B: // TIM #,d,X: flags only, no writeback
		imm := cpu.fetchByte()
		addr := cpu.indexed()
		cpu.and8(imm, cpu.readByte(addr))
		return 4
	case 0x6C: // INC d,X
		addr := cpu.indexed()
		cpu.writeByte(addr, cpu.inc8(cpu.readByte(addr)))
		return 5
	case 0x6D: // TST d,X
		cpu.tst8(cpu.readByte(cpu.indexed()))
		return 3
	case 0x6E: // JMP d,X
		cpu.PC = cpu.indexed()
		return 2
	case 0x6F: // CLR d,X
		cpu.writeByte(cpu.indexed(), cpu.clr8())
		return 4

	// Extended read-modify-write; the bit-manipulate forms use the
	// direct page.
	case 0x70: // NEG mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.neg8(cpu.readByte(addr)))
		return 5
	case 0x71: // AIM #,0m
		imm := cpu.fetchByte()
		addr := uint16(cpu.fetchByte())
		cpu.writeByte(addr, cpu.and8(imm, cpu.readByte(addr)))
		return 5
	case 0x72: // OIM #,0m
		imm := cpu.fetchByte()
		addr := uint16(cpu.fetchByte())
		cpu.writeByte(addr, cpu.or8(imm, cpu.readByte(addr)))
		return 5
	case 0x73: // COM mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.com8(cpu.readByte(addr)))
		return 5
	case 0x74: // LSR mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.lsr8(cpu.readByte(addr)))
		return 5
	case 0x75: // EIM #,0m
		imm := cpu.fetchByte()
		addr := uint16(cpu.fetchByte())
		cpu.writeByte(addr, cpu.eor8(imm, cpu.readByte(addr)))
		return 5
	case 0x76: // ROR mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.ror8(cpu.readByte(addr)))
		return 5
	case 0x77: // ASR mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.asr8(cpu.readByte(addr)))
		return 5
	case 0x78: // ASL mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.asl8(cpu.readByte(addr)))
		return 5
	case 0x79: // ROL mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.rol8(cpu.readByte(addr)))
		return 5
	case 0x7A: // DEC mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.dec8(cpu.readByte(addr)))
		return 5
	case 0x7B: // TIM #,0m
		imm := cpu.fetchByte()
		addr := uint16(cpu.fetchByte())
		cpu.and8(imm, cpu.readByte(addr))
		return 3
	case 0x7C: // INC mm
		addr := cpu.fetchWord()
		cpu.writeByte(addr, cpu.inc8(cpu.readByte(addr)))
		return 5
	case 0x7D: // TST mm
		cpu.tst8(cpu.readByte(cpu.fetchWord()))
		return 3
	case 0x7E: // JMP mm
		cpu.PC = cpu.fetchWord()
		return 2
	case 0x7F: // CLR mm
		cpu.writeByte(cpu.fetchWord(), cpu.clr8())
		return 4

	// Accumulator A, immediate.
	case 0x80: // SUBA #
		cpu.A = cpu.sub8(cpu.A, cpu.fetchByte())
		return 1
	case 0x81: // CMPA #
		cpu.sub8(cpu.A, cpu.fetchByte())
		return 1
	case 0x82: // SBCA #
		cpu.A = cpu.sbc8(cpu.A, cpu.fetchByte())
		return 1
	case 0x83: // SUBD ##
		cpu.SetD(cpu.sub16(cpu.D(), cpu.fetchWord()))
		return 2
	case 0x84: // ANDA #
		cpu.A = cpu.and8(cpu.A, cpu.fetchByte())
		return 1
	case 0x85: // BITA #
		cpu.and8(cpu.A, cpu.fetchByte())
		return 1
	case 0x86: // LDAA #
		cpu.A = cpu.ld8(cpu.fetchByte())
		return 1
	case 0x88: // EORA #
		cpu.A = cpu.eor8(cpu.A, cpu.fetchByte())
		return 1
	case 0x89: // ADCA #
		cpu.A = cpu.adc8(cpu.A, cpu.fetchByte())
		return 1
	case 0x8A: // ORAA #
		cpu.A = cpu.or8(cpu.A, cpu.fetchByte())
		return 1
	case 0x8B: // ADDA #
		cpu.A = cpu.add8(cpu.A, cpu.fetchByte())
		return 1
	case 0x8C: // CPX ##
		cpu.sub16(cpu.X, cpu.fetchWord())
		return 2
	case 0x8D: // BSR d
		disp := cpu.fetchByte()
		cpu.pushWord(cpu.PC)
		cpu.PC += uint16(int16(int8(disp)))
		return 4
	case 0x8E: // LDS ##
		cpu.SP = cpu.ld16(cpu.fetchWord())
		return 2

	// Accumulator A, direct page.
	case 0x90: // SUBA 0m
		cpu.A = cpu.sub8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x91: // CMPA 0m
		cpu.sub8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x92: // SBCA 0m
		cpu.A = cpu.sbc8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x93: // SUBD 0m
		cpu.SetD(cpu.sub16(cpu.D(), cpu.readWord(uint16(cpu.fetchByte()))))
		return 3
	case 0x94: // ANDA 0m
		cpu.A = cpu.and8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x95: // BITA 0m
		cpu.and8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x96: // LDAA 0m
		cpu.A = cpu.ld8(cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x97: // STAA 0m
		cpu.writeByte(uint16(cpu.fetchByte()), cpu.ld8(cpu.A))
		return 2
	case 0x98: // EORA 0m
		cpu.A = cpu.eor8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x99: // ADCA 0m
		cpu.A = cpu.adc8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x9A: // ORAA 0m
		cpu.A = cpu.or8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x9B: // ADDA 0m
		cpu.A = cpu.add8(cpu.A, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0x9C: // CPX 0m
		cpu.sub16(cpu.X, cpu.readWord(uint16(cpu.fetchByte())))
		return 3
	case 0x9D: // JSR 0m
		addr := uint16(cpu.fetchByte())
		cpu.pushWord(cpu.PC)
		cpu.PC = addr
		return 4
	case 0x9E: // LDS 0m
		cpu.SP = cpu.ld16(cpu.readWord(uint16(cpu.fetchByte())))
		return 3
	case 0x9F: // STS 0m
		cpu.writeWord(uint16(cpu.fetchByte()), cpu.ld16(cpu.SP))
		return 3

	// Accumulator A, indexed.
	case 0xA0: // SUBA d,X
		cpu.A = cpu.sub8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xA1: // CMPA d,X
		cpu.sub8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xA2: // SBCA d,X
		cpu.A = cpu.sbc8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xA3: // SUBD d,X
		cpu.SetD(cpu.sub16(cpu.D(), cpu.readWord(cpu.indexed())))
		return 4
	case 0xA4: // ANDA d,X
		cpu.A = cpu.and8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xA5: // BITA d,X
		cpu.and8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xA6: // LDAA d,X
		cpu.A = cpu.ld8(cpu.readByte(cpu.indexed()))
		return 3
	case 0xA7: // STAA d,X
		cpu.writeByte(cpu.indexed(), cpu.ld8(cpu.A))
		return 3
	case 0xA8: // EORA d,X
		cpu.A = cpu.eor8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xA9: // ADCA d,X
		cpu.A = cpu.adc8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xAA: // ORAA d,X
		cpu.A = cpu.or8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xAB: // ADDA d,X
		cpu.A = cpu.add8(cpu.A, cpu.readByte(cpu.indexed()))
		return 3
	case 0xAC: // CPX d,X
		cpu.sub16(cpu.X, cpu.readWord(cpu.indexed()))
		return 4
	case 0xAD: // JSR d,X
		addr := cpu.indexed()
		cpu.pushWord(cpu.PC)
		cpu.PC = addr
		return 4
	case 0xAE: // LDS d,X
		cpu.SP = cpu.ld16(cpu.readWord(cpu.indexed()))
		return 4
	case 0xAF: // STS d,X
		cpu.writeWord(cpu.indexed(), cpu.ld16(cpu.SP))
		return 4

	// Accumulator A, extended.
	case 0xB0: // SUBA mm
		cpu.A = cpu.sub8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xB1: // CMPA mm
		cpu.sub8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xB2: // SBCA mm
		cpu.A = cpu.sbc8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xB3: // SUBD mm
		cpu.SetD(cpu.sub16(cpu.D(), cpu.readWord(cpu.fetchWord())))
		return 4
	case 0xB4: // ANDA mm
		cpu.A = cpu.and8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xB5: // BITA mm
		cpu.and8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xB6: // LDAA mm
		cpu.A = cpu.ld8(cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xB7: // STAA mm
		cpu.writeByte(cpu.fetchWord(), cpu.ld8(cpu.A))
		return 3
	case 0xB8: // EORA mm
		cpu.A = cpu.eor8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xB9: // ADCA mm
		cpu.A = cpu.adc8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xBA: // ORAA mm
		cpu.A = cpu.or8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xBB: // ADDA mm
		cpu.A = cpu.add8(cpu.A, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xBC: // CPX mm
		cpu.sub16(cpu.X, cpu.readWord(cpu.fetchWord()))
		return 4
	case 0xBD: // JSR mm
		addr := cpu.fetchWord()
		cpu.pushWord(cpu.PC)
		cpu.PC = addr
		return 5
	case 0xBE: // LDS mm
		cpu.SP = cpu.ld16(cpu.readWord(cpu.fetchWord()))
		return 4
	case 0xBF: // STS mm
		cpu.writeWord(cpu.fetchWord(), cpu.ld16(cpu.SP))
		return 4

	// Accumulator B, immediate.
	case 0xC0: // SUBB #
		cpu.B = cpu.sub8(cpu.B, cpu.fetchByte())
		return 1
	case 0xC1: // CMPB #
		cpu.sub8(cpu.B, cpu.fetchByte())
		return 1
	case 0xC2: // SBCB #
		cpu.B = cpu.sbc8(cpu.B, cpu.fetchByte())
		return 1
	case 0xC3: // ADDD ##
		cpu.SetD(cpu.add16(cpu.D(), cpu.fetchWord()))
		return 2
	case 0xC4: // ANDB #
		cpu.B = cpu.and8(cpu.B, cpu.fetchByte())
		return 1
	case 0xC5: // BITB #
		cpu.and8(cpu.B, cpu.fetchByte())
		return 1
	case 0xC6: // LDAB #
		cpu.B = cpu.ld8(cpu.fetchByte())
		return 1
	case 0xC8: // EORB #
		cpu.B = cpu.eor8(cpu.B, cpu.fetchByte())
		return 1
	case 0xC9: // ADCB #
		cpu.B = cpu.adc8(cpu.B, cpu.fetchByte())
		return 1
	case 0xCA: // ORAB #
		cpu.B = cpu.or8(cpu.B, cpu.fetchByte())
		return 1
	case 0xCB: // ADDB #
		cpu.B = cpu.add8(cpu.B, cpu.fetchByte())
		return 1
	case 0xCC: // LDD ##
		cpu.SetD(cpu.ld16(cpu.fetchWord()))
		return 2
	case 0xCE: // LDX ##
		cpu.X = cpu.ld16(cpu.fetchWord())
		return 2

	// Accumulator B, direct page.
	case 0xD0: // SUBB 0m
		cpu.B = cpu.sub8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xD1: // CMPB 0m
		cpu.sub8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xD2: // SBCB 0m
		cpu.B = cpu.sbc8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xD3: // ADDD 0m
		cpu.SetD(cpu.add16(cpu.D(), cpu.readWord(uint16(cpu.fetchByte()))))
		return 3
	case 0xD4: // ANDB 0m
		cpu.B = cpu.and8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xD5: // BITB 0m
		cpu.and8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xD6: // LDAB 0m
		cpu.B = cpu.ld8(cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xD7: // STAB 0m
		cpu.writeByte(uint16(cpu.fetchByte()), cpu.ld8(cpu.B))
		return 2
	case 0xD8: // EORB 0m
		cpu.B = cpu.eor8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xD9: // ADCB 0m
		cpu.B = cpu.adc8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xDA: // ORAB 0m
		cpu.B = cpu.or8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xDB: // ADDB 0m
		cpu.B = cpu.add8(cpu.B, cpu.readByte(uint16(cpu.fetchByte())))
		return 2
	case 0xDC: // LDD 0m
		cpu.SetD(cpu.ld16(cpu.readWord(uint16(cpu.fetchByte()))))
		return 3
	case 0xDD: // STD 0m
		cpu.writeWord(uint16(cpu.fetchByte()), cpu.ld16(cpu.D()))
		return 3
	case 0xDE: // LDX 0m
		cpu.X = cpu.ld16(cpu.readWord(uint16(cpu.fetchByte())))
		return 3
	case 0xDF: // STX 0m
		cpu.writeWord(uint16(cpu.fetchByte()), cpu.ld16(cpu.X))
		return 3

	// Accumulator B, indexed.
	case 0xE0: // SUBB d,X
		cpu.B = cpu.sub8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xE1: // CMPB d,X
		cpu.sub8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xE2: // SBCB d,X
		cpu.B = cpu.sbc8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xE3: // ADDD d,X
		cpu.SetD(cpu.add16(cpu.D(), cpu.readWord(cpu.indexed())))
		return 4
	case 0xE4: // ANDB d,X
		cpu.B = cpu.and8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xE5: // BITB d,X
		cpu.and8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xE6: // LDAB d,X
		cpu.B = cpu.ld8(cpu.readByte(cpu.indexed()))
		return 3
	case 0xE7: // STAB d,X
		cpu.writeByte(cpu.indexed(), cpu.ld8(cpu.B))
		return 3
	case 0xE8: // EORB d,X
		cpu.B = cpu.eor8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xE9: // ADCB d,X
		cpu.B = cpu.adc8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xEA: // ORAB d,X
		cpu.B = cpu.or8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xEB: // ADDB d,X
		cpu.B = cpu.add8(cpu.B, cpu.readByte(cpu.indexed()))
		return 3
	case 0xEC: // LDD d,X
		cpu.SetD(cpu.ld16(cpu.readWord(cpu.indexed())))
		return 4
	case 0xED: // STD d,X
		cpu.writeWord(cpu.indexed(), cpu.ld16(cpu.D()))
		return 4
	case 0xEE: // LDX d,X
		cpu.X = cpu.ld16(cpu.readWord(cpu.indexed()))
		return 4
	case 0xEF: // STX d,X
		cpu.writeWord(cpu.indexed(), cpu.ld16(cpu.X))
		return 4

	// Accumulator B, extended.
	case 0xF0: // SUBB mm
		cpu.B = cpu.sub8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xF1: // CMPB mm
		cpu.sub8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xF2: // SBCB mm
		cpu.B = cpu.sbc8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xF3: // ADDD mm
		cpu.SetD(cpu.add16(cpu.D(), cpu.readWord(cpu.fetchWord())))
		return 4
	case 0xF4: // ANDB mm
		cpu.B = cpu.and8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xF5: // BITB mm
		cpu.and8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xF6: // LDAB mm
		cpu.B = cpu.ld8(cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xF7: // STAB mm
		cpu.writeByte(cpu.fetchWord(), cpu.ld8(cpu.B))
		return 3
	case 0xF8: // EORB mm
		cpu.B = cpu.eor8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xF9: // ADCB mm
		cpu.B = cpu.adc8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xFA: // ORAB mm
		cpu.B = cpu.or8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xFB: // ADDB mm
		cpu.B = cpu.add8(cpu.B, cpu.readByte(cpu.fetchWord()))
		return 3
	case 0xFC: // LDD mm
		cpu.SetD(cpu.ld16(cpu.readWord(cpu.fetchWord())))
		return 4
	case 0xFD: // STD mm
		cpu.writeWord(cpu.fetchWord(), cpu.ld16(cpu.D()))
		return 4
	case 0xFE: // LDX mm
		cpu.X = cpu.ld16(cpu.readWord(cpu.fetchWord()))
		return 4
	case 0xFF: // STX mm
		cpu.writeWord(cpu.fetchWord(), cpu.ld16(cpu.X))
		return 4

	default:
		// Undefined opcode: the machine powers itself down.
		cpu.bus.Write(switchOffAddr, 0)
		return 0
	}
}
