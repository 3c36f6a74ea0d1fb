/*
   HD6303 ALU primitives.

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

// Each helper is implemented once and reused by every opcode variant
// and addressing mode; flags come from these and nowhere else.

// ld8 sets N and Z from an 8 bit value and clears V.
func (cpu *CPU) ld8(value uint8) uint8 {
	cpu.setFlag(FlagN, value&0x80 != 0)
	cpu.setFlag(FlagZ, value == 0)
	cpu.setFlag(FlagV, false)
	return value
}

// ld16 sets N and Z from a 16 bit value and clears V.
func (cpu *CPU) ld16(value uint16) uint16 {
	cpu.setFlag(FlagN, value&0x8000 != 0)
	cpu.setFlag(FlagZ, value == 0)
	cpu.setFlag(FlagV, false)
	return value
}

// add8 adds with H, N, Z, V, C.
func (cpu *CPU) add8(a, b uint8) uint8 {
	result := uint16(a) + uint16(b)
	cpu.setFlag(FlagH, (a&0x0F)+(b&0x0F) >= 0x10)
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result&0xFF == 0)
	cpu.setFlag(FlagC, result&0x100 != 0)
	cpu.setFlag(FlagV, ^(a^b)&(a^uint8(result))&0x80 != 0)
	return uint8(result)
}

// adc8 adds with the carry in.
func (cpu *CPU) adc8(a, b uint8) uint8 {
	carry := uint16(0)
	if cpu.Flag(FlagC) {
		carry = 1
	}
	result := uint16(a) + uint16(b) + carry
	cpu.setFlag(FlagH, uint16(a&0x0F)+uint16(b&0x0F)+carry >= 0x10)
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result&0xFF == 0)
	cpu.setFlag(FlagC, result&0x100 != 0)
	cpu.setFlag(FlagV, ^(a^b)&(a^uint8(result))&0x80 != 0)
	return uint8(result)
}

// sub8 subtracts with N, Z, V, C; H is untouched.
func (cpu *CPU) sub8(a, b uint8) uint8 {
	result := uint16(a) - uint16(b)
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result&0xFF == 0)
	cpu.setFlag(FlagC, result&0x100 != 0)
	cpu.setFlag(FlagV, (a^b)&(a^uint8(result))&0x80 != 0)
	return uint8(result)
}

// sbc8 subtracts with the borrow in.
func (cpu *CPU) sbc8(a, b uint8) uint8 {
	borrow := uint16(0)
	if cpu.Flag(FlagC) {
		borrow = 1
	}
	sub := uint16(b) + borrow
	result := uint16(a) - sub
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result&0xFF == 0)
	cpu.setFlag(FlagC, result&0x100 != 0)
	cpu.setFlag(FlagV, (uint16(a)^sub)&(uint16(a)^result)&0x80 != 0)
	return uint8(result)
}

// add16 adds words with N, Z, V, C.
func (cpu *CPU) add16(a, b uint16) uint16 {
	result := uint32(a) + uint32(b)
	cpu.setFlag(FlagN, result&0x8000 != 0)
	cpu.setFlag(FlagZ, result&0xFFFF == 0)
	cpu.setFlag(FlagC, result&0x10000 != 0)
	cpu.setFlag(FlagV, ^(a^b)&(a^uint16(result))&0x8000 != 0)
	return uint16(result)
}

// sub16 subtracts words with N, Z, V, C.
func (cpu *CPU) sub16(a, b uint16) uint16 {
	result := uint32(a) - uint32(b)
	cpu.setFlag(FlagN, result&0x8000 != 0)
	cpu.setFlag(FlagZ, result&0xFFFF == 0)
	cpu.setFlag(FlagC, result&0x10000 != 0)
	cpu.setFlag(FlagV, (a^b)&(a^uint16(result))&0x8000 != 0)
	return uint16(result)
}

// neg8 two's complements a byte.
func (cpu *CPU) neg8(value uint8) uint8 {
	result := uint8(-int8(value))
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result == 0)
	cpu.setFlag(FlagC, result != 0)
	cpu.setFlag(FlagV, result == 0x80)
	return result
}

// com8 ones complements a byte; C is always set.
func (cpu *CPU) com8(value uint8) uint8 {
	result := value ^ 0xFF
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result == 0)
	cpu.setFlag(FlagV, false)
	cpu.setFlag(FlagC, true)
	return result
}

// lsr8 shifts right logically; N clears, V tracks C.
func (cpu *CPU) lsr8(value uint8) uint8 {
	carry := value&0x01 != 0
	result := value >> 1
	cpu.setFlag(FlagC, carry)
	cpu.setFlag(FlagV, carry)
	cpu.setFlag(FlagN, false)
	cpu.setFlag(FlagZ, result == 0)
	return result
}

// lsr16 is the LSRD form of the same shift.
func (cpu *CPU) lsr16(value uint16) uint16 {
	carry := value&0x0001 != 0
	result := value >> 1
	cpu.setFlag(FlagC, carry)
	cpu.setFlag(FlagV, carry)
	cpu.setFlag(FlagN, false)
	cpu.setFlag(FlagZ, result == 0)
	return result
}

// ror8 rotates right through carry.
func (cpu *CPU) ror8(value uint8) uint8 {
	carry := value&0x01 != 0
	negative := cpu.Flag(FlagC)
	result := value >> 1
	if negative {
		result |= 0x80
	}
	cpu.setFlag(FlagC, carry)
	cpu.setFlag(FlagN, negative)
	cpu.setFlag(FlagZ, result == 0)
	cpu.setFlag(FlagV, negative != carry)
	return result
}

// asr8 shifts right preserving the sign bit.
func (cpu *CPU) asr8(value uint8) uint8 {
	carry := value&0x01 != 0
	msb := value & 0x80
	negative := msb != 0
	result := value>>1 + msb
	cpu.setFlag(FlagC, carry)
	cpu.setFlag(FlagN, negative)
	cpu.setFlag(FlagZ, result == 0)
	cpu.setFlag(FlagV, negative != carry)
	return result
}

// asl8 shifts left; V is N xor C after the shift.
func (cpu *CPU) asl8(value uint8) uint8 {
	carry := value&0x80 != 0
	result := value << 1
	negative := result&0x80 != 0
	cpu.setFlag(FlagN, negative)
	cpu.setFlag(FlagZ, result == 0)
	cpu.setFlag(FlagC, carry)
	cpu.setFlag(FlagV, negative != carry)
	return result
}

// asl16 is the ASLD form.
func (cpu *CPU) asl16(value uint16) uint16 {
	carry := value&0x8000 != 0
	result := value << 1
	negative := result&0x8000 != 0
	cpu.setFlag(FlagN, negative)
	cpu.setFlag(FlagZ, result == 0)
	cpu.setFlag(FlagC, carry)
	cpu.setFlag(FlagV, negative != carry)
	return result
}

// rol8 rotates left through carry.
func (cpu *CPU) rol8(value uint8) uint8 {
	carry := value&0x80 != 0
	result := value << 1
	negative := result&0x80 != 0
	if cpu.Flag(FlagC) {
		result++
	}
	cpu.setFlag(FlagC, carry)
	cpu.setFlag(FlagN, negative)
	cpu.setFlag(FlagZ, result == 0)
	cpu.setFlag(FlagV, negative != carry)
	return result
}

// dec8 decrements without touching C.
func (cpu *CPU) dec8(value uint8) uint8 {
	cpu.setFlag(FlagV, value == 0x80)
	result := value - 1
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result == 0)
	return result
}

// inc8 increments without touching C.
func (cpu *CPU) inc8(value uint8) uint8 {
	result := value + 1
	cpu.setFlag(FlagV, result == 0x80)
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result == 0)
	return result
}

// tst8 tests a byte: N and Z from the value, V and C cleared.
func (cpu *CPU) tst8(value uint8) {
	cpu.setFlag(FlagV, false)
	cpu.setFlag(FlagC, false)
	cpu.setFlag(FlagN, value&0x80 != 0)
	cpu.setFlag(FlagZ, value == 0)
}

// clr8 yields zero with N, V, C clear and Z set.
func (cpu *CPU) clr8() uint8 {
	cpu.setFlag(FlagV, false)
	cpu.setFlag(FlagC, false)
	cpu.setFlag(FlagN, false)
	cpu.setFlag(FlagZ, true)
	return 0
}

// and8, or8 and eor8 set N and Z and clear V.
func (cpu *CPU) and8(a, b uint8) uint8 {
	result := a & b
	cpu.setFlag(FlagV, false)
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result == 0)
	return result
}

func (cpu *CPU) or8(a, b uint8) uint8 {
	result := a | b
	cpu.setFlag(FlagV, false)
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result == 0)
	return result
}

func (cpu *CPU) eor8(a, b uint8) uint8 {
	result := a ^ b
	cpu.setFlag(FlagV, false)
	cpu.setFlag(FlagN, result&0x80 != 0)
	cpu.setFlag(FlagZ, result == 0)
	return result
}

// daa decimal-adjusts A after a BCD addition. It may set C but never
// clears a carry that is already set.
func (cpu *CPU) daa() {
	adjusted := uint16(cpu.A)
	if cpu.Flag(FlagH) {
		adjusted += 0x06
	}
	if adjusted&0x0F > 0x09 {
		adjusted += 0x06
	}
	if cpu.Flag(FlagC) {
		adjusted += 0x60
	}
	if adjusted > 0x9F {
		adjusted += 0x60
	}
	if adjusted > 0x99 {
		cpu.setFlag(FlagC, true)
	}
	cpu.setFlag(FlagN, adjusted&0x80 != 0)
	cpu.setFlag(FlagZ, adjusted&0xFF == 0)
	cpu.setFlag(FlagV, (uint16(cpu.A)^adjusted)&0x80 != 0)
	cpu.A = uint8(adjusted)
}
