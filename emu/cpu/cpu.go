/*
   HD6303 CPU core.

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

import "fmt"

/*
   The HD6303 is a Hitachi derivative of the Motorola 6801/6803,
   clocked near 921.6 kHz in the Organiser II.

   Registers:  A, B (8 bit, paired as D with A high), X (index),
   SP (stack), PC.  Flags: H I N Z V C; bits 6 and 7 of the processor
   status byte always read as 1.

   Differences from the plain 6800 that matter here: TSX copies SP to
   X without the off-by-one, and the extra instructions XGDX, SLP and
   the bit-manipulate group AIM/OIM/EIM/TIM.

   The stack grows downward. Pushes pre-decrement, pops post-increment
   and words push high byte first, so the low byte lands at the lower
   address.

   Interrupt vectors:
       $FFEE  TRAP    $FFF4  OCI
       $FFFA  SWI     $FFFC  NMI    $FFFE  reset
*/

// Flag bits of the condition code register.
const (
	FlagC = 0x01 // carry / borrow
	FlagV = 0x02 // overflow
	FlagZ = 0x04 // zero
	FlagN = 0x08 // negative
	FlagI = 0x10 // interrupt mask
	FlagH = 0x20 // half carry
)

// Interrupt vectors.
const (
	VecTrap  = 0xFFEE
	VecOCI   = 0xFFF4
	VecSWI   = 0xFFFA
	VecNMI   = 0xFFFC
	VecReset = 0xFFFE
)

// switchOffAddr is the semi-custom power-down latch; undefined
// opcodes write here, as the real machine does.
const switchOffAddr = 0x01C0

// Bus is the CPU's window on the rest of the machine.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	IsNMIDue() bool
	IsOCIDue() bool
	IncFrame(ticks int)
	IsSwitchedOff() bool
}

// StackError is fatal: the stack pointer wandered out of the valid
// window.
type StackError struct {
	SP uint16
	PC uint16
}

func (err *StackError) Error() string {
	return fmt.Sprintf("stack error: SP=$%04X at PC=$%04X", err.SP, err.PC)
}

// CPU holds the register file and the instrumentation hooks.
type CPU struct {
	bus Bus

	A     uint8
	B     uint8
	X     uint16
	SP    uint16
	PC    uint16
	flags uint8
	Sleep bool

	// Hooks may stop execution by returning false. The instruction
	// hook is not run in single-step mode.
	OnInstruction func(pc uint16, opcode uint8) bool
	OnMemoryRead  func(addr uint16, value uint8) bool
	OnMemoryWrite func(addr uint16, value uint8) bool

	memBreak bool
}

// New builds a CPU on a bus.
func New(bus Bus) *CPU {
	return &CPU{bus: bus, flags: 0x3F}
}

// D returns the A:B pair.
func (cpu *CPU) D() uint16 {
	return uint16(cpu.A)<<8 | uint16(cpu.B)
}

// SetD stores a word into the A:B pair.
func (cpu *CPU) SetD(value uint16) {
	cpu.A = uint8(value >> 8)
	cpu.B = uint8(value)
}

// P returns the processor status byte; bits 6 and 7 read as 1.
func (cpu *CPU) P() uint8 {
	return cpu.flags | 0xC0
}

// SetP stores the processor status byte.
func (cpu *CPU) SetP(value uint8) {
	cpu.flags = value & 0x3F
}

// Flag reports a single flag bit.
func (cpu *CPU) Flag(bit uint8) bool {
	return cpu.flags&bit != 0
}

// SetFlag forces a single flag bit; used by debugger surfaces.
func (cpu *CPU) SetFlag(bit uint8, value bool) {
	cpu.setFlag(bit, value)
}

func (cpu *CPU) setFlag(bit uint8, value bool) {
	if value {
		cpu.flags |= bit
	} else {
		cpu.flags &^= bit
	}
}

// Reset loads PC from the reset vector and sets every visible flag.
func (cpu *CPU) Reset() {
	cpu.PC = cpu.readWord(VecReset)
	cpu.SP = 0
	cpu.A = 0
	cpu.B = 0
	cpu.X = 0
	cpu.SetP(0xFF)
	cpu.Sleep = false
}

// Memory access, routed through the watch hooks.

func (cpu *CPU) readByte(addr uint16) uint8 {
	value := cpu.bus.Read(addr)
	if cpu.OnMemoryRead != nil && !cpu.OnMemoryRead(addr, value) {
		cpu.memBreak = true
	}
	return value
}

func (cpu *CPU) writeByte(addr uint16, value uint8) {
	if cpu.OnMemoryWrite != nil && !cpu.OnMemoryWrite(addr, value) {
		cpu.memBreak = true
	}
	cpu.bus.Write(addr, value)
}

func (cpu *CPU) readWord(addr uint16) uint16 {
	hi := cpu.readByte(addr)
	lo := cpu.readByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (cpu *CPU) writeWord(addr uint16, value uint16) {
	cpu.writeByte(addr, uint8(value>>8))
	cpu.writeByte(addr+1, uint8(value))
}

// Stack.

func (cpu *CPU) pushByte(value uint8) {
	cpu.SP--
	cpu.writeByte(cpu.SP, value)
}

func (cpu *CPU) popByte() uint8 {
	value := cpu.readByte(cpu.SP)
	cpu.SP++
	return value
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.pushByte(uint8(value >> 8))
	cpu.pushByte(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	lo := cpu.popByte()
	hi := cpu.popByte()
	return uint16(hi)<<8 | uint16(lo)
}

// Fetch.

func (cpu *CPU) fetchByte() uint8 {
	value := cpu.readByte(cpu.PC)
	cpu.PC++
	return value
}

func (cpu *CPU) fetchWord() uint16 {
	value := cpu.readWord(cpu.PC)
	cpu.PC += 2
	return value
}

// indexed computes an indexed effective address.
func (cpu *CPU) indexed() uint16 {
	return cpu.X + uint16(cpu.fetchByte())
}

// interrupt pushes PC, X, A, B and the status byte, masks further
// interrupts and vectors. Costs 11 cycles.
func (cpu *CPU) interrupt(vector uint16) int {
	cpu.pushWord(cpu.PC)
	cpu.pushWord(cpu.X)
	cpu.pushByte(cpu.A)
	cpu.pushByte(cpu.B)
	cpu.pushByte(cpu.P())
	cpu.setFlag(FlagI, true)
	cpu.PC = cpu.readWord(vector)
	return 11
}

// Execute runs until at least budget cycles were consumed, a hook
// requested exit, or a stack error occurred. Returns the cycles
// consumed. The loop is re-entrant.
func (cpu *CPU) Execute(budget int) (int, error) {
	total := 0

	for budget > 0 {
		ticks := 0

		// NMI first, OCI second; the order is part of the contract.
		if cpu.bus.IsNMIDue() {
			ticks += cpu.interrupt(VecNMI)
			cpu.Sleep = false
		}
		if cpu.bus.IsOCIDue() && !cpu.Flag(FlagI) {
			ticks += cpu.interrupt(VecOCI)
			cpu.Sleep = false
		}

		// Sanity check the stack pointer before the fetch.
		sp := cpu.SP
		if (sp > 0 && sp < 0x00E0) || (sp >= 0x0100 && sp < 0x0400) || sp > 0x8000 {
			return total, &StackError{SP: sp, PC: cpu.PC}
		}

		var opcode uint8 = 0x01 // NOP while asleep or off
		if !cpu.Sleep && !cpu.bus.IsSwitchedOff() {
			if cpu.OnInstruction != nil {
				next := cpu.readByte(cpu.PC)
				if !cpu.OnInstruction(cpu.PC, next) {
					return total, nil
				}
			}
			opcode = cpu.fetchByte()
		}

		ticks++
		ticks += cpu.dispatch(opcode)

		if cpu.memBreak {
			cpu.memBreak = false
			cpu.bus.IncFrame(ticks)
			return total + ticks, nil
		}

		cpu.bus.IncFrame(ticks)
		budget -= ticks
		total += ticks
	}

	return total, nil
}

// Step executes exactly one instruction with the instruction hook
// disabled, returning the cycles consumed.
func (cpu *CPU) Step() (int, error) {
	saved := cpu.OnInstruction
	cpu.OnInstruction = nil
	defer func() { cpu.OnInstruction = saved }()
	return cpu.Execute(1)
}

// Snapshot returns the register file in its fixed order:
// A, B, P, X, PC, SP, sleep.
func (cpu *CPU) Snapshot() []uint8 {
	sleep := uint8(0)
	if cpu.Sleep {
		sleep = 1
	}
	return []uint8{
		cpu.A, cpu.B, cpu.P(),
		uint8(cpu.X >> 8), uint8(cpu.X),
		uint8(cpu.PC >> 8), uint8(cpu.PC),
		uint8(cpu.SP >> 8), uint8(cpu.SP),
		sleep,
	}
}

// Restore reloads the register file, returning bytes consumed.
func (cpu *CPU) Restore(data []uint8) int {
	cpu.A = data[0]
	cpu.B = data[1]
	cpu.SetP(data[2])
	cpu.X = uint16(data[3])<<8 | uint16(data[4])
	cpu.PC = uint16(data[5])<<8 | uint16(data[6])
	cpu.SP = uint16(data[7])<<8 | uint16(data[8])
	cpu.Sleep = data[9] != 0
	return 10
}
