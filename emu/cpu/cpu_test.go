package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBus is a flat 64K RAM with switchable interrupt lines.
type testBus struct {
	mem      [0x10000]uint8
	nmi      bool
	oci      bool
	off      bool
	ticks    int
	lastAddr uint16
}

func (bus *testBus) Read(addr uint16) uint8 {
	return bus.mem[addr]
}

func (bus *testBus) Write(addr uint16, value uint8) {
	bus.lastAddr = addr
	bus.mem[addr] = value
}

func (bus *testBus) IsNMIDue() bool {
	due := bus.nmi
	bus.nmi = false
	return due
}

func (bus *testBus) IsOCIDue() bool {
	due := bus.oci
	bus.oci = false
	return due
}

func (bus *testBus) IncFrame(ticks int)  { bus.ticks += ticks }
func (bus *testBus) IsSwitchedOff() bool { return bus.off }

// newCPU loads a program at $2000 and points PC at it. SP sits in main
// RAM, inside the window the stack check allows.
func newCPU(program ...uint8) (*CPU, *testBus) {
	bus := &testBus{}
	copy(bus.mem[0x2000:], program)
	cpu := New(bus)
	cpu.PC = 0x2000
	cpu.SP = 0x3FFF
	cpu.SetP(0)
	return cpu, bus
}

func run(t *testing.T, cpu *CPU, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		_, err := cpu.Step()
		require.NoError(t, err)
	}
}

// ADC carry chain: $FF + 1 carries into B.
func TestADCCarryChain(t *testing.T) {
	cpu, _ := newCPU(
		0x86, 0xFF, // LDAA #$FF
		0x8B, 0x01, // ADDA #$01
		0xC6, 0x00, // LDAB #$00
		0xC9, 0x00, // ADCB #$00
	)
	run(t, cpu, 4)
	assert.Equal(t, uint8(0x00), cpu.A)
	assert.Equal(t, uint8(0x01), cpu.B)
	assert.True(t, cpu.Flag(FlagC))
	assert.True(t, cpu.Flag(FlagZ))
}

// TSX on the HD6303 copies SP without the 6800 off-by-one.
func TestTSX(t *testing.T) {
	cpu, _ := newCPU(0x30) // TSX
	cpu.SP = 0x01FF
	// $01FF is inside the forbidden stack window; move the check out
	// of the way by running the instruction directly.
	cpu.PC = 0x2000
	ticks := cpu.dispatch(cpu.fetchByte())
	assert.Equal(t, 0, ticks)
	assert.Equal(t, uint16(0x01FF), cpu.X)
}

// XGDX swaps D and X.
func TestXGDX(t *testing.T) {
	cpu, _ := newCPU(0x18)
	cpu.A = 0x12
	cpu.B = 0x34
	cpu.X = 0x5678
	run(t, cpu, 1)
	assert.Equal(t, uint8(0x56), cpu.A)
	assert.Equal(t, uint8(0x78), cpu.B)
	assert.Equal(t, uint16(0x1234), cpu.X)
}

// PC advances by exactly the instruction length for straight-line
// code.
func TestPCAdvance(t *testing.T) {
	cpu, _ := newCPU(
		0x01,             // NOP            1 byte
		0x86, 0x00,       // LDAA #         2 bytes
		0xCE, 0x12, 0x34, // LDX ##         3 bytes
		0x71, 0x0F, 0x50, // AIM #,0m       3 bytes
	)
	run(t, cpu, 1)
	assert.Equal(t, uint16(0x2001), cpu.PC)
	run(t, cpu, 1)
	assert.Equal(t, uint16(0x2003), cpu.PC)
	run(t, cpu, 1)
	assert.Equal(t, uint16(0x2006), cpu.PC)
	run(t, cpu, 1)
	assert.Equal(t, uint16(0x2009), cpu.PC)
}

func TestPushPopInverse(t *testing.T) {
	cpu, _ := newCPU(
		0x36, // PSHA
		0x32, // PULA
	)
	cpu.A = 0x5A
	sp := cpu.SP
	run(t, cpu, 2)
	assert.Equal(t, uint8(0x5A), cpu.A)
	assert.Equal(t, sp, cpu.SP)
}

func TestBranches(t *testing.T) {
	// BEQ taken: Z set by SUBA.
	cpu, _ := newCPU(
		0x80, 0x00, // SUBA #0 with A=0: Z set
		0x27, 0x02, // BEQ +2
		0x86, 0x11, // skipped
		0x86, 0x22, // LDAA #$22
	)
	run(t, cpu, 3)
	assert.Equal(t, uint8(0x22), cpu.A)

	// Backward branch with negative displacement.
	cpu2, _ := newCPU(
		0x01,       // NOP
		0x20, 0xFD, // BRA -3 (back to the NOP)
	)
	run(t, cpu2, 2)
	assert.Equal(t, uint16(0x2000), cpu2.PC)
}

// Bit-manipulate family: AIM/OIM/EIM write back, TIM only flags.
func TestBitManipulate(t *testing.T) {
	cpu, bus := newCPU(
		0x72, 0x0F, 0x50, // OIM #$0F,$50
		0x71, 0xF1, 0x50, // AIM #$F1,$50
		0x75, 0xFF, 0x50, // EIM #$FF,$50
		0x7B, 0x00, 0x50, // TIM #$00,$50
	)
	bus.mem[0x50] = 0x40
	run(t, cpu, 1)
	assert.Equal(t, uint8(0x4F), bus.mem[0x50])
	run(t, cpu, 1)
	assert.Equal(t, uint8(0x41), bus.mem[0x50])
	run(t, cpu, 1)
	assert.Equal(t, uint8(0xBE), bus.mem[0x50])
	run(t, cpu, 1)
	assert.Equal(t, uint8(0xBE), bus.mem[0x50], "TIM must not write back")
	assert.True(t, cpu.Flag(FlagZ))
}

// RTI restores the state an interrupt entry pushed.
func TestInterruptRoundTrip(t *testing.T) {
	cpu, bus := newCPU()
	bus.mem[VecSWI] = 0x30 // SWI vector -> $3080
	bus.mem[VecSWI+1] = 0x80
	bus.mem[0x2000] = 0x3F // SWI
	bus.mem[0x3080] = 0x3B // RTI

	cpu.A = 0x11
	cpu.B = 0x22
	cpu.X = 0x3344
	cpu.SetP(0x05)

	run(t, cpu, 1)
	assert.Equal(t, uint16(0x3080), cpu.PC)
	assert.True(t, cpu.Flag(FlagI), "interrupt entry masks I")

	run(t, cpu, 1)
	assert.Equal(t, uint16(0x2001), cpu.PC)
	assert.Equal(t, uint8(0x11), cpu.A)
	assert.Equal(t, uint8(0x22), cpu.B)
	assert.Equal(t, uint16(0x3344), cpu.X)
	assert.Equal(t, uint8(0x05), cpu.P()&0x3F)
}

// Words push high byte first: the low byte lands at the lower
// address.
func TestWordPushOrder(t *testing.T) {
	cpu, bus := newCPU(0x3C) // PSHX
	cpu.X = 0x1234
	sp := cpu.SP
	run(t, cpu, 1)
	assert.Equal(t, uint8(0x34), bus.mem[sp-2])
	assert.Equal(t, uint8(0x12), bus.mem[sp-1])
}

func TestNMIEntry(t *testing.T) {
	cpu, bus := newCPU(0x01, 0x01)
	bus.mem[VecNMI] = 0x40
	bus.mem[VecNMI+1] = 0x00
	bus.mem[0x4000] = 0x01 // NOP in the handler
	cpu.Sleep = true
	bus.nmi = true

	_, err := cpu.Execute(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4001), cpu.PC, "vectored then executed one instruction")
	assert.False(t, cpu.Sleep, "NMI wakes the CPU")
}

// OCI respects the I mask.
func TestOCIMasked(t *testing.T) {
	cpu, bus := newCPU(0x01)
	bus.mem[VecOCI] = 0x40
	cpu.setFlag(FlagI, true)
	bus.oci = true
	_, err := cpu.Execute(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2001), cpu.PC, "OCI must not fire with I set")
}

func TestSLP(t *testing.T) {
	cpu, _ := newCPU(0x1A, 0x86, 0x42) // SLP; LDAA #$42
	run(t, cpu, 1)
	assert.True(t, cpu.Sleep)
	run(t, cpu, 3)
	assert.Equal(t, uint8(0x00), cpu.A, "sleeping CPU executes NOPs")
}

// Undefined opcodes write to the switch-off latch instead of failing.
func TestUndefinedOpcode(t *testing.T) {
	cpu, bus := newCPU(0x02)
	run(t, cpu, 1)
	assert.Equal(t, uint16(0x01C0), bus.lastAddr)
}

func TestStackError(t *testing.T) {
	cpu, _ := newCPU(0x01)
	cpu.SP = 0x0200
	_, err := cpu.Execute(10)
	require.Error(t, err)
	stackErr, ok := err.(*StackError)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0200), stackErr.SP)
	assert.Equal(t, uint16(0x2000), stackErr.PC)
}

func TestInstructionHook(t *testing.T) {
	cpu, _ := newCPU(0x01, 0x01, 0x01)
	count := 0
	cpu.OnInstruction = func(pc uint16, opcode uint8) bool {
		count++
		return count < 3
	}
	ticks, err := cpu.Execute(100)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, ticks, "two instructions ran before the hook stopped us")

	// The loop is re-entrant.
	cpu.OnInstruction = nil
	_, err = cpu.Execute(1)
	assert.NoError(t, err)
}

func TestMemoryWriteHook(t *testing.T) {
	cpu, _ := newCPU(0x97, 0x50, 0x01) // STAA $50; NOP
	cpu.A = 0x99
	var seen []uint16
	cpu.OnMemoryWrite = func(addr uint16, value uint8) bool {
		seen = append(seen, addr)
		return false
	}
	_, err := cpu.Execute(100)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x50}, seen)
	assert.Equal(t, uint16(0x2002), cpu.PC, "write completed before the stop")
}

// Step ignores the instruction hook and runs exactly one instruction.
func TestStepSkipsHook(t *testing.T) {
	cpu, _ := newCPU(0x01)
	cpu.OnInstruction = func(pc uint16, opcode uint8) bool { return false }
	ticks, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, ticks)
	assert.Equal(t, uint16(0x2001), cpu.PC)
	assert.NotNil(t, cpu.OnInstruction, "hook restored after step")
}

func TestDAA(t *testing.T) {
	// 0x19 + 0x28 = 0x41 binary; DAA corrects to 0x47 BCD.
	cpu, _ := newCPU(
		0x86, 0x19, // LDAA #$19
		0x8B, 0x28, // ADDA #$28
		0x19, // DAA
	)
	run(t, cpu, 3)
	assert.Equal(t, uint8(0x47), cpu.A)
	assert.False(t, cpu.Flag(FlagC))

	// 0x99 + 0x01 = 0x9A; DAA yields 0x00 with carry.
	cpu2, _ := newCPU(
		0x86, 0x99,
		0x8B, 0x01,
		0x19,
	)
	run(t, cpu2, 3)
	assert.Equal(t, uint8(0x00), cpu2.A)
	assert.True(t, cpu2.Flag(FlagC))
}

func TestMUL(t *testing.T) {
	cpu, _ := newCPU(0x3D)
	cpu.A = 0x12
	cpu.B = 0x34
	run(t, cpu, 1)
	assert.Equal(t, uint16(0x12*0x34), cpu.D())
}

func TestSubtractOverflow(t *testing.T) {
	// $80 - $01 = $7F: signed overflow.
	cpu, _ := newCPU(0x86, 0x80, 0x80, 0x01)
	run(t, cpu, 2)
	assert.Equal(t, uint8(0x7F), cpu.A)
	assert.True(t, cpu.Flag(FlagV))
	assert.False(t, cpu.Flag(FlagC))
}

func TestReset(t *testing.T) {
	cpu, bus := newCPU()
	bus.mem[VecReset] = 0x80
	bus.mem[VecReset+1] = 0x00
	cpu.Reset()
	assert.Equal(t, uint16(0x8000), cpu.PC)
	assert.Equal(t, uint8(0xFF), cpu.P())
	assert.False(t, cpu.Sleep)
}

func TestSnapshotRoundTrip(t *testing.T) {
	cpu, bus := newCPU()
	cpu.A = 1
	cpu.B = 2
	cpu.X = 0x1234
	cpu.PC = 0x8000
	cpu.SP = 0x3F00
	cpu.Sleep = true

	snap := cpu.Snapshot()
	other := New(bus)
	used := other.Restore(snap)
	assert.Equal(t, len(snap), used)
	assert.Equal(t, cpu.A, other.A)
	assert.Equal(t, cpu.B, other.B)
	assert.Equal(t, cpu.X, other.X)
	assert.Equal(t, cpu.PC, other.PC)
	assert.Equal(t, cpu.SP, other.SP)
	assert.Equal(t, cpu.Sleep, other.Sleep)
	assert.Equal(t, cpu.P(), other.P())
}
