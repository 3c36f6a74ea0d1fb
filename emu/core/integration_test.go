package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assembler "github.com/hugojpinto/psion-org2-sdk/emu/assemble"
	"github.com/hugojpinto/psion-org2-sdk/emu/cpu"
)

// Assemble a fragment and run it to the SLP that the helper appends.
func assembleAndRun(t *testing.T, optimize bool, source string) *Emulator {
	t.Helper()
	asm, err := assembler.New(assembler.Options{Optimize: optimize})
	require.NoError(t, err)
	code, err := asm.Assemble(source+"\tSLP\n", "test.asm")
	require.NoError(t, err)

	emu := newEmu(t)
	emu.InjectProgram(code, 0x2000)
	_, err = emu.Run(10000)
	require.NoError(t, err)
	require.True(t, emu.CPU().Sleep, "program must reach the trailing SLP")
	return emu
}

// Carry chains across an add: $FF + 1 sets C, ADCB folds it into B.
func TestCarryChain(t *testing.T) {
	emu := assembleAndRun(t, false, `
	LDAA #$FF
	ADDA #$01
	LDAB #$00
	ADCB #$00
`)
	proc := emu.CPU()
	assert.Equal(t, uint8(0x00), proc.A)
	assert.Equal(t, uint8(0x01), proc.B)
	assert.True(t, proc.Flag(cpu.FlagC))
	assert.True(t, proc.Flag(cpu.FlagZ))
}

// The peephole rewrite of CMPA #0 keeps the program's behavior: the
// BEQ is still taken exactly when A is zero.
func TestPeepholePreservesBehavior(t *testing.T) {
	source := `
	LDAA #0
	CMPA #0
	BEQ taken
	LDAB #$BB
	BRA out
taken:	LDAB #$AA
out:
`
	plain := assembleAndRun(t, false, source)
	optimized := assembleAndRun(t, true, source)
	assert.Equal(t, uint8(0xAA), plain.CPU().B)
	assert.Equal(t, uint8(0xAA), optimized.CPU().B)
}

func TestPeepholeRewroteCompare(t *testing.T) {
	asm, err := assembler.New(assembler.Options{Optimize: true})
	require.NoError(t, err)
	code, err := asm.Assemble(`
	LDAA #0
	CMPA #0
	BEQ end
end:	RTS
`, "peep.asm")
	require.NoError(t, err)
	assert.Equal(t, 1, asm.Stats().CompareZero)
	// LDAA #0, TSTA, BEQ, RTS.
	assert.Equal(t, []uint8{0x86, 0x00, 0x4D, 0x27, 0x00, 0x39}, code)
}

// The rewrite is skipped when a carry-dependent branch follows.
func TestPeepholeCarryGuard(t *testing.T) {
	asm, err := assembler.New(assembler.Options{Optimize: true})
	require.NoError(t, err)
	code, err := asm.Assemble(`
	CMPA #0
	BCS low
low:	RTS
`, "guard.asm")
	require.NoError(t, err)
	assert.Equal(t, 0, asm.Stats().CompareZero)
	assert.Equal(t, uint8(0x81), code[0], "CMPA survives")
}

func TestPeepholePushPull(t *testing.T) {
	asm, err := assembler.New(assembler.Options{Optimize: true})
	require.NoError(t, err)
	code, err := asm.Assemble(`
	PSHA
	PULA
	PSHX
	PULX
	NOP
`, "pairs.asm")
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x01}, code)
	assert.Equal(t, 2, asm.Stats().PushPullPairs)
}

func TestPeepholeDeadCode(t *testing.T) {
	asm, err := assembler.New(assembler.Options{Optimize: true})
	require.NoError(t, err)
	code, err := asm.Assemble(`
	RTS
	LDAA #1
	LDAB #2
after:	NOP
`, "dead.asm")
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x39, 0x01}, code)
	assert.Equal(t, 2, asm.Stats().DeadCode)
}

// Assembled OB3 output unwraps through the codec's OB3 reader into
// emulator memory and runs, tying assembler, codec and emulator
// together.
func TestAssembleOB3AndRun(t *testing.T) {
	asm, err := assembler.New(assembler.Options{})
	require.NoError(t, err)
	_, err = asm.Assemble("\tLDAA #$42\n\tRTS\n", "proc.asm")
	require.NoError(t, err)

	emu := newEmu(t)
	require.NoError(t, emu.LoadOB3(asm.OB3(), 0x2000))
	_, err = emu.Run(2)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), emu.CPU().A)
}
