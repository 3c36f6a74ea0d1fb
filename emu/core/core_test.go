package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugojpinto/psion-org2-sdk/emu/breakpoint"
	"github.com/hugojpinto/psion-org2-sdk/emu/cpu"
	"github.com/hugojpinto/psion-org2-sdk/opk"
)

// romWith builds a 32K ROM image with a reset vector and a program at
// $8000.
func romWith(program ...uint8) []uint8 {
	rom := make([]uint8, 0x8000)
	copy(rom, program) // index 0 maps to $8000
	rom[0x7FFE] = 0x80 // reset vector $FFFE -> $8000
	rom[0x7FFF] = 0x00
	return rom
}

func newEmu(t *testing.T, program ...uint8) *Emulator {
	t.Helper()
	emu, err := New(Config{Model: "XP", ROM: romWith(program...)})
	require.NoError(t, err)
	emu.Reset()
	return emu
}

func TestUnknownModel(t *testing.T) {
	_, err := New(Config{Model: "ZX81"})
	assert.Error(t, err)
}

// Reset vector: ROM $FFFE/$FFFF = $80 $00 puts PC at $8000.
func TestResetVector(t *testing.T) {
	emu := newEmu(t)
	assert.Equal(t, uint16(0x8000), emu.CPU().PC)
}

func TestInjectAndRun(t *testing.T) {
	emu := newEmu(t)
	// LDAA #$42; STAA $50; SLP
	emu.InjectProgram([]uint8{0x86, 0x42, 0x97, 0x50, 0x1A}, 0x2000)
	_, err := emu.Run(100)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), emu.ReadMemory(0x0050))
	assert.Equal(t, uint16(0x42), emu.Registers()["a"])
}

func TestStepCycles(t *testing.T) {
	emu := newEmu(t)
	emu.InjectProgram([]uint8{0x01, 0x86, 0x01}, 0x2000) // NOP; LDAA #1
	cycles, err := emu.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, cycles)
	cycles, err = emu.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, cycles)
	assert.Equal(t, int64(3), emu.TotalCycles())
}

func TestBreakpoint(t *testing.T) {
	emu := newEmu(t)
	emu.InjectProgram([]uint8{0x01, 0x01, 0x01, 0x1A}, 0x2000)
	emu.AddBreakpoint(0x2002, nil)

	ev, err := emu.Run(1000)
	require.NoError(t, err)
	assert.Equal(t, breakpoint.ReasonBreakpoint, ev.Reason)
	assert.Equal(t, uint16(0x2002), ev.Address)
	assert.Equal(t, uint16(0x2002), emu.CPU().PC, "stops before the instruction")
}

func TestConditionalBreakpoint(t *testing.T) {
	emu := newEmu(t)
	// Loop: INCA; BRA loop
	emu.InjectProgram([]uint8{0x4C, 0x20, 0xFD}, 0x2000)
	cond, err := breakpoint.NewCondition("a", "==", 5)
	require.NoError(t, err)
	emu.AddBreakpoint(0x2000, cond)

	ev, err := emu.Run(100000)
	require.NoError(t, err)
	assert.Equal(t, breakpoint.ReasonBreakpoint, ev.Reason)
	assert.Equal(t, uint8(5), emu.CPU().A)
}

func TestWatchpoint(t *testing.T) {
	emu := newEmu(t)
	emu.InjectProgram([]uint8{0x86, 0x7E, 0x97, 0x60, 0x1A}, 0x2000)
	emu.AddWatchpoint(0x0060, false, true, nil)

	ev, err := emu.Run(1000)
	require.NoError(t, err)
	assert.Equal(t, breakpoint.ReasonMemoryWrite, ev.Reason)
	assert.Equal(t, uint16(0x0060), ev.Address)
	assert.Equal(t, uint8(0x7E), ev.Value)
}

func TestSyscallHook(t *testing.T) {
	emu := newEmu(t)
	// LDAA #$23; SWI
	emu.InjectProgram([]uint8{0x86, 0x23, 0x3F}, 0x2000)
	var seen uint8
	emu.Breakpoints.AddSyscallHook(0x23, func(service uint8, proc *cpu.CPU) bool {
		seen = service
		return false
	})
	ev, err := emu.Run(1000)
	require.NoError(t, err)
	assert.Equal(t, breakpoint.ReasonSyscall, ev.Reason)
	assert.Equal(t, uint8(0x23), seen)
}

func TestRunUntilPC(t *testing.T) {
	emu := newEmu(t)
	emu.InjectProgram([]uint8{0x01, 0x01, 0x01, 0x1A}, 0x2000)
	ok, err := emu.RunUntilPC(0x2003, 1000)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, emu.Breakpoints.HasBreakpoint(0x2003), "temporary breakpoint removed")
}

// Writing through the LCD data port shows up in DisplayText.
func TestRunUntilText(t *testing.T) {
	emu := newEmu(t)
	// LDAA #1; STAA $0180 (clear display); LDAA #'H'; STAA $0181;
	// LDAA #'I'; STAA $0181; SLP
	emu.InjectProgram([]uint8{
		0x86, 0x01, 0xB7, 0x01, 0x80,
		0x86, 'H', 0xB7, 0x01, 0x81,
		0x86, 'I', 0xB7, 0x01, 0x81,
		0x1A,
	}, 0x2000)
	found, err := emu.RunUntilText("HI", 100000, 100)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "HI", emu.DisplayLines()[0][:2])
}

func TestLoadOPK(t *testing.T) {
	bld, err := opk.NewBuilder(16, opk.FlagEPROM)
	require.NoError(t, err)
	require.NoError(t, bld.AddProcedure("MAIN", []uint8{0x39}))
	data, err := bld.Build()
	require.NoError(t, err)

	emu := newEmu(t)
	assert.NoError(t, emu.LoadOPK(data, 0))
	assert.Error(t, emu.LoadPack(nil, 3), "slot out of range")
}

func TestSnapshotRoundTrip(t *testing.T) {
	emu := newEmu(t)
	emu.InjectProgram([]uint8{0x86, 0x55, 0x97, 0x70, 0x1A}, 0x2000)
	_, err := emu.Run(100)
	require.NoError(t, err)

	snap := emu.SaveSnapshot()

	other, err := New(Config{Model: "XP", ROM: romWith()})
	require.NoError(t, err)
	require.NoError(t, other.LoadSnapshot(snap))

	assert.Equal(t, emu.CPU().PC, other.CPU().PC)
	assert.Equal(t, emu.CPU().A, other.CPU().A)
	assert.Equal(t, emu.CPU().Sleep, other.CPU().Sleep)
	assert.Equal(t, uint8(0x55), other.ReadMemory(0x0070))
	assert.Equal(t, emu.DisplayText(), other.DisplayText())

	// Saving the restored machine reproduces the same bytes.
	assert.Equal(t, snap, other.SaveSnapshot())

	assert.Error(t, other.LoadSnapshot([]uint8{1, 2, 3}))
	bad := append([]uint8{}, snap...)
	bad[3] = 99
	assert.Error(t, other.LoadSnapshot(bad))
}

func TestKeys(t *testing.T) {
	emu := newEmu(t)
	emu.InjectProgram([]uint8{0x1A}, 0x2000)
	require.NoError(t, emu.PressKey("A"))
	require.NoError(t, emu.ReleaseKey("A"))
	assert.Error(t, emu.PressKey("NOPE"))
	require.NoError(t, emu.TapKey("EXE", 100))
}

func TestReadWriteHelpers(t *testing.T) {
	emu := newEmu(t)
	emu.WriteMemory(0x0400, 0x12)
	emu.WriteMemory(0x0401, 0x34)
	assert.Equal(t, uint16(0x1234), emu.ReadWord(0x0400))
	assert.Equal(t, []uint8{0x12, 0x34}, emu.ReadBytes(0x0400, 2))
}
