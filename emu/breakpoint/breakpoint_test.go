package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugojpinto/psion-org2-sdk/emu/cpu"
)

type nullBus struct{}

func (nullBus) Read(uint16) uint8         { return 0 }
func (nullBus) Write(uint16, uint8)       {}
func (nullBus) IsNMIDue() bool            { return false }
func (nullBus) IsOCIDue() bool            { return false }
func (nullBus) IncFrame(int)              {}
func (nullBus) IsSwitchedOff() bool       { return false }

func TestConditions(t *testing.T) {
	proc := cpu.New(nullBus{})
	proc.SetP(0) // New starts with every flag set
	proc.A = 0x42
	proc.X = 0x1234
	proc.SetFlag(cpu.FlagZ, true)

	check := func(reg, op string, value uint16) bool {
		cond, err := NewCondition(reg, op, value)
		require.NoError(t, err)
		return cond.Check(proc)
	}

	assert.True(t, check("a", "==", 0x42))
	assert.False(t, check("a", "!=", 0x42))
	assert.True(t, check("x", ">", 0x1000))
	assert.True(t, check("x", "<=", 0x1234))
	assert.True(t, check("a", "&", 0x40))
	assert.False(t, check("a", "&", 0x01))
	assert.True(t, check("z", "==", 1))
	assert.False(t, check("c", "==", 1))

	_, err := NewCondition("q", "==", 1)
	assert.Error(t, err)
	_, err = NewCondition("a", "~=", 1)
	assert.Error(t, err)
}

func TestBreakpointChecks(t *testing.T) {
	proc := cpu.New(nullBus{})
	mgr := NewManager()
	mgr.AddBreakpoint(0x8000, nil)

	assert.True(t, mgr.CheckInstruction(proc, 0x7FFF, 0x01))
	assert.False(t, mgr.CheckInstruction(proc, 0x8000, 0x01))
	assert.Equal(t, ReasonBreakpoint, mgr.LastEvent().Reason)

	cond, err := NewCondition("b", "==", 7)
	require.NoError(t, err)
	mgr.AddBreakpoint(0x9000, cond)
	assert.True(t, mgr.CheckInstruction(proc, 0x9000, 0x01), "condition not met")
	proc.B = 7
	assert.False(t, mgr.CheckInstruction(proc, 0x9000, 0x01))

	mgr.RemoveBreakpoint(0x8000)
	assert.True(t, mgr.CheckInstruction(proc, 0x8000, 0x01))
	assert.Equal(t, []uint16{0x9000}, mgr.Breakpoints())
}

func TestWatchpointChecks(t *testing.T) {
	proc := cpu.New(nullBus{})
	mgr := NewManager()
	mgr.AddWatchpoint(0x0050, true, false, nil)

	assert.False(t, mgr.CheckRead(proc, 0x0050, 0x11))
	assert.Equal(t, ReasonMemoryRead, mgr.LastEvent().Reason)
	assert.Equal(t, uint8(0x11), mgr.LastEvent().Value)
	assert.True(t, mgr.CheckWrite(proc, 0x0050, 0x11), "write watch not set")

	mgr.RemoveWatchpoint(0x0050)
	assert.True(t, mgr.CheckRead(proc, 0x0050, 0x11))
}

func TestStepAndBreakRequest(t *testing.T) {
	proc := cpu.New(nullBus{})
	mgr := NewManager()

	mgr.SetStepMode(true)
	assert.False(t, mgr.CheckInstruction(proc, 0x100, 0x01))
	assert.Equal(t, ReasonStep, mgr.LastEvent().Reason)
	assert.True(t, mgr.CheckInstruction(proc, 0x101, 0x01), "step mode is one shot")

	mgr.RequestBreak()
	assert.False(t, mgr.CheckInstruction(proc, 0x102, 0x01))
	assert.Equal(t, ReasonUserBreak, mgr.LastEvent().Reason)
}

func TestSyscallHooks(t *testing.T) {
	proc := cpu.New(nullBus{})
	proc.A = 0x10
	mgr := NewManager()

	calls := 0
	mgr.AddSyscallHook(0x10, func(service uint8, proc *cpu.CPU) bool {
		calls++
		return calls > 1
	})

	assert.False(t, mgr.CheckInstruction(proc, 0x8000, 0x3F))
	assert.Equal(t, ReasonSyscall, mgr.LastEvent().Reason)
	assert.True(t, mgr.CheckInstruction(proc, 0x8000, 0x3F), "hook allowed continue")
	assert.True(t, mgr.CheckInstruction(proc, 0x8000, 0x01), "not an SWI")

	mgr.ClearAll()
	assert.Nil(t, mgr.LastEvent())
}

func TestEventStrings(t *testing.T) {
	assert.Contains(t, Event{Reason: ReasonBreakpoint, Address: 0x8000}.String(), "8000")
	assert.Contains(t, Event{Reason: ReasonMaxCycles}.String(), "budget")
	assert.Equal(t, "custom", Event{Reason: ReasonNone, Message: "custom"}.String())
}
