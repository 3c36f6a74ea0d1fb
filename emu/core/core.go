/*
   Organiser II emulator facade.

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

package core

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hugojpinto/psion-org2-sdk/emu/breakpoint"
	"github.com/hugojpinto/psion-org2-sdk/emu/bus"
	"github.com/hugojpinto/psion-org2-sdk/emu/cpu"
	"github.com/hugojpinto/psion-org2-sdk/emu/display"
	"github.com/hugojpinto/psion-org2-sdk/emu/keyboard"
	"github.com/hugojpinto/psion-org2-sdk/emu/memory"
	"github.com/hugojpinto/psion-org2-sdk/emu/pack"
	"github.com/hugojpinto/psion-org2-sdk/opk"
)

// Config selects the hardware to build.
type Config struct {
	Model string  // CM, XP, LA, LZ, LZ64, P200
	ROM   []uint8 // ROM image; nil reads as an empty part
}

// snapshot container version.
const snapshotVersion = 1

// Emulator owns every component by exclusive ownership: the CPU sees
// only the bus, the bus owns memory, display, keyboard and packs.
type Emulator struct {
	Model Model

	mem  *memory.Memory
	disp *display.Display
	kbd  *keyboard.Keyboard
	sys  *bus.Bus
	proc *cpu.CPU

	Breakpoints *breakpoint.Manager

	totalCycles int64
}

// New builds an emulator for a model.
func New(config Config) (*Emulator, error) {
	model, err := GetModel(config.Model)
	if err != nil {
		return nil, err
	}

	mem := memory.NewMemory(model.RAMKB, config.ROM)
	disp := display.New(model.Lines)
	kbd := keyboard.New(model.Layout)
	sys := bus.New(mem, disp, kbd)

	emu := &Emulator{
		Model:       model,
		mem:         mem,
		disp:        disp,
		kbd:         kbd,
		sys:         sys,
		proc:        cpu.New(sys),
		Breakpoints: breakpoint.NewManager(),
	}

	emu.proc.OnInstruction = func(pc uint16, opcode uint8) bool {
		return emu.Breakpoints.CheckInstruction(emu.proc, pc, opcode)
	}
	emu.proc.OnMemoryRead = func(addr uint16, value uint8) bool {
		return emu.Breakpoints.CheckRead(emu.proc, addr, value)
	}
	emu.proc.OnMemoryWrite = func(addr uint16, value uint8) bool {
		return emu.Breakpoints.CheckWrite(emu.proc, addr, value)
	}

	slog.Debug("emulator created", "model", model.Name, "ram", model.RAMKB)
	return emu, nil
}

// CPU exposes the processor for register inspection.
func (emu *Emulator) CPU() *cpu.CPU {
	return emu.proc
}

// Bus exposes the bus controller.
func (emu *Emulator) Bus() *bus.Bus {
	return emu.sys
}

// Display exposes the display controller.
func (emu *Emulator) Display() *display.Display {
	return emu.disp
}

// Reset performs a full power-on reset.
func (emu *Emulator) Reset() {
	emu.proc.Reset()
	emu.sys.SwitchOn()
	emu.mem.ResetBanks()
	emu.totalCycles = 0
	emu.Breakpoints.ClearBreakRequest()
}

// LoadPack installs a pack in a slot.
func (emu *Emulator) LoadPack(pk *pack.Pack, slot int) error {
	if slot < 0 || slot > 2 {
		return fmt.Errorf("pack slot must be 0 to 2, got %d", slot)
	}
	emu.sys.SetPack(pk, slot)
	return nil
}

// LoadOPK parses a pack image and installs it.
func (emu *Emulator) LoadOPK(data []uint8, slot int) error {
	pk, err := pack.FromOPK(data)
	if err != nil {
		return err
	}
	slog.Debug("pack loaded", "slot", slot, "size", pk.SizeKB())
	return emu.LoadPack(pk, slot)
}

// LoadOB3 unwraps an assembler object file and injects its code at
// entry.
func (emu *Emulator) LoadOB3(data []uint8, entry uint16) error {
	file, err := opk.ParseOB3(data)
	if err != nil {
		return err
	}
	emu.InjectProgram(file.Code, entry)
	return nil
}

// LoadBytes copies raw bytes into memory. ROM addresses drop writes.
func (emu *Emulator) LoadBytes(data []uint8, addr uint16) {
	for i, value := range data {
		emu.mem.Write(addr+uint16(i), value)
	}
}

// InjectProgram loads code and points PC at it; handy in tests.
func (emu *Emulator) InjectProgram(code []uint8, entry uint16) {
	emu.LoadBytes(code, entry)
	emu.proc.PC = entry
}

// Step executes one instruction, returning the cycles consumed.
func (emu *Emulator) Step() (int, error) {
	cycles, err := emu.proc.Step()
	emu.totalCycles += int64(cycles)
	return cycles, err
}

// Run executes until a break fires or the budget runs out; the event
// says which.
func (emu *Emulator) Run(maxCycles int) (*breakpoint.Event, error) {
	before := emu.Breakpoints.LastEvent()
	cycles, err := emu.proc.Execute(maxCycles)
	emu.totalCycles += int64(cycles)
	if err != nil {
		return nil, err
	}
	if ev := emu.Breakpoints.LastEvent(); ev != nil && ev != before {
		return ev, nil
	}
	return &breakpoint.Event{Reason: breakpoint.ReasonMaxCycles,
		Message: fmt.Sprintf("ran %d cycles", cycles)}, nil
}

// RunUntilPC runs until PC reaches addr, via a temporary breakpoint.
func (emu *Emulator) RunUntilPC(addr uint16, maxCycles int) (bool, error) {
	had := emu.Breakpoints.HasBreakpoint(addr)
	if !had {
		emu.Breakpoints.AddBreakpoint(addr, nil)
		defer emu.Breakpoints.RemoveBreakpoint(addr)
	}
	ev, err := emu.Run(maxCycles)
	if err != nil {
		return false, err
	}
	return ev.Reason == breakpoint.ReasonBreakpoint && ev.Address == addr, nil
}

// RunUntilText runs in bursts until the display shows text.
func (emu *Emulator) RunUntilText(text string, maxCycles, checkInterval int) (bool, error) {
	if checkInterval <= 0 {
		checkInterval = 10000
	}
	for done := 0; done < maxCycles; done += checkInterval {
		if _, err := emu.Run(checkInterval); err != nil {
			return false, err
		}
		if strings.Contains(emu.DisplayText(), text) {
			return true, nil
		}
	}
	return false, nil
}

// PressKey presses a named key.
func (emu *Emulator) PressKey(key string) error {
	return emu.kbd.Press(key)
}

// ReleaseKey releases a named key.
func (emu *Emulator) ReleaseKey(key string) error {
	return emu.kbd.Release(key)
}

// TapKey presses a key, runs for holdCycles, then releases it.
func (emu *Emulator) TapKey(key string, holdCycles int) error {
	if err := emu.PressKey(key); err != nil {
		return err
	}
	_, err := emu.Run(holdCycles)
	if err != nil {
		return err
	}
	return emu.ReleaseKey(key)
}

// TypeText taps each character with a settle delay in between.
func (emu *Emulator) TypeText(text string, delayCycles int) error {
	for _, ch := range strings.ToUpper(text) {
		key := string(ch)
		if ch == ' ' {
			key = "SPACE"
		}
		if err := emu.TapKey(key, delayCycles); err != nil {
			return err
		}
		if _, err := emu.Run(delayCycles); err != nil {
			return err
		}
	}
	return nil
}

// ReadMemory reads a byte.
func (emu *Emulator) ReadMemory(addr uint16) uint8 {
	return emu.mem.Read(addr)
}

// ReadWord reads a big-endian word.
func (emu *Emulator) ReadWord(addr uint16) uint16 {
	return uint16(emu.mem.Read(addr))<<8 | uint16(emu.mem.Read(addr+1))
}

// ReadBytes reads a run of bytes.
func (emu *Emulator) ReadBytes(addr uint16, count int) []uint8 {
	out := make([]uint8, count)
	for i := range out {
		out[i] = emu.mem.Read(addr + uint16(i))
	}
	return out
}

// WriteMemory writes a byte.
func (emu *Emulator) WriteMemory(addr uint16, value uint8) {
	emu.mem.Write(addr, value)
}

// DisplayText returns the screen rows joined by newlines.
func (emu *Emulator) DisplayText() string {
	return emu.disp.Text()
}

// DisplayLines returns one string per screen row.
func (emu *Emulator) DisplayLines() []string {
	return emu.disp.TextGrid()
}

// DisplayPixels renders the panel as a pixel grid.
func (emu *Emulator) DisplayPixels() [][]bool {
	return emu.disp.Pixels()
}

// AddBreakpoint sets a PC breakpoint with an optional condition.
func (emu *Emulator) AddBreakpoint(addr uint16, cond *breakpoint.Condition) {
	emu.Breakpoints.AddBreakpoint(addr, cond)
}

// AddWatchpoint sets a memory watchpoint.
func (emu *Emulator) AddWatchpoint(addr uint16, onRead, onWrite bool, cond *breakpoint.Condition) {
	emu.Breakpoints.AddWatchpoint(addr, onRead, onWrite, cond)
}

// Registers returns the named register values, flags included.
func (emu *Emulator) Registers() map[string]uint16 {
	flag := func(bit uint8) uint16 {
		if emu.proc.Flag(bit) {
			return 1
		}
		return 0
	}
	return map[string]uint16{
		"a": uint16(emu.proc.A), "b": uint16(emu.proc.B), "d": emu.proc.D(),
		"x": emu.proc.X, "sp": emu.proc.SP, "pc": emu.proc.PC,
		"c": flag(cpu.FlagC), "v": flag(cpu.FlagV), "z": flag(cpu.FlagZ),
		"n": flag(cpu.FlagN), "i": flag(cpu.FlagI), "h": flag(cpu.FlagH),
	}
}

// TotalCycles returns the cycles executed since the last reset.
func (emu *Emulator) TotalCycles() int64 {
	return emu.totalCycles
}

// SaveSnapshot captures the full machine state except pack contents,
// which load separately. The component order is fixed: CPU, bus,
// display, memory.
func (emu *Emulator) SaveSnapshot() []uint8 {
	out := []uint8{'S', 'N', 'A', snapshotVersion}
	out = append(out, emu.proc.Snapshot()...)
	out = append(out, emu.sys.Snapshot()...)
	out = append(out, emu.disp.Snapshot()...)
	out = append(out, emu.mem.Snapshot()...)
	return out
}

// LoadSnapshot restores state captured by SaveSnapshot.
func (emu *Emulator) LoadSnapshot(data []uint8) error {
	if len(data) < 4 || data[0] != 'S' || data[1] != 'N' || data[2] != 'A' {
		return fmt.Errorf("bad snapshot magic")
	}
	if data[3] != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", data[3])
	}
	pos := 4
	pos += emu.proc.Restore(data[pos:])
	pos += emu.sys.Restore(data[pos:])
	pos += emu.disp.Restore(data[pos:])
	emu.mem.Restore(data[pos:])
	return nil
}
