/*
 * org2 - Breakpoints, watchpoints and register conditions.
 *
 * Copyright 2025, Hugo Pinto
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package breakpoint

import (
	"fmt"
	"sort"

	"github.com/hugojpinto/psion-org2-sdk/emu/cpu"
)

// Reasons execution stopped.
const (
	ReasonNone = iota
	ReasonBreakpoint
	ReasonMemoryRead
	ReasonMemoryWrite
	ReasonSyscall
	ReasonStep
	ReasonUserBreak
	ReasonMaxCycles
)

// Event records why execution stopped.
type Event struct {
	Reason  int
	Address uint16
	Value   uint8
	Syscall uint8
	Message string
}

func (ev Event) String() string {
	if ev.Message != "" {
		return ev.Message
	}
	switch ev.Reason {
	case ReasonBreakpoint:
		return fmt.Sprintf("breakpoint at $%04X", ev.Address)
	case ReasonMemoryRead:
		return fmt.Sprintf("read $%02X from $%04X", ev.Value, ev.Address)
	case ReasonMemoryWrite:
		return fmt.Sprintf("write $%02X to $%04X", ev.Value, ev.Address)
	case ReasonSyscall:
		return fmt.Sprintf("syscall $%02X", ev.Syscall)
	case ReasonStep:
		return "single step"
	case ReasonMaxCycles:
		return "cycle budget exhausted"
	case ReasonUserBreak:
		return "user break"
	}
	return "stopped"
}

// Condition is a register test attached to a breakpoint: the break
// fires only when the address matches and the condition holds.
// Registers cover a, b, d, x, sp, pc and the individual flags;
// operators are the six comparisons plus & for a bitwise AND test.
type Condition struct {
	Register string
	Operator string
	Value    uint16
}

var validOperators = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true, "&": true,
}

var flagBits = map[string]uint8{
	"c": cpu.FlagC, "v": cpu.FlagV, "z": cpu.FlagZ,
	"n": cpu.FlagN, "i": cpu.FlagI, "h": cpu.FlagH,
}

// NewCondition validates and builds a condition.
func NewCondition(register, operator string, value uint16) (*Condition, error) {
	switch register {
	case "a", "b", "d", "x", "sp", "pc", "c", "v", "z", "n", "i", "h":
	default:
		return nil, fmt.Errorf("unknown register %q", register)
	}
	if !validOperators[operator] {
		return nil, fmt.Errorf("unknown operator %q", operator)
	}
	return &Condition{Register: register, Operator: operator, Value: value}, nil
}

func (cond *Condition) String() string {
	return fmt.Sprintf("%s %s $%X", cond.Register, cond.Operator, cond.Value)
}

// Check evaluates the condition against the CPU state.
func (cond *Condition) Check(proc *cpu.CPU) bool {
	var actual uint16
	switch cond.Register {
	case "a":
		actual = uint16(proc.A)
	case "b":
		actual = uint16(proc.B)
	case "d":
		actual = proc.D()
	case "x":
		actual = proc.X
	case "sp":
		actual = proc.SP
	case "pc":
		actual = proc.PC
	default:
		if proc.Flag(flagBits[cond.Register]) {
			actual = 1
		}
	}
	switch cond.Operator {
	case "==":
		return actual == cond.Value
	case "!=":
		return actual != cond.Value
	case "<":
		return actual < cond.Value
	case "<=":
		return actual <= cond.Value
	case ">":
		return actual > cond.Value
	case ">=":
		return actual >= cond.Value
	case "&":
		return actual&cond.Value != 0
	}
	return false
}

// SyscallHook intercepts an OS service at SWI; returning false stops
// execution.
type SyscallHook func(service uint8, proc *cpu.CPU) bool

// Manager holds breakpoints, watchpoints and syscall hooks, and
// implements the checks the CPU hooks call.
type Manager struct {
	breakpoints  map[uint16]*Condition
	readWatches  map[uint16]*Condition
	writeWatches map[uint16]*Condition
	syscallHooks map[uint8]SyscallHook

	lastEvent      *Event
	stepMode       bool
	breakRequested bool
}

// NewManager builds an empty manager.
func NewManager() *Manager {
	return &Manager{
		breakpoints:  make(map[uint16]*Condition),
		readWatches:  make(map[uint16]*Condition),
		writeWatches: make(map[uint16]*Condition),
		syscallHooks: make(map[uint8]SyscallHook),
	}
}

// LastEvent returns the most recent break event, or nil.
func (mgr *Manager) LastEvent() *Event {
	return mgr.lastEvent
}

// SetStepMode arms a one-shot stop before the next instruction.
func (mgr *Manager) SetStepMode(on bool) {
	mgr.stepMode = on
}

// RequestBreak stops execution at the next instruction boundary.
func (mgr *Manager) RequestBreak() {
	mgr.breakRequested = true
}

// ClearBreakRequest drops a pending break request.
func (mgr *Manager) ClearBreakRequest() {
	mgr.breakRequested = false
}

// AddBreakpoint sets a PC breakpoint, optionally conditional.
func (mgr *Manager) AddBreakpoint(addr uint16, cond *Condition) {
	mgr.breakpoints[addr] = cond
}

// RemoveBreakpoint clears a PC breakpoint.
func (mgr *Manager) RemoveBreakpoint(addr uint16) {
	delete(mgr.breakpoints, addr)
}

// HasBreakpoint reports whether a breakpoint is set at addr.
func (mgr *Manager) HasBreakpoint(addr uint16) bool {
	_, ok := mgr.breakpoints[addr]
	return ok
}

// Breakpoints lists breakpoint addresses in order.
func (mgr *Manager) Breakpoints() []uint16 {
	out := make([]uint16, 0, len(mgr.breakpoints))
	for addr := range mgr.breakpoints {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddWatchpoint sets read and/or write watches at addr.
func (mgr *Manager) AddWatchpoint(addr uint16, onRead, onWrite bool, cond *Condition) {
	if onRead {
		mgr.readWatches[addr] = cond
	}
	if onWrite {
		mgr.writeWatches[addr] = cond
	}
}

// RemoveWatchpoint clears both watch kinds at addr.
func (mgr *Manager) RemoveWatchpoint(addr uint16) {
	delete(mgr.readWatches, addr)
	delete(mgr.writeWatches, addr)
}

// AddSyscallHook intercepts SWI with the given service number in A.
func (mgr *Manager) AddSyscallHook(service uint8, hook SyscallHook) {
	mgr.syscallHooks[service] = hook
}

// RemoveSyscallHook drops a hook.
func (mgr *Manager) RemoveSyscallHook(service uint8) {
	delete(mgr.syscallHooks, service)
}

// ClearAll removes every breakpoint, watchpoint and hook.
func (mgr *Manager) ClearAll() {
	mgr.breakpoints = make(map[uint16]*Condition)
	mgr.readWatches = make(map[uint16]*Condition)
	mgr.writeWatches = make(map[uint16]*Condition)
	mgr.syscallHooks = make(map[uint8]SyscallHook)
	mgr.stepMode = false
	mgr.breakRequested = false
	mgr.lastEvent = nil
}

// CheckInstruction runs before each instruction; false stops
// execution.
func (mgr *Manager) CheckInstruction(proc *cpu.CPU, pc uint16, opcode uint8) bool {
	if mgr.breakRequested {
		mgr.breakRequested = false
		mgr.lastEvent = &Event{Reason: ReasonUserBreak, Address: pc, Message: "user break"}
		return false
	}
	if mgr.stepMode {
		mgr.stepMode = false
		mgr.lastEvent = &Event{Reason: ReasonStep, Address: pc,
			Message: fmt.Sprintf("step at $%04X", pc)}
		return false
	}
	if cond, ok := mgr.breakpoints[pc]; ok {
		if cond == nil || cond.Check(proc) {
			msg := fmt.Sprintf("breakpoint at $%04X", pc)
			if cond != nil {
				msg += fmt.Sprintf(" (when %s)", cond)
			}
			mgr.lastEvent = &Event{Reason: ReasonBreakpoint, Address: pc, Message: msg}
			return false
		}
	}
	// SWI carries the service number in A.
	if opcode == 0x3F {
		if hook, ok := mgr.syscallHooks[proc.A]; ok {
			if !hook(proc.A, proc) {
				mgr.lastEvent = &Event{Reason: ReasonSyscall, Address: pc, Syscall: proc.A,
					Message: fmt.Sprintf("syscall $%02X", proc.A)}
				return false
			}
		}
	}
	return true
}

// CheckRead runs on every memory read; false stops execution.
func (mgr *Manager) CheckRead(proc *cpu.CPU, addr uint16, value uint8) bool {
	cond, ok := mgr.readWatches[addr]
	if !ok {
		return true
	}
	if cond != nil && !cond.Check(proc) {
		return true
	}
	mgr.lastEvent = &Event{Reason: ReasonMemoryRead, Address: addr, Value: value,
		Message: fmt.Sprintf("read $%02X from $%04X", value, addr)}
	return false
}

// CheckWrite runs on every memory write; false stops execution.
func (mgr *Manager) CheckWrite(proc *cpu.CPU, addr uint16, value uint8) bool {
	cond, ok := mgr.writeWatches[addr]
	if !ok {
		return true
	}
	if cond != nil && !cond.Check(proc) {
		return true
	}
	mgr.lastEvent = &Event{Reason: ReasonMemoryWrite, Address: addr, Value: value,
		Message: fmt.Sprintf("write $%02X to $%04X", value, addr)}
	return false
}
