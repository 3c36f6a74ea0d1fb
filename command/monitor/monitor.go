/*
 * org2 - Interactive machine monitor.
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

package monitor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/hugojpinto/psion-org2-sdk/emu/breakpoint"
	"github.com/hugojpinto/psion-org2-sdk/emu/core"
	disassembler "github.com/hugojpinto/psion-org2-sdk/emu/disassemble"
	"github.com/hugojpinto/psion-org2-sdk/util/hex"
)

// regFile is the ordered register view the regs command dumps.
type regFile struct {
	A, B  uint8
	D     uint16
	X, SP uint16
	PC    uint16
	Flags string
}

var commandNames = []string{
	"break", "dis", "go", "help", "key", "load", "mem", "quit",
	"regs", "reset", "restore", "snap", "step", "tap", "text",
	"unbreak", "watch",
}

// CompleteCmd offers command-name completion for the line editor.
func CompleteCmd(line string) []string {
	var matches []string
	for _, name := range commandNames {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			matches = append(matches, name)
		}
	}
	return matches
}

// ProcessCommand runs one monitor command; quit reports that the
// session should end.
func ProcessCommand(input string, emu *core.Emulator) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Println("commands:", strings.Join(commandNames, " "))
		return false, nil
	case "reset":
		emu.Reset()
		return false, nil
	case "regs", "r":
		return false, cmdRegs(emu)
	case "step", "s":
		return false, cmdStep(emu, args)
	case "go", "g", "run":
		return false, cmdGo(emu, args)
	case "break", "b":
		return false, cmdBreak(emu, args)
	case "unbreak":
		return false, cmdUnbreak(emu, args)
	case "watch", "w":
		return false, cmdWatch(emu, args)
	case "mem", "m":
		return false, cmdMem(emu, args)
	case "dis", "d":
		return false, cmdDis(emu, args)
	case "key":
		return false, cmdKey(emu, args, false)
	case "tap":
		return false, cmdKey(emu, args, true)
	case "text":
		for _, line := range emu.DisplayLines() {
			fmt.Println("|" + line + "|")
		}
		return false, nil
	case "load":
		return false, cmdLoad(emu, args)
	case "snap":
		return false, cmdSnap(emu, args)
	case "restore":
		return false, cmdRestore(emu, args)
	}
	return false, fmt.Errorf("unknown command %q, try help", cmd)
}

func parseAddr(text string) (uint16, error) {
	text = strings.TrimPrefix(text, "$")
	value, err := strconv.ParseUint(text, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", text)
	}
	return uint16(value), nil
}

func cmdRegs(emu *core.Emulator) error {
	proc := emu.CPU()
	flags := ""
	for _, name := range []string{"h", "i", "n", "z", "v", "c"} {
		if emu.Registers()[name] != 0 {
			flags += strings.ToUpper(name)
		} else {
			flags += "-"
		}
	}
	spew.Dump(regFile{
		A: proc.A, B: proc.B, D: proc.D(),
		X: proc.X, SP: proc.SP, PC: proc.PC,
		Flags: flags,
	})
	return nil
}

func cmdStep(emu *core.Emulator, args []string) error {
	count := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return fmt.Errorf("bad step count %q", args[0])
		}
		count = parsed
	}
	for i := 0; i < count; i++ {
		if _, err := emu.Step(); err != nil {
			return err
		}
	}
	inst := disassembler.DisassembleOne(emu.ReadMemory, emu.CPU().PC)
	fmt.Println(inst)
	return nil
}

func cmdGo(emu *core.Emulator, args []string) error {
	cycles := 1_000_000
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return fmt.Errorf("bad cycle count %q", args[0])
		}
		cycles = parsed
	}
	event, err := emu.Run(cycles)
	if err != nil {
		return err
	}
	fmt.Println(event)
	return nil
}

func cmdBreak(emu *core.Emulator, args []string) error {
	if len(args) == 0 {
		for _, addr := range emu.Breakpoints.Breakpoints() {
			fmt.Printf("break $%04X\n", addr)
		}
		return nil
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	var cond *breakpoint.Condition
	if len(args) == 4 {
		value, err := strconv.ParseUint(strings.TrimPrefix(args[3], "$"), 16, 16)
		if err != nil {
			return fmt.Errorf("bad condition value %q", args[3])
		}
		cond, err = breakpoint.NewCondition(strings.ToLower(args[1]), args[2], uint16(value))
		if err != nil {
			return err
		}
	} else if len(args) != 1 {
		return errors.New("usage: break addr [reg op value]")
	}
	emu.AddBreakpoint(addr, cond)
	return nil
}

func cmdUnbreak(emu *core.Emulator, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unbreak addr")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	emu.Breakpoints.RemoveBreakpoint(addr)
	return nil
}

func cmdWatch(emu *core.Emulator, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: watch addr [r|w|rw]")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	mode := "w"
	if len(args) > 1 {
		mode = strings.ToLower(args[1])
	}
	emu.AddWatchpoint(addr, strings.Contains(mode, "r"), strings.Contains(mode, "w"), nil)
	return nil
}

func cmdMem(emu *core.Emulator, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: mem addr [len]")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	count := 64
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil || parsed < 1 {
			return fmt.Errorf("bad length %q", args[1])
		}
		count = parsed
	}
	fmt.Print(hex.Dump(addr, emu.ReadBytes(addr, count)))
	return nil
}

func cmdDis(emu *core.Emulator, args []string) error {
	addr := emu.CPU().PC
	if len(args) > 0 {
		parsed, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		addr = parsed
	}
	count := 10
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil || parsed < 1 {
			return fmt.Errorf("bad count %q", args[1])
		}
		count = parsed
	}
	for _, inst := range disassembler.Disassemble(emu.ReadMemory, addr, count) {
		fmt.Println(inst)
	}
	return nil
}

func cmdKey(emu *core.Emulator, args []string, tap bool) error {
	if len(args) != 1 {
		return errors.New("usage: key NAME / tap NAME")
	}
	name := strings.ToUpper(args[0])
	if tap {
		return emu.TapKey(name, 50000)
	}
	if err := emu.PressKey(name); err != nil {
		return err
	}
	return emu.ReleaseKey(name)
}

func cmdLoad(emu *core.Emulator, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: load file.opk [slot]")
	}
	slot := 0
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad slot %q", args[1])
		}
		slot = parsed
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return emu.LoadOPK(data, slot)
}

func cmdSnap(emu *core.Emulator, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: snap file.sna")
	}
	return os.WriteFile(args[0], emu.SaveSnapshot(), 0o644)
}

func cmdRestore(emu *core.Emulator, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: restore file.sna")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return emu.LoadSnapshot(data)
}
