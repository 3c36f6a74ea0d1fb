/*
 * org2 - Bus controller: address decoder, ports, timer, NMI, power.
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

package bus

import (
	"github.com/hugojpinto/psion-org2-sdk/emu/display"
	"github.com/hugojpinto/psion-org2-sdk/emu/keyboard"
	"github.com/hugojpinto/psion-org2-sdk/emu/memory"
	"github.com/hugojpinto/psion-org2-sdk/emu/pack"
)

// Memory map:
//
//	$0000-$003F  processor internal registers
//	$0040-$00FF  zero-page RAM
//	$0100-$017F  ignored
//	$0180-$01BF  LCD command / data
//	$01C0-$03FF  semi-custom chip functions
//	$0400-$7FFF  main RAM
//	$8000-$FFFF  ROM
//
// Semi-custom functions decode on bits 5-15:
//
//	$01C0 switch off            $0300 reset key counter
//	$0200 enable 21V            $0340 increment key counter
//	$0240 disable 21V           $0360 reset memory banks
//	$0280 buzzer on / 21V pack  $0380 NMI to processor
//	$02C0 buzzer off / 5V pack  $03A0 next RAM bank
//	$03C0 NMI to counter        $03E0 next ROM bank

// One NMI opportunity per second at 921.6 kHz, trimmed slightly to
// match the real oscillator.
const ticksPerNMI = 921600 - 35

// Bus owns memory, the display, the keyboard and the three pack
// slots, and is the only thing the CPU talks to.
type Bus struct {
	mem  *memory.Memory
	disp *display.Display
	kbd  *keyboard.Keyboard
	pk   [3]*pack.Pack

	off          bool
	ociDue       bool
	nmiToCounter bool
	ticksToNMI   int

	port2Proc   uint8
	port2Actual uint8
	port2DDR    uint8
	port6Proc   uint8
	port6Actual uint8
	port6DDR    uint8
	port5RCR    uint8

	timer1OCR uint16
	timer1FRC uint16
	timer1CSR uint8

	scaAlarmHigh bool
	vpp21Charged bool

	// Fires on power transitions, after the state has changed.
	OnSwitch func(on bool)
}

// New wires a bus from its components. Slots default to empty packs.
func New(mem *memory.Memory, disp *display.Display, kbd *keyboard.Keyboard) *Bus {
	bus := &Bus{
		mem:          mem,
		disp:         disp,
		kbd:          kbd,
		off:          true,
		nmiToCounter: true,
		timer1OCR:    0xFFFF,
	}
	for i := range bus.pk {
		bus.pk[i] = pack.Empty()
	}
	disp.SwitchOff()
	mem.ResetBanks()
	return bus
}

// SetPack installs a pack in slot 0, 1 or 2.
func (bus *Bus) SetPack(pk *pack.Pack, slot int) {
	if slot >= 0 && slot <= 2 {
		bus.pk[slot] = pk
	}
}

// Pack returns the pack in a slot.
func (bus *Bus) Pack(slot int) *pack.Pack {
	return bus.pk[slot]
}

// Display returns the display controller.
func (bus *Bus) Display() *display.Display {
	return bus.disp
}

// Keyboard returns the keyboard controller.
func (bus *Bus) Keyboard() *keyboard.Keyboard {
	return bus.kbd
}

// Memory returns the memory subsystem.
func (bus *Bus) Memory() *memory.Memory {
	return bus.mem
}

// IsSwitchedOff reports the power state.
func (bus *Bus) IsSwitchedOff() bool {
	return bus.off
}

// SwitchOff powers the system down and blanks the display.
func (bus *Bus) SwitchOff() {
	bus.off = true
	bus.disp.SwitchOff()
	if bus.OnSwitch != nil {
		bus.OnSwitch(false)
	}
}

// SwitchOn powers the system up.
func (bus *Bus) SwitchOn() {
	bus.off = false
	bus.disp.SwitchOn()
	if bus.OnSwitch != nil {
		bus.OnSwitch(true)
	}
}

// Read routes a CPU read.
func (bus *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x40:
		return bus.processorRead(addr)
	case addr < 0x100:
		return bus.mem.Read(addr)
	case addr < 0x400:
		return bus.semicustom(addr, 0, false)
	default:
		return bus.mem.Read(addr)
	}
}

// Write routes a CPU write.
func (bus *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x40:
		bus.processorWrite(addr, value)
	case addr < 0x100:
		bus.mem.Write(addr, value)
	case addr < 0x400:
		bus.semicustom(addr, value, true)
	default:
		bus.mem.Write(addr, value)
	}
}

// Processor internal registers:
//
//	$01 port 2 DDR   $08 timer 1 CSR    $0B/$0C timer 1 OCR
//	$03 port 2       $09/$0A timer 1 FRC
//	$14 port 5 RCR   $15 port 5 (keyboard)
//	$16 port 6 DDR   $17 port 6 (pack control)
func (bus *Bus) processorRead(addr uint16) uint8 {
	switch addr {
	case 0x01:
		return bus.port2DDR
	case 0x03:
		bus.readPort2()
		return bus.port2Actual
	case 0x08:
		return bus.timer1CSR
	case 0x09:
		return uint8(bus.timer1FRC >> 8)
	case 0x0A:
		return uint8(bus.timer1FRC)
	case 0x0B:
		return uint8(bus.timer1OCR >> 8)
	case 0x0C:
		return uint8(bus.timer1OCR)
	case 0x14:
		return bus.port5RCR
	case 0x15:
		result := bus.kbd.ReadPort5()
		if bus.vpp21Charged {
			result |= 0x02
		}
		return result
	case 0x16:
		return bus.port6DDR
	case 0x17:
		return bus.port6Actual
	}
	return 0
}

func (bus *Bus) processorWrite(addr uint16, data uint8) {
	switch addr {
	case 0x01:
		if data != bus.port2DDR {
			bus.port2DDR = data
			newP2 := (bus.port2Proc & bus.port2DDR) + (bus.port2Actual &^ bus.port2DDR)
			bus.port2Actual = newP2
			bus.writePacks()
		}
	case 0x03:
		bus.port2Proc = data
		newP2 := (bus.port2Proc & bus.port2DDR) + (bus.port2Actual &^ bus.port2DDR)
		if newP2 != bus.port2Actual {
			bus.port2Actual = newP2
			bus.writePacks()
		}
	case 0x08:
		bus.timer1CSR = data
	case 0x09:
		bus.timer1FRC = bus.timer1FRC&0x00FF | uint16(data)<<8
	case 0x0A:
		bus.timer1FRC = bus.timer1FRC&0xFF00 | uint16(data)
	case 0x0B:
		bus.timer1OCR = bus.timer1OCR&0x00FF | uint16(data)<<8
	case 0x0C:
		bus.timer1OCR = bus.timer1OCR&0xFF00 | uint16(data)
	case 0x14:
		bus.port5RCR = data
	case 0x16:
		if data != bus.port6DDR {
			bus.port6DDR = data
			bus.writePacks()
		}
	case 0x17:
		bus.port6Proc = data
		newP6 := (bus.port6Proc & bus.port6DDR) + (bus.port6Actual &^ bus.port6DDR)
		if newP6 != bus.port6Actual {
			bus.port6Actual = newP6
			bus.writePacks()
		}
	}
}

// semicustom decodes the $0100-$03FF region.
func (bus *Bus) semicustom(addr uint16, data uint8, write bool) uint8 {
	if addr < 0x180 {
		return 0
	}
	if addr < 0x1C0 {
		// LCD: bit 0 picks data over command.
		if addr&0x01 == 0 {
			if write {
				bus.disp.Command(data)
			}
			return 0
		}
		if write {
			bus.disp.WriteData(data)
			return 0
		}
		return bus.disp.ReadData()
	}

	switch addr & 0xFFE0 {
	case 0x01C0:
		bus.SwitchOff()
	case 0x0200:
		bus.vpp21Charged = true
	case 0x0240:
		// Generator stops; an existing charge remains.
	case 0x0280:
		bus.scaAlarmHigh = true
	case 0x02C0:
		bus.scaAlarmHigh = false
	case 0x0300:
		bus.kbd.ResetCounter()
	case 0x0340:
		bus.kbd.IncrementCounter()
	case 0x0360:
		bus.mem.ResetBanks()
	case 0x0380:
		bus.nmiToCounter = false
	case 0x03A0:
		bus.mem.NextRAMBank()
	case 0x03C0:
		bus.nmiToCounter = true
	case 0x03E0:
		bus.mem.NextROMBank()
	}
	return 0
}

// packControl packs the pin bits handed to the slot controllers.
func (bus *Bus) packControl() uint8 {
	control := bus.port6Actual & 0x0F
	if bus.port2DDR != 0xFF {
		control |= pack.PinP2DDR
	}
	if bus.scaAlarmHigh {
		control |= pack.PinSVPP
	}
	if bus.vpp21Charged {
		control |= pack.PinV21V
	}
	return control
}

// writePacks rebroadcasts the control bus after any port 2/6 change.
// Port 6 bit 7 is master pack power; bits 4-6 select the slots,
// active low. A write cycle on any selected pack consumes the 21V
// charge.
func (bus *Bus) writePacks() {
	control := bus.packControl()
	wrote := false

	if bus.port6Actual&0x80 != 0 || bus.port6DDR&0x80 == 0 {
		bus.pk[0].Reset()
		bus.pk[1].Reset()
		bus.pk[2].Reset()
	} else {
		if bus.port6Actual&0x10 == 0 && bus.port6DDR&0x10 != 0 {
			wrote = bus.pk[0].WriteControl(control, bus.port2Actual) || wrote
		}
		if bus.port6Actual&0x20 == 0 && bus.port6DDR&0x20 != 0 {
			wrote = bus.pk[1].WriteControl(control, bus.port2Actual) || wrote
		}
		if bus.port6Actual&0x40 == 0 && bus.port6DDR&0x40 != 0 {
			// The top slot has no program line; it is held high.
			wrote = bus.pk[2].WriteControl(control|pack.PinSPGMB, bus.port2Actual) || wrote
		} else {
			bus.pk[2].Reset()
		}
	}

	if bus.vpp21Charged && wrote {
		bus.vpp21Charged = false
	}
}

// readPort2 folds the selected packs' data output into port 2's input
// bits. Contributions OR together on the shared bus.
func (bus *Bus) readPort2() {
	if bus.port6Actual&0x80 != 0 || bus.port6DDR&0x80 == 0 || bus.port2DDR == 0xFF {
		return
	}
	var result uint8
	if bus.port6Actual&0x10 == 0 && bus.port6DDR&0x10 != 0 {
		result |= bus.pk[0].ReadData()
	}
	if bus.port6Actual&0x20 == 0 && bus.port6DDR&0x20 != 0 {
		result |= bus.pk[1].ReadData()
	}
	if bus.port6Actual&0x40 == 0 && bus.port6DDR&0x40 != 0 {
		result |= bus.pk[2].ReadData()
	}
	bus.port2Actual = (bus.port2Proc & bus.port2DDR) + (result &^ bus.port2DDR)
}

// IncFrame advances the timing counters by the cycles one instruction
// consumed. Timer 1 zeroes and latches the compare flag when FRC
// reaches OCR.
func (bus *Bus) IncFrame(ticks int) {
	frc := uint32(bus.timer1FRC) + uint32(ticks)
	if frc >= uint32(bus.timer1OCR) {
		bus.ociDue = true
		bus.timer1FRC = 0
	} else {
		bus.timer1FRC = uint16(frc)
	}
	bus.ticksToNMI += ticks
}

// IsOCIDue consumes the output-compare latch. While switched off it
// also polls ON/CLEAR to wake the machine.
func (bus *Bus) IsOCIDue() bool {
	if !bus.ociDue {
		return false
	}
	bus.ociDue = false

	if bus.off && bus.kbd.IsOnPressed() {
		bus.SwitchOn()
	}

	return bus.timer1CSR&0x08 != 0
}

// IsNMIDue reports an NMI opportunity. When routed to the counter, it
// increments the keyboard counter instead; a counter overflow powers
// the machine on.
func (bus *Bus) IsNMIDue() bool {
	if bus.ticksToNMI < ticksPerNMI {
		return false
	}
	bus.ticksToNMI = 0

	if bus.nmiToCounter {
		bus.kbd.IncrementCounter()
		if bus.kbd.CounterHasOverflowed() {
			bus.SwitchOn()
		}
		return false
	}
	return true
}

// Snapshot returns the bus state block.
func (bus *Bus) Snapshot() []uint8 {
	flag := func(b bool) uint8 {
		if b {
			return 1
		}
		return 0
	}
	return []uint8{
		flag(bus.off),
		0, // reserved
		flag(bus.ociDue),
		flag(bus.nmiToCounter),
		flag(bus.scaAlarmHigh),
		flag(bus.vpp21Charged),
		bus.port2Proc, bus.port2Actual, bus.port2DDR,
		bus.port6Proc, bus.port6Actual, bus.port6DDR,
		bus.port5RCR,
		uint8(bus.timer1OCR >> 8), uint8(bus.timer1OCR),
		uint8(bus.timer1FRC >> 8), uint8(bus.timer1FRC),
		bus.timer1CSR,
		uint8(bus.ticksToNMI >> 16), uint8(bus.ticksToNMI >> 8), uint8(bus.ticksToNMI),
	}
}

// Restore reloads the bus state, returning bytes consumed.
func (bus *Bus) Restore(data []uint8) int {
	bus.off = data[0] != 0
	bus.ociDue = data[2] != 0
	bus.nmiToCounter = data[3] != 0
	bus.scaAlarmHigh = data[4] != 0
	bus.vpp21Charged = data[5] != 0
	bus.port2Proc = data[6]
	bus.port2Actual = data[7]
	bus.port2DDR = data[8]
	bus.port6Proc = data[9]
	bus.port6Actual = data[10]
	bus.port6DDR = data[11]
	bus.port5RCR = data[12]
	bus.timer1OCR = uint16(data[13])<<8 | uint16(data[14])
	bus.timer1FRC = uint16(data[15])<<8 | uint16(data[16])
	bus.timer1CSR = data[17]
	bus.ticksToNMI = int(data[18])<<16 | int(data[19])<<8 | int(data[20])
	return 21
}
