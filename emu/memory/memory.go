/*
 * org2 - Banked RAM and ROM.
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

package memory

// Memory map:
//
//	$0040-$00FF  processor zero-page RAM, always present
//	$0400-$7FFF  main RAM, extent depends on the model
//	$8000-$FFFF  ROM, 32KB window
//
// RAM layouts: 8KB at $2000-$3FFF, 16KB at $2000-$5FFF, 32KB and up at
// $0000-$7FFF with bank switching above $4000. ROM keeps its upper
// 16KB ($C000-$FFFF) fixed and bank switches $8000-$BFFF.
const (
	zeroPageLow  = 0x0040
	zeroPageHigh = 0x0100
	bankAddress  = 0x4000
	romLow       = 0x8000
	romBankSize  = 0x4000
)

// RAM with bank switching. The backing slice holds the zero page, the
// linear region and every bank; bank points at the slab currently
// mapped at $4000-$7FFF.
type RAM struct {
	data []uint8
	low  uint16 // First main-RAM address.
	high uint32 // One past the last main-RAM address.
	bank int    // Offset of the active bank within data.
}

// NewRAM builds a RAM of the given size in KB (8, 16, 32, 64 or 96).
func NewRAM(sizeKB int) *RAM {
	ram := &RAM{}
	switch sizeKB {
	case 8:
		ram.low = 0x2000
		ram.high = 0x4000
		ram.data = make([]uint8, 16*1024)
	case 16:
		ram.low = 0x2000
		ram.high = 0x6000
		ram.data = make([]uint8, 24*1024)
	default: // 32, 64, 96
		ram.low = 0x0000
		ram.high = 0x8000
		ram.data = make([]uint8, sizeKB*1024)
	}
	ram.bank = bankAddress
	return ram
}

// Read a byte. Addresses outside the populated range read as $FF.
func (ram *RAM) Read(addr uint16) uint8 {
	if addr >= zeroPageLow && addr < zeroPageHigh {
		return ram.data[addr]
	}
	if uint32(addr) >= ram.high || addr < ram.low {
		return 0xFF
	}
	if addr < bankAddress {
		return ram.data[addr]
	}
	return ram.data[int(addr)-bankAddress+ram.bank]
}

// Write a byte. Writes outside the populated range are dropped.
func (ram *RAM) Write(addr uint16, value uint8) {
	if addr >= zeroPageLow && addr < zeroPageHigh {
		ram.data[addr] = value
		return
	}
	if uint32(addr) >= ram.high || addr < ram.low {
		return
	}
	if addr < bankAddress {
		ram.data[addr] = value
		return
	}
	ram.data[int(addr)-bankAddress+ram.bank] = value
}

// NextBank selects the next RAM bank, wrapping to the first.
func (ram *RAM) NextBank() {
	ram.bank += bankAddress
	if ram.bank >= len(ram.data) {
		ram.bank = bankAddress
	}
}

// ResetBank returns to the first bank.
func (ram *RAM) ResetBank() {
	ram.bank = bankAddress
}

// Snapshot returns the RAM state: a small geometry prefix, the zero
// page, then main RAM through the last bank.
func (ram *RAM) Snapshot() []uint8 {
	out := []uint8{
		uint8(len(ram.data) / 1024),
		uint8(ram.bank >> 8), uint8(ram.bank),
		uint8(ram.low >> 8), uint8(ram.low),
		uint8(ram.high >> 8), uint8(ram.high),
	}
	out = append(out, ram.data[zeroPageLow:zeroPageHigh]...)
	out = append(out, ram.data[ram.low:]...)
	return out
}

// Restore reloads RAM state from snapshot data, returning the number
// of bytes consumed.
func (ram *RAM) Restore(data []uint8) int {
	size := int(data[0])
	ram.data = make([]uint8, size*1024)
	ram.bank = int(data[1])<<8 | int(data[2])
	ram.low = uint16(data[3])<<8 | uint16(data[4])
	ram.high = uint32(data[5])<<8 | uint32(data[6])
	pos := 7
	for i := zeroPageLow; i < zeroPageHigh; i++ {
		ram.data[i] = data[pos]
		pos++
	}
	for i := int(ram.low); i < len(ram.data); i++ {
		ram.data[i] = data[pos]
		pos++
	}
	return pos
}

// ROM with bank switching. Bank 0 presents the first 32KB linearly;
// higher banks replace $8000-$BFFF in 16KB steps while $C000-$FFFF
// always reads from the start of the image.
type ROM struct {
	data []uint8
	bank int
}

// NewROM wraps a ROM image. A nil image reads as an empty 32KB part.
func NewROM(data []uint8) *ROM {
	if data == nil {
		data = make([]uint8, 0x8000)
	}
	return &ROM{data: data}
}

// Read a byte from the ROM window at $8000-$FFFF.
func (rom *ROM) Read(addr uint16) uint8 {
	if addr < romLow {
		return 0xFF
	}
	index := int(addr) - romLow
	if index >= romBankSize || rom.bank == 0 {
		if index < len(rom.data) {
			return rom.data[index]
		}
		return 0xFF
	}
	index += rom.bank
	if index < len(rom.data) {
		return rom.data[index]
	}
	return 0xFF
}

// NextBank selects the next ROM bank. Bank 1 starts past the first
// 32KB; banks then step by 16KB and wrap to bank 0.
func (rom *ROM) NextBank() {
	if rom.bank == 0 {
		rom.bank = 0x8000
	} else {
		rom.bank += romBankSize
	}
	if rom.bank >= len(rom.data) {
		rom.bank = 0
	}
}

// ResetBank returns to bank 0.
func (rom *ROM) ResetBank() {
	rom.bank = 0
}

// Snapshot returns the bank register only; the image itself is loaded
// separately.
func (rom *ROM) Snapshot() []uint8 {
	return []uint8{uint8(rom.bank >> 8), uint8(rom.bank)}
}

// Restore reloads the bank register, returning bytes consumed.
func (rom *ROM) Restore(data []uint8) int {
	rom.bank = int(data[0])<<8 | int(data[1])
	return 2
}

// Memory routes plain memory traffic between RAM and ROM. Processor
// registers and the semi-custom chip live on the bus, not here.
type Memory struct {
	RAM *RAM
	ROM *ROM
}

// NewMemory builds the memory subsystem for a RAM size and ROM image.
func NewMemory(ramSizeKB int, romData []uint8) *Memory {
	return &Memory{
		RAM: NewRAM(ramSizeKB),
		ROM: NewROM(romData),
	}
}

// Read a byte.
func (mem *Memory) Read(addr uint16) uint8 {
	if addr >= romLow {
		return mem.ROM.Read(addr)
	}
	return mem.RAM.Read(addr)
}

// Write a byte. ROM writes are dropped.
func (mem *Memory) Write(addr uint16, value uint8) {
	if addr >= romLow {
		return
	}
	mem.RAM.Write(addr, value)
}

// NextRAMBank advances the RAM bank register.
func (mem *Memory) NextRAMBank() {
	mem.RAM.NextBank()
}

// NextROMBank advances the ROM bank register.
func (mem *Memory) NextROMBank() {
	mem.ROM.NextBank()
}

// ResetBanks returns both bank registers to the ground bank.
func (mem *Memory) ResetBanks() {
	mem.RAM.ResetBank()
	mem.ROM.ResetBank()
}

// Snapshot returns ROM state followed by RAM state.
func (mem *Memory) Snapshot() []uint8 {
	out := mem.ROM.Snapshot()
	return append(out, mem.RAM.Snapshot()...)
}

// Restore reloads memory state, returning bytes consumed.
func (mem *Memory) Restore(data []uint8) int {
	used := mem.ROM.Restore(data)
	used += mem.RAM.Restore(data[used:])
	return used
}
