/*
 * org2 - Pack slot state machines.
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

package pack

import (
	"fmt"

	"github.com/hugojpinto/psion-org2-sdk/opk"
)

// Control pin bits handed to WriteControl. The bus packs these from
// port 6, the 21V latch and the port 2 direction register.
const (
	PinSCLK  = 0x01 // address clock
	PinSMR   = 0x02 // counter master reset
	PinSPGMB = 0x04 // program / page advance, active low
	PinSOEB  = 0x08 // output enable, active low
	PinSVPP  = 0x10 // programming voltage selected
	PinV21V  = 0x20 // 21V charge present
	PinP2DDR = 0x40 // port 2 carries input bits (processor not driving)
)

// Pack kinds.
const (
	KindEmpty = iota
	KindEPROM
	KindRAM
	KindFlash
	KindROM
	KindTopSlot
)

// Addressing modes by capacity.
const (
	AddrLinear    = iota // up to 16K
	AddrPaged            // 32K and 64K
	AddrSegmented        // 128K and up
)

// Hardware identifier words the decoders answer with in ID mode.
const (
	idRAM   = 0x0101
	idFlash = 0xB489
)

// Flash programming walks a small unlock sequence before a data byte
// is accepted.
const (
	flashIdle = iota
	flashUnlock1
	flashUnlock2
	flashArmed
)

// Pack is one slot's cartridge: a data buffer behind an address
// counter, driven by the pin-encoded control bus.
type Pack struct {
	kind   int
	sizeKB int
	data   []uint8

	addrMode int
	counter  uint16 // low counter, 8 bits in paged modes
	page     uint16
	segment  uint16

	lastControl uint8
	flashState  int
}

// Empty returns an unoccupied slot.
func Empty() *Pack {
	return &Pack{kind: KindEmpty}
}

// New builds a pack of the given kind and size in KB.
func New(kind, sizeKB int) (*Pack, error) {
	switch sizeKB {
	case 8, 16, 32, 64, 128:
	default:
		return nil, fmt.Errorf("pack: unsupported size %dK", sizeKB)
	}
	pk := &Pack{kind: kind, sizeKB: sizeKB, data: make([]uint8, sizeKB*1024)}
	switch {
	case sizeKB <= 16:
		pk.addrMode = AddrLinear
	case sizeKB <= 64:
		pk.addrMode = AddrPaged
	default:
		pk.addrMode = AddrSegmented
	}
	if kind == KindEPROM || kind == KindFlash {
		// Erased EPROM and flash read all ones.
		for i := range pk.data {
			pk.data[i] = 0xFF
		}
	}
	return pk, nil
}

// FromOPK loads a pack image. The pack kind follows the header flags,
// the capacity follows the size indicator, and the data block (header,
// records, terminator) lands at the start of the buffer.
func FromOPK(data []uint8) (*Pack, error) {
	img, err := opk.Parse(data)
	if err != nil {
		return nil, err
	}
	kind := KindRAM
	if opk.IsFlashpak(img.Header.Flags) {
		kind = KindFlash
	} else if img.Header.Flags&opk.FlagEPROM != 0 {
		kind = KindEPROM
	}
	sizeKB := img.Header.SizeKB
	if sizeKB == 0 {
		sizeKB = 8
	}
	pk, err := New(kind, sizeKB)
	if err != nil {
		return nil, err
	}
	copy(pk.data, data[6:])
	return pk, nil
}

// Kind returns the pack kind.
func (pk *Pack) Kind() int {
	return pk.kind
}

// SizeKB returns the capacity.
func (pk *Pack) SizeKB() int {
	return pk.sizeKB
}

// Data exposes the backing buffer, used when images are saved back
// out.
func (pk *Pack) Data() []uint8 {
	return pk.data
}

// Reset clears the address counters and any in-flight flash command,
// as pulling pack power does.
func (pk *Pack) Reset() {
	pk.counter = 0
	pk.page = 0
	pk.segment = 0
	pk.lastControl = 0
	pk.flashState = flashIdle
}

// address folds the counter, page and segment registers into a buffer
// offset.
func (pk *Pack) address() int {
	switch pk.addrMode {
	case AddrLinear:
		return int(pk.counter)
	case AddrPaged:
		return int(pk.page)<<8 | int(pk.counter&0xFF)
	default:
		return int(pk.segment)<<14 | (int(pk.page)<<8|int(pk.counter&0xFF))&0x3FFF
	}
}

// inIDMode reports the decoder pin pattern that selects the hardware
// identifier instead of data: output enabled with the programming
// voltage selected while the counter is held in reset.
func (pk *Pack) inIDMode() bool {
	ctl := pk.lastControl
	return ctl&PinSOEB == 0 && ctl&PinSVPP != 0 && ctl&PinSMR != 0
}

// WriteControl drives the control pins with a data bus value and
// reports whether the pack performed a write cycle.
func (pk *Pack) WriteControl(control, data uint8) bool {
	if pk.kind == KindEmpty {
		pk.lastControl = control
		return false
	}
	prev := pk.lastControl
	pk.lastControl = control

	// Counter handling. SMR high holds the counter in reset; SCLK
	// rising edges count while it is low.
	if control&PinSMR != 0 {
		pk.counter = 0
		if control&PinSPGMB == 0 && prev&PinSPGMB != 0 && pk.addrMode != AddrLinear {
			// Page advance strobe while in reset.
			pk.page++
			if int(pk.page)<<8 >= pk.sizeKB*1024 {
				pk.page = 0
			}
		}
	} else if control&PinSCLK != 0 && prev&PinSCLK == 0 {
		pk.counter++
		if pk.addrMode != AddrLinear {
			pk.counter &= 0xFF
		} else if int(pk.counter) >= pk.sizeKB*1024 {
			pk.counter = 0
		}
	}

	// Segment load: the segmented decoder latches the data bus into
	// the segment register on the SVPP pattern with output disabled
	// while the processor drives port 2 (P2DDR flag clear).
	if pk.addrMode == AddrSegmented &&
		control&PinSOEB != 0 && control&PinSVPP != 0 && control&PinP2DDR == 0 {
		pk.segment = uint16(data) & 0x07
	}

	// Write strobe: SPGM_B falling edge with output disabled and the
	// processor driving port 2.
	strobe := control&PinSPGMB == 0 && prev&PinSPGMB != 0 &&
		control&PinSOEB != 0 && control&PinP2DDR == 0 && control&PinSMR == 0

	if !strobe {
		return false
	}

	switch pk.kind {
	case KindROM, KindTopSlot:
		return false
	case KindRAM:
		pk.write(data)
		return true
	case KindEPROM:
		// Programming needs the 21V charge routed to this pack.
		if control&PinV21V == 0 || control&PinSVPP == 0 {
			return false
		}
		// EPROM bits only clear; setting a 0 back to 1 silently
		// fails but the cycle still ran.
		addr := pk.address()
		if addr < len(pk.data) {
			pk.data[addr] &= data
		}
		return true
	case KindFlash:
		pk.flashWrite(data)
		return true
	}
	return false
}

func (pk *Pack) write(data uint8) {
	addr := pk.address()
	if addr < len(pk.data) {
		pk.data[addr] = data
	}
}

// flashWrite advances the unlock sequence AA, 55, A0; the next byte
// programs the current address.
func (pk *Pack) flashWrite(data uint8) {
	switch pk.flashState {
	case flashIdle:
		if data == 0xAA {
			pk.flashState = flashUnlock1
		}
	case flashUnlock1:
		if data == 0x55 {
			pk.flashState = flashUnlock2
		} else {
			pk.flashState = flashIdle
		}
	case flashUnlock2:
		if data == 0xA0 {
			pk.flashState = flashArmed
		} else {
			pk.flashState = flashIdle
		}
	case flashArmed:
		addr := pk.address()
		if addr < len(pk.data) {
			pk.data[addr] &= data
		}
		pk.flashState = flashIdle
	}
}

// ReadData returns the pack's contribution to the shared data bus.
func (pk *Pack) ReadData() uint8 {
	if pk.kind == KindEmpty {
		return 0xFF
	}
	if pk.lastControl&PinSOEB != 0 {
		// Output disabled; contributes nothing to the wired OR.
		return 0
	}
	if pk.inIDMode() {
		var id uint16
		switch pk.kind {
		case KindRAM:
			id = idRAM
		case KindFlash:
			id = idFlash
		default:
			id = 0
		}
		if pk.lastControl&PinSCLK != 0 {
			return uint8(id >> 8)
		}
		return uint8(id)
	}
	addr := pk.address()
	if addr < len(pk.data) {
		return pk.data[addr]
	}
	return 0xFF
}
