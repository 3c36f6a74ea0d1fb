/*
 * org2 - OPK record framing and pack header.
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

// Package opk reads and writes Psion pack images. A pack image is a
// 6 byte OPK envelope, a 10 byte pack header, a run of length
// prefixed records and an FF FF terminator.
package opk

import "fmt"

// Record type bytes. Data rows use $90-$FE; a type with the high bit
// cleared marks a deleted record.
const (
	TypeLongMarker  = 0x80
	TypeDataFile    = 0x81
	TypeDiary       = 0x82
	TypeProcedure   = 0x83
	TypeComms       = 0x84
	TypeSpreadsheet = 0x85
	TypePager       = 0x86
	TypeNotepad     = 0x87
	TypeDataFirst   = 0x90
	TypeDataLast    = 0xFE
)

// Pack header flag bits. Protection bits are commonly stamped after
// the checksum has been computed.
const (
	FlagEPROM        = 0x02
	FlagPaged        = 0x04
	FlagWriteProtect = 0x08
	FlagBootable     = 0x10
	FlagCopyProtect  = 0x20
	FlagFlash        = 0x40

	// Flashpaks carry both the flash and EPROM bits.
	flashpakMask = 0x42
)

// A record holds a type byte plus its payload. Short or long framing
// is picked from the payload size when encoding, except that a
// long-marker record with a one byte payload always takes the long
// form.
type Record struct {
	Type    uint8
	Payload []uint8
}

// Deleted reports whether the record was deleted in place (type high
// bit cleared).
func (rec Record) Deleted() bool {
	return rec.Type < 0x80
}

// maxShortPayload is the largest payload that fits the short framing:
// the length byte covers type plus payload and must not reach $FF.
const maxShortPayload = 0xFE - 1

// Encode frames the record, short form when the payload fits. The
// short form of a one byte long-marker record would start with 02 80,
// which Parse reads as a long record header, so it takes the long form.
func (rec Record) Encode() []uint8 {
	ambiguous := rec.Type == TypeLongMarker && len(rec.Payload) == 1
	if len(rec.Payload) <= maxShortPayload && !ambiguous {
		out := make([]uint8, 0, len(rec.Payload)+2)
		out = append(out, uint8(len(rec.Payload)+1), rec.Type)
		return append(out, rec.Payload...)
	}
	out := make([]uint8, 0, len(rec.Payload)+4)
	out = append(out, 0x02, TypeLongMarker,
		uint8(len(rec.Payload)>>8), uint8(len(rec.Payload)))
	return append(out, rec.Payload...)
}

// Header is the 10 byte pack header.
type Header struct {
	Flags        uint8
	SizeKB       int // stored in units of 8KB
	Year         uint8
	Month        uint8
	Day          uint8
	Hour         uint8
	Reserved     uint8
	FrameCounter uint8
	Checksum     uint16
}

// Encode serializes the header; the checksum field is written as is.
func (hdr Header) Encode() []uint8 {
	return []uint8{
		hdr.Flags, uint8(hdr.SizeKB / 8),
		hdr.Year, hdr.Month, hdr.Day, hdr.Hour,
		hdr.Reserved, hdr.FrameCounter,
		uint8(hdr.Checksum >> 8), uint8(hdr.Checksum),
	}
}

// decodeHeader reads a header from 10 bytes.
func decodeHeader(data []uint8) Header {
	return Header{
		Flags:        data[0],
		SizeKB:       int(data[1]) * 8,
		Year:         data[2],
		Month:        data[3],
		Day:          data[4],
		Hour:         data[5],
		Reserved:     data[6],
		FrameCounter: data[7],
		Checksum:     uint16(data[8])<<8 | uint16(data[9]),
	}
}

// IsFlashpak reports whether the flags byte identifies a flashpak.
func IsFlashpak(flags uint8) bool {
	return flags&flashpakMask == flashpakMask
}

// ValidProcName checks the procedure naming rule: ASCII uppercase,
// 1 to 8 characters, starting with a letter.
func ValidProcName(name string) error {
	if len(name) == 0 || len(name) > 8 {
		return fmt.Errorf("procedure name %q must be 1 to 8 characters", name)
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch >= 'A' && ch <= 'Z' {
			continue
		}
		if i > 0 && ch >= '0' && ch <= '9' {
			continue
		}
		return fmt.Errorf("procedure name %q must be uppercase letters and digits, starting with a letter", name)
	}
	return nil
}

// FormatError reports a malformed pack image at a byte offset.
type FormatError struct {
	Offset int
	Msg    string
}

func (err *FormatError) Error() string {
	return fmt.Sprintf("opk: offset %d: %s", err.Offset, err.Msg)
}

// PackSizeError reports a pack size the hardware does not support or
// an overfull image.
type PackSizeError struct {
	SizeKB int
	Msg    string
}

func (err *PackSizeError) Error() string {
	return fmt.Sprintf("opk: pack size %dK: %s", err.SizeKB, err.Msg)
}
