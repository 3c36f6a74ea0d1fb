/*
 * org2 - Pack header checksum rules.
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

package opk

import "fmt"

// The header checksum is the sum modulo 65536 of the big-endian words
// at offsets 0, 2, 4 and 6. The machine itself never verifies it:
// write and copy protection bits are stamped into the flags byte
// after the sum was taken, so a mismatch with the protection bits
// cleared is the normal state of a protected pack. Flashpaks reuse
// the top bit of the checksum word as a write-protect flag, so only
// the low 15 bits carry checksum there.

// HeaderChecksum sums the first eight header bytes as four big-endian
// words.
func HeaderChecksum(header []uint8) uint16 {
	var sum uint16
	for i := 0; i < 8; i += 2 {
		sum += uint16(header[i])<<8 | uint16(header[i+1])
	}
	return sum
}

// Analysis is the outcome of checking a stored header checksum.
type Analysis struct {
	Valid                  bool
	StoredChecksum         uint16
	CalculatedChecksum     uint16
	ValidAfterStripping    bool  // matches once protection bits are cleared
	ProtectionBits         uint8 // the bits that were stamped post-checksum
	OriginalFlags          uint8 // flags before the protection bits were added
	IsFlashpak             bool
	FlashpakWriteProtected bool
	Message                string
}

// AnalyzeChecksum checks a 10 byte header against its stored
// checksum, retrying with protection bits cleared when the direct
// comparison fails.
func AnalyzeChecksum(header []uint8) Analysis {
	stored := uint16(header[8])<<8 | uint16(header[9])
	calc := HeaderChecksum(header)

	analysis := Analysis{
		StoredChecksum:     stored,
		CalculatedChecksum: calc,
		IsFlashpak:         IsFlashpak(header[0]),
	}

	compare := func(a, b uint16) bool { return a == b }
	if analysis.IsFlashpak {
		analysis.FlashpakWriteProtected = stored&0x8000 == 0
		compare = func(a, b uint16) bool { return a&0x7FFF == b&0x7FFF }
	}

	if compare(stored, calc) {
		analysis.Valid = true
		analysis.Message = "checksum valid"
		return analysis
	}

	// Retry with each combination of protection bits cleared on a
	// trial copy of the header.
	trial := make([]uint8, 8)
	for _, bits := range []uint8{FlagWriteProtect, FlagCopyProtect, FlagWriteProtect | FlagCopyProtect} {
		if header[0]&bits != bits {
			continue
		}
		copy(trial, header[:8])
		trial[0] &^= bits
		if compare(stored, HeaderChecksum(trial)) {
			analysis.ValidAfterStripping = true
			analysis.ProtectionBits = bits
			analysis.OriginalFlags = trial[0]
			analysis.Message = fmt.Sprintf(
				"checksum valid with protection bits $%02X added post-checksum", bits)
			return analysis
		}
	}

	analysis.Message = fmt.Sprintf(
		"checksum mismatch: stored $%04X calculated $%04X", stored, calc)
	return analysis
}
