/*
 * org2 - Hex formatting for listings and memory dumps.
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

package hex

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatBytes appends data bytes as hex pairs, optionally spaced.
func FormatBytes(str *strings.Builder, space bool, data []uint8) {
	for _, by := range data {
		str.WriteByte(hexMap[(by>>4)&0xF])
		str.WriteByte(hexMap[by&0xF])
		if space {
			str.WriteByte(' ')
		}
	}
}

// FormatWord appends a 16 bit value as four hex digits.
func FormatWord(str *strings.Builder, word uint16) {
	shift := 12
	for range [4]int{} {
		str.WriteByte(hexMap[(word>>uint(shift))&0xF])
		shift -= 4
	}
}

// Dump renders rows of sixteen bytes with addresses and an ASCII
// gutter, the shape every monitor dump has had since time immemorial.
func Dump(addr uint16, data []uint8) string {
	var str strings.Builder
	for base := 0; base < len(data); base += 16 {
		FormatWord(&str, addr+uint16(base))
		str.WriteString("  ")
		end := base + 16
		if end > len(data) {
			end = len(data)
		}
		FormatBytes(&str, true, data[base:end])
		for i := end; i < base+16; i++ {
			str.WriteString("   ")
		}
		str.WriteByte(' ')
		for _, by := range data[base:end] {
			if by >= 0x20 && by < 0x7F {
				str.WriteByte(by)
			} else {
				str.WriteByte('.')
			}
		}
		str.WriteByte('\n')
	}
	return str.String()
}
