/*
 * org2 - HD44780 compatible LCD controller.
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

package display

// The Organiser II drives an HD44780 compatible controller: 128 bytes
// of DDRAM holding character codes, 64 bytes of CGRAM holding the
// eight user glyphs, and a command register decoded by leading bit.
// 2-line models show 16x2, 4-line models 20x4; the screen grid maps
// onto DDRAM through per-row base addresses.

const (
	// Character cell geometry.
	GlyphWidth  = 5
	GlyphHeight = 8
)

// DDRAM base address of each screen row, per geometry.
var rowBase2 = [2]uint8{0x00, 0x40}
var rowBase4 = [4]uint8{0x00, 0x40, 0x14, 0x54}

// Display holds the full controller state.
type Display struct {
	lines int // 2 or 4
	cols  int // 16 or 20

	ddram [128]uint8
	cgram [64]uint8

	on            bool
	cursorVisible bool
	cursorBlink   bool
	cursor        uint8 // linear DDRAM or CGRAM address
	increment     bool  // entry mode I/D bit
	shiftDisplay  bool  // entry mode S bit
	shiftOffset   int
	inCGRAM       bool // last set-address command selected CGRAM
	functionSet   uint8
}

// New builds a display for the given line count (2 or 4).
func New(lines int) *Display {
	disp := &Display{lines: lines, cols: 16, increment: true}
	if lines == 4 {
		disp.cols = 20
	}
	disp.Clear()
	return disp
}

// Lines returns the number of display rows.
func (disp *Display) Lines() int {
	return disp.lines
}

// Cols returns the number of display columns.
func (disp *Display) Cols() int {
	return disp.cols
}

// IsOn reports the display power state.
func (disp *Display) IsOn() bool {
	return disp.on
}

// SwitchOn powers the display on.
func (disp *Display) SwitchOn() {
	disp.on = true
}

// SwitchOff powers the display off.
func (disp *Display) SwitchOff() {
	disp.on = false
}

// Cursor returns the linear DDRAM cursor address.
func (disp *Display) Cursor() uint8 {
	return disp.cursor
}

// Clear blanks DDRAM, homes the cursor and selects increment mode.
func (disp *Display) Clear() {
	for i := range disp.ddram {
		disp.ddram[i] = 0x20
	}
	disp.cursor = 0
	disp.shiftOffset = 0
	disp.increment = true
	disp.inCGRAM = false
}

// Command executes a byte written to the command register.
func (disp *Display) Command(cmd uint8) {
	switch {
	case cmd == 0:
		// No-op.
	case cmd == 0x01: // Clear display
		disp.Clear()
	case cmd < 0x04: // Return home
		disp.cursor = 0
		disp.shiftOffset = 0
		disp.inCGRAM = false
	case cmd < 0x08: // Entry mode set
		disp.increment = cmd&0x02 != 0
		disp.shiftDisplay = cmd&0x01 != 0
	case cmd < 0x10: // Display on/off control
		disp.on = cmd&0x04 != 0
		disp.cursorVisible = cmd&0x02 != 0
		disp.cursorBlink = cmd&0x01 != 0
	case cmd < 0x20: // Cursor or display shift
		right := cmd&0x04 != 0
		if cmd&0x08 != 0 {
			if right {
				disp.shiftOffset++
			} else {
				disp.shiftOffset--
			}
		} else {
			if right {
				disp.cursor = (disp.cursor + 1) & 0x7F
			} else {
				disp.cursor = (disp.cursor - 1) & 0x7F
			}
		}
	case cmd < 0x40: // Function set
		disp.functionSet = cmd
	case cmd < 0x80: // Set CGRAM address
		disp.cursor = cmd & 0x3F
		disp.inCGRAM = true
	default: // Set DDRAM address
		disp.cursor = cmd & 0x7F
		disp.inCGRAM = false
	}
}

// WriteData deposits a byte at the current address and auto-advances
// per the entry mode. The cursor always stays a valid address.
func (disp *Display) WriteData(value uint8) {
	if disp.inCGRAM {
		disp.cgram[disp.cursor&0x3F] = value
	} else {
		disp.ddram[disp.cursor&0x7F] = value
	}
	disp.advance()
}

// ReadData returns the byte at the current address then auto-advances.
func (disp *Display) ReadData() uint8 {
	var value uint8
	if disp.inCGRAM {
		value = disp.cgram[disp.cursor&0x3F]
	} else {
		value = disp.ddram[disp.cursor&0x7F]
	}
	disp.advance()
	return value
}

func (disp *Display) advance() {
	mask := uint8(0x7F)
	if disp.inCGRAM {
		mask = 0x3F
	}
	if disp.increment {
		disp.cursor = (disp.cursor + 1) & mask
	} else {
		disp.cursor = (disp.cursor - 1) & mask
	}
	if disp.shiftDisplay && !disp.inCGRAM {
		if disp.increment {
			disp.shiftOffset++
		} else {
			disp.shiftOffset--
		}
	}
}

// rowBases returns the DDRAM base address per screen row.
func (disp *Display) rowBases() []uint8 {
	if disp.lines == 4 {
		return rowBase4[:]
	}
	return rowBase2[:]
}

// CellCode returns the character code displayed at (row, col).
func (disp *Display) CellCode(row, col int) uint8 {
	return disp.ddram[(int(disp.rowBases()[row])+col)&0x7F]
}

// TextGrid returns the screen contents as one string per row. Codes
// below 32 render as spaces in the text view.
func (disp *Display) TextGrid() []string {
	rows := make([]string, disp.lines)
	for r := 0; r < disp.lines; r++ {
		line := make([]byte, disp.cols)
		for c := 0; c < disp.cols; c++ {
			code := disp.CellCode(r, c)
			if code < 0x20 || code > 0x7E {
				code = ' '
			}
			line[c] = code
		}
		rows[r] = string(line)
	}
	return rows
}

// Text returns all rows joined by newlines.
func (disp *Display) Text() string {
	grid := disp.TextGrid()
	out := ""
	for i, row := range grid {
		if i > 0 {
			out += "\n"
		}
		out += row
	}
	return out
}

// glyph returns the 8 rows of the 5 bit wide bitmap for a character
// code. Codes 0-7 come from CGRAM, 8-31 are blank, 32 up use the
// built-in font (the upper half folds onto the lower).
func (disp *Display) glyph(code uint8) [GlyphHeight]uint8 {
	var rows [GlyphHeight]uint8
	switch {
	case code < 8:
		base := int(code) * 8
		for i := 0; i < GlyphHeight; i++ {
			rows[i] = disp.cgram[base+i] & 0x1F
		}
	case code < 32:
		// blank
	default:
		if code >= 0x80 {
			return disp.glyph(code & 0x7F)
		}
		cols := font5x8[(code&0x7F)-32]
		// Font storage is column major with bit 0 at the top row.
		for y := 0; y < GlyphHeight-1; y++ {
			var row uint8
			for x := 0; x < GlyphWidth; x++ {
				if cols[x]&(1<<uint(y)) != 0 {
					row |= 0x10 >> uint(x)
				}
			}
			rows[y] = row
		}
	}
	return rows
}

// Pixels renders the display as rows of booleans, one per pixel, true
// where the pixel is dark. A powered down display renders all clear.
func (disp *Display) Pixels() [][]bool {
	height := disp.lines * GlyphHeight
	width := disp.cols * GlyphWidth
	out := make([][]bool, height)
	for y := range out {
		out[y] = make([]bool, width)
	}
	if !disp.on {
		return out
	}
	for r := 0; r < disp.lines; r++ {
		for c := 0; c < disp.cols; c++ {
			glyph := disp.glyph(disp.CellCode(r, c))
			for y := 0; y < GlyphHeight; y++ {
				row := glyph[y]
				for x := 0; x < GlyphWidth; x++ {
					if row&(0x10>>uint(x)) != 0 {
						out[r*GlyphHeight+y][c*GlyphWidth+x] = true
					}
				}
			}
		}
	}
	return out
}

// MatrixOptions controls the LCD-matrix rendering: gaps between
// pixels, between character cells, and the bezel around the panel.
type MatrixOptions struct {
	PixelGap int
	CharGap  int
	Bezel    int
}

// Matrix renders an LCD-matrix style image with gaps inserted. The
// result is a grid of booleans, true where a pixel is dark.
func (disp *Display) Matrix(opts MatrixOptions) [][]bool {
	pixels := disp.Pixels()
	cellW := GlyphWidth + (GlyphWidth-1)*opts.PixelGap
	cellH := GlyphHeight + (GlyphHeight-1)*opts.PixelGap
	width := disp.cols*cellW + (disp.cols-1)*opts.CharGap + 2*opts.Bezel
	height := disp.lines*cellH + (disp.lines-1)*opts.CharGap + 2*opts.Bezel
	out := make([][]bool, height)
	for y := range out {
		out[y] = make([]bool, width)
	}
	for r := 0; r < disp.lines; r++ {
		for c := 0; c < disp.cols; c++ {
			originX := opts.Bezel + c*(cellW+opts.CharGap)
			originY := opts.Bezel + r*(cellH+opts.CharGap)
			for y := 0; y < GlyphHeight; y++ {
				for x := 0; x < GlyphWidth; x++ {
					if pixels[r*GlyphHeight+y][c*GlyphWidth+x] {
						px := originX + x*(1+opts.PixelGap)
						py := originY + y*(1+opts.PixelGap)
						out[py][px] = true
					}
				}
			}
		}
	}
	return out
}

// Snapshot returns the controller state: a control prefix followed by
// DDRAM and CGRAM.
func (disp *Display) Snapshot() []uint8 {
	flags := uint8(0)
	if disp.on {
		flags |= 0x01
	}
	if disp.cursorVisible {
		flags |= 0x02
	}
	if disp.cursorBlink {
		flags |= 0x04
	}
	if disp.increment {
		flags |= 0x08
	}
	if disp.shiftDisplay {
		flags |= 0x10
	}
	if disp.inCGRAM {
		flags |= 0x20
	}
	out := []uint8{
		uint8(disp.lines),
		flags,
		disp.cursor,
		uint8(int8(disp.shiftOffset)),
		disp.functionSet,
	}
	out = append(out, disp.ddram[:]...)
	out = append(out, disp.cgram[:]...)
	return out
}

// Restore reloads controller state, returning bytes consumed.
func (disp *Display) Restore(data []uint8) int {
	disp.lines = int(data[0])
	disp.cols = 16
	if disp.lines == 4 {
		disp.cols = 20
	}
	flags := data[1]
	disp.on = flags&0x01 != 0
	disp.cursorVisible = flags&0x02 != 0
	disp.cursorBlink = flags&0x04 != 0
	disp.increment = flags&0x08 != 0
	disp.shiftDisplay = flags&0x10 != 0
	disp.inCGRAM = flags&0x20 != 0
	disp.cursor = data[2]
	disp.shiftOffset = int(int8(data[3]))
	disp.functionSet = data[4]
	pos := 5
	copy(disp.ddram[:], data[pos:pos+128])
	pos += 128
	copy(disp.cgram[:], data[pos:pos+64])
	pos += 64
	return pos
}
