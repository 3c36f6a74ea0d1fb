package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Clear then write HELLO: line 0 starts with HELLO, cursor sits at
// column 5.
func TestWriteText(t *testing.T) {
	disp := New(2)
	disp.SwitchOn()
	disp.Command(0x01) // clear
	for _, ch := range "HELLO" {
		disp.WriteData(uint8(ch))
	}
	assert.True(t, strings.HasPrefix(disp.TextGrid()[0], "HELLO"))
	assert.Equal(t, uint8(5), disp.Cursor())
}

// Row bases differ per geometry: 4-line rows interleave in DDRAM.
func TestRowMapping(t *testing.T) {
	disp := New(4)
	disp.Command(0x80 | 0x14) // DDRAM address of row 2, column 0
	disp.WriteData('X')
	assert.Equal(t, uint8('X'), disp.CellCode(2, 0))

	disp2 := New(2)
	disp2.Command(0x80 | 0x40) // row 1
	disp2.WriteData('Y')
	assert.Equal(t, uint8('Y'), disp2.CellCode(1, 0))
}

func TestEntryModeDecrement(t *testing.T) {
	disp := New(2)
	disp.Command(0x80 | 0x05)
	disp.Command(0x04) // entry mode: decrement, no shift
	disp.WriteData('A')
	assert.Equal(t, uint8(4), disp.Cursor())
	// Cursor wraps and stays a valid DDRAM address.
	disp.Command(0x80)
	disp.WriteData('B')
	assert.Equal(t, uint8(0x7F), disp.Cursor())
}

func TestDisplayControl(t *testing.T) {
	disp := New(2)
	disp.Command(0x0F)
	assert.True(t, disp.IsOn())
	assert.True(t, disp.cursorVisible)
	assert.True(t, disp.cursorBlink)
	disp.Command(0x08)
	assert.False(t, disp.IsOn())
}

// CGRAM writes define user glyphs for codes 0-7 and do not disturb
// the text.
func TestUserGlyphs(t *testing.T) {
	disp := New(2)
	disp.SwitchOn()
	disp.Command(0x40) // CGRAM address 0
	for i := 0; i < 8; i++ {
		disp.WriteData(0x1F) // solid rows
	}
	disp.Command(0x80) // back to DDRAM
	disp.WriteData(0x00)

	pixels := disp.Pixels()
	// Glyph 0 at cell (0,0) renders fully dark.
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			assert.True(t, pixels[y][x], "pixel %d,%d", x, y)
		}
	}
}

func TestReadDataAdvances(t *testing.T) {
	disp := New(2)
	disp.Command(0x01)
	disp.WriteData('A')
	disp.WriteData('B')
	disp.Command(0x80)
	assert.Equal(t, uint8('A'), disp.ReadData())
	assert.Equal(t, uint8('B'), disp.ReadData())
}

// Control codes 8-31 are blank, printable codes light pixels.
func TestPixelRendering(t *testing.T) {
	disp := New(2)
	disp.SwitchOn()
	disp.Command(0x01)
	disp.WriteData('H')
	disp.Command(0x80 | 0x01)
	disp.WriteData(0x0A) // control code, blank

	pixels := disp.Pixels()
	lit := 0
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if pixels[y][x] {
				lit++
			}
			assert.False(t, pixels[y][GlyphWidth+x], "control code must be blank")
		}
	}
	assert.Greater(t, lit, 0, "H must light pixels")
}

// A powered-down panel renders clear regardless of DDRAM contents.
func TestPixelsWhenOff(t *testing.T) {
	disp := New(2)
	disp.Command(0x01)
	disp.WriteData('W')
	disp.SwitchOff()
	for _, row := range disp.Pixels() {
		for _, px := range row {
			assert.False(t, px)
		}
	}
}

func TestMatrixGeometry(t *testing.T) {
	disp := New(2)
	disp.SwitchOn()
	opts := MatrixOptions{PixelGap: 1, CharGap: 2, Bezel: 3}
	img := disp.Matrix(opts)
	cellW := GlyphWidth + (GlyphWidth-1)*opts.PixelGap
	cellH := GlyphHeight + (GlyphHeight-1)*opts.PixelGap
	assert.Equal(t, 2*cellH+opts.CharGap+2*opts.Bezel, len(img))
	assert.Equal(t, 16*cellW+15*opts.CharGap+2*opts.Bezel, len(img[0]))
}

func TestSnapshotRoundTrip(t *testing.T) {
	disp := New(4)
	disp.SwitchOn()
	disp.Command(0x01)
	for _, ch := range "SNAP" {
		disp.WriteData(uint8(ch))
	}
	snap := disp.Snapshot()

	other := New(4)
	used := other.Restore(snap)
	assert.Equal(t, len(snap), used)
	assert.Equal(t, disp.Text(), other.Text())
	assert.Equal(t, disp.Cursor(), other.Cursor())
	assert.True(t, other.IsOn())
}
