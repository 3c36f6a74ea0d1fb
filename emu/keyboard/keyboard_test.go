package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPressRelease(t *testing.T) {
	kbd := New(LayoutNormal)
	assert.NoError(t, kbd.Press("A"))

	// A sits on row 1, column 0.
	kbd.ResetCounter()
	kbd.IncrementCounter()
	assert.Equal(t, uint8(0x01), kbd.ReadPort5())

	assert.NoError(t, kbd.Release("A"))
	assert.Equal(t, uint8(0x00), kbd.ReadPort5())

	assert.Error(t, kbd.Press("?!"))
}

func TestRowSelection(t *testing.T) {
	kbd := New(LayoutNormal)
	assert.NoError(t, kbd.Press("EXE")) // row 5, column 4

	kbd.ResetCounter()
	assert.Equal(t, uint8(0x00), kbd.ReadPort5(), "row 0 has no pressed key")
	for i := 0; i < 5; i++ {
		kbd.IncrementCounter()
	}
	assert.Equal(t, uint8(0x10), kbd.ReadPort5())
}

func TestOnClearLine(t *testing.T) {
	kbd := New(LayoutNormal)
	assert.False(t, kbd.IsOnPressed())
	assert.NoError(t, kbd.Press("ON"))
	assert.True(t, kbd.IsOnPressed())
	assert.Equal(t, uint8(0x80), kbd.ReadPort5()&0x80)
	assert.NoError(t, kbd.Release("ON"))
	assert.False(t, kbd.IsOnPressed())
}

// Counter overflow out of bit 12 latches once and is consumed on read.
func TestCounterOverflow(t *testing.T) {
	kbd := New(LayoutNormal)
	for i := 0; i < 0x1FFF; i++ {
		kbd.IncrementCounter()
	}
	assert.False(t, kbd.CounterHasOverflowed())
	kbd.IncrementCounter()
	assert.Equal(t, uint16(0), kbd.Counter())
	assert.True(t, kbd.CounterHasOverflowed())
	assert.False(t, kbd.CounterHasOverflowed(), "latch is consumed")
}

func TestLayouts(t *testing.T) {
	normal := New(LayoutNormal)
	assert.Error(t, normal.Press("5"), "digits need a POS layout")

	pos := New(LayoutPOS200)
	assert.NoError(t, pos.Press("5"))
	pos.ResetCounter()
	pos.IncrementCounter()
	pos.IncrementCounter() // row 2 holds 4 5 6
	assert.Equal(t, uint8(0x02), pos.ReadPort5())
}
