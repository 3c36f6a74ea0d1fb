/*
 * org2 - Scanned keyboard matrix and key counter.
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

package keyboard

import "fmt"

// The keyboard is a scanned matrix. The key counter doubles as the
// row selector (bits 0-3) during scanning and as a watchdog: the
// per-second tick can increment it, and a carry out of bit 12 wakes
// the machine. ON/CLEAR sits on its own line and reads back as bit 7
// of port 5.

// Layout selects which keycap table is active.
type Layout int

const (
	LayoutNormal Layout = iota
	LayoutPOS200
	LayoutAlphaPOS
)

type position struct {
	row, col int
}

// Matrix positions for the standard Organiser II keyboard.
//
//	       col0   col1   col2   col3   col4   col5
//	row 0:  -     MODE   UP     DOWN   LEFT   RIGHT
//	row 1:  A     G      M      S      SHIFT
//	row 2:  B     H      N      T      DEL
//	row 3:  C     I      O      U      Y
//	row 4:  E     K      Q      W      SPACE
//	row 5:  F     L      R      X      EXE
//	row 6:  D     J      P      V      Z
var normalKeys = map[string]position{
	"MODE": {0, 1}, "UP": {0, 2}, "DOWN": {0, 3}, "LEFT": {0, 4}, "RIGHT": {0, 5},
	"A": {1, 0}, "G": {1, 1}, "M": {1, 2}, "S": {1, 3}, "SHIFT": {1, 4},
	"B": {2, 0}, "H": {2, 1}, "N": {2, 2}, "T": {2, 3}, "DEL": {2, 4},
	"C": {3, 0}, "I": {3, 1}, "O": {3, 2}, "U": {3, 3}, "Y": {3, 4},
	"E": {4, 0}, "K": {4, 1}, "Q": {4, 2}, "W": {4, 3}, "SPACE": {4, 4},
	"F": {5, 0}, "L": {5, 1}, "R": {5, 2}, "X": {5, 3}, "EXE": {5, 4},
	"D": {6, 0}, "J": {6, 1}, "P": {6, 2}, "V": {6, 3}, "Z": {6, 4},
}

// POS variants share the electrical matrix; the numeric keycaps land
// on the letter positions row by row.
var pos200Keys = map[string]position{
	"1": {1, 0}, "2": {1, 1}, "3": {1, 2},
	"4": {2, 0}, "5": {2, 1}, "6": {2, 2},
	"7": {3, 0}, "8": {3, 1}, "9": {3, 2},
	"0": {4, 0},
}

// Keyboard holds the matrix state, the ON/CLEAR line and the 13 bit
// key counter with its overflow latch.
type Keyboard struct {
	layout    Layout
	pressed   [7][6]bool
	onPressed bool
	counter   uint16
	overflow  bool
}

// New builds a keyboard with the given layout.
func New(layout Layout) *Keyboard {
	return &Keyboard{layout: layout}
}

func (kbd *Keyboard) lookup(key string) (position, error) {
	if pos, ok := normalKeys[key]; ok {
		return pos, nil
	}
	if kbd.layout != LayoutNormal {
		if pos, ok := pos200Keys[key]; ok {
			return pos, nil
		}
	}
	return position{}, fmt.Errorf("unknown key %q", key)
}

// Press marks a key down. ON/CLEAR is handled out of the matrix.
func (kbd *Keyboard) Press(key string) error {
	if key == "ON" {
		kbd.onPressed = true
		return nil
	}
	pos, err := kbd.lookup(key)
	if err != nil {
		return err
	}
	kbd.pressed[pos.row][pos.col] = true
	return nil
}

// Release marks a key up.
func (kbd *Keyboard) Release(key string) error {
	if key == "ON" {
		kbd.onPressed = false
		return nil
	}
	pos, err := kbd.lookup(key)
	if err != nil {
		return err
	}
	kbd.pressed[pos.row][pos.col] = false
	return nil
}

// IsOnPressed reports the ON/CLEAR line.
func (kbd *Keyboard) IsOnPressed() bool {
	return kbd.onPressed
}

// ReadPort5 returns the column bits of the row selected by the low
// four counter bits, with bit 7 reflecting the ON/CLEAR line.
func (kbd *Keyboard) ReadPort5() uint8 {
	var result uint8
	row := int(kbd.counter & 0x0F)
	if row < len(kbd.pressed) {
		for col := 0; col < 6; col++ {
			if kbd.pressed[row][col] {
				result |= 1 << uint(col)
			}
		}
	}
	if kbd.onPressed {
		result |= 0x80
	}
	return result
}

// ResetCounter zeroes the key counter.
func (kbd *Keyboard) ResetCounter() {
	kbd.counter = 0
}

// IncrementCounter bumps the counter; a carry out of bit 12 sets the
// overflow latch.
func (kbd *Keyboard) IncrementCounter() {
	kbd.counter++
	if kbd.counter >= 0x2000 {
		kbd.counter = 0
		kbd.overflow = true
	}
}

// CounterHasOverflowed consumes the overflow latch.
func (kbd *Keyboard) CounterHasOverflowed() bool {
	overflow := kbd.overflow
	kbd.overflow = false
	return overflow
}

// Counter returns the raw 13 bit counter value.
func (kbd *Keyboard) Counter() uint16 {
	return kbd.counter
}
