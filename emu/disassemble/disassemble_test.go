package disassembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func readFrom(code []uint8, origin uint16) func(uint16) uint8 {
	return func(addr uint16) uint8 {
		index := int(addr) - int(origin)
		if index < 0 || index >= len(code) {
			return 0xFF
		}
		return code[index]
	}
}

func TestOperandFormats(t *testing.T) {
	cases := []struct {
		code []uint8
		want string
	}{
		{[]uint8{0x01}, "NOP"},
		{[]uint8{0x86, 0x41}, "LDAA #$41"},
		{[]uint8{0xCE, 0x12, 0x34}, "LDX #$1234"},
		{[]uint8{0x96, 0x7F}, "LDAA $7F"},
		{[]uint8{0xB6, 0x12, 0x34}, "LDAA $1234"},
		{[]uint8{0xA6, 0x05}, "LDAA $05,X"},
		{[]uint8{0x71, 0x0F, 0x50}, "AIM #$0F,$50"},
		{[]uint8{0x61, 0x0F, 0x05}, "AIM #$0F,$05,X"},
	}
	for _, tc := range cases {
		inst := DisassembleOne(readFrom(tc.code, 0x8000), 0x8000)
		text := inst.Mnemonic
		if inst.Operand != "" {
			text += " " + inst.Operand
		}
		assert.Equal(t, tc.want, text)
	}
}

func TestBranchTarget(t *testing.T) {
	// BRA -3 from $8000: target $7FFF.
	inst := DisassembleOne(readFrom([]uint8{0x20, 0xFD}, 0x8000), 0x8000)
	assert.Equal(t, "BRA", inst.Mnemonic)
	assert.Equal(t, "$7FFF", inst.Operand)
}

func TestUndefinedOpcode(t *testing.T) {
	inst := DisassembleOne(readFrom([]uint8{0x02}, 0x8000), 0x8000)
	assert.Equal(t, "DB", inst.Mnemonic)
	assert.Contains(t, inst.Comment, "switches off")
}

func TestSysVarAnnotation(t *testing.T) {
	// STAA $41 touches UTW_S0.
	inst := DisassembleOne(readFrom([]uint8{0x97, 0x41}, 0x8000), 0x8000)
	assert.Equal(t, "UTW_S0", inst.Comment)

	// STAA $01C0 is the switch-off latch.
	inst = DisassembleOne(readFrom([]uint8{0xB7, 0x01, 0xC0}, 0x8000), 0x8000)
	assert.Equal(t, "switch off", inst.Comment)
}

func TestSyscallAnnotation(t *testing.T) {
	// LDAA #5 / SWI: service 5 is the bell.
	code := []uint8{0x86, 0x05, 0x3F}
	out := Disassemble(readFrom(code, 0x8000), 0x8000, 2)
	assert.Equal(t, "SWI", out[1].Mnemonic)
	assert.Equal(t, "BZ$BELL", out[1].Comment)
}

func TestDisassembleBytes(t *testing.T) {
	code := []uint8{0x86, 0x41, 0x97, 0x50, 0x39}
	out := DisassembleBytes(code, 0x2000)
	assert.Len(t, out, 3)
	assert.Equal(t, uint16(0x2000), out[0].Addr)
	assert.Equal(t, uint16(0x2002), out[1].Addr)
	assert.Equal(t, "RTS", out[2].Mnemonic)

	text := out[0].String()
	assert.True(t, strings.HasPrefix(text, "2000"), text)
	assert.Contains(t, text, "86 41")
}

func TestQCode(t *testing.T) {
	code := []uint8{0x22, 0x12, 0x34, 0x9F, 0x7B, 0x42}
	out := DisassembleQCode(code, 0x7EC8)
	assert.Len(t, out, 4)
	assert.Equal(t, "PUSH_INT", out[0].Name)
	assert.Equal(t, "$1234", out[0].Operand)
	assert.Equal(t, "USR", out[1].Name)
	assert.Equal(t, "RETURN", out[2].Name)
	assert.Equal(t, "DB", out[3].Name)
}
