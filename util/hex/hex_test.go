package hex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	var str strings.Builder
	FormatBytes(&str, true, []uint8{0xDE, 0xAD})
	assert.Equal(t, "DE AD ", str.String())

	str.Reset()
	FormatBytes(&str, false, []uint8{0x01, 0x02})
	assert.Equal(t, "0102", str.String())
}

func TestFormatWord(t *testing.T) {
	var str strings.Builder
	FormatWord(&str, 0x8001)
	assert.Equal(t, "8001", str.String())
}

func TestDump(t *testing.T) {
	data := make([]uint8, 20)
	copy(data, "HELLO")
	out := Dump(0x2000, data)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2000"))
	assert.True(t, strings.HasPrefix(lines[1], "2010"))
	assert.Contains(t, lines[0], "48 45 4C 4C 4F")
	assert.Contains(t, lines[0], "HELLO")
}
