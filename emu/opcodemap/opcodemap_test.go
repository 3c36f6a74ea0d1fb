package opcodemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Every defined opcode must have a plausible entry: a mnemonic, a
// known mode and a size/cycle count in range.
func TestTableEntries(t *testing.T) {
	for op, inst := range Table {
		assert.NotEmpty(t, inst.Name, "opcode %02x has no mnemonic", op)
		assert.GreaterOrEqual(t, inst.Mode, ModeInherent, "opcode %02x mode", op)
		assert.LessOrEqual(t, inst.Mode, ModeBitIndexed, "opcode %02x mode", op)
		assert.GreaterOrEqual(t, inst.Size, 1, "opcode %02x size", op)
		assert.LessOrEqual(t, inst.Size, 4, "opcode %02x size", op)
		assert.Greater(t, inst.Cycles, 0, "opcode %02x cycles", op)
	}
}

// The catalog is injective on (mnemonic, mode): one opcode per pair.
func TestTableInjective(t *testing.T) {
	seen := make(map[string]byte)
	for op, inst := range Table {
		key := inst.Name + "/" + string(rune(inst.Mode))
		if prev, ok := seen[key]; ok {
			t.Errorf("%s appears for both %02x and %02x", key, prev, op)
		}
		seen[key] = op
	}
}

// Mode and size must agree.
func TestModeSizes(t *testing.T) {
	want := map[int]int{
		ModeInherent:    1,
		ModeImmediate:   2,
		ModeImmediate16: 3,
		ModeDirect:      2,
		ModeExtended:    3,
		ModeIndexed:     2,
		ModeRelative:    2,
		ModeBitDirect:   3,
		ModeBitIndexed:  3,
	}
	for op, inst := range Table {
		assert.Equal(t, want[inst.Mode], inst.Size, "opcode %02x", op)
	}
}

func TestLookup(t *testing.T) {
	op, ok := Opcode("LDAA", ModeImmediate)
	assert.True(t, ok)
	assert.Equal(t, byte(0x86), op)

	op, ok = Opcode("STX", ModeExtended)
	assert.True(t, ok)
	assert.Equal(t, byte(0xFF), op)

	_, ok = Opcode("STAA", ModeImmediate)
	assert.False(t, ok, "STAA has no immediate form")

	assert.True(t, IsMnemonic("XGDX"))
	assert.False(t, IsMnemonic("MOV"))
}

func TestBranchPairs(t *testing.T) {
	for name, inv := range Branches {
		if inv == "" {
			continue
		}
		assert.Equal(t, name, Branches[inv], "inverse of %s", name)
		_, ok := Opcode(name, ModeRelative)
		assert.True(t, ok, "%s must be relative", name)
	}
	assert.Equal(t, "BNE", Inverse("BEQ"))
	assert.Equal(t, "", Inverse("BRA"))
	assert.True(t, IsBranch("BSR"))
	assert.False(t, IsBranch("JMP"))
}

func TestWordImmediate(t *testing.T) {
	for name := range WordImmediate {
		_, ok := Opcode(name, ModeImmediate16)
		assert.True(t, ok, "%s must take a 16 bit immediate", name)
	}
	// An 8 bit immediate mnemonic must not be listed.
	assert.False(t, WordImmediate["LDAA"])
}
