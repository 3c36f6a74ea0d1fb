package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAssemble(t *testing.T, source string) ([]uint8, *Assembler) {
	t.Helper()
	asm, err := New(Options{Optimize: false})
	require.NoError(t, err)
	code, err := asm.Assemble(source, "test.asm")
	require.NoError(t, err)
	return code, asm
}

func TestBasicEncoding(t *testing.T) {
	code, asm := mustAssemble(t, `
	ORG $8000
	LDAA #$41
	STAA $7F
	STAA $1234
	LDAB 5,X
	NOP
	RTS
`)
	assert.Equal(t, []uint8{
		0x86, 0x41, // LDAA #$41
		0x97, 0x7F, // STAA direct
		0xB7, 0x12, 0x34, // STAA extended
		0xE6, 0x05, // LDAB 5,X
		0x01,
		0x39,
	}, code)
	assert.Equal(t, 0x8000, asm.Origin())
}

func TestNumberFormats(t *testing.T) {
	code, _ := mustAssemble(t, `
	FCB $7F, 0x7F, %1010, 0b1010, @177, 0o177, 65, 'A'
`)
	assert.Equal(t, []uint8{0x7F, 0x7F, 0x0A, 0x0A, 0x7F, 0x7F, 0x41, 0x41}, code)
}

func TestWordImmediates(t *testing.T) {
	code, _ := mustAssemble(t, `
	LDX #$1234
	LDD #$5678
	SUBD #2
	CPX #$FFFF
`)
	assert.Equal(t, []uint8{
		0xCE, 0x12, 0x34,
		0xCC, 0x56, 0x78,
		0x83, 0x00, 0x02,
		0x8C, 0xFF, 0xFF,
	}, code)
}

func TestBitManipulate(t *testing.T) {
	code, _ := mustAssemble(t, `
	AIM #$0F,$50
	OIM #$80,$50
	TIM #$01,3,X
`)
	assert.Equal(t, []uint8{
		0x71, 0x0F, 0x50,
		0x72, 0x80, 0x50,
		0x6B, 0x01, 0x03,
	}, code)
}

func TestExpressions(t *testing.T) {
	code, _ := mustAssemble(t, `
VALUE EQU $1200
	LDAA #HIGH(VALUE)+1
	LDAB #LOW(VALUE+$34)
	LDX #VALUE*2
	FCB 1+2*3, (1+2)*3, $FF&$0F, 1<<4
`)
	assert.Equal(t, []uint8{
		0x86, 0x13,
		0xC6, 0x34,
		0xCE, 0x24, 0x00,
		0x07, 0x09, 0x0F, 0x10,
	}, code)
}

func TestCurrentAddress(t *testing.T) {
	code, _ := mustAssemble(t, `
	ORG $8000
	FDB *
	FDB $
`)
	assert.Equal(t, []uint8{0x80, 0x00, 0x80, 0x02}, code)
}

func TestForwardReference(t *testing.T) {
	code, _ := mustAssemble(t, `
	ORG $8000
	JMP done
	NOP
done:	RTS
`)
	assert.Equal(t, []uint8{0x7E, 0x80, 0x04, 0x01, 0x39}, code)
}

// Short branches stay short; out-of-range conditionals relax into an
// inverted short branch over a JMP.
func TestBranchRelaxation(t *testing.T) {
	var src strings.Builder
	src.WriteString("\tORG $8000\n")
	src.WriteString("\tBEQ fwd\n")
	for i := 0; i < 200; i++ {
		src.WriteString("\tNOP\n")
	}
	src.WriteString("fwd:\tRTS\n")

	code, asm := mustAssemble(t, src.String())
	// BNE +3 over JMP $80CD: 5 bytes, then 200 NOPs, then RTS.
	require.Equal(t, 5+200+1, len(code))
	assert.Equal(t, uint8(0x26), code[0], "inverted branch")
	assert.Equal(t, uint8(0x03), code[1])
	assert.Equal(t, uint8(0x7E), code[2], "long jump")
	target := asm.Symbols()["fwd"]
	assert.Equal(t, 0x8000+205, target)
	assert.Equal(t, uint8(target>>8), code[3])
	assert.Equal(t, uint8(target), code[4])
	assert.Equal(t, uint8(0x39), code[len(code)-1])
}

func TestShortBranchStaysShort(t *testing.T) {
	code, _ := mustAssemble(t, `
	ORG $8000
loop:	NOP
	BNE loop
	BEQ next
next:	RTS
`)
	assert.Equal(t, []uint8{0x01, 0x26, 0xFD, 0x27, 0x00, 0x39}, code)
}

func TestBackwardBranchOutOfRange(t *testing.T) {
	var src strings.Builder
	src.WriteString("\tORG $8000\n")
	src.WriteString("back:\tNOP\n")
	for i := 0; i < 200; i++ {
		src.WriteString("\tNOP\n")
	}
	src.WriteString("\tBEQ back\n")
	code, _ := mustAssemble(t, src.String())
	// Relaxes to BNE over JMP $8000.
	end := len(code) - 5
	assert.Equal(t, uint8(0x26), code[end])
	assert.Equal(t, uint8(0x7E), code[end+2])
	assert.Equal(t, uint8(0x80), code[end+3])
	assert.Equal(t, uint8(0x00), code[end+4])
}

func TestBSRRelaxesToJSR(t *testing.T) {
	var src strings.Builder
	src.WriteString("\tORG $8000\n")
	src.WriteString("\tBSR sub\n")
	for i := 0; i < 300; i++ {
		src.WriteString("\tNOP\n")
	}
	src.WriteString("sub:\tRTS\n")
	code, _ := mustAssemble(t, src.String())
	assert.Equal(t, uint8(0xBD), code[0], "JSR")
}

func TestLocalLabels(t *testing.T) {
	code, asm := mustAssemble(t, `
	ORG $8000
first:
.loop:	NOP
	BRA .loop
second:
.loop:	NOP
	BRA .loop
`)
	assert.Equal(t, []uint8{0x01, 0x20, 0xFD, 0x01, 0x20, 0xFD}, code)
	assert.Contains(t, asm.Symbols(), "first.loop")
	assert.Contains(t, asm.Symbols(), "second.loop")
}

func TestDirectives(t *testing.T) {
	code, _ := mustAssemble(t, `
	ORG $8000
	FCB 1, 2, "AB"
	FDB $1234
	FCC "HI"
	RMB 3
	FILL 2, $EE
`)
	assert.Equal(t, []uint8{
		1, 2, 'A', 'B',
		0x12, 0x34,
		'H', 'I',
		0, 0, 0,
		0xEE, 0xEE,
	}, code)
}

func TestEquAndSet(t *testing.T) {
	code, _ := mustAssemble(t, `
COUNT	EQU 3
VAR	SET 1
VAR	SET VAR+1
	FCB COUNT, VAR
`)
	assert.Equal(t, []uint8{3, 2}, code)

	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble("X EQU 1\nX EQU 2\n", "dup.asm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestConditionals(t *testing.T) {
	source := `
#IF FEATURE
	FCB 1
#ELSE
	FCB 2
#ENDIF
#IFDEF FEATURE
	FCB 3
#ENDIF
#IFNDEF MISSING
	FCB 4
#ENDIF
`
	asm, err := New(Options{Defines: map[string]int{"FEATURE": 1}})
	require.NoError(t, err)
	code, err := asm.Assemble(source, "cond.asm")
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 3, 4}, code)

	asm2, err := New(Options{Defines: map[string]int{"FEATURE": 0}})
	require.NoError(t, err)
	code, err = asm2.Assemble(source, "cond.asm")
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 3, 4}, code)
}

func TestMacros(t *testing.T) {
	code, _ := mustAssemble(t, `
	MACRO load2
	LDAA #\1
	LDAB #\2
	ENDM
	load2 $11, $22
	load2 $33, $44
`)
	assert.Equal(t, []uint8{
		0x86, 0x11, 0xC6, 0x22,
		0x86, 0x33, 0xC6, 0x44,
	}, code)
}

func TestMacroErrorAtInvocation(t *testing.T) {
	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble(`
	MACRO bad
	NOSUCH #\1
	ENDM
	bad 1
`, "mac.asm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in macro bad")
	assert.Contains(t, err.Error(), "mac.asm:5")
}

func TestModelSymbols(t *testing.T) {
	asm, err := New(Options{TargetModel: "LZ"})
	require.NoError(t, err)
	code, err := asm.Assemble(`
#IFDEF __PSION_4LINE__
	FCB DISP_ROWS, DISP_COLS
#ENDIF
`, "model.asm")
	require.NoError(t, err)
	assert.Equal(t, []uint8{4, 20}, code)

	// The OB3 body carries the 4-line mode prefix.
	ob3 := asm.OB3()
	assert.Equal(t, uint8(0x59), ob3[8])
	assert.Equal(t, uint8(0xB2), ob3[9])
}

func TestModelDirective(t *testing.T) {
	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble("\tMODEL CM\n\tFCB __MODEL__\n", "m.asm")
	require.NoError(t, err)
	assert.Equal(t, "CM", asm.TargetModel())
	assert.Equal(t, []uint8{0}, asm.Code())

	// An explicit API model wins over the directive.
	asm2, err := New(Options{TargetModel: "XP"})
	require.NoError(t, err)
	_, err = asm2.Assemble("\tMODEL LZ\n\tNOP\n", "m.asm")
	require.NoError(t, err)
	assert.Equal(t, "XP", asm2.TargetModel())
}

func TestErrorsAreBatched(t *testing.T) {
	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble(`
	LDAA #$41
	BADOP 1
	LDAB nosuchsym
	WHAT 2
`, "errs.asm")
	require.Error(t, err)
	list, ok := err.(ErrorList)
	require.True(t, ok)
	assert.Len(t, list, 2) // both unknown mnemonics in one report
	assert.Contains(t, list[0].Error(), "errs.asm:3")
	assert.Contains(t, list[0].Error(), "^")
}

func TestUndefinedSymbol(t *testing.T) {
	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble("\tLDAA nosuch\n", "u.asm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined symbol nosuch")
}

func TestDivisionByZero(t *testing.T) {
	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble("\tFCB 1/0\n", "z.asm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestBadAddressingMode(t *testing.T) {
	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble("\tSTAA #1\n", "a.asm")
	require.Error(t, err)

	_, err = asm.Assemble("\tTSX 5\n", "a.asm")
	require.Error(t, err)
}

func TestListingAndSymbols(t *testing.T) {
	_, asm := mustAssemble(t, `
	ORG $8000
start:	LDAA #$41
	RTS
`)
	listing := asm.Listing()
	assert.Contains(t, listing, "8000")
	assert.Contains(t, listing, "86 41")
	assert.Contains(t, listing, "LDAA #$41")
	assert.Contains(t, asm.SymbolText(), "start = $8000")
}

func TestOB3Output(t *testing.T) {
	_, asm := mustAssemble(t, "\tLDAA #$41\n\tRTS\n")
	ob3 := asm.OB3()
	assert.Equal(t, []uint8{'O', 'R', 'G'}, ob3[:3])
	assert.Equal(t, uint8(0x83), ob3[5])
	codeLen := int(ob3[6])<<8 | int(ob3[7])
	assert.Equal(t, 3, codeLen)
	assert.Equal(t, []uint8{0x86, 0x41, 0x39}, ob3[8:])
}

func TestRelocatable(t *testing.T) {
	asm, err := New(Options{Relocatable: true})
	require.NoError(t, err)
	code, err := asm.Assemble(`
start:	LDX #msg
	JMP start
msg:	FCC "HI"
	FDB msg
`, "reloc.asm")
	require.NoError(t, err)

	// Stub, then code, then the fixup table.
	require.Greater(t, len(code), relocStubSize)
	assert.Equal(t, uint8(0x8D), code[0], "stub starts with BSR")

	// LDX #msg, JMP start and FDB msg each need a fixup.
	assert.Equal(t, 3, asm.FixupCount())
	tableOff := relocStubSize + (len(code) - relocStubSize - 2 - 2*3)
	count := int(code[tableOff])<<8 | int(code[tableOff+1])
	assert.Equal(t, 3, count)

	// The first fixup names the LDX operand word: LDX is the first
	// instruction after the stub, and its operand follows its opcode.
	first := int(code[tableOff+2])<<8 | int(code[tableOff+3])
	assert.Equal(t, relocStubSize+1, first)

	// ORG is rejected in relocatable mode.
	_, err = asm.Assemble("\tORG $8000\n\tNOP\n", "reloc2.asm")
	require.Error(t, err)
}

func TestIncludeNotFound(t *testing.T) {
	asm, err := New(Options{})
	require.NoError(t, err)
	_, err = asm.Assemble("\tINCLUDE \"nosuchfile.inc\"\n", "inc.asm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot find include file")
}

func TestCommentStyles(t *testing.T) {
	code, _ := mustAssemble(t, `* star comment at column one
	NOP ; trailing comment
; full line comment
	RTS
`)
	assert.Equal(t, []uint8{0x01, 0x39}, code)
}
