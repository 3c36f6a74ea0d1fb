package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugojpinto/psion-org2-sdk/opk"
)

// Clock the linear counter forward n positions with SMR low.
func clock(pk *Pack, n int) {
	for i := 0; i < n; i++ {
		pk.WriteControl(PinSCLK|PinSOEB, 0)
		pk.WriteControl(PinSOEB, 0)
	}
}

// Strobe a write of one data byte (SPGM_B pulse, output disabled,
// processor driving port 2 so the P2DDR flag is clear).
func strobe(pk *Pack, extra uint8, data uint8) {
	pk.WriteControl(PinSPGMB|PinSOEB|extra, data)
	pk.WriteControl(PinSOEB|extra, data)
	pk.WriteControl(PinSPGMB|PinSOEB|extra, data)
}

func TestLinearCounter(t *testing.T) {
	pk, err := New(KindROM, 8)
	require.NoError(t, err)
	pk.data[0] = 0x11
	pk.data[3] = 0x44

	pk.WriteControl(PinSMR, 0) // reset
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0x11), func() uint8 { pk.WriteControl(0, 0); return pk.ReadData() }())

	clock(pk, 3)
	pk.WriteControl(0, 0) // SOE_B low: output enabled
	assert.Equal(t, uint8(0x44), pk.ReadData())
}

func TestCounterResetHold(t *testing.T) {
	pk, _ := New(KindROM, 8)
	clock(pk, 5)
	pk.WriteControl(PinSMR|PinSOEB, 0)
	pk.WriteControl(0, 0)
	assert.Equal(t, 0, pk.address())
}

func TestPagedCounter(t *testing.T) {
	pk, err := New(KindROM, 32)
	require.NoError(t, err)
	pk.data[0x0100] = 0x77

	// Advance one page: SPGM_B pulse while SMR holds the counter.
	pk.WriteControl(PinSMR|PinSPGMB|PinSOEB, 0)
	pk.WriteControl(PinSMR|PinSOEB, 0)
	pk.WriteControl(PinSMR|PinSPGMB|PinSOEB, 0)
	pk.WriteControl(0, 0)
	assert.Equal(t, 0x0100, pk.address())
	assert.Equal(t, uint8(0x77), pk.ReadData())

	// The low counter wraps inside the page.
	clock(pk, 256)
	pk.WriteControl(0, 0)
	assert.Equal(t, 0x0100, pk.address())
}

func TestSegmentRegister(t *testing.T) {
	pk, err := New(KindRAM, 128)
	require.NoError(t, err)
	// Segment load pattern: output disabled, SVPP, processor driving
	// the bus.
	pk.WriteControl(PinSOEB|PinSVPP, 0x03)
	assert.Equal(t, 0x03<<14, pk.address())
}

func TestRAMWrite(t *testing.T) {
	pk, _ := New(KindRAM, 16)
	strobe(pk, 0, 0x5A)
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0x5A), pk.ReadData())
}

// EPROM programming clears bits only and needs the 21V charge.
func TestEPROMProgramming(t *testing.T) {
	pk, _ := New(KindEPROM, 16)
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0xFF), pk.ReadData(), "erased EPROM reads ones")

	// No 21V: the write is refused.
	strobe(pk, 0, 0xF0)
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0xFF), pk.ReadData())

	// With 21V and VPP select: bits clear.
	strobe(pk, PinSVPP|PinV21V, 0xF0)
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0xF0), pk.ReadData())

	// Trying to set bits back silently fails. This documents current
	// behavior: the cycle still counts as a write.
	strobe(pk, PinSVPP|PinV21V, 0xFF)
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0xF0), pk.ReadData())
}

func TestROMWriteDropped(t *testing.T) {
	for _, kind := range []int{KindROM, KindTopSlot} {
		pk, _ := New(kind, 16)
		pk.data[0] = 0x42
		strobe(pk, PinSVPP|PinV21V, 0x00)
		pk.WriteControl(0, 0)
		assert.Equal(t, uint8(0x42), pk.ReadData())
	}
}

func TestFlashCommandSequence(t *testing.T) {
	pk, _ := New(KindFlash, 32)
	// A bare data byte must not program anything.
	strobe(pk, 0, 0x00)
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0xFF), pk.ReadData())

	// Unlock sequence then data.
	strobe(pk, 0, 0xAA)
	strobe(pk, 0, 0x55)
	strobe(pk, 0, 0xA0)
	strobe(pk, 0, 0x3C)
	pk.WriteControl(0, 0)
	assert.Equal(t, uint8(0x3C), pk.ReadData())
}

func TestHardwareID(t *testing.T) {
	ram, _ := New(KindRAM, 16)
	ram.WriteControl(PinSMR|PinSVPP, 0)
	assert.Equal(t, uint8(0x01), ram.ReadData(), "id low byte")
	ram.WriteControl(PinSMR|PinSVPP|PinSCLK, 0)
	assert.Equal(t, uint8(0x01), ram.ReadData(), "id high byte")

	flash, _ := New(KindFlash, 32)
	flash.WriteControl(PinSMR|PinSVPP, 0)
	assert.Equal(t, uint8(0x89), flash.ReadData())
	flash.WriteControl(PinSMR|PinSVPP|PinSCLK, 0)
	assert.Equal(t, uint8(0xB4), flash.ReadData())
}

func TestEmptySlot(t *testing.T) {
	pk := Empty()
	assert.Equal(t, uint8(0xFF), pk.ReadData())
	assert.False(t, pk.WriteControl(PinSPGMB, 0x00))
}

func TestOutputDisabled(t *testing.T) {
	pk, _ := New(KindROM, 8)
	pk.data[0] = 0xFF
	pk.WriteControl(PinSOEB, 0)
	assert.Equal(t, uint8(0x00), pk.ReadData(), "disabled output stays off the bus")
}

func TestFromOPK(t *testing.T) {
	bld, err := opk.NewBuilder(16, opk.FlagEPROM)
	require.NoError(t, err)
	require.NoError(t, bld.AddProcedure("MAIN", []uint8{0x39}))
	data, err := bld.Build()
	require.NoError(t, err)

	pk, err := FromOPK(data)
	require.NoError(t, err)
	assert.Equal(t, KindEPROM, pk.Kind())
	assert.Equal(t, 16, pk.SizeKB())
	// The pack buffer starts with the pack header block.
	assert.Equal(t, data[6], pk.Data()[0])

	_, err = FromOPK([]uint8{1, 2, 3})
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	pk, _ := New(KindRAM, 32)
	clock(pk, 5)
	pk.Reset()
	assert.Equal(t, 0, pk.address())
}
