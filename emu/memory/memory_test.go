package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Zero page is always present regardless of main RAM geometry.
func TestZeroPage(t *testing.T) {
	for _, size := range []int{8, 16, 32, 64, 96} {
		mem := NewMemory(size, nil)
		mem.Write(0x0040, 0x12)
		mem.Write(0x00FF, 0x34)
		assert.Equal(t, uint8(0x12), mem.Read(0x0040), "size %dK", size)
		assert.Equal(t, uint8(0x34), mem.Read(0x00FF), "size %dK", size)
	}
}

func TestRAMRanges(t *testing.T) {
	// 8K model: $2000-$3FFF.
	mem := NewMemory(8, nil)
	mem.Write(0x2000, 0x11)
	mem.Write(0x3FFF, 0x22)
	mem.Write(0x4000, 0x33) // outside, dropped
	assert.Equal(t, uint8(0x11), mem.Read(0x2000))
	assert.Equal(t, uint8(0x22), mem.Read(0x3FFF))
	assert.Equal(t, uint8(0xFF), mem.Read(0x4000))

	// 16K model: $2000-$5FFF.
	mem = NewMemory(16, nil)
	mem.Write(0x5FFF, 0x44)
	mem.Write(0x6000, 0x55)
	assert.Equal(t, uint8(0x44), mem.Read(0x5FFF))
	assert.Equal(t, uint8(0xFF), mem.Read(0x6000))

	// 32K model: $0000-$7FFF.
	mem = NewMemory(32, nil)
	mem.Write(0x0400, 0x66)
	mem.Write(0x7FFF, 0x77)
	assert.Equal(t, uint8(0x66), mem.Read(0x0400))
	assert.Equal(t, uint8(0x77), mem.Read(0x7FFF))
}

// Bank switching swaps the $4000-$7FFF slab; the linear region stays.
func TestRAMBanking(t *testing.T) {
	mem := NewMemory(64, nil)
	mem.Write(0x1000, 0xAA)
	mem.Write(0x4000, 0x01)
	mem.NextRAMBank()
	assert.Equal(t, uint8(0x00), mem.Read(0x4000), "fresh bank must be clear")
	mem.Write(0x4000, 0x02)
	mem.Write(0x7FFF, 0x03)
	mem.ResetBanks()
	assert.Equal(t, uint8(0x01), mem.Read(0x4000))
	assert.Equal(t, uint8(0xAA), mem.Read(0x1000), "linear region untouched by banking")

	// 64K leaves three switchable slabs above the linear 16K; the
	// third advance wraps back to the first bank.
	mem.NextRAMBank()
	mem.NextRAMBank()
	assert.Equal(t, uint8(0x00), mem.Read(0x4000))
	mem.NextRAMBank()
	assert.Equal(t, uint8(0x01), mem.Read(0x4000))
}

func TestROM(t *testing.T) {
	rom := make([]uint8, 0x10000) // 64K image: bank 0 plus two extra banks
	rom[0x0000] = 0x10            // $8000 in bank 0
	rom[0x4000] = 0x20            // $C000 always
	rom[0x8000] = 0x30            // $8000 in bank 1
	rom[0xC000] = 0x40            // $8000 in bank 2
	mem := NewMemory(32, rom)

	assert.Equal(t, uint8(0x10), mem.Read(0x8000))
	assert.Equal(t, uint8(0x20), mem.Read(0xC000))

	mem.NextROMBank()
	assert.Equal(t, uint8(0x30), mem.Read(0x8000))
	assert.Equal(t, uint8(0x20), mem.Read(0xC000), "upper half fixed across banks")

	mem.NextROMBank()
	assert.Equal(t, uint8(0x40), mem.Read(0x8000))

	mem.NextROMBank() // wraps to bank 0
	assert.Equal(t, uint8(0x10), mem.Read(0x8000))

	mem.ResetBanks()
	assert.Equal(t, uint8(0x10), mem.Read(0x8000))
}

// Writes into the ROM window must be dropped silently.
func TestROMWriteDropped(t *testing.T) {
	rom := make([]uint8, 0x8000)
	rom[0x1234] = 0x99
	mem := NewMemory(32, rom)
	mem.Write(0x9234, 0x00)
	assert.Equal(t, uint8(0x99), mem.Read(0x9234))
}

func TestSnapshotRoundTrip(t *testing.T) {
	mem := NewMemory(32, nil)
	mem.Write(0x0050, 0x11)
	mem.Write(0x0400, 0x22)
	mem.Write(0x4000, 0x33)
	mem.NextROMBank()

	snap := mem.Snapshot()

	other := NewMemory(32, nil)
	used := other.Restore(snap)
	assert.Equal(t, len(snap), used)
	assert.Equal(t, uint8(0x11), other.Read(0x0050))
	assert.Equal(t, uint8(0x22), other.Read(0x0400))
	assert.Equal(t, uint8(0x33), other.Read(0x4000))
	assert.Equal(t, mem.ROM.bank, other.ROM.bank)
}
