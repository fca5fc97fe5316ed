// This file is part of GopherWatch.
//
// GopherWatch is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherWatch is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherWatch.  If not, see <https://www.gnu.org/licenses/>.

package memory_test

import (
	"testing"

	"github.com/jetsetilly/gopherwatch/hardware/memory"
	"github.com/jetsetilly/gopherwatch/test"
)

// a write of width W followed by a read of width W yields the written
// value; narrower reads see the little-endian byte slices
func TestRAMWidths(t *testing.T) {
	bus := memory.NewBus()

	bus.Write32(0x20000000, 0x11223344)
	test.ExpectEquality(t, bus.Read32(0x20000000), uint32(0x11223344))
	test.ExpectEquality(t, bus.Read16(0x20000000), uint16(0x3344))
	test.ExpectEquality(t, bus.Read16(0x20000002), uint16(0x1122))
	test.ExpectEquality(t, bus.Read8(0x20000000), uint8(0x44))
	test.ExpectEquality(t, bus.Read8(0x20000003), uint8(0x11))

	bus.Write8(0x20000001, 0xaa)
	test.ExpectEquality(t, bus.Read32(0x20000000), uint32(0x1122aa44))

	bus.Write16(0x20000002, 0xbbcc)
	test.ExpectEquality(t, bus.Read32(0x20000000), uint32(0xbbccaa44))
}

// each SRAM region is addressed at its canonical origin
func TestRegionRouting(t *testing.T) {
	bus := memory.NewBus()

	regions := []uint32{
		memory.DTCMOrigin,
		memory.AXISRAMOrigin,
		memory.SRAM1Origin,
		memory.SRAM2Origin,
		memory.BackupSRAMOrigin,
	}

	for i, origin := range regions {
		bus.Write32(origin+0x10, uint32(0xcafe0000+i))
	}
	for i, origin := range regions {
		test.ExpectEquality(t, bus.Read32(origin+0x10), uint32(0xcafe0000+i))
	}
}

// ITCM read-after-write is idempotent for any sub-word access
func TestITCMReadAfterWrite(t *testing.T) {
	bus := memory.NewBus()
	bus.SetBootFromFlash(false)

	bus.Write32(0x00000100, 0xdeadbeef)
	test.ExpectEquality(t, bus.Read32(0x00000100), uint32(0xdeadbeef))
	test.ExpectEquality(t, bus.Read32(0x00000100), uint32(0xdeadbeef))

	bus.Write8(0x00000102, 0x42)
	test.ExpectEquality(t, bus.Read8(0x00000102), uint8(0x42))
	test.ExpectEquality(t, bus.Read32(0x00000100), uint32(0xde42beef))
}

// flash is read-only at runtime: writes are silent no-ops
func TestFlashReadOnly(t *testing.T) {
	bus := memory.NewBus()

	image := make([]uint8, 16)
	for i := range image {
		image[i] = uint8(i)
	}
	bus.FlashBank1.Load(image)

	test.ExpectEquality(t, bus.Read32(memory.FlashBank1Origin), uint32(0x03020100))

	bus.Write32(memory.FlashBank1Origin, 0xffffffff)
	test.ExpectEquality(t, bus.Read32(memory.FlashBank1Origin), uint32(0x03020100))
}

// the boot alias: address zero reads flash bank 1 until the alias is
// dropped, and the primed ITCM copy keeps the same bytes visible after
func TestBootAlias(t *testing.T) {
	bus := memory.NewBus()

	image := make([]uint8, 8)
	image[0] = 0x78
	image[1] = 0x56
	image[2] = 0x34
	image[3] = 0x12
	bus.FlashBank1.Load(image)

	// boot mode: the alias is live
	test.ExpectEquality(t, bus.Read32(0x00000000), uint32(0x12345678))

	// priming copies the first 64KiB of bank 1 into ITCM so dropping the
	// alias changes nothing at the vector table
	bus.PrimeBootAlias()

	// writes land in ITCM even while the alias is live
	bus.Write32(0x00001000, 0xabcd1234)

	bus.SetBootFromFlash(false)
	test.ExpectEquality(t, bus.Read32(0x00000000), uint32(0x12345678))
	test.ExpectEquality(t, bus.Read32(0x00001000), uint32(0xabcd1234))
}

// the ITCM override is deferred until explicitly applied
func TestITCMOverride(t *testing.T) {
	bus := memory.NewBus()

	image := make([]uint8, 4)
	image[0] = 0x11
	bus.FlashBank1.Load(image)
	bus.PrimeBootAlias()

	override := make([]uint8, 4)
	override[0] = 0x99
	bus.SetITCMOverride(override)

	bus.SetBootFromFlash(false)
	test.ExpectEquality(t, bus.Read8(0x00000000), uint8(0x11))

	bus.ApplyITCMOverride()
	test.ExpectEquality(t, bus.Read8(0x00000000), uint8(0x99))
}

// unknown peripheral addresses retain the last value written
func TestPeripheralStub(t *testing.T) {
	bus := memory.NewBus()

	test.ExpectEquality(t, bus.Read32(0x40004000), uint32(0))
	bus.Write32(0x40004000, 0x000000ff)
	test.ExpectEquality(t, bus.Read32(0x40004000), uint32(0x000000ff))
}

// a registered peripheral sees word accesses; narrower accesses are
// synthesised by the bus
type recordingPort struct {
	value uint32
}

func (p *recordingPort) Read32(addr uint32) uint32 {
	return p.value
}

func (p *recordingPort) Write32(addr uint32, value uint32) {
	p.value = value
}

func TestPeripheralPort(t *testing.T) {
	bus := memory.NewBus()

	port := &recordingPort{}
	bus.RegisterPeripheral(0x40010000, 0x400103ff, port)

	bus.Write32(0x40010000, 0x11223344)
	test.ExpectEquality(t, port.value, uint32(0x11223344))

	// byte write is read-modify-write of the enclosing word
	bus.Write8(0x40010001, 0xaa)
	test.ExpectEquality(t, port.value, uint32(0x1122aa44))

	test.ExpectEquality(t, bus.Read16(0x40010002), uint16(0x1122))
}

// the external flash reads back a loaded image and ignores writes
func TestExternalFlash(t *testing.T) {
	bus := memory.NewBus()

	image := make([]uint8, 8)
	image[4] = 0xab
	bus.External.Load(image)

	test.ExpectEquality(t, bus.Read8(memory.ExternalFlashOrigin+4), uint8(0xab))

	bus.Write8(memory.ExternalFlashOrigin+4, 0x00)
	test.ExpectEquality(t, bus.Read8(memory.ExternalFlashOrigin+4), uint8(0xab))
}

// SysTick counts down when enabled and raises COUNTFLAG on wrap
func TestSysTick(t *testing.T) {
	bus := memory.NewBus()

	pended := false
	bus.ConnectSystemControl(nil, func() { pended = true })

	bus.Write32(0xe000e014, 10)         // LOAD
	bus.Write32(0xe000e010, 0x00000003) // ENABLE | TICKINT

	bus.Step(5)
	test.ExpectEquality(t, bus.Read32(0xe000e010)&0x00010000, uint32(0))
	test.ExpectFailure(t, pended)

	bus.Step(20)
	test.ExpectEquality(t, bus.Read32(0xe000e010)&0x00010000, uint32(0x00010000))
	test.ExpectSuccess(t, pended)

	// COUNTFLAG cleared by the read above
	test.ExpectEquality(t, bus.Read32(0xe000e010)&0x00010000, uint32(0))
}
