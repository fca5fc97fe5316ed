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

package hardware_test

import (
	"testing"

	"github.com/jetsetilly/gopherwatch/hardware"
	"github.com/jetsetilly/gopherwatch/romloader"
	"github.com/jetsetilly/gopherwatch/test"
)

// romSet builds an in-memory ROM set: vector table, then the program at
// 0x08000008.
func romSet(program ...uint16) *romloader.ROMSet {
	image := make([]byte, 0x1000)

	putWord := func(offset int, value uint32) {
		image[offset] = uint8(value)
		image[offset+1] = uint8(value >> 8)
		image[offset+2] = uint8(value >> 16)
		image[offset+3] = uint8(value >> 24)
	}

	putWord(0x00, 0x20002000)
	putWord(0x04, 0x08000009)

	for i, hw := range program {
		image[0x08+i*2] = uint8(hw)
		image[0x08+i*2+1] = uint8(hw >> 8)
	}

	return &romloader.ROMSet{
		Name:          "test",
		InternalFlash: image,
	}
}

// a frame ends early when the CPU executes WFI
func TestRunFrameWFI(t *testing.T) {
	mc := hardware.NewMachine()

	err := mc.InsertROM(romSet(
		0x2005, // MOVS R0, #5
		0xbf30, // WFI
	))
	test.ExpectSuccess(t, err)

	mc.RunFrame(1000)
	test.ExpectSuccess(t, mc.CPU.Halted())
	test.ExpectEquality(t, mc.CPU.Registers().Register(0), uint32(5))
	test.ExpectFailure(t, mc.Broken())
}

// breakpoints stop the run loop at the fetch boundary
func TestBreakpoint(t *testing.T) {
	mc := hardware.NewMachine()

	err := mc.InsertROM(romSet(
		0x2001, // MOVS R0, #1
		0x2002, // MOVS R0, #2
		0x2003, // MOVS R0, #3
	))
	test.ExpectSuccess(t, err)

	mc.SetBreakpoint(0x0800000c, true)
	mc.RunFrame(1000)

	test.ExpectEquality(t, mc.CPU.Registers().PC(), uint32(0x0800000c))
	test.ExpectEquality(t, mc.CPU.Registers().Register(0), uint32(2))
}

// buttons reach the firmware as active-low GPIO input bits
func TestButtons(t *testing.T) {
	mc := hardware.NewMachine()

	err := mc.InsertROM(romSet(0xbf30))
	test.ExpectSuccess(t, err)

	// GPIOD IDR with nothing pressed: pins high
	idr := mc.Bus.Read32(0x58020c00 + 0x10)
	test.ExpectEquality(t, idr&(1<<9), uint32(1<<9))

	mc.SetButton(hardware.ButtonA, true)
	idr = mc.Bus.Read32(0x58020c00 + 0x10)
	test.ExpectEquality(t, idr&(1<<9), uint32(0))

	mc.SetButton(hardware.ButtonA, false)
	idr = mc.Bus.Read32(0x58020c00 + 0x10)
	test.ExpectEquality(t, idr&(1<<9), uint32(1<<9))

	// GAME is on port C
	mc.SetButton(hardware.ButtonGame, true)
	idr = mc.Bus.Read32(0x58020800 + 0x10)
	test.ExpectEquality(t, idr&(1<<1), uint32(0))
}

// firmware can program the systick through the machine's bus and the
// interrupt arrives at the CPU
func TestSysTickInterrupt(t *testing.T) {
	mc := hardware.NewMachine()

	// program the systick by hand then spin
	err := mc.InsertROM(romSet(
		0xbf00, // NOP
		0xe7fd, // B -2 (back to the NOP)
	))
	test.ExpectSuccess(t, err)

	// short reload, enable with TICKINT
	mc.Bus.Write32(0xe000e014, 4)
	mc.Bus.Write32(0xe000e010, 0x00000003)

	// the systick handler address is zero in this ROM so entering the
	// exception would branch to garbage. checking the pending bit is
	// enough for the wiring test
	mc.Bus.Step(10)
	test.ExpectSuccess(t, mc.CPU.Exceptions().Pending(15))
}
