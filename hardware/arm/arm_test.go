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

package arm_test

import (
	"testing"

	"github.com/jetsetilly/gopherwatch/hardware/arm"
	"github.com/jetsetilly/gopherwatch/hardware/memory"
	"github.com/jetsetilly/gopherwatch/test"
)

// startup builds a machine whose flash bank 1 holds a vector table
// (initial SP 0x20002000, reset vector 0x08000008) followed by the
// program, and resets the CPU.
func startup(t *testing.T, program ...uint16) (*arm.ARM, *memory.Bus) {
	t.Helper()

	image := make([]uint8, 0x1000)

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

	bus := memory.NewBus()
	bus.FlashBank1.Load(image)

	cpu := arm.NewARM(bus)
	cpu.Reset()

	test.ExpectEquality(t, cpu.Registers().PC(), uint32(0x08000008))
	test.ExpectEquality(t, cpu.Registers().MSP(), uint32(0x20002000))

	return cpu, bus
}

// step the CPU until it reaches the address of a BKPT placed at the end
// of the test program.
func runTo(t *testing.T, cpu *arm.ARM, addr uint32) {
	t.Helper()

	for i := 0; i < 1000; i++ {
		if cpu.Registers().PC() == addr {
			return
		}
		cpu.Step()
	}
	t.Fatalf("did not reach %08x", addr)
}

// MOVS/ADDS/SUBS: R0 = 1 + 2 - 1
func TestImmediateArithmetic(t *testing.T) {
	cpu, _ := startup(t,
		0x2001, // MOVS R0, #1
		0x3002, // ADDS R0, #2
		0x3801, // SUBS R0, #1
		0xbe00, // BKPT
	)

	runTo(t, cpu, 0x0800000e)
	test.ExpectEquality(t, cpu.Registers().Register(0), uint32(2))

	// flags from the final SUBS: positive non-zero result, no borrow
	test.ExpectFailure(t, cpu.Registers().PSR().Zero())
	test.ExpectFailure(t, cpu.Registers().PSR().Negative())
	test.ExpectSuccess(t, cpu.Registers().PSR().Carry())
}

// an unconditional branch over the first MOVS
func TestBranchOver(t *testing.T) {
	cpu, _ := startup(t,
		0xe000, // B +4 (to 0x0800000c)
		0x2105, // MOVS R1, #5 (skipped)
		0x2107, // MOVS R1, #7
		0xbe00, // BKPT
	)

	runTo(t, cpu, 0x0800000e)
	test.ExpectEquality(t, cpu.Registers().Register(1), uint32(7))
}

// LDR (literal) reads relative to the word-aligned PC
func TestLoadLiteral(t *testing.T) {
	cpu, _ := startup(t,
		0x4a00, // LDR R2, [PC, #0] (literal at 0x0800000c)
		0xbe00, // BKPT
		0xbeef, // the literal, low halfword
		0xdead, // the literal, high halfword
	)

	cpu.Step()
	test.ExpectEquality(t, cpu.Registers().Register(2), uint32(0xdeadbeef))
}

// a Thumb-2 modified immediate is expanded by the executor
func TestModifiedImmediate(t *testing.T) {
	cpu, _ := startup(t,
		0xf04f, 0x10ff, // MOV.W R0, #0x00ff00ff (imm12 = 0x1ff)
		0xbe00, // BKPT
	)

	carry := cpu.Registers().PSR().Carry()

	cpu.Step()
	test.ExpectEquality(t, cpu.Registers().Register(0), uint32(0x00ff00ff))

	// MOV without the S bit leaves the carry alone
	test.ExpectEquality(t, cpu.Registers().PSR().Carry(), carry)
}

// IT block predication: with Z clear only the else arm of an ITE EQ
// commits
func TestITBlock(t *testing.T) {
	cpu, _ := startup(t,
		0x2101, // MOVS R1, #1 (clears Z)
		0xbf0c, // ITE EQ
		0x2001, // MOV R0, #1 (EQ: skipped)
		0x2002, // MOV R0, #2 (NE: executes)
		0xbe00, // BKPT
	)

	runTo(t, cpu, 0x08000010)
	test.ExpectEquality(t, cpu.Registers().Register(0), uint32(2))
}

// writeback addressing: STR with pre-index and writeback moves the base
// after forming the transfer address
func TestStoreWriteback(t *testing.T) {
	cpu, bus := startup(t,
		0xf04f, 0x5000, // MOV.W R0, #0x20000000 (0x80 ror 10)
		0x2155, // MOVS R1, #0x55
		0xf840, 0x1f04, // STR R1, [R0, #4]!
		0xbe00, // BKPT
	)

	runTo(t, cpu, 0x08000012)

	test.ExpectEquality(t, cpu.Registers().Register(0), uint32(0x20000004))
	test.ExpectEquality(t, bus.Read32(0x20000004), uint32(0x55))
}

// a load into the PC is a branch
func TestLoadToPC(t *testing.T) {
	cpu, bus := startup(t,
		0x4800, // LDR R0, [PC, #0] (literal at the aligned 0x0800000c)
		0x4687, // MOV PC, R0
		0x0021, // literal low: 0x08000021
		0x0800, // literal high
	)

	cpu.Step() // LDR
	test.ExpectEquality(t, cpu.Registers().Register(0), uint32(0x08000021))

	cpu.Step() // MOV PC, R0
	test.ExpectEquality(t, cpu.Registers().PC(), uint32(0x08000020))

	// bit zero was dropped from the PC and the Thumb flag stays set
	test.ExpectSuccess(t, cpu.Registers().PSR().Thumb())
	_ = bus
}

// WFI halts the CPU; a pended exception wakes it
func TestWFI(t *testing.T) {
	cpu, _ := startup(t,
		0xbf30, // WFI
		0xbe00, // BKPT
	)

	cpu.Step()
	test.ExpectSuccess(t, cpu.Halted())

	// halted steps are one-cycle no-ops
	pc := cpu.Registers().PC()
	cpu.Step()
	test.ExpectEquality(t, cpu.Registers().PC(), pc)
	test.ExpectSuccess(t, cpu.Halted())

	// pend anything and the core wakes
	cpu.Exceptions().SetPending(arm.ExcFirstIRQ)
	cpu.Step()
	test.ExpectFailure(t, cpu.Halted())
}
