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
	"github.com/jetsetilly/gopherwatch/test"
)

func TestAddWithCarry(t *testing.T) {
	// simple addition
	r, c, v := arm.AddWithCarry(1, 2, 0)
	test.ExpectEquality(t, r, uint32(3))
	test.ExpectEquality(t, c, false)
	test.ExpectEquality(t, v, false)

	// unsigned carry out
	r, c, v = arm.AddWithCarry(0xffffffff, 1, 0)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, true)
	test.ExpectEquality(t, v, false)

	// signed overflow: two positive inputs, negative result
	r, c, v = arm.AddWithCarry(0x7fffffff, 1, 0)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, false)
	test.ExpectEquality(t, v, true)

	// subtraction: a - b is a + ^b + 1. carry means no borrow
	r, c, v = arm.AddWithCarry(5, ^uint32(3), 1)
	test.ExpectEquality(t, r, uint32(2))
	test.ExpectEquality(t, c, true)
	test.ExpectEquality(t, v, false)

	// subtraction with borrow
	r, c, _ = arm.AddWithCarry(3, ^uint32(5), 1)
	test.ExpectEquality(t, r, uint32(0xfffffffe))
	test.ExpectEquality(t, c, false)
}

// the defining identity of AddWithCarry: unsigned(result) + carry*2^32
// equals the full sum of the inputs
func TestAddWithCarryIdentity(t *testing.T) {
	values := []uint32{0, 1, 2, 0x7fffffff, 0x80000000, 0xfffffffe, 0xffffffff, 0x12345678}

	for _, a := range values {
		for _, b := range values {
			for _, cin := range []uint32{0, 1} {
				r, c, v := arm.AddWithCarry(a, b, cin)

				sum := uint64(a) + uint64(b) + uint64(cin)
				full := uint64(r)
				if c {
					full += 1 << 32
				}
				test.ExpectEquality(t, full, sum)

				expectedV := (a>>31 == b>>31) && (a>>31 != r>>31)
				test.ExpectEquality(t, v, expectedV)
			}
		}
	}
}

func TestShifts(t *testing.T) {
	// a shift of zero returns the value and the carry-in unchanged
	r, c := arm.Lsl(0x80000001, 0, true)
	test.ExpectEquality(t, r, uint32(0x80000001))
	test.ExpectEquality(t, c, true)

	r, c = arm.Lsl(0x80000001, 1, false)
	test.ExpectEquality(t, r, uint32(0x00000002))
	test.ExpectEquality(t, c, true)

	// LSL by exactly 32: result zero, carry is the old bit zero
	r, c = arm.Lsl(0x00000001, 32, false)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, true)

	// LSL by more than 32 saturates with no carry
	r, c = arm.Lsl(0xffffffff, 33, true)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, false)

	// LSR by exactly 32: result zero, carry is the old sign bit
	r, c = arm.Lsr(0x80000000, 32, false)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, true)

	r, c = arm.Lsr(0x00000003, 1, false)
	test.ExpectEquality(t, r, uint32(1))
	test.ExpectEquality(t, c, true)

	// ASR fills with the sign bit
	r, c = arm.Asr(0x80000000, 1, false)
	test.ExpectEquality(t, r, uint32(0xc0000000))
	test.ExpectEquality(t, c, false)

	// ASR of 32 or more: all ones or all zeros from the sign
	r, c = arm.Asr(0x80000000, 32, false)
	test.ExpectEquality(t, r, uint32(0xffffffff))
	test.ExpectEquality(t, c, true)

	r, c = arm.Asr(0x7fffffff, 40, true)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, false)

	// ROR rotates and takes the carry from the new sign bit
	r, c = arm.Ror(0x00000001, 1, false)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, true)

	// RRX rotates a single bit through the carry
	r, c = arm.Rrx(0x00000001, true)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, true)

	r, c = arm.Rrx(0x00000002, false)
	test.ExpectEquality(t, r, uint32(0x00000001))
	test.ExpectEquality(t, c, false)
}

// a ROR through ApplyShift with an amount of zero selects RRX
func TestApplyShiftRRX(t *testing.T) {
	r, c := arm.ApplyShift(0x00000003, arm.ShiftROR, 0, false)
	test.ExpectEquality(t, r, uint32(0x00000001))
	test.ExpectEquality(t, c, true)
}

func TestThumbExpandImm(t *testing.T) {
	// zero extended byte
	r, c := arm.ThumbExpandImm(0x0ab, false)
	test.ExpectEquality(t, r, uint32(0x000000ab))
	test.ExpectEquality(t, c, false)

	// replicated in halves
	r, _ = arm.ThumbExpandImm(0x1ff, false)
	test.ExpectEquality(t, r, uint32(0x00ff00ff))

	// replicated in the odd bytes
	r, _ = arm.ThumbExpandImm(0x2ab, false)
	test.ExpectEquality(t, r, uint32(0xab00ab00))

	// replicated in every byte
	r, _ = arm.ThumbExpandImm(0x3ab, false)
	test.ExpectEquality(t, r, uint32(0xabababab))

	// rotated with a restored leading one: rotate 0b10000000 right by 8
	r, c = arm.ThumbExpandImm(0x400, false)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, true)

	// pure function: equal inputs give equal outputs
	for imm := uint32(0); imm < 0x1000; imm += 7 {
		r1, c1 := arm.ThumbExpandImm(imm, true)
		r2, c2 := arm.ThumbExpandImm(imm, true)
		test.ExpectEquality(t, r1, r2)
		test.ExpectEquality(t, c1, c2)
	}
}

func TestSaturation(t *testing.T) {
	r, sat := arm.SignedSat(1000, 8)
	test.ExpectEquality(t, r, uint32(127))
	test.ExpectEquality(t, sat, true)

	r, sat = arm.SignedSat(-1000, 8)
	test.ExpectEquality(t, r, uint32(0xffffff80))
	test.ExpectEquality(t, sat, true)

	r, sat = arm.SignedSat(100, 8)
	test.ExpectEquality(t, r, uint32(100))
	test.ExpectEquality(t, sat, false)

	r, sat = arm.UnsignedSat(-1, 8)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, sat, true)

	r, sat = arm.UnsignedSat(256, 8)
	test.ExpectEquality(t, r, uint32(255))
	test.ExpectEquality(t, sat, true)
}

func TestBitTwiddling(t *testing.T) {
	test.ExpectEquality(t, arm.Clz(0x80000000), uint32(0))
	test.ExpectEquality(t, arm.Clz(0x00000001), uint32(31))
	test.ExpectEquality(t, arm.Clz(0), uint32(32))

	test.ExpectEquality(t, arm.Rev(0x11223344), uint32(0x44332211))
	test.ExpectEquality(t, arm.Rev16(0x11223344), uint32(0x22114433))

	// REVSH reverses the low halfword's bytes and sign extends
	test.ExpectEquality(t, arm.Revsh(0x00001280), uint32(0xffff8012))
	test.ExpectEquality(t, arm.Revsh(0x00008012), uint32(0x00001280))

	test.ExpectEquality(t, arm.BitFieldInsert(0xffffffff, 0x0, 8, 8), uint32(0xffff00ff))
	test.ExpectEquality(t, arm.BitFieldClear(0xffffffff, 0, 4), uint32(0xfffffff0))
	test.ExpectEquality(t, arm.BitFieldExtract(0x0000ff00, 8, 8, false), uint32(0xff))
	test.ExpectEquality(t, arm.BitFieldExtract(0x00008000, 8, 8, true), uint32(0xffffff80))
}

func TestDivide(t *testing.T) {
	// division by zero returns zero, per the Cortex-M default
	test.ExpectEquality(t, arm.Sdiv(100, 0), uint32(0))
	test.ExpectEquality(t, arm.Udiv(100, 0), uint32(0))

	// SDIV rounds towards zero
	test.ExpectEquality(t, arm.Sdiv(0xfffffff9, 2), uint32(0xfffffffd)) // -7 / 2 = -3
	test.ExpectEquality(t, arm.Udiv(7, 2), uint32(3))

	// the overflowing edge case of signed division
	test.ExpectEquality(t, arm.Sdiv(0x80000000, 0xffffffff), uint32(0x80000000))
}

func TestMulLong(t *testing.T) {
	lo, hi := arm.MulLong(0xffffffff, 0xffffffff, false)
	test.ExpectEquality(t, lo, uint32(0x00000001))
	test.ExpectEquality(t, hi, uint32(0xfffffffe))

	// -1 * -1 = 1 signed
	lo, hi = arm.MulLong(0xffffffff, 0xffffffff, true)
	test.ExpectEquality(t, lo, uint32(1))
	test.ExpectEquality(t, hi, uint32(0))
}
