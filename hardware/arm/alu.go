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

package arm

import "math/bits"

// ShiftType is the two bit shift selector used by the shifter operand.
type ShiftType uint8

// List of valid ShiftType values.
const (
	ShiftLSL ShiftType = 0b00
	ShiftLSR ShiftType = 0b01
	ShiftASR ShiftType = 0b10
	ShiftROR ShiftType = 0b11
)

// AddWithCarry adds two values and a carry, returning the result, the
// carry-out and the overflow. Implements the pseudo-code function of the
// same name from "A2.2.1" of "ARMv7-M".
//
// Subtraction is performed with AddWithCarry(a, ^b, 1). Reverse
// subtraction with AddWithCarry(^a, b, 1).
func AddWithCarry(a uint32, b uint32, carry uint32) (uint32, bool, bool) {
	sum := uint64(a) + uint64(b) + uint64(carry)
	result := uint32(sum)

	carryOut := sum > 0xffffffff
	overflow := (a>>31 == b>>31) && (a>>31 != result>>31)

	return result, carryOut, overflow
}

// Lsl performs a logical shift left of amount bits, returning the result
// and the carry-out. An amount of zero returns the value and the carry-in
// unchanged. Amounts of 32 or more saturate to zero.
func Lsl(value uint32, amount uint32, carry bool) (uint32, bool) {
	if amount == 0 {
		return value, carry
	}
	if amount > 32 {
		return 0, false
	}
	if amount == 32 {
		return 0, value&0x01 == 0x01
	}
	carry = (value>>(32-amount))&0x01 == 0x01
	return value << amount, carry
}

// Lsr performs a logical shift right of amount bits, returning the result
// and the carry-out. An amount of zero returns the value and the carry-in
// unchanged. Amounts of 32 or more saturate to zero.
func Lsr(value uint32, amount uint32, carry bool) (uint32, bool) {
	if amount == 0 {
		return value, carry
	}
	if amount > 32 {
		return 0, false
	}
	if amount == 32 {
		return 0, value&0x80000000 == 0x80000000
	}
	carry = (value>>(amount-1))&0x01 == 0x01
	return value >> amount, carry
}

// Asr performs an arithmetic shift right of amount bits, returning the
// result and the carry-out. Amounts of 32 or more return all ones or all
// zeros depending on the sign bit, which is also the carry-out.
func Asr(value uint32, amount uint32, carry bool) (uint32, bool) {
	if amount == 0 {
		return value, carry
	}
	if amount >= 32 {
		if value&0x80000000 == 0x80000000 {
			return 0xffffffff, true
		}
		return 0, false
	}
	carry = (value>>(amount-1))&0x01 == 0x01
	return uint32(int32(value) >> amount), carry
}

// Ror rotates the value right by amount bits, returning the result and the
// carry-out. An amount of zero returns the value and the carry-in
// unchanged.
func Ror(value uint32, amount uint32, carry bool) (uint32, bool) {
	if amount == 0 {
		return value, carry
	}
	amount &= 31
	if amount == 0 {
		// a multiple of 32. the value is unchanged but the carry takes the
		// sign bit
		return value, value&0x80000000 == 0x80000000
	}
	result := bits.RotateLeft32(value, -int(amount))
	return result, result&0x80000000 == 0x80000000
}

// Rrx rotates the value right by one bit through the carry.
func Rrx(value uint32, carry bool) (uint32, bool) {
	result := value >> 1
	if carry {
		result |= 0x80000000
	}
	return result, value&0x01 == 0x01
}

// ApplyShift is the single path through which all shifter operands pass.
// A ROR with an amount of zero selects RRX per "A7.4.2" of "ARMv7-M". The
// decoder is responsible for rewriting encoded zero amounts to 32 for the
// LSR and ASR immediate forms.
func ApplyShift(value uint32, typ ShiftType, amount uint32, carry bool) (uint32, bool) {
	switch typ {
	case ShiftLSL:
		return Lsl(value, amount, carry)
	case ShiftLSR:
		return Lsr(value, amount, carry)
	case ShiftASR:
		return Asr(value, amount, carry)
	case ShiftROR:
		if amount == 0 {
			return Rrx(value, carry)
		}
		return Ror(value, amount, carry)
	}
	return value, carry
}

// ThumbExpandImm decodes the 12 bit modified immediate form used by the
// 32 bit data processing instructions, returning the expanded value and
// the carry-out. Implements ThumbExpandImm_C from "A5.3.2" of "ARMv7-M".
func ThumbExpandImm(imm12 uint32, carry bool) (uint32, bool) {
	imm12 &= 0xfff

	if imm12&0xc00 == 0x000 {
		imm8 := imm12 & 0xff
		switch (imm12 >> 8) & 0x03 {
		case 0b00:
			return imm8, carry
		case 0b01:
			return imm8<<16 | imm8, carry
		case 0b10:
			return imm8<<24 | imm8<<8, carry
		case 0b11:
			return imm8<<24 | imm8<<16 | imm8<<8 | imm8, carry
		}
	}

	// rotated 8 bit value with a restored leading one
	unrotated := 0x80 | (imm12 & 0x7f)
	amount := (imm12 >> 7) & 0x1f
	return Ror(unrotated, amount, carry)
}

// SignExtend the low bits of the value to a full 32 bit word.
func SignExtend(value uint32, bitWidth uint32) uint32 {
	shift := 32 - bitWidth
	return uint32(int32(value<<shift) >> shift)
}

// SignedSat saturates the value (interpreted as signed) to the given
// number of bits, returning the saturated value and whether saturation
// occurred.
func SignedSat(value int64, bitWidth uint32) (uint32, bool) {
	max := int64(1)<<(bitWidth-1) - 1
	min := -(int64(1) << (bitWidth - 1))

	if value > max {
		return uint32(max), true
	}
	if value < min {
		return uint32(int32(min)), true
	}
	return uint32(value) & 0xffffffff, false
}

// UnsignedSat saturates the value to the given number of bits, returning
// the saturated value and whether saturation occurred.
func UnsignedSat(value int64, bitWidth uint32) (uint32, bool) {
	max := int64(1)<<bitWidth - 1

	if value > max {
		return uint32(max), true
	}
	if value < 0 {
		return 0, true
	}
	return uint32(value), false
}

// ExtendByte sign or zero extends the low byte of the value after an
// optional rotation of 0, 8, 16 or 24 bits.
func ExtendByte(value uint32, rotation uint32, signed bool) uint32 {
	value = bits.RotateLeft32(value, -int(rotation&31)) & 0xff
	if signed {
		return SignExtend(value, 8)
	}
	return value
}

// ExtendHalfword sign or zero extends the low halfword of the value after
// an optional rotation of 0, 8, 16 or 24 bits.
func ExtendHalfword(value uint32, rotation uint32, signed bool) uint32 {
	value = bits.RotateLeft32(value, -int(rotation&31)) & 0xffff
	if signed {
		return SignExtend(value, 16)
	}
	return value
}

// BitFieldInsert copies width bits of the source, starting at bit zero,
// into the destination starting at lsb.
func BitFieldInsert(dest uint32, source uint32, lsb uint32, width uint32) uint32 {
	mask := (uint32(1)<<width - 1) << lsb
	return (dest &^ mask) | ((source << lsb) & mask)
}

// BitFieldClear zeros width bits of the value starting at lsb.
func BitFieldClear(value uint32, lsb uint32, width uint32) uint32 {
	mask := (uint32(1)<<width - 1) << lsb
	return value &^ mask
}

// BitFieldExtract extracts width bits of the value starting at lsb,
// optionally sign extending the result.
func BitFieldExtract(value uint32, lsb uint32, width uint32, signed bool) uint32 {
	field := (value >> lsb) & (uint32(1)<<width - 1)
	if signed {
		return SignExtend(field, width)
	}
	return field
}

// Clz counts the leading zeros in the value.
func Clz(value uint32) uint32 {
	return uint32(bits.LeadingZeros32(value))
}

// Rbit reverses the bit order of the value.
func Rbit(value uint32) uint32 {
	return bits.Reverse32(value)
}

// Rev reverses the byte order of the value.
func Rev(value uint32) uint32 {
	return bits.ReverseBytes32(value)
}

// Rev16 reverses the byte order of each halfword of the value.
func Rev16(value uint32) uint32 {
	return (value&0x00ff00ff)<<8 | (value&0xff00ff00)>>8
}

// Revsh reverses the byte order of the low halfword of the value and sign
// extends the result.
func Revsh(value uint32) uint32 {
	r := (value&0x00ff)<<8 | (value&0xff00)>>8
	return SignExtend(r, 16)
}

// MulLong returns the low and high words of the 64 bit product of a and
// b, signed or unsigned.
func MulLong(a uint32, b uint32, signed bool) (uint32, uint32) {
	if signed {
		p := int64(int32(a)) * int64(int32(b))
		return uint32(p), uint32(uint64(p) >> 32)
	}
	hi, lo := bits.Mul32(a, b)
	return lo, hi
}

// Sdiv performs a signed division rounding towards zero. Division by zero
// returns zero, matching the Cortex-M default with DIV_0_TRP clear.
func Sdiv(a uint32, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	// the one overflowing case of int32 division
	if a == 0x80000000 && b == 0xffffffff {
		return 0x80000000
	}
	return uint32(int32(a) / int32(b))
}

// Udiv performs an unsigned division. Division by zero returns zero.
func Udiv(a uint32, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return a / b
}
