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

// Is32BitThumb2 returns true if the halfword is the first half of a 32
// bit instruction. The three escape prefixes are 0b11101, 0b11110 and
// 0b11111; anything lower is a 16 bit instruction.
func Is32BitThumb2(hw uint16) bool {
	return hw&0xf800 == 0xf800 || hw&0xf800 == 0xf000 || hw&0xf800 == 0xe800
}

// Decode the instruction beginning at the halfword hw1. The second
// halfword is consumed only when Is32BitThumb2(hw1) is true. The address
// is recorded in the returned Instruction for diagnostics only.
//
// Decode is a pure function. It never touches machine state and equal
// arguments always produce equal Instruction values. Encodings that are
// architecturally undefined decode to OpUNDEFINED; encodings that this
// emulation does not implement (the coprocessor space in particular)
// decode to OpUNKNOWN.
func Decode(hw1 uint16, hw2 uint16, address uint32) Instruction {
	inst := newInstruction(address)

	if Is32BitThumb2(hw1) {
		inst.Size = 4
		inst.Raw = uint32(hw1)<<16 | uint32(hw2)
		decodeThumb2(hw1, hw2, &inst)
	} else {
		inst.Size = 2
		inst.Raw = uint32(hw1)
		decodeThumb(hw1, &inst)
	}

	return inst
}
