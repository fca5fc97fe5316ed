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

// decodeThumb2 fills the Instruction from the two halfwords of a 32 bit
// opcode. The structural tree follows "A5.3" of "ARMv7-M": bits [12:11]
// of the first halfword divide the space into three, bits [10:4] and bit
// [15] of the second halfword select the group.
func decodeThumb2(hw1 uint16, hw2 uint16, inst *Instruction) {
	op1 := (hw1 >> 11) & 0x03
	op2 := (hw1 >> 4) & 0x7f

	switch op1 {
	case 0b01:
		switch {
		case op2&0x64 == 0x00:
			decodeThumb2LoadStoreMultiple(hw1, hw2, inst)
		case op2&0x64 == 0x04:
			decodeThumb2LoadStoreDual(hw1, hw2, inst)
		case op2&0x60 == 0x20:
			decodeThumb2DataShiftedRegister(hw1, hw2, inst)
		default:
			// coprocessor space. not implemented by this emulation
			inst.Op = OpUNKNOWN
		}
	case 0b10:
		if hw2&0x8000 == 0x8000 {
			decodeThumb2BranchesMiscControl(hw1, hw2, inst)
		} else if op2&0x20 == 0x00 {
			decodeThumb2DataModifiedImm(hw1, hw2, inst)
		} else {
			decodeThumb2DataPlainImm(hw1, hw2, inst)
		}
	case 0b11:
		switch {
		case op2&0x71 == 0x00:
			decodeThumb2StoreSingle(hw1, hw2, inst)
		case op2&0x67 == 0x01:
			decodeThumb2LoadByte(hw1, hw2, inst)
		case op2&0x67 == 0x03:
			decodeThumb2LoadHalfword(hw1, hw2, inst)
		case op2&0x67 == 0x05:
			decodeThumb2LoadWord(hw1, hw2, inst)
		case op2&0x67 == 0x07:
			inst.Op = OpUNDEFINED
		case op2&0x70 == 0x10:
			decodeThumb2StoreSingle(hw1, hw2, inst)
		case op2&0x70 == 0x20:
			decodeThumb2DataRegister(hw1, hw2, inst)
		case op2&0x78 == 0x30:
			decodeThumb2Multiply(hw1, hw2, inst)
		case op2&0x78 == 0x38:
			decodeThumb2LongMultiply(hw1, hw2, inst)
		default:
			// coprocessor space
			inst.Op = OpUNKNOWN
		}
	}
}

// load/store multiple: LDM/STM/LDMDB/STMDB with the full register set.
func decodeThumb2LoadStoreMultiple(hw1 uint16, hw2 uint16, inst *Instruction) {
	inst.Rn = int(hw1) & 0x0f
	inst.Wback = hw1&0x0020 == 0x0020
	inst.RegisterList = hw2 & 0xdfff

	load := hw1&0x0010 == 0x0010
	switch (hw1 >> 7) & 0x03 {
	case 0b01:
		if load {
			inst.Op = OpLDM
		} else {
			inst.Op = OpSTM
		}
	case 0b10:
		if load {
			inst.Op = OpLDMDB
		} else {
			inst.Op = OpSTMDB
		}
	default:
		inst.Op = OpUNKNOWN
	}
}

// load/store dual and exclusive, and the table branches. The five bits
// hw1[8:4] separate the exclusive and table branch encodings from the
// dual forms; within the 0x0c/0x0d rows the second halfword's op3 field
// selects the operation.
func decodeThumb2LoadStoreDual(hw1 uint16, hw2 uint16, inst *Instruction) {
	op3 := (hw2 >> 4) & 0x0f

	rn := int(hw1) & 0x0f
	rt := int(hw2>>12) & 0x0f
	rt2 := int(hw2>>8) & 0x0f
	imm8 := uint32(hw2) & 0xff

	switch (hw1 >> 4) & 0x1f {
	case 0x04:
		inst.Op = OpSTREX
		inst.Rd = rt2
		inst.Rt = rt
		inst.Rn = rn
		inst.Imm = imm8 << 2
		inst.HasImm = true
		return
	case 0x05:
		inst.Op = OpLDREX
		inst.Rt = rt
		inst.Rn = rn
		inst.Imm = imm8 << 2
		inst.HasImm = true
		return
	case 0x0c:
		switch op3 {
		case 0x4:
			inst.Op = OpSTREXB
		case 0x5:
			inst.Op = OpSTREXH
		default:
			inst.Op = OpUNKNOWN
			return
		}
		inst.Rd = int(hw2) & 0x0f
		inst.Rt = rt
		inst.Rn = rn
		return
	case 0x0d:
		switch op3 {
		case 0x0:
			inst.Op = OpTBB
			inst.Rn = rn
			inst.Rm = int(hw2) & 0x0f
		case 0x1:
			inst.Op = OpTBH
			inst.Rn = rn
			inst.Rm = int(hw2) & 0x0f
		case 0x4:
			inst.Op = OpLDREXB
			inst.Rt = rt
			inst.Rn = rn
		case 0x5:
			inst.Op = OpLDREXH
			inst.Rt = rt
			inst.Rn = rn
		default:
			inst.Op = OpUNKNOWN
		}
		return
	}

	// everything else in this space is a dual load or store
	if hw1&0x0010 == 0x0010 {
		inst.Op = OpLDRD
	} else {
		inst.Op = OpSTRD
	}
	inst.Rt = rt
	inst.Rt2 = rt2
	inst.Rn = rn
	inst.Imm = imm8 << 2
	inst.HasImm = true
	inst.Index = hw1&0x0100 == 0x0100
	inst.Add = hw1&0x0080 == 0x0080
	inst.Wback = hw1&0x0020 == 0x0020
}

// mapDataProcessing converts the common four bit data processing selector
// to an opcode pair (plain and flag-setting variant). Used by both the
// shifted register and modified immediate groups.
func mapDataProcessing(op uint16, s bool) Opcode {
	type pair struct {
		plain Opcode
		sets  Opcode
	}
	var m = map[uint16]pair{
		0x0: {OpAND, OpANDS},
		0x1: {OpBIC, OpBICS},
		0x2: {OpORR, OpORRS},
		0x3: {OpORN, OpORNS},
		0x4: {OpEOR, OpEORS},
		0x8: {OpADD, OpADDS},
		0xa: {OpADC, OpADCS},
		0xb: {OpSBC, OpSBCS},
		0xd: {OpSUB, OpSUBS},
		0xe: {OpRSB, OpRSBS},
	}
	p, ok := m[op]
	if !ok {
		return OpUNKNOWN
	}
	if s {
		return p.sets
	}
	return p.plain
}

// applySpecialCases rewrites the data processing opcode for the encodings
// where Rd==15,S=1 means a compare/test and Rn==15 means a move. See the
// notes against each row of the table in "A5.3.1" of "ARMv7-M".
func applySpecialCases(op uint16, s bool, inst *Instruction) {
	switch {
	case op == 0x0 && inst.Rd == 15 && s:
		inst.Op = OpTST
		inst.Rd = RegNone
	case op == 0x4 && inst.Rd == 15 && s:
		inst.Op = OpTEQ
		inst.Rd = RegNone
	case op == 0x8 && inst.Rd == 15 && s:
		inst.Op = OpCMN
		inst.Rd = RegNone
	case op == 0xd && inst.Rd == 15 && s:
		inst.Op = OpCMP
		inst.Rd = RegNone
	case op == 0x2 && inst.Rn == 15:
		if s {
			inst.Op = OpMOVS
		} else {
			inst.Op = OpMOV
		}
		inst.Rn = RegNone
	case op == 0x3 && inst.Rn == 15:
		if s {
			inst.Op = OpMVNS
		} else {
			inst.Op = OpMVN
		}
		inst.Rn = RegNone
	}
}

// data processing (shifted register).
func decodeThumb2DataShiftedRegister(hw1 uint16, hw2 uint16, inst *Instruction) {
	op := (hw1 >> 5) & 0x0f
	s := hw1&0x0010 == 0x0010

	inst.Rd = int(hw2>>8) & 0x0f
	inst.Rn = int(hw1) & 0x0f
	inst.Rm = int(hw2) & 0x0f
	inst.SetFlags = s
	inst.ShiftType = ShiftType(hw2>>4) & 0x03
	inst.ShiftN = (uint32(hw2>>12)&0x07)<<2 | uint32(hw2>>6)&0x03

	inst.Op = mapDataProcessing(op, s)
	if inst.Op == OpUNKNOWN {
		return
	}
	applySpecialCases(op, s, inst)
}

// data processing (modified immediate). the raw 12 bit form is stored in
// Imm; expansion happens in the executor with the live carry.
func decodeThumb2DataModifiedImm(hw1 uint16, hw2 uint16, inst *Instruction) {
	op := (hw1 >> 5) & 0x0f
	s := hw1&0x0010 == 0x0010

	i := uint32(hw1>>10) & 0x01
	imm3 := uint32(hw2>>12) & 0x07
	imm8 := uint32(hw2) & 0xff

	inst.Rd = int(hw2>>8) & 0x0f
	inst.Rn = int(hw1) & 0x0f
	inst.SetFlags = s
	inst.Imm = i<<11 | imm3<<8 | imm8
	inst.HasImm = true
	inst.ModifiedImm = true

	inst.Op = mapDataProcessing(op, s)
	if inst.Op == OpUNKNOWN {
		return
	}
	applySpecialCases(op, s, inst)
}

// data processing (plain binary immediate): ADDW/SUBW/ADR, MOVW/MOVT,
// the saturation instructions and the bitfield instructions.
func decodeThumb2DataPlainImm(hw1 uint16, hw2 uint16, inst *Instruction) {
	rn := int(hw1) & 0x0f
	rd := int(hw2>>8) & 0x0f

	i := uint32(hw1>>10) & 0x01
	imm3 := uint32(hw2>>12) & 0x07
	imm8 := uint32(hw2) & 0xff
	imm12 := i<<11 | imm3<<8 | imm8

	switch (hw1 >> 4) & 0x1f {
	case 0x00:
		// ADDW or the add form of ADR when Rn is the PC
		inst.Op = OpADD
		inst.Rd = rd
		inst.Rn = rn
		inst.Imm = imm12
		inst.HasImm = true
	case 0x04:
		inst.Op = OpMOVW
		inst.Rd = rd
		inst.Imm = uint32(hw1&0x0f)<<12 | imm12
		inst.HasImm = true
	case 0x0a:
		// SUBW or the sub form of ADR when Rn is the PC
		inst.Op = OpSUB
		inst.Rd = rd
		inst.Rn = rn
		inst.Imm = imm12
		inst.HasImm = true
	case 0x0c:
		inst.Op = OpMOVT
		inst.Rd = rd
		inst.Imm = uint32(hw1&0x0f)<<12 | imm12
		inst.HasImm = true
	case 0x10, 0x12:
		inst.Op = OpSSAT
		inst.Rd = rd
		inst.Rn = rn
		inst.SatImm = uint32(hw2)&0x1f + 1
		if hw1&0x0020 == 0x0020 {
			inst.ShiftType = ShiftASR
		} else {
			inst.ShiftType = ShiftLSL
		}
		inst.ShiftN = imm3<<2 | uint32(hw2>>6)&0x03
	case 0x18, 0x1a:
		inst.Op = OpUSAT
		inst.Rd = rd
		inst.Rn = rn
		inst.SatImm = uint32(hw2) & 0x1f
		if hw1&0x0020 == 0x0020 {
			inst.ShiftType = ShiftASR
		} else {
			inst.ShiftType = ShiftLSL
		}
		inst.ShiftN = imm3<<2 | uint32(hw2>>6)&0x03
	case 0x16:
		// BFI, or BFC when Rn is the PC
		lsb := imm3<<2 | uint32(hw2>>6)&0x03
		msb := uint32(hw2) & 0x1f
		inst.Rd = rd
		inst.Lsb = lsb
		inst.Width = msb - lsb + 1
		if rn == 15 {
			inst.Op = OpBFC
		} else {
			inst.Op = OpBFI
			inst.Rn = rn
		}
	case 0x14:
		inst.Op = OpSBFX
		inst.Rd = rd
		inst.Rn = rn
		inst.Lsb = imm3<<2 | uint32(hw2>>6)&0x03
		inst.Width = uint32(hw2)&0x1f + 1
	case 0x1c:
		inst.Op = OpUBFX
		inst.Rd = rd
		inst.Rn = rn
		inst.Lsb = imm3<<2 | uint32(hw2>>6)&0x03
		inst.Width = uint32(hw2)&0x1f + 1
	default:
		inst.Op = OpUNKNOWN
	}
}

// branches and miscellaneous control.
func decodeThumb2BranchesMiscControl(hw1 uint16, hw2 uint16, inst *Instruction) {
	op1 := (hw1 >> 4) & 0x7f
	op2 := (hw2 >> 12) & 0x07

	s := uint32(hw1>>10) & 0x01
	j1 := uint32(hw2>>13) & 0x01
	j2 := uint32(hw2>>11) & 0x01
	imm11 := uint32(hw2) & 0x7ff

	switch op2 & 0x05 {
	case 0x00:
		if op1&0x38 != 0x38 {
			// conditional branch. the offset combines S, J2, J1, imm6 and
			// imm11 without the I1/I2 inversion of the longer branches
			imm6 := uint32(hw1) & 0x3f
			imm := s<<20 | j2<<19 | j1<<18 | imm6<<12 | imm11<<1
			inst.Op = OpB
			inst.Cond = Condition(hw1>>6) & 0x0f
			inst.Imm = SignExtend(imm, 21)
			inst.HasImm = true
			return
		}
		decodeThumb2MiscControl(hw1, hw2, inst)
	case 0x01:
		// B (unconditional). I1 = NOT(J1 XOR S), I2 = NOT(J2 XOR S)
		imm10 := uint32(hw1) & 0x3ff
		i1 := ^(j1 ^ s) & 0x01
		i2 := ^(j2 ^ s) & 0x01
		imm := s<<24 | i1<<23 | i2<<22 | imm10<<12 | imm11<<1
		inst.Op = OpB
		inst.Imm = SignExtend(imm, 25)
		inst.HasImm = true
	case 0x04:
		// BLX (immediate) changes to ARM state. no ARM state on Cortex-M
		inst.Op = OpUNDEFINED
	case 0x05:
		imm10 := uint32(hw1) & 0x3ff
		i1 := ^(j1 ^ s) & 0x01
		i2 := ^(j2 ^ s) & 0x01
		imm := s<<24 | i1<<23 | i2<<22 | imm10<<12 | imm11<<1
		inst.Op = OpBL
		inst.Imm = SignExtend(imm, 25)
		inst.HasImm = true
	}
}

// MSR, MRS, the barriers and the wide hints.
func decodeThumb2MiscControl(hw1 uint16, hw2 uint16, inst *Instruction) {
	switch (hw1 >> 4) & 0x7f {
	case 0x38:
		inst.Op = OpMSR
		inst.Rn = int(hw1) & 0x0f
		inst.Imm = uint32(hw2) & 0xff
		inst.HasImm = true
	case 0x3b:
		switch (hw2 >> 4) & 0x0f {
		case 0x2:
			inst.Op = OpCLREX
		case 0x4:
			inst.Op = OpDSB
		case 0x5:
			inst.Op = OpDMB
		case 0x6:
			inst.Op = OpISB
		default:
			inst.Op = OpNOP
		}
	case 0x3e:
		inst.Op = OpMRS
		inst.Rd = int(hw2>>8) & 0x0f
		inst.Imm = uint32(hw2) & 0xff
		inst.HasImm = true
	case 0x3a:
		// wide hints (NOP.W and friends) and CPS.W. all harmless here
		inst.Op = OpNOP
	default:
		inst.Op = OpUNKNOWN
	}
}

// store single data item.
func decodeThumb2StoreSingle(hw1 uint16, hw2 uint16, inst *Instruction) {
	inst.Rt = int(hw2>>12) & 0x0f
	inst.Rn = int(hw1) & 0x0f

	var op Opcode
	switch (hw1 >> 5) & 0x03 {
	case 0x0:
		op = OpSTRB
	case 0x1:
		op = OpSTRH
	case 0x2:
		op = OpSTR
	default:
		inst.Op = OpUNKNOWN
		return
	}

	if hw1&0x0080 == 0x0080 {
		// STR{B,H} Rt, [Rn, #imm12]
		inst.Op = op
		inst.Imm = uint32(hw2) & 0xfff
		inst.HasImm = true
		return
	}

	switch {
	case hw2&0x0800 == 0x0800:
		// 8 bit immediate with pre/post indexing and writeback
		inst.Op = op
		inst.Imm = uint32(hw2) & 0xff
		inst.HasImm = true
		inst.Index = hw2&0x0400 == 0x0400
		inst.Add = hw2&0x0200 == 0x0200
		inst.Wback = hw2&0x0100 == 0x0100
	case hw2&0x0fc0 == 0x0000:
		// register offset with optional shift
		inst.Op = op
		inst.Rm = int(hw2) & 0x0f
		inst.ShiftType = ShiftLSL
		inst.ShiftN = uint32(hw2>>4) & 0x03
	default:
		inst.Op = OpUNKNOWN
	}
}

// loadOffsetForm fills the common offset forms shared by the load byte,
// halfword and word groups: literal, 12 bit immediate, 8 bit immediate
// with indexing, and register with shift.
func loadOffsetForm(hw1 uint16, hw2 uint16, inst *Instruction) {
	rn := int(hw1) & 0x0f

	if rn == 15 {
		// PC-relative literal form. the U bit selects the direction
		inst.Imm = uint32(hw2) & 0xfff
		inst.HasImm = true
		inst.Add = hw1&0x0080 == 0x0080
		return
	}

	if hw1&0x0080 == 0x0080 {
		inst.Imm = uint32(hw2) & 0xfff
		inst.HasImm = true
		return
	}

	if hw2&0x0800 == 0x0800 {
		inst.Imm = uint32(hw2) & 0xff
		inst.HasImm = true
		inst.Index = hw2&0x0400 == 0x0400
		inst.Add = hw2&0x0200 == 0x0200
		inst.Wback = hw2&0x0100 == 0x0100
		return
	}

	inst.Rm = int(hw2) & 0x0f
	inst.ShiftType = ShiftLSL
	inst.ShiftN = uint32(hw2>>4) & 0x03
}

// load byte and memory hints.
func decodeThumb2LoadByte(hw1 uint16, hw2 uint16, inst *Instruction) {
	inst.Rt = int(hw2>>12) & 0x0f
	inst.Rn = int(hw1) & 0x0f

	if hw1&0x0100 == 0x0100 {
		inst.Op = OpLDRSB
	} else {
		inst.Op = OpLDRB
	}
	loadOffsetForm(hw1, hw2, inst)
}

// load halfword.
func decodeThumb2LoadHalfword(hw1 uint16, hw2 uint16, inst *Instruction) {
	inst.Rt = int(hw2>>12) & 0x0f
	inst.Rn = int(hw1) & 0x0f

	if hw1&0x0100 == 0x0100 {
		inst.Op = OpLDRSH
	} else {
		inst.Op = OpLDRH
	}
	loadOffsetForm(hw1, hw2, inst)
}

// load word.
func decodeThumb2LoadWord(hw1 uint16, hw2 uint16, inst *Instruction) {
	inst.Rt = int(hw2>>12) & 0x0f
	inst.Rn = int(hw1) & 0x0f
	inst.Op = OpLDR

	if inst.Rn == 15 {
		inst.Op = OpLDRLIT
	}
	loadOffsetForm(hw1, hw2, inst)
}

// data processing (register): the register controlled shifts, the extend
// instructions and the miscellaneous bit operations.
func decodeThumb2DataRegister(hw1 uint16, hw2 uint16, inst *Instruction) {
	op1 := (hw1 >> 4) & 0x0f
	op2 := (hw2 >> 4) & 0x0f
	rn := int(hw1) & 0x0f

	inst.Rd = int(hw2>>8) & 0x0f
	inst.Rn = rn
	inst.Rm = int(hw2) & 0x0f

	if op2 == 0x0 {
		// shift by register. the S bit selects the flag-setting variant
		s := hw1&0x0010 == 0x0010
		inst.SetFlags = s
		inst.Rs = inst.Rm
		inst.Rm = RegNone
		switch op1 & 0x0e {
		case 0x0:
			if s {
				inst.Op = OpLSLS
			} else {
				inst.Op = OpLSL
			}
		case 0x2:
			if s {
				inst.Op = OpLSRS
			} else {
				inst.Op = OpLSR
			}
		case 0x4:
			if s {
				inst.Op = OpASRS
			} else {
				inst.Op = OpASR
			}
		case 0x6:
			if s {
				inst.Op = OpRORS
			} else {
				inst.Op = OpROR
			}
		default:
			inst.Op = OpUNKNOWN
		}
		return
	}

	if op1 <= 0x05 && op2&0x08 == 0x08 {
		// sign and zero extension, with the accumulating forms when Rn
		// is not the PC
		inst.Rotation = (uint32(hw2>>4) & 0x03) << 3
		switch op1 {
		case 0x0:
			inst.Op = OpSXTAH
			if rn == 15 {
				inst.Op = OpSXTH
			}
		case 0x1:
			inst.Op = OpUXTAH
			if rn == 15 {
				inst.Op = OpUXTH
			}
		case 0x4:
			inst.Op = OpSXTAB
			if rn == 15 {
				inst.Op = OpSXTB
			}
		case 0x5:
			inst.Op = OpUXTAB
			if rn == 15 {
				inst.Op = OpUXTB
			}
		default:
			inst.Op = OpUNKNOWN
		}
		if rn == 15 {
			inst.Rn = RegNone
		}
		return
	}

	if op1&0x0c == 0x08 {
		// miscellaneous operations
		switch {
		case op1 == 0x9 && op2 == 0x8:
			inst.Op = OpREV
		case op1 == 0x9 && op2 == 0x9:
			inst.Op = OpREV16
		case op1 == 0x9 && op2 == 0xa:
			inst.Op = OpRBIT
		case op1 == 0x9 && op2 == 0xb:
			inst.Op = OpREVSH
		case op1 == 0xb && op2 == 0x8:
			inst.Op = OpCLZ
		default:
			inst.Op = OpUNKNOWN
		}
		return
	}

	inst.Op = OpUNKNOWN
}

// multiply and multiply-accumulate (32 bit result).
func decodeThumb2Multiply(hw1 uint16, hw2 uint16, inst *Instruction) {
	op1 := (hw1 >> 4) & 0x07
	op2 := (hw2 >> 4) & 0x03
	ra := int(hw2>>12) & 0x0f

	inst.Rd = int(hw2>>8) & 0x0f
	inst.Rn = int(hw1) & 0x0f
	inst.Rm = int(hw2) & 0x0f

	switch op1 {
	case 0x0:
		switch {
		case ra == 15 && op2 == 0x0:
			inst.Op = OpMUL
		case op2 == 0x0:
			inst.Op = OpMLA
			inst.Rs = ra
		case op2 == 0x1:
			inst.Op = OpMLS
			inst.Rs = ra
		default:
			inst.Op = OpUNKNOWN
		}
	default:
		inst.Op = OpUNKNOWN
	}
}

// long multiply (64 bit result) and divide.
func decodeThumb2LongMultiply(hw1 uint16, hw2 uint16, inst *Instruction) {
	op1 := (hw1 >> 4) & 0x07
	op2 := (hw2 >> 4) & 0x0f

	inst.Rn = int(hw1) & 0x0f
	inst.Rm = int(hw2) & 0x0f
	inst.Rdlo = int(hw2>>12) & 0x0f
	inst.Rdhi = int(hw2>>8) & 0x0f

	switch op1 {
	case 0x0:
		if op2 == 0x0 {
			inst.Op = OpSMULL
		} else {
			inst.Op = OpUNKNOWN
		}
	case 0x1:
		if op2 == 0xf {
			inst.Op = OpSDIV
			inst.Rd = inst.Rdhi
			inst.Rdlo = RegNone
			inst.Rdhi = RegNone
		} else {
			inst.Op = OpUNKNOWN
		}
	case 0x2:
		if op2 == 0x0 {
			inst.Op = OpUMULL
		} else {
			inst.Op = OpUNKNOWN
		}
	case 0x3:
		if op2 == 0xf {
			inst.Op = OpUDIV
			inst.Rd = inst.Rdhi
			inst.Rdlo = RegNone
			inst.Rdhi = RegNone
		} else {
			inst.Op = OpUNKNOWN
		}
	case 0x4:
		inst.Op = OpSMLAL
	case 0x6:
		inst.Op = OpUMLAL
	default:
		inst.Op = OpUNKNOWN
	}
}
