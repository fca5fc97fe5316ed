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

// decodeThumb fills the Instruction from a 16 bit opcode. The dispatch
// tree follows the encoding table in "A5.2" of "ARMv7-M": the top three
// bits select the group, further bits select within the group.
func decodeThumb(hw uint16, inst *Instruction) {
	switch hw >> 13 {
	case 0b000:
		decodeThumbShiftAddSub(hw, inst)
	case 0b001:
		decodeThumbDataImm(hw, inst)
	case 0b010:
		switch (hw >> 10) & 0x07 {
		case 0b000:
			decodeThumbDataProcessing(hw, inst)
		case 0b001:
			decodeThumbSpecialDataBranch(hw, inst)
		case 0b010, 0b011:
			// LDR (literal): Rt, [PC, #imm8*4]
			inst.Op = OpLDRLIT
			inst.Rt = int(hw>>8) & 0x07
			inst.Rn = rPC
			inst.Imm = uint32(hw&0xff) << 2
			inst.HasImm = true
		default:
			decodeThumbLoadStoreRegister(hw, inst)
		}
	case 0b011:
		decodeThumbLoadStoreImm(hw, inst)
	case 0b100:
		if hw&0x1000 == 0x1000 {
			// LDR/STR Rt, [SP, #imm8*4]
			inst.Rt = int(hw>>8) & 0x07
			inst.Rn = rSP
			inst.Imm = uint32(hw&0xff) << 2
			inst.HasImm = true
			if hw&0x0800 == 0x0800 {
				inst.Op = OpLDR
			} else {
				inst.Op = OpSTR
			}
		} else {
			// LDRH/STRH Rt, [Rn, #imm5*2]
			inst.Rt = int(hw) & 0x07
			inst.Rn = int(hw>>3) & 0x07
			inst.Imm = uint32(hw>>6&0x1f) << 1
			inst.HasImm = true
			if hw&0x0800 == 0x0800 {
				inst.Op = OpLDRH
			} else {
				inst.Op = OpSTRH
			}
		}
	case 0b101:
		if hw&0x1000 == 0x1000 {
			decodeThumbMiscellaneous(hw, inst)
		} else {
			// ADR / ADD Rd, SP, #imm8*4
			inst.Op = OpADD
			inst.Rd = int(hw>>8) & 0x07
			inst.Imm = uint32(hw&0xff) << 2
			inst.HasImm = true
			if hw&0x0800 == 0x0800 {
				inst.Rn = rSP
			} else {
				inst.Rn = rPC
			}
		}
	case 0b110:
		if hw&0x1000 == 0x1000 {
			decodeThumbConditionalBranch(hw, inst)
		} else {
			decodeThumbMultipleLoadStore(hw, inst)
		}
	case 0b111:
		// the escape prefixes have been filtered by Is32BitThumb2() so
		// this can only be the unconditional branch
		inst.Op = OpB
		inst.Imm = SignExtend(uint32(hw&0x7ff)<<1, 12)
		inst.HasImm = true
	}
}

// 000xx: LSL/LSR/ASR (immediate), ADD/SUB (register and 3 bit immediate).
func decodeThumbShiftAddSub(hw uint16, inst *Instruction) {
	imm5 := uint32(hw>>6) & 0x1f
	rm := int(hw>>3) & 0x07
	rd := int(hw) & 0x07

	switch (hw >> 11) & 0x03 {
	case 0b00:
		// LSL Rd, Rm, #imm5. a shift of zero is MOV (register)
		inst.Rd = rd
		inst.Rm = rm
		inst.SetFlags = true
		inst.ShiftType = ShiftLSL
		inst.ShiftN = imm5
		if imm5 == 0 {
			inst.Op = OpMOVS
		} else {
			inst.Op = OpLSLS
		}
	case 0b01:
		// LSR Rd, Rm, #imm5. an encoded shift of zero means 32
		inst.Op = OpLSRS
		inst.Rd = rd
		inst.Rm = rm
		inst.SetFlags = true
		inst.ShiftType = ShiftLSR
		if imm5 == 0 {
			inst.ShiftN = 32
		} else {
			inst.ShiftN = imm5
		}
	case 0b10:
		// ASR Rd, Rm, #imm5. an encoded shift of zero means 32
		inst.Op = OpASRS
		inst.Rd = rd
		inst.Rm = rm
		inst.SetFlags = true
		inst.ShiftType = ShiftASR
		if imm5 == 0 {
			inst.ShiftN = 32
		} else {
			inst.ShiftN = imm5
		}
	case 0b11:
		inst.SetFlags = true
		inst.Rd = rd
		inst.Rn = rm
		switch (hw >> 9) & 0x03 {
		case 0b00:
			inst.Op = OpADDS
			inst.Rm = int(hw>>6) & 0x07
		case 0b01:
			inst.Op = OpSUBS
			inst.Rm = int(hw>>6) & 0x07
		case 0b10:
			inst.Op = OpADDS
			inst.Imm = uint32(hw>>6) & 0x07
			inst.HasImm = true
		case 0b11:
			inst.Op = OpSUBS
			inst.Imm = uint32(hw>>6) & 0x07
			inst.HasImm = true
		}
	}
}

// 001xx: MOV/CMP/ADD/SUB with 8 bit immediate.
func decodeThumbDataImm(hw uint16, inst *Instruction) {
	rd := int(hw>>8) & 0x07
	inst.Imm = uint32(hw & 0xff)
	inst.HasImm = true

	switch (hw >> 11) & 0x03 {
	case 0b00:
		inst.Op = OpMOVS
		inst.SetFlags = true
		inst.Rd = rd
	case 0b01:
		inst.Op = OpCMP
		inst.Rn = rd
	case 0b10:
		inst.Op = OpADDS
		inst.SetFlags = true
		inst.Rd = rd
		inst.Rn = rd
	case 0b11:
		inst.Op = OpSUBS
		inst.SetFlags = true
		inst.Rd = rd
		inst.Rn = rd
	}
}

// 010000: data processing (register). all of these set the flags.
func decodeThumbDataProcessing(hw uint16, inst *Instruction) {
	rm := int(hw>>3) & 0x07
	rdn := int(hw) & 0x07

	inst.SetFlags = true

	switch (hw >> 6) & 0x0f {
	case 0x0:
		inst.Op = OpANDS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0x1:
		inst.Op = OpEORS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0x2:
		inst.Op = OpLSLS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rs = rm
	case 0x3:
		inst.Op = OpLSRS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rs = rm
	case 0x4:
		inst.Op = OpASRS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rs = rm
	case 0x5:
		inst.Op = OpADCS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0x6:
		inst.Op = OpSBCS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0x7:
		inst.Op = OpRORS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rs = rm
	case 0x8:
		inst.Op = OpTST
		inst.Rn = rdn
		inst.Rm = rm
	case 0x9:
		// RSB Rd, Rm, #0. the old NEG mnemonic
		inst.Op = OpRSBS
		inst.Rd = rdn
		inst.Rn = rm
		inst.Imm = 0
		inst.HasImm = true
	case 0xa:
		inst.Op = OpCMP
		inst.Rn = rdn
		inst.Rm = rm
	case 0xb:
		inst.Op = OpCMN
		inst.Rn = rdn
		inst.Rm = rm
	case 0xc:
		inst.Op = OpORRS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0xd:
		inst.Op = OpMULS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0xe:
		inst.Op = OpBICS
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0xf:
		inst.Op = OpMVNS
		inst.Rd = rdn
		inst.Rm = rm
	}
}

// 010001: special data processing and branch/exchange. the only 16 bit
// group with access to the high registers.
func decodeThumbSpecialDataBranch(hw uint16, inst *Instruction) {
	rdn := int(hw>>4)&0x08 | int(hw)&0x07
	rm := int(hw>>3) & 0x0f

	switch (hw >> 8) & 0x03 {
	case 0b00:
		inst.Op = OpADD
		inst.Rd = rdn
		inst.Rn = rdn
		inst.Rm = rm
	case 0b01:
		inst.Op = OpCMP
		inst.Rn = rdn
		inst.Rm = rm
	case 0b10:
		inst.Op = OpMOV
		inst.Rd = rdn
		inst.Rm = rm
	case 0b11:
		if hw&0x0080 == 0x0080 {
			inst.Op = OpBLX
		} else {
			inst.Op = OpBX
		}
		inst.Rm = rm
	}
}

// 0101xx: load/store with register offset.
func decodeThumbLoadStoreRegister(hw uint16, inst *Instruction) {
	inst.Rt = int(hw) & 0x07
	inst.Rn = int(hw>>3) & 0x07
	inst.Rm = int(hw>>6) & 0x07

	switch (hw >> 9) & 0x07 {
	case 0b000:
		inst.Op = OpSTR
	case 0b001:
		inst.Op = OpSTRH
	case 0b010:
		inst.Op = OpSTRB
	case 0b011:
		inst.Op = OpLDRSB
	case 0b100:
		inst.Op = OpLDR
	case 0b101:
		inst.Op = OpLDRH
	case 0b110:
		inst.Op = OpLDRB
	case 0b111:
		inst.Op = OpLDRSH
	}
}

// 011xx: load/store word and byte with 5 bit immediate offset.
func decodeThumbLoadStoreImm(hw uint16, inst *Instruction) {
	imm5 := uint32(hw>>6) & 0x1f
	inst.Rt = int(hw) & 0x07
	inst.Rn = int(hw>>3) & 0x07
	inst.HasImm = true

	switch (hw >> 11) & 0x03 {
	case 0b00:
		inst.Op = OpSTR
		inst.Imm = imm5 << 2
	case 0b01:
		inst.Op = OpLDR
		inst.Imm = imm5 << 2
	case 0b10:
		inst.Op = OpSTRB
		inst.Imm = imm5
	case 0b11:
		inst.Op = OpLDRB
		inst.Imm = imm5
	}
}

// 1011xx: the miscellaneous group. condition tree built from the table in
// "A5.2.5" of "ARMv7-M".
func decodeThumbMiscellaneous(hw uint16, inst *Instruction) {
	switch (hw >> 8) & 0x0f {
	case 0b0000:
		// ADD/SUB SP, #imm7*4
		inst.Rd = rSP
		inst.Rn = rSP
		inst.Imm = uint32(hw&0x7f) << 2
		inst.HasImm = true
		if hw&0x0080 == 0x0080 {
			inst.Op = OpSUB
		} else {
			inst.Op = OpADD
		}
	case 0b0010:
		// sign/zero extend
		inst.Rd = int(hw) & 0x07
		inst.Rm = int(hw>>3) & 0x07
		switch (hw >> 6) & 0x03 {
		case 0b00:
			inst.Op = OpSXTH
		case 0b01:
			inst.Op = OpSXTB
		case 0b10:
			inst.Op = OpUXTH
		case 0b11:
			inst.Op = OpUXTB
		}
	case 0b0001, 0b0011, 0b1001, 0b1011:
		// CBZ/CBNZ Rn, #imm. the offset is always forwards
		inst.Rn = int(hw) & 0x07
		i := uint32(hw>>9) & 0x01
		inst.Imm = (i<<5 | uint32(hw>>3)&0x1f) << 1
		inst.HasImm = true
		if hw&0x0800 == 0x0800 {
			inst.Op = OpCBNZ
		} else {
			inst.Op = OpCBZ
		}
	case 0b0100, 0b0101:
		// PUSH {...}. the M bit adds LR to the list
		inst.Op = OpPUSH
		inst.RegisterList = hw & 0xff
		if hw&0x0100 == 0x0100 {
			inst.RegisterList |= 1 << rLR
		}
	case 0b0110:
		// CPS. the imm records the affected flag bits (a, i, f)
		if hw&0x0010 == 0x0010 {
			inst.Op = OpCPSID
		} else {
			inst.Op = OpCPSIE
		}
		inst.Imm = uint32(hw) & 0x07
		inst.HasImm = true
	case 0b1010:
		// reverse bytes
		inst.Rd = int(hw) & 0x07
		inst.Rm = int(hw>>3) & 0x07
		switch (hw >> 6) & 0x03 {
		case 0b00:
			inst.Op = OpREV
		case 0b01:
			inst.Op = OpREV16
		case 0b11:
			inst.Op = OpREVSH
		default:
			inst.Op = OpUNKNOWN
		}
	case 0b1100, 0b1101:
		// POP {...}. the P bit adds PC to the list
		inst.Op = OpPOP
		inst.RegisterList = hw & 0xff
		if hw&0x0100 == 0x0100 {
			inst.RegisterList |= 1 << rPC
		}
	case 0b1110:
		inst.Op = OpBKPT
		inst.Imm = uint32(hw) & 0xff
		inst.HasImm = true
	case 0b1111:
		if hw&0x000f != 0 {
			// IT
			inst.Op = OpIT
			inst.FirstCond = uint8(hw>>4) & 0x0f
			inst.Mask = uint8(hw) & 0x0f
			inst.Cond = Condition(inst.FirstCond)
		} else {
			// nop-compatible hints
			switch (hw >> 4) & 0x0f {
			case 0x0:
				inst.Op = OpNOP
			case 0x1:
				inst.Op = OpYIELD
			case 0x2:
				inst.Op = OpWFE
			case 0x3:
				inst.Op = OpWFI
			case 0x4:
				inst.Op = OpSEV
			default:
				inst.Op = OpNOP
			}
		}
	default:
		inst.Op = OpUNKNOWN
	}
}

// 11000/11001: LDM/STM with the low registers only. STM always writes
// back; LDM writes back unless Rn is in the register list.
func decodeThumbMultipleLoadStore(hw uint16, inst *Instruction) {
	rn := int(hw>>8) & 0x07
	inst.Rn = rn
	inst.RegisterList = hw & 0xff
	inst.Wback = true

	if hw&0x0800 == 0x0800 {
		inst.Op = OpLDM
		if inst.RegisterList&(1<<rn) != 0 {
			inst.Wback = false
		}
	} else {
		inst.Op = OpSTM
	}
}

// 1101xx: conditional branch, UDF and SVC.
func decodeThumbConditionalBranch(hw uint16, inst *Instruction) {
	cond := (hw >> 8) & 0x0f

	switch cond {
	case 0x0e:
		// permanently undefined
		inst.Op = OpUNDEFINED
	case 0x0f:
		inst.Op = OpSVC
		inst.Imm = uint32(hw) & 0xff
		inst.HasImm = true
	default:
		inst.Op = OpB
		inst.Cond = Condition(cond)
		inst.Imm = SignExtend(uint32(hw&0xff)<<1, 9)
		inst.HasImm = true
	}
}
