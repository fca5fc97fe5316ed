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

import (
	"fmt"
	"strings"
)

// Opcode is the decoded operation of an Instruction.
type Opcode int

// List of Opcode values. The S variants are distinct opcodes, as they are
// in a disassembly, rather than a flag on the base operation. The
// executor treats OpUNKNOWN as a HardFault condition and OpUNDEFINED as a
// UsageFault condition.
const (
	OpUNKNOWN Opcode = iota
	OpNOP
	OpUNDEFINED

	OpMOV
	OpMOVS
	OpMVN
	OpMVNS
	OpADD
	OpADDS
	OpADC
	OpADCS
	OpSUB
	OpSUBS
	OpSBC
	OpSBCS
	OpRSB
	OpRSBS
	OpMUL
	OpMULS
	OpAND
	OpANDS
	OpORR
	OpORRS
	OpEOR
	OpEORS
	OpORN
	OpORNS
	OpBIC
	OpBICS
	OpTST
	OpTEQ
	OpCMP
	OpCMN

	OpLSL
	OpLSLS
	OpLSR
	OpLSRS
	OpASR
	OpASRS
	OpROR
	OpRORS

	OpMLA
	OpMLS
	OpSMULL
	OpUMULL
	OpSMLAL
	OpUMLAL
	OpSDIV
	OpUDIV

	OpLDR
	OpLDRLIT
	OpLDRB
	OpLDRH
	OpLDRSB
	OpLDRSH
	OpLDRD
	OpLDM
	OpLDMDB

	OpSTR
	OpSTRB
	OpSTRH
	OpSTRD
	OpSTM
	OpSTMDB

	OpPUSH
	OpPOP

	OpB
	OpBL
	OpBX
	OpBLX
	OpCBZ
	OpCBNZ
	OpTBB
	OpTBH

	OpIT

	OpSXTB
	OpSXTH
	OpUXTB
	OpUXTH
	OpSXTAB
	OpSXTAH
	OpUXTAB
	OpUXTAH

	OpCLZ
	OpRBIT
	OpREV
	OpREV16
	OpREVSH
	OpBFI
	OpBFC
	OpUBFX
	OpSBFX

	OpSSAT
	OpUSAT

	OpMOVW
	OpMOVT

	OpSEV
	OpWFE
	OpWFI
	OpYIELD
	OpISB
	OpDSB
	OpDMB

	OpMSR
	OpMRS
	OpSVC
	OpBKPT
	OpCPSIE
	OpCPSID

	OpLDREX
	OpLDREXB
	OpLDREXH
	OpSTREX
	OpSTREXB
	OpSTREXH
	OpCLREX

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	"UNKNOWN", "NOP", "UNDEFINED",
	"MOV", "MOVS", "MVN", "MVNS", "ADD", "ADDS", "ADC", "ADCS",
	"SUB", "SUBS", "SBC", "SBCS", "RSB", "RSBS", "MUL", "MULS",
	"AND", "ANDS", "ORR", "ORRS", "EOR", "EORS", "ORN", "ORNS",
	"BIC", "BICS", "TST", "TEQ", "CMP", "CMN",
	"LSL", "LSLS", "LSR", "LSRS", "ASR", "ASRS", "ROR", "RORS",
	"MLA", "MLS", "SMULL", "UMULL", "SMLAL", "UMLAL", "SDIV", "UDIV",
	"LDR", "LDR", "LDRB", "LDRH", "LDRSB", "LDRSH", "LDRD", "LDM", "LDMDB",
	"STR", "STRB", "STRH", "STRD", "STM", "STMDB",
	"PUSH", "POP",
	"B", "BL", "BX", "BLX", "CBZ", "CBNZ", "TBB", "TBH",
	"IT",
	"SXTB", "SXTH", "UXTB", "UXTH", "SXTAB", "SXTAH", "UXTAB", "UXTAH",
	"CLZ", "RBIT", "REV", "REV16", "REVSH", "BFI", "BFC", "UBFX", "SBFX",
	"SSAT", "USAT",
	"MOVW", "MOVT",
	"SEV", "WFE", "WFI", "YIELD", "ISB", "DSB", "DMB",
	"MSR", "MRS", "SVC", "BKPT", "CPSIE", "CPSID",
	"LDREX", "LDREXB", "LDREXH", "STREX", "STREXB", "STREXH", "CLREX",
}

func (op Opcode) String() string {
	if op < 0 || op >= numOpcodes {
		return "INVALID"
	}
	return opcodeNames[op]
}

// Condition is the four bit condition selector attached to conditional
// branches and to instructions inside an IT block.
type Condition uint8

// List of Condition values from "A7.3" of "ARMv7-M".
const (
	CondEQ Condition = iota
	CondNE
	CondCS
	CondCC
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
	CondNone
)

var conditionNames = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL", "",
}

func (cond Condition) String() string {
	return conditionNames[cond&0x0f]
}

// Passed tests the condition against the PSR flags.
func (cond Condition) Passed(psr *PSR) bool {
	switch cond {
	case CondEQ:
		return psr.Zero()
	case CondNE:
		return !psr.Zero()
	case CondCS:
		return psr.Carry()
	case CondCC:
		return !psr.Carry()
	case CondMI:
		return psr.Negative()
	case CondPL:
		return !psr.Negative()
	case CondVS:
		return psr.Overflow()
	case CondVC:
		return !psr.Overflow()
	case CondHI:
		return psr.Carry() && !psr.Zero()
	case CondLS:
		return !psr.Carry() || psr.Zero()
	case CondGE:
		return psr.Negative() == psr.Overflow()
	case CondLT:
		return psr.Negative() != psr.Overflow()
	case CondGT:
		return !psr.Zero() && psr.Negative() == psr.Overflow()
	case CondLE:
		return psr.Zero() || psr.Negative() != psr.Overflow()
	}
	return true
}

// RegNone marks a register field of Instruction as absent.
const RegNone = -1

// Instruction is the uniform record produced by the decoder and consumed
// by the executor. Only the fields meaningful to the opcode are set; the
// register fields default to RegNone.
//
// For the 32 bit data processing group the Imm field holds the raw 12 bit
// modified immediate form. Expansion with ThumbExpandImm happens in the
// executor because the expansion consumes the live carry flag.
type Instruction struct {
	Op   Opcode
	Cond Condition

	// number of bytes consumed from the program stream. 2 or 4
	Size uint32

	Rd   int
	Rn   int
	Rm   int
	Rs   int
	Rt   int
	Rt2  int
	Rdlo int
	Rdhi int

	Imm    uint32
	HasImm bool

	// the Imm field is the raw 12 bit modified immediate form and must
	// be expanded with ThumbExpandImm before use
	ModifiedImm bool

	ShiftType ShiftType
	ShiftN    uint32

	SetFlags bool
	Wback    bool
	Index    bool
	Add      bool

	// bit N set means register N is in the list (LDM/STM/PUSH/POP)
	RegisterList uint16

	// IT instruction fields
	FirstCond uint8
	Mask      uint8

	// bitfield instructions
	Lsb   uint32
	Width uint32

	// saturation instructions
	SatImm uint32

	// extend instructions. one of 0, 8, 16, 24
	Rotation uint32

	// the opcode bytes and the address they were fetched from
	Raw     uint32
	Address uint32
}

func newInstruction(address uint32) Instruction {
	return Instruction{
		Cond:    CondAL,
		Size:    2,
		Rd:      RegNone,
		Rn:      RegNone,
		Rm:      RegNone,
		Rs:      RegNone,
		Rt:      RegNone,
		Rt2:     RegNone,
		Rdlo:    RegNone,
		Rdhi:    RegNone,
		Index:   true,
		Add:     true,
		Address: address,
	}
}

func (inst Instruction) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%08x: %s", inst.Address, inst.Op))
	if inst.Cond != CondAL && inst.Cond != CondNone {
		s.WriteString(fmt.Sprintf(".%s", inst.Cond))
	}
	reg := func(label string, r int) {
		if r != RegNone {
			s.WriteString(fmt.Sprintf(" %s=R%d", label, r))
		}
	}
	reg("Rd", inst.Rd)
	reg("Rt", inst.Rt)
	reg("Rn", inst.Rn)
	reg("Rm", inst.Rm)
	if inst.HasImm {
		s.WriteString(fmt.Sprintf(" imm=%#x", inst.Imm))
	}
	if inst.RegisterList != 0 {
		s.WriteString(fmt.Sprintf(" regs=%016b", inst.RegisterList))
	}
	return s.String()
}
