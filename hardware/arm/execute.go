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
	"github.com/jetsetilly/gopherwatch/logger"
)

// execute commits a decoded instruction to the register file and the
// bus. Returns the approximate number of cycles consumed.
//
// The switch is the single dispatch point for the whole instruction set;
// the handlers are grouped into files by instruction family.
func (arm *ARM) execute(inst *Instruction) int {
	switch inst.Op {
	case OpMOV, OpMOVS:
		return arm.executeMov(inst)
	case OpMOVW:
		return arm.executeMovw(inst)
	case OpMOVT:
		return arm.executeMovt(inst)
	case OpMVN, OpMVNS:
		return arm.executeMvn(inst)

	case OpADD, OpADDS, OpADC, OpADCS, OpSUB, OpSUBS, OpSBC, OpSBCS, OpRSB, OpRSBS:
		return arm.executeArithmetic(inst)
	case OpAND, OpANDS, OpORR, OpORRS, OpEOR, OpEORS, OpORN, OpORNS, OpBIC, OpBICS:
		return arm.executeLogical(inst)
	case OpTST, OpTEQ:
		return arm.executeTest(inst)
	case OpCMP, OpCMN:
		return arm.executeCompare(inst)

	case OpLSL, OpLSLS, OpLSR, OpLSRS, OpASR, OpASRS, OpROR, OpRORS:
		return arm.executeShift(inst)

	case OpMUL, OpMULS:
		return arm.executeMul(inst)
	case OpMLA, OpMLS:
		return arm.executeMulAccumulate(inst)
	case OpSMULL, OpUMULL:
		return arm.executeMulLong(inst)
	case OpSMLAL, OpUMLAL:
		return arm.executeMulAccumulateLong(inst)
	case OpSDIV, OpUDIV:
		return arm.executeDivide(inst)

	case OpLDR, OpLDRB, OpLDRH, OpLDRSB, OpLDRSH:
		return arm.executeLoad(inst)
	case OpLDRLIT:
		return arm.executeLoadLiteral(inst)
	case OpLDRD:
		return arm.executeLoadDual(inst)
	case OpSTR, OpSTRB, OpSTRH:
		return arm.executeStore(inst)
	case OpSTRD:
		return arm.executeStoreDual(inst)
	case OpLDM, OpLDMDB:
		return arm.executeLoadMultiple(inst)
	case OpSTM, OpSTMDB:
		return arm.executeStoreMultiple(inst)
	case OpPUSH:
		return arm.executePush(inst)
	case OpPOP:
		return arm.executePop(inst)

	case OpB:
		return arm.executeBranch(inst)
	case OpBL:
		return arm.executeBranchLink(inst)
	case OpBX:
		return arm.executeBranchExchange(inst)
	case OpBLX:
		return arm.executeBranchLinkExchange(inst)
	case OpCBZ, OpCBNZ:
		return arm.executeCompareBranch(inst)
	case OpTBB, OpTBH:
		return arm.executeTableBranch(inst)

	case OpIT:
		arm.itState = inst.FirstCond<<4 | inst.Mask
		return 1

	case OpSXTB, OpSXTH, OpUXTB, OpUXTH, OpSXTAB, OpSXTAH, OpUXTAB, OpUXTAH:
		return arm.executeExtend(inst)

	case OpCLZ:
		arm.setReg(inst.Rd, Clz(arm.reg(inst.Rm)))
		return 1
	case OpRBIT:
		arm.setReg(inst.Rd, Rbit(arm.reg(inst.Rm)))
		return 1
	case OpREV:
		arm.setReg(inst.Rd, Rev(arm.reg(inst.Rm)))
		return 1
	case OpREV16:
		arm.setReg(inst.Rd, Rev16(arm.reg(inst.Rm)))
		return 1
	case OpREVSH:
		arm.setReg(inst.Rd, Revsh(arm.reg(inst.Rm)))
		return 1

	case OpBFI:
		arm.setReg(inst.Rd, BitFieldInsert(arm.reg(inst.Rd), arm.reg(inst.Rn), inst.Lsb, inst.Width))
		return 1
	case OpBFC:
		arm.setReg(inst.Rd, BitFieldClear(arm.reg(inst.Rd), inst.Lsb, inst.Width))
		return 1
	case OpUBFX:
		arm.setReg(inst.Rd, BitFieldExtract(arm.reg(inst.Rn), inst.Lsb, inst.Width, false))
		return 1
	case OpSBFX:
		arm.setReg(inst.Rd, BitFieldExtract(arm.reg(inst.Rn), inst.Lsb, inst.Width, true))
		return 1

	case OpSSAT, OpUSAT:
		return arm.executeSaturate(inst)

	case OpMSR:
		return arm.executeMsr(inst)
	case OpMRS:
		return arm.executeMrs(inst)
	case OpSVC:
		arm.exc.SetPending(ExcSVCall)
		return 1
	case OpBKPT:
		// a debug stop, not a fault, in this emulation
		if arm.trace {
			logger.Logf(logger.Allow, "ARM", "BKPT #%d at %08x", inst.Imm, arm.instructionPC)
			logger.Log(logger.Allow, "ARM", arm.regs.Dump())
		}
		return 1
	case OpCPSIE:
		if inst.Imm&0x02 == 0x02 {
			arm.regs.primask = 0
		}
		if inst.Imm&0x01 == 0x01 {
			arm.regs.faultmask = 0
		}
		return 1
	case OpCPSID:
		if inst.Imm&0x02 == 0x02 {
			arm.regs.primask = 1
		}
		if inst.Imm&0x01 == 0x01 {
			arm.regs.faultmask = 1
		}
		return 1

	case OpLDREX, OpLDREXB, OpLDREXH:
		return arm.executeLoadExclusive(inst)
	case OpSTREX, OpSTREXB, OpSTREXH:
		return arm.executeStoreExclusive(inst)
	case OpCLREX:
		arm.exclusiveActive = false
		return 1

	case OpWFI:
		arm.halted = true
		return 1
	case OpNOP, OpWFE, OpYIELD, OpSEV, OpDMB, OpDSB, OpISB:
		return 1

	case OpUNDEFINED:
		// architecturally undefined: a UsageFault
		arm.exc.SetPending(ExcUsageFault)
		return 1
	case OpUNKNOWN:
		fallthrough
	default:
		// an encoding this emulation does not implement. treated as a
		// HardFault so that firmware relying on it fails loudly
		if arm.trace {
			logger.Logf(logger.Allow, "ARM", "unknown instruction %08x at %08x", inst.Raw, inst.Address)
			logger.Log(logger.Allow, "ARM", arm.regs.Dump())
		}
		arm.exc.SetPending(ExcHardFault)
		return 1
	}
}

// reg reads a register, treating RegNone as zero.
func (arm *ARM) reg(reg int) uint32 {
	if reg == RegNone {
		return 0
	}
	return arm.regs.Register(reg)
}

// setReg writes a register. Writes to the PC are routed through the
// branch logic, including EXC_RETURN detection.
func (arm *ARM) setReg(reg int, value uint32) {
	if reg == RegNone {
		return
	}
	if reg == rPC {
		if IsExcReturn(value) {
			arm.exceptionReturn(value)
			return
		}
		arm.regs.Branch(value)
		return
	}
	arm.regs.SetRegister(reg, value)
}

// alignedPC is the PC-relative base used by LDR (literal), ADR, TBB/TBH
// and the PC-relative ADD/SUB: the address of the current instruction
// plus four, word aligned.
func (arm *ARM) alignedPC() uint32 {
	return (arm.instructionPC + 4) & 0xfffffffc
}

// shifterOperand resolves the second operand of a data processing
// instruction: either an immediate (expanded from the modified immediate
// form where the encoding requires it) or a register with an optional
// shift. The returned carry is the shifter/expansion carry-out, used by
// the logical instructions when setting flags.
func (arm *ARM) shifterOperand(inst *Instruction) (uint32, bool) {
	carry := arm.regs.psr.Carry()

	if inst.HasImm {
		if inst.ModifiedImm {
			return ThumbExpandImm(inst.Imm, carry)
		}
		return inst.Imm, carry
	}

	if inst.Rm != RegNone {
		return ApplyShift(arm.reg(inst.Rm), inst.ShiftType, inst.ShiftN, carry)
	}

	return 0, carry
}
