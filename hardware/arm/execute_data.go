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

// data processing handlers. the carry used when setting flags differs by
// family: the add/subtract group takes it from AddWithCarry while the
// logical group and the moves take it from the shifter or immediate
// expansion.

func (arm *ARM) executeMov(inst *Instruction) int {
	value, carry := arm.shifterOperand(inst)

	arm.setReg(inst.Rd, value)

	if inst.SetFlags {
		arm.regs.psr.UpdateNZ(value)
		arm.regs.psr.SetCarry(carry)
	}

	return 1
}

func (arm *ARM) executeMovw(inst *Instruction) int {
	arm.setReg(inst.Rd, inst.Imm&0xffff)
	return 1
}

func (arm *ARM) executeMovt(inst *Instruction) int {
	old := arm.reg(inst.Rd)
	arm.setReg(inst.Rd, old&0x0000ffff|inst.Imm<<16)
	return 1
}

func (arm *ARM) executeMvn(inst *Instruction) int {
	value, carry := arm.shifterOperand(inst)
	result := ^value

	arm.setReg(inst.Rd, result)

	if inst.SetFlags {
		arm.regs.psr.UpdateNZ(result)
		arm.regs.psr.SetCarry(carry)
	}

	return 1
}

func (arm *ARM) executeArithmetic(inst *Instruction) int {
	a := arm.reg(inst.Rn)
	if inst.Rn == rPC {
		a = arm.alignedPC()
	}

	b, _ := arm.shifterOperand(inst)

	var result uint32
	var carry, overflow bool

	switch inst.Op {
	case OpADD, OpADDS:
		result, carry, overflow = AddWithCarry(a, b, 0)
	case OpADC, OpADCS:
		var c uint32
		if arm.regs.psr.Carry() {
			c = 1
		}
		result, carry, overflow = AddWithCarry(a, b, c)
	case OpSUB, OpSUBS:
		result, carry, overflow = AddWithCarry(a, ^b, 1)
	case OpSBC, OpSBCS:
		var c uint32
		if arm.regs.psr.Carry() {
			c = 1
		}
		result, carry, overflow = AddWithCarry(a, ^b, c)
	case OpRSB, OpRSBS:
		result, carry, overflow = AddWithCarry(^a, b, 1)
	}

	arm.setReg(inst.Rd, result)

	if inst.SetFlags {
		arm.regs.psr.UpdateNZCV(result, carry, overflow)
	}

	return 1
}

func (arm *ARM) executeLogical(inst *Instruction) int {
	a := arm.reg(inst.Rn)
	b, carry := arm.shifterOperand(inst)

	var result uint32

	switch inst.Op {
	case OpAND, OpANDS:
		result = a & b
	case OpORR, OpORRS:
		result = a | b
	case OpEOR, OpEORS:
		result = a ^ b
	case OpORN, OpORNS:
		result = a | ^b
	case OpBIC, OpBICS:
		result = a &^ b
	}

	arm.setReg(inst.Rd, result)

	if inst.SetFlags {
		arm.regs.psr.UpdateNZ(result)
		arm.regs.psr.SetCarry(carry)
	}

	return 1
}

// TST and TEQ: the flag-only logical operations.
func (arm *ARM) executeTest(inst *Instruction) int {
	a := arm.reg(inst.Rn)
	b, carry := arm.shifterOperand(inst)

	var result uint32
	if inst.Op == OpTST {
		result = a & b
	} else {
		result = a ^ b
	}

	arm.regs.psr.UpdateNZ(result)
	arm.regs.psr.SetCarry(carry)

	return 1
}

// CMP and CMN: the flag-only arithmetic operations.
func (arm *ARM) executeCompare(inst *Instruction) int {
	a := arm.reg(inst.Rn)
	b, _ := arm.shifterOperand(inst)

	var result uint32
	var carry, overflow bool
	if inst.Op == OpCMP {
		result, carry, overflow = AddWithCarry(a, ^b, 1)
	} else {
		result, carry, overflow = AddWithCarry(a, b, 0)
	}

	arm.regs.psr.UpdateNZCV(result, carry, overflow)

	return 1
}

// the explicit shift instructions: by register when Rs is present,
// otherwise by immediate.
func (arm *ARM) executeShift(inst *Instruction) int {
	carry := arm.regs.psr.Carry()

	var result uint32

	if inst.Rs != RegNone {
		value := arm.reg(inst.Rn)
		amount := arm.reg(inst.Rs) & 0xff

		switch inst.Op {
		case OpLSL, OpLSLS:
			result, carry = Lsl(value, amount, carry)
		case OpLSR, OpLSRS:
			result, carry = Lsr(value, amount, carry)
		case OpASR, OpASRS:
			result, carry = Asr(value, amount, carry)
		case OpROR, OpRORS:
			result, carry = Ror(value, amount, carry)
		}
	} else {
		result, carry = ApplyShift(arm.reg(inst.Rm), inst.ShiftType, inst.ShiftN, carry)
	}

	arm.setReg(inst.Rd, result)

	if inst.SetFlags {
		arm.regs.psr.UpdateNZ(result)
		arm.regs.psr.SetCarry(carry)
	}

	return 1
}

func (arm *ARM) executeMul(inst *Instruction) int {
	result := arm.reg(inst.Rn) * arm.reg(inst.Rm)
	arm.setReg(inst.Rd, result)
	if inst.SetFlags {
		arm.regs.psr.UpdateNZ(result)
	}
	return 3
}

func (arm *ARM) executeMulAccumulate(inst *Instruction) int {
	product := arm.reg(inst.Rn) * arm.reg(inst.Rm)
	acc := arm.reg(inst.Rs)

	if inst.Op == OpMLA {
		arm.setReg(inst.Rd, acc+product)
	} else {
		arm.setReg(inst.Rd, acc-product)
	}
	return 3
}

func (arm *ARM) executeMulLong(inst *Instruction) int {
	lo, hi := MulLong(arm.reg(inst.Rn), arm.reg(inst.Rm), inst.Op == OpSMULL)
	arm.setReg(inst.Rdlo, lo)
	arm.setReg(inst.Rdhi, hi)
	return 4
}

func (arm *ARM) executeMulAccumulateLong(inst *Instruction) int {
	lo, hi := MulLong(arm.reg(inst.Rn), arm.reg(inst.Rm), inst.Op == OpSMLAL)

	acc := uint64(arm.reg(inst.Rdhi))<<32 | uint64(arm.reg(inst.Rdlo))
	acc += uint64(hi)<<32 | uint64(lo)

	arm.setReg(inst.Rdlo, uint32(acc))
	arm.setReg(inst.Rdhi, uint32(acc>>32))
	return 4
}

func (arm *ARM) executeDivide(inst *Instruction) int {
	if inst.Op == OpSDIV {
		arm.setReg(inst.Rd, Sdiv(arm.reg(inst.Rn), arm.reg(inst.Rm)))
	} else {
		arm.setReg(inst.Rd, Udiv(arm.reg(inst.Rn), arm.reg(inst.Rm)))
	}
	return 12
}

func (arm *ARM) executeExtend(inst *Instruction) int {
	value := arm.reg(inst.Rm)

	var extended uint32
	switch inst.Op {
	case OpSXTB, OpSXTAB:
		extended = ExtendByte(value, inst.Rotation, true)
	case OpUXTB, OpUXTAB:
		extended = ExtendByte(value, inst.Rotation, false)
	case OpSXTH, OpSXTAH:
		extended = ExtendHalfword(value, inst.Rotation, true)
	case OpUXTH, OpUXTAH:
		extended = ExtendHalfword(value, inst.Rotation, false)
	}

	switch inst.Op {
	case OpSXTAB, OpUXTAB, OpSXTAH, OpUXTAH:
		extended += arm.reg(inst.Rn)
	}

	arm.setReg(inst.Rd, extended)
	return 1
}

func (arm *ARM) executeSaturate(inst *Instruction) int {
	value, _ := ApplyShift(arm.reg(inst.Rn), inst.ShiftType, inst.ShiftN, false)

	var result uint32
	var saturated bool
	if inst.Op == OpSSAT {
		result, saturated = SignedSat(int64(int32(value)), inst.SatImm)
	} else {
		result, saturated = UnsignedSat(int64(int32(value)), inst.SatImm)
	}

	arm.setReg(inst.Rd, result)

	// the Q flag is sticky. saturation sets it, nothing in the
	// instruction set clears it except an MSR write
	if saturated {
		arm.regs.psr.SetSaturation(true)
	}

	return 1
}
