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

// loadStoreAddress computes the transfer address for the single
// load/store instructions and performs the writeback. The sequence is
// common to every addressing mode:
//
//	offsetAddr = base +/- offset
//	addr       = offsetAddr when pre-indexed, base otherwise
//	Rn         = offsetAddr when writeback is requested
func (arm *ARM) loadStoreAddress(inst *Instruction) uint32 {
	base := arm.reg(inst.Rn)
	if inst.Rn == rPC {
		base = arm.alignedPC()
	}

	var offset uint32
	if inst.Rm != RegNone {
		offset, _ = ApplyShift(arm.reg(inst.Rm), inst.ShiftType, inst.ShiftN, false)
	} else if inst.HasImm {
		offset = inst.Imm
	}

	var offsetAddr uint32
	if inst.Add {
		offsetAddr = base + offset
	} else {
		offsetAddr = base - offset
	}

	addr := base
	if inst.Index {
		addr = offsetAddr
	}

	if inst.Wback {
		arm.setReg(inst.Rn, offsetAddr)
	}

	return addr
}

func (arm *ARM) executeLoad(inst *Instruction) int {
	addr := arm.loadStoreAddress(inst)

	var value uint32
	switch inst.Op {
	case OpLDR:
		value = arm.read32(addr)
	case OpLDRB:
		value = arm.read8(addr)
	case OpLDRH:
		value = arm.read16(addr)
	case OpLDRSB:
		value = SignExtend(arm.read8(addr), 8)
	case OpLDRSH:
		value = SignExtend(arm.read16(addr), 16)
	}

	// a load into the PC is a branch, including EXC_RETURN detection
	arm.setReg(inst.Rt, value)

	return 2
}

func (arm *ARM) executeLoadLiteral(inst *Instruction) int {
	base := arm.alignedPC()

	var addr uint32
	if inst.Add {
		addr = base + inst.Imm
	} else {
		addr = base - inst.Imm
	}

	arm.setReg(inst.Rt, arm.read32(addr))

	return 2
}

func (arm *ARM) executeLoadDual(inst *Instruction) int {
	base := arm.reg(inst.Rn)

	var offsetAddr uint32
	if inst.Add {
		offsetAddr = base + inst.Imm
	} else {
		offsetAddr = base - inst.Imm
	}

	addr := base
	if inst.Index {
		addr = offsetAddr
	}

	arm.setReg(inst.Rt, arm.read32(addr))
	arm.setReg(inst.Rt2, arm.read32(addr+4))

	if inst.Wback {
		arm.setReg(inst.Rn, offsetAddr)
	}

	return 3
}

func (arm *ARM) executeStore(inst *Instruction) int {
	addr := arm.loadStoreAddress(inst)
	value := arm.reg(inst.Rt)

	switch inst.Op {
	case OpSTR:
		arm.write32(addr, value)
	case OpSTRB:
		arm.write8(addr, value)
	case OpSTRH:
		arm.write16(addr, value)
	}

	return 2
}

func (arm *ARM) executeStoreDual(inst *Instruction) int {
	base := arm.reg(inst.Rn)

	var offsetAddr uint32
	if inst.Add {
		offsetAddr = base + inst.Imm
	} else {
		offsetAddr = base - inst.Imm
	}

	addr := base
	if inst.Index {
		addr = offsetAddr
	}

	arm.write32(addr, arm.reg(inst.Rt))
	arm.write32(addr+4, arm.reg(inst.Rt2))

	if inst.Wback {
		arm.setReg(inst.Rn, offsetAddr)
	}

	return 3
}

func (arm *ARM) executeLoadMultiple(inst *Instruction) int {
	count := uint32(bits.OnesCount16(inst.RegisterList))

	start := arm.reg(inst.Rn)
	if inst.Op == OpLDMDB {
		start -= count * 4
	}

	// the PC is loaded last so that a branch (or exception return) sees
	// the rest of the register file already updated
	addr := start
	var pcSlot uint32
	for reg := 0; reg < 16; reg++ {
		if inst.RegisterList&(1<<reg) == 0 {
			continue
		}
		if reg == rPC {
			pcSlot = addr
		} else {
			arm.setReg(reg, arm.read32(addr))
		}
		addr += 4
	}

	if inst.Wback && inst.RegisterList&(1<<inst.Rn) == 0 {
		if inst.Op == OpLDMDB {
			arm.setReg(inst.Rn, start)
		} else {
			arm.setReg(inst.Rn, addr)
		}
	}

	if inst.RegisterList&(1<<rPC) != 0 {
		arm.setReg(rPC, arm.read32(pcSlot))
	}

	return int(1 + count)
}

func (arm *ARM) executeStoreMultiple(inst *Instruction) int {
	count := uint32(bits.OnesCount16(inst.RegisterList))

	addr := arm.reg(inst.Rn)
	if inst.Op == OpSTMDB {
		addr -= count * 4
	}
	base := addr

	for reg := 0; reg < 16; reg++ {
		if inst.RegisterList&(1<<reg) == 0 {
			continue
		}
		arm.write32(addr, arm.reg(reg))
		addr += 4
	}

	if inst.Wback {
		if inst.Op == OpSTMDB {
			arm.setReg(inst.Rn, base)
		} else {
			arm.setReg(inst.Rn, addr)
		}
	}

	return int(1 + count)
}

func (arm *ARM) executePush(inst *Instruction) int {
	count := uint32(bits.OnesCount16(inst.RegisterList))

	sp := arm.regs.SP() - count*4
	addr := sp

	for reg := 0; reg < 16; reg++ {
		if inst.RegisterList&(1<<reg) == 0 {
			continue
		}
		arm.write32(addr, arm.reg(reg))
		addr += 4
	}

	arm.regs.SetSP(sp)

	return int(1 + count)
}

func (arm *ARM) executePop(inst *Instruction) int {
	count := uint32(bits.OnesCount16(inst.RegisterList))

	addr := arm.regs.SP()
	arm.regs.SetSP(addr + count*4)

	for reg := 0; reg < 16; reg++ {
		if inst.RegisterList&(1<<reg) == 0 {
			continue
		}
		if reg == rPC {
			continue
		}
		arm.setReg(reg, arm.read32(addr))
		addr += 4
	}

	// the PC is always the highest register in a POP list so its slot is
	// the last word popped
	if inst.RegisterList&(1<<rPC) != 0 {
		arm.setReg(rPC, arm.read32(addr))
	}

	return int(1 + count)
}

func (arm *ARM) executeLoadExclusive(inst *Instruction) int {
	addr := arm.reg(inst.Rn)
	if inst.Op == OpLDREX {
		addr += inst.Imm
	}

	switch inst.Op {
	case OpLDREX:
		arm.setReg(inst.Rt, arm.read32(addr))
	case OpLDREXB:
		arm.setReg(inst.Rt, arm.read8(addr))
	case OpLDREXH:
		arm.setReg(inst.Rt, arm.read16(addr))
	}

	arm.exclusiveAddr = addr
	arm.exclusiveActive = true

	return 2
}

func (arm *ARM) executeStoreExclusive(inst *Instruction) int {
	addr := arm.reg(inst.Rn)
	if inst.Op == OpSTREX {
		addr += inst.Imm
	}

	// the store succeeds only while the monitor is armed and, for the
	// word form, the address matches the monitored address. success or
	// failure, the monitor is disarmed
	ok := arm.exclusiveActive
	if inst.Op == OpSTREX {
		ok = ok && arm.exclusiveAddr == addr
	}

	if ok {
		switch inst.Op {
		case OpSTREX:
			arm.write32(addr, arm.reg(inst.Rt))
		case OpSTREXB:
			arm.write8(addr, arm.reg(inst.Rt))
		case OpSTREXH:
			arm.write16(addr, arm.reg(inst.Rt))
		}
		arm.setReg(inst.Rd, 0)
	} else {
		arm.setReg(inst.Rd, 1)
	}
	arm.exclusiveActive = false

	return 2
}
