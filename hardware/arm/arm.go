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

// Bus is the memory fabric as seen by the CPU. All instruction fetches
// and data accesses pass through this interface.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// ARM implements the Cortex-M7 core of the STM32H7B0.
type ARM struct {
	bus  Bus
	regs Registers
	exc  Exceptions

	// the IT state byte: (firstcond << 4) | mask. the core is in an IT
	// block while the mask bits are non-zero
	itState uint8

	// set by WFI. cleared when an exception becomes pending
	halted bool

	// the exclusive monitor used by LDREX/STREX. cleared by CLREX and by
	// any exception entry or return
	exclusiveAddr   uint32
	exclusiveActive bool

	// the address of the instruction being executed. the PC register is
	// advanced before execution so handlers that want a PC-relative base
	// use this value
	instructionPC uint32

	cycleCount uint64

	// when true every executed instruction is sent to the logger
	trace bool
}

// NewARM is the preferred method of initialisation for the ARM type.
func NewARM(bus Bus) *ARM {
	arm := &ARM{bus: bus}
	arm.exc.Reset()
	return arm
}

// Reset the core. The initial MSP and PC are fetched through the bus from
// the vector table at address zero, per the Cortex-M reset behaviour.
func (arm *ARM) Reset() {
	arm.exc.Reset()
	arm.itState = 0
	arm.halted = false
	arm.exclusiveActive = false
	arm.cycleCount = 0

	initialSP := arm.read32(0x00000000)
	resetVector := arm.read32(0x00000004)
	arm.regs.Reset(initialSP, resetVector)

	if arm.trace {
		logger.Logf(logger.Allow, "ARM", "reset: SP=%08x PC=%08x", initialSP, resetVector)
	}
}

// Registers returns the register file of the core.
func (arm *ARM) Registers() *Registers {
	return &arm.regs
}

// Exceptions returns the exception state of the core. Peripherals pend
// interrupts through this value.
func (arm *ARM) Exceptions() *Exceptions {
	return &arm.exc
}

// Halted returns true when the core is waiting for an interrupt.
func (arm *ARM) Halted() bool {
	return arm.halted
}

// Cycles returns the number of cycles consumed since reset. Cycle counts
// are approximate; this emulation makes no claim of bus accuracy.
func (arm *ARM) Cycles() uint64 {
	return arm.cycleCount
}

// SetTrace turns instruction tracing on or off.
func (arm *ARM) SetTrace(trace bool) {
	arm.trace = trace
}

func (arm *ARM) String() string {
	return arm.regs.Dump()
}

// memory access helpers. addresses are masked to the natural alignment of
// the access, matching the behaviour of the AHB matrix.

func (arm *ARM) read8(addr uint32) uint32 {
	return uint32(arm.bus.Read8(addr))
}

func (arm *ARM) read16(addr uint32) uint32 {
	return uint32(arm.bus.Read16(addr & 0xfffffffe))
}

func (arm *ARM) read32(addr uint32) uint32 {
	return arm.bus.Read32(addr & 0xfffffffc)
}

func (arm *ARM) write8(addr uint32, value uint32) {
	arm.bus.Write8(addr, uint8(value))
}

func (arm *ARM) write16(addr uint32, value uint32) {
	arm.bus.Write16(addr&0xfffffffe, uint16(value))
}

func (arm *ARM) write32(addr uint32, value uint32) {
	arm.bus.Write32(addr&0xfffffffc, uint32(value))
}

// IT block handling.

func (arm *ARM) inITBlock() bool {
	return arm.itState&0x0f != 0
}

// itCondition is the condition applied to the current instruction in the
// IT block. The low bit of the condition nibble is refreshed from the
// mask as the block advances, giving the then/else polarity for each
// slot.
func (arm *ARM) itCondition() Condition {
	return Condition(arm.itState >> 4)
}

func (arm *ARM) advanceITState() {
	mask := arm.itState & 0x0f
	if mask == 0 {
		return
	}
	if mask == 0b1000 {
		// last instruction of the block
		arm.itState = 0
		return
	}
	arm.itState = arm.itState&0xe0 | (arm.itState<<1)&0x1f
}

// Step executes one instruction, or accounts one idle cycle when the
// core is halted. Pending exceptions are checked once, before fetch; a
// newly pended exception is taken no later than the next instruction
// boundary. Returns the (approximate) number of cycles consumed.
func (arm *ARM) Step() int {
	if arm.halted {
		// WFI wakes on any pending exception, enabled and unmasked or
		// not. whether the exception is then taken is decided by the
		// normal priority rules below
		if !arm.exc.AnyPending() {
			arm.cycleCount++
			return 1
		}
		arm.halted = false
	}

	if number, ok := arm.exc.pendingException(&arm.regs); ok {
		arm.exceptionEntry(number)
	}

	pc := arm.regs.PC()
	arm.instructionPC = pc

	hw1 := uint16(arm.read16(pc))
	var hw2 uint16
	if Is32BitThumb2(hw1) {
		hw2 = uint16(arm.read16(pc + 2))
	}

	inst := Decode(hw1, hw2, pc)

	// an instruction in an IT block inherits the block's condition,
	// whatever condition it decoded with
	if arm.inITBlock() && inst.Op != OpIT {
		inst.Cond = arm.itCondition()
	}

	// the PC advances before execution so that PC reads observe the
	// address of the current instruction plus four
	arm.regs.SetPC(pc + inst.Size)

	if inst.Cond != CondAL && inst.Cond != CondNone && !inst.Cond.Passed(&arm.regs.psr) {
		// "A7.3.2: Conditional execution of undefined instructions
		//
		// If an undefined instruction fails a condition check in Armv7-M, the
		// instruction behaves as a NOP and does not cause an exception"
		if arm.inITBlock() {
			arm.advanceITState()
		}
		arm.cycleCount++
		return 1
	}

	cycles := arm.execute(&inst)

	if arm.inITBlock() && inst.Op != OpIT {
		arm.advanceITState()
	}

	arm.cycleCount += uint64(cycles)

	if arm.trace {
		logger.Log(logger.Allow, "ARM", inst)
	}

	return cycles
}

// exceptionEntry performs the stacking sequence of "B1.5.6" of "ARMv7-M"
// and branches to the handler fetched from the vector table.
func (arm *ARM) exceptionEntry(number int) {
	regs := &arm.regs

	// the stacking stack pointer: PSP only in Thread mode with SPSEL set
	usePSP := regs.psr.ExceptionNumber() == 0 && regs.control&0x02 == 0x02

	var frameSP uint32
	if usePSP {
		frameSP = regs.psp
	} else {
		frameSP = regs.msp
	}

	// when CCR.STKALIGN is set the frame is realigned to eight bytes and
	// the adjustment recorded in bit nine of the stacked xPSR
	realigned := false
	if arm.exc.ccr&0x200 == 0x200 && frameSP&0x04 == 0x04 {
		realigned = true
		frameSP -= 4
	}

	frameSP -= 32

	xpsr := regs.psr.Value()
	if realigned {
		xpsr |= 1 << psrStackAlign
	}

	arm.write32(frameSP+0, regs.regs[0])
	arm.write32(frameSP+4, regs.regs[1])
	arm.write32(frameSP+8, regs.regs[2])
	arm.write32(frameSP+12, regs.regs[3])
	arm.write32(frameSP+16, regs.regs[12])
	arm.write32(frameSP+20, regs.LR())
	arm.write32(frameSP+24, regs.PC())
	arm.write32(frameSP+28, xpsr)

	if usePSP {
		regs.psp = frameSP
	} else {
		regs.msp = frameSP
	}

	switch {
	case regs.psr.ExceptionNumber() != 0:
		regs.SetLR(ExcReturnHandlerMSP)
	case usePSP:
		regs.SetLR(ExcReturnThreadPSP)
	default:
		regs.SetLR(ExcReturnThreadMSP)
	}

	e := &arm.exc.table[number]
	e.pending = false
	e.active = true
	arm.exc.activeStack = append(arm.exc.activeStack, number)
	regs.psr.SetExceptionNumber(number)

	// entering an exception abandons any IT block and clears the
	// exclusive monitor
	arm.itState = 0
	arm.exclusiveActive = false

	handler := arm.read32(arm.exc.vtor + uint32(number)*4)
	regs.Branch(handler)
}

// exceptionReturn performs the unstacking sequence. Called when a value
// matching IsExcReturn() is loaded into the PC.
func (arm *ARM) exceptionReturn(excReturn uint32) {
	regs := &arm.regs

	usePSP := excReturn&0x04 == 0x04

	var frameSP uint32
	if usePSP {
		frameSP = regs.psp
	} else {
		frameSP = regs.msp
	}

	regs.regs[0] = arm.read32(frameSP + 0)
	regs.regs[1] = arm.read32(frameSP + 4)
	regs.regs[2] = arm.read32(frameSP + 8)
	regs.regs[3] = arm.read32(frameSP + 12)
	regs.regs[12] = arm.read32(frameSP + 16)
	regs.SetLR(arm.read32(frameSP + 20))
	returnAddress := arm.read32(frameSP + 24)
	xpsr := arm.read32(frameSP + 28)

	frameSP += 32
	if xpsr&(1<<psrStackAlign) == 1<<psrStackAlign {
		frameSP += 4
	}

	if usePSP {
		regs.psp = frameSP
	} else {
		regs.msp = frameSP
	}

	if len(arm.exc.activeStack) > 0 {
		deactivated := arm.exc.activeStack[len(arm.exc.activeStack)-1]
		arm.exc.activeStack = arm.exc.activeStack[:len(arm.exc.activeStack)-1]
		arm.exc.table[deactivated].active = false
	}

	regs.psr.SetValue(xpsr &^ (1 << psrStackAlign))

	if len(arm.exc.activeStack) > 0 {
		regs.psr.SetExceptionNumber(arm.exc.activeStack[len(arm.exc.activeStack)-1])
	} else {
		regs.psr.SetExceptionNumber(0)
	}

	// returning from an exception also clears the exclusive monitor
	arm.exclusiveActive = false

	regs.Branch(returnAddress)
}
