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

// register names.
const (
	rSP = 13 + iota
	rLR
	rPC
	NumRegisters
)

// PSR is the composite program status register (APSR + IPSR + EPSR).
//
// The Thumb bit (EPSR.T) is true at all times. A Cortex-M has no ARM
// state so a clear Thumb bit would mean an immediate fault on the next
// instruction; the emulation simply never clears it.
type PSR struct {
	value uint32
}

// bit positions within the PSR.
const (
	psrNegative   = 31
	psrZero       = 30
	psrCarry      = 29
	psrOverflow   = 28
	psrSaturation = 27
	psrThumb      = 24
	psrStackAlign = 9
)

// the IPSR occupies the lowest nine bits of the PSR.
const psrExceptionMask = 0x000001ff

func (psr *PSR) reset() {
	psr.value = 1 << psrThumb
}

// Value returns the PSR as a 32 bit word.
func (psr *PSR) Value() uint32 {
	return psr.value
}

// SetValue replaces the PSR with a 32 bit word. The Thumb bit is forced.
func (psr *PSR) SetValue(value uint32) {
	psr.value = value | 1<<psrThumb
}

func (psr *PSR) bit(pos int) bool {
	return psr.value>>pos&0x01 == 0x01
}

func (psr *PSR) setBit(pos int, set bool) {
	if set {
		psr.value |= 1 << pos
	} else {
		psr.value &= ^(uint32(1) << pos)
	}
}

// Negative returns the APSR.N flag.
func (psr *PSR) Negative() bool { return psr.bit(psrNegative) }

// Zero returns the APSR.Z flag.
func (psr *PSR) Zero() bool { return psr.bit(psrZero) }

// Carry returns the APSR.C flag.
func (psr *PSR) Carry() bool { return psr.bit(psrCarry) }

// Overflow returns the APSR.V flag.
func (psr *PSR) Overflow() bool { return psr.bit(psrOverflow) }

// Saturation returns the APSR.Q flag.
func (psr *PSR) Saturation() bool { return psr.bit(psrSaturation) }

// SetNegative sets the APSR.N flag.
func (psr *PSR) SetNegative(set bool) { psr.setBit(psrNegative, set) }

// SetZero sets the APSR.Z flag.
func (psr *PSR) SetZero(set bool) { psr.setBit(psrZero, set) }

// SetCarry sets the APSR.C flag.
func (psr *PSR) SetCarry(set bool) { psr.setBit(psrCarry, set) }

// SetOverflow sets the APSR.V flag.
func (psr *PSR) SetOverflow(set bool) { psr.setBit(psrOverflow, set) }

// SetSaturation sets the APSR.Q flag.
func (psr *PSR) SetSaturation(set bool) { psr.setBit(psrSaturation, set) }

// Thumb returns the EPSR.T flag. Always true.
func (psr *PSR) Thumb() bool { return psr.bit(psrThumb) }

func (psr *PSR) setThumb(set bool) { psr.setBit(psrThumb, set) }

// ExceptionNumber returns the IPSR field. Zero means Thread mode.
func (psr *PSR) ExceptionNumber() int {
	return int(psr.value & psrExceptionMask)
}

// SetExceptionNumber sets the IPSR field.
func (psr *PSR) SetExceptionNumber(number int) {
	psr.value = (psr.value &^ psrExceptionMask) | (uint32(number) & psrExceptionMask)
}

// UpdateNZ sets the N and Z flags from a 32 bit result.
func (psr *PSR) UpdateNZ(result uint32) {
	psr.setBit(psrNegative, result&0x80000000 == 0x80000000)
	psr.setBit(psrZero, result == 0)
}

// UpdateNZCV sets all four arithmetic flags.
func (psr *PSR) UpdateNZCV(result uint32, carry bool, overflow bool) {
	psr.UpdateNZ(result)
	psr.setBit(psrCarry, carry)
	psr.setBit(psrOverflow, overflow)
}

func (psr *PSR) String() string {
	s := strings.Builder{}
	flag := func(set bool, upper rune, lower rune) {
		if set {
			s.WriteRune(upper)
		} else {
			s.WriteRune(lower)
		}
	}
	flag(psr.Negative(), 'N', 'n')
	flag(psr.Zero(), 'Z', 'z')
	flag(psr.Carry(), 'C', 'c')
	flag(psr.Overflow(), 'V', 'v')
	flag(psr.Saturation(), 'Q', 'q')
	s.WriteString(fmt.Sprintf("   exc: %d", psr.ExceptionNumber()))
	return s.String()
}

// Registers is the complete register file of the Cortex-M7: sixteen
// general purpose registers, the banked stack pointers, the PSR and the
// special mask/control registers.
//
// R13 reads and writes are routed to the MSP or the PSP depending on the
// current mode and CONTROL.SPSEL. Handler mode always uses the MSP.
type Registers struct {
	regs [NumRegisters]uint32
	psr  PSR

	msp uint32
	psp uint32

	primask   uint32
	faultmask uint32
	basepri   uint32
	control   uint32
}

// Reset the register file. The initial MSP and PC are the first two words
// of the vector table.
func (r *Registers) Reset(initialSP uint32, initialPC uint32) {
	for i := range r.regs {
		r.regs[i] = 0
	}
	r.psr.reset()

	r.msp = initialSP & 0xfffffffc
	r.psp = 0
	r.regs[rSP] = r.msp

	r.primask = 0
	r.faultmask = 0
	r.basepri = 0
	r.control = 0

	r.Branch(initialPC)
}

// spsel returns true when the live stack pointer is the PSP.
func (r *Registers) spsel() bool {
	return r.control&0x02 == 0x02 && r.psr.ExceptionNumber() == 0
}

// Register returns the value of the numbered register.
func (r *Registers) Register(reg int) uint32 {
	switch reg {
	case rSP:
		if r.spsel() {
			return r.psp
		}
		return r.msp
	default:
		return r.regs[reg]
	}
}

// SetRegister sets the value of the numbered register. Writes to R13 are
// routed to the live stack pointer. Writes to R15 clear bit zero and
// leave the Thumb bit set.
func (r *Registers) SetRegister(reg int, value uint32) {
	switch reg {
	case rSP:
		if r.spsel() {
			r.psp = value
		} else {
			r.msp = value
		}
		r.regs[rSP] = value
	case rPC:
		r.Branch(value)
	default:
		r.regs[reg] = value
	}
}

// PC returns the program counter.
func (r *Registers) PC() uint32 {
	return r.regs[rPC]
}

// SetPC sets the program counter without Thumb bit interpretation. Bit
// zero is cleared.
func (r *Registers) SetPC(value uint32) {
	r.regs[rPC] = value & 0xfffffffe
}

// LR returns the link register.
func (r *Registers) LR() uint32 {
	return r.regs[rLR]
}

// SetLR sets the link register.
func (r *Registers) SetLR(value uint32) {
	r.regs[rLR] = value
}

// SP returns the live stack pointer.
func (r *Registers) SP() uint32 {
	return r.Register(rSP)
}

// SetSP sets the live stack pointer.
func (r *Registers) SetSP(value uint32) {
	r.SetRegister(rSP, value)
}

// MSP returns the main stack pointer.
func (r *Registers) MSP() uint32 { return r.msp }

// SetMSP sets the main stack pointer.
func (r *Registers) SetMSP(value uint32) { r.msp = value }

// PSP returns the process stack pointer.
func (r *Registers) PSP() uint32 { return r.psp }

// SetPSP sets the process stack pointer.
func (r *Registers) SetPSP(value uint32) { r.psp = value }

// PSR returns the program status register.
func (r *Registers) PSR() *PSR {
	return &r.psr
}

// Branch to the address. Bit zero of the address (the Thumb state
// indicator) is cleared from the PC; EPSR.T stays set.
func (r *Registers) Branch(address uint32) {
	r.psr.setThumb(true)
	r.regs[rPC] = address & 0xfffffffe
}

// Dump returns a multi-line description of the register file. Useful for
// error conditions and trace output.
func (r *Registers) Dump() string {
	s := strings.Builder{}
	for i := 0; i < rSP; i++ {
		if i > 0 {
			if i%4 == 0 {
				s.WriteString("\n")
			} else {
				s.WriteString("  ")
			}
		}
		s.WriteString(fmt.Sprintf("R%-2d: %08x", i, r.regs[i]))
	}
	s.WriteString(fmt.Sprintf("\nSP : %08x  LR : %08x  PC : %08x", r.SP(), r.LR(), r.PC()))
	s.WriteString(fmt.Sprintf("\nMSP: %08x  PSP: %08x", r.msp, r.psp))
	s.WriteString(fmt.Sprintf("\n%s", r.psr.String()))
	s.WriteString(fmt.Sprintf("\nPRIMASK: %d  FAULTMASK: %d  BASEPRI: %02x  CONTROL: %02x",
		r.primask, r.faultmask, r.basepri, r.control))
	return s.String()
}
