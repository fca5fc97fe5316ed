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

// SYSm values for the MSR and MRS instructions, from "B5.1.1" of
// "ARMv7-M".
const (
	sysmAPSR       = 0
	sysmIAPSR      = 1
	sysmEAPSR      = 2
	sysmXPSR       = 3
	sysmIPSR       = 5
	sysmEPSR       = 6
	sysmIEPSR      = 7
	sysmMSP        = 8
	sysmPSP        = 9
	sysmPRIMASK    = 16
	sysmBASEPRI    = 17
	sysmBASEPRIMAX = 18
	sysmFAULTMASK  = 19
	sysmCONTROL    = 20
)

func (arm *ARM) executeMsr(inst *Instruction) int {
	value := arm.reg(inst.Rn)

	switch inst.Imm {
	case sysmAPSR, sysmIAPSR, sysmEAPSR, sysmXPSR:
		// only the flag bits are writable through any of the APSR views
		const mask = uint32(0xf8000000)
		arm.regs.psr.SetValue(arm.regs.psr.Value()&^mask | value&mask)
	case sysmMSP:
		arm.regs.msp = value
	case sysmPSP:
		arm.regs.psp = value
	case sysmPRIMASK:
		arm.regs.primask = value & 0x01
	case sysmBASEPRI:
		arm.regs.basepri = value & 0xff
	case sysmBASEPRIMAX:
		// BASEPRI_MAX only ever raises the priority: the write is
		// accepted when it lowers a non-zero value or sets a zero one
		v := value & 0xff
		if v != 0 && (arm.regs.basepri == 0 || v < arm.regs.basepri) {
			arm.regs.basepri = v
		}
	case sysmFAULTMASK:
		arm.regs.faultmask = value & 0x01
	case sysmCONTROL:
		arm.regs.control = value & 0x03
	}

	return 2
}

func (arm *ARM) executeMrs(inst *Instruction) int {
	var value uint32

	switch inst.Imm {
	case sysmAPSR:
		value = arm.regs.psr.Value() & 0xf8000000
	case sysmIAPSR:
		value = arm.regs.psr.Value() & 0xf80001ff
	case sysmEAPSR:
		value = arm.regs.psr.Value() & 0xfe00fc00
	case sysmXPSR:
		value = arm.regs.psr.Value()
	case sysmIPSR:
		value = arm.regs.psr.Value() & 0x000001ff
	case sysmEPSR:
		value = arm.regs.psr.Value() & 0x0700fc00
	case sysmIEPSR:
		value = arm.regs.psr.Value() & 0x0700fdff
	case sysmMSP:
		value = arm.regs.msp
	case sysmPSP:
		value = arm.regs.psp
	case sysmPRIMASK:
		value = arm.regs.primask
	case sysmBASEPRI, sysmBASEPRIMAX:
		value = arm.regs.basepri
	case sysmFAULTMASK:
		value = arm.regs.faultmask
	case sysmCONTROL:
		value = arm.regs.control
	}

	arm.setReg(inst.Rd, value)
	return 2
}
