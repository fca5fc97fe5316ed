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

package arm_test

import (
	"testing"

	"github.com/jetsetilly/gopherwatch/hardware/arm"
	"github.com/jetsetilly/gopherwatch/hardware/memory"
	"github.com/jetsetilly/gopherwatch/test"
)

// exceptionStartup builds a machine with a user IRQ0 handler at
// 0x08000100 (vector at offset 0x40 for exception 16) consisting of a
// NOP followed by BX LR.
func exceptionStartup(t *testing.T, program ...uint16) (*arm.ARM, *memory.Bus) {
	t.Helper()

	image := make([]uint8, 0x1000)

	putWord := func(offset int, value uint32) {
		image[offset] = uint8(value)
		image[offset+1] = uint8(value >> 8)
		image[offset+2] = uint8(value >> 16)
		image[offset+3] = uint8(value >> 24)
	}

	putWord(0x00, 0x20002000)
	putWord(0x04, 0x08000009)
	putWord(0x40, 0x08000101) // IRQ0 handler, Thumb bit set

	for i, hw := range program {
		image[0x08+i*2] = uint8(hw)
		image[0x08+i*2+1] = uint8(hw >> 8)
	}

	// handler at 0x100: NOP; BX LR
	image[0x100] = 0x00
	image[0x101] = 0xbf
	image[0x102] = 0x70
	image[0x103] = 0x47

	bus := memory.NewBus()
	bus.FlashBank1.Load(image)

	cpu := arm.NewARM(bus)
	cpu.Reset()

	return cpu, bus
}

// exception entry followed by return, with no handler side effects,
// leaves the register file and xPSR unchanged
func TestExceptionRoundTrip(t *testing.T) {
	cpu, _ := exceptionStartup(t,
		0xbf00, // NOP
		0xbf00, // NOP
		0xbe00, // BKPT
	)

	exc := cpu.Exceptions()
	exc.SetEnabled(arm.ExcFirstIRQ, true)
	exc.SetPriority(arm.ExcFirstIRQ, 0x80)

	// give the registers recognisable values
	regs := cpu.Registers()
	for i := 0; i <= 3; i++ {
		regs.SetRegister(i, uint32(0x1000+i))
	}
	regs.SetRegister(12, 0x10000012)
	regs.SetLR(0x1000_0014)

	cpu.Step() // first NOP

	preSP := regs.SP()
	prePC := regs.PC()
	preLR := regs.LR()
	prePSR := regs.PSR().Value()

	exc.SetPending(arm.ExcFirstIRQ)

	// the entry sequence runs before the next fetch; this step executes
	// the first handler instruction
	cpu.Step()

	// eight words stacked, plus up to one word of realignment
	stacked := preSP - regs.SP()
	test.ExpectSuccess(t, stacked == 32 || stacked == 36)

	// thread mode on the MSP
	test.ExpectEquality(t, regs.LR(), uint32(arm.ExcReturnThreadMSP))
	test.ExpectEquality(t, regs.PSR().ExceptionNumber(), arm.ExcFirstIRQ)

	// PC is inside the handler (the NOP has already executed)
	test.ExpectEquality(t, regs.PC(), uint32(0x08000102))

	// BX LR unwinds
	cpu.Step()

	test.ExpectEquality(t, regs.SP(), preSP)
	test.ExpectEquality(t, regs.PC(), prePC)
	test.ExpectEquality(t, regs.LR(), preLR)
	test.ExpectEquality(t, regs.PSR().Value(), prePSR)
	test.ExpectEquality(t, regs.PSR().ExceptionNumber(), 0)

	for i := 0; i <= 3; i++ {
		test.ExpectEquality(t, regs.Register(i), uint32(0x1000+i))
	}
	test.ExpectEquality(t, regs.Register(12), uint32(0x10000012))

	// the exception is no longer pending or active
	test.ExpectFailure(t, exc.Pending(arm.ExcFirstIRQ))
	test.ExpectFailure(t, exc.AnyPending())
}

// a masked exception is not taken until the mask clears
func TestPrimaskDefersEntry(t *testing.T) {
	cpu, _ := exceptionStartup(t,
		0xb672, // CPSID i
		0xbf00, // NOP
		0xb662, // CPSIE i
		0xbf00, // NOP
		0xbe00, // BKPT
	)

	exc := cpu.Exceptions()
	exc.SetEnabled(arm.ExcFirstIRQ, true)
	exc.SetPriority(arm.ExcFirstIRQ, 0x80)

	cpu.Step() // CPSID
	exc.SetPending(arm.ExcFirstIRQ)

	cpu.Step() // NOP: the IRQ stays pending
	test.ExpectSuccess(t, exc.Pending(arm.ExcFirstIRQ))
	test.ExpectEquality(t, cpu.Registers().PSR().ExceptionNumber(), 0)

	cpu.Step() // CPSIE
	cpu.Step() // entry happens before this fetch; handler NOP executes
	test.ExpectEquality(t, cpu.Registers().PSR().ExceptionNumber(), arm.ExcFirstIRQ)
}

// NVIC priority registers hold only the top four bits of each byte
func TestInterruptPriorityBits(t *testing.T) {
	cpu, bus := exceptionStartup(t, 0xbf00)
	bus.ConnectSystemControl(cpu.Exceptions(), nil)

	// IPR0 covers IRQ0-3, one byte each
	bus.Write32(0xe000e400, 0x12345678)
	test.ExpectEquality(t, bus.Read32(0xe000e400), uint32(0x10305070))

	// byte access is synthesised from the enclosing word
	test.ExpectEquality(t, bus.Read8(0xe000e401), uint8(0x50))
}

// SVC pends the SVCall exception
func TestSVCall(t *testing.T) {
	cpu, _ := exceptionStartup(t,
		0xdf01, // SVC #1
		0xbf00, // NOP
	)

	cpu.Step()
	test.ExpectSuccess(t, cpu.Exceptions().Pending(arm.ExcSVCall))
}

// higher priority pending exceptions preempt an active lower priority
// handler; equal or lower do not
func TestPriorityPreemption(t *testing.T) {
	cpu, _ := exceptionStartup(t,
		0xbf00, // NOP
		0xbf00, // NOP
		0xbf00, // NOP
	)

	exc := cpu.Exceptions()
	exc.SetEnabled(arm.ExcFirstIRQ, true)
	exc.SetPriority(arm.ExcFirstIRQ, 0x80)
	exc.SetEnabled(arm.ExcFirstIRQ+1, true)
	exc.SetPriority(arm.ExcFirstIRQ+1, 0x40)

	// a lower priority (numerically higher) interrupt pended alongside
	exc.SetPriority(arm.ExcFirstIRQ+2, 0xf0)
	exc.SetEnabled(arm.ExcFirstIRQ+2, true)
	exc.SetPending(arm.ExcFirstIRQ + 2)

	// the handler is two instructions long (NOP; BX LR), so the checks
	// below are made after its NOP and before its return
	exc.SetPending(arm.ExcFirstIRQ)
	cpu.Step()
	test.ExpectEquality(t, cpu.Registers().PSR().ExceptionNumber(), arm.ExcFirstIRQ)

	// the lower priority interrupt stays pending
	test.ExpectEquality(t, cpu.Registers().PSR().ExceptionNumber(), arm.ExcFirstIRQ)
	test.ExpectSuccess(t, exc.Pending(arm.ExcFirstIRQ+2))

	// a higher priority interrupt preempts
	exc.SetPending(arm.ExcFirstIRQ + 1)
	cpu.Step()
	test.ExpectEquality(t, cpu.Registers().PSR().ExceptionNumber(), arm.ExcFirstIRQ+1)
}
