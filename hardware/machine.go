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

package hardware

import (
	"fmt"

	"github.com/jetsetilly/gopherwatch/hardware/arm"
	"github.com/jetsetilly/gopherwatch/hardware/memory"
	"github.com/jetsetilly/gopherwatch/hardware/memory/otfdec"
	"github.com/jetsetilly/gopherwatch/hardware/peripherals"
	"github.com/jetsetilly/gopherwatch/logger"
	"github.com/jetsetilly/gopherwatch/romloader"
)

// the number of consecutive emulator errors tolerated before the
// machine gives up and halts. This is a host-side policy, not a CPU
// fault: CPU-visible faults go through the exception manager.
const maxConsecutiveErrors = 100

// Button is one of the physical inputs of the Game & Watch.
type Button int

// List of Button values.
const (
	ButtonLeft Button = iota
	ButtonUp
	ButtonDown
	ButtonRight
	ButtonA
	ButtonB
	ButtonGame
	ButtonTime
	ButtonPause
	ButtonPower
)

// Machine is the assembled Game & Watch: CPU, bus and peripherals. The
// Machine owns every component; the display/input front end talks only
// to the Machine.
type Machine struct {
	CPU *arm.ARM
	Bus *memory.Bus

	GPIOA *peripherals.GPIO
	GPIOB *peripherals.GPIO
	GPIOC *peripherals.GPIO
	GPIOD *peripherals.GPIO
	GPIOE *peripherals.GPIO

	LTDC *peripherals.LTDC
	RCC  *peripherals.RCC

	TIM1 *peripherals.TIM
	TIM2 *peripherals.TIM
	TIM3 *peripherals.TIM

	// addresses at which the run loop stops
	breakpoints map[uint32]bool

	// count of successive Step() errors. reset by any successful step
	consecutiveErrors int

	// set when the consecutive error policy has given up on the machine
	broken bool
}

// NewMachine is the preferred method of initialisation for the Machine
// type.
func NewMachine() *Machine {
	m := &Machine{
		Bus:         memory.NewBus(),
		GPIOA:       peripherals.NewGPIO("GPIOA", peripherals.GPIOAOrigin),
		GPIOB:       peripherals.NewGPIO("GPIOB", peripherals.GPIOBOrigin),
		GPIOC:       peripherals.NewGPIO("GPIOC", peripherals.GPIOCOrigin),
		GPIOD:       peripherals.NewGPIO("GPIOD", peripherals.GPIODOrigin),
		GPIOE:       peripherals.NewGPIO("GPIOE", peripherals.GPIOEOrigin),
		LTDC:        peripherals.NewLTDC(),
		RCC:         peripherals.NewRCC(),
		TIM1:        peripherals.NewTIM("TIM1", peripherals.TIM1Origin),
		TIM2:        peripherals.NewTIM("TIM2", peripherals.TIM2Origin),
		TIM3:        peripherals.NewTIM("TIM3", peripherals.TIM3Origin),
		breakpoints: make(map[uint32]bool),
	}

	m.CPU = arm.NewARM(m.Bus)

	m.Bus.ConnectSystemControl(m.CPU.Exceptions(), func() {
		m.CPU.Exceptions().SetPending(arm.ExcSysTick)
	})

	for _, g := range []*peripherals.GPIO{m.GPIOA, m.GPIOB, m.GPIOC, m.GPIOD, m.GPIOE} {
		m.Bus.RegisterPeripheral(g.Origin(), g.Origin()+peripherals.GPIOSize-1, g)
	}
	m.Bus.RegisterPeripheral(peripherals.LTDCOrigin, peripherals.LTDCOrigin+peripherals.LTDCSize-1, m.LTDC)
	m.Bus.RegisterPeripheral(peripherals.RCCOrigin, peripherals.RCCOrigin+peripherals.RCCSize-1, m.RCC)
	for _, t := range []*peripherals.TIM{m.TIM1, m.TIM2, m.TIM3} {
		m.Bus.RegisterPeripheral(t.Origin(), t.Origin()+peripherals.TIMSize-1, t)
	}

	return m
}

// InsertROM loads a ROM file set into the machine and resets it. The
// reset fetch of the vector table happens with the boot alias active;
// an ITCM snapshot in the ROM set is installed only afterwards.
func (m *Machine) InsertROM(rom *romloader.ROMSet) error {
	m.Bus.FlashBank1.Load(rom.Bank1())
	m.Bus.FlashBank2.Load(rom.Bank2())
	m.Bus.PrimeBootAlias()

	if rom.ExternalFlash != nil {
		m.Bus.External.Load(rom.ExternalFlash)

		if !rom.ExternalDecrypted {
			if rom.Keys == nil {
				return fmt.Errorf("machine: %w", romloader.ErrNoKeys)
			}
			if rom.Keys.HasOtfDec() {
				ctr, err := otfdec.NewCTR(rom.Keys.OtfDecKeyWords(), rom.Keys.OtfDecNonceWords(),
					uint16(rom.Keys.OtfDecVersion), uint8(rom.Keys.OtfDecRegion),
					uint32(rom.Keys.OtfDecStart), uint32(rom.Keys.OtfDecEnd))
				if err != nil {
					return err
				}
				m.Bus.External.Attach(ctr)
				logger.Logf(logger.Allow, "machine", "OTFDEC region %08x-%08x",
					uint32(rom.Keys.OtfDecStart), uint32(rom.Keys.OtfDecEnd))
			}
			if rom.Keys.HasAesGcm() {
				gcm, err := otfdec.NewGCM(rom.Keys.AesGcmKeyWords(), rom.Keys.AesGcmIvWords(),
					uint32(rom.Keys.AesGcmBase), uint32(rom.Keys.AesGcmRegionLength),
					uint32(rom.Keys.AesGcmDataLength))
				if err != nil {
					return err
				}
				m.Bus.External.Attach(gcm)
				logger.Logf(logger.Allow, "machine", "AES-GCM region %08x+%x",
					uint32(rom.Keys.AesGcmBase), uint32(rom.Keys.AesGcmRegionLength))
			}
		}
	}

	m.Bus.SetITCMOverride(rom.ITCM)

	m.Reset()

	// a malformed vector table is suspicious but not fatal: log and
	// carry on
	sp := m.Bus.Read32(0x00000000)
	pc := m.Bus.Read32(0x00000004)
	if sp < memory.DTCMOrigin || sp > memory.DTCMOrigin+memory.DTCMSize {
		logger.Logf(logger.Allow, "machine", "initial SP %08x outside DTCM", sp)
	}
	if pc&0xfff00000 != memory.FlashBank1Origin && pc >= memory.ITCMSize {
		logger.Logf(logger.Allow, "machine", "reset vector %08x outside flash", pc)
	}

	logger.Logf(logger.Allow, "machine", "inserted %s", rom.Name)

	return nil
}

// Reset the machine. The CPU reset fetches the vector table through the
// boot alias; any stored ITCM snapshot is installed afterwards.
func (m *Machine) Reset() {
	m.Bus.SetBootFromFlash(true)
	m.CPU.Reset()
	m.Bus.ApplyITCMOverride()
	m.consecutiveErrors = 0
	m.broken = false
}

// SetButton presses or releases a button. The buttons are wired to GPIO
// pins and are active low.
func (m *Machine) SetButton(button Button, pressed bool) {
	high := !pressed

	switch button {
	case ButtonLeft:
		m.GPIOD.SetPin(11, high)
	case ButtonUp:
		m.GPIOD.SetPin(0, high)
	case ButtonDown:
		m.GPIOD.SetPin(14, high)
	case ButtonRight:
		m.GPIOD.SetPin(15, high)
	case ButtonA:
		m.GPIOD.SetPin(9, high)
	case ButtonB:
		m.GPIOD.SetPin(5, high)
	case ButtonGame:
		m.GPIOC.SetPin(1, high)
	case ButtonTime:
		m.GPIOC.SetPin(4, high)
	case ButtonPause:
		m.GPIOC.SetPin(13, high)
	case ButtonPower:
		m.GPIOA.SetPin(0, high)
	}
}

// SetBreakpoint adds or removes a breakpoint address.
func (m *Machine) SetBreakpoint(addr uint32, set bool) {
	if set {
		m.breakpoints[addr&0xfffffffe] = true
	} else {
		delete(m.breakpoints, addr&0xfffffffe)
	}
}

// Broken returns true when the consecutive error policy has given up on
// the machine.
func (m *Machine) Broken() bool {
	return m.broken
}

// step runs one instruction, catching emulator faults. A fault is a bug
// in the emulation or firmware walking somewhere unmapped badly enough
// to break the host: it is not a CPU exception.
func (m *Machine) step() (cycles int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("machine: %v (PC %08x)", r, m.CPU.Registers().PC())
		}
	}()

	cycles = m.CPU.Step()

	m.Bus.Step(cycles)
	m.TIM1.Step(uint32(cycles))
	m.TIM2.Step(uint32(cycles))
	m.TIM3.Step(uint32(cycles))

	return cycles, nil
}

// RunFrame runs the machine for up to the given cycle budget, returning
// the number of cycles consumed. The run ends early at a breakpoint or
// when the CPU halts on WFI with nothing pending.
//
// Host-side errors are recovered by skipping one halfword and counting;
// too many in a row and the machine is marked broken with a register
// dump in the log.
func (m *Machine) RunFrame(budget int) int {
	if m.broken {
		return 0
	}

	var consumed int

	for consumed < budget {
		if len(m.breakpoints) > 0 && m.breakpoints[m.CPU.Registers().PC()] {
			break
		}

		cycles, err := m.step()
		if err != nil {
			logger.Log(logger.Allow, "machine", err)

			// attempt progress by skipping one halfword
			m.CPU.Registers().SetPC(m.CPU.Registers().PC() + 2)

			m.consecutiveErrors++
			if m.consecutiveErrors >= maxConsecutiveErrors {
				logger.Logf(logger.Allow, "machine", "%d consecutive errors: giving up", m.consecutiveErrors)
				logger.Log(logger.Allow, "machine", m.CPU.Registers().Dump())
				m.broken = true
				break
			}
			consumed++
			continue
		}
		m.consecutiveErrors = 0

		consumed += cycles

		if m.CPU.Halted() {
			// account the halt cycle and leave the frame; the display
			// and input run between frames and may pend the wakeup
			break
		}
	}

	return consumed
}

// ReadMemory copies len(buf) bytes from the bus starting at the given
// address. Used by the display front end to fetch the framebuffer.
func (m *Machine) ReadMemory(addr uint32, buf []byte) {
	for i := range buf {
		buf[i] = m.Bus.Read8(addr + uint32(i))
	}
}
