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

package memory

import (
	"github.com/jetsetilly/gopherwatch/logger"
)

// Port is the contract a peripheral must satisfy to be registered with
// the bus. Only word access is required; the bus synthesises byte and
// halfword access with a read-modify-write of the enclosing word.
type Port interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
}

// SystemControl is the NVIC/SCB register surface, owned by the CPU's
// exception manager. The bus delegates accesses in the system PPB to it.
type SystemControl interface {
	HandlesAddress(addr uint32) bool
	RegisterRead(addr uint32) uint32
	RegisterWrite(addr uint32, value uint32)
}

// portEntry is a registered peripheral and its closed address interval.
type portEntry struct {
	start uint32
	end   uint32
	port  Port
}

// Bus is the bus fabric of the STM32H7B0. A single entry point per
// access width with address decoding to the RAM regions, the flash
// banks, the external flash, the system PPB and the registered
// peripherals.
type Bus struct {
	ITCM       *RAM
	DTCM       *RAM
	AXISRAM    *RAM
	SRAM1      *RAM
	SRAM2      *RAM
	BackupSRAM *RAM

	FlashBank1 *Flash
	FlashBank2 *Flash

	External *ExternalFlash

	sc SystemControl

	peripherals []portEntry

	// unknown peripheral addresses retain the last value written so
	// that firmware read-back loops make progress
	stub map[uint32]uint32

	// addresses already reported to the logger
	reported map[uint32]bool

	// while true the first 64KB alias flash bank 1 so the reset fetch of
	// the vector table sees the real table
	bootFromFlash bool

	// itcm.bin content, kept aside until after reset
	itcmOverride []uint8

	systick sysTick

	// FPU and MPU registers are dumb storage
	cpacr  uint32
	fpccr  uint32
	fpcar  uint32
	fpdscr uint32
	mpu    map[uint32]uint32

	// allow bus activity logging
	trace bool
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	bus := &Bus{
		ITCM:          NewRAM("ITCM", ITCMOrigin, ITCMSize),
		DTCM:          NewRAM("DTCM", DTCMOrigin, DTCMSize),
		AXISRAM:       NewRAM("AXI", AXISRAMOrigin, AXISRAMSize),
		SRAM1:         NewRAM("SRAM1", SRAM1Origin, SRAM1Size),
		SRAM2:         NewRAM("SRAM2", SRAM2Origin, SRAM2Size),
		BackupSRAM:    NewRAM("BKPSRAM", BackupSRAMOrigin, BackupSRAMSize),
		FlashBank1:    NewFlash("FLASH_B1", FlashBank1Origin, FlashBankSize),
		FlashBank2:    NewFlash("FLASH_B2", FlashBank2Origin, FlashBankSize),
		External:      NewExternalFlash(),
		stub:          make(map[uint32]uint32),
		reported:      make(map[uint32]bool),
		mpu:           make(map[uint32]uint32),
		bootFromFlash: true,
		fpccr:         0xc0000000,
	}
	bus.systick.pend = func() {}
	return bus
}

// ConnectSystemControl attaches the exception manager's register
// surface, and the function used by SysTick to pend its interrupt.
func (bus *Bus) ConnectSystemControl(sc SystemControl, pendSysTick func()) {
	bus.sc = sc
	if pendSysTick != nil {
		bus.systick.pend = pendSysTick
	}
}

// RegisterPeripheral adds a peripheral over the closed interval
// [start, end].
func (bus *Bus) RegisterPeripheral(start uint32, end uint32, port Port) {
	bus.peripherals = append(bus.peripherals, portEntry{start: start, end: end, port: port})
}

// SetTrace turns bus activity logging on or off.
func (bus *Bus) SetTrace(trace bool) {
	bus.trace = trace
}

// SetBootFromFlash controls the boot alias of flash bank 1 at address
// zero.
func (bus *Bus) SetBootFromFlash(enabled bool) {
	bus.bootFromFlash = enabled
}

// SetITCMOverride stores an ITCM snapshot to be installed after reset.
// Installing it before reset would hide the flash vector table from the
// reset fetch.
func (bus *Bus) SetITCMOverride(data []uint8) {
	bus.itcmOverride = data
}

// ApplyITCMOverride installs the stored ITCM snapshot. Must be called
// after the CPU reset sequence has fetched the initial SP and PC.
func (bus *Bus) ApplyITCMOverride() {
	if bus.itcmOverride == nil {
		return
	}
	bus.ITCM.Load(0, bus.itcmOverride)
	logger.Logf(logger.Allow, "BUS", "applied ITCM override: %d bytes", len(bus.itcmOverride))
}

// PrimeBootAlias copies the start of flash bank 1 into ITCM. The same
// bytes are then visible at address zero whether the boot alias is
// active or not, which keeps vector fetches working after firmware
// starts using ITCM as RAM.
func (bus *Bus) PrimeBootAlias() {
	data := bus.FlashBank1.Data()
	n := len(data)
	if n > ITCMSize {
		n = ITCMSize
	}
	bus.ITCM.Load(0, data[:n])
}

// findPeripheral returns the registered peripheral covering the address.
func (bus *Bus) findPeripheral(addr uint32) Port {
	for _, p := range bus.peripherals {
		if addr >= p.start && addr <= p.end {
			return p.port
		}
	}
	return nil
}

// ram returns the RAM region covering the address, or nil.
func (bus *Bus) ram(addr uint32) *RAM {
	switch {
	case addr >= DTCMOrigin && addr < DTCMOrigin+DTCMSize:
		return bus.DTCM
	case addr >= AXISRAMOrigin && addr < AXISRAMOrigin+AXISRAMSize:
		return bus.AXISRAM
	case addr >= SRAM1Origin && addr < SRAM1Origin+SRAM1Size:
		return bus.SRAM1
	case addr >= SRAM2Origin && addr < SRAM2Origin+SRAM2Size:
		return bus.SRAM2
	case addr >= BackupSRAMOrigin && addr < BackupSRAMOrigin+BackupSRAMSize:
		return bus.BackupSRAM
	}
	return nil
}

// flash returns the flash bank covering the address, or nil.
func (bus *Bus) flash(addr uint32) *Flash {
	if bus.FlashBank1.Contains(addr) {
		return bus.FlashBank1
	}
	if bus.FlashBank2.Contains(addr) {
		return bus.FlashBank2
	}
	return nil
}

// isPeripheralAddr returns true for the peripheral address windows of
// the STM32H7B0. Accesses here that match no registered peripheral go to
// the stub.
func isPeripheralAddr(addr uint32) bool {
	switch {
	case addr >= 0x40000000 && addr < 0x40008000:
	case addr >= 0x40010000 && addr < 0x40017000:
	case addr >= 0x40020000 && addr < 0x40080000:
	case addr >= 0x48020000 && addr < 0x48023000:
	case addr >= 0x50000000 && addr < 0x50004000:
	case addr >= 0x51000000 && addr < 0x52009400:
	case addr >= 0x58000000 && addr < 0x58027000:
	case addr >= 0x5c000000 && addr < 0x5c010000:
	default:
		return false
	}
	return true
}

// Read8 returns the byte at the address.
func (bus *Bus) Read8(addr uint32) uint8 {
	if addr < ITCMSize {
		if bus.bootFromFlash {
			return bus.FlashBank1.Read8(FlashBank1Origin + addr)
		}
		return bus.ITCM.Read8(addr)
	}
	if f := bus.flash(addr); f != nil {
		return f.Read8(addr)
	}
	if ram := bus.ram(addr); ram != nil {
		return ram.Read8(addr)
	}
	if bus.External.Contains(addr) {
		return bus.External.Read8(addr)
	}

	// everything below this point is a 32 bit register surface. byte
	// access is synthesised from the enclosing word
	word := bus.readWord(addr &^ 0x03)
	return uint8(word >> ((addr & 0x03) * 8))
}

// Read16 returns the halfword at the address. The address is aligned
// down to a halfword boundary.
func (bus *Bus) Read16(addr uint32) uint16 {
	addr &= 0xfffffffe

	if addr < ITCMSize {
		if bus.bootFromFlash {
			return bus.FlashBank1.Read16(FlashBank1Origin + addr)
		}
		return bus.ITCM.Read16(addr)
	}
	if f := bus.flash(addr); f != nil {
		return f.Read16(addr)
	}
	if ram := bus.ram(addr); ram != nil {
		return ram.Read16(addr)
	}
	if bus.External.Contains(addr) {
		return bus.External.Read16(addr)
	}

	word := bus.readWord(addr &^ 0x03)
	return uint16(word >> ((addr & 0x03) * 8))
}

// Read32 returns the word at the address. The address is aligned down to
// a word boundary.
func (bus *Bus) Read32(addr uint32) uint32 {
	addr &= 0xfffffffc

	if addr < ITCMSize {
		if bus.bootFromFlash {
			return bus.FlashBank1.Read32(FlashBank1Origin + addr)
		}
		return bus.ITCM.Read32(addr)
	}
	if f := bus.flash(addr); f != nil {
		return f.Read32(addr)
	}
	if ram := bus.ram(addr); ram != nil {
		return ram.Read32(addr)
	}
	if bus.External.Contains(addr) {
		return bus.External.Read32(addr)
	}

	return bus.readWord(addr)
}

// readWord reads a word from the register surfaces: the system PPB, the
// registered peripherals or the stub.
func (bus *Bus) readWord(addr uint32) uint32 {
	if addr >= 0xe000e000 && addr <= 0xe000efff {
		return bus.readSystem(addr)
	}

	if p := bus.findPeripheral(addr); p != nil {
		return p.Read32(addr)
	}

	if isPeripheralAddr(addr) {
		value := bus.stub[addr]
		if bus.trace && !bus.reported[addr] {
			bus.reported[addr] = true
			logger.Logf(logger.Allow, "BUS", "stub read %08x -> %08x", addr, value)
		}
		return value
	}

	if bus.trace && !bus.reported[addr] {
		bus.reported[addr] = true
		logger.Logf(logger.Allow, "BUS", "unhandled read %08x", addr)
	}
	return 0
}

// Write8 stores a byte at the address.
func (bus *Bus) Write8(addr uint32, value uint8) {
	if addr < ITCMSize {
		bus.ITCM.Write8(addr, value)
		return
	}
	if bus.flash(addr) != nil || bus.External.Contains(addr) {
		// flash is read-only at runtime. not an error
		return
	}
	if ram := bus.ram(addr); ram != nil {
		ram.Write8(addr, value)
		return
	}

	word := bus.readWord(addr &^ 0x03)
	shift := (addr & 0x03) * 8
	word = word&^(0xff<<shift) | uint32(value)<<shift
	bus.writeWord(addr&^0x03, word)
}

// Write16 stores a halfword at the address. The address is aligned down
// to a halfword boundary.
func (bus *Bus) Write16(addr uint32, value uint16) {
	addr &= 0xfffffffe

	if addr < ITCMSize {
		bus.ITCM.Write16(addr, value)
		return
	}
	if bus.flash(addr) != nil || bus.External.Contains(addr) {
		return
	}
	if ram := bus.ram(addr); ram != nil {
		ram.Write16(addr, value)
		return
	}

	word := bus.readWord(addr &^ 0x03)
	shift := (addr & 0x03) * 8
	word = word&^(0xffff<<shift) | uint32(value)<<shift
	bus.writeWord(addr&^0x03, word)
}

// Write32 stores a word at the address. The address is aligned down to a
// word boundary.
func (bus *Bus) Write32(addr uint32, value uint32) {
	addr &= 0xfffffffc

	if addr < ITCMSize {
		bus.ITCM.Write32(addr, value)
		return
	}
	if bus.flash(addr) != nil || bus.External.Contains(addr) {
		return
	}
	if ram := bus.ram(addr); ram != nil {
		ram.Write32(addr, value)
		return
	}

	bus.writeWord(addr, value)
}

// writeWord writes a word to the register surfaces.
func (bus *Bus) writeWord(addr uint32, value uint32) {
	if addr >= 0xe000e000 && addr <= 0xe000efff {
		bus.writeSystem(addr, value)
		return
	}

	if p := bus.findPeripheral(addr); p != nil {
		p.Write32(addr, value)
		return
	}

	if isPeripheralAddr(addr) {
		bus.stub[addr] = value
		if bus.trace && !bus.reported[addr] {
			bus.reported[addr] = true
			logger.Logf(logger.Allow, "BUS", "stub write %08x = %08x", addr, value)
		}
		return
	}

	if bus.trace && !bus.reported[addr] {
		bus.reported[addr] = true
		logger.Logf(logger.Allow, "BUS", "unhandled write %08x = %08x", addr, value)
	}
}

// readSystem reads from the system PPB: SysTick, the FPU and MPU shims,
// and the NVIC/SCB blocks delegated to the exception manager.
func (bus *Bus) readSystem(addr uint32) uint32 {
	if addr >= 0xe000e010 && addr <= 0xe000e01f {
		return bus.systick.read(addr)
	}

	if bus.sc != nil && bus.sc.HandlesAddress(addr) {
		return bus.sc.RegisterRead(addr)
	}

	switch addr {
	case 0xe000ed88:
		return bus.cpacr
	case 0xe000ef34:
		return bus.fpccr
	case 0xe000ef38:
		return bus.fpcar
	case 0xe000ef3c:
		return bus.fpdscr
	}

	if addr >= 0xe000ed90 && addr <= 0xe000edb8 {
		if addr == 0xe000ed90 {
			// MPU_TYPE: eight data regions, no separate instruction map
			return 0x00000800
		}
		return bus.mpu[addr]
	}

	return 0
}

// writeSystem writes to the system PPB.
func (bus *Bus) writeSystem(addr uint32, value uint32) {
	if addr >= 0xe000e010 && addr <= 0xe000e01f {
		bus.systick.write(addr, value)
		return
	}

	if bus.sc != nil && bus.sc.HandlesAddress(addr) {
		bus.sc.RegisterWrite(addr, value)
		return
	}

	switch addr {
	case 0xe000ed88:
		bus.cpacr = value
		return
	case 0xe000ef34:
		bus.fpccr = value
		return
	case 0xe000ef38:
		bus.fpcar = value
		return
	case 0xe000ef3c:
		bus.fpdscr = value
		return
	}

	if addr >= 0xe000ed90 && addr <= 0xe000edb8 {
		bus.mpu[addr] = value
	}
}

// Step advances the SysTick counter by the given number of CPU cycles.
func (bus *Bus) Step(cycles int) {
	bus.systick.step(cycles)
}
