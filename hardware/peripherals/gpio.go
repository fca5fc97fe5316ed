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

package peripherals

// GPIO register offsets from the port base.
const (
	gpioMODER   = 0x00
	gpioOTYPER  = 0x04
	gpioOSPEEDR = 0x08
	gpioPUPDR   = 0x0c
	gpioIDR     = 0x10
	gpioODR     = 0x14
	gpioBSRR    = 0x18
	gpioLCKR    = 0x1c
	gpioAFRL    = 0x20
	gpioAFRH    = 0x24
)

// GPIOSize is the address space of one port.
const GPIOSize = 0x400

// base addresses of the ports used by the Game & Watch.
const (
	GPIOAOrigin = 0x58020000
	GPIOBOrigin = 0x58020400
	GPIOCOrigin = 0x58020800
	GPIODOrigin = 0x58020c00
	GPIOEOrigin = 0x58021000
)

// GPIO is one 16 pin port. The buttons of the Game & Watch arrive as
// external input state on ports A, C and D; they are active low with the
// pull-ups giving an idle state of all ones.
type GPIO struct {
	name string
	base uint32

	moder   uint32
	otyper  uint32
	ospeedr uint32
	pupdr   uint32
	odr     uint32
	lckr    uint32
	afrl    uint32
	afrh    uint32

	// state of the pins as driven from outside the MCU
	externalInput uint32
}

// NewGPIO is the preferred method of initialisation for the GPIO type.
func NewGPIO(name string, base uint32) *GPIO {
	return &GPIO{
		name:          name,
		base:          base,
		externalInput: 0xffff,
	}
}

// Origin returns the base address of the port.
func (g *GPIO) Origin() uint32 {
	return g.base
}

// SetPin drives an input pin from outside the MCU. Buttons are active
// low: pressed means low.
func (g *GPIO) SetPin(pin int, high bool) {
	if high {
		g.externalInput |= 1 << pin
	} else {
		g.externalInput &^= 1 << pin
	}
}

// idr derives the input data register from the pin modes: input and
// alternate function pins reflect the external input, output pins read
// back the output data register.
func (g *GPIO) idr() uint32 {
	var idr uint32
	for pin := 0; pin < 16; pin++ {
		var bit uint32
		switch (g.moder >> (pin * 2)) & 0x03 {
		case 0b00, 0b10:
			bit = g.externalInput >> pin & 0x01
		case 0b01:
			bit = g.odr >> pin & 0x01
		}
		idr |= bit << pin
	}
	return idr
}

// Read32 implements the bus port contract.
func (g *GPIO) Read32(addr uint32) uint32 {
	switch addr - g.base {
	case gpioMODER:
		return g.moder
	case gpioOTYPER:
		return g.otyper
	case gpioOSPEEDR:
		return g.ospeedr
	case gpioPUPDR:
		return g.pupdr
	case gpioIDR:
		return g.idr()
	case gpioODR:
		return g.odr
	case gpioLCKR:
		return g.lckr
	case gpioAFRL:
		return g.afrl
	case gpioAFRH:
		return g.afrh
	}
	return 0
}

// Write32 implements the bus port contract.
func (g *GPIO) Write32(addr uint32, value uint32) {
	switch addr - g.base {
	case gpioMODER:
		g.moder = value
	case gpioOTYPER:
		g.otyper = value
	case gpioOSPEEDR:
		g.ospeedr = value
	case gpioPUPDR:
		g.pupdr = value
	case gpioODR:
		g.odr = value & 0xffff
	case gpioBSRR:
		// set bits in the low half, reset bits in the high half. reset
		// wins when both are written
		g.odr |= value & 0xffff
		g.odr &^= value >> 16
	case gpioLCKR:
		g.lckr = value
	case gpioAFRL:
		g.afrl = value
	case gpioAFRH:
		g.afrh = value
	}
}
