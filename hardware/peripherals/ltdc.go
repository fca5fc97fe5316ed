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

// LTDCOrigin is the base address of the display controller. The register
// block is 0x1000 bytes.
const (
	LTDCOrigin = 0x50001000
	LTDCSize   = 0x1000
)

// layer register offsets from the layer base.
const (
	ltdcLayerCR     = 0x00
	ltdcLayerWHPCR  = 0x04
	ltdcLayerWVPCR  = 0x08
	ltdcLayerPFCR   = 0x10
	ltdcLayerCFBAR  = 0x28
	ltdcLayerCFBLR  = 0x2c
	ltdcLayerCFBLNR = 0x30
)

// global register offsets.
const (
	ltdcGCR  = 0x018
	ltdcSRCR = 0x024
	ltdcISR  = 0x038
	ltdcICR  = 0x03c
	ltdcCDSR = 0x048
)

// layer base offsets.
const (
	ltdcLayer1 = 0x084
	ltdcLayer2 = 0x104
)

// PixelFormat is the LTDC layer pixel format selector.
type PixelFormat uint32

// List of PixelFormat values.
const (
	PixelARGB8888 PixelFormat = 0
	PixelRGB888   PixelFormat = 1
	PixelRGB565   PixelFormat = 2
	PixelARGB1555 PixelFormat = 3
	PixelARGB4444 PixelFormat = 4
	PixelL8       PixelFormat = 5
	PixelAL44     PixelFormat = 6
	PixelAL88     PixelFormat = 7
)

// Size of one pixel in bytes.
func (pf PixelFormat) Size() int {
	switch pf {
	case PixelARGB8888:
		return 4
	case PixelRGB888:
		return 3
	case PixelL8, PixelAL44:
		return 1
	}
	return 2
}

// Layer is one of the two LTDC layers. The display front end asks it
// where the framebuffer lives.
type Layer struct {
	regs map[uint32]uint32
}

func newLayer() *Layer {
	return &Layer{regs: make(map[uint32]uint32)}
}

// Enabled returns the layer enable bit.
func (l *Layer) Enabled() bool {
	return l.regs[ltdcLayerCR]&0x01 == 0x01
}

// FramebufferAddress returns the colour framebuffer address register.
func (l *Layer) FramebufferAddress() uint32 {
	return l.regs[ltdcLayerCFBAR]
}

// Format returns the layer pixel format.
func (l *Layer) Format() PixelFormat {
	return PixelFormat(l.regs[ltdcLayerPFCR] & 0x07)
}

// Pitch returns the line pitch in bytes.
func (l *Layer) Pitch() uint32 {
	return l.regs[ltdcLayerCFBLR] >> 16 & 0x1fff
}

// Lines returns the number of framebuffer lines.
func (l *Layer) Lines() uint32 {
	return l.regs[ltdcLayerCFBLNR] & 0x7ff
}

// LTDC is the LCD-TFT display controller. It stores its registers and
// answers the layer geometry questions the display front end asks; it
// does not rasterise anything itself.
type LTDC struct {
	regs map[uint32]uint32

	layer1 *Layer
	layer2 *Layer
}

// NewLTDC is the preferred method of initialisation for the LTDC type.
func NewLTDC() *LTDC {
	ltdc := &LTDC{
		regs:   make(map[uint32]uint32),
		layer1: newLayer(),
		layer2: newLayer(),
	}
	ltdc.regs[ltdcGCR] = 0x00002220
	// VSYNCS, HSYNCS, VDES and HDES all high: the panel is always ready
	ltdc.regs[ltdcCDSR] = 0x0000000f
	return ltdc
}

// Layer1 returns the first (and for the Game & Watch, only used) layer.
func (ltdc *LTDC) Layer1() *Layer {
	return ltdc.layer1
}

// Enabled returns the global LTDC enable bit.
func (ltdc *LTDC) Enabled() bool {
	return ltdc.regs[ltdcGCR]&0x01 == 0x01
}

// Read32 implements the bus port contract.
func (ltdc *LTDC) Read32(addr uint32) uint32 {
	offset := addr - LTDCOrigin

	if offset >= ltdcLayer1 && offset < ltdcLayer2 {
		return ltdc.layer1.regs[offset-ltdcLayer1]
	}
	if offset >= ltdcLayer2 && offset < ltdcLayer2+(ltdcLayer2-ltdcLayer1) {
		return ltdc.layer2.regs[offset-ltdcLayer2]
	}

	return ltdc.regs[offset]
}

// Write32 implements the bus port contract.
func (ltdc *LTDC) Write32(addr uint32, value uint32) {
	offset := addr - LTDCOrigin

	switch {
	case offset >= ltdcLayer1 && offset < ltdcLayer2:
		ltdc.layer1.regs[offset-ltdcLayer1] = value
	case offset >= ltdcLayer2 && offset < ltdcLayer2+(ltdcLayer2-ltdcLayer1):
		ltdc.layer2.regs[offset-ltdcLayer2] = value
	case offset == ltdcICR:
		// write one to clear the interrupt status
		ltdc.regs[ltdcISR] &^= value
	default:
		ltdc.regs[offset] = value
	}
}
