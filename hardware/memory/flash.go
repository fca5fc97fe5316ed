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

// Flash is one bank of the internal flash. Read-only at runtime: writes
// through the bus are silently ignored (real flash programming goes
// through the flash interface peripheral, which the firmware does not
// exercise during normal play).
type Flash struct {
	name   string
	origin uint32
	data   []uint8
}

// NewFlash is the preferred method of initialisation for the Flash type.
// The bank is filled with the erased-flash value.
func NewFlash(name string, origin uint32, size uint32) *Flash {
	f := &Flash{
		name:   name,
		origin: origin,
		data:   make([]uint8, size),
	}
	for i := range f.data {
		f.data[i] = 0xff
	}
	return f
}

// Contains returns true if the address falls inside the bank.
func (f *Flash) Contains(addr uint32) bool {
	return addr >= f.origin && addr < f.origin+uint32(len(f.data))
}

// Read8 returns the byte at the address.
func (f *Flash) Read8(addr uint32) uint8 {
	return f.data[addr-f.origin]
}

// Read16 returns the little-endian halfword at the address.
func (f *Flash) Read16(addr uint32) uint16 {
	idx := addr - f.origin
	return uint16(f.data[idx]) | uint16(f.data[idx+1])<<8
}

// Read32 returns the little-endian word at the address.
func (f *Flash) Read32(addr uint32) uint32 {
	idx := addr - f.origin
	return uint32(f.data[idx]) | uint32(f.data[idx+1])<<8 |
		uint32(f.data[idx+2])<<16 | uint32(f.data[idx+3])<<24
}

// Load copies a flash image into the bank. Data beyond the end of the
// bank is dropped.
func (f *Flash) Load(data []uint8) {
	copy(f.data, data)
}

// Data returns the content of the bank. Used when priming the ITCM alias
// at boot.
func (f *Flash) Data() []uint8 {
	return f.data
}
