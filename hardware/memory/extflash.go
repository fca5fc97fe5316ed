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

// Decryptor is the on-the-fly decryption applied to reads from the
// external flash. Implemented by the otfdec package.
type Decryptor interface {
	Contains(addr uint32) bool
	Decrypt(addr uint32, data []byte) []byte
}

// ExternalFlash is the 1MB SPI flash (a Macronix part on the real
// hardware) memory mapped through the OCTOSPI at 0x90000000. Read-only;
// reads inside a configured decryptor's region are decrypted on the fly.
//
// A pre-decrypted dump can be loaded instead, in which case no
// decryptors should be attached.
type ExternalFlash struct {
	data []uint8

	// decryptors attached by the loader. nil entries are skipped
	decryptors []Decryptor
}

// NewExternalFlash is the preferred method of initialisation for the
// ExternalFlash type.
func NewExternalFlash() *ExternalFlash {
	ext := &ExternalFlash{
		data: make([]uint8, ExternalFlashSize),
	}
	for i := range ext.data {
		ext.data[i] = 0xff
	}
	return ext
}

// Contains returns true if the address falls inside the flash.
func (ext *ExternalFlash) Contains(addr uint32) bool {
	return addr >= ExternalFlashOrigin && addr < ExternalFlashOrigin+ExternalFlashSize
}

// Load copies a flash image. Data beyond the end of the flash is
// dropped.
func (ext *ExternalFlash) Load(data []uint8) {
	copy(ext.data, data)
}

// Attach a decryptor. Reads whose address falls inside the decryptor's
// region pass through it.
func (ext *ExternalFlash) Attach(dec Decryptor) {
	if dec != nil {
		ext.decryptors = append(ext.decryptors, dec)
	}
}

// read returns width bytes at the address, decrypted if the address is
// covered by a decryptor.
func (ext *ExternalFlash) read(addr uint32, width uint32) []uint8 {
	idx := addr - ExternalFlashOrigin
	raw := ext.data[idx : idx+width]

	for _, dec := range ext.decryptors {
		if dec.Contains(addr) {
			return dec.Decrypt(addr, raw)
		}
	}

	return raw
}

// Read8 returns the byte at the address.
func (ext *ExternalFlash) Read8(addr uint32) uint8 {
	return ext.read(addr, 1)[0]
}

// Read16 returns the little-endian halfword at the address.
func (ext *ExternalFlash) Read16(addr uint32) uint16 {
	b := ext.read(addr, 2)
	return uint16(b[0]) | uint16(b[1])<<8
}

// Read32 returns the little-endian word at the address.
func (ext *ExternalFlash) Read32(addr uint32) uint32 {
	b := ext.read(addr, 4)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
