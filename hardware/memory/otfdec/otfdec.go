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

// Package otfdec implements the on-the-fly decryption applied to the
// memory mapped external flash of the Game & Watch: an AES-128-CTR
// region (the OTFDEC peripheral of the STM32H7B0) covering the bulk of
// the flash and a small AES-GCM region near the end.
//
// Decryption is stateless with respect to the read pattern: a read of
// any width at any alignment produces the same bytes as a linear
// decryption of the whole region would. The authentication tag of the
// GCM region is not verified; emulation only needs the keystream.
package otfdec

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// keyBytes packs four 32 bit words into the big-endian byte order used
// by the hardware for AES keys.
func keyBytes(words [4]uint32) []byte {
	k := make([]byte, 16)
	for i, w := range words {
		binary.BigEndian.PutUint32(k[i*4:], w)
	}
	return k
}

// incCounter performs the standard big-endian increment of a 128 bit CTR
// counter block.
func incCounter(counter *[16]byte) {
	for i := 15; i >= 0; i-- {
		counter[i]++
		if counter[i] != 0 {
			return
		}
	}
}

// xorKeyStream XORs data with the AES-CTR keystream beginning at the
// given counter block, skipping the first skip bytes of the stream.
func xorKeyStream(block cipher.Block, counter [16]byte, skip uint32, data []byte) []byte {
	out := make([]byte, len(data))

	var ks [16]byte
	block.Encrypt(ks[:], counter[:])

	pos := int(skip)
	for i := range data {
		if pos == 16 {
			incCounter(&counter)
			block.Encrypt(ks[:], counter[:])
			pos = 0
		}
		out[i] = data[i] ^ ks[pos]
		pos++
	}

	return out
}

// CTR is the OTFDEC AES-128-CTR decryptor.
type CTR struct {
	block   cipher.Block
	nonce   [2]uint32
	version uint16
	region  uint8
	start   uint32
	end     uint32
}

// NewCTR is the preferred method of initialisation for the CTR type. The
// region covers the closed interval [start, end].
func NewCTR(key [4]uint32, nonce [2]uint32, version uint16, region uint8, start uint32, end uint32) (*CTR, error) {
	block, err := aes.NewCipher(keyBytes(key))
	if err != nil {
		return nil, fmt.Errorf("otfdec: %w", err)
	}

	return &CTR{
		block:   block,
		nonce:   nonce,
		version: version,
		region:  region & 0x03,
		start:   start,
		end:     end,
	}, nil
}

// Contains returns true if the address falls inside the encrypted
// region.
func (c *CTR) Contains(addr uint32) bool {
	return addr >= c.start && addr <= c.end
}

// counterBlock builds the initial counter block for the 16 byte block
// enclosing the address:
//
//	[127:64] nonce
//	[63:48]  version
//	[47:46]  region
//	[45:4]   block number ((addr - start) >> 4)
//	[3:0]    block counter, zero at the start of the block
func (c *CTR) counterBlock(addr uint32) [16]byte {
	blockNumber := uint64(addr-c.start) >> 4

	lower := uint64(c.version)<<48 |
		uint64(c.region)<<46 |
		(blockNumber&0x3ffffffffff)<<4

	var counter [16]byte
	binary.BigEndian.PutUint32(counter[0:], c.nonce[0])
	binary.BigEndian.PutUint32(counter[4:], c.nonce[1])
	binary.BigEndian.PutUint64(counter[8:], lower)
	return counter
}

// Decrypt the bytes read from the address. Each enclosing 16 byte block
// is decrypted with its own counter block; unaligned reads discard the
// lead-in of the first block.
func (c *CTR) Decrypt(addr uint32, data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		aligned := addr &^ 0x0f
		n := min(16-(addr-aligned), uint32(len(data)))
		out = append(out, xorKeyStream(c.block, c.counterBlock(aligned), addr-aligned, data[:n])...)
		addr += n
		data = data[n:]
	}
	return out
}

// GCM is the AES-128-GCM decryptor for the small trailing region of the
// external flash. Only the CTR component of GCM is implemented: the
// fixed IV yields a fixed keystream and the authentication tag is not
// checked during emulation.
type GCM struct {
	block      cipher.Block
	iv         [12]byte
	base       uint32
	regionLen  uint32
	dataLen    uint32
}

// NewGCM is the preferred method of initialisation for the GCM type.
func NewGCM(key [4]uint32, iv [3]uint32, base uint32, regionLen uint32, dataLen uint32) (*GCM, error) {
	block, err := aes.NewCipher(keyBytes(key))
	if err != nil {
		return nil, fmt.Errorf("otfdec: %w", err)
	}

	g := &GCM{
		block:     block,
		base:      base,
		regionLen: regionLen,
		dataLen:   dataLen,
	}
	for i, w := range iv {
		binary.BigEndian.PutUint32(g.iv[i*4:], w)
	}
	return g, nil
}

// Contains returns true if the address falls inside the GCM region.
func (g *GCM) Contains(addr uint32) bool {
	return addr >= g.base && addr < g.base+g.regionLen
}

// Decrypt the bytes read from the address. GCM encrypts with a CTR
// keystream whose counter starts at two for the first block of data (the
// zeroth counter is reserved for the tag, the first for the pre-counter
// block).
func (g *GCM) Decrypt(addr uint32, data []byte) []byte {
	offset := addr - g.base

	var counter [16]byte
	copy(counter[:], g.iv[:])
	binary.BigEndian.PutUint32(counter[12:], 2+offset/16)

	return xorKeyStream(g.block, counter, offset&0x0f, data)
}
