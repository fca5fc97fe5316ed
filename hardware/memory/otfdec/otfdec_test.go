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

package otfdec_test

import (
	"testing"

	"github.com/jetsetilly/gopherwatch/hardware/memory/otfdec"
	"github.com/jetsetilly/gopherwatch/test"
)

const (
	regionStart = 0x90000000
	regionEnd   = 0x900fdfff
)

func newCTR(t *testing.T) *otfdec.CTR {
	t.Helper()
	ctr, err := otfdec.NewCTR(
		[4]uint32{0x00010203, 0x04050607, 0x08090a0b, 0x0c0d0e0f},
		[2]uint32{0x11111111, 0x22222222},
		0x0001, 3, regionStart, regionEnd)
	test.ExpectSuccess(t, err)
	return ctr
}

func TestCTRRegion(t *testing.T) {
	ctr := newCTR(t)

	test.ExpectSuccess(t, ctr.Contains(regionStart))
	test.ExpectSuccess(t, ctr.Contains(regionEnd))
	test.ExpectFailure(t, ctr.Contains(regionEnd+1))
	test.ExpectFailure(t, ctr.Contains(0x08000000))
}

// CTR decryption is an XOR with a keystream so applying it twice is the
// identity
func TestCTRInvolution(t *testing.T) {
	ctr := newCTR(t)

	plain := make([]byte, 64)
	for i := range plain {
		plain[i] = byte(i * 7)
	}

	enc := ctr.Decrypt(regionStart, plain)
	test.ExpectInequality(t, string(enc), string(plain))

	dec := ctr.Decrypt(regionStart, enc)
	test.ExpectEquality(t, string(dec), string(plain))
}

// an unaligned read decrypts to the same bytes as the corresponding
// slice of an aligned read: the keystream depends on the address, not
// on the access pattern
func TestCTRUnaligned(t *testing.T) {
	ctr := newCTR(t)

	data := make([]byte, 48)
	for i := range data {
		data[i] = byte(0xa0 + i)
	}

	full := ctr.Decrypt(regionStart, data)

	part := ctr.Decrypt(regionStart+5, data[5:21])
	test.ExpectEquality(t, string(part), string(full[5:21]))

	// a single word in the middle of a block
	word := ctr.Decrypt(regionStart+20, data[20:24])
	test.ExpectEquality(t, string(word), string(full[20:24]))
}

// the same bytes at a different address decrypt differently: the block
// number is part of the counter
func TestCTRAddressDependence(t *testing.T) {
	ctr := newCTR(t)

	data := make([]byte, 16)

	a := ctr.Decrypt(regionStart, data)
	b := ctr.Decrypt(regionStart+16, data)
	test.ExpectInequality(t, string(a), string(b))
}

func TestGCM(t *testing.T) {
	gcm, err := otfdec.NewGCM(
		[4]uint32{0xdead0001, 0xdead0002, 0xdead0003, 0xdead0004},
		[3]uint32{0x01020304, 0x05060708, 0x090a0b0c},
		0x900fe000, 0x1000, 0x40)
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, gcm.Contains(0x900fe000))
	test.ExpectSuccess(t, gcm.Contains(0x900fefff))
	test.ExpectFailure(t, gcm.Contains(0x900ff000))

	plain := make([]byte, 0x40)
	for i := range plain {
		plain[i] = byte(i)
	}

	enc := gcm.Decrypt(0x900fe000, plain)
	dec := gcm.Decrypt(0x900fe000, enc)
	test.ExpectEquality(t, string(dec), string(plain))

	// slicing consistency, as for CTR
	part := gcm.Decrypt(0x900fe010, enc[0x10:0x20])
	test.ExpectEquality(t, string(part), string(plain[0x10:0x20]))
}
