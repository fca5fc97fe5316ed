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

package romloader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherwatch/romloader"
	"github.com/jetsetilly/gopherwatch/test"
)

const keyInfo = `{
	"OtfDecKey": ["0x00010203", "0x04050607", "0x08090A0B", "0x0C0D0E0F"],
	"OtfDecNonce": ["0x11111111", "0x22222222"],
	"OtfDecVersion": "0x0001",
	"OtfDecRegion": 3,
	"OtfDecStart": "0x90000000",
	"OtfDecEnd": "0x900FDFFF",
	"AesGcmKey": ["0xDEAD0001", "0xDEAD0002", "0xDEAD0003", "0xDEAD0004"],
	"AesGcmIv": ["0x01020304", "0x05060708", "0x090A0B0C"],
	"AesGcmBase": "0x900FE000",
	"AesGcmRegionLength": "0x1000",
	"AesGcmDataLength": 64
}`

func writeFile(t *testing.T, dir string, name string, data []byte) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), data, 0644)
	test.ExpectSuccess(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	internal := make([]byte, 200*1024)
	internal[0] = 0x11
	internal[128*1024] = 0x22
	writeFile(t, dir, "internal_flash.bin", internal)

	external := make([]byte, 1024)
	writeFile(t, dir, "external_flash.bin", external)

	writeFile(t, dir, "(Key Info).json", []byte(keyInfo))

	rom, err := romloader.Load(dir)
	test.ExpectSuccess(t, err)

	// the internal flash image splits across the two banks
	test.ExpectEquality(t, len(rom.Bank1()), 128*1024)
	test.ExpectEquality(t, rom.Bank1()[0], uint8(0x11))
	test.ExpectEquality(t, rom.Bank2()[0], uint8(0x22))

	test.ExpectFailure(t, rom.ExternalDecrypted)
	test.ExpectSuccess(t, rom.Keys != nil)
	test.ExpectSuccess(t, rom.Keys.HasOtfDec())
	test.ExpectSuccess(t, rom.Keys.HasAesGcm())

	// hex strings and plain integers both parse
	test.ExpectEquality(t, uint32(rom.Keys.OtfDecStart), uint32(0x90000000))
	test.ExpectEquality(t, uint32(rom.Keys.OtfDecRegion), uint32(3))
	test.ExpectEquality(t, uint32(rom.Keys.AesGcmDataLength), uint32(64))

	key := rom.Keys.OtfDecKeyWords()
	test.ExpectEquality(t, key[0], uint32(0x00010203))
	test.ExpectEquality(t, key[3], uint32(0x0c0d0e0f))
}

// a decrypted image is detected by filename and needs no keys
func TestLoadDecrypted(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "internal_flash.bin", make([]byte, 1024))
	writeFile(t, dir, "external_flash_decrypted.bin", make([]byte, 1024))

	rom, err := romloader.Load(dir)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, rom.ExternalDecrypted)
}

func TestLoadMissingInternalFlash(t *testing.T) {
	dir := t.TempDir()

	_, err := romloader.Load(dir)
	test.ExpectSuccess(t, errors.Is(err, romloader.ErrNoInternalFlash))
}

func TestLoadMissingKeys(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "internal_flash.bin", make([]byte, 1024))
	writeFile(t, dir, "external_flash.bin", make([]byte, 1024))

	_, err := romloader.Load(dir)
	test.ExpectSuccess(t, errors.Is(err, romloader.ErrNoKeys))
}

// an optional ITCM snapshot is loaded but not installed by the loader
func TestLoadITCM(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "internal_flash.bin", make([]byte, 1024))
	writeFile(t, dir, "itcm.bin", []byte{1, 2, 3, 4})

	rom, err := romloader.Load(dir)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(rom.ITCM), 4)
}
