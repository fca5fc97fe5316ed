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

// Package romloader finds and loads the ROM file set of a Game & Watch
// title. One directory per title:
//
//	internal_flash.bin             up to 256KB. the first 128KB belong
//	                               to flash bank 1, the remainder to
//	                               bank 2
//	external_flash.bin             up to 1MB, encrypted
//	external_flash_decrypted.bin   the same, already decrypted. detected
//	                               by the "decrypted" filename substring
//	itcm.bin                       optional ITCM snapshot, installed
//	                               only after the CPU reset
//	(Key Info).json                decryption key descriptor. required
//	                               when the external flash is encrypted
package romloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maximum file sizes.
const (
	maxInternalFlash = 256 * 1024
	maxExternalFlash = 1024 * 1024
	maxITCM          = 64 * 1024
)

// ErrNoInternalFlash is returned when the ROM directory has no
// internal_flash.bin. The emulation cannot start without one.
var ErrNoInternalFlash = errors.New("romloader: no internal_flash.bin")

// ErrNoKeys is returned when the external flash image is encrypted but
// the directory has no key descriptor.
var ErrNoKeys = errors.New("romloader: encrypted external flash but no (Key Info).json")

// ROMSet is the loaded file set of one title.
type ROMSet struct {
	Name string

	InternalFlash []byte

	ExternalFlash []byte

	// true when the external flash image was already decrypted on disk
	ExternalDecrypted bool

	// nil when no itcm.bin was present
	ITCM []byte

	// nil when no key descriptor was present
	Keys *KeyInfo
}

// Bank1 returns the portion of the internal flash image belonging to
// flash bank 1.
func (rom *ROMSet) Bank1() []byte {
	if len(rom.InternalFlash) > maxInternalFlash/2 {
		return rom.InternalFlash[:maxInternalFlash/2]
	}
	return rom.InternalFlash
}

// Bank2 returns the portion of the internal flash image belonging to
// flash bank 2. May be empty.
func (rom *ROMSet) Bank2() []byte {
	if len(rom.InternalFlash) > maxInternalFlash/2 {
		return rom.InternalFlash[maxInternalFlash/2:]
	}
	return nil
}

// Load the ROM file set from the directory. Returns ErrNoInternalFlash
// if the directory holds no internal flash image and ErrNoKeys if the
// external flash is encrypted with no key descriptor alongside it.
func Load(dir string) (*ROMSet, error) {
	rom := &ROMSet{
		Name: filepath.Base(filepath.Clean(dir)),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("romloader: %w", err)
	}

	var externalPath string
	var keysPath string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		path := filepath.Join(dir, e.Name())

		switch {
		case name == "internal_flash.bin":
			rom.InternalFlash, err = loadCapped(path, maxInternalFlash)
			if err != nil {
				return nil, err
			}
		case name == "itcm.bin":
			rom.ITCM, err = loadCapped(path, maxITCM)
			if err != nil {
				return nil, err
			}
		case strings.HasPrefix(name, "external_flash") && strings.HasSuffix(name, ".bin"):
			// prefer a decrypted image when the directory has both
			if externalPath == "" || strings.Contains(name, "decrypted") {
				externalPath = path
			}
		case strings.HasSuffix(name, ".json") && strings.Contains(name, "key"):
			keysPath = path
		}
	}

	if rom.InternalFlash == nil {
		return nil, ErrNoInternalFlash
	}

	if externalPath != "" {
		rom.ExternalFlash, err = loadCapped(externalPath, maxExternalFlash)
		if err != nil {
			return nil, err
		}
		rom.ExternalDecrypted = strings.Contains(strings.ToLower(filepath.Base(externalPath)), "decrypted")
	}

	if keysPath != "" {
		rom.Keys, err = LoadKeyInfo(keysPath)
		if err != nil {
			return nil, err
		}
	}

	if rom.ExternalFlash != nil && !rom.ExternalDecrypted && rom.Keys == nil {
		return nil, ErrNoKeys
	}

	return rom, nil
}

// loadCapped reads a file, truncating it to the maximum size.
func loadCapped(path string, max int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romloader: %w", err)
	}
	if len(data) > max {
		data = data[:max]
	}
	return data, nil
}
