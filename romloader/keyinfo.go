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

package romloader

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// HexInt is a 32 bit value that unmarshals from either a JSON number or
// a string in any base strconv understands ("0x..." in practice).
type HexInt uint32

// UnmarshalJSON implements the json.Unmarshaler interface.
func (h *HexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))

	if strings.HasPrefix(s, "\"") {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		v, err := strconv.ParseUint(unquoted, 0, 64)
		if err != nil {
			return fmt.Errorf("not a number: %s", unquoted)
		}
		*h = HexInt(v)
		return nil
	}

	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*h = HexInt(v)
	return nil
}

// KeyInfo is the decryption descriptor stored alongside an encrypted
// external flash image, conventionally named "(Key Info).json".
type KeyInfo struct {
	OtfDecKey     []HexInt `json:"OtfDecKey"`
	OtfDecNonce   []HexInt `json:"OtfDecNonce"`
	OtfDecVersion HexInt   `json:"OtfDecVersion"`
	OtfDecRegion  HexInt   `json:"OtfDecRegion"`
	OtfDecStart   HexInt   `json:"OtfDecStart"`
	OtfDecEnd     HexInt   `json:"OtfDecEnd"`

	AesGcmKey          []HexInt `json:"AesGcmKey"`
	AesGcmIv           []HexInt `json:"AesGcmIv"`
	AesGcmBase         HexInt   `json:"AesGcmBase"`
	AesGcmRegionLength HexInt   `json:"AesGcmRegionLength"`
	AesGcmDataLength   HexInt   `json:"AesGcmDataLength"`
}

// LoadKeyInfo parses a key descriptor file.
func LoadKeyInfo(path string) (*KeyInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romloader: %w", err)
	}

	var keys KeyInfo
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("romloader: %s: %w", path, err)
	}

	return &keys, nil
}

// HasOtfDec returns true when the descriptor carries a usable OTFDEC
// key.
func (k *KeyInfo) HasOtfDec() bool {
	return len(k.OtfDecKey) >= 4 && len(k.OtfDecNonce) >= 2
}

// HasAesGcm returns true when the descriptor carries a usable AES-GCM
// key.
func (k *KeyInfo) HasAesGcm() bool {
	return len(k.AesGcmKey) >= 4 && len(k.AesGcmIv) >= 3
}

// OtfDecKeyWords returns the OTFDEC key as four words.
func (k *KeyInfo) OtfDecKeyWords() [4]uint32 {
	var w [4]uint32
	for i := 0; i < 4 && i < len(k.OtfDecKey); i++ {
		w[i] = uint32(k.OtfDecKey[i])
	}
	return w
}

// OtfDecNonceWords returns the OTFDEC nonce as two words.
func (k *KeyInfo) OtfDecNonceWords() [2]uint32 {
	var w [2]uint32
	for i := 0; i < 2 && i < len(k.OtfDecNonce); i++ {
		w[i] = uint32(k.OtfDecNonce[i])
	}
	return w
}

// AesGcmKeyWords returns the AES-GCM key as four words.
func (k *KeyInfo) AesGcmKeyWords() [4]uint32 {
	var w [4]uint32
	for i := 0; i < 4 && i < len(k.AesGcmKey); i++ {
		w[i] = uint32(k.AesGcmKey[i])
	}
	return w
}

// AesGcmIvWords returns the AES-GCM IV as three words.
func (k *KeyInfo) AesGcmIvWords() [3]uint32 {
	var w [3]uint32
	for i := 0; i < 3 && i < len(k.AesGcmIv); i++ {
		w[i] = uint32(k.AesGcmIv[i])
	}
	return w
}
