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

// sysTick is the 24 bit system timer in the PPB. Stepped by the bus once
// per executed instruction with the instruction's cycle count.
type sysTick struct {
	ctrl  uint32
	load  uint32
	value uint32

	// pends the SysTick exception. wired by ConnectSystemControl()
	pend func()
}

// register addresses.
const (
	systickCTRL  = 0xe000e010
	systickLOAD  = 0xe000e014
	systickVAL   = 0xe000e018
	systickCALIB = 0xe000e01c
)

// CTRL bits.
const (
	systickEnable    = 0x00000001
	systickTickInt   = 0x00000002
	systickCountFlag = 0x00010000
)

func (st *sysTick) read(addr uint32) uint32 {
	switch addr {
	case systickCTRL:
		// COUNTFLAG clears on read
		v := st.ctrl
		st.ctrl &^= systickCountFlag
		return v
	case systickLOAD:
		return st.load
	case systickVAL:
		return st.value
	case systickCALIB:
		return 0
	}
	return 0
}

func (st *sysTick) write(addr uint32, value uint32) {
	switch addr {
	case systickCTRL:
		st.ctrl = st.ctrl&systickCountFlag | value&0x00000007
	case systickLOAD:
		st.load = value & 0x00ffffff
	case systickVAL:
		// any write clears the counter and the COUNTFLAG
		st.value = 0
		st.ctrl &^= systickCountFlag
	}
}

func (st *sysTick) step(cycles int) {
	if st.ctrl&systickEnable != systickEnable {
		return
	}

	for i := 0; i < cycles; i++ {
		if st.value == 0 {
			// an exhausted (or never started) counter reloads on the
			// next tick. the COUNTFLAG is raised only by the 1 to 0
			// transition
			st.value = st.load
			continue
		}

		st.value--
		if st.value == 0 {
			st.ctrl |= systickCountFlag
			if st.ctrl&systickTickInt == systickTickInt {
				st.pend()
			}
		}
	}
}
