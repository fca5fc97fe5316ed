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

// Package peripherals contains the thin peripheral models registered
// with the bus fabric: the GPIO ports carrying the buttons, the LTDC
// display controller (enough of it to locate the framebuffer), the RCC
// clock controller (enough of it that clock setup loops terminate) and
// the basic timers.
//
// These are deliberately shallow. The emulation's contract with the
// firmware is "keep it progressing", not cycle accuracy: registers hold
// what was written, ready bits read back set, counters advance when
// stepped.
package peripherals
