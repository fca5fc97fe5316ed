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

// Package memory implements the bus fabric of the STM32H7B0: the SRAM
// regions, the two internal flash banks, the memory mapped external
// flash (with on-the-fly decryption) and the routing between them. The
// Bus type is the single entry point; the CPU and any DMA-like host code
// access memory only through its read and write methods.
//
// Peripherals register with the bus over a closed address interval and
// need only provide word-sized access; narrower accesses are synthesised
// by the bus with a read-modify-write of the enclosing word.
package memory
