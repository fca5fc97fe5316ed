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

// Package arm implements the Cortex-M7 core of the STM32H7B0 at
// instruction granularity. Only the Thumb and Thumb-2 instruction sets are
// implemented - a Cortex-M has no ARM state so this is the complete
// instruction surface. The floating point and DSP SIMD extensions are not
// emulated.
//
// The package divides into the decoder (a pure function from opcode
// halfwords to an Instruction value), the executor (methods on the ARM
// type which commit an Instruction to the register file and bus), the
// register file and the exception manager. The ALU primitives in alu.go
// underpin the executor and are usable in isolation.
//
// The "ARMv7-M Architecture Reference Manual" referenced in the comments
// throughout this package can be found at:
//
// https://documentation-service.arm.com/static/606dc36485368c4c2b1bf62f
package arm
