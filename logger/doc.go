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

// Package logger is the central log for the emulation. There is no
// requirement to use this package for normal output but it is useful for
// the machine components (CPU, bus, peripherals) which want to note
// unusual conditions without deciding how, or whether, they are shown.
//
// Log entries are tagged with a short string which groups entries by the
// part of the emulation that created them. The number of entries is
// capped; when the cap is reached the oldest entries are lost first.
package logger
