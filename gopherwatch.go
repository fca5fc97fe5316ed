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

// GopherWatch emulates the Nintendo Game & Watch (2020): an STM32H7B0
// microcontroller with a Cortex-M7 core, driving a 320x240 panel.
//
//	gopherwatch [flags] romdir
//
// The ROM directory holds the per-title file set: internal_flash.bin,
// external_flash.bin (or a pre-decrypted image), an optional itcm.bin
// and the "(Key Info).json" decryption descriptor.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jetsetilly/gopherwatch/gui/sdlplay"
	"github.com/jetsetilly/gopherwatch/hardware"
	"github.com/jetsetilly/gopherwatch/logger"
	"github.com/jetsetilly/gopherwatch/romloader"
)

// the target frame rate and a rough per-frame cycle budget. the cycle
// counts of the core are approximate so this is a pace, not a clock
const (
	framesPerSecond = 60
	cyclesPerFrame  = 280000000 / framesPerSecond / 4
)

func run(output io.Writer) error {
	scale := flag.Int("scale", 2, "window scale factor")
	trace := flag.Bool("trace", false, "trace instructions and bus activity to the log")
	echo := flag.Bool("log", false, "echo log entries to stderr as they arrive")
	headless := flag.Int("headless", 0, "run this many frames without a window and exit")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: %s [flags] romdir", os.Args[0])
	}

	if *echo {
		logger.SetEcho(os.Stderr)
	}

	rom, err := romloader.Load(flag.Arg(0))
	if err != nil {
		return err
	}

	mc := hardware.NewMachine()
	mc.Bus.SetTrace(*trace)
	mc.CPU.SetTrace(*trace)

	err = mc.InsertROM(rom)
	if err != nil {
		return err
	}

	if *headless > 0 {
		for i := 0; i < *headless && !mc.Broken(); i++ {
			mc.RunFrame(cyclesPerFrame)
		}
		logger.Write(output)
		return nil
	}

	scr, err := sdlplay.NewSdlPlay(mc, *scale)
	if err != nil {
		return err
	}
	defer scr.Destroy()

	frame := time.NewTicker(time.Second / framesPerSecond)
	defer frame.Stop()

	for scr.Service() {
		mc.RunFrame(cyclesPerFrame)

		err = scr.Render()
		if err != nil {
			return err
		}

		if mc.Broken() {
			logger.Tail(os.Stderr, 20)
			return fmt.Errorf("machine stopped making progress")
		}

		<-frame.C
	}

	return nil
}

func main() {
	err := run(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}
}
