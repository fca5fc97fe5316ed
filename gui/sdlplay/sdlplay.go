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

// Package sdlplay is the SDL2 front end of the emulation: a window
// showing the LTDC framebuffer and a keyboard mapped onto the Game &
// Watch buttons.
//
// SDL wants its calls on the main thread. The expected use is a simple
// main-thread loop alternating Machine.RunFrame() with Service() and
// Render().
package sdlplay

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/jetsetilly/gopherwatch/hardware"
	"github.com/jetsetilly/gopherwatch/hardware/peripherals"
)

// the panel of the Game & Watch.
const (
	ScreenWidth  = 320
	ScreenHeight = 240
)

const pixelDepth = 4

const windowTitle = "GopherWatch"

// SdlPlay is the SDL2 window and input handler.
type SdlPlay struct {
	mc *hardware.Machine

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	// RGBA conversion buffer, ScreenWidth*ScreenHeight*pixelDepth
	pixels []byte

	// raw framebuffer fetch buffer, reused between frames
	fetch []byte
}

// NewSdlPlay is the preferred method of initialisation for the SdlPlay
// type.
//
// MUST ONLY be called from the main thread.
func NewSdlPlay(mc *hardware.Machine, scale int) (*SdlPlay, error) {
	if scale < 1 {
		scale = 1
	}

	scr := &SdlPlay{
		mc:     mc,
		pixels: make([]byte, ScreenWidth*ScreenHeight*pixelDepth),
	}

	err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
	if err != nil {
		return nil, fmt.Errorf("sdlplay: %w", err)
	}

	scr.window, err = sdl.CreateWindow(windowTitle,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(ScreenWidth*scale), int32(ScreenHeight*scale),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		return nil, fmt.Errorf("sdlplay: %w", err)
	}

	scr.renderer, err = sdl.CreateRenderer(scr.window, -1, uint32(sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC))
	if err != nil {
		return nil, fmt.Errorf("sdlplay: %w", err)
	}

	scr.texture, err = scr.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		sdl.TEXTUREACCESS_STREAMING, ScreenWidth, ScreenHeight)
	if err != nil {
		return nil, fmt.Errorf("sdlplay: %w", err)
	}

	return scr, nil
}

// Destroy the SDL resources.
//
// MUST ONLY be called from the main thread.
func (scr *SdlPlay) Destroy() {
	if scr.texture != nil {
		_ = scr.texture.Destroy()
	}
	if scr.renderer != nil {
		_ = scr.renderer.Destroy()
	}
	if scr.window != nil {
		_ = scr.window.Destroy()
	}
	sdl.Quit()
}

// Service polls SDL events, routing key presses to the machine's
// buttons. Returns false when the user has asked to quit.
//
// MUST ONLY be called from the main thread.
func (scr *SdlPlay) Service() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			return false

		case *sdl.KeyboardEvent:
			pressed := ev.Type == sdl.KEYDOWN

			switch ev.Keysym.Sym {
			case sdl.K_ESCAPE:
				if pressed {
					return false
				}
			case sdl.K_LEFT:
				scr.mc.SetButton(hardware.ButtonLeft, pressed)
			case sdl.K_RIGHT:
				scr.mc.SetButton(hardware.ButtonRight, pressed)
			case sdl.K_UP:
				scr.mc.SetButton(hardware.ButtonUp, pressed)
			case sdl.K_DOWN:
				scr.mc.SetButton(hardware.ButtonDown, pressed)
			case sdl.K_z:
				scr.mc.SetButton(hardware.ButtonA, pressed)
			case sdl.K_x:
				scr.mc.SetButton(hardware.ButtonB, pressed)
			case sdl.K_g:
				scr.mc.SetButton(hardware.ButtonGame, pressed)
			case sdl.K_t:
				scr.mc.SetButton(hardware.ButtonTime, pressed)
			case sdl.K_p:
				scr.mc.SetButton(hardware.ButtonPause, pressed)
			case sdl.K_RETURN:
				scr.mc.SetButton(hardware.ButtonPower, pressed)
			}
		}
	}

	return true
}

// Render fetches the LTDC layer-1 framebuffer through the bus, converts
// it to RGBA and presents it. An unconfigured or disabled LTDC presents
// a black screen.
//
// MUST ONLY be called from the main thread.
func (scr *SdlPlay) Render() error {
	layer := scr.mc.LTDC.Layer1()

	if scr.mc.LTDC.Enabled() && layer.Enabled() && layer.FramebufferAddress() != 0 {
		scr.convert(layer)
	} else {
		for i := range scr.pixels {
			scr.pixels[i] = 0x00
		}
	}

	err := scr.texture.Update(nil, scr.pixels, ScreenWidth*pixelDepth)
	if err != nil {
		return fmt.Errorf("sdlplay: %w", err)
	}

	err = scr.renderer.Copy(scr.texture, nil, nil)
	if err != nil {
		return fmt.Errorf("sdlplay: %w", err)
	}

	scr.renderer.Present()

	return nil
}

// convert the framebuffer into the RGBA pixel buffer.
func (scr *SdlPlay) convert(layer *peripherals.Layer) {
	format := layer.Format()
	pixelSize := format.Size()

	pitch := int(layer.Pitch())
	if pitch == 0 {
		pitch = ScreenWidth * pixelSize
	}

	need := pitch * ScreenHeight
	if cap(scr.fetch) < need {
		scr.fetch = make([]byte, need)
	}
	fetch := scr.fetch[:need]
	scr.mc.ReadMemory(layer.FramebufferAddress(), fetch)

	for y := 0; y < ScreenHeight; y++ {
		row := fetch[y*pitch:]
		for x := 0; x < ScreenWidth; x++ {
			var r, g, b uint8

			switch format {
			case peripherals.PixelRGB565:
				v := uint16(row[x*2]) | uint16(row[x*2+1])<<8
				r = uint8((v >> 11 & 0x1f) << 3)
				g = uint8((v >> 5 & 0x3f) << 2)
				b = uint8((v & 0x1f) << 3)
			case peripherals.PixelRGB888:
				b = row[x*3]
				g = row[x*3+1]
				r = row[x*3+2]
			case peripherals.PixelARGB8888:
				b = row[x*4]
				g = row[x*4+1]
				r = row[x*4+2]
			default:
				// luminance formats and anything unexpected
				v := row[x*pixelSize]
				r = v
				g = v
				b = v
			}

			idx := (y*ScreenWidth + x) * pixelDepth
			scr.pixels[idx] = r
			scr.pixels[idx+1] = g
			scr.pixels[idx+2] = b
			scr.pixels[idx+3] = 0xff
		}
	}
}
