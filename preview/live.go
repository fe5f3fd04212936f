package preview

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"
)

// LiveWindow blits successive Canvas frames to an on-screen SDL2 window,
// the live-preview half of spec.md §6's preview interface. It mirrors the
// teacher's viz.NewWindow/RenderFrame split
// (_examples/zzstoatzz-fluids/viz/render.go): one window+renderer created
// up front, one texture re-upload per frame.
type LiveWindow struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	w, h     int32
}

// NewLiveWindow opens an SDL2 window of the given size.
func NewLiveWindow(width, height int) (*LiveWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	window, err := sdl.CreateWindow("mixfluid preview",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("sdl create window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("sdl create renderer: %w", err)
	}
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("sdl create texture: %w", err)
	}
	return &LiveWindow{window: window, renderer: renderer, texture: texture, w: int32(width), h: int32(height)}, nil
}

// Blit uploads img to the window's texture and presents it.
func (lw *LiveWindow) Blit(img *image.RGBA) error {
	if err := lw.texture.Update(nil, img.Pix, img.Stride); err != nil {
		return fmt.Errorf("sdl texture update: %w", err)
	}
	lw.renderer.Clear()
	if err := lw.renderer.Copy(lw.texture, nil, nil); err != nil {
		return fmt.Errorf("sdl renderer copy: %w", err)
	}
	lw.renderer.Present()
	return nil
}

// PollQuit drains the SDL event queue and reports whether the user
// requested the window close, so the driver can honor a cancellation
// request at a substep boundary per spec.md §5.
func (lw *LiveWindow) PollQuit() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			return true
		}
	}
	return false
}

// Close tears down the texture, renderer, and window.
func (lw *LiveWindow) Close() {
	lw.texture.Destroy()
	lw.renderer.Destroy()
	lw.window.Destroy()
	sdl.Quit()
}
