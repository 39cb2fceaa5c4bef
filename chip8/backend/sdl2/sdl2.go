//go:build sdl2

// Package sdl2 implements the Backend interface using SDL2 bindings.
// Building this requires SDL2 development libraries installed; default
// builds use a stubbed backend instead (see build tags).
package sdl2

import (
	"fmt"
	"unsafe"

	"log/slog"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	bytesPerPixel = 4
	defaultScale  = 10
)

// Backend implements the Backend interface using SDL2.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig
	pixels   []byte

	toneShown bool

	eventQueue []backend.InputEvent
}

// New creates a new SDL2 backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 window, renderer and streaming texture.
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config

	scale := config.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale),
		int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %v", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %v", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(video.FramebufferWidth),
		int32(video.FramebufferHeight),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %v", err)
	}
	s.texture = texture

	s.pixels = make([]byte, video.FramebufferWidth*video.FramebufferHeight*bytesPerPixel)
	s.running = true

	slog.Info("SDL2 backend initialized", "scale", scale)
	return nil
}

// Update processes SDL events and renders a frame.
func (s *Backend) Update(frame *video.FrameBuffer, redraw bool) ([]backend.InputEvent, error) {
	var events []backend.InputEvent

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			s.running = false
			events = append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				if act, ok := keyMapping[e.Keysym.Sym]; ok {
					events = append(events, backend.InputEvent{Action: act, Type: event.Press})
				}
			} else if e.Type == sdl.KEYUP {
				if act, ok := keyMapping[e.Keysym.Sym]; ok {
					// Only keypad keys carry release semantics.
					if _, isKeypad := action.KeypadIndex(act); isKeypad {
						events = append(events, backend.InputEvent{Action: act, Type: event.Release})
					}
				}
			}
		}
	}

	if !s.running {
		return events, nil
	}

	if redraw {
		s.renderFrame(frame)
	}
	s.updateTitle()

	return events, nil
}

// Cleanup cleans up SDL2 resources.
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

// keyMapping maps SDL2 keys to actions using the COSMAC keypad layout.
var keyMapping = map[sdl.Keycode]action.Action{
	sdl.K_ESCAPE: action.EmulatorQuit,
	sdl.K_SPACE:  action.EmulatorPauseToggle,
	sdl.K_F5:     action.EmulatorReset,
	sdl.K_F12:    action.EmulatorSnapshot,

	sdl.K_1: action.Key1,
	sdl.K_2: action.Key2,
	sdl.K_3: action.Key3,
	sdl.K_4: action.KeyC,
	sdl.K_q: action.Key4,
	sdl.K_w: action.Key5,
	sdl.K_e: action.Key6,
	sdl.K_r: action.KeyD,
	sdl.K_a: action.Key7,
	sdl.K_s: action.Key8,
	sdl.K_d: action.Key9,
	sdl.K_f: action.KeyE,
	sdl.K_z: action.KeyA,
	sdl.K_x: action.Key0,
	sdl.K_c: action.KeyB,
	sdl.K_v: action.KeyF,
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) {
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			idx := (y*video.FramebufferWidth + x) * bytesPerPixel

			var lum byte
			if frame.GetPixel(uint(x), uint(y)) {
				lum = 0xFF
			}

			// ABGR byte order for little-endian RGBA8888.
			s.pixels[idx] = 0xFF  // Alpha
			s.pixels[idx+1] = lum // Blue
			s.pixels[idx+2] = lum // Green
			s.pixels[idx+3] = lum // Red
		}
	}

	s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*bytesPerPixel)

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

// updateTitle reflects the tone and run state in the window title. SDL audio
// output is not wired, so the title doubles as a beep indicator.
func (s *Backend) updateTitle() {
	tone := s.config.Tone != nil && s.config.Tone()
	if tone == s.toneShown {
		return
	}
	s.toneShown = tone

	title := s.config.Title
	if s.config.StateName != nil {
		title = fmt.Sprintf("%s [%s]", title, s.config.StateName())
	}
	if tone {
		title += " ♪"
	}
	s.window.SetTitle(title)
}
