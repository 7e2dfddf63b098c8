// Package sdl implements a frontend that renders to an SDL window.
package sdl

import (
	"fmt"
	"runtime"

	"github.com/retroenv/chip8vm/internal/vm"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

// DefaultScale is the default window pixel size of a display pixel.
const DefaultScale = 10

const bytesPerPixel = 4

var (
	colorOn  = [bytesPerPixel]byte{0xFF, 0xFF, 0xFF, 0xFF}
	colorOff = [bytesPerPixel]byte{0x00, 0x00, 0x00, 0xFF}
)

// keyScancodes maps the hexadecimal keypad to the keyboard layout:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  <-  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
var keyScancodes = [vm.KeyCount]sdl.Scancode{
	0x0: sdl.SCANCODE_X,
	0x1: sdl.SCANCODE_1,
	0x2: sdl.SCANCODE_2,
	0x3: sdl.SCANCODE_3,
	0x4: sdl.SCANCODE_Q,
	0x5: sdl.SCANCODE_W,
	0x6: sdl.SCANCODE_E,
	0x7: sdl.SCANCODE_A,
	0x8: sdl.SCANCODE_S,
	0x9: sdl.SCANCODE_D,
	0xA: sdl.SCANCODE_Z,
	0xB: sdl.SCANCODE_C,
	0xC: sdl.SCANCODE_4,
	0xD: sdl.SCANCODE_R,
	0xE: sdl.SCANCODE_F,
	0xF: sdl.SCANCODE_V,
}

func init() {
	// SDL calls have to be made from the main thread.
	runtime.LockOSThread()
}

// Config defines the window settings.
type Config struct {
	Title string
	Scale int
}

// Frontend renders the display into a window and reads the keypad state
// from the keyboard.
type Frontend struct {
	logger *log.Logger
	title  string

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	keyboard []uint8
}

// New initializes SDL and opens the window.
func New(logger *log.Logger, cfg Config) (*Frontend, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("initializing SDL: %w", err)
	}

	f := &Frontend{
		logger: logger,
		title:  cfg.Title,
	}
	if err := f.createWindow(cfg.Scale); err != nil {
		_ = f.Close()
		return nil, err
	}
	f.keyboard = sdl.GetKeyboardState()

	logger.Debug("Window created",
		log.Int("width", vm.DisplayWidth*cfg.Scale),
		log.Int("height", vm.DisplayHeight*cfg.Scale))
	return f, nil
}

func (f *Frontend) createWindow(scale int) error {
	var err error
	f.window, err = sdl.CreateWindow(f.title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(vm.DisplayWidth*scale), int32(vm.DisplayHeight*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	f.renderer, err = sdl.CreateRenderer(f.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	f.texture, err = f.renderer.CreateTexture(sdl.PIXELFORMAT_RGBA32, sdl.TEXTUREACCESS_STREAMING,
		vm.DisplayWidth, vm.DisplayHeight)
	if err != nil {
		return fmt.Errorf("creating texture: %w", err)
	}
	return nil
}

// KeyDown returns whether the mapped keyboard key is held.
// The keyboard state is updated by Poll.
func (f *Frontend) KeyDown(key uint8) bool {
	return f.keyboard[keyScancodes[key&0x0F]] != 0
}

// Poll processes the pending window events. Closing the window or pressing
// Escape requests to quit.
func (f *Frontend) Poll() (bool, error) {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			quit = true
		}
	}
	if f.keyboard[sdl.SCANCODE_ESCAPE] != 0 {
		quit = true
	}
	return quit, nil
}

// Render copies the display into the streaming texture and presents it
// scaled to the window size.
func (f *Frontend) Render(display *vm.Display) error {
	pixels, pitch, err := f.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("locking texture: %w", err)
	}
	fillPixels(pixels, pitch, display)
	f.texture.Unlock()

	if err := f.renderer.Clear(); err != nil {
		return fmt.Errorf("clearing renderer: %w", err)
	}
	if err := f.renderer.Copy(f.texture, nil, nil); err != nil {
		return fmt.Errorf("copying texture: %w", err)
	}
	f.renderer.Present()
	return nil
}

// SetTone shows the tone state in the window title.
func (f *Frontend) SetTone(active bool) {
	title := f.title
	if active {
		title += " [tone]"
	}
	f.window.SetTitle(title)
}

// Close destroys the window and shuts down SDL.
func (f *Frontend) Close() error {
	if f.texture != nil {
		_ = f.texture.Destroy()
		f.texture = nil
	}
	if f.renderer != nil {
		_ = f.renderer.Destroy()
		f.renderer = nil
	}
	if f.window != nil {
		_ = f.window.Destroy()
		f.window = nil
	}
	sdl.Quit()
	return nil
}

// fillPixels converts the display cells to RGBA pixels of a texture with the given pitch.
func fillPixels(pixels []byte, pitch int, display *vm.Display) {
	for y := range vm.DisplayHeight {
		row := pixels[y*pitch:]
		for x := range vm.DisplayWidth {
			color := colorOff
			if display.Pixel(x, y) {
				color = colorOn
			}
			copy(row[x*bytesPerPixel:], color[:])
		}
	}
}
