package vm

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the monochrome framebuffer. Each cell is 0 or 1, stored row by row.
// It is mutated only by the clear and draw instructions.
type Display struct {
	pixels  [DisplayWidth * DisplayHeight]byte
	changed bool
}

// Pixel returns whether the pixel at the given coordinates is set.
// Coordinates wrap around the display edges.
func (d *Display) Pixel(x, y int) bool {
	return d.pixels[pixelIndex(x, y)] != 0
}

// Pixels returns a copy of the framebuffer cells, row by row.
func (d *Display) Pixels() []byte {
	pixels := make([]byte, len(d.pixels))
	copy(pixels, d.pixels[:])
	return pixels
}

// Changed reports whether the framebuffer was modified since the last call
// and resets the indicator.
func (d *Display) Changed() bool {
	changed := d.changed
	d.changed = false
	return changed
}

// clear zeroes all cells.
func (d *Display) clear() {
	d.pixels = [DisplayWidth * DisplayHeight]byte{}
	d.changed = true
}

// drawSprite XORs the sprite rows onto the display at the given position.
// Every set source bit toggles its target cell, coordinates wrap per pixel.
// It returns true if any set pixel was turned off by the draw.
func (d *Display) drawSprite(x, y byte, rows []byte) bool {
	collision := false
	for row, data := range rows {
		for bit := range 8 {
			if data&(0x80>>bit) == 0 {
				continue
			}
			index := pixelIndex(int(x)+bit, int(y)+row)
			if d.pixels[index] != 0 {
				collision = true
			}
			d.pixels[index] ^= 1
		}
	}
	d.changed = true
	return collision
}

func pixelIndex(x, y int) int {
	x %= DisplayWidth
	if x < 0 {
		x += DisplayWidth
	}
	y %= DisplayHeight
	if y < 0 {
		y += DisplayHeight
	}
	return y*DisplayWidth + x
}
