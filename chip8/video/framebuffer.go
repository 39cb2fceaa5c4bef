package video

const (
	// FramebufferWidth is the logical CHIP-8 display width in pixels.
	FramebufferWidth = 64
	// FramebufferHeight is the logical CHIP-8 display height in pixels.
	FramebufferHeight = 32
)

// FrameBuffer is the 64x32 monochrome CHIP-8 display. Each cell is a single
// on/off pixel; sprite drawing XORs bits onto it one pixel at a time.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []bool
}

// NewFrameBuffer creates an all-unset frame buffer at the CHIP-8 resolution.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]bool, FramebufferWidth*FramebufferHeight),
	}
}

func (fb *FrameBuffer) GetPixel(x, y uint) bool {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, on bool) {
	fb.buffer[y*fb.width+x] = on
}

// Flip XORs the pixel at (x, y) with a set sprite bit and reports whether
// the pixel went from set to unset, i.e. a sprite collision.
func (fb *FrameBuffer) Flip(x, y uint) bool {
	idx := y*fb.width + x
	fb.buffer[idx] = !fb.buffer[idx]
	return !fb.buffer[idx]
}

// Clear unsets every pixel.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = false
	}
}

// ToSlice exposes the backing pixel slice in row-major order. The slice is
// shared with the frame buffer; callers that need an independent copy should
// use Snapshot.
func (fb *FrameBuffer) ToSlice() []bool {
	return fb.buffer
}

// Snapshot returns an independent row-major copy of the current pixels.
func (fb *FrameBuffer) Snapshot() []bool {
	out := make([]bool, len(fb.buffer))
	copy(out, fb.buffer)
	return out
}
