package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
)

// dotPixels is the side of the square each canvas dot becomes.
const dotPixels = 3

// GIFRecorder collects canvas frames into an animation.
type GIFRecorder struct {
	Delay   int // hundredths of a second between frames
	palette color.Palette
	frames  []*image.Paletted
}

func NewGIFRecorder(delay int, ink color.Color) *GIFRecorder {
	if delay < 1 {
		delay = 2
	}
	return &GIFRecorder{
		Delay:   delay,
		palette: color.Palette{color.Black, ink},
	}
}

// Capture appends the current canvas contents as one frame. Frames whose
// size differs from the first are dropped.
func (r *GIFRecorder) Capture(c *Canvas) {
	w, h := c.Dots()
	bounds := image.Rect(0, 0, w*dotPixels, h*dotPixels)
	if len(r.frames) > 0 && r.frames[0].Bounds() != bounds {
		return
	}
	img := image.NewPaletted(bounds, r.palette)
	c.Each(func(x, y int) {
		for py := 0; py < dotPixels; py++ {
			for px := 0; px < dotPixels; px++ {
				img.SetColorIndex(x*dotPixels+px, y*dotPixels+py, 1)
			}
		}
	})
	r.frames = append(r.frames, img)
}

func (r *GIFRecorder) Len() int { return len(r.frames) }

func (r *GIFRecorder) Reset() { r.frames = r.frames[:0] }

func (r *GIFRecorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return errors.New("viz: no frames recorded")
	}
	anim := gif.GIF{Image: r.frames, Delay: make([]int, len(r.frames))}
	for i := range anim.Delay {
		anim.Delay[i] = r.Delay
	}
	return gif.EncodeAll(w, &anim)
}

func (r *GIFRecorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.Encode(f); err != nil {
		return err
	}
	return f.Close()
}
