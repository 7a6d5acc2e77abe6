/*
=================================================================================
IMAGE DATA — ROW-MAJOR GRAYSCALE BUFFER LOADING (EXTERNAL COLLABORATOR)
=================================================================================

ImageData is the image-loader collaborator named in spec.md section 6:
it decodes an image file into a row-major uint8 grayscale buffer plus
its dimensions, and nothing else. It never touches neuron state — the
same separation of concerns spec.md demands of the (out-of-scope)
monitor/debugger applies here: this package only produces data that
layer.NewPixel then consumes.

Format support is intentionally broad, drawing on the wider example
pack's image-processing dependencies rather than just the standard
library: PNG/JPEG/GIF decode via the standard "image" package's
registered decoders, BMP and TIFF via golang.org/x/image, and the
RGB-to-grayscale conversion and resizing via
github.com/anthonynsimon/bild, the same way the CompCogNeuro/sims and
ccnlab/leabrax example repos pull in bild for their vision pipelines.
=================================================================================
*/
package imagedata

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/SynapticNetworks/odlm/config"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Error reports an InvalidImage construction failure: non-positive
// dimensions, a buffer whose length does not match them, a file that
// cannot be opened or decoded, or an image that decodes to zero size.
type Error struct {
	Path string
	Msg  string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid image %q: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("invalid image: %s", e.Msg)
}

// ImageData holds a decoded grayscale image: Width*Height bytes, one per
// pixel, in row-major order (Gray[y*Width+x] is pixel (x,y)).
type ImageData struct {
	Width  int
	Height int
	Gray   []uint8
}

// At returns the grayscale value at (x,y). The caller is responsible for
// keeping x,y in bounds; this package is a pure data holder and performs
// no per-access bounds checking on the hot path used by layer
// construction.
func (d *ImageData) At(x, y int) uint8 {
	return d.Gray[y*d.Width+x]
}

// NewFromGray wraps a caller-provided row-major grayscale buffer. This
// is the path used directly by tests and by any host that already has
// pixel data in memory rather than a file to decode.
func NewFromGray(width, height int, gray []uint8) (*ImageData, error) {
	if width <= 0 || height <= 0 {
		return nil, &Error{Msg: fmt.Sprintf("non-positive dimensions %dx%d", width, height)}
	}
	if len(gray) != width*height {
		return nil, &Error{Msg: fmt.Sprintf("buffer length %d does not match %dx%d", len(gray), width, height)}
	}
	return &ImageData{Width: width, Height: height, Gray: gray}, nil
}

// Load decodes the image file at path, converts it to grayscale, resizes
// it according to cfg, and returns the resulting ImageData.
func Load(path string, cfg config.InputImageParams) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Msg: err.Error()}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &Error{Path: path, Msg: "decode: " + err.Error()}
	}

	gray := effect.Grayscale(img)
	resized := applyResize(gray, cfg)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, &Error{Path: path, Msg: "decoded to an empty image"}
	}

	buf := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			buf[y*width+x] = uint8(r >> 8)
		}
	}

	return &ImageData{Width: width, Height: height, Gray: buf}, nil
}

func applyResize(img image.Image, cfg config.InputImageParams) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch {
	case cfg.FIXED_INPUT_IMGS_SIZE:
		return transform.Resize(img, int(cfg.FIXED_INPUT_IMGS_WIDTH), int(cfg.FIXED_INPUT_IMGS_HEIGHT), transform.Linear)
	case cfg.RESIZE_IMG_KEEP_RATIO:
		longSide := int(cfg.KEEP_RATIO_LONGEST_IMG_SIDE)
		if w >= h {
			newH := int(float64(h) * float64(longSide) / float64(w))
			return transform.Resize(img, longSide, newH, transform.Linear)
		}
		newW := int(float64(w) * float64(longSide) / float64(h))
		return transform.Resize(img, newW, longSide, transform.Linear)
	default:
		return img
	}
}
