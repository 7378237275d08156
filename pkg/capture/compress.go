package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/harrisonrobin/snapcal/pkg/apperr"
)

const (
	DefaultMaxWidth = 1920
	DefaultQuality  = 50
)

// Options bound the size of the payload sent to the model.
type Options struct {
	MaxWidth int
	Quality  int
}

func (o Options) normalized() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Payload is one compressed screenshot. It lives for a single run.
type Payload struct {
	Data   []byte
	Width  int
	Height int
}

// DataURL returns the payload as a base64 JPEG data URL.
func (p Payload) DataURL() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// ScaledSize returns the target size for a w×h image. Images wider than
// maxWidth are scaled to exactly maxWidth with the height truncated to keep
// the aspect ratio; others are returned unchanged.
func ScaledSize(w, h, maxWidth int) (int, int) {
	if w <= maxWidth {
		return w, h
	}
	return maxWidth, maxWidth * h / w
}

// Compress decodes raw (PNG, JPEG or GIF), downsamples it to opts.MaxWidth
// and re-encodes it as JPEG.
func Compress(raw []byte, opts Options) (Payload, error) {
	opts = opts.normalized()
	if len(raw) == 0 {
		return Payload{}, apperr.New(apperr.DecodeError, "decode screenshot", errors.New("empty image"))
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Payload{}, apperr.New(apperr.DecodeError, "decode screenshot", err)
	}

	b := src.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), opts.MaxWidth)
	if w <= 0 || h <= 0 {
		return Payload{}, apperr.Errorf(apperr.DecodeError, "decode screenshot", "invalid image size %dx%d", b.Dx(), b.Dy())
	}

	var img image.Image = src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return Payload{}, apperr.New(apperr.DecodeError, "encode jpeg", fmt.Errorf("from %s: %w", format, err))
	}

	return Payload{Data: buf.Bytes(), Width: w, Height: h}, nil
}
