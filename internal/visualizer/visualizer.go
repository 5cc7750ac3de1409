// Package visualizer renders a tattoo design on top of a body photo using a
// fixed placement box. The output depends only on the two inputs.
package visualizer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"tattoovision/internal/domain"
	"tattoovision/internal/domain/datauri"
)

// CanvasSize is the edge length of the square output image.
const CanvasSize = 1024

// MaxPixels bounds the declared dimensions of an input image. The byte limit
// alone does not bound decoded memory.
const MaxPixels = 40_000_000

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Layout reports where each input ended up on the canvas.
type Layout struct {
	Canvas    Rect `json:"canvas"`
	Body      Rect `json:"body"`
	TattooBox Rect `json:"tattooBox"`
	Tattoo    Rect `json:"tattoo"`
}

// Result is a rendered placement.
type Result struct {
	ImageDataURI string `json:"imageDataUri"`
	Layout       Layout `json:"layout"`
}

var background = color.NRGBA{}

// PlacementBox is the tattoo area: a quarter in from the top and left edges,
// half the canvas wide and tall.
func PlacementBox() Rect {
	return Rect{X: CanvasSize / 4, Y: CanvasSize / 4, Width: CanvasSize / 2, Height: CanvasSize / 2}
}

// ComputeLayout places a body of size bodySize contained and centered on the
// canvas and a tattoo of size tattooSize contained and centered in the
// placement box.
func ComputeLayout(tattooSize, bodySize image.Point) Layout {
	canvas := Rect{Width: CanvasSize, Height: CanvasSize}
	box := PlacementBox()
	return Layout{
		Canvas:    canvas,
		Body:      contain(bodySize, canvas),
		TattooBox: box,
		Tattoo:    contain(tattooSize, box),
	}
}

// contain scales src to the largest size that fits box without distortion and
// centers it. Images smaller than box are scaled up.
func contain(src image.Point, box Rect) Rect {
	if src.X <= 0 || src.Y <= 0 {
		return Rect{X: box.X + box.Width/2, Y: box.Y + box.Height/2}
	}
	w, h := box.Width, box.Height
	if src.X*box.Height > src.Y*box.Width {
		h = (src.Y*box.Width + src.X/2) / src.X
	} else {
		w = (src.X*box.Height + src.Y/2) / src.Y
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Rect{
		X:      box.X + (box.Width-w)/2,
		Y:      box.Y + (box.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Compose draws body and tattoo onto a transparent square canvas.
func Compose(tattoo, body image.Image) (*image.NRGBA, Layout) {
	layout := ComputeLayout(tattoo.Bounds().Size(), body.Bounds().Size())
	canvas := imaging.New(CanvasSize, CanvasSize, background)

	bodyScaled := imaging.Resize(body, layout.Body.Width, layout.Body.Height, imaging.Lanczos)
	canvas = imaging.Paste(canvas, bodyScaled, layout.Body.bounds().Min)

	tattooScaled := imaging.Resize(tattoo, layout.Tattoo.Width, layout.Tattoo.Height, imaging.Lanczos)
	canvas = imaging.Overlay(canvas, tattooScaled, layout.Tattoo.bounds().Min, 1.0)

	return canvas, layout
}

// Render validates and decodes both data URIs, composes them and returns the
// result as a PNG data URI. Input problems are reported as field errors keyed
// tattooImage and bodyImage.
func Render(tattooURI, bodyURI string, maxImageBytes int) (*Result, error) {
	errs := domain.FieldErrors{}
	tattoo := decode("tattooImage", tattooURI, maxImageBytes, errs)
	body := decode("bodyImage", bodyURI, maxImageBytes, errs)
	if len(errs) > 0 {
		return nil, errs
	}

	composed, layout := Compose(tattoo, body)
	var buf bytes.Buffer
	if err := png.Encode(&buf, composed); err != nil {
		return nil, fmt.Errorf("visualizer: encode png: %w", err)
	}
	return &Result{
		ImageDataURI: datauri.Encode("image/png", buf.Bytes()),
		Layout:       layout,
	}, nil
}

func decode(field, uri string, maxImageBytes int, errs domain.FieldErrors) image.Image {
	var fieldErrs domain.FieldErrors
	if err := domain.ValidateImage(field, uri, maxImageBytes); errors.As(err, &fieldErrs) {
		for k, v := range fieldErrs {
			errs[k] = v
		}
		return nil
	}
	parsed, err := datauri.Parse(strings.TrimSpace(uri))
	if err != nil {
		errs[field] = domain.MsgInvalidImage
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(parsed.Data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		errs[field] = domain.MsgInvalidImage
		return nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		errs[field] = domain.MsgImageTooLarge
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(parsed.Data))
	if err != nil {
		errs[field] = domain.MsgInvalidImage
		return nil
	}
	return img
}
