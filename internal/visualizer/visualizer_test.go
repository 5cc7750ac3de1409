package visualizer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tattoovision/internal/domain"
	"tattoovision/internal/domain/datauri"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngURI(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return datauri.Encode("image/png", buf.Bytes())
}

func jpegURI(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return datauri.Encode("image/jpeg", buf.Bytes())
}

// oversizedPNGURI returns a tiny PNG whose header declares w x h pixels.
func oversizedPNGURI(t *testing.T, w, h uint32) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(1, 1, color.NRGBA{A: 255})))
	data := buf.Bytes()
	// Signature (8) + IHDR length (4) + "IHDR" (4), then width and height.
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return datauri.Encode("image/png", data)
}

func TestComputeLayout(t *testing.T) {
	cases := []struct {
		name       string
		tattoo     image.Point
		body       image.Point
		wantBody   Rect
		wantTattoo Rect
	}{
		{
			name:       "square inputs fill their boxes",
			tattoo:     image.Pt(300, 300),
			body:       image.Pt(2048, 2048),
			wantBody:   Rect{X: 0, Y: 0, Width: 1024, Height: 1024},
			wantTattoo: Rect{X: 256, Y: 256, Width: 512, Height: 512},
		},
		{
			name:       "portrait body is pillarboxed",
			tattoo:     image.Pt(400, 200),
			body:       image.Pt(600, 1200),
			wantBody:   Rect{X: 256, Y: 0, Width: 512, Height: 1024},
			wantTattoo: Rect{X: 256, Y: 384, Width: 512, Height: 256},
		},
		{
			name:       "tall tattoo is centered horizontally in the box",
			tattoo:     image.Pt(100, 400),
			body:       image.Pt(1600, 900),
			wantBody:   Rect{X: 0, Y: 224, Width: 1024, Height: 576},
			wantTattoo: Rect{X: 448, Y: 256, Width: 128, Height: 512},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := ComputeLayout(tc.tattoo, tc.body)
			assert.Equal(t, Rect{Width: CanvasSize, Height: CanvasSize}, layout.Canvas)
			assert.Equal(t, PlacementBox(), layout.TattooBox)
			assert.Equal(t, tc.wantBody, layout.Body)
			assert.Equal(t, tc.wantTattoo, layout.Tattoo)
		})
	}
}

func TestComposePlacesTattooInsideBox(t *testing.T) {
	body := solid(200, 400, color.NRGBA{R: 200, G: 150, B: 120, A: 255})
	tattoo := solid(50, 50, color.NRGBA{A: 255})

	canvas, layout := Compose(tattoo, body)
	require.Equal(t, image.Rect(0, 0, CanvasSize, CanvasSize), canvas.Bounds())

	assert.Equal(t, color.NRGBA{}, canvas.NRGBAAt(10, 10), "outside the body stays transparent")
	assert.Equal(t, color.NRGBA{R: 200, G: 150, B: 120, A: 255}, canvas.NRGBAAt(layout.Body.X+5, 900))
	assert.Equal(t, color.NRGBA{A: 255}, canvas.NRGBAAt(512, 512), "tattoo covers the box center")
}

func TestRenderIsDeterministic(t *testing.T) {
	tattoo := pngURI(t, solid(64, 32, color.NRGBA{R: 10, G: 10, B: 10, A: 255}))
	body := jpegURI(t, solid(300, 200, color.NRGBA{R: 220, G: 180, B: 160, A: 255}))

	first, err := Render(tattoo, body, 1<<20)
	require.NoError(t, err)
	second, err := Render(tattoo, body, 1<<20)
	require.NoError(t, err)

	assert.Equal(t, first.ImageDataURI, second.ImageDataURI)
	assert.Equal(t, first.Layout, second.Layout)

	out, err := datauri.Parse(first.ImageDataURI)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MIME)
	decoded, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(CanvasSize, CanvasSize), decoded.Bounds().Size())
}

func TestRenderReportsFieldErrors(t *testing.T) {
	good := pngURI(t, solid(8, 8, color.NRGBA{A: 255}))

	_, err := Render("", "data:text/plain;base64,aGVsbG8=", 1<<20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	var fields domain.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, domain.MsgRequired, fields["tattooImage"])
	assert.Equal(t, domain.MsgUnsupportedImage, fields["bodyImage"])

	_, err = Render(good, good, 16)
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, domain.MsgImageTooLarge, fields["tattooImage"])
	assert.Equal(t, domain.MsgImageTooLarge, fields["bodyImage"])
}

func TestRenderRejectsHugeDeclaredDimensions(t *testing.T) {
	good := pngURI(t, solid(8, 8, color.NRGBA{A: 255}))
	bomb := oversizedPNGURI(t, 20000, 20000)
	require.Less(t, len(bomb), 1024)

	_, err := Render(bomb, good, 8<<20)
	var fields domain.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, domain.MsgImageTooLarge, fields["tattooImage"])
	assert.NotContains(t, fields, "bodyImage")

	_, err = Render(good, oversizedPNGURI(t, MaxPixels+1, 1), 8<<20)
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, domain.MsgImageTooLarge, fields["bodyImage"])
}
