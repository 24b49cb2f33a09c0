// Package testutil provides synthetic camera frames for tests, including
// real decodable QR codes so detection paths can be exercised end to end
// without a camera.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// NewQRFrame renders value as a QR code centered on a white frame of the
// given size. The result decodes with any conformant reader.
func NewQRFrame(value string, width, height int) (image.Image, error) {
	side := min(width, height) * 3 / 4
	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(value, gozxing.BarcodeFormat_QR_CODE, side, side, nil)
	if err != nil {
		return nil, fmt.Errorf("testutil: encode QR: %w", err)
	}

	img := BlankFrame(width, height)
	offX := (width - matrix.GetWidth()) / 2
	offY := (height - matrix.GetHeight()) / 2
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.Set(offX+x, offY+y, color.Black)
			}
		}
	}
	return img, nil
}

// QRFrame is NewQRFrame for tests that prefer failing fast.
func QRFrame(t *testing.T, value string, width, height int) image.Image {
	t.Helper()
	img, err := NewQRFrame(value, width, height)
	require.NoError(t, err)
	return img
}

// BlankFrame returns an all-white frame with no decodable content.
func BlankFrame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

// Annotate draws a small caption into the top-left corner of img, simulating
// the scene clutter real camera frames carry around a symbol.
func Annotate(img *image.RGBA, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 16),
	}
	d.DrawString(text)
}

// EncodeJPEG encodes img as JPEG bytes, the wire form camera devices deliver.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("testutil: encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// JPEG is EncodeJPEG for tests that prefer failing fast.
func JPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	data, err := EncodeJPEG(img)
	require.NoError(t, err)
	return data
}
