package mock

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
)

const (
	frameWidth  = 64
	frameHeight = 48
)

// renderFrame draws a synthetic camera frame for seq: a gradient with a
// bright block drifting across it.
func renderFrame(seq int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	shift := seq * 2
	for y := 0; y < frameHeight; y++ {
		for x := 0; x < frameWidth; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x + shift) * 4),
				G: uint8(y * 5),
				B: uint8(160 - y*2),
				A: 255,
			})
		}
	}

	bx := shift % frameWidth
	for y := frameHeight/2 - 6; y < frameHeight/2+6; y++ {
		for x := bx; x < bx+10 && x < frameWidth; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 220, B: 60, A: 255})
		}
	}
	return img
}

// encodeFrame returns img as a JPEG data URL.
func encodeFrame(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 70}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
