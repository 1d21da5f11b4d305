package reconcile

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"
)

var errNotBase64DataURL = errors.New("not a base64 data URL")

// maxFramePixels bounds the decoded size of a frame.
var maxFramePixels = 4096 * 4096

// CameraFrame is the latest frame. Only one is kept.
type CameraFrame struct {
	// Visible is true once any frame arrived: the feed replaces the
	// placeholder.
	Visible    bool
	Seq        uint64
	ReceivedAt time.Time
	Size       int // raw payload length
	MIME       string

	// Image is nil when the payload could not be decoded.
	Image     image.Image
	DecodeErr error
}

// decodeFrame parses a "data:<mime>;base64,<data>" URL (or bare base64)
// and decodes the image.
func decodeFrame(raw string) (string, image.Image, error) {
	mime := ""
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, data, ok := strings.Cut(raw[len("data:"):], ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return "", nil, errNotBase64DataURL
		}
		mime = strings.TrimSuffix(header, ";base64")
		payload = data
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return mime, nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return mime, nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxFramePixels {
		return mime, nil, fmt.Errorf("frame size %dx%d out of range", cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return mime, nil, err
	}
	if mime == "" {
		mime = "image/" + format
	}
	return mime, img, nil
}
