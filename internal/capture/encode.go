package capture

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	// PhotoMIMEType is the content type of accepted stills.
	PhotoMIMEType = "image/jpeg"
	// PhotoFilename is the upload name of accepted stills.
	PhotoFilename = "camera-capture.jpg"

	defaultJPEGQuality = 90
)

// Config controls how accepted stills are encoded.
type Config struct {
	// MaxEdge bounds the longer side of the encoded image. Zero disables scaling.
	MaxEdge int `mapstructure:"max_edge" validate:"gte=0"`
	// JPEGQuality is passed to image/jpeg. Zero selects the default.
	JPEGQuality int `mapstructure:"jpeg_quality" validate:"gte=0,lte=100"`
}

var errEmptyImage = errors.New("empty image")

// encodeJPEG downsizes img to cfg.MaxEdge and encodes it as JPEG.
func encodeJPEG(img image.Image, cfg Config) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errEmptyImage
	}

	img = scaleToFit(img, cfg.MaxEdge)

	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scaleToFit returns img unchanged when it already fits within maxEdge.
func scaleToFit(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = maxEdge
		nh = max(1, h*maxEdge/w)
	} else {
		nh = maxEdge
		nw = max(1, w*maxEdge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
