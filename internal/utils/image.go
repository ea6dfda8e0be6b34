package utils

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
)

const (
	MaxImageWidth  = 1920
	MaxImageHeight = 1920
	jpegQuality    = 85
)

type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FitDimensions scales width x height down to fit inside maxWidth x maxHeight,
// keeping the aspect ratio. Images that already fit are returned unchanged.
func FitDimensions(width, height, maxWidth, maxHeight uint) (uint, uint) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	widthRatio := float64(maxWidth) / float64(width)
	heightRatio := float64(maxHeight) / float64(height)

	if widthRatio < heightRatio {
		return maxWidth, uint(float64(height) * widthRatio)
	}
	return uint(float64(width) * heightRatio), maxHeight
}

// DownscaleImage re-encodes JPEG and PNG data that exceeds the given bounds.
// Other formats, and images already within bounds, are returned as-is.
func DownscaleImage(data []byte, contentType string, maxWidth, maxHeight uint) ([]byte, *ImageDimensions, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return data, nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, NewBadRequestError("Image could not be decoded")
	}

	bounds := img.Bounds()
	width, height := FitDimensions(uint(bounds.Dx()), uint(bounds.Dy()), maxWidth, maxHeight)
	if int(width) == bounds.Dx() && int(height) == bounds.Dy() {
		return data, &ImageDimensions{Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	resized := resize.Resize(width, height, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := encodeImage(&buf, resized, contentType); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), &ImageDimensions{Width: int(width), Height: int(height)}, nil
}

func encodeImage(w io.Writer, img image.Image, contentType string) error {
	if contentType == "image/png" {
		return png.Encode(w, img)
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
}
