// Package estimate asks an external face-analysis model how old the subject
// of a photo is.
package estimate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/gabriel-vasile/mimetype"

	// decoders for the formats the review pipeline accepts
	_ "image/jpeg"
	_ "image/png"
)

var (
	// ErrNoFace is returned when the model finds no face to estimate.
	ErrNoFace = errors.New("no face detected")

	// ErrUndecodable is returned when the file is not a decodable image.
	ErrUndecodable = errors.New("image cannot be decoded")
)

// Estimator returns the estimated age in years of the person in the photo at
// path.
type Estimator interface {
	EstimateAge(ctx context.Context, path string) (int, error)
}

// Func adapts a function to Estimator.
type Func func(ctx context.Context, path string) (int, error)

func (f Func) EstimateAge(ctx context.Context, path string) (int, error) { return f(ctx, path) }

// Image is a photo loaded and checked for decodability.
type Image struct {
	Data []byte
	MIME string
}

// MIMEType returns the media type of the image.
func (i Image) MIMEType() string {
	return i.MIME
}

var supportedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Load reads the file at path, sniffs its content type and verifies the
// header decodes as an image. The file extension is not consulted.
func Load(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read %s: %w", path, err)
	}

	mime := mimetype.Detect(data).String()
	if !supportedMIME[mime] {
		return Image{}, fmt.Errorf("%s: %w: content type %s", path, ErrUndecodable, mime)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return Image{}, fmt.Errorf("%s: %w: %v", path, ErrUndecodable, err)
	}

	return Image{Data: data, MIME: mime}, nil
}

// roundAge rounds a fractional model output to whole years.
func roundAge(age float64) int {
	return int(math.Round(age))
}
