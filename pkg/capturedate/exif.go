package capturedate

import (
	"fmt"
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifReader reads DateTimeOriginal with a pure-Go EXIF decoder. It handles
// JPEG and TIFF containers; other formats come back unreadable.
type ExifReader struct{}

func (ExifReader) CaptureDate(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return unreadable(fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads DateTimeOriginal from an EXIF-bearing stream.
func Decode(r io.Reader) Result {
	x, err := exif.Decode(r)
	if err != nil {
		// Non-critical errors come with a partially decoded block that may
		// still hold the tag.
		if exif.IsCriticalError(err) || x == nil {
			return unreadable(fmt.Errorf("%w: %v", ErrNoMetadata, err))
		}
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return missingTag(ErrMissingTag)
	}

	raw, err := tag.StringVal()
	if err != nil {
		return unreadable(fmt.Errorf("DateTimeOriginal: %w", err))
	}

	return FromString(raw, true)
}
