// Package retag rewrites capture metadata in place using a persistent
// exiftool process.
package retag

import (
	"errors"
	"fmt"
	"time"

	"github.com/barasher/go-exiftool"
	"go.uber.org/zap"

	"github.com/quidome/photo-dater/pkg/capturedate"
)

// Tag names passed to exiftool. The EXIF group prefix keeps exiftool from
// choosing XMP for formats such as PNG.
const (
	TagDateTimeOriginal = "EXIF:DateTimeOriginal"
	TagImageDescription = "EXIF:ImageDescription"

	// extracted JSON keys carry no group prefix
	fieldDateTimeOriginal = "DateTimeOriginal"
)

// Writer mutates capture metadata of a file.
type Writer interface {
	SetCaptureDate(path string, t time.Time) error
	SetDescription(path string, text string) error
}

// Store is an exiftool-backed Writer that can also read capture dates from
// any container exiftool understands.
type Store struct {
	et  *exiftool.Exiftool
	log *zap.Logger
}

// New starts exiftool. The binary must be on PATH unless a
// exiftool.SetExiftoolBinaryPath option is given. Call Close when done.
func New(log *zap.Logger, opts ...func(*exiftool.Exiftool) error) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}

	return &Store{et: et, log: log}, nil
}

// Close stops the exiftool process.
func (s *Store) Close() error {
	return s.et.Close()
}

// SetCaptureDate overwrites DateTimeOriginal with t, truncated to seconds.
func (s *Store) SetCaptureDate(path string, t time.Time) error {
	value := capturedate.Format(t)
	if err := s.write(path, TagDateTimeOriginal, value); err != nil {
		return fmt.Errorf("update capture date of %s: %w", path, err)
	}

	s.log.Info("updated capture date", zap.String("file", path), zap.String("date_time_original", value))
	return nil
}

// SetDescription overwrites ImageDescription with text.
func (s *Store) SetDescription(path string, text string) error {
	if err := s.write(path, TagImageDescription, text); err != nil {
		return fmt.Errorf("add description to %s: %w", path, err)
	}

	s.log.Info("added description", zap.String("file", path), zap.String("description", text))
	return nil
}

// write sets a single tag. Only the given tag is sent so exiftool never tries
// to write back read-only fields.
func (s *Store) write(path, tag, value string) error {
	fm := exiftool.FileMetadata{File: path, Fields: map[string]interface{}{}}
	fm.SetString(tag, value)

	batch := []exiftool.FileMetadata{fm}
	s.et.WriteMetadata(batch)
	return batch[0].Err
}

// CaptureDate reads DateTimeOriginal through exiftool.
func (s *Store) CaptureDate(path string) capturedate.Result {
	fms := s.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return capturedate.Result{Status: capturedate.StatusUnreadable, Err: fmt.Errorf("exiftool returned nothing for %s", path)}
	}
	if fms[0].Err != nil {
		return capturedate.Result{Status: capturedate.StatusUnreadable, Err: fmt.Errorf("%w: %v", capturedate.ErrNoMetadata, fms[0].Err)}
	}

	raw, err := fms[0].GetString(fieldDateTimeOriginal)
	if errors.Is(err, exiftool.ErrKeyNotFound) {
		return capturedate.FromString("", false)
	}
	if err != nil {
		return capturedate.Result{Status: capturedate.StatusUnreadable, Err: err}
	}
	return capturedate.FromString(raw, true)
}
