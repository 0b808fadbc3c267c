package capturedate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the EXIF date-time format, e.g. "2023:10:24 12:00:00".
const Layout = "2006:01:02 15:04:05"

var (
	// ErrMissingTag means a metadata block was found without DateTimeOriginal.
	ErrMissingTag = errors.New("no DateTimeOriginal tag")

	// ErrNoMetadata means the file carries no readable EXIF block.
	ErrNoMetadata = errors.New("no EXIF metadata")

	ErrNoReaders = errors.New("no capture date readers configured")
)

// Status describes the outcome of a read.
type Status string

const (
	StatusFound      Status = "found"
	StatusMissingTag Status = "missing_tag"
	StatusUnreadable Status = "unreadable"
)

// Result is the outcome of reading one file. CapturedAt is set only when
// Status is StatusFound; Err explains the other statuses when known.
type Result struct {
	CapturedAt time.Time
	Status     Status
	Err        error
}

// Found reports whether a capture date was read.
func (r Result) Found() bool {
	return r.Status == StatusFound
}

// Reader reads the capture timestamp of the file at path.
type Reader interface {
	CaptureDate(path string) Result
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(path string) Result

func (f ReaderFunc) CaptureDate(path string) Result { return f(path) }

// Parse converts an EXIF date-time string to a UTC time.
// EXIF carries no zone, so all values are interpreted as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "\x00")
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse capture date %q: %w", s, err)
	}
	return t, nil
}

// Format renders t in the EXIF date-time format, dropping sub-second precision.
func Format(t time.Time) string {
	return t.Format(Layout)
}

func found(t time.Time) Result {
	return Result{CapturedAt: t, Status: StatusFound}
}

func missingTag(err error) Result {
	return Result{Status: StatusMissingTag, Err: err}
}

func unreadable(err error) Result {
	return Result{Status: StatusUnreadable, Err: err}
}

// FromString builds a Result from a raw tag value. An empty value with
// ok=false means the tag is absent.
func FromString(raw string, ok bool) Result {
	if !ok || strings.TrimSpace(raw) == "" {
		return missingTag(ErrMissingTag)
	}
	t, err := Parse(raw)
	if err != nil {
		return unreadable(err)
	}
	return found(t)
}

// Chain tries readers in order and returns the first found result. If none
// finds a date, a missing-tag result is preferred over an unreadable one, so
// the caller learns that some metadata exists.
func Chain(readers ...Reader) Reader {
	return chain(readers)
}

type chain []Reader

func (c chain) CaptureDate(path string) Result {
	best := unreadable(ErrNoReaders)
	for _, r := range c {
		res := r.CaptureDate(path)
		if res.Found() {
			return res
		}
		if res.Status == StatusMissingTag || best.Status != StatusMissingTag {
			best = res
		}
	}
	return best
}
