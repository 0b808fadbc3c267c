// Package testutil builds small photo fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rwcarlsen/goexif/exif"
)

// TIFF field types.
const (
	typeASCII     = 2
	typeLong      = 4
	typeUndefined = 7
)

// EXIF tag IDs.
const (
	tagImageDescription = 0x010E
	tagExifIFDPointer   = 0x8769
	tagExifVersion      = 0x9000
	tagDateTimeOriginal = 0x9003
)

// Exif describes the tags written by JPEG. Empty fields are omitted.
type Exif struct {
	DateTimeOriginal string
	ImageDescription string
}

// JPEG returns a small valid JPEG. If x is non-nil an APP1 EXIF segment
// carrying its tags is inserted after the SOI marker.
func JPEG(t *testing.T, x *Exif) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()
	if x == nil {
		return data
	}

	tiff := tiffBlock(x)
	app1 := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(app1[2:], uint16(2+6+len(tiff)))
	app1 = append(app1, []byte("Exif\x00\x00")...)
	app1 = append(app1, tiff...)

	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...)
	out = append(out, app1...)
	out = append(out, data[2:]...)
	return out
}

// PNG returns a small valid PNG without metadata.
func PNG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

// Description returns the ImageDescription tag of the file at path. ok is
// false when the file has no EXIF block or no such tag.
func Description(t *testing.T, path string) (string, bool) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (exif.IsCriticalError(err) || x == nil) {
		return "", false
	}
	tag, err := x.Get(exif.ImageDescription)
	if err != nil {
		return "", false
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return s, true
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	return img
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func ascii(s string) []byte {
	return append([]byte(s), 0)
}

// tiffBlock lays out a little-endian TIFF header, IFD0 and the Exif sub-IFD.
func tiffBlock(x *Exif) []byte {
	const ifd0Start = 8

	ifd0 := []ifdEntry{}
	if x.ImageDescription != "" {
		d := ascii(x.ImageDescription)
		ifd0 = append(ifd0, ifdEntry{tag: tagImageDescription, typ: typeASCII, count: uint32(len(d)), data: d})
	}
	pointer := ifdEntry{tag: tagExifIFDPointer, typ: typeLong, count: 1, data: make([]byte, 4)}
	ifd0 = append(ifd0, pointer)

	exifIFD := []ifdEntry{{tag: tagExifVersion, typ: typeUndefined, count: 4, data: []byte("0230")}}
	if x.DateTimeOriginal != "" {
		d := ascii(x.DateTimeOriginal)
		exifIFD = append(exifIFD, ifdEntry{tag: tagDateTimeOriginal, typ: typeASCII, count: uint32(len(d)), data: d})
	}

	// The IFD0 size does not depend on the pointer value, so encode once to
	// learn where the Exif IFD starts and again with the real pointer.
	exifStart := uint32(ifd0Start + len(encodeIFD(ifd0Start, ifd0)))
	binary.LittleEndian.PutUint32(ifd0[len(ifd0)-1].data, exifStart)

	out := []byte{'I', 'I', 0x2A, 0x00, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(out[4:], ifd0Start)
	out = append(out, encodeIFD(ifd0Start, ifd0)...)
	out = append(out, encodeIFD(exifStart, exifIFD)...)
	return out
}

func encodeIFD(start uint32, entries []ifdEntry) []byte {
	le := binary.LittleEndian
	head := 2 + 12*len(entries) + 4

	buf := make([]byte, head)
	le.PutUint16(buf, uint16(len(entries)))

	var extra []byte
	for i, e := range entries {
		p := buf[2+12*i:]
		le.PutUint16(p[0:], e.tag)
		le.PutUint16(p[2:], e.typ)
		le.PutUint32(p[4:], e.count)
		if len(e.data) <= 4 {
			copy(p[8:12], e.data)
			continue
		}
		le.PutUint32(p[8:], start+uint32(head+len(extra)))
		extra = append(extra, e.data...)
		if len(extra)%2 == 1 {
			extra = append(extra, 0)
		}
	}
	return append(buf, extra...)
}
