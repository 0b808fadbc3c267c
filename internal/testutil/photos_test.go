package testutil

import "testing"

func TestDescription(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "a.jpg", JPEG(t, &Exif{
		DateTimeOriginal: "2001:02:03 04:05:06",
		ImageDescription: "born on 1980-01-01 and is 21 years old.",
	}))

	got, ok := Description(t, path)
	if !ok {
		t.Fatalf("expected description to be present")
	}
	if got != "born on 1980-01-01 and is 21 years old." {
		t.Fatalf("unexpected description %q", got)
	}

	if _, ok := Description(t, WriteFile(t, dir, "b.jpg", JPEG(t, nil))); ok {
		t.Fatalf("expected no description without EXIF")
	}
	if _, ok := Description(t, WriteFile(t, dir, "c.jpg", JPEG(t, &Exif{DateTimeOriginal: "2001:02:03 04:05:06"}))); ok {
		t.Fatalf("expected no description when the tag is absent")
	}
}
