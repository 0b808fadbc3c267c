package capturedate

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	got, err := Parse("2023:10:24 12:00:00\x00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 10, 24, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Parse() = %v, want %v", got, want)
	}

	if _, err := Parse("2023-10-24 12:00:00"); err == nil {
		t.Fatalf("expected error for ISO layout")
	}
}

func TestFormat_TruncatesToSeconds(t *testing.T) {
	in := time.Date(2020, 1, 2, 3, 4, 5, 999_000_000, time.UTC)
	if got := Format(in); got != "2020:01:02 03:04:05" {
		t.Fatalf("Format() = %q", got)
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		ok     bool
		status Status
	}{
		{name: "valid", raw: "1999:12:31 23:59:59", ok: true, status: StatusFound},
		{name: "absent", raw: "", ok: false, status: StatusMissingTag},
		{name: "blank", raw: "   ", ok: true, status: StatusMissingTag},
		{name: "garbage", raw: "yesterday", ok: true, status: StatusUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromString(tt.raw, tt.ok); got.Status != tt.status {
				t.Fatalf("FromString(%q) status = %q, want %q", tt.raw, got.Status, tt.status)
			}
		})
	}
}

func TestChain(t *testing.T) {
	when := time.Date(2005, 5, 5, 5, 5, 5, 0, time.UTC)
	foundReader := ReaderFunc(func(string) Result { return found(when) })
	missingReader := ReaderFunc(func(string) Result { return missingTag(ErrMissingTag) })
	unreadableReader := ReaderFunc(func(string) Result { return unreadable(ErrNoMetadata) })

	tests := []struct {
		name    string
		readers []Reader
		want    Status
	}{
		{name: "first found wins", readers: []Reader{foundReader, unreadableReader}, want: StatusFound},
		{name: "falls through to found", readers: []Reader{unreadableReader, foundReader}, want: StatusFound},
		{name: "missing beats unreadable", readers: []Reader{missingReader, unreadableReader}, want: StatusMissingTag},
		{name: "missing beats earlier unreadable", readers: []Reader{unreadableReader, missingReader}, want: StatusMissingTag},
		{name: "all unreadable", readers: []Reader{unreadableReader, unreadableReader}, want: StatusUnreadable},
		{name: "empty chain", readers: nil, want: StatusUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chain(tt.readers...).CaptureDate("x.jpg")
			if got.Status != tt.want {
				t.Fatalf("status = %q, want %q", got.Status, tt.want)
			}
		})
	}

	if res := Chain().CaptureDate("x.jpg"); !errors.Is(res.Err, ErrNoReaders) {
		t.Fatalf("expected ErrNoReaders, got %v", res.Err)
	}
}

func TestChain_StopsAtFirstFound(t *testing.T) {
	calls := 0
	counting := ReaderFunc(func(string) Result {
		calls++
		return found(time.Unix(0, 0).UTC())
	})

	Chain(counting, counting).CaptureDate("x.jpg")
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
