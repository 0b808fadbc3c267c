package agedate

import (
	"testing"
	"time"
)

func TestCaptureDate(t *testing.T) {
	tests := []struct {
		name  string
		age   int
		birth time.Time
		want  time.Time
	}{
		{
			name:  "whole years from january first",
			age:   30,
			birth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "zero age is the birth date",
			age:   0,
			birth: time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "leap day clamps to end of february",
			age:   1,
			birth: time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2001, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "leap day into leap year stays",
			age:   4,
			birth: time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "negative age goes backwards",
			age:   -2,
			birth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CaptureDate(tt.age, tt.birth)
			if !got.Equal(tt.want) {
				t.Errorf("CaptureDate(%d, %v) = %v, want %v", tt.age, tt.birth, got, tt.want)
			}
		})
	}
}

func TestCaptureDate_MatchesAddDateForJanuaryFirst(t *testing.T) {
	for year := 1900; year < 2030; year += 7 {
		birth := BirthDate(year)
		for age := 0; age <= 100; age++ {
			got := CaptureDate(age, birth)
			want := birth.AddDate(age, 0, 0)
			if !got.Equal(want) {
				t.Fatalf("CaptureDate(%d, %v) = %v, want %v", age, birth, got, want)
			}
		}
	}
}

func TestBirthDate(t *testing.T) {
	got := BirthDate(1980)
	want := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("BirthDate(1980) = %v, want %v", got, want)
	}
}

func TestExceeds_ThresholdBoundary(t *testing.T) {
	recorded := time.Date(2010, 3, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		estimated time.Time
		want      bool
	}{
		{name: "exactly threshold after", estimated: recorded.AddDate(0, 0, DefaultThresholdDays), want: false},
		{name: "one day over after", estimated: recorded.AddDate(0, 0, DefaultThresholdDays+1), want: true},
		{name: "exactly threshold before", estimated: recorded.AddDate(0, 0, -DefaultThresholdDays), want: false},
		{name: "one day over before", estimated: recorded.AddDate(0, 0, -DefaultThresholdDays-1), want: true},
		{name: "partial day dropped when recorded is earlier", estimated: recorded.AddDate(0, 0, DefaultThresholdDays).Add(23 * time.Hour), want: false},
		{name: "half day dropped when recorded is earlier", estimated: recorded.AddDate(0, 0, DefaultThresholdDays).Add(12 * time.Hour), want: false},
		{name: "half day counts when recorded is later", estimated: recorded.AddDate(0, 0, -DefaultThresholdDays).Add(-12 * time.Hour), want: true},
		{name: "same instant", estimated: recorded, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exceeds(tt.estimated, recorded, DefaultThresholdDays); got != tt.want {
				t.Errorf("Exceeds() = %v, want %v (days apart %d)", got, tt.want, DaysApart(tt.estimated, recorded))
			}
		})
	}
}

func TestDaysApart(t *testing.T) {
	estimated := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		recorded time.Time
		want     int
	}{
		{name: "same instant", recorded: estimated, want: 0},
		{name: "whole days later", recorded: estimated.AddDate(0, 0, 10), want: 10},
		{name: "whole days earlier", recorded: estimated.AddDate(0, 0, -10), want: 10},
		{name: "later with time of day rounds up", recorded: estimated.AddDate(0, 0, 3650).Add(12 * time.Hour), want: 3651},
		{name: "earlier with time of day rounds down", recorded: estimated.AddDate(0, 0, -3650).Add(-12 * time.Hour), want: 3650},
		{name: "one second later", recorded: estimated.Add(time.Second), want: 1},
		{name: "one second earlier", recorded: estimated.Add(-time.Second), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysApart(estimated, tt.recorded); got != tt.want {
				t.Errorf("DaysApart(%v, %v) = %d, want %d", estimated, tt.recorded, got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	birth := BirthDate(1980)
	captured := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	got := Description(birth, captured)
	want := "born on 1980-01-01 and is 35 years old."
	if got != want {
		t.Fatalf("Description() = %q, want %q", got, want)
	}
}
