package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseLiteralFields(t *testing.T) {
	got, err := Parse("2024-03-05 14:30")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 {
		t.Errorf("date fields = %v, want 2024-03-05", got)
	}
	if got.Hour() != 14 || got.Minute() != 30 || got.Second() != 0 {
		t.Errorf("time fields = %v, want 14:30:00", got)
	}
}

func TestParseAcceptsTSeparatorAndSeconds(t *testing.T) {
	got, err := Parse("2023-12-31T23:59:07")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Hour() != 23 || got.Minute() != 59 || got.Second() != 7 {
		t.Errorf("time fields = %v, want 23:59:07", got)
	}
}

func TestParseRejectsOtherShapes(t *testing.T) {
	for _, text := range []string{
		"",
		"yesterday",
		"2024-03-05",
		"05/03/2024 14:30",
		"2024-3-5 14:30",
		"2024-03-05 14:30:00.123",
	} {
		if _, err := Parse(text); !errors.Is(err, ErrUnrecognizedDate) {
			t.Errorf("Parse(%q) error = %v, want ErrUnrecognizedDate", text, err)
		}
	}
}

func TestUTCISOStampsWallClock(t *testing.T) {
	d, err := Parse("2024-03-05 14:30")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := UTCISO(d); got != "2024-03-05T14:30:00Z" {
		t.Errorf("UTCISO() = %q, want %q", got, "2024-03-05T14:30:00Z")
	}
}

func TestCompact(t *testing.T) {
	d, err := Parse("2024-03-05 14:30:09")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := Compact(d); got != "20240305T14:30:09" {
		t.Errorf("Compact() = %q, want %q", got, "20240305T14:30:09")
	}
}

func TestDisplayRoundTrips(t *testing.T) {
	d, err := Parse("2024-03-05 14:30")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	display := Display(d)
	if display != "2024-03-05 14:30" {
		t.Errorf("Display() = %q, want %q", display, "2024-03-05 14:30")
	}

	again, err := Parse(display)
	if err != nil {
		t.Fatalf("Parse(Display()) error = %v", err)
	}
	if !again.Equal(d) {
		t.Errorf("Parse(Display()) = %v, want %v", again, d)
	}
}
