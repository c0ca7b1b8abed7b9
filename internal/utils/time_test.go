package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{
			name:     "empty string returns local",
			timezone: "",
			wantErr:  false,
		},
		{
			name:     "Local returns local",
			timezone: "Local",
			wantErr:  false,
		},
		{
			name:     "valid timezone UTC",
			timezone: "UTC",
			wantErr:  false,
		},
		{
			name:     "valid timezone America/New_York",
			timezone: "America/New_York",
			wantErr:  false,
		},
		{
			name:     "invalid timezone",
			timezone: "Invalid/Timezone",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestDateIn(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in Tokyo.
	instant := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)

	got, err := DateIn(instant, "UTC")
	if err != nil || got != "2026-01-01" {
		t.Errorf("DateIn(UTC) = %q, %v", got, err)
	}
	got, err = DateIn(instant, "Asia/Tokyo")
	if err != nil || got != "2026-01-02" {
		t.Errorf("DateIn(Asia/Tokyo) = %q, %v", got, err)
	}
	if _, err := DateIn(instant, "Nowhere/Land"); err == nil {
		t.Error("DateIn() with invalid timezone should fail")
	}
}

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	instant := time.Date(2026, 5, 6, 12, 0, 1, 250_000_123, loc)

	got := Timestamp(instant)
	if got != "2026-05-06T09:00:01.250000123Z" {
		t.Errorf("Timestamp() = %q", got)
	}
	back, err := ParseTimestamp(got)
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}
	if !back.Equal(instant) {
		t.Errorf("ParseTimestamp() = %v, want %v", back, instant)
	}

	millis, err := ParseTimestamp("2026-05-06T09:00:01.250Z")
	if err != nil || !millis.Equal(instant.Truncate(time.Millisecond)) {
		t.Errorf("ParseTimestamp(millis) = %v, %v", millis, err)
	}
}

func TestNextMidnight(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "afternoon",
			in:   time.Date(2026, 3, 4, 15, 20, 0, 0, time.UTC),
			want: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly midnight moves a full day",
			in:   time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "end of month",
			in:   time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextMidnight(tt.in); !got.Equal(tt.want) {
				t.Errorf("NextMidnight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinutesBetween(t *testing.T) {
	a := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		b    time.Time
		want int
	}{
		{a, 0},
		{a.Add(14*time.Minute + 29*time.Second), 14},
		{a.Add(14*time.Minute + 30*time.Second), 15},
		{a.Add(2 * time.Hour), 120},
	}
	for _, tt := range tests {
		if got := MinutesBetween(a, tt.b); got != tt.want {
			t.Errorf("MinutesBetween(+%v) = %d, want %d", tt.b.Sub(a), got, tt.want)
		}
	}
}
