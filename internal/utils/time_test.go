package utils

import (
	"testing"
	"time"
)

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		name    string
		timeStr string
		want    int
		wantErr bool
	}{
		{
			name:    "midnight",
			timeStr: "00:00",
			want:    0,
		},
		{
			name:    "morning",
			timeStr: "09:30",
			want:    570,
		},
		{
			name:    "end of day",
			timeStr: "23:59",
			want:    1439,
		},
		{
			name:    "noon",
			timeStr: "12:00",
			want:    720,
		},
		{
			name:    "invalid string",
			timeStr: "not a time",
			wantErr: true,
		},
		{
			name:    "out of range hour",
			timeStr: "25:00",
			wantErr: true,
		},
		{
			name:    "empty string",
			timeStr: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeToMinutes(tt.timeStr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimeToMinutes() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTimeToMinutes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    string
	}{
		{
			name:    "midnight",
			minutes: 0,
			want:    "00:00",
		},
		{
			name:    "single digit hour",
			minutes: 570,
			want:    "09:30",
		},
		{
			name:    "end of day",
			minutes: 1439,
			want:    "23:59",
		},
		{
			name:    "wraps past midnight",
			minutes: 1500,
			want:    "01:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMinutes(tt.minutes); got != tt.want {
				t.Errorf("FormatMinutes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlockDurationMinutes(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		want    int
		wantErr bool
	}{
		{
			name:  "one hour",
			start: "09:00",
			end:   "10:00",
			want:  60,
		},
		{
			name:  "forty five minutes",
			start: "10:00",
			end:   "10:45",
			want:  45,
		},
		{
			name:  "wraps midnight",
			start: "23:00",
			end:   "01:00",
			want:  120,
		},
		{
			name:  "zero duration",
			start: "12:00",
			end:   "12:00",
			want:  0,
		},
		{
			name:    "invalid start",
			start:   "9am",
			end:     "10:00",
			wantErr: true,
		},
		{
			name:    "invalid end",
			start:   "09:00",
			end:     "later",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BlockDurationMinutes(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Errorf("BlockDurationMinutes() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("BlockDurationMinutes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDriftDuration(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    string
	}{
		{
			name:    "hours and minutes",
			minutes: 65,
			want:    "1h 5m",
		},
		{
			name:    "exact hour",
			minutes: 60,
			want:    "1h",
		},
		{
			name:    "minutes only",
			minutes: 45,
			want:    "45m",
		},
		{
			name:    "zero",
			minutes: 0,
			want:    "0m",
		},
		{
			name:    "multiple hours",
			minutes: 135,
			want:    "2h 15m",
		},
		{
			name:    "negative is absolute",
			minutes: -25,
			want:    "25m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDriftDuration(tt.minutes); got != tt.want {
				t.Errorf("FormatDriftDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{
			name: "morning",
			t:    time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
			want: 630,
		},
		{
			name: "midnight",
			t:    time.Date(2025, 6, 1, 0, 0, 59, 0, time.UTC),
			want: 0,
		},
		{
			name: "last minute",
			t:    time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC),
			want: 1439,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesSinceMidnight(tt.t); got != tt.want {
				t.Errorf("MinutesSinceMidnight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateTimeFormat(t *testing.T) {
	tests := []struct {
		name    string
		timeStr string
		want    bool
	}{
		{
			name:    "valid",
			timeStr: "08:15",
			want:    true,
		},
		{
			name:    "invalid separator",
			timeStr: "08.15",
			want:    false,
		},
		{
			name:    "empty",
			timeStr: "",
			want:    false,
		},
		{
			name:    "out of range minutes",
			timeStr: "08:75",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTimeFormat(tt.timeStr); got != tt.want {
				t.Errorf("ValidateTimeFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}
