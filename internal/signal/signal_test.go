package signal

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"rfc1123z", "Fri, 01 Mar 2024 10:30:00 +0000", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday-ish", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHashID(t *testing.T) {
	a := HashID("https://example.com/article-1")
	b := HashID("https://example.com/article-2")
	if len(a) != 32 {
		t.Errorf("id length = %d, want 32", len(a))
	}
	if a == b {
		t.Error("different inputs produced the same id")
	}
	if a != HashID("https://example.com/article-1") {
		t.Error("id is not stable")
	}
}
