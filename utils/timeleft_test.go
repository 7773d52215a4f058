package utils

import (
	"testing"
	"time"
)

func TestTimeLeftFormatsRemaining(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt string
		want      string
	}{
		{"seconds only", now.Add(2*time.Minute + 3*time.Second).Format(time.RFC3339), "0:02:03"},
		{"hours minutes seconds", now.Add(3*time.Hour + 25*time.Minute + 45*time.Second).Format(time.RFC3339), "3:25:45"},
		{"exactly now", now.Format(time.RFC3339), "0:00:00"},
		{"already expired", now.Add(-time.Minute).Format(time.RFC3339), "0:00:00"},
		{"malformed timestamp", "not-a-timestamp", "0:00:00"},
		{"empty timestamp", "", "0:00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeLeft(tc.expiresAt, now); got != tc.want {
				t.Errorf("TimeLeft(%q) = %q, want %q", tc.expiresAt, got, tc.want)
			}
		})
	}
}

func TestTimeLeftClampsAfterLongSuspension(t *testing.T) {
	// A tab suspended past the expiry must come back to a clamped zero, not
	// a negative countdown.
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	expiresAt := start.Add(121 * time.Second).Format(time.RFC3339)

	if got := TimeLeft(expiresAt, start); got != "0:02:01" {
		t.Fatalf("before suspension: got %q, want %q", got, "0:02:01")
	}
	resumed := start.Add(5 * time.Minute)
	if got := TimeLeft(expiresAt, resumed); got != ExpiredTimeLeft {
		t.Fatalf("after suspension: got %q, want %q", got, ExpiredTimeLeft)
	}
	if !IsExpired(expiresAt, resumed) {
		t.Fatal("IsExpired should be true after the expiry passed")
	}
}

func TestTimeLeftShort(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt string
		want      string
	}{
		{"minutes and seconds", now.Add(9*time.Minute + 30*time.Second).Format(time.RFC3339), "9:30"},
		{"wraps at the hour", now.Add(65 * time.Minute).Format(time.RFC3339), "5:00"},
		{"expired", now.Add(-time.Second).Format(time.RFC3339), "0:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeLeftShort(tc.expiresAt, now); got != tc.want {
				t.Errorf("TimeLeftShort(%q) = %q, want %q", tc.expiresAt, got, tc.want)
			}
		})
	}
}
