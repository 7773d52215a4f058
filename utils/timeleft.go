package utils

import (
	"fmt"
	"time"
)

// ExpiredTimeLeft is what TimeLeft returns once the expiry has passed.
const ExpiredTimeLeft = "0:00:00"

// ExpiredTimeLeftShort is the short-format equivalent of ExpiredTimeLeft.
const ExpiredTimeLeftShort = "0:00"

// TimeLeft formats the remaining time until expiresAt (RFC 3339) as H:MM:SS.
// It is recomputed from the wall-clock delta on every call so it stays
// correct across tab suspension, and clamps at zero instead of going
// negative. A malformed timestamp counts as already expired.
func TimeLeft(expiresAt string, now time.Time) string {
	remaining := remainingUntil(expiresAt, now)
	if remaining <= 0 {
		return ExpiredTimeLeft
	}

	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60
	seconds := int(remaining.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

// TimeLeftShort formats the remaining time as M:SS for compact displays such
// as the processing screen.
func TimeLeftShort(expiresAt string, now time.Time) string {
	remaining := remainingUntil(expiresAt, now)
	if remaining <= 0 {
		return ExpiredTimeLeftShort
	}

	minutes := int(remaining.Minutes()) % 60
	seconds := int(remaining.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// IsExpired reports whether expiresAt has passed.
func IsExpired(expiresAt string, now time.Time) bool {
	return remainingUntil(expiresAt, now) <= 0
}

func remainingUntil(expiresAt string, now time.Time) time.Duration {
	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return 0
	}
	return expiry.Sub(now)
}
