package audit

import (
	"fmt"
	"time"
)

// AnomalyPolicy holds the fixed-threshold heuristics evaluated after every
// append. Thresholds are configuration, not literals.
type AnomalyPolicy struct {
	// RecentWindow is how many trailing entries each scan inspects.
	RecentWindow int
	// FailedLoginThreshold flags N or more consecutive FAILURE logins by the
	// same actor inside the recent window.
	FailedLoginThreshold int
	// BurstThreshold flags an actor performing more than N actions inside
	// BurstWindow.
	BurstThreshold int
	BurstWindow    time.Duration
}

func DefaultAnomalyPolicy() AnomalyPolicy {
	return AnomalyPolicy{
		RecentWindow:         10,
		FailedLoginThreshold: 3,
		BurstThreshold:       20,
		BurstWindow:          30 * time.Second,
	}
}

// detect scans the trailing window (latest entry last, the entry that was just
// appended included) and returns a human-readable reason for each heuristic
// that fired. Empty result means nothing suspicious.
func (p AnomalyPolicy) detect(recent []Entry, latest Entry) []string {
	var reasons []string

	if n := consecutiveFailedLogins(recent, latest.UserID); n >= p.FailedLoginThreshold {
		reasons = append(reasons, fmt.Sprintf("%d consecutive failed login attempts for user %s", n, latest.UserID))
	}

	cutoff := latest.Timestamp.Add(-p.BurstWindow)
	count := 0
	for _, e := range recent {
		if e.UserID == latest.UserID && !e.Timestamp.Before(cutoff) {
			count++
		}
	}
	if count > p.BurstThreshold {
		reasons = append(reasons, fmt.Sprintf("%d actions within %s for user %s", count, p.BurstWindow, latest.UserID))
	}

	return reasons
}

// consecutiveFailedLogins counts the failed-login streak for userID at the
// tail of the window. Any other entry by the same user breaks the streak;
// entries by other actors are skipped.
func consecutiveFailedLogins(recent []Entry, userID string) int {
	streak := 0
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		if e.UserID != userID {
			continue
		}
		if e.Action == ActionUserLogin && e.Status == StatusFailure {
			streak++
			continue
		}
		break
	}
	return streak
}
