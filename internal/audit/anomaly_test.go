package audit

import (
	"testing"
	"time"
)

func entryAt(user string, action Action, status Status, ts time.Time) Entry {
	return Entry{UserID: user, Action: action, Status: status, Timestamp: ts}
}

func TestConsecutiveFailedLogins(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	failed := func(user string) Entry { return entryAt(user, ActionUserLogin, StatusFailure, base) }
	success := func(user string) Entry { return entryAt(user, ActionUserLogin, StatusSuccess, base) }

	tests := []struct {
		name     string
		window   []Entry
		expected int
	}{
		{"empty window", nil, 0},
		{"single failure", []Entry{failed("alice")}, 1},
		{"three failures", []Entry{failed("alice"), failed("alice"), failed("alice")}, 3},
		{"success resets", []Entry{failed("alice"), failed("alice"), success("alice"), failed("alice")}, 1},
		{"other action breaks streak", []Entry{failed("alice"), entryAt("alice", ActionTenderCreated, StatusSuccess, base), failed("alice")}, 1},
		{"other actors skipped", []Entry{failed("alice"), failed("bob"), failed("alice"), success("bob"), failed("alice")}, 3},
		{"only other actors", []Entry{failed("bob"), failed("bob")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := consecutiveFailedLogins(tt.window, "alice"); got != tt.expected {
				t.Errorf("consecutiveFailedLogins = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestDetectBurst(t *testing.T) {
	policy := AnomalyPolicy{
		RecentWindow:         10,
		FailedLoginThreshold: 3,
		BurstThreshold:       5,
		BurstWindow:          30 * time.Second,
	}
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("burst over threshold", func(t *testing.T) {
		var window []Entry
		for i := 0; i < 6; i++ {
			window = append(window, entryAt("alice", ActionTenderCreated, StatusSuccess, base.Add(time.Duration(i)*time.Second)))
		}
		reasons := policy.detect(window, window[len(window)-1])
		if len(reasons) != 1 {
			t.Fatalf("expected 1 reason, got %v", reasons)
		}
	})

	t.Run("entries outside the window ignored", func(t *testing.T) {
		var window []Entry
		for i := 0; i < 5; i++ {
			window = append(window, entryAt("alice", ActionTenderCreated, StatusSuccess, base.Add(time.Duration(i)*time.Minute)))
		}
		window = append(window, entryAt("alice", ActionTenderCreated, StatusSuccess, base.Add(6*time.Minute)))
		if reasons := policy.detect(window, window[len(window)-1]); len(reasons) != 0 {
			t.Errorf("spread-out entries should not flag, got %v", reasons)
		}
	})

	t.Run("other actors not counted", func(t *testing.T) {
		var window []Entry
		for i := 0; i < 6; i++ {
			window = append(window, entryAt("bob", ActionTenderCreated, StatusSuccess, base))
		}
		latest := entryAt("alice", ActionTenderCreated, StatusSuccess, base)
		window = append(window, latest)
		if reasons := policy.detect(window, latest); len(reasons) != 0 {
			t.Errorf("bob's burst should not flag alice, got %v", reasons)
		}
	})
}
