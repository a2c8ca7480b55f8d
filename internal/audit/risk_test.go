package audit

import "testing"

func TestRiskScore(t *testing.T) {
	policy := DefaultRiskPolicy()

	tests := []struct {
		name     string
		action   Action
		role     string
		hour     int
		expected int
	}{
		{"plain low-risk action", ActionUserLogout, "bidder", 12, 0},
		{"high-risk action", ActionDataExported, "bidder", 12, 40},
		{"medium-risk action", ActionBidSubmitted, "bidder", 12, 20},
		{"admin actor", ActionUserLogout, "admin", 12, 20},
		{"superuser actor", ActionUserLogout, "superuser", 12, 20},
		{"before day start", ActionUserLogout, "bidder", 5, 15},
		{"at day start", ActionUserLogout, "bidder", 6, 0},
		{"at day end", ActionUserLogout, "bidder", 22, 0},
		{"after day end", ActionUserLogout, "bidder", 23, 15},
		{"midnight", ActionUserLogout, "bidder", 0, 15},
		{"everything stacked", ActionUnauthorizedAccess, "admin", 2, 75},
		{"medium plus admin plus off-hours", ActionPasswordChanged, "superuser", 23, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Score(tt.action, tt.role, tt.hour); got != tt.expected {
				t.Errorf("Score(%s, %s, %d) = %d, want %d", tt.action, tt.role, tt.hour, got, tt.expected)
			}
		})
	}
}

func TestRiskScoreClamped(t *testing.T) {
	policy := RiskPolicy{
		HighRiskWeight: 90,
		ElevatedRole:   90,
		OffHours:       90,
		DayStartHour:   6,
		DayEndHour:     22,
	}
	if got := policy.Score(ActionDataExported, "admin", 3); got != 100 {
		t.Errorf("score should clamp at 100, got %d", got)
	}
	if got := policy.Score(ActionUserLogout, "bidder", 12); got != 0 {
		t.Errorf("score floor is 0, got %d", got)
	}
}
