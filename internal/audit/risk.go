package audit

// RiskPolicy holds the weights and thresholds for risk scoring. The values are
// deliberately configuration, not literals: operators tune them without a
// rebuild.
type RiskPolicy struct {
	HighRiskWeight   int
	MediumRiskWeight int
	ElevatedRole     int
	OffHours         int

	// Hours before DayStartHour or after DayEndHour add the OffHours weight.
	DayStartHour int
	DayEndHour   int
}

// DefaultRiskPolicy mirrors the documented scoring table: +40 high-risk
// actions, +20 medium-risk, +20 admin/superuser actors, +15 before 06:00 or
// after 22:00.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		HighRiskWeight:   40,
		MediumRiskWeight: 20,
		ElevatedRole:     20,
		OffHours:         15,
		DayStartHour:     6,
		DayEndHour:       22,
	}
}

var highRiskActions = map[Action]bool{
	ActionCompanyBlacklisted: true,
	ActionContractSigned:     true,
	ActionPaymentCompleted:   true,
	ActionUnauthorizedAccess: true,
	ActionDataExported:       true,
}

var mediumRiskActions = map[Action]bool{
	ActionCompanyApproved:     true,
	ActionBidSubmitted:        true,
	ActionDocumentUploaded:    true,
	ActionEvaluationScored:    true,
	ActionEvaluationCompleted: true,
	ActionPasswordChanged:     true,
}

var elevatedRoles = map[string]bool{
	"admin":     true,
	"superuser": true,
}

// Score computes the 0..100 risk score for an action performed by role at the
// given local hour.
func (p RiskPolicy) Score(action Action, role string, hour int) int {
	score := 0
	if highRiskActions[action] {
		score += p.HighRiskWeight
	} else if mediumRiskActions[action] {
		score += p.MediumRiskWeight
	}
	if elevatedRoles[role] {
		score += p.ElevatedRole
	}
	if hour < p.DayStartHour || hour > p.DayEndHour {
		score += p.OffHours
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
