package model

import (
	"fmt"
	"strings"
)

type RiskProfile string

const (
	RiskConservative RiskProfile = "Conservative"
	RiskBalanced     RiskProfile = "Balanced"
	RiskAggressive   RiskProfile = "Aggressive"
)

func RiskProfiles() []RiskProfile {
	return []RiskProfile{RiskConservative, RiskBalanced, RiskAggressive}
}

func (r RiskProfile) Valid() bool {
	switch r {
	case RiskConservative, RiskBalanced, RiskAggressive:
		return true
	}
	return false
}

// ParseRiskProfile accepts any letter case ("aggressive", "AGGRESSIVE").
func ParseRiskProfile(s string) (RiskProfile, error) {
	for _, r := range RiskProfiles() {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown risk profile %q", s)
}

// Preferences are the user-tunable inputs of an analysis run. Values are held
// as entered; validation happens when a request is built from them.
type Preferences struct {
	LotSize      float64     `json:"lotSize"`
	ProfitTarget int         `json:"profitTarget"`
	RiskProfile  RiskProfile `json:"riskProfile"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		LotSize:      0.05,
		ProfitTarget: 100,
		RiskProfile:  RiskBalanced,
	}
}

// PreferencesPatch is a partial update; nil fields are left untouched.
type PreferencesPatch struct {
	LotSize      *float64     `json:"lotSize,omitempty"`
	ProfitTarget *int         `json:"profitTarget,omitempty"`
	RiskProfile  *RiskProfile `json:"riskProfile,omitempty" validate:"omitempty,oneof=Conservative Balanced Aggressive"`
}

func (p Preferences) Apply(patch PreferencesPatch) Preferences {
	if patch.LotSize != nil {
		p.LotSize = *patch.LotSize
	}
	if patch.ProfitTarget != nil {
		p.ProfitTarget = *patch.ProfitTarget
	}
	if patch.RiskProfile != nil {
		p.RiskProfile = *patch.RiskProfile
	}
	return p
}
