package domain

import (
	"errors"
	"fmt"
	"math"
)

// ScoringConfig is the admin-owned scoring knob set. A snapshot is read once
// at the start of every attempt; in-flight attempts never observe a partial
// update. Version increments on every admin change.
type ScoringConfig struct {
	WeightEducation  float64 `json:"weight_education"`
	WeightSkills     float64 `json:"weight_skills"`
	WeightExperience float64 `json:"weight_experience"`

	ZeroThreshold    float64 `json:"zero_threshold"`
	CapThreshold     float64 `json:"cap_threshold"`
	PartialCreditCap float64 `json:"partial_credit_cap"`

	// SemanticSkillThreshold is the minimum cosine similarity for a job
	// skill to count as semantically covered by a resume skill.
	SemanticSkillThreshold float64 `json:"semantic_skill_threshold"`

	// MandatoryCredentials lists credential tokens (post alias expansion)
	// that act as hard requirements when they appear in the job's
	// education text.
	MandatoryCredentials []string `json:"mandatory_credentials,omitempty"`
}

// ConfigSnapshot pairs a config with the version it was read at.
type ConfigSnapshot struct {
	Config  ScoringConfig `json:"config"`
	Version int           `json:"version"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		WeightEducation:        0.35,
		WeightSkills:           0.45,
		WeightExperience:       0.20,
		ZeroThreshold:          0.2,
		CapThreshold:           0.4,
		PartialCreditCap:       30,
		SemanticSkillThreshold: 0.75,
	}
}

// Validate rejects configs at the admin boundary. A rejected config is never
// applied, so attempt code can assume any snapshot it reads is valid.
func (c ScoringConfig) Validate() error {
	total := c.WeightEducation + c.WeightSkills + c.WeightExperience
	if c.WeightEducation < 0 || c.WeightSkills < 0 || c.WeightExperience < 0 {
		return WrapError(ErrConfigInvalid, "validate weights", errors.New("weights must be non-negative"))
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return WrapError(ErrConfigInvalid, "validate weights", fmt.Errorf("weights must sum to a positive total, got %v", total))
	}
	if c.ZeroThreshold < 0 || c.CapThreshold > 1 || c.ZeroThreshold >= c.CapThreshold {
		return WrapError(ErrConfigInvalid, "validate thresholds",
			fmt.Errorf("need 0 <= zero_threshold < cap_threshold <= 1, got %v/%v", c.ZeroThreshold, c.CapThreshold))
	}
	if c.PartialCreditCap < 0 || c.PartialCreditCap > 100 {
		return WrapError(ErrConfigInvalid, "validate partial credit cap",
			fmt.Errorf("partial_credit_cap must be in [0,100], got %v", c.PartialCreditCap))
	}
	if c.SemanticSkillThreshold < 0 || c.SemanticSkillThreshold > 1 {
		return WrapError(ErrConfigInvalid, "validate semantic skill threshold",
			fmt.Errorf("semantic_skill_threshold must be in [0,1], got %v", c.SemanticSkillThreshold))
	}
	return nil
}

// NormalizedWeights returns education/skills/experience weights scaled to
// sum to exactly 1.
func (c ScoringConfig) NormalizedWeights() (edu, skills, exp float64) {
	total := c.WeightEducation + c.WeightSkills + c.WeightExperience
	if total <= 0 {
		def := DefaultScoringConfig()
		total = def.WeightEducation + def.WeightSkills + def.WeightExperience
		return def.WeightEducation / total, def.WeightSkills / total, def.WeightExperience / total
	}
	return c.WeightEducation / total, c.WeightSkills / total, c.WeightExperience / total
}
