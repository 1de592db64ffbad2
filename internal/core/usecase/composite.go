package usecase

import (
	"fmt"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

// degree ranks one level apart are treated as adjacent for the education
// bonus; anything further apart costs the candidate.
const (
	educationLevelBonus   = 0.1
	educationLevelPenalty = 0.2

	skillExactWeight    = 0.6
	skillSemanticWeight = 0.4
)

// DecideGate classifies the profession similarity against the config
// thresholds. It never prevents the section similarities from being
// computed; it only constrains the final percentage.
func DecideGate(professionSim float64, cfg domain.ScoringConfig) domain.GateDecision {
	switch {
	case professionSim < cfg.ZeroThreshold:
		return domain.GateDecision{
			Outcome:              domain.GateDisqualified,
			ProfessionSimilarity: professionSim,
			Reason: fmt.Sprintf("profession similarity %.3f below zero threshold %.2f: resume does not match the job's field",
				professionSim, cfg.ZeroThreshold),
		}
	case professionSim < cfg.CapThreshold:
		return domain.GateDecision{
			Outcome:              domain.GatePartialCredit,
			ProfessionSimilarity: professionSim,
			Reason: fmt.Sprintf("profession similarity %.3f below cap threshold %.2f: transferable skills case, score capped at %.0f",
				professionSim, cfg.CapThreshold, cfg.PartialCreditCap),
		}
	default:
		return domain.GateDecision{
			Outcome:              domain.GateUnrestricted,
			ProfessionSimilarity: professionSim,
			Reason:               fmt.Sprintf("profession similarity %.3f clears cap threshold %.2f", professionSim, cfg.CapThreshold),
		}
	}
}

// educationSimilarity adjusts the semantic base with the degree level
// relation: meeting or exceeding the required level earns a small bonus,
// one level short is neutral, further short is penalized.
func educationSimilarity(base float64, resumeRank, jobRank int) float64 {
	switch {
	case resumeRank >= jobRank:
		base += educationLevelBonus
	case resumeRank == jobRank-1:
		// adjacent level, no adjustment
	default:
		base -= educationLevelPenalty
	}
	return clamp(base, 0, 1)
}

// strictDegreeFails reports whether the job's education text demands a
// mandatory credential the resume does not carry an equivalent of. A hard
// requirement failure suppresses the education contribution entirely.
func strictDegreeFails(resume, job domain.SectionSet, cfg domain.ScoringConfig) bool {
	if len(cfg.MandatoryCredentials) == 0 || len(job.Credentials) == 0 {
		return false
	}
	mandatory := make(map[string]struct{}, len(cfg.MandatoryCredentials))
	for _, c := range cfg.MandatoryCredentials {
		mandatory[c] = struct{}{}
	}
	held := make(map[string]struct{}, len(resume.Credentials))
	for _, c := range resume.Credentials {
		held[c] = struct{}{}
	}
	for _, required := range job.Credentials {
		if _, isMandatory := mandatory[required]; !isMandatory {
			continue
		}
		if _, ok := held[required]; !ok {
			return true
		}
	}
	return false
}

// experienceShortfall scales the experience similarity proportionally when
// the candidate's years fall short of the job's requirement. The penalty is
// proportional, never a hard zero.
func experienceShortfall(expSim float64, resumeYears, jobYears int) float64 {
	if jobYears <= 0 || resumeYears >= jobYears {
		return expSim
	}
	ratio := float64(resumeYears) / float64(jobYears)
	if ratio > 1 {
		ratio = 1
	}
	return ratio * expSim
}

// skillsSimilarity blends the exact-match ratio with the semantic
// similarity of the joined skill texts. A job with no extractable skills
// cannot penalize the candidate; a resume with none cannot score.
func skillsSimilarity(exactRatio, semantic float64, jobSkillCount, resumeSkillCount int) float64 {
	if jobSkillCount == 0 {
		return 1
	}
	if resumeSkillCount == 0 {
		return 0
	}
	score := skillExactWeight*exactRatio + skillSemanticWeight*semantic
	return clamp(score, 0, 1)
}

// ComposeScore computes the deterministic raw and gated percentages from
// the final (post-override) section similarities. Weights are renormalized
// so they always sum to 1.
func ComposeScore(sim domain.DomainSimilarity, gate domain.GateDecision, cfg domain.ScoringConfig) (raw, gated float64) {
	wEdu, wSkills, wExp := cfg.NormalizedWeights()
	raw = 100 * (wEdu*sim.Education + wSkills*sim.Skills + wExp*sim.Experience)
	raw = clamp(raw, 0, 100)

	switch gate.Outcome {
	case domain.GateDisqualified:
		gated = 0
	case domain.GatePartialCredit:
		gated = raw
		if gated > cfg.PartialCreditCap {
			gated = cfg.PartialCreditCap
		}
	default:
		gated = raw
	}
	return raw, gated
}
