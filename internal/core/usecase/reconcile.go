package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

// Reconcile merges the deterministic result with the reviewer's reply and
// fills the final fields of the breakdown. The deterministic gate decision
// and both number sets stay in the breakdown for audit; only FinalScore and
// ProfessionMismatch reflect the merged verdict.
func Reconcile(breakdown *domain.ScoreBreakdown, review domain.ReviewResult) {
	breakdown.Review = review

	if !review.Usable {
		breakdown.ReviewSkipped = true
		breakdown.ReviewSkipReason = review.Reason
		breakdown.FinalScore = clamp(breakdown.GatedScore, 0, 100)
		breakdown.ProfessionMismatch = breakdown.Gate.Outcome == domain.GateDisqualified
		if breakdown.Suggestion == "" {
			breakdown.Suggestion = defaultSuggestion(breakdown)
		}
		return
	}

	correction := review.Correction
	breakdown.FinalScore = clamp(correction.FinalScore, 0, 100)
	breakdown.ProfessionMismatch = correction.ProfessionMismatch

	if correction.ProfessionMismatch {
		// Reviewer confirms (or introduces) a mismatch. Keep its explicit
		// low score if it gave one, otherwise zero out.
		if correction.FinalScore <= 0 {
			breakdown.FinalScore = 0
		}
	}

	if strings.TrimSpace(correction.Suggestion) != "" {
		breakdown.Suggestion = strings.TrimSpace(correction.Suggestion)
	} else if breakdown.Suggestion == "" {
		breakdown.Suggestion = defaultSuggestion(breakdown)
	}
}

// defaultSuggestion builds improvement guidance from the deterministic
// breakdown when no reviewer tip is available.
func defaultSuggestion(breakdown *domain.ScoreBreakdown) string {
	if breakdown.Gate.Outcome == domain.GateDisqualified {
		return "This position requires experience in a different field. Consider applying to jobs that match your professional background."
	}

	var suggestions []string
	if missing := breakdown.Skills.Missing; len(missing) > 0 {
		top := missing
		if len(top) > 3 {
			top = top[:3]
		}
		suggestions = append(suggestions, fmt.Sprintf("Consider gaining experience in: %s", strings.Join(top, ", ")))
	}
	if breakdown.Similarities.Education < 0.5 {
		suggestions = append(suggestions, "Consider pursuing additional certifications or degrees relevant to this role")
	}
	if breakdown.Similarities.Experience < 0.5 {
		suggestions = append(suggestions, "Highlight more relevant work experience or projects in your resume")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Your profile is a good match. Consider tailoring your resume to emphasize key achievements")
	}
	return strings.Join(suggestions, ". ") + "."
}
