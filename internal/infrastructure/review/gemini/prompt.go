package gemini

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/kirillkom/ats-match-engine/internal/core/ports"
)

// The template uses double-brace placeholders; the literal single braces of
// the embedded example JSON never collide with them, so the example needs
// no further escaping.
//
//go:embed prompt.md
var promptTemplate string

func buildReviewPrompt(req ports.ReviewRequest) string {
	replacements := map[string]string{
		"{{RESUME_EDUCATION}}":  orNone(req.Resume.Education),
		"{{RESUME_SKILLS}}":     orNone(req.Resume.Skills),
		"{{RESUME_EXPERIENCE}}": orNone(req.Resume.Experience),
		"{{JOB_EDUCATION}}":     orNone(req.Job.Education),
		"{{JOB_SKILLS}}":        orNone(req.Job.Skills),
		"{{JOB_EXPERIENCE}}":    orNone(req.Job.Experience),
		"{{EDUCATION_SIM}}":     formatScore(req.Similarities.Education),
		"{{SKILLS_SIM}}":        formatScore(req.Similarities.Skills),
		"{{EXPERIENCE_SIM}}":    formatScore(req.Similarities.Experience),
		"{{PROFESSION_SIM}}":    formatScore(req.Gate.ProfessionSimilarity),
		"{{ZERO_THRESHOLD}}":    formatScore(req.Config.ZeroThreshold),
		"{{CAP_THRESHOLD}}":     formatScore(req.Config.CapThreshold),
		"{{GATE_OUTCOME}}":      string(req.Gate.Outcome),
		"{{GATE_REASON}}":       req.Gate.Reason,
		"{{RAW_SCORE}}":         formatScore(req.RawScore),
		"{{GATED_SCORE}}":       formatScore(req.GatedScore),
		"{{SKILLS_MATCHED}}":    orNone(strings.Join(req.Skills.Matched, ", ")),
		"{{SKILLS_MISSING}}":    orNone(strings.Join(req.Skills.Missing, ", ")),
	}

	prompt := promptTemplate
	for placeholder, value := range replacements {
		prompt = strings.ReplaceAll(prompt, placeholder, value)
	}
	return prompt
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
