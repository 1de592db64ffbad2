package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
	"github.com/kirillkom/ats-match-engine/internal/core/ports"
)

const defaultReviewTimeout = 20 * time.Second

type contentGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Reviewer asks the generative reviewer to validate the deterministic
// breakdown. Every failure mode (unreachable backend, timeout, malformed or
// off-contract JSON) degrades to an unusable result; the engine then keeps
// its deterministic score.
type Reviewer struct {
	generator contentGenerator
	timeout   time.Duration
}

func NewReviewer(generator contentGenerator, timeout time.Duration) *Reviewer {
	if timeout <= 0 {
		timeout = defaultReviewTimeout
	}
	return &Reviewer{generator: generator, timeout: timeout}
}

func (r *Reviewer) Review(ctx context.Context, req ports.ReviewRequest) domain.ReviewResult {
	if r.generator == nil {
		return domain.UnusableReview("reviewer not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.generator.GenerateJSON(callCtx, buildReviewPrompt(req))
	if err != nil {
		slog.Warn("ai_review_unavailable", "error", err)
		return domain.UnusableReview(fmt.Sprintf("reviewer unavailable: %v", err))
	}

	result := parseReviewResponse(raw)
	if !result.Usable {
		slog.Warn("ai_review_malformed", "reason", result.Reason)
	}
	return result
}

// requiredReviewFields is the exact reply contract. "reason" is the one
// optional extra the reviewer may add; any other unknown key voids the
// reply.
var requiredReviewFields = []string{
	"education_score",
	"skills_score",
	"experience_score",
	"final_score",
	"profession_mismatch",
	"profession_reason",
	"review",
	"suggestion",
}

func parseReviewResponse(raw string) domain.ReviewResult {
	cleaned := stripCodeFences(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return domain.UnusableReview(fmt.Sprintf("reviewer returned non-JSON content: %v", err))
	}

	for _, name := range requiredReviewFields {
		if _, ok := fields[name]; !ok {
			return domain.UnusableReview(fmt.Sprintf("reviewer reply missing required field %q", name))
		}
	}
	for name := range fields {
		if name == "reason" {
			continue
		}
		known := false
		for _, required := range requiredReviewFields {
			if name == required {
				known = true
				break
			}
		}
		if !known {
			return domain.UnusableReview(fmt.Sprintf("reviewer reply carries unknown field %q", name))
		}
	}

	var correction domain.AICorrection
	if err := json.Unmarshal([]byte(cleaned), &correction); err != nil {
		return domain.UnusableReview(fmt.Sprintf("reviewer reply has wrong field types: %v", err))
	}

	correction.EducationScore = clampUnit(correction.EducationScore)
	correction.SkillsScore = clampUnit(correction.SkillsScore)
	correction.ExperienceScore = clampUnit(correction.ExperienceScore)
	correction.FinalScore = normalizeFinalScore(correction.FinalScore)
	return domain.UsableReview(correction)
}

// normalizeFinalScore maps final_score onto the 0-100 contract. Models
// occasionally answer on the unit interval despite the prompt; a value in
// (0,1] is read as a fraction of 100.
func normalizeFinalScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v <= 1:
		return v * 100
	case v > 100:
		return 100
	default:
		return v
	}
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(cleaned, "`"))
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
