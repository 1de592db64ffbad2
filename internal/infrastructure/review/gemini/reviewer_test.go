package gemini

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
	"github.com/kirillkom/ats-match-engine/internal/core/ports"
)

type generatorFake struct {
	reply string
	err   error
	calls int
}

func (g *generatorFake) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

const validReply = `{
	"education_score": 0.8,
	"skills_score": 0.9,
	"experience_score": 0.7,
	"final_score": 72,
	"profession_mismatch": false,
	"profession_reason": "roles align",
	"review": "Solid match overall.",
	"suggestion": "Add a certifications section.",
	"reason": "scores confirmed"
}`

func TestReviewParsesValidReply(t *testing.T) {
	gen := &generatorFake{reply: validReply}
	r := NewReviewer(gen, time.Second)

	result := r.Review(context.Background(), ports.ReviewRequest{})
	if !result.Usable {
		t.Fatalf("expected usable review, got reason %q", result.Reason)
	}
	if result.Correction.FinalScore != 72 {
		t.Fatalf("expected final score 72, got %v", result.Correction.FinalScore)
	}
	if result.Correction.SkillsScore != 0.9 {
		t.Fatalf("expected skills score 0.9, got %v", result.Correction.SkillsScore)
	}
	if result.Correction.ProfessionMismatch {
		t.Fatalf("expected no profession mismatch")
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
}

func TestReviewNilGenerator(t *testing.T) {
	r := NewReviewer(nil, time.Second)

	result := r.Review(context.Background(), ports.ReviewRequest{})
	if result.Usable {
		t.Fatalf("expected unusable review without a generator")
	}
	if !strings.Contains(result.Reason, "not configured") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestReviewGeneratorFailure(t *testing.T) {
	gen := &generatorFake{err: errors.New("backend down")}
	r := NewReviewer(gen, time.Second)

	result := r.Review(context.Background(), ports.ReviewRequest{})
	if result.Usable {
		t.Fatalf("expected unusable review on generator failure")
	}
	if !strings.Contains(result.Reason, "reviewer unavailable") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestParseReviewResponseStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validReply + "\n```"
	result := parseReviewResponse(fenced)
	if !result.Usable {
		t.Fatalf("expected fenced reply to parse, got reason %q", result.Reason)
	}
	if result.Correction.Review != "Solid match overall." {
		t.Fatalf("unexpected review text %q", result.Correction.Review)
	}

	bare := "```\n" + validReply + "\n```"
	if result := parseReviewResponse(bare); !result.Usable {
		t.Fatalf("expected bare-fenced reply to parse, got reason %q", result.Reason)
	}
}

func TestParseReviewResponseMissingField(t *testing.T) {
	reply := `{
		"education_score": 0.8,
		"skills_score": 0.9,
		"experience_score": 0.7,
		"final_score": 72,
		"profession_mismatch": false,
		"profession_reason": "ok",
		"review": "ok"
	}`
	result := parseReviewResponse(reply)
	if result.Usable {
		t.Fatalf("expected unusable review for missing field")
	}
	if !strings.Contains(result.Reason, `"suggestion"`) {
		t.Fatalf("expected reason to name the missing field, got %q", result.Reason)
	}
}

func TestParseReviewResponseUnknownField(t *testing.T) {
	reply := strings.Replace(validReply, `"reason": "scores confirmed"`, `"confidence": 0.9`, 1)
	result := parseReviewResponse(reply)
	if result.Usable {
		t.Fatalf("expected unusable review for unknown field")
	}
	if !strings.Contains(result.Reason, `"confidence"`) {
		t.Fatalf("expected reason to name the unknown field, got %q", result.Reason)
	}
}

func TestParseReviewResponseWrongTypes(t *testing.T) {
	reply := strings.Replace(validReply, `"final_score": 72`, `"final_score": "seventy-two"`, 1)
	result := parseReviewResponse(reply)
	if result.Usable {
		t.Fatalf("expected unusable review for wrong field type")
	}
	if !strings.Contains(result.Reason, "wrong field types") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestParseReviewResponseNonJSON(t *testing.T) {
	result := parseReviewResponse("I cannot help with that.")
	if result.Usable {
		t.Fatalf("expected unusable review for non-JSON reply")
	}
	if !strings.Contains(result.Reason, "non-JSON") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestParseReviewResponseClampsSectionScores(t *testing.T) {
	reply := strings.NewReplacer(
		`"education_score": 0.8`, `"education_score": 1.4`,
		`"skills_score": 0.9`, `"skills_score": -0.2`,
	).Replace(validReply)
	result := parseReviewResponse(reply)
	if !result.Usable {
		t.Fatalf("expected usable review, got reason %q", result.Reason)
	}
	if result.Correction.EducationScore != 1 {
		t.Fatalf("expected education score clamped to 1, got %v", result.Correction.EducationScore)
	}
	if result.Correction.SkillsScore != 0 {
		t.Fatalf("expected skills score clamped to 0, got %v", result.Correction.SkillsScore)
	}
}

func TestNormalizeFinalScore(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.72, 72},
		{1, 100},
		{0, 0},
		{-3, 0},
		{72, 72},
		{100, 100},
		{250, 100},
	}
	for _, c := range cases {
		if got := normalizeFinalScore(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("normalizeFinalScore(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseReviewResponseFractionalFinalScore(t *testing.T) {
	reply := strings.Replace(validReply, `"final_score": 72`, `"final_score": 0.72`, 1)
	result := parseReviewResponse(reply)
	if !result.Usable {
		t.Fatalf("expected usable review, got reason %q", result.Reason)
	}
	if math.Abs(result.Correction.FinalScore-72) > 1e-9 {
		t.Fatalf("expected fractional final score read as 72, got %v", result.Correction.FinalScore)
	}
}

func TestBuildReviewPrompt(t *testing.T) {
	req := ports.ReviewRequest{
		Resume: domain.SectionSet{
			Education:  "bachelor of science",
			Skills:     "go, docker",
			Experience: "6 years backend",
		},
		Job: domain.SectionSet{
			Education:  "bachelor of science",
			Skills:     "go, kubernetes",
			Experience: "5 years backend",
		},
		Similarities: domain.DomainSimilarity{Education: 0.8, Skills: 0.9, Experience: 0.6},
		Gate: domain.GateDecision{
			Outcome:              domain.GateUnrestricted,
			Reason:               "profession similarity above cap threshold",
			ProfessionSimilarity: 0.7,
		},
		RawScore:   80.5,
		GatedScore: 80.5,
		Skills:     domain.SkillMatchReport{Matched: []string{"go"}, Missing: []string{"kubernetes"}},
		Config:     domain.DefaultScoringConfig(),
	}

	prompt := buildReviewPrompt(req)

	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt has unreplaced placeholders:\n%s", prompt)
	}
	for _, want := range []string{
		"bachelor of science",
		"go, docker",
		"0.900",
		"80.500",
		string(domain.GateUnrestricted),
		"Matched: go",
		"Missing: kubernetes",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildReviewPromptEmptySections(t *testing.T) {
	prompt := buildReviewPrompt(ports.ReviewRequest{})
	if !strings.Contains(prompt, "(none)") {
		t.Fatalf("expected empty sections rendered as (none)")
	}
}
