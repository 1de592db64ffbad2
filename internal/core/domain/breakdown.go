package domain

// Section is one comparable facet of a profile or job description. The first
// three carry weight in the composite score; the profession section only
// feeds the gate.
type Section string

const (
	SectionEducation  Section = "education"
	SectionSkills     Section = "skills"
	SectionExperience Section = "experience"
	SectionProfession Section = "profession"
)

// SectionSet is the extractor's output for one source text. Texts are
// normalized and immutable once built for a scoring attempt.
type SectionSet struct {
	Education  string   `json:"education"`
	Skills     string   `json:"skills"`
	Experience string   `json:"experience"`
	Profession string   `json:"profession"`
	SkillList  []string `json:"skill_list"`
	// DegreeRank orders recognized degree levels: 0 unknown, 1 diploma,
	// 2 bachelor, 3 master, 4 doctoral.
	DegreeRank  int      `json:"degree_rank"`
	Credentials []string `json:"credentials,omitempty"`
	Years       int      `json:"years"`
}

// DomainSimilarity holds the per-section similarity values in [0,1],
// produced once per attempt and never mutated afterwards.
type DomainSimilarity struct {
	Education  float64 `json:"education"`
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
}

type GateOutcome string

const (
	GateUnrestricted  GateOutcome = "unrestricted"
	GatePartialCredit GateOutcome = "partial_credit"
	GateDisqualified  GateOutcome = "disqualified"
)

// GateDecision records how the profession gate constrained the attempt.
type GateDecision struct {
	Outcome              GateOutcome `json:"outcome"`
	ProfessionSimilarity float64     `json:"profession_similarity"`
	Reason               string      `json:"reason"`
}

// SkillMatchReport compares the normalized skill sets of resume and job.
// Semantic entries are job skills absent textually but close by embedding.
type SkillMatchReport struct {
	Matched  []string `json:"matched"`
	Semantic []string `json:"semantic"`
	Missing  []string `json:"missing"`
	Extra    []string `json:"extra"`
}

// AICorrection is the reviewer's structured reply. Per-section scores are on
// [0,1]; FinalScore is contracted on the 0-100 scale.
type AICorrection struct {
	EducationScore     float64 `json:"education_score"`
	SkillsScore        float64 `json:"skills_score"`
	ExperienceScore    float64 `json:"experience_score"`
	FinalScore         float64 `json:"final_score"`
	ProfessionMismatch bool    `json:"profession_mismatch"`
	ProfessionReason   string  `json:"profession_reason"`
	Review             string  `json:"review"`
	Suggestion         string  `json:"suggestion"`
}

// ReviewResult is the tagged outcome of the reviewer call: either a usable
// correction or a reason why none is available. Callers must not look at
// Correction when Usable is false.
type ReviewResult struct {
	Usable     bool         `json:"usable"`
	Reason     string       `json:"reason,omitempty"`
	Correction AICorrection `json:"correction,omitempty"`
}

func UsableReview(c AICorrection) ReviewResult {
	return ReviewResult{Usable: true, Correction: c}
}

func UnusableReview(reason string) ReviewResult {
	return ReviewResult{Usable: false, Reason: reason}
}

// ScoreBreakdown is the full audited result of one attempt. Both the
// deterministic numbers and the reviewer's numbers are retained; FinalScore
// alone governs the headline percentage.
type ScoreBreakdown struct {
	Similarities DomainSimilarity `json:"similarities"`
	Gate         GateDecision     `json:"gate"`
	RawScore     float64          `json:"raw_score"`
	GatedScore   float64          `json:"gated_score"`

	Review           ReviewResult `json:"review"`
	ReviewSkipped    bool         `json:"review_skipped"`
	ReviewSkipReason string       `json:"review_skip_reason,omitempty"`

	FinalScore         float64          `json:"final_score"`
	ProfessionMismatch bool             `json:"profession_mismatch"`
	Skills             SkillMatchReport `json:"skills"`
	Suggestion         string           `json:"suggestion"`
	ConfigVersion      int              `json:"config_version"`
}
