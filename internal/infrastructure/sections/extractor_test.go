package sections

import (
	"strings"
	"testing"
)

const sampleResume = `John Doe

Summary
Experienced backend engineer focused on distributed systems.

Education
B.Sc. in Computer Science, Stanford University

Skills
Go, Docker, PostgreSQL

Experience
6 years building payment services in Go.
`

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNormalizeIsIdempotent(t *testing.T) {
	e := newTestExtractor(t)

	inputs := []string{
		"B.Sc. in Computer Science, Ph.D. pending!",
		"Senior Golang dev — K8s & Postgres",
		"  MIXED   Case\tand\nwhitespace  ",
		"plain text without abbreviations",
	}
	for _, input := range inputs {
		once := e.Normalize(input)
		twice := e.Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q vs %q", input, once, twice)
		}
	}
}

func TestNormalizeExpandsAliases(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Normalize("Senior Golang dev, K8s & Postgres")
	want := "senior go dev kubernetes postgresql"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}

	got = e.Normalize("B.Sc., then an M.B.A.")
	want = "bachelor of science then an master of business administration"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeExpandsAdjacentAliases(t *testing.T) {
	e := newTestExtractor(t)

	cases := map[string]string{
		"BA, BA":         "bachelor of arts bachelor of arts",
		"ML ML pipeline": "machine learning machine learning pipeline",
		"K8s K8s K8s":    "kubernetes kubernetes kubernetes",
	}
	for input, want := range cases {
		got := e.Normalize(input)
		if got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
		if again := e.Normalize(got); again != got {
			t.Fatalf("Normalize(%q) not stable: %q vs %q", input, got, again)
		}
	}
}

func TestNormalizeListJoinsAndDropsEmpty(t *testing.T) {
	e := newTestExtractor(t)

	got := e.NormalizeList([]string{"Golang", "...", "K8s", ""})
	if got != "go kubernetes" {
		t.Fatalf("NormalizeList() = %q", got)
	}
}

func TestNormalizeStripsPunctuationAndCase(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Normalize("Hello, WORLD!!! (2024)")
	if got != "hello world 2024" {
		t.Fatalf("Normalize() = %q", got)
	}
	if e.Normalize("") != "" {
		t.Fatalf("expected empty output for empty input")
	}
}

func TestExtractSplitsSectionsByHeadings(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract(sampleResume)

	if !strings.Contains(set.Profession, "backend engineer") {
		t.Fatalf("expected summary in profession text, got %q", set.Profession)
	}
	if !strings.Contains(set.Education, "bachelor of science") {
		t.Fatalf("expected expanded degree in education text, got %q", set.Education)
	}
	if !strings.Contains(set.Experience, "payment services") {
		t.Fatalf("expected experience section extracted, got %q", set.Experience)
	}

	want := []string{"docker", "go", "postgresql"}
	if len(set.SkillList) != len(want) {
		t.Fatalf("expected skills %v, got %v", want, set.SkillList)
	}
	for i, s := range want {
		if set.SkillList[i] != s {
			t.Fatalf("expected skills %v, got %v", want, set.SkillList)
		}
	}

	if set.DegreeRank != 2 {
		t.Fatalf("expected bachelor rank 2, got %d", set.DegreeRank)
	}
	if set.Years != 6 {
		t.Fatalf("expected 6 years extracted, got %d", set.Years)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	e := newTestExtractor(t)

	first := e.Extract(sampleResume)
	second := e.Extract(sampleResume)

	if first.Education != second.Education ||
		first.Skills != second.Skills ||
		first.Experience != second.Experience ||
		first.Profession != second.Profession {
		t.Fatalf("expected identical section texts on re-extraction")
	}
	if len(first.SkillList) != len(second.SkillList) {
		t.Fatalf("expected identical skill lists on re-extraction")
	}
	for i := range first.SkillList {
		if first.SkillList[i] != second.SkillList[i] {
			t.Fatalf("expected identical skill order on re-extraction")
		}
	}
}

func TestExtractFallsBackToWholeTextWithoutHeadings(t *testing.T) {
	e := newTestExtractor(t)

	text := "Bachelor of Science graduate with 3 years of Python and SQL work."
	set := e.Extract(text)

	whole := e.Normalize(text)
	if set.Education != whole {
		t.Fatalf("expected education fallback to whole text, got %q", set.Education)
	}
	if set.Experience != whole {
		t.Fatalf("expected experience fallback to whole text, got %q", set.Experience)
	}
	if set.Profession != whole {
		t.Fatalf("expected profession fallback to whole text, got %q", set.Profession)
	}
	if set.Years != 3 {
		t.Fatalf("expected 3 years from fallback text, got %d", set.Years)
	}
	if set.DegreeRank != 2 {
		t.Fatalf("expected bachelor rank from fallback text, got %d", set.DegreeRank)
	}
}

func TestExtractEmptyText(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract("   \n\t  ")
	if set.Education != "" || set.Skills != "" || set.Experience != "" || set.Profession != "" {
		t.Fatalf("expected empty sections for blank input, got %+v", set)
	}
	if set.SkillList == nil || len(set.SkillList) != 0 {
		t.Fatalf("expected empty non-nil skill list, got %v", set.SkillList)
	}
}

func TestExtractCredentials(t *testing.T) {
	e := newTestExtractor(t)

	set := e.Extract("Practicing physician, M.D. from Johns Hopkins, 10 years in cardiology.")
	found := false
	for _, c := range set.Credentials {
		if c == "md" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected md credential detected, got %v", set.Credentials)
	}
	if set.DegreeRank != 4 {
		t.Fatalf("expected doctoral rank for md, got %d", set.DegreeRank)
	}
}

func TestProfessionTextTruncatedAtWordBoundary(t *testing.T) {
	e := newTestExtractor(t)

	long := strings.Repeat("distributed systems engineering ", 80)
	set := e.Extract(long)
	if len(set.Profession) > professionTextLimit {
		t.Fatalf("expected profession text capped at %d chars, got %d", professionTextLimit, len(set.Profession))
	}
	if strings.HasSuffix(set.Profession, " ") {
		t.Fatalf("expected trimmed truncation, got trailing space")
	}
	for _, word := range strings.Fields(set.Profession) {
		switch word {
		case "distributed", "systems", "engineering":
		default:
			t.Fatalf("truncation split a word: %q", word)
		}
	}
}

func TestNewFromFileMissingPath(t *testing.T) {
	if _, err := NewFromFile("/nonexistent/aliases.yaml"); err == nil {
		t.Fatalf("expected error for missing alias table file")
	}
}
