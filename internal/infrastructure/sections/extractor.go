// Package sections canonicalizes raw resume/job text and splits it into the
// comparable scoring sections: education, skills, experience, and the
// profession summary the gate runs on.
package sections

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

// professionTextLimit caps the profession summary to the leading portion of
// the document, where the headline and summary live.
const professionTextLimit = 1000

var yearsPattern = regexp.MustCompile(`\b(\d+)\s*(?:years?|yrs?)\b`)

var degreeRanks = []struct {
	rank    int
	markers []string
}{
	{4, []string{"phd", "doctorate", "doctoral", "doctor of philosophy", "doctor of medicine"}},
	{3, []string{"master", "master of science", "master of arts", "master of technology", "master of business administration"}},
	{2, []string{"bachelor", "bachelor of science", "bachelor of arts", "bachelor of technology", "bachelor of engineering", "bachelor of commerce"}},
	{1, []string{"diploma", "associate"}},
}

var sectionHeadings = map[domain.Section][]string{
	domain.SectionEducation:  {"education", "academic background", "qualifications"},
	domain.SectionSkills:     {"skills", "technical skills", "technologies", "core competencies"},
	domain.SectionExperience: {"experience", "work experience", "professional experience", "employment", "work history"},
	domain.SectionProfession: {"summary", "objective", "profile", "about", "about me"},
}

type Extractor struct {
	table          table
	maxAliasTokens int
	skills         []string
}

// New builds an extractor from the embedded alias table.
func New() (*Extractor, error) {
	t, err := loadDefaultTable()
	if err != nil {
		return nil, err
	}
	return fromTable(t), nil
}

// NewFromFile builds an extractor from an external alias table, for
// deployments that maintain their own vocabulary.
func NewFromFile(path string) (*Extractor, error) {
	t, err := loadTableFile(path)
	if err != nil {
		return nil, err
	}
	return fromTable(t), nil
}

func fromTable(t table) *Extractor {
	e := &Extractor{table: t, maxAliasTokens: t.maxAliasTokens()}
	// Normalize the vocabulary once; entries that collapse to a single
	// character (c++, c#) would match everything and are dropped.
	seen := make(map[string]struct{}, len(t.Skills))
	for _, s := range t.Skills {
		n := e.Normalize(s)
		if len(n) < 2 {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		e.skills = append(e.skills, n)
	}
	sort.Strings(e.skills)
	return e
}

// Extract splits raw text into the four section texts and derives the
// structured facts the scorer needs. Sections without a recognizable
// heading fall back to the whole document, so sparse resumes still score.
func (e *Extractor) Extract(text string) domain.SectionSet {
	if strings.TrimSpace(text) == "" {
		return domain.SectionSet{SkillList: []string{}}
	}

	whole := e.Normalize(text)
	parts := e.splitByHeadings(text)

	education := parts[domain.SectionEducation]
	if education == "" {
		education = whole
	}
	experience := parts[domain.SectionExperience]
	if experience == "" {
		experience = whole
	}
	profession := parts[domain.SectionProfession]
	if profession == "" {
		profession = whole
	}
	profession = truncate(profession, professionTextLimit)

	skills := e.extractSkills(whole)
	skillsText := strings.Join(skills, listSeparator)
	if skillsText == "" {
		skillsText = parts[domain.SectionSkills]
	}

	return domain.SectionSet{
		Education:   education,
		Skills:      skillsText,
		Experience:  experience,
		Profession:  profession,
		SkillList:   skills,
		DegreeRank:  degreeRank(education),
		Credentials: e.extractCredentials(education),
		Years:       extractYears(experience),
	}
}

// splitByHeadings walks the raw text line by line, opening a section when a
// line is a known heading and collecting until the next one.
func (e *Extractor) splitByHeadings(text string) map[domain.Section]string {
	headingFor := func(line string) (domain.Section, bool) {
		normalized := e.Normalize(line)
		if normalized == "" || len(strings.Fields(normalized)) > 4 {
			return "", false
		}
		for section, headings := range sectionHeadings {
			for _, h := range headings {
				if normalized == h {
					return section, true
				}
			}
		}
		return "", false
	}

	collected := make(map[domain.Section][]string)
	var current domain.Section
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		if section, ok := headingFor(line); ok {
			current = section
			inSection = true
			continue
		}
		if inSection {
			collected[current] = append(collected[current], line)
		}
	}

	out := make(map[domain.Section]string, len(collected))
	for section, lines := range collected {
		out[section] = e.Normalize(strings.Join(lines, "\n"))
	}
	return out
}

func (e *Extractor) extractSkills(normalized string) []string {
	var found []string
	for _, skill := range e.skills {
		if containsPhrase(normalized, skill) {
			found = append(found, skill)
		}
	}
	for _, token := range strings.Fields(normalized) {
		if len(token) < 4 {
			continue
		}
		if strings.HasSuffix(token, "js") || strings.HasSuffix(token, "sql") || strings.HasSuffix(token, "db") {
			found = append(found, token)
		}
	}

	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, s := range found {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (e *Extractor) extractCredentials(educationText string) []string {
	var out []string
	for canonical, variants := range e.table.CredentialGroups {
		for _, v := range variants {
			if containsPhrase(educationText, e.Normalize(v)) {
				out = append(out, canonical)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func degreeRank(educationText string) int {
	for _, level := range degreeRanks {
		for _, marker := range level.markers {
			if containsPhrase(educationText, marker) {
				return level.rank
			}
		}
	}
	return 0
}

func extractYears(experienceText string) int {
	match := yearsPattern.FindStringSubmatch(experienceText)
	if match == nil {
		return 0
	}
	years, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return years
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
