package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
	"github.com/kirillkom/ats-match-engine/internal/core/ports"
)

// neutralProfessionSimilarity is assumed when either source lacks a
// profession summary: no evidence either way, so the gate neither clears
// nor disqualifies outright.
const neutralProfessionSimilarity = 0.5

type ScoreMatchUseCase struct {
	repo      ports.AttemptRepository
	configs   ports.ConfigStore
	extractor ports.SectionExtractor
	embedder  ports.Embedder
	reviewer  ports.ScoreReviewer
}

func NewScoreMatchUseCase(
	repo ports.AttemptRepository,
	configs ports.ConfigStore,
	extractor ports.SectionExtractor,
	embedder ports.Embedder,
	reviewer ports.ScoreReviewer,
) *ScoreMatchUseCase {
	return &ScoreMatchUseCase{
		repo:      repo,
		configs:   configs,
		extractor: extractor,
		embedder:  embedder,
		reviewer:  reviewer,
	}
}

func (uc *ScoreMatchUseCase) ScoreByID(ctx context.Context, attemptID string) (*domain.ScoreBreakdown, error) {
	if err := uc.markStatus(ctx, attemptID, domain.AttemptProcessing, ""); err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}

	attempt, err := uc.repo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("fetch attempt by id: %w", err)
	}

	breakdown, err := uc.Score(ctx, attempt.Resume, attempt.Job)
	if err != nil {
		if failErr := uc.markFailed(ctx, attemptID, err); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.persistBreakdown(ctx, attemptID, *breakdown); err != nil {
		if failErr := uc.markFailed(ctx, attemptID, err); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.markStatus(ctx, attemptID, domain.AttemptScored, ""); err != nil {
		if failErr := uc.markFailed(ctx, attemptID, err); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, fmt.Errorf("set status=scored: %w", err)
	}
	return breakdown, nil
}

func (uc *ScoreMatchUseCase) persistBreakdown(ctx context.Context, attemptID string, breakdown domain.ScoreBreakdown) error {
	if err := uc.repo.SaveBreakdown(ctx, attemptID, breakdown); err != nil {
		return fmt.Errorf("save breakdown: %w", err)
	}
	return nil
}

func (uc *ScoreMatchUseCase) markStatus(ctx context.Context, attemptID string, status domain.AttemptStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, attemptID, status, errMessage)
}

func (uc *ScoreMatchUseCase) markFailed(ctx context.Context, attemptID string, scoreErr error) error {
	if scoreErr == nil {
		return nil
	}
	return uc.markStatus(ctx, attemptID, domain.AttemptFailed, scoreErr.Error())
}

// Score runs the full deterministic pipeline plus AI review for one pair of
// raw texts. The config snapshot is read once at the start; an admin change
// mid-attempt cannot mix weight versions. Embedding failures abort the
// attempt; reviewer failures only degrade it.
func (uc *ScoreMatchUseCase) Score(ctx context.Context, resumeText, jobText string) (*domain.ScoreBreakdown, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate attempt", errors.New("resume text is empty"))
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate attempt", errors.New("job description text is empty"))
	}

	snapshot, err := uc.configs.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read scoring config snapshot: %w", err)
	}
	cfg := snapshot.Config

	resume := uc.extractor.Extract(resumeText)
	job := uc.extractor.Extract(jobText)

	vectors, err := uc.embedSections(ctx, resume, job)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "embed section texts", err)
	}

	professionSim := neutralProfessionSimilarity
	if resume.Profession != "" && job.Profession != "" {
		professionSim = clip01(vectors.pairSimilarity(domain.SectionProfession))
	}
	gate := DecideGate(professionSim, cfg)

	eduSim := educationSimilarity(clip01(vectors.pairSimilarity(domain.SectionEducation)), resume.DegreeRank, job.DegreeRank)
	if strictDegreeFails(resume, job, cfg) {
		eduSim = 0
	}

	skillReport := buildSkillReport(resume.SkillList, job.SkillList)
	if err := uc.resolveSemanticSkills(ctx, &skillReport, resume.SkillList, cfg.SemanticSkillThreshold); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "embed skill tokens", err)
	}
	exactRatio := 0.0
	if len(job.SkillList) > 0 {
		exactRatio = float64(len(skillReport.Matched)) / float64(len(job.SkillList))
	}
	skillsSim := skillsSimilarity(exactRatio, clip01(vectors.pairSimilarity(domain.SectionSkills)), len(job.SkillList), len(resume.SkillList))

	expSim := experienceShortfall(clip01(vectors.pairSimilarity(domain.SectionExperience)), resume.Years, job.Years)

	sims := domain.DomainSimilarity{
		Education:  eduSim,
		Skills:     skillsSim,
		Experience: expSim,
	}
	raw, gated := ComposeScore(sims, gate, cfg)

	breakdown := &domain.ScoreBreakdown{
		Similarities:  sims,
		Gate:          gate,
		RawScore:      raw,
		GatedScore:    gated,
		Skills:        skillReport,
		ConfigVersion: snapshot.Version,
	}

	review := uc.reviewer.Review(ctx, ports.ReviewRequest{
		Resume:       resume,
		Job:          job,
		Similarities: sims,
		Gate:         gate,
		RawScore:     raw,
		GatedScore:   gated,
		Skills:       skillReport,
		Config:       cfg,
	})
	Reconcile(breakdown, review)

	return breakdown, nil
}

// sectionVectors holds one embedding per non-empty section text, keyed by
// source. A missing vector means the section text was empty.
type sectionVectors struct {
	resume map[domain.Section][]float32
	job    map[domain.Section][]float32
}

func (v sectionVectors) pairSimilarity(section domain.Section) float64 {
	a, okA := v.resume[section]
	b, okB := v.job[section]
	if !okA || !okB {
		return 0
	}
	return cosineSimilarity(a, b)
}

// embedSections batches all eight section texts into a single embedding
// call, skipping empty texts: an empty section is "no evidence", not an
// error.
func (uc *ScoreMatchUseCase) embedSections(ctx context.Context, resume, job domain.SectionSet) (sectionVectors, error) {
	type slot struct {
		isResume bool
		section  domain.Section
	}

	var texts []string
	var slots []slot
	add := func(isResume bool, section domain.Section, text string) {
		if text == "" {
			return
		}
		texts = append(texts, text)
		slots = append(slots, slot{isResume: isResume, section: section})
	}

	for _, src := range []struct {
		isResume bool
		set      domain.SectionSet
	}{{true, resume}, {false, job}} {
		add(src.isResume, domain.SectionEducation, src.set.Education)
		add(src.isResume, domain.SectionSkills, src.set.Skills)
		add(src.isResume, domain.SectionExperience, src.set.Experience)
		add(src.isResume, domain.SectionProfession, src.set.Profession)
	}

	out := sectionVectors{
		resume: make(map[domain.Section][]float32, 4),
		job:    make(map[domain.Section][]float32, 4),
	}
	if len(texts) == 0 {
		return out, nil
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return sectionVectors{}, err
	}
	if len(vectors) != len(texts) {
		return sectionVectors{}, fmt.Errorf("vectors/texts mismatch: %d/%d", len(vectors), len(texts))
	}

	for i, s := range slots {
		if s.isResume {
			out.resume[s.section] = vectors[i]
		} else {
			out.job[s.section] = vectors[i]
		}
	}
	return out, nil
}

// buildSkillReport splits the job's skills into exact matches, missing
// entries, and the resume's extras. Lists are sorted so identical inputs
// yield identical reports.
func buildSkillReport(resumeSkills, jobSkills []string) domain.SkillMatchReport {
	resumeSet := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		resumeSet[s] = struct{}{}
	}
	jobSet := make(map[string]struct{}, len(jobSkills))
	for _, s := range jobSkills {
		jobSet[s] = struct{}{}
	}

	report := domain.SkillMatchReport{
		Matched:  []string{},
		Semantic: []string{},
		Missing:  []string{},
		Extra:    []string{},
	}
	for s := range jobSet {
		if _, ok := resumeSet[s]; ok {
			report.Matched = append(report.Matched, s)
		} else {
			report.Missing = append(report.Missing, s)
		}
	}
	for s := range resumeSet {
		if _, ok := jobSet[s]; !ok {
			report.Extra = append(report.Extra, s)
		}
	}
	sort.Strings(report.Matched)
	sort.Strings(report.Missing)
	sort.Strings(report.Extra)
	return report
}

// resolveSemanticSkills reclassifies missing job skills that a resume skill
// covers semantically (cosine above the configured threshold) from Missing
// to Semantic.
func (uc *ScoreMatchUseCase) resolveSemanticSkills(
	ctx context.Context,
	report *domain.SkillMatchReport,
	resumeSkills []string,
	threshold float64,
) error {
	if len(report.Missing) == 0 || len(resumeSkills) == 0 || threshold <= 0 {
		return nil
	}

	missingVectors, err := uc.embedder.Embed(ctx, report.Missing)
	if err != nil {
		return err
	}
	resumeVectors, err := uc.embedder.Embed(ctx, resumeSkills)
	if err != nil {
		return err
	}
	if len(missingVectors) != len(report.Missing) || len(resumeVectors) != len(resumeSkills) {
		return fmt.Errorf("skill vectors mismatch: %d/%d and %d/%d",
			len(missingVectors), len(report.Missing), len(resumeVectors), len(resumeSkills))
	}

	var stillMissing, semantic []string
	for i, skill := range report.Missing {
		best := 0.0
		for _, rv := range resumeVectors {
			if sim := clip01(cosineSimilarity(missingVectors[i], rv)); sim > best {
				best = sim
			}
		}
		if best >= threshold {
			semantic = append(semantic, skill)
		} else {
			stillMissing = append(stillMissing, skill)
		}
	}

	report.Semantic = append(report.Semantic, semantic...)
	sort.Strings(report.Semantic)
	report.Missing = stillMissing
	if report.Missing == nil {
		report.Missing = []string{}
	}
	return nil
}
