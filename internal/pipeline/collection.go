package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outline-ranker/internal/ranking"
	"github.com/jonathan/outline-ranker/internal/sections"
	"github.com/jonathan/outline-ranker/internal/selection"
	"github.com/jonathan/outline-ranker/internal/types"
)

// CollectionResult holds the output of a persona run along with the
// intermediate values callers may want to persist or print.
type CollectionResult struct {
	Output      *types.CollectionOutput
	Profile     *types.PersonaProfile
	Selected    []types.ScoredSection
	Subsections []types.Subsection
	Scored      []types.ScoredSection
	Titles      map[string]string
	Batch       BatchResult
}

// documentOutcome is one worker's contribution, stored by input position
type documentOutcome struct {
	sections []types.Section
	title    string
	skipped  string
	err      error
}

var filenameValidator = validator.New()

// ValidateFilename rejects names that are empty or would escape the PDF directory
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty filename")
	}
	if err := filenameValidator.Var(name, `excludesall=/\\`); err != nil {
		return fmt.Errorf("filename %q must not contain a path", name)
	}
	if name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid filename %q", name)
	}
	return nil
}

// AnalyzeCollection runs every document of a collection concurrently, then
// scores, selects, and excerpts sections globally. Unreadable or invalid
// documents are logged and contribute nothing.
func (p *Pipeline) AnalyzeCollection(ctx context.Context, input *types.CollectionInput) (*CollectionResult, error) {
	profile := p.opts.Families.Build(input.Persona.Role, input.JobToBeDone.Task)
	p.emitProgress("persona", "profile", "", fmt.Sprintf("Persona family %q with %d high and %d task keywords",
		profile.Family, len(profile.High), len(profile.Medium)), profile)

	recall := &sections.Recall{HeadingTerms: profile.HeadingTerms}
	outcomes := make([]documentOutcome, len(input.Documents))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, ref := range input.Documents {
		if err := ValidateFilename(ref.Filename); err != nil {
			p.logger.Warn("skipping document", "document", ref.Filename, "reason", err)
			outcomes[i].skipped = err.Error()
			continue
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			path := filepath.Join(input.DocumentsDir, ref.Filename)
			doc, err := p.supplier.Extract(gCtx, path)
			if err != nil {
				p.logger.Warn("skipping unreadable document", "document", ref.Filename, "error", err)
				outcomes[i].err = err
				return nil
			}

			secs, docTitle := p.SectionsFromDocument(ref.Filename, doc, recall)
			outcomes[i].sections = secs
			outcomes[i].title = docTitle
			p.emitProgress("sections", "document", ref.Filename, fmt.Sprintf("Segmented %d sections", len(secs)), nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collection analysis cancelled: %w", err)
	}

	result := &CollectionResult{Profile: profile, Titles: make(map[string]string)}
	var all []types.Section
	for i, o := range outcomes {
		name := input.Documents[i].Filename
		switch {
		case o.skipped != "":
			result.Batch.Skipped++
			result.Batch.Failures = append(result.Batch.Failures, Failure{Document: name, Reason: o.skipped})
		case o.err != nil:
			result.Batch.Failed++
			result.Batch.Failures = append(result.Batch.Failures, Failure{Document: name, Reason: o.err.Error()})
		default:
			result.Batch.Processed++
			result.Titles[name] = o.title
			all = append(all, o.sections...)
		}
	}

	result.Scored = ranking.ScoreSections(all, profile)
	result.Selected = selection.SelectSections(result.Scored, p.opts.Selection)
	result.Subsections = selection.ExtractSubsections(result.Scored, p.opts.Selection)
	p.emitProgress("selection", "ranking", "", fmt.Sprintf("Selected %d sections and %d subsections",
		len(result.Selected), len(result.Subsections)), nil)

	result.Output = buildOutput(input, result.Selected, result.Subsections, p.opts.Now())
	return result, nil
}

func buildOutput(input *types.CollectionInput, selected []types.ScoredSection, subs []types.Subsection, now time.Time) *types.CollectionOutput {
	out := &types.CollectionOutput{
		Metadata: types.CollectionMetadata{
			InputDocuments:      make([]string, 0, len(input.Documents)),
			Persona:             input.Persona.Role,
			JobToBeDone:         input.JobToBeDone.Task,
			ProcessingTimestamp: now.Format(time.RFC3339Nano),
		},
		ExtractedSections:  make([]types.ExtractedSection, 0, len(selected)),
		SubsectionAnalysis: make([]types.SubsectionAnalysis, 0, len(subs)),
	}

	for _, d := range input.Documents {
		out.Metadata.InputDocuments = append(out.Metadata.InputDocuments, d.Filename)
	}
	for _, s := range selected {
		out.ExtractedSections = append(out.ExtractedSections, types.ExtractedSection{
			Document:       s.DocumentID,
			SectionTitle:   s.Title,
			ImportanceRank: s.Rank,
			PageNumber:     s.StartPage,
		})
	}
	for _, s := range subs {
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, types.SubsectionAnalysis{
			Document:    s.DocumentID,
			RefinedText: s.RefinedText,
			PageNumber:  s.Page,
		})
	}
	return out
}

// RankedSections returns every scored section with Rank set for the ones that were selected
func (r *CollectionResult) RankedSections() []types.ScoredSection {
	type key struct {
		doc, title string
		page       int
	}
	ranks := make(map[key]int, len(r.Selected))
	for _, s := range r.Selected {
		ranks[key{s.DocumentID, s.Title, s.StartPage}] = s.Rank
	}

	out := make([]types.ScoredSection, len(r.Scored))
	for i, s := range r.Scored {
		s.Rank = ranks[key{s.DocumentID, s.Title, s.StartPage}]
		out[i] = s
	}
	return out
}
