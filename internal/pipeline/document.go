package pipeline

import (
	"context"

	"github.com/jonathan/outline-ranker/internal/fontprofile"
	"github.com/jonathan/outline-ranker/internal/normalize"
	"github.com/jonathan/outline-ranker/internal/sections"
	"github.com/jonathan/outline-ranker/internal/title"
	"github.com/jonathan/outline-ranker/internal/types"
)

// analysis is everything inferred from one document
type analysis struct {
	title    string
	pages    [][]types.Span
	profiles []types.FontProfile
}

func (p *Pipeline) analyze(doc *types.Document) analysis {
	pages := normalize.Document(doc, p.opts.Normalize)
	profiles := fontprofile.Profiles(pages, p.opts.FontProfile)

	var firstPage []types.Span
	if len(pages) > 0 {
		firstPage = pages[0]
	}
	docTitle := title.Extract(firstPage, p.opts.Title)
	if docTitle == "" && p.opts.MetadataTitleFallback {
		docTitle = normalize.CleanText(doc.MetadataTitle)
	}

	return analysis{title: docTitle, pages: pages, profiles: profiles}
}

// OutlineFromDocument builds the title and heading outline of an extracted document
func (p *Pipeline) OutlineFromDocument(doc *types.Document) *types.Outline {
	a := p.analyze(doc)
	return &types.Outline{
		Title:   a.title,
		Outline: p.classifier.Outline(a.pages, a.profiles, a.title),
	}
}

// OutlineDocument extracts the document at path and builds its outline
func (p *Pipeline) OutlineDocument(ctx context.Context, path string) (*types.Outline, error) {
	doc, err := p.supplier.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.OutlineFromDocument(doc), nil
}

// SectionsFromDocument segments an extracted document. A non-nil recall enables
// the looser persona-mode heading rules.
func (p *Pipeline) SectionsFromDocument(documentID string, doc *types.Document, recall *sections.Recall) ([]types.Section, string) {
	a := p.analyze(doc)
	segmenter := p.segmenter
	if recall != nil {
		segmenter = segmenter.WithRecall(recall)
	}
	return segmenter.Segment(documentID, a.pages, a.profiles, a.title), a.title
}
