package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outline-ranker/internal/types"
)

// OutlineResult is the outcome for one document of an outline batch
type OutlineResult struct {
	Path    string
	Outline *types.Outline
	Err     error
}

// OutlineBatch outlines every path concurrently. A failing document never
// aborts the batch; its result carries the error instead. Results are in
// input order.
func (p *Pipeline) OutlineBatch(ctx context.Context, paths []string) ([]OutlineResult, BatchResult) {
	results := make([]OutlineResult, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			results[i].Path = path
			if err := gCtx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			p.emitProgress("outline", "document", filepath.Base(path), "Extracting outline...", nil)
			outline, err := p.OutlineDocument(gCtx, path)
			if err != nil {
				p.logger.Warn("skipping unreadable document", "path", path, "error", err)
				results[i].Err = err
				return nil
			}
			results[i].Outline = outline
			p.emitProgress("outline", "document", filepath.Base(path),
				fmt.Sprintf("Found %d headings", len(outline.Outline)), outline)
			return nil
		})
	}
	_ = g.Wait()

	var batch BatchResult
	for _, r := range results {
		if r.Err != nil {
			batch.Failed++
			batch.Failures = append(batch.Failures, Failure{Document: r.Path, Reason: r.Err.Error()})
			continue
		}
		batch.Processed++
	}
	return results, batch
}
