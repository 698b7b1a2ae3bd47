package compile

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Document is one named compile input.
type Document struct {
	Name string
	Text string
}

// DocumentResult pairs a document with its compile outcome. Err is
// non-nil only for fatal conditions; the partial result stays
// inspectable either way.
type DocumentResult struct {
	Name   string
	Result *Result
	Err    error
}

// Runner compiles independent documents concurrently, one session
// each. Sessions share nothing but the options.
type Runner struct {
	options  Options
	parallel int
}

// RunnerParams configure a Runner.
type RunnerParams struct {
	Options Options

	// Parallel caps the number of documents compiling at once.
	// Values below one fall back to the default of four.
	Parallel int
}

// NewRunner returns a runner for the given options.
func NewRunner(params RunnerParams) *Runner {
	parallel := params.Parallel
	if parallel <= 0 {
		parallel = 4
	}
	return &Runner{options: params.Options, parallel: parallel}
}

// Run compiles every document and returns results in input order. A
// fatal error in one document does not stop the others; cancel ctx to
// stop the batch.
func (r *Runner) Run(ctx context.Context, documents []Document) []DocumentResult {
	results := make([]DocumentResult, len(documents))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.parallel)
	for i, document := range documents {
		i, document := i, document
		eg.Go(func() error {
			session := NewSession(r.options)
			result, err := session.Compile(gCtx, document.Text)
			results[i] = DocumentResult{Name: document.Name, Result: result, Err: err}
			return nil
		})
	}
	// Workers never return errors through the group; per-document
	// failures live in the result slots.
	_ = eg.Wait()
	return results
}
