// Package analyze defines the boundary to external code analyzers.
// Implementations turn source text into a metrics record; they never score it.
package analyze

import (
	"context"

	"github.com/readyscore/readyscore/pkg/metrics"
)

// Analyzer extracts metrics from a code snippet.
//
// Analyze must tolerate syntactically invalid input by returning a record
// with SyntaxOK false rather than an error. Failures of individual
// sub-capabilities belong in the record's error markers; an error return
// means no record could be produced at all.
type Analyzer interface {
	Analyze(ctx context.Context, code string) (*metrics.Record, error)
}

// Func adapts a plain function to the Analyzer interface.
type Func func(ctx context.Context, code string) (*metrics.Record, error)

func (f Func) Analyze(ctx context.Context, code string) (*metrics.Record, error) {
	return f(ctx, code)
}

// Static returns an analyzer that always yields rec, whatever the code.
// Used to score precomputed records through the same pipeline.
func Static(rec *metrics.Record) Analyzer {
	return Func(func(context.Context, string) (*metrics.Record, error) {
		return rec, nil
	})
}
