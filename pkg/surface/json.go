package surface

import (
	"encoding/json"
	"io"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/improve"
)

// JSONRenderer marshals results to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) RenderEvaluation(w io.Writer, ev *evaluate.Evaluation) error {
	return writeIndented(w, ev)
}

func (r *JSONRenderer) RenderSummary(w io.Writer, s *improve.Summary) error {
	return writeIndented(w, s)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
