package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/argus/internal/graph"
	"github.com/ppiankov/argus/internal/llm"
	"github.com/ppiankov/argus/internal/validate"
)

// DecompositionError is fatal: without at least one valid claim set there is
// no meaningful partial result, so this stage fails fast instead of degrading.
type DecompositionError struct {
	Err error
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("decomposition failed: %v", e.Err)
}

func (e *DecompositionError) Unwrap() error {
	return e.Err
}

// decompose runs the single decomposition call and materializes the claim set
// into a fresh graph. A valid-but-empty claim list yields an empty graph, not
// an error; every other failure mode is a DecompositionError.
func (p *Pipeline) decompose(ctx context.Context, inputText string) (*graph.Graph, error) {
	raw, err := p.invokeWithRetry(ctx, llm.DecomposeTask(inputText))
	if err != nil {
		return nil, &DecompositionError{Err: err}
	}

	claims, err := validate.Claims(raw)
	if err != nil {
		return nil, &DecompositionError{Err: err}
	}

	g := graph.New(inputText)
	if err := g.AddClaims(claims); err != nil {
		// Duplicate IDs from the gateway are a contract violation
		return nil, &DecompositionError{Err: err}
	}
	return g, nil
}
