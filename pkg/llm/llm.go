// Package llm provides the generative-model collaborator used by every
// pipeline stage that needs a structured completion.
package llm

import (
	"context"
	"encoding/json"

	"google.golang.org/genai"
)

// Completer is the single contract the pipeline depends on: system
// instructions and user content in, one schema-shaped JSON record out.
// Implementations may fail with a transient error (network, rate limit,
// malformed output); callers decide whether that is isolable.
type Completer interface {
	Complete(ctx context.Context, system, user string, schema *genai.Schema) (json.RawMessage, error)
}
