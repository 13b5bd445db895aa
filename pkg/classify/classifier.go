package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"google.golang.org/genai"

	"whatsup/pkg/llm"
	"whatsup/pkg/types"
)

const classifySystem = "You are a helpful assistant who is an expert at determining " +
	"if a post is informative to a user who is an active member of the AI community."

var classifySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"is_informative": {
			Type:        genai.TypeBoolean,
			Description: "Whether the post is informative or not",
		},
	},
	Required: []string{"is_informative"},
}

// Classifier annotates posts with an is_informative flag.
//
// Posts are grouped into fixed-size batches and batches run concurrently,
// but total in-flight model calls are capped by a semaphore shared across
// all batches, so batch size stays a logical grouping rather than a
// resource limit.
type Classifier struct {
	completer llm.Completer
	sem       chan struct{}

	itemFailures  atomic.Int64
	batchFailures atomic.Int64
}

// NewClassifier creates a classifier capping concurrent model calls at
// maxInFlight.
func NewClassifier(completer llm.Completer, maxInFlight int) *Classifier {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Classifier{
		completer: completer,
		sem:       make(chan struct{}, maxInFlight),
	}
}

// ItemFailures counts posts whose individual classification call failed
// and fell back to false.
func (c *Classifier) ItemFailures() int64 { return c.itemFailures.Load() }

// BatchFailures counts batches degraded wholesale to false by an
// orchestration failure, as opposed to per-item call failures.
func (c *Classifier) BatchFailures() int64 { return c.batchFailures.Load() }

// Classify returns a copy of posts with IsInformative set on every entry,
// output order matching input order. A failing call marks only its own
// post false; a batch-level failure marks the whole batch false and is
// counted separately. batchSize < 1 is a contract violation reported
// before any call is made.
func (c *Classifier) Classify(ctx context.Context, posts []types.Post, batchSize int) ([]types.Post, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", types.ErrContract, batchSize)
	}
	out := make([]types.Post, len(posts))
	copy(out, posts)
	if len(out) == 0 {
		return out, nil
	}

	var wg sync.WaitGroup
	for start := 0; start < len(out); start += batchSize {
		end := start + batchSize
		if end > len(out) {
			end = len(out)
		}
		wg.Add(1)
		go func(batch []types.Post) {
			defer wg.Done()
			c.processBatch(ctx, batch)
		}(out[start:end])
	}
	wg.Wait()
	return out, nil
}

// processBatch classifies each post of one batch concurrently. If dispatch
// itself fails (context canceled while waiting for capacity), the whole
// batch degrades to false and is logged as a batch failure so callers can
// tell it apart from per-item fallbacks.
func (c *Classifier) processBatch(ctx context.Context, batch []types.Post) {
	var wg sync.WaitGroup
	degraded := false
	for i := range batch {
		if !degraded {
			select {
			case c.sem <- struct{}{}:
			case <-ctx.Done():
				degraded = true
			}
		}
		if degraded {
			batch[i].IsInformative = falsePtr()
			continue
		}
		wg.Add(1)
		go func(post *types.Post) {
			defer wg.Done()
			defer func() { <-c.sem }()
			verdict := c.classifyOne(ctx, post)
			post.IsInformative = &verdict
		}(&batch[i])
	}
	wg.Wait()
	if degraded {
		c.batchFailures.Add(1)
		log.Printf("classify: batch degraded to not-informative: %v", ctx.Err())
	}
}

// classifyOne returns the verdict for a single post. A post with no body
// text is trivially not informative and costs no model call; a failed call
// falls back to false and is counted as an item failure.
func (c *Classifier) classifyOne(ctx context.Context, post *types.Post) bool {
	if post.SelfText == "" {
		return false
	}
	raw, err := c.completer.Complete(ctx, classifySystem, post.SelfText, classifySchema)
	if err != nil {
		c.itemFailures.Add(1)
		log.Printf("classify: post %s: %v", post.ID, err)
		return false
	}
	var verdict struct {
		IsInformative bool `json:"is_informative"`
	}
	if err := json.Unmarshal(raw, &verdict); err != nil {
		c.itemFailures.Add(1)
		log.Printf("classify: post %s: bad response: %v", post.ID, err)
		return false
	}
	return verdict.IsInformative
}

func falsePtr() *bool {
	f := false
	return &f
}
