package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"google.golang.org/genai"

	"whatsup/pkg/types"
)

// Gemini implements Completer using Google GenAI Gemini with structured
// (JSON-schema constrained) output.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	retries int
	rl      *rpsLimiter
}

// GeminiConfig holds configuration for the Gemini completer.
type GeminiConfig struct {
	APIKey  string        // if empty, uses GOOGLE_API_KEY env var
	Model   string        // e.g. "gemini-2.5-flash"
	Timeout time.Duration // per-call timeout, 0 means 60s
	Retries int           // attempts per call, 0 means 3
	RPS     float64       // optional request-rate cap, 0 disables
	Burst   int           // burst capacity for the rate cap
}

// NewGemini creates a Gemini completer.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = os.Getenv("GOOGLE_MODEL")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}

	return &Gemini{
		client:  client,
		model:   model,
		timeout: timeout,
		retries: retries,
		rl:      newRPSLimiter(cfg.RPS, cfg.Burst),
	}, nil
}

// Model returns the model name.
func (g *Gemini) Model() string { return g.model }

// Close releases the rate limiter. The genai client itself holds no
// resources that need an explicit close.
func (g *Gemini) Close() {
	if g.rl != nil {
		g.rl.Stop()
	}
}

// Complete issues one structured completion. Transient failures are retried
// with exponential backoff; the final error wraps types.ErrTransient so
// callers can apply their fail-open defaults.
func (g *Gemini) Complete(ctx context.Context, system, user string, schema *genai.Schema) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	var lastErr error
	for attempt := 0; attempt < g.retries; attempt++ {
		if err := g.rl.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrTransient, err)
		}
		raw, err := g.generateOnce(ctx, user, cfg)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		log.Printf("llm: attempt %d/%d failed: %v", attempt+1, g.retries, err)
		select {
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", types.ErrTransient, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w: %v", types.ErrTransient, lastErr)
}

func (g *Gemini) generateOnce(ctx context.Context, user string, cfg *genai.GenerateContentConfig) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(callCtx, g.model, genai.Text(user), cfg)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("model returned invalid JSON")
	}
	return json.RawMessage(text), nil
}
