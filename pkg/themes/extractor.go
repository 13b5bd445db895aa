// Package themes turns the day's corpus into named themes and layered
// summaries: one model call for theme extraction, then one call per theme
// for the post pass and one per theme for the comment pass, with results
// merged into a resumable ledger.
package themes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"whatsup/pkg/llm"
	"whatsup/pkg/types"
)

var themesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"themes": {
			Type:        genai.TypeArray,
			Description: "4-5 top recommended themes for the day",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"theme": {
						Type:        genai.TypeString,
						Description: "Recommended theme for the day",
					},
					"post_ids": {
						Type:        genai.TypeArray,
						Description: "Post IDs of the posts related to the theme",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"theme", "post_ids"},
			},
		},
	},
	Required: []string{"themes"},
}

// Extractor asks the model for the day's themes in a single call over the
// whole flattened corpus.
type Extractor struct {
	completer llm.Completer
}

// NewExtractor creates a theme extractor.
func NewExtractor(completer llm.Completer) *Extractor {
	return &Extractor{completer: completer}
}

// GatherCorpus renders the corpus as the human-readable dump fed to the
// extractor, one block per post separated by dashes.
func GatherCorpus(corpus []types.CorpusPost) string {
	blocks := make([]string, 0, len(corpus))
	for _, post := range corpus {
		blocks = append(blocks, fmt.Sprintf("Post: %s\nContent: %s\nComments: %s\nSubreddit: %s\nScore: %d",
			post.PostID, post.Content, post.Comments, post.Subreddit, post.Score))
	}
	return strings.Join(blocks, "\n---\n")
}

// Extract returns the model's themes with every post id validated against
// the corpus. Unknown ids are dropped and logged, never kept; a theme left
// without any valid id is dropped entirely.
func (e *Extractor) Extract(ctx context.Context, corpus []types.CorpusPost) (types.ThemeList, error) {
	if len(corpus) == 0 {
		return types.ThemeList{}, fmt.Errorf("%w: empty corpus", types.ErrIntegrity)
	}

	raw, err := e.completer.Complete(ctx, recommenderSystem, GatherCorpus(corpus), themesSchema)
	if err != nil {
		return types.ThemeList{}, fmt.Errorf("extract themes: %w", err)
	}
	var list types.ThemeList
	if err := json.Unmarshal(raw, &list); err != nil {
		return types.ThemeList{}, fmt.Errorf("%w: parse theme response: %v", types.ErrIntegrity, err)
	}

	known := make(map[string]bool, len(corpus))
	for _, post := range corpus {
		known[post.PostID] = true
	}

	valid := make([]types.Theme, 0, len(list.Themes))
	for _, theme := range list.Themes {
		ids := make([]string, 0, len(theme.PostIDs))
		for _, id := range theme.PostIDs {
			if !known[id] {
				log.Printf("themes: dropping unknown post id %q from theme %q", id, theme.Theme)
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			log.Printf("themes: dropping theme %q: no valid post ids", theme.Theme)
			continue
		}
		valid = append(valid, types.Theme{Theme: theme.Theme, PostIDs: ids})
	}
	return types.ThemeList{Themes: valid}, nil
}
