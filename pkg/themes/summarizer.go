package themes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"whatsup/pkg/artifact"
	"whatsup/pkg/llm"
	"whatsup/pkg/scrape"
	"whatsup/pkg/types"
)

var postSummarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"post_summary": {
			Type:        genai.TypeString,
			Description: "Summary of the post content including key points, technical details, and relevant links",
		},
	},
	Required: []string{"post_summary"},
}

var commentSummarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"comment_summary": {
			Type:        genai.TypeString,
			Description: "Summary of the comment discussion",
		},
	},
	Required: []string{"comment_summary"},
}

// Summarizer produces the per-theme summaries. The post pass reads the
// corpus and theme artifacts; the comment pass additionally pulls comment
// trees through a TreeSource. Both persist through the same ledger.
type Summarizer struct {
	completer  llm.Completer
	corpusPath string
	themesPath string
	ledger     *Ledger
	trees      scrape.TreeSource
}

// NewSummarizer creates a summarizer. trees may be nil when only the post
// pass will run.
func NewSummarizer(completer llm.Completer, corpusPath, themesPath string, ledger *Ledger, trees scrape.TreeSource) *Summarizer {
	return &Summarizer{
		completer:  completer,
		corpusPath: corpusPath,
		themesPath: themesPath,
		ledger:     ledger,
		trees:      trees,
	}
}

func (s *Summarizer) loadThemes() ([]types.Theme, error) {
	var list types.ThemeList
	if err := artifact.ReadJSON(s.themesPath, &list); err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}
	if len(list.Themes) == 0 {
		return nil, fmt.Errorf("%w: no themes in %s", types.ErrIntegrity, s.themesPath)
	}
	return list.Themes, nil
}

func (s *Summarizer) loadCorpus() (map[string]types.CorpusPost, error) {
	var corpus []types.CorpusPost
	if err := artifact.ReadJSON(s.corpusPath, &corpus); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	byID := make(map[string]types.CorpusPost, len(corpus))
	for _, post := range corpus {
		byID[post.PostID] = post
	}
	return byID, nil
}

// SummarizeThemePosts summarizes the linked posts' bodies for the theme at
// themeIndex and upserts the result into the ledger. An out-of-range index
// or a theme with no resolvable posts is an error with nothing persisted.
func (s *Summarizer) SummarizeThemePosts(ctx context.Context, themeIndex int) (types.ThemeSummary, error) {
	themes, err := s.loadThemes()
	if err != nil {
		return types.ThemeSummary{}, err
	}
	if themeIndex < 0 || themeIndex >= len(themes) {
		return types.ThemeSummary{}, fmt.Errorf("%w: theme index %d out of range (max %d)",
			types.ErrContract, themeIndex, len(themes)-1)
	}
	theme := themes[themeIndex]

	byID, err := s.loadCorpus()
	if err != nil {
		return types.ThemeSummary{}, err
	}

	var b strings.Builder
	ids := make([]string, 0, len(theme.PostIDs))
	for _, id := range theme.PostIDs {
		post, ok := byID[id]
		if !ok {
			log.Printf("themes: post %q of theme %q missing from corpus", id, theme.Theme)
			continue
		}
		ids = append(ids, id)
		fmt.Fprintf(&b, "[Post ID: %s]\n%s\n\n", post.PostID, post.Content)
	}
	if b.Len() == 0 {
		return types.ThemeSummary{}, fmt.Errorf("%w: no posts found for theme %q", types.ErrIntegrity, theme.Theme)
	}

	raw, err := s.completer.Complete(ctx, postSummarizerSystem, b.String(), postSummarySchema)
	if err != nil {
		return types.ThemeSummary{}, fmt.Errorf("summarize posts for theme %q: %w", theme.Theme, err)
	}
	var resp struct {
		PostSummary string `json:"post_summary"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return types.ThemeSummary{}, fmt.Errorf("%w: parse post summary: %v", types.ErrIntegrity, err)
	}

	return s.ledger.Upsert(theme.Theme, func(e *types.ThemeSummary) {
		e.PostIDs = ids
		e.PostSummary = resp.PostSummary
	})
}

// SummarizeThemeComments re-fetches the comment trees for the theme's
// posts and produces the second-level summary, merging it into the same
// ledger entry. The theme index ranges over the ledger, which the post
// pass has already populated.
func (s *Summarizer) SummarizeThemeComments(ctx context.Context, themeIndex int) (types.ThemeSummary, error) {
	entries, err := s.ledger.Load()
	if err != nil {
		return types.ThemeSummary{}, err
	}
	if themeIndex < 0 || themeIndex >= len(entries) {
		return types.ThemeSummary{}, fmt.Errorf("%w: theme index %d out of range (max %d)",
			types.ErrContract, themeIndex, len(entries)-1)
	}
	if s.trees == nil {
		return types.ThemeSummary{}, fmt.Errorf("%w: summarizer has no comment source", types.ErrContract)
	}
	entry := entries[themeIndex]

	var b strings.Builder
	b.WriteString(entry.PostSummary)
	b.WriteString("\n\nComments:\n")
	found := false
	for _, id := range entry.PostIDs {
		tree, err := s.trees.Tree(ctx, id)
		if err != nil {
			log.Printf("themes: comments for post %q of theme %q: %v", id, entry.Theme, err)
			continue
		}
		if len(tree) == 0 {
			continue
		}
		found = true
		b.WriteString(scrape.RenderCommentText(tree))
	}
	if !found {
		return types.ThemeSummary{}, fmt.Errorf("%w: no comments found for theme %q", types.ErrIntegrity, entry.Theme)
	}

	raw, err := s.completer.Complete(ctx, commentSummarizerSystem, b.String(), commentSummarySchema)
	if err != nil {
		return types.ThemeSummary{}, fmt.Errorf("summarize comments for theme %q: %w", entry.Theme, err)
	}
	var resp struct {
		CommentSummary string `json:"comment_summary"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return types.ThemeSummary{}, fmt.Errorf("%w: parse comment summary: %v", types.ErrIntegrity, err)
	}

	return s.ledger.Upsert(entry.Theme, func(e *types.ThemeSummary) {
		e.CommentSummary = resp.CommentSummary
	})
}
