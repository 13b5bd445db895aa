// Package report renders the pipeline's outputs into human-readable
// files: a markdown digest of the theme summaries and a plain-text
// dump of the scraped corpus.
package report

import (
	"fmt"
	"strings"

	"whatsup/pkg/artifact"
	"whatsup/pkg/scrape"
	"whatsup/pkg/types"
)

// Digest renders theme summaries as a markdown document, one section
// per theme.
func Digest(summaries []types.ThemeSummary) string {
	var b strings.Builder
	b.WriteString("# Abstractions\n\n")
	for _, entry := range summaries {
		fmt.Fprintf(&b, "## %s\n\n", entry.Theme)
		fmt.Fprintf(&b, "%s\n\n", entry.PostSummary)
		fmt.Fprintf(&b, "%s\n\n", entry.CommentSummary)
		b.WriteString("---\n\n")
	}
	return b.String()
}

// WriteDigest loads the theme summaries from summariesPath and writes
// the markdown digest to digestPath.
func WriteDigest(summariesPath, digestPath string) error {
	var summaries []types.ThemeSummary
	if err := artifact.ReadJSON(summariesPath, &summaries); err != nil {
		return fmt.Errorf("load summaries: %w", err)
	}
	if len(summaries) == 0 {
		return fmt.Errorf("%w: no theme summaries in %s", types.ErrIntegrity, summariesPath)
	}
	return artifact.WriteText(digestPath, Digest(summaries))
}

// WriteCorpusText writes the readable text rendering of the scraped
// posts to path.
func WriteCorpusText(path string, posts []types.Post, requests int64) error {
	return artifact.WriteText(path, scrape.FormatText(posts, requests))
}
