package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whatsup/pkg/artifact"
	"whatsup/pkg/types"
)

func TestDigestLayout(t *testing.T) {
	got := Digest([]types.ThemeSummary{
		{Theme: "Agents", PostSummary: "posts about agents", CommentSummary: "- skeptical takes"},
		{Theme: "Tooling", PostSummary: "posts about tooling", CommentSummary: "- editor wars"},
	})

	if !strings.HasPrefix(got, "# Abstractions\n\n") {
		t.Fatalf("missing title: %q", got[:40])
	}
	for _, want := range []string{
		"## Agents\n\nposts about agents\n\n- skeptical takes\n\n---\n\n",
		"## Tooling\n\nposts about tooling\n\n- editor wars\n\n---\n\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("digest missing section:\n%s\n\nfull output:\n%s", want, got)
		}
	}
	if strings.Index(got, "## Agents") > strings.Index(got, "## Tooling") {
		t.Fatal("themes out of order")
	}
}

func TestWriteDigest(t *testing.T) {
	dir := t.TempDir()
	summariesPath := filepath.Join(dir, "theme_summaries.json")
	digestPath := filepath.Join(dir, "digest.md")

	summaries := []types.ThemeSummary{{Theme: "Only", PostSummary: "p", CommentSummary: "c"}}
	if err := artifact.WriteJSON(summariesPath, summaries); err != nil {
		t.Fatal(err)
	}

	if err := WriteDigest(summariesPath, digestPath); err != nil {
		t.Fatalf("WriteDigest: %v", err)
	}
	data, err := os.ReadFile(digestPath)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if !strings.Contains(string(data), "## Only") {
		t.Fatalf("digest content wrong:\n%s", data)
	}
}

func TestWriteDigestEmptySummaries(t *testing.T) {
	dir := t.TempDir()
	summariesPath := filepath.Join(dir, "theme_summaries.json")
	digestPath := filepath.Join(dir, "digest.md")

	if err := artifact.WriteJSON(summariesPath, []types.ThemeSummary{}); err != nil {
		t.Fatal(err)
	}

	err := WriteDigest(summariesPath, digestPath)
	if !errors.Is(err, types.ErrIntegrity) {
		t.Fatalf("want ErrIntegrity, got %v", err)
	}
	if _, statErr := os.Stat(digestPath); !os.IsNotExist(statErr) {
		t.Fatal("empty summaries must not produce a digest")
	}
}

func TestWriteCorpusText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reddit_data.txt")
	posts := []types.Post{{ID: "p1", Title: "hello", Subreddit: "golang", Score: 12}}

	if err := WriteCorpusText(path, posts, 3); err != nil {
		t.Fatalf("WriteCorpusText: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("corpus text missing post title:\n%s", data)
	}
}
