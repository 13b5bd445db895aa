package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"

	"whatsup/pkg/artifact"
	"whatsup/pkg/config"
	"whatsup/pkg/types"
)

// routedCompleter answers by the schema it is asked to fill, so one
// fake serves every LLM stage of the pipeline.
type routedCompleter struct {
	themes string
}

func (r *routedCompleter) Complete(ctx context.Context, system, user string, schema *genai.Schema) (json.RawMessage, error) {
	if schema == nil || schema.Properties == nil {
		return nil, fmt.Errorf("%w: no schema", types.ErrContract)
	}
	switch {
	case schema.Properties["is_informative"] != nil:
		return json.RawMessage(`{"is_informative": true}`), nil
	case schema.Properties["themes"] != nil:
		return json.RawMessage(r.themes), nil
	case schema.Properties["post_summary"] != nil:
		return json.RawMessage(`{"post_summary": "what the posts say"}`), nil
	case schema.Properties["comment_summary"] != nil:
		return json.RawMessage(`{"comment_summary": "- what the comments say"}`), nil
	}
	return nil, fmt.Errorf("%w: unexpected schema", types.ErrContract)
}

type fakeForum struct {
	posts map[string][]types.Post
}

func (f *fakeForum) TopPosts(ctx context.Context, subreddit string, limit int, timeFilter string) ([]types.Post, error) {
	return f.posts[subreddit], nil
}

func (f *fakeForum) TopComments(ctx context.Context, postID string, limit int) ([]types.Comment, error) {
	return []types.Comment{{ID: postID + "-c1", Body: "top comment on " + postID, Score: 8}}, nil
}

func (f *fakeForum) Replies(ctx context.Context, postID, commentID string, limit int) ([]types.Comment, error) {
	return nil, nil
}

func (f *fakeForum) SearchCommunities(ctx context.Context, query string, limit int) ([]types.SubredditInfo, error) {
	return nil, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Subreddits = []string{"gotest"}
	cfg.Paths.CorpusJSON = filepath.Join(dir, "reddit_data.json")
	cfg.Paths.CorpusText = filepath.Join(dir, "reddit_data.txt")
	cfg.Paths.Themes = filepath.Join(dir, "topic_recommendations.json")
	cfg.Paths.Summaries = filepath.Join(dir, "theme_summaries.json")
	cfg.Paths.Digest = filepath.Join(dir, "digest.md")
	cfg.Paths.HistoryDB = filepath.Join(dir, "reddit_data.db")
	return cfg
}

func engagedPost(id, title, body string) types.Post {
	return types.Post{
		ID:          id,
		Title:       title,
		SelfText:    body,
		Subreddit:   "gotest",
		Score:       50,
		UpvoteRatio: 0.95,
		NumComments: 12,
	}
}

func TestRunEndToEnd(t *testing.T) {
	forum := &fakeForum{posts: map[string][]types.Post{
		"gotest": {
			engagedPost("a", "generics update", "notes on generics"),
			engagedPost("b", "gc tuning", "notes on the collector"),
		},
	}}
	completer := &routedCompleter{
		themes: `{"themes": [{"theme": "Runtime", "post_ids": ["a", "b"]}]}`,
	}
	cfg := testConfig(t)

	d := New(cfg, forum, completer)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var corpus []types.CorpusPost
	if err := artifact.ReadJSON(cfg.Paths.CorpusJSON, &corpus); err != nil {
		t.Fatalf("corpus: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("want 2 corpus posts, got %d", len(corpus))
	}
	for _, post := range corpus {
		if post.IsInformative == nil || !*post.IsInformative {
			t.Fatalf("post %s not classified informative: %+v", post.PostID, post)
		}
	}

	var summaries []types.ThemeSummary
	if err := artifact.ReadJSON(cfg.Paths.Summaries, &summaries); err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Theme != "Runtime" {
		t.Fatalf("summaries wrong: %+v", summaries)
	}
	if summaries[0].PostSummary == "" || summaries[0].CommentSummary == "" {
		t.Fatalf("summary passes incomplete: %+v", summaries[0])
	}

	digest, err := os.ReadFile(cfg.Paths.Digest)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	for _, want := range []string{"# Abstractions", "## Runtime", "what the posts say", "- what the comments say"} {
		if !strings.Contains(string(digest), want) {
			t.Fatalf("digest missing %q:\n%s", want, digest)
		}
	}

	text, err := os.ReadFile(cfg.Paths.CorpusText)
	if err != nil {
		t.Fatalf("corpus text: %v", err)
	}
	if !strings.Contains(string(text), "generics update") {
		t.Fatalf("corpus text missing post:\n%s", text)
	}
}

func TestScrapeClearsStaleThemeArtifacts(t *testing.T) {
	forum := &fakeForum{posts: map[string][]types.Post{
		"gotest": {engagedPost("a", "t", "body")},
	}}
	cfg := testConfig(t)
	if err := artifact.WriteJSON(cfg.Paths.Themes, types.ThemeList{
		Themes: []types.Theme{{Theme: "stale", PostIDs: []string{"gone"}}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := artifact.WriteJSON(cfg.Paths.Summaries, []types.ThemeSummary{{Theme: "stale"}}); err != nil {
		t.Fatal(err)
	}

	d := New(cfg, forum, &routedCompleter{})
	if err := d.Scrape(context.Background()); err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	for _, path := range []string{cfg.Paths.Themes, cfg.Paths.Summaries} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("stale artifact %s survived the scrape", path)
		}
	}
}

func TestScrapeNoPosts(t *testing.T) {
	cfg := testConfig(t)
	d := New(cfg, &fakeForum{}, &routedCompleter{})

	err := d.Scrape(context.Background())
	if err == nil {
		t.Fatal("want error when nothing was scraped")
	}
}

func TestExtractThemesSkipsUninformativePosts(t *testing.T) {
	cfg := testConfig(t)
	yes, no := true, false
	corpus := []types.CorpusPost{
		{PostID: "a", Content: "useful", Subreddit: "gotest", IsInformative: &yes},
		{PostID: "b", Content: "noise", Subreddit: "gotest", IsInformative: &no},
	}
	if err := artifact.WriteJSON(cfg.Paths.CorpusJSON, corpus); err != nil {
		t.Fatal(err)
	}

	completer := &routedCompleter{
		themes: `{"themes": [{"theme": "Useful", "post_ids": ["a"]}]}`,
	}
	d := New(cfg, &fakeForum{}, completer)
	if err := d.ExtractThemes(context.Background()); err != nil {
		t.Fatalf("ExtractThemes: %v", err)
	}

	var list types.ThemeList
	if err := artifact.ReadJSON(cfg.Paths.Themes, &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Themes) != 1 || len(list.Themes[0].PostIDs) != 1 || list.Themes[0].PostIDs[0] != "a" {
		t.Fatalf("themes wrong: %+v", list)
	}
}
