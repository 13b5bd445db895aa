package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"whatsup/pkg/config"
	"whatsup/pkg/types"
)

type scriptedForum struct {
	posts    map[string][]types.Post
	failSubs map[string]error
}

func (s *scriptedForum) TopPosts(ctx context.Context, subreddit string, limit int, timeFilter string) ([]types.Post, error) {
	if err := s.failSubs[subreddit]; err != nil {
		return nil, err
	}
	return s.posts[subreddit], nil
}

func (s *scriptedForum) TopComments(ctx context.Context, postID string, limit int) ([]types.Comment, error) {
	return []types.Comment{{ID: postID + "-c1", Body: "comment", Score: 1}}, nil
}

func (s *scriptedForum) Replies(ctx context.Context, postID, commentID string, limit int) ([]types.Comment, error) {
	return nil, nil
}

func (s *scriptedForum) SearchCommunities(ctx context.Context, query string, limit int) ([]types.SubredditInfo, error) {
	return nil, nil
}

func scrapingConfig() config.Scraping {
	return config.Scraping{
		PostsLimit:    5,
		CommentsLimit: 3,
		RepliesLimit:  2,
		CommentDepth:  1,
		TimeFilter:    "day",
	}
}

func TestScrapeAllPreservesCommunityOrder(t *testing.T) {
	forum := &scriptedForum{posts: map[string][]types.Post{
		"first":  {{ID: "f1", Subreddit: "first"}},
		"second": {{ID: "s1", Subreddit: "second"}, {ID: "s2", Subreddit: "second"}},
	}}
	s := NewScraper(forum, []string{"first", "second"}, scrapingConfig())

	posts, err := s.ScrapeAll(context.Background())
	if err != nil {
		t.Fatalf("ScrapeAll: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("want 3 posts, got %d", len(posts))
	}
	if posts[0].ID != "f1" || posts[1].ID != "s1" {
		t.Fatalf("community order lost: %s, %s", posts[0].ID, posts[1].ID)
	}
	for _, post := range posts {
		if len(post.Comments) != 1 {
			t.Fatalf("post %s missing comment tree: %+v", post.ID, post.Comments)
		}
	}
}

func TestScrapeAllSkipsFailingCommunity(t *testing.T) {
	forum := &scriptedForum{
		posts: map[string][]types.Post{
			"healthy": {{ID: "h1", Subreddit: "healthy"}},
		},
		failSubs: map[string]error{
			"broken": fmt.Errorf("%w: upstream 503", types.ErrTransient),
		},
	}
	s := NewScraper(forum, []string{"broken", "healthy"}, scrapingConfig())

	posts, err := s.ScrapeAll(context.Background())
	if err != nil {
		t.Fatalf("ScrapeAll: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "h1" {
		t.Fatalf("healthy community must still be scraped: %+v", posts)
	}
}

func TestScrapeAllAbortsOnAuthFailure(t *testing.T) {
	forum := &scriptedForum{
		posts: map[string][]types.Post{
			"never": {{ID: "n1"}},
		},
		failSubs: map[string]error{
			"locked": fmt.Errorf("%w: token rejected", types.ErrAuth),
		},
	}
	s := NewScraper(forum, []string{"locked", "never"}, scrapingConfig())

	_, err := s.ScrapeAll(context.Background())
	if !errors.Is(err, types.ErrAuth) {
		t.Fatalf("want ErrAuth, got %v", err)
	}
}

func TestScrapeAllCountsRequests(t *testing.T) {
	forum := &scriptedForum{posts: map[string][]types.Post{
		"sub": {{ID: "p1"}},
	}}
	s := NewScraper(forum, []string{"sub"}, scrapingConfig())

	if _, err := s.ScrapeAll(context.Background()); err != nil {
		t.Fatalf("ScrapeAll: %v", err)
	}
	// One listing call, one comment call, one reply call per comment.
	if got := s.Requests(); got < 2 {
		t.Fatalf("request counter not tracking calls, got %d", got)
	}
}
