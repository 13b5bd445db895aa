package scrape

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"whatsup/pkg/types"
)

// fakeForum serves synthetic posts and bottomless comment trees: every
// comment has fanout direct replies unless an error is injected.
type fakeForum struct {
	fanout      int
	failReplies map[string]error // commentID -> error
	calls       atomic.Int64
}

func (f *fakeForum) TopPosts(ctx context.Context, subreddit string, limit int, timeFilter string) ([]types.Post, error) {
	f.calls.Add(1)
	posts := make([]types.Post, 0, limit)
	for i := 0; i < limit; i++ {
		posts = append(posts, types.Post{ID: fmt.Sprintf("%s-p%d", subreddit, i), Subreddit: subreddit})
	}
	return posts, nil
}

func (f *fakeForum) TopComments(ctx context.Context, postID string, limit int) ([]types.Comment, error) {
	f.calls.Add(1)
	return f.children(postID + "-c"), nil
}

func (f *fakeForum) Replies(ctx context.Context, postID, commentID string, limit int) ([]types.Comment, error) {
	f.calls.Add(1)
	if err, ok := f.failReplies[commentID]; ok {
		return nil, err
	}
	return f.children(commentID + "."), nil
}

func (f *fakeForum) SearchCommunities(ctx context.Context, query string, limit int) ([]types.SubredditInfo, error) {
	return nil, nil
}

func (f *fakeForum) children(prefix string) []types.Comment {
	out := make([]types.Comment, 0, f.fanout)
	for i := 0; i < f.fanout; i++ {
		out = append(out, types.Comment{ID: fmt.Sprintf("%s%d", prefix, i), Body: "text", Score: i})
	}
	return out
}

// maxBreadthDepth walks a collected forest and reports the widest node and
// the deepest reply level (top-level comments are depth 0).
func maxBreadthDepth(comments []types.Comment) (breadth, depth int) {
	var walk func(c types.Comment, d int)
	walk = func(c types.Comment, d int) {
		if d > depth {
			depth = d
		}
		if len(c.Replies) > breadth {
			breadth = len(c.Replies)
		}
		for _, r := range c.Replies {
			walk(r, d+1)
		}
	}
	for _, c := range comments {
		walk(c, 0)
	}
	return breadth, depth
}

func TestCollectRespectsBounds(t *testing.T) {
	forum := &fakeForum{fanout: 10}
	var requests atomic.Int64
	col := NewCollector(forum, &requests)

	tree := col.Collect(context.Background(), "p1", 4, 2, 3)

	if len(tree) != 4 {
		t.Fatalf("top-level = %d, want 4", len(tree))
	}
	breadth, depth := maxBreadthDepth(tree)
	if breadth > 3 {
		t.Fatalf("max children per node = %d, want <= 3", breadth)
	}
	if depth > 2 {
		t.Fatalf("max reply depth = %d, want <= 2", depth)
	}
	if requests.Load() == 0 {
		t.Fatal("request counter not incremented")
	}
}

func TestCollectFailOpenBranch(t *testing.T) {
	forum := &fakeForum{
		fanout: 2,
		failReplies: map[string]error{
			"p1-c0": fmt.Errorf("%w: timeout", types.ErrTransient),
		},
	}
	var requests atomic.Int64
	col := NewCollector(forum, &requests)

	tree := col.Collect(context.Background(), "p1", 2, 1, 2)
	if len(tree) != 2 {
		t.Fatalf("top-level = %d, want 2", len(tree))
	}
	if len(tree[0].Replies) != 0 {
		t.Fatalf("failed branch should be empty, got %d replies", len(tree[0].Replies))
	}
	if len(tree[1].Replies) != 2 {
		t.Fatalf("sibling branch should be unaffected, got %d replies", len(tree[1].Replies))
	}
}

func TestCachedTreesFetchOnce(t *testing.T) {
	forum := &fakeForum{fanout: 2}
	var requests atomic.Int64
	col := NewCollector(forum, &requests)
	trees, err := NewCachedTrees(col, 2, 1, 2, 16)
	if err != nil {
		t.Fatalf("NewCachedTrees: %v", err)
	}

	ctx := context.Background()
	if _, err := trees.Tree(ctx, "p1"); err != nil {
		t.Fatalf("Tree: %v", err)
	}
	first := forum.calls.Load()
	if _, err := trees.Tree(ctx, "p1"); err != nil {
		t.Fatalf("Tree (cached): %v", err)
	}
	if forum.calls.Load() != first {
		t.Fatalf("second Tree call hit the network: %d -> %d calls", first, forum.calls.Load())
	}
}
