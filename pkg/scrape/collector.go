// Package scrape acquires the post corpus: top posts per community plus a
// bounded comment tree for each post.
package scrape

import (
	"context"
	"log"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"whatsup/pkg/reddit"
	"whatsup/pkg/types"
)

// Collector retrieves bounded-depth, bounded-breadth comment trees.
//
// Every network failure is fail-open: the failing branch is logged and
// treated as having no replies, and sibling branches continue. No retries
// are attempted in-process.
type Collector struct {
	api      reddit.API
	requests *atomic.Int64
}

// NewCollector creates a collector. requests is a shared counter of forum
// API calls, used for reporting only.
func NewCollector(api reddit.API, requests *atomic.Int64) *Collector {
	return &Collector{api: api, requests: requests}
}

// Collect fetches up to maxTopLevel top-level comments for a post and, for
// each, recursively fetches replies: at most maxRepliesPerLevel children
// per node, descending while the depth budget lasts. "Load more" markers
// are discarded by the API layer; no further pagination is attempted.
func (c *Collector) Collect(ctx context.Context, postID string, maxTopLevel, maxDepth, maxRepliesPerLevel int) []types.Comment {
	c.requests.Add(1)
	top, err := c.api.TopComments(ctx, postID, maxTopLevel)
	if err != nil {
		log.Printf("scrape: comments for post %s: %v", postID, err)
		return nil
	}
	if len(top) > maxTopLevel {
		top = top[:maxTopLevel]
	}
	for i := range top {
		top[i].Replies = c.replies(ctx, postID, top[i].ID, maxDepth, maxRepliesPerLevel)
	}
	return top
}

func (c *Collector) replies(ctx context.Context, postID, commentID string, depth, maxPerLevel int) []types.Comment {
	if depth <= 0 {
		return nil
	}
	c.requests.Add(1)
	children, err := c.api.Replies(ctx, postID, commentID, maxPerLevel)
	if err != nil {
		log.Printf("scrape: replies for comment %s: %v", commentID, err)
		return nil
	}
	if len(children) > maxPerLevel {
		children = children[:maxPerLevel]
	}
	for i := range children {
		children[i].Replies = c.replies(ctx, postID, children[i].ID, depth-1, maxPerLevel)
	}
	return children
}

// TreeSource supplies a post's comment trees to the comment-summary pass.
type TreeSource interface {
	Tree(ctx context.Context, postID string) ([]types.Comment, error)
}

// CachedTrees wraps a Collector with fixed limits and an LRU cache so a
// post appearing in several themes is fetched at most once per run.
type CachedTrees struct {
	collector   *Collector
	maxTopLevel int
	maxDepth    int
	maxReplies  int
	cache       *lru.Cache[string, []types.Comment]
}

// NewCachedTrees creates a caching tree source holding up to size trees.
func NewCachedTrees(collector *Collector, maxTopLevel, maxDepth, maxReplies, size int) (*CachedTrees, error) {
	cache, err := lru.New[string, []types.Comment](size)
	if err != nil {
		return nil, err
	}
	return &CachedTrees{
		collector:   collector,
		maxTopLevel: maxTopLevel,
		maxDepth:    maxDepth,
		maxReplies:  maxReplies,
		cache:       cache,
	}, nil
}

// Tree implements TreeSource.
func (ct *CachedTrees) Tree(ctx context.Context, postID string) ([]types.Comment, error) {
	if tree, ok := ct.cache.Get(postID); ok {
		return tree, nil
	}
	tree := ct.collector.Collect(ctx, postID, ct.maxTopLevel, ct.maxDepth, ct.maxReplies)
	ct.cache.Add(postID, tree)
	return tree, nil
}
