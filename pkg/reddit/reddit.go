// Package reddit is the forum-API collaborator: OAuth authentication and
// the handful of read-only calls the pipeline needs. Network and rate-limit
// failures are distinguishable (types.ErrTransient) from empty results, and
// credential problems surface as types.ErrAuth before any scrape begins.
package reddit

import (
	"context"

	"whatsup/pkg/types"
)

// API is the contract the pipeline core depends on.
type API interface {
	// TopPosts returns up to limit top posts for the community within the
	// given time window ("hour", "day", "week", "month", "year", "all").
	// The returned posts carry no comment trees; the collector builds those.
	TopPosts(ctx context.Context, subreddit string, limit int, timeFilter string) ([]types.Post, error)

	// TopComments returns up to limit top-level comments of a post, with
	// "load more" placeholders discarded and reply lists left empty.
	TopComments(ctx context.Context, postID string, limit int) ([]types.Comment, error)

	// Replies returns up to limit direct replies of a comment, with
	// placeholders discarded and nested reply lists left empty.
	Replies(ctx context.Context, postID, commentID string, limit int) ([]types.Comment, error)

	// SearchCommunities finds communities matching the query.
	SearchCommunities(ctx context.Context, query string, limit int) ([]types.SubredditInfo, error)
}
