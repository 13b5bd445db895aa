package scrape

import "whatsup/pkg/types"

// Count walks the corpus and totals posts, top-level comments and replies.
// Replies are all descendant nodes below the top level, counted by
// depth-first traversal over the comment trees.
func Count(posts []types.Post) types.ScrapeStats {
	stats := types.ScrapeStats{Posts: len(posts)}
	for _, post := range posts {
		stats.Comments += len(post.Comments)
		for _, comment := range post.Comments {
			stats.Replies += countReplies(comment)
		}
	}
	return stats
}

func countReplies(c types.Comment) int {
	n := len(c.Replies)
	for _, reply := range c.Replies {
		n += countReplies(reply)
	}
	return n
}
