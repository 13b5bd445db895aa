// Package classify decides which posts are worth summarizing: a cheap
// engagement filter first, then a model-backed informativeness check.
package classify

import "whatsup/pkg/types"

// Filter keeps posts meeting every engagement threshold. Bounds are
// inclusive, minUpvoteRatio is a percentage compared against the post's
// ratio scaled from [0,1], and input order is preserved. Pure, no I/O.
func Filter(posts []types.Post, minScore, minComments int, minUpvoteRatio float64) []types.Post {
	out := make([]types.Post, 0, len(posts))
	for _, post := range posts {
		if post.Score >= minScore &&
			post.NumComments >= minComments &&
			post.UpvoteRatio*100 >= minUpvoteRatio {
			out = append(out, post)
		}
	}
	return out
}
