package scrape

import (
	"testing"

	"whatsup/pkg/types"
)

func TestCountNestedReplies(t *testing.T) {
	// 2 posts, each with 2 top-level comments, each comment with 1 reply.
	reply := types.Comment{ID: "r", Body: "reply"}
	post := types.Post{Comments: []types.Comment{
		{ID: "c1", Replies: []types.Comment{reply}},
		{ID: "c2", Replies: []types.Comment{reply}},
	}}
	stats := Count([]types.Post{post, post})

	want := types.ScrapeStats{Posts: 2, Comments: 4, Replies: 4}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestCountDeepReplies(t *testing.T) {
	// A single chain c -> r1 -> r2 -> r3 counts three replies.
	chain := types.Comment{ID: "c", Replies: []types.Comment{
		{ID: "r1", Replies: []types.Comment{
			{ID: "r2", Replies: []types.Comment{{ID: "r3"}}},
		}},
	}}
	stats := Count([]types.Post{{Comments: []types.Comment{chain}}})
	if stats.Replies != 3 {
		t.Fatalf("replies = %d, want 3", stats.Replies)
	}
}

func TestCountEmptyCorpus(t *testing.T) {
	if stats := Count(nil); stats != (types.ScrapeStats{}) {
		t.Fatalf("stats = %+v, want zero", stats)
	}
}
