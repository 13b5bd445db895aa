package scrape

import (
	"fmt"
	"strings"
	"time"

	"whatsup/pkg/types"
)

// FormatCommentTree renders one comment and its replies as an indented
// tree for the human-readable dump.
func FormatCommentTree(c types.Comment, indent int) string {
	pad := strings.Repeat(" ", indent)
	author := c.Author
	if author == "" {
		author = "[deleted]"
	}
	lines := []string{
		fmt.Sprintf("\n%s└─ %s", pad, c.Body),
		fmt.Sprintf("%s   Score: %d | Author: %s", pad, c.Score, author),
	}
	for _, reply := range c.Replies {
		lines = append(lines, FormatCommentTree(reply, indent+4))
	}
	return strings.Join(lines, "\n")
}

// RenderCommentText renders comment trees for the summarizer prompt: each
// line carries a score prefix and indentation reflecting reply depth.
func RenderCommentText(comments []types.Comment) string {
	var b strings.Builder
	for _, c := range comments {
		renderComment(&b, c, 0)
	}
	return b.String()
}

func renderComment(b *strings.Builder, c types.Comment, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	if depth > 0 {
		b.WriteString("↳ ")
	}
	fmt.Fprintf(b, "[Score: %d] %s\n", c.Score, c.Body)
	for _, reply := range c.Replies {
		renderComment(b, reply, depth+1)
	}
}

// Flatten converts scraped posts into the corpus artifact records. A post
// with no body text falls back to its title, and comment trees are
// rendered into a single text blob per post.
func Flatten(posts []types.Post) []types.CorpusPost {
	out := make([]types.CorpusPost, 0, len(posts))
	for _, post := range posts {
		content := post.SelfText
		if content == "" {
			content = post.Title
		}
		trees := make([]string, 0, len(post.Comments))
		for _, c := range post.Comments {
			trees = append(trees, FormatCommentTree(c, 2))
		}
		out = append(out, types.CorpusPost{
			PostID:        post.ID,
			Content:       content,
			URL:           post.URL,
			Score:         post.Score,
			UpvoteRatio:   post.UpvoteRatio,
			Author:        post.Author,
			CreatedUTC:    post.CreatedUTC,
			NumComments:   post.NumComments,
			Subreddit:     post.Subreddit,
			Comments:      strings.Join(trees, "\n"),
			IsInformative: post.IsInformative,
		})
	}
	return out
}

// FormatText renders the whole scrape as a readable report, grouped by
// community in scrape order.
func FormatText(posts []types.Post, requests int64) string {
	stats := Count(posts)

	var b strings.Builder
	fmt.Fprintf(&b, "=== Reddit Data Scrape - %s ===\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Posts: %d\n", stats.Posts)
	fmt.Fprintf(&b, "Total Comments: %d\n", stats.Comments)
	fmt.Fprintf(&b, "Total Replies: %d\n", stats.Replies)
	fmt.Fprintf(&b, "Total API Requests: %d\n", requests)
	b.WriteString("\n" + strings.Repeat("=", 80) + "\n")

	var current string
	index := 0
	for _, post := range posts {
		if post.Subreddit != current {
			current = post.Subreddit
			index = 0
			fmt.Fprintf(&b, "\nTop posts from r/%s:\n", current)
			b.WriteString(strings.Repeat("-", 80) + "\n")
		}
		index++
		fmt.Fprintf(&b, "\n%d. %s\n", index, post.Title)
		fmt.Fprintf(&b, "Score: %d | Comments: %d\n", post.Score, post.NumComments)
		fmt.Fprintf(&b, "URL: %s\n", post.URL)
		b.WriteString("\nComment thread:")
		for _, c := range post.Comments {
			b.WriteString(FormatCommentTree(c, 2))
		}
		b.WriteString("\n" + strings.Repeat("-", 80) + "\n")
	}
	return b.String()
}
