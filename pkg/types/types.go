// Package types defines the shared records of the whatsup pipeline.
package types

// Comment is a single comment node. Replies are nested comments, so a
// post's comment section is an ordered forest of Comment trees.
type Comment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author,omitempty"` // empty when the author account is deleted
	Body       string    `json:"body"`
	Score      int       `json:"score"`
	CreatedUTC float64   `json:"created_utc"`
	Replies    []Comment `json:"replies"`
}

// Post is one scraped submission together with its collected comment trees.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SelfText    string    `json:"selftext"`
	URL         string    `json:"url"`
	Permalink   string    `json:"permalink"`
	Subreddit   string    `json:"subreddit"`
	Author      string    `json:"author"`
	Score       int       `json:"score"`
	UpvoteRatio float64   `json:"upvote_ratio"`
	NumComments int       `json:"num_comments"`
	CreatedUTC  float64   `json:"created_utc"`
	Comments    []Comment `json:"comments"`

	// IsInformative is set by the content classifier. nil means the post
	// has not been classified yet.
	IsInformative *bool `json:"is_informative,omitempty"`
}

// CorpusPost is the flattened form of a Post written to the corpus artifact.
// Comments holds the rendered comment-tree text, not the raw tree.
type CorpusPost struct {
	PostID        string  `json:"post_id"`
	Content       string  `json:"post_content"`
	URL           string  `json:"post_url"`
	Score         int     `json:"score"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	Author        string  `json:"author"`
	CreatedUTC    float64 `json:"created_utc"`
	NumComments   int     `json:"num_comments"`
	Subreddit     string  `json:"subreddit"`
	Comments      string  `json:"comments"`
	IsInformative *bool   `json:"is_informative,omitempty"`
}

// Theme is a named cluster of posts produced by the extraction stage.
type Theme struct {
	Theme   string   `json:"theme"`
	PostIDs []string `json:"post_ids"`
}

// ThemeList is the topic-recommendations artifact.
type ThemeList struct {
	Themes []Theme `json:"themes"`
}

// ThemeSummary is one entry of the theme-summaries ledger. The post pass
// fills PostSummary, the comment pass fills CommentSummary; entries are
// upserted by Theme so repeated runs never duplicate a theme.
type ThemeSummary struct {
	Theme          string   `json:"theme"`
	PostIDs        []string `json:"post_ids"`
	PostSummary    string   `json:"post_summary,omitempty"`
	CommentSummary string   `json:"comment_summary,omitempty"`
}

// ScrapeStats reports the size of a scraped corpus.
type ScrapeStats struct {
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
	Replies  int `json:"replies"`
}

// SubredditInfo describes one community found by keyword search.
type SubredditInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Subscribers int    `json:"subscribers"`
	URL         string `json:"url"`
}

// ReaderProfile is the generated description of the target reader.
type ReaderProfile struct {
	Profile        string `json:"user_profile"`
	ExpertiseLevel string `json:"expertise_level"`
	Reason         string `json:"reason"`
}
