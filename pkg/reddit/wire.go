package reddit

import (
	"encoding/json"

	"whatsup/pkg/types"
)

// Reddit "thing" kinds seen in listings. kindMore is the "load more
// comments" placeholder, which the truncation policy always discards.
const (
	kindComment   = "t1"
	kindPost      = "t3"
	kindSubreddit = "t5"
	kindMore      = "more"
)

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingThing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

// commentThread is the two-listing payload of /comments/{id}.json:
// the post itself followed by the comment listing.
type commentThread []listingThing

type postData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (p postData) toPost() types.Post {
	return types.Post{
		ID:          p.ID,
		Title:       p.Title,
		SelfText:    p.SelfText,
		URL:         p.URL,
		Permalink:   p.Permalink,
		Subreddit:   p.Subreddit,
		Author:      p.Author,
		Score:       p.Score,
		UpvoteRatio: p.UpvoteRatio,
		NumComments: p.NumComments,
		CreatedUTC:  p.CreatedUTC,
	}
}

type commentData struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`

	// Replies is a nested listing when present, or "" when absent.
	Replies json.RawMessage `json:"replies"`
}

func (c commentData) toComment() types.Comment {
	author := c.Author
	if author == "[deleted]" {
		author = ""
	}
	return types.Comment{
		ID:         c.ID,
		Author:     author,
		Body:       c.Body,
		Score:      c.Score,
		CreatedUTC: c.CreatedUTC,
	}
}

type subredditData struct {
	DisplayName       string `json:"display_name"`
	PublicDescription string `json:"public_description"`
	Subscribers       int    `json:"subscribers"`
}

// flattenComments extracts up to limit comments from a listing, skipping
// "more" placeholders and leaving reply lists empty.
func flattenComments(lst listingThing, limit int) []types.Comment {
	var out []types.Comment
	for _, child := range lst.Data.Children {
		if limit > 0 && len(out) >= limit {
			break
		}
		if child.Kind != kindComment {
			continue
		}
		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			continue
		}
		out = append(out, cd.toComment())
	}
	return out
}
