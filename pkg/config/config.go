// Package config loads and validates the pipeline configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scraping bounds the volume of forum requests per run.
type Scraping struct {
	PostsLimit    int    `json:"posts_limit"`
	CommentsLimit int    `json:"comments_limit"`
	RepliesLimit  int    `json:"replies_limit"`
	CommentDepth  int    `json:"comment_depth"`
	TimeFilter    string `json:"time_filter"`
}

// Classifier configures the content-classification stage.
type Classifier struct {
	Model                string `json:"model"`
	MaxCommentsPerPost   int    `json:"max_comments_per_post"`
	MaxRepliesPerComment int    `json:"max_replies_per_comment"`
	BatchSize            int    `json:"batch_size"`
	MaxInFlight          int    `json:"max_in_flight"`
}

// Thresholds are the engagement minimums a post must meet before it is
// considered for classification. MinUpvoteRatio is a percentage (0-100).
type Thresholds struct {
	MinScore       int     `json:"min_score"`
	MinComments    int     `json:"min_comments"`
	MinUpvoteRatio float64 `json:"min_upvote_ratio"`
}

// Paths names the run artifacts.
type Paths struct {
	CorpusJSON string `json:"corpus_json"`
	CorpusText string `json:"corpus_text"`
	Themes     string `json:"themes"`
	Summaries  string `json:"summaries"`
	Digest     string `json:"digest"`
	HistoryDB  string `json:"history_db"`
}

// UserProfile describes the target reader of the digest.
type UserProfile struct {
	Who      string `json:"who"`
	Interest string `json:"interest"`
	Intent   string `json:"intent"`
}

// Config is the full configuration surface of a pipeline run.
type Config struct {
	Subreddits  []string    `json:"subreddits"`
	Scraping    Scraping    `json:"scraping"`
	Classifier  Classifier  `json:"classifier"`
	Thresholds  Thresholds  `json:"thresholds"`
	Paths       Paths       `json:"paths"`
	UserProfile UserProfile `json:"user_profile"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Scraping: Scraping{
			PostsLimit:    5,
			CommentsLimit: 5,
			RepliesLimit:  5,
			CommentDepth:  5,
			TimeFilter:    "day",
		},
		Classifier: Classifier{
			Model:                "gemini-2.5-flash",
			MaxCommentsPerPost:   10,
			MaxRepliesPerComment: 5,
			BatchSize:            5,
			MaxInFlight:          8,
		},
		Thresholds: Thresholds{
			MinScore:       20,
			MinComments:    5,
			MinUpvoteRatio: 70,
		},
		Paths: Paths{
			CorpusJSON: "reddit_data.json",
			CorpusText: "reddit_data.txt",
			Themes:     "topic_recommendations.json",
			Summaries:  "theme_summaries.json",
			Digest:     "digest.md",
			HistoryDB:  "reddit_data.db",
		},
	}
}

// Load reads the config file at path over the defaults and validates the
// result. Validation fails fast so a bad file never reaches the pipeline.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	if len(c.Subreddits) == 0 {
		return fmt.Errorf("config: subreddits list is empty")
	}
	if c.Scraping.PostsLimit < 1 {
		return fmt.Errorf("config: posts_limit must be >= 1, got %d", c.Scraping.PostsLimit)
	}
	if c.Scraping.CommentsLimit < 0 || c.Scraping.RepliesLimit < 0 || c.Scraping.CommentDepth < 0 {
		return fmt.Errorf("config: comment limits must not be negative")
	}
	switch c.Scraping.TimeFilter {
	case "hour", "day", "week", "month", "year", "all":
	default:
		return fmt.Errorf("config: unknown time_filter %q", c.Scraping.TimeFilter)
	}
	if c.Classifier.BatchSize < 1 {
		return fmt.Errorf("config: classifier batch_size must be >= 1, got %d", c.Classifier.BatchSize)
	}
	if c.Classifier.MaxInFlight < 1 {
		return fmt.Errorf("config: classifier max_in_flight must be >= 1, got %d", c.Classifier.MaxInFlight)
	}
	if c.Thresholds.MinUpvoteRatio < 0 || c.Thresholds.MinUpvoteRatio > 100 {
		return fmt.Errorf("config: min_upvote_ratio must be a percentage in [0,100], got %v", c.Thresholds.MinUpvoteRatio)
	}
	return nil
}

// Save writes the config back to path, preserving indentation for hand edits.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
