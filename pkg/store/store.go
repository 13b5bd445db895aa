// Package store keeps a history of community searches and the posts
// collected for them in a local SQLite database.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"whatsup/pkg/types"
)

//go:embed schema.sql
var schema string

// Search is one recorded community search together with the posts
// collected under it.
type Search struct {
	ID        string              `json:"id"`
	Keyword   string              `json:"keyword"`
	CreatedAt time.Time           `json:"created_at"`
	Subreddit types.SubredditInfo `json:"subreddit"`
	Posts     []types.Post        `json:"posts"`
}

// Store handles database operations.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath, creating the schema if needed.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", types.ErrPersist, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable foreign keys: %v", types.ErrPersist, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", types.ErrPersist, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSearch stores one row per discovered community and returns the
// generated search IDs in the same order as results.
func (s *Store) RecordSearch(keyword string, results []types.SubredditInfo) ([]string, error) {
	ids := make([]string, 0, len(results))
	for _, info := range results {
		data, err := json.Marshal(info)
		if err != nil {
			return nil, fmt.Errorf("marshal subreddit: %w", err)
		}
		id := uuid.New().String()
		_, err = s.db.Exec(
			"INSERT INTO searches (id, keyword, created_at, subreddit) VALUES (?, ?, ?, ?)",
			id, keyword, time.Now().Format(time.RFC3339), string(data),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: insert search: %v", types.ErrPersist, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RecordPosts stores posts under a search. A post already recorded for
// the same search is skipped silently.
func (s *Store) RecordPosts(searchID string, posts []types.Post) error {
	for _, post := range posts {
		data, err := json.Marshal(post)
		if err != nil {
			return fmt.Errorf("marshal post: %w", err)
		}
		_, err = s.db.Exec(
			"INSERT OR IGNORE INTO search_posts (id, post_id, search_id, created_at, post_data) VALUES (?, ?, ?, ?, ?)",
			uuid.New().String(), post.ID, searchID, time.Now().Format(time.RFC3339), string(data),
		)
		if err != nil {
			return fmt.Errorf("%w: insert post: %v", types.ErrPersist, err)
		}
	}
	return nil
}

// RecentSearches returns up to limit recent searches, newest first,
// each with its recorded posts.
func (s *Store) RecentSearches(limit int) ([]Search, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.keyword, s.created_at, s.subreddit, p.post_data
		FROM searches s
		LEFT JOIN search_posts p ON s.id = p.search_id
		ORDER BY s.created_at DESC, p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: query searches: %v", types.ErrPersist, err)
	}
	defer rows.Close()

	var order []string
	byID := make(map[string]*Search)
	for rows.Next() {
		var (
			id, keyword, createdAt, subreddit string
			postData                          sql.NullString
		)
		if err := rows.Scan(&id, &keyword, &createdAt, &subreddit, &postData); err != nil {
			return nil, fmt.Errorf("%w: scan search: %v", types.ErrPersist, err)
		}
		entry, ok := byID[id]
		if !ok {
			entry = &Search{ID: id, Keyword: keyword}
			if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
				entry.CreatedAt = ts
			}
			if err := json.Unmarshal([]byte(subreddit), &entry.Subreddit); err != nil {
				return nil, fmt.Errorf("%w: decode subreddit: %v", types.ErrIntegrity, err)
			}
			byID[id] = entry
			order = append(order, id)
		}
		if postData.Valid {
			var post types.Post
			if err := json.Unmarshal([]byte(postData.String), &post); err != nil {
				return nil, fmt.Errorf("%w: decode post: %v", types.ErrIntegrity, err)
			}
			entry.Posts = append(entry.Posts, post)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate searches: %v", types.ErrPersist, err)
	}

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	out := make([]Search, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}
