package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"whatsup/pkg/config"
	"whatsup/pkg/reddit"
	"whatsup/pkg/types"
)

// Scraper pulls the day's top posts with comment trees for every
// configured community.
type Scraper struct {
	api         reddit.API
	cfg         config.Scraping
	communities []string
	collector   *Collector
	requests    atomic.Int64
}

// NewScraper creates a scraper over the given communities.
func NewScraper(api reddit.API, communities []string, cfg config.Scraping) *Scraper {
	s := &Scraper{
		api:         api,
		cfg:         cfg,
		communities: communities,
	}
	s.collector = NewCollector(api, &s.requests)
	return s
}

// Collector exposes the comment-tree collector sharing this scraper's
// request counter.
func (s *Scraper) Collector() *Collector { return s.collector }

// Requests reports the number of forum API calls made so far.
func (s *Scraper) Requests() int64 { return s.requests.Load() }

// ScrapeAll fetches top posts and their comment trees from every
// configured community, preserving community order. A failure on one
// community is logged and skipped; an authentication failure aborts the
// whole scrape since every later call would fail the same way.
func (s *Scraper) ScrapeAll(ctx context.Context) ([]types.Post, error) {
	var all []types.Post
	for _, sub := range s.communities {
		log.Printf("scrape: r/%s...", sub)
		s.requests.Add(1)
		posts, err := s.api.TopPosts(ctx, sub, s.cfg.PostsLimit, s.cfg.TimeFilter)
		if err != nil {
			if errors.Is(err, types.ErrAuth) {
				return nil, fmt.Errorf("scrape r/%s: %w", sub, err)
			}
			log.Printf("scrape: r/%s: %v", sub, err)
			continue
		}
		for i := range posts {
			posts[i].Comments = s.collector.Collect(ctx, posts[i].ID,
				s.cfg.CommentsLimit, s.cfg.CommentDepth, s.cfg.RepliesLimit)
		}
		all = append(all, posts...)
	}
	return all, nil
}
