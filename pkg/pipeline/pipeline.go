// Package pipeline sequences the full digest run: scrape the configured
// communities, filter and classify the posts, extract themes, summarize
// each theme in two passes, and render the markdown digest.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"whatsup/pkg/artifact"
	"whatsup/pkg/classify"
	"whatsup/pkg/config"
	"whatsup/pkg/llm"
	"whatsup/pkg/reddit"
	"whatsup/pkg/report"
	"whatsup/pkg/scrape"
	"whatsup/pkg/store"
	"whatsup/pkg/themes"
	"whatsup/pkg/types"
)

// treeCacheSize bounds the number of comment trees held for the
// comment-summary pass.
const treeCacheSize = 256

// Driver runs the pipeline stages. Stages can be run individually or
// end to end with Run.
type Driver struct {
	cfg        *config.Config
	api        reddit.API
	completer  llm.Completer
	scraper    *scrape.Scraper
	classifier *classify.Classifier
	history    *store.Store
}

// Option configures a Driver.
type Option func(*Driver)

// WithHistory records every scrape into the given history store.
func WithHistory(h *store.Store) Option {
	return func(d *Driver) { d.history = h }
}

// New creates a driver over the given forum API and completer.
func New(cfg *config.Config, api reddit.API, completer llm.Completer, opts ...Option) *Driver {
	d := &Driver{
		cfg:        cfg,
		api:        api,
		completer:  completer,
		scraper:    scrape.NewScraper(api, cfg.Subreddits, cfg.Scraping),
		classifier: classify.NewClassifier(completer, cfg.Classifier.MaxInFlight),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scrape collects posts and comment trees, classifies them, and writes
// the corpus artifacts. Theme and summary artifacts from earlier runs
// are removed since they no longer describe the corpus.
func (d *Driver) Scrape(ctx context.Context) error {
	posts, err := d.scraper.ScrapeAll(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return fmt.Errorf("%w: no posts scraped", types.ErrIntegrity)
	}
	log.Printf("pipeline: scraped %d posts (%d api requests)", len(posts), d.scraper.Requests())

	if err := artifact.WriteText(d.cfg.Paths.CorpusText, scrape.FormatText(posts, d.scraper.Requests())); err != nil {
		return err
	}

	kept := classify.Filter(posts,
		d.cfg.Thresholds.MinScore,
		d.cfg.Thresholds.MinComments,
		d.cfg.Thresholds.MinUpvoteRatio)
	log.Printf("pipeline: %d of %d posts passed engagement thresholds", len(kept), len(posts))

	classified, err := d.classifier.Classify(ctx, kept, d.cfg.Classifier.BatchSize)
	if err != nil {
		return err
	}
	if n := d.classifier.ItemFailures() + d.classifier.BatchFailures(); n > 0 {
		log.Printf("pipeline: %d classification failures, affected posts marked not informative", n)
	}

	corpus := scrape.Flatten(classified)
	if err := artifact.WriteJSON(d.cfg.Paths.CorpusJSON, corpus); err != nil {
		return err
	}
	for _, stale := range []string{d.cfg.Paths.Themes, d.cfg.Paths.Summaries, d.cfg.Paths.Digest} {
		if err := artifact.Remove(stale); err != nil {
			return err
		}
	}

	if d.history != nil {
		if err := d.recordRun(posts); err != nil {
			log.Printf("pipeline: history not recorded: %v", err)
		}
	}
	return nil
}

func (d *Driver) recordRun(posts []types.Post) error {
	bySub := make(map[string][]types.Post)
	for _, post := range posts {
		bySub[post.Subreddit] = append(bySub[post.Subreddit], post)
	}
	for _, sub := range d.cfg.Subreddits {
		got := bySub[sub]
		if len(got) == 0 {
			continue
		}
		ids, err := d.history.RecordSearch(sub, []types.SubredditInfo{{Name: sub}})
		if err != nil {
			return err
		}
		if err := d.history.RecordPosts(ids[0], got); err != nil {
			return err
		}
	}
	return nil
}

// ExtractThemes reads the corpus, clusters the informative posts into
// themes, and writes the themes artifact.
func (d *Driver) ExtractThemes(ctx context.Context) error {
	var corpus []types.CorpusPost
	if err := artifact.ReadJSON(d.cfg.Paths.CorpusJSON, &corpus); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	var informative []types.CorpusPost
	for _, post := range corpus {
		if post.IsInformative != nil && *post.IsInformative {
			informative = append(informative, post)
		}
	}
	if len(informative) == 0 {
		return fmt.Errorf("%w: no informative posts in corpus", types.ErrIntegrity)
	}
	log.Printf("pipeline: extracting themes from %d informative posts", len(informative))

	list, err := themes.NewExtractor(d.completer).Extract(ctx, informative)
	if err != nil {
		return err
	}
	return artifact.WriteJSON(d.cfg.Paths.Themes, list)
}

// Summarize runs the post-summary pass over every theme, then the
// comment-summary pass over every ledger entry. A theme that fails is
// logged and skipped so the others still complete.
func (d *Driver) Summarize(ctx context.Context) error {
	var list types.ThemeList
	if err := artifact.ReadJSON(d.cfg.Paths.Themes, &list); err != nil {
		return fmt.Errorf("load themes: %w", err)
	}

	trees, err := scrape.NewCachedTrees(d.scraper.Collector(),
		d.cfg.Classifier.MaxCommentsPerPost,
		d.cfg.Scraping.CommentDepth,
		d.cfg.Classifier.MaxRepliesPerComment,
		treeCacheSize)
	if err != nil {
		return err
	}
	ledger := themes.NewLedger(d.cfg.Paths.Summaries)
	summarizer := themes.NewSummarizer(d.completer, d.cfg.Paths.CorpusJSON, d.cfg.Paths.Themes, ledger, trees)

	summarized := 0
	for i := range list.Themes {
		if _, err := summarizer.SummarizeThemePosts(ctx, i); err != nil {
			log.Printf("pipeline: post summary for theme %q: %v", list.Themes[i].Theme, err)
			continue
		}
		summarized++
	}
	if summarized == 0 {
		return fmt.Errorf("%w: every post-summary pass failed", types.ErrIntegrity)
	}

	entries, err := ledger.Load()
	if err != nil {
		return err
	}
	for i := range entries {
		if _, err := summarizer.SummarizeThemeComments(ctx, i); err != nil {
			log.Printf("pipeline: comment summary for theme %q: %v", entries[i].Theme, err)
		}
	}
	return nil
}

// Export renders the markdown digest from the theme summaries.
func (d *Driver) Export() error {
	return report.WriteDigest(d.cfg.Paths.Summaries, d.cfg.Paths.Digest)
}

// Run executes the full pipeline end to end.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Scrape(ctx); err != nil {
		return err
	}
	if err := d.ExtractThemes(ctx); err != nil {
		return err
	}
	if err := d.Summarize(ctx); err != nil {
		return err
	}
	return d.Export()
}
