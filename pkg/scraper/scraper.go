package scraper

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"boorudl/internal/downloader"
	"boorudl/pkg/danbooru"
	apperrors "boorudl/pkg/errors"
	"boorudl/pkg/logger"
	"boorudl/pkg/storage"
)

// State tracks the pipeline through its stages.
type State int

const (
	StateInit State = iota
	StatePagesCounted
	StatePostsFetched
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StatePagesCounted:
		return "pages_counted"
	case StatePostsFetched:
		return "posts_fetched"
	case StateDone:
		return "done"
	default:
		return "aborted"
	}
}

// Options is the run configuration handed to the pipeline by its
// caller. It is read-only; the only thing the pipeline decides on its
// own is falling back to FallbackDir when OutputDir cannot be created.
type Options struct {
	Tags                []string
	OutputDir           string
	FallbackDir         string
	Exclusions          danbooru.Exclusions
	PageConcurrency     int
	ConcurrentDownloads int

	// OnPostsFetched, when set, is called once with the filtered post
	// count before any download starts.
	OnPostsFetched func(total int)

	// OnResult, when set, receives every download outcome as it
	// arrives. Progress rendering hangs off this hook.
	OnResult func(downloader.Result)
}

// Report is the observable outcome of a completed run.
type Report struct {
	TotalPages  int
	FailedPages int
	Posts       int
	OutputDir   string
	Summary     downloader.Summary
}

// Scraper sequences page counting, metadata fetching and media
// download for one tag query.
type Scraper struct {
	client BoardClient
	logger logger.Logger

	mu    sync.Mutex
	state State
}

// New creates a pipeline over the given board client.
func New(client BoardClient, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client: client,
		logger: log,
		state:  StateInit,
	}
}

// State returns the pipeline's current stage.
func (s *Scraper) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scraper) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.DebugWithFields("pipeline state change", map[string]interface{}{
		"state": state.String(),
	})
}

// Run executes the full pipeline. Terminal failures (no results for the
// tags, nothing left after filtering, unusable output directory) abort
// the run and are returned; page and per-item failures are absorbed and
// show up in the report counts.
func (s *Scraper) Run(ctx context.Context, opts Options) (*Report, error) {
	s.setState(StateInit)

	totalPages, err := s.client.CountPages(ctx, opts.Tags)
	if err != nil {
		s.setState(StateAborted)
		return nil, err
	}
	s.setState(StatePagesCounted)

	s.logger.InfoWithFields("fetching post metadata", map[string]interface{}{
		"tags":  opts.Tags,
		"pages": totalPages,
	})

	posts, failedPages := s.fetchAllPages(ctx, opts, totalPages)
	s.setState(StatePostsFetched)

	// A cancelled run fails every page; report the interrupt, not an
	// empty filter result.
	if err := ctx.Err(); err != nil {
		s.setState(StateAborted)
		return nil, err
	}

	if len(posts) == 0 {
		s.setState(StateAborted)
		return nil, fmt.Errorf("tags %v: %w", opts.Tags, apperrors.ErrNothingToDownload)
	}

	if opts.OnPostsFetched != nil {
		opts.OnPostsFetched(len(posts))
	}

	store, err := s.openStorage(opts)
	if err != nil {
		s.setState(StateAborted)
		return nil, err
	}

	summary := s.downloadAll(ctx, opts, store, posts)
	s.setState(StateDone)

	report := &Report{
		TotalPages:  totalPages,
		FailedPages: failedPages,
		Posts:       len(posts),
		OutputDir:   store.Root(),
		Summary:     summary,
	}

	s.logger.InfoWithFields("run complete", map[string]interface{}{
		"posts":           report.Posts,
		"downloaded":      summary.Downloaded,
		"already_present": summary.AlreadyPresent,
		"excluded":        summary.Excluded,
		"failed":          summary.Failed,
		"failed_pages":    failedPages,
	})

	return report, nil
}

// fetchAllPages fans out over all pages with bounded concurrency. A
// failed page contributes zero posts and is only counted; the rating
// filter runs immediately after each page decodes.
func (s *Scraper) fetchAllPages(ctx context.Context, opts Options, totalPages int) ([]danbooru.Post, int) {
	concurrency := opts.PageConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var posts []danbooru.Post
	failedPages := 0

	for page := 1; page <= totalPages; page++ {
		page := page
		g.Go(func() error {
			pagePosts, err := s.client.FetchPostsPage(gctx, opts.Tags, page)
			if err != nil {
				s.logger.WarnWithFields("page fetch failed, skipping", map[string]interface{}{
					"tags":  opts.Tags,
					"page":  page,
					"error": err.Error(),
				})
				mu.Lock()
				failedPages++
				mu.Unlock()
				return nil
			}

			var kept []danbooru.Post
			for _, post := range pagePosts {
				if !opts.Exclusions.Excludes(post.Rating) {
					kept = append(kept, post)
				}
			}

			mu.Lock()
			posts = append(posts, kept...)
			mu.Unlock()
			return nil
		})
	}

	// Page workers never return errors; Wait only observes parent
	// context cancellation.
	_ = g.Wait()

	return posts, failedPages
}

// openStorage creates the output tree, falling back once when the
// configured directory cannot be created.
func (s *Scraper) openStorage(opts Options) (*storage.Manager, error) {
	store, err := storage.NewManager(opts.OutputDir)
	if err == nil {
		return store, nil
	}

	if opts.FallbackDir == "" || opts.FallbackDir == opts.OutputDir {
		return nil, fmt.Errorf("output directory unusable: %w", err)
	}

	s.logger.WarnWithFields("output directory unusable, using fallback", map[string]interface{}{
		"output":   opts.OutputDir,
		"fallback": opts.FallbackDir,
		"error":    err.Error(),
	})

	store, fallbackErr := storage.NewManager(opts.FallbackDir)
	if fallbackErr != nil {
		return nil, fmt.Errorf("output directory unusable (%v) and fallback failed: %w", err, fallbackErr)
	}
	return store, nil
}

// downloadAll runs the worker pool over the filtered posts. Completion
// is unconditional; per-item failures end up in the summary.
func (s *Scraper) downloadAll(ctx context.Context, opts Options, store *storage.Manager, posts []danbooru.Post) downloader.Summary {
	pool := downloader.NewWorkerPool(ctx, opts.ConcurrentDownloads, s.client, store, opts.Exclusions, s.logger)
	pool.Start()

	var summary downloader.Summary
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			summary.Add(result)
			if opts.OnResult != nil {
				opts.OnResult(result)
			}
		}
	}()

	for _, post := range posts {
		if err := pool.Submit(post); err != nil {
			break
		}
	}
	pool.Stop()
	wg.Wait()

	return summary
}
