package downloader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"boorudl/pkg/danbooru"
	"boorudl/pkg/logger"
)

// Status is the outcome of one download unit. Per-item failures are
// absorbed at the batch level; they are counted, never fatal.
type Status int

const (
	// StatusDownloaded means the asset was transferred and written.
	StatusDownloaded Status = iota
	// StatusAlreadyPresent means the destination file existed, no
	// network call was made.
	StatusAlreadyPresent
	// StatusExcluded means the post's rating is excluded; treated as a
	// successful no-op.
	StatusExcluded
	// StatusFailed means the unit failed (missing URL, transport or
	// filesystem error).
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusAlreadyPresent:
		return "already_present"
	case StatusExcluded:
		return "excluded"
	default:
		return "failed"
	}
}

// Result is the tagged outcome of a single post download.
type Result struct {
	Post     danbooru.Post
	Status   Status
	Err      error
	Duration time.Duration
}

// Summary aggregates results at the batch boundary so failure counts
// are observable instead of silently swallowed.
type Summary struct {
	Downloaded     int
	AlreadyPresent int
	Excluded       int
	Failed         int
}

// Total returns the number of processed units.
func (s Summary) Total() int {
	return s.Downloaded + s.AlreadyPresent + s.Excluded + s.Failed
}

// Add records one result into the summary.
func (s *Summary) Add(r Result) {
	switch r.Status {
	case StatusDownloaded:
		s.Downloaded++
	case StatusAlreadyPresent:
		s.AlreadyPresent++
	case StatusExcluded:
		s.Excluded++
	default:
		s.Failed++
	}
}

// AssetDownloader streams a remote asset
type AssetDownloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// AssetStorage persists assets into the rating-partitioned tree
type AssetStorage interface {
	Exists(subfolder, filename string) bool
	Save(r io.Reader, subfolder, filename string) error
}

// WorkerPool manages concurrent post downloads
type WorkerPool struct {
	numWorkers int
	jobQueue   chan danbooru.Post
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	client     AssetDownloader
	store      AssetStorage
	exclusions danbooru.Exclusions
	logger     logger.Logger
}

// NewWorkerPool creates a download worker pool. The parent context
// cancels all in-flight units when the batch is aborted.
func NewWorkerPool(
	parent context.Context,
	numWorkers int,
	client AssetDownloader,
	store AssetStorage,
	exclusions danbooru.Exclusions,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(parent)

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers: numWorkers,
		jobQueue:   make(chan danbooru.Post, numWorkers*2),
		results:    make(chan Result, numWorkers),
		ctx:        ctx,
		cancel:     cancel,
		client:     client,
		store:      store,
		exclusions: exclusions,
		logger:     log,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("starting download workers", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for the workers to drain it and closes
// the result channel.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds a post to the queue. It fails only when the pool is
// shutting down.
func (wp *WorkerPool) Submit(post danbooru.Post) error {
	select {
	case wp.jobQueue <- post:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel download outcomes arrive on.
func (wp *WorkerPool) Results() <-chan Result {
	return wp.results
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for post := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processPost(post, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processPost runs the per-post algorithm: resolve source and
// destination, skip when present or excluded, otherwise stream to disk.
func (wp *WorkerPool) processPost(post danbooru.Post, workerID int) Result {
	start := time.Now()
	result := Result{Post: post}

	url, ext, err := post.ResolveSource()
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		result.Duration = time.Since(start)
		wp.logger.WarnWithFields("post has no downloadable url", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   post.ID,
		})
		return result
	}

	subfolder := post.Rating.Subfolder()
	filename := post.Filename(ext)

	if wp.store.Exists(subfolder, filename) {
		result.Status = StatusAlreadyPresent
		result.Duration = time.Since(start)
		wp.logger.DebugWithFields("post already downloaded", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   post.ID,
			"file":      filename,
		})
		return result
	}

	// The fetch stage filters too; this second check guards against an
	// upstream filter bypass.
	if wp.exclusions.Excludes(post.Rating) {
		result.Status = StatusExcluded
		result.Duration = time.Since(start)
		return result
	}

	body, err := wp.client.Download(wp.ctx, url)
	if err != nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("post %d: download failed: %w", post.ID, err)
		result.Duration = time.Since(start)
		wp.logger.ErrorWithFields("download failed", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   post.ID,
			"url":       url,
			"error":     err.Error(),
		})
		return result
	}
	defer body.Close()

	if err := wp.store.Save(body, subfolder, filename); err != nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("post %d: save failed: %w", post.ID, err)
		result.Duration = time.Since(start)
		wp.logger.ErrorWithFields("save failed", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   post.ID,
			"file":      filename,
			"error":     err.Error(),
		})
		return result
	}

	result.Status = StatusDownloaded
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("post downloaded", map[string]interface{}{
		"worker_id": workerID,
		"post_id":   post.ID,
		"file":      filename,
		"duration":  result.Duration,
	})

	return result
}
