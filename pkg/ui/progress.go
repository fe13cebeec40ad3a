package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"boorudl/internal/downloader"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of download progress across the batch. It is
// safe for use from concurrent workers.
type StatusTracker struct {
	mu        sync.Mutex
	total     int
	done      int
	failed    int
	skipped   int
	quiet     bool
	startTime time.Time
}

// NewStatusTracker creates a tracker for a batch of total items.
func NewStatusTracker(total int, quiet bool) *StatusTracker {
	return &StatusTracker{
		total:     total,
		quiet:     quiet,
		startTime: time.Now(),
	}
}

// Record consumes one worker result and redraws the progress line.
func (st *StatusTracker) Record(r downloader.Result) {
	st.mu.Lock()
	switch r.Status {
	case downloader.StatusDownloaded:
		st.done++
	case downloader.StatusFailed:
		st.failed++
	default:
		st.skipped++
	}
	st.mu.Unlock()

	if !st.quiet {
		st.printProgress()
	}
}

func (st *StatusTracker) printProgress() {
	st.mu.Lock()
	defer st.mu.Unlock()

	const width = 20
	completed := st.done + st.failed + st.skipped
	filled := 0
	if st.total > 0 {
		filled = completed * width / st.total
	}
	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	fmt.Printf("\r%s [%s] %d/%d", Green("[FETCH]"), bar, completed, st.total)
	if st.failed > 0 {
		fmt.Printf(" %s", Red(fmt.Sprintf("failed: %d", st.failed)))
	}
}

// ElapsedTime returns the time since tracking started.
func (st *StatusTracker) ElapsedTime() time.Duration {
	return time.Since(st.startTime)
}

// Finish terminates the progress line.
func (st *StatusTracker) Finish() {
	if !st.quiet {
		fmt.Println()
	}
}
