package ui

import (
	"github.com/scrapedash/scrapedash/internal/cache"
	"github.com/scrapedash/scrapedash/internal/model"
)

// Data fetched messages. Seq lets the app drop a response that was
// overtaken by a newer request for the same data.
type JobsLoadedMsg struct {
	Jobs []model.Job
	Seq  int
	Err  error
}

type ResultsLoadedMsg struct {
	JobID     string
	Results   []model.Result
	Seq       int
	FromCache bool
	Err       error
}

type JobsTickMsg struct{}

type JobCreatedMsg struct {
	Job *model.Job
	Err error
}

// JobSelectedMsg is emitted by the jobs list when a row is chosen.
type JobSelectedMsg struct {
	ID string
}

// ResultSelectedMsg is emitted by the results table to open the detail view.
type ResultSelectedMsg struct {
	Result model.Result
}

type DetailClosedMsg struct{}

type ExportDoneMsg struct {
	Path  string
	Count int
	Err   error
}

type BrowseDoneMsg struct {
	URL string
	Err error
}

type StatusMsg struct {
	Text string
}

// OpenURLMsg asks the app to open a link (website or mailto:) externally.
type OpenURLMsg struct {
	URL string
}

type CacheEntriesLoadedMsg struct {
	Entries []cache.CacheEntry
	Err     error
}

// CacheChangedMsg reports a finished delete or clear on the result cache.
type CacheChangedMsg struct {
	Action string
	Err    error
}
