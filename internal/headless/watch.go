// Package headless runs the dashboard's read paths without a terminal UI:
// a polling job table for logs and pipes, and a one-shot CSV export.
package headless

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/cli/go-gh/v2/pkg/text"
	"github.com/robfig/cron/v3"

	"github.com/scrapedash/scrapedash/internal/api"
	"github.com/scrapedash/scrapedash/internal/logging"
	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/tui/jobs"
)

// Watcher prints the job table every interval.
type Watcher struct {
	cron       *cron.Cron
	client     *api.Client
	out        io.Writer
	spec       string
	retryDelay time.Duration
	isTTY      bool
	width      int
	log        *logging.Logger
	now        func() time.Time

	mu sync.Mutex
}

func NewWatcher(client *api.Client, out io.Writer, interval, retryDelay time.Duration, log *logging.Logger) *Watcher {
	if log == nil {
		log = logging.NewNop()
	}
	return &Watcher{
		cron:       cron.New(),
		client:     client,
		out:        out,
		spec:       fmt.Sprintf("@every %s", interval),
		retryDelay: retryDelay,
		log:        log.Named("watch"),
		now:        time.Now,
	}
}

// SetTerminal switches the table to its terminal layout at the given width.
func (w *Watcher) SetTerminal(isTTY bool, width int) {
	w.isTTY = isTTY
	w.width = width
}

// Start registers the poll and starts the scheduler. One poll runs
// immediately so the first table does not wait for a tick.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.spec, func() { w.Poll(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", w.spec, err)
	}
	w.cron.Start()
	w.log.Info("watch started", "spec", w.spec)
	go w.Poll(ctx)
	return nil
}

// Stop waits for a running poll to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info("watch stopped")
}

// Poll fetches the job list once, retrying once, and prints it.
func (w *Watcher) Poll(ctx context.Context) {
	list, err := w.client.ListJobs(ctx)
	if err != nil && ctx.Err() == nil {
		w.log.Warn("list jobs failed, retrying", "error", err)
		select {
		case <-time.After(w.retryDelay):
		case <-ctx.Done():
			return
		}
		list, err = w.client.ListJobs(ctx)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.log.Error("list jobs failed", "error", err)
		fmt.Fprintf(w.out, "%s  error: %v\n", w.now().Format(time.TimeOnly), err)
		return
	}
	if err := WriteJobsTable(w.out, list, w.now(), w.isTTY, w.width); err != nil {
		w.log.Error("write jobs table", "error", err)
	}
}

// Watch polls until ctx is done.
func Watch(ctx context.Context, w *Watcher) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// WriteJobsTable prints jobs newest first. Terminal output uses relative
// times; anything else gets RFC 3339 for scripts.
func WriteJobsTable(out io.Writer, list []model.Job, now time.Time, isTTY bool, width int) error {
	tp := tableprinter.New(out, isTTY, width)
	tp.AddHeader([]string{"ID", "LOCATION", "RADIUS", "TYPE", "STATUS", "RESULTS", "CREATED"})
	for _, j := range jobs.SortJobs(list) {
		tp.AddField(j.ID)
		tp.AddField(j.Location)
		tp.AddField(jobs.FormatRadius(j.Radius) + "km")
		tp.AddField(string(j.Type))
		tp.AddField(string(j.Status))
		tp.AddField(strconv.Itoa(j.ResultCount()))
		if isTTY {
			tp.AddField(text.RelativeTimeAgo(now, j.CreatedAt))
		} else {
			tp.AddField(j.CreatedAt.Format(time.RFC3339))
		}
		tp.EndRow()
	}
	return tp.Render()
}
