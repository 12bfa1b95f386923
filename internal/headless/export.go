package headless

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scrapedash/scrapedash/internal/api"
	"github.com/scrapedash/scrapedash/internal/resultview"
)

var ErrNothingToExport = errors.New("nothing to export")

type ExportOptions struct {
	JobID  string
	Search string
	Sort   *resultview.SortSpec
	Dir    string
	Now    time.Time
}

// Export writes a job's filtered and sorted results to a CSV file in
// opts.Dir and returns its path and row count.
func Export(ctx context.Context, client *api.Client, opts ExportOptions) (string, int, error) {
	if opts.JobID == "" {
		return "", 0, errors.New("job id is required")
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	results, err := client.GetJobResults(ctx, opts.JobID)
	if err != nil {
		return "", 0, err
	}
	rows := resultview.Apply(results, opts.Search, opts.Sort)
	if len(rows) == 0 {
		return "", 0, fmt.Errorf("job %s: %w", opts.JobID, ErrNothingToExport)
	}
	path, err := resultview.WriteExport(opts.Dir, opts.JobID, rows, opts.Now)
	if err != nil {
		return "", 0, err
	}
	return path, len(rows), nil
}
