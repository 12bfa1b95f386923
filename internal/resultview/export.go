package resultview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scrapedash/scrapedash/internal/model"
)

const (
	ExportMIME   = "text/csv;charset=utf-8"
	exportHeader = "Name,Address,Rating,Reviews,Type,Phone,Website,Emails"
	notAvailable = "N/A"
)

// ExportCSV serialises records in the dashboard's CSV layout. Name, address
// and emails are quoted; the other columns are written raw, so a rating of
// "4,5" spans two cells. It reports false for an empty set.
func ExportCSV(records []model.Result) ([]byte, bool) {
	if len(records) == 0 {
		return nil, false
	}
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, exportHeader)
	for _, r := range records {
		lines = append(lines, csvRow(r))
	}
	return []byte(strings.Join(lines, "\n")), true
}

func csvRow(r model.Result) string {
	return strings.Join([]string{
		quote(r.Name),
		quote(r.Address),
		orNA(r.Rating),
		orNA(r.Reviews),
		r.Type,
		orNA(r.Phone),
		orNA(r.WebsiteURL()),
		quote(orNA(r.Emails)),
	}, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// ExportFilename names an export for jobID at t, e.g.
// hotel-data-42-2024-01-02T03-04-05-678Z.csv.
func ExportFilename(jobID string, t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	id := strings.NewReplacer("/", "-", `\`, "-").Replace(jobID)
	return fmt.Sprintf("hotel-data-%s-%s.csv", id, ts)
}

// WriteExport writes records to dir and returns the file path. An empty set
// writes nothing and returns "".
func WriteExport(dir, jobID string, records []model.Result, now time.Time) (string, error) {
	data, ok := ExportCSV(records)
	if !ok {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(jobID, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
