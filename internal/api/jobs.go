package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/scrapedash/scrapedash/internal/model"
)

// CreateJob submits a scraping job. The backend answers with the new job in
// the pending state.
func (c *Client) CreateJob(ctx context.Context, req model.ScrapeRequest) (*model.Job, error) {
	var raw rawObject
	if err := c.Post(ctx, "scrape", req, &raw); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	job, err := decodeJob("create job", raw)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	var raws []rawObject
	if err := c.Get(ctx, "jobs", &raws); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs := make([]model.Job, 0, len(raws))
	for i, raw := range raws {
		job, err := decodeJob(fmt.Sprintf("list jobs: job %d", i), raw)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var raw rawObject
	if err := c.Get(ctx, jobPath(id), &raw); err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	job, err := decodeJob("get job "+id, raw)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobResults fetches a job and returns its results envelope. A job without
// a results array is a malformed payload.
func (c *Client) GetJobResults(ctx context.Context, id string) ([]model.Result, error) {
	op := "get job results " + id
	var raw rawObject
	if err := c.Get(ctx, jobPath(id), &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	results, ok := raw["results"]
	if !ok || isNull(results) {
		return nil, &PayloadError{Op: op, Reason: "results missing"}
	}
	return decodeResults(op, results)
}

func jobPath(id string) string {
	return "jobs/" + url.PathEscape(id)
}
