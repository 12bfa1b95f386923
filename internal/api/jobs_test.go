package api

import (
	"context"
	"errors"
	"testing"

	"github.com/scrapedash/scrapedash/internal/model"
	"github.com/scrapedash/scrapedash/internal/testutil"
)

func TestCreateThenListShowsPending(t *testing.T) {
	b := testutil.NewBackend(t)
	c := NewClient(b.URL())
	ctx := context.Background()

	created, err := c.CreateJob(ctx, model.ScrapeRequest{Location: "Paris", Radius: 10, Type: model.JobTypeBoth})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if created.Status != model.JobStatusPending {
		t.Errorf("created status = %s, want pending", created.Status)
	}

	jobs, err := c.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	j := jobs[0]
	if j.ID != created.ID || j.Location != "Paris" || j.Radius != 10 || j.Type != model.JobTypeBoth {
		t.Errorf("unexpected job %+v", j)
	}
	if j.Status != model.JobStatusPending {
		t.Errorf("listed status = %s, want pending", j.Status)
	}
	if j.CreatedAt.IsZero() {
		t.Error("createdAt not parsed")
	}
}

func TestGetJobResults(t *testing.T) {
	b := testutil.NewBackend(t)
	job := b.AddJob(testutil.FakeJob{
		Location: "Lisbon",
		Radius:   5,
		Status:   "completed",
		Results: []map[string]any{
			{"name": "Hotel A", "address": "1 Rd", "rating": 4.5, "reviews": "1,204", "type": "hotel", "phone": nil, "website": nil, "emails": "a@x.com, logo.png"},
			{"name": "Cafe B", "rating": "4,2", "website": "https://b.example", "emails": []string{"b@x.com", "c@x.com"}},
		},
	})

	results, err := NewClient(b.URL()).GetJobResults(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJobResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	a := results[0]
	if a.Rating != "4.5" || a.Reviews != "1,204" || a.Phone != "" || a.Website != nil {
		t.Errorf("unexpected first result %+v", a)
	}
	bb := results[1]
	if bb.WebsiteURL() != "https://b.example" || bb.Emails != "b@x.com, c@x.com" || bb.Address != "" {
		t.Errorf("unexpected second result %+v", bb)
	}
}

func TestGetJobResultsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"results missing", `{"id":"j1","status":"completed"}`},
		{"results not array", `{"id":"j1","results":"none"}`},
		{"result not object", `{"id":"j1","results":[1,2]}`},
		{"name not string", `{"id":"j1","results":[{"name":7}]}`},
		{"not json", `<html>`},
		{"top level array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBackend(t)
			b.SetRaw("j1", tt.body)
			_, err := NewClient(b.URL()).GetJobResults(context.Background(), "j1")
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestGetJobSchema(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"id":"j1","location":"Rome","radius":5,"type":"hotels","status":"running","createdAt":"2024-01-02 03:04:05.123456+00:00","completedAt":null,"results":[]}`, false},
		{"empty id", `{"id":"","location":"Rome","radius":5,"type":"hotels","status":"running","createdAt":"2024-01-02T03:04:05Z"}`, true},
		{"bad status", `{"id":"j1","location":"Rome","radius":5,"type":"hotels","status":"done","createdAt":"2024-01-02T03:04:05Z"}`, true},
		{"bad type", `{"id":"j1","location":"Rome","radius":5,"type":"bars","status":"pending","createdAt":"2024-01-02T03:04:05Z"}`, true},
		{"bad createdAt", `{"id":"j1","location":"Rome","radius":5,"type":"both","status":"pending","createdAt":"soon"}`, true},
		{"radius as text", `{"id":"j1","location":"Rome","radius":"7","type":"both","status":"pending","createdAt":"2024-01-02T03:04:05Z"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBackend(t)
			b.SetRaw("j1", tt.body)
			job, err := NewClient(b.URL()).GetJob(context.Background(), "j1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetJob() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("expected ErrMalformedPayload, got %v", err)
			}
			if err == nil && job.ID != "j1" {
				t.Errorf("job id = %q", job.ID)
			}
		})
	}
}
