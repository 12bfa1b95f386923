package model

import "time"

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Valid reports whether s is one of the statuses the backend emits.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the job will no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type JobType string

const (
	JobTypeBoth        JobType = "both"
	JobTypeHotels      JobType = "hotels"
	JobTypeRestaurants JobType = "restaurants"
)

// JobTypes lists the scrape types in form order.
var JobTypes = []JobType{JobTypeBoth, JobTypeHotels, JobTypeRestaurants}

func (t JobType) Valid() bool {
	switch t {
	case JobTypeBoth, JobTypeHotels, JobTypeRestaurants:
		return true
	}
	return false
}

func (t JobType) Label() string {
	switch t {
	case JobTypeHotels:
		return "Hotels Only"
	case JobTypeRestaurants:
		return "Restaurants Only"
	case JobTypeBoth:
		return "Hotels & Restaurants"
	}
	return string(t)
}

// Job is one scraping request and its lifecycle status. Jobs are owned by the
// backend; the dashboard only reads them.
type Job struct {
	ID          string     `json:"id"`
	Location    string     `json:"location"`
	Radius      float64    `json:"radius"`
	Status      JobStatus  `json:"status"`
	Type        JobType    `json:"type"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Results     []Result   `json:"results,omitempty"`
}

func (j Job) ResultCount() int {
	return len(j.Results)
}

func (j Job) Duration() time.Duration {
	if j.CompletedAt == nil || j.CreatedAt.IsZero() {
		return 0
	}
	return j.CompletedAt.Sub(j.CreatedAt)
}
