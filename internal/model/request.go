package model

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinRadius     = 1
	MaxRadius     = 50
	DefaultRadius = 5
)

var ErrLocationRequired = errors.New("location is required")

// ScrapeRequest is the body of a job submission.
type ScrapeRequest struct {
	Location string  `json:"location"`
	Radius   float64 `json:"radius"`
	Type     JobType `json:"type"`
}

func (r ScrapeRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return ErrLocationRequired
	}
	if r.Radius < MinRadius || r.Radius > MaxRadius {
		return fmt.Errorf("radius must be between %d and %d km, got %g", MinRadius, MaxRadius, r.Radius)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown scrape type %q", r.Type)
	}
	return nil
}
