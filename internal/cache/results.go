package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/scrapedash/scrapedash/internal/model"
)

// ResultCache keeps the results of completed jobs on disk so reopening a
// job does not hit the backend again. Completed jobs never change, so an
// entry is only dropped by TTL or the size cap.
type ResultCache struct {
	dir     string
	maxSize int64         // max total cache size in bytes
	ttl     time.Duration // cache entry TTL
	now     func() time.Time
}

// CacheMeta describes a cached job.
type CacheMeta struct {
	JobID    string    `json:"job_id"`
	Location string    `json:"location"`
	Type     string    `json:"type"`
	Count    int       `json:"count"`
	StoredAt time.Time `json:"stored_at"`
}

type cacheFile struct {
	CacheMeta
	Results []model.Result `json:"results"`
}

// CacheEntry is a cached job as found on disk.
type CacheEntry struct {
	CacheMeta
	Size int64
	Path string
}

func NewResultCache(dir string, maxSizeMB int, ttl time.Duration) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create result cache dir: %w", err)
	}
	return &ResultCache{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

func (rc *ResultCache) Dir() string {
	return rc.dir
}

func (rc *ResultCache) path(jobID string) string {
	return filepath.Join(rc.dir, "job-"+safeName(jobID)+".json")
}

// safeName keeps a job id usable as a file name.
func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

func (rc *ResultCache) Has(jobID string) bool {
	_, ok, _ := rc.Get(jobID)
	return ok
}

// Get returns the cached results for jobID. A missing or expired entry
// reports false without an error.
func (rc *ResultCache) Get(jobID string) ([]model.Result, bool, error) {
	data, err := os.ReadFile(rc.path(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", jobID, err)
	}
	if rc.now().Sub(f.StoredAt) > rc.ttl {
		return nil, false, nil
	}
	return f.Results, true, nil
}

// Put stores a completed job's results and then evicts to stay under the
// size cap. Jobs that are not completed are ignored.
func (rc *ResultCache) Put(job model.Job, results []model.Result) error {
	if job.Status != model.JobStatusCompleted {
		return nil
	}
	f := cacheFile{
		CacheMeta: CacheMeta{
			JobID:    job.ID,
			Location: job.Location,
			Type:     string(job.Type),
			Count:    len(results),
			StoredAt: rc.now(),
		},
		Results: results,
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.WriteFile(rc.path(job.ID), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return rc.Evict()
}

// Evict removes expired and oversized cache entries, oldest first.
func (rc *ResultCache) Evict() error {
	entries, err := rc.ListEntries()
	if err != nil {
		return err
	}

	var totalSize int64
	remaining := entries[:0]
	now := rc.now()
	for _, e := range entries {
		if now.Sub(e.StoredAt) > rc.ttl {
			os.Remove(e.Path)
			continue
		}
		totalSize += e.Size
		remaining = append(remaining, e)
	}
	entries = remaining

	if totalSize > rc.maxSize {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].StoredAt.Before(entries[j].StoredAt)
		})
		for _, e := range entries {
			if totalSize <= rc.maxSize {
				break
			}
			os.Remove(e.Path)
			totalSize -= e.Size
		}
	}
	return nil
}

// ListEntries scans the cache directory and returns all readable entries.
func (rc *ResultCache) ListEntries() ([]CacheEntry, error) {
	dirEntries, err := os.ReadDir(rc.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var result []CacheEntry
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "job-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(rc.dir, name)
		info, err := e.Info()
		if err != nil {
			continue
		}
		entry := CacheEntry{Path: path, Size: info.Size()}
		if meta, err := readMeta(path); err == nil {
			entry.CacheMeta = *meta
		} else {
			entry.StoredAt = info.ModTime()
		}
		result = append(result, entry)
	}
	return result, nil
}

func readMeta(path string) (*CacheMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta CacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (rc *ResultCache) Delete(jobID string) error {
	err := os.Remove(rc.path(jobID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// DeleteAll removes all cache entries.
func (rc *ResultCache) DeleteAll() error {
	entries, err := rc.ListEntries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		os.Remove(e.Path)
	}
	return nil
}

// TotalSize returns total cache size in bytes.
func (rc *ResultCache) TotalSize() (int64, error) {
	entries, err := rc.ListEntries()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total, nil
}
