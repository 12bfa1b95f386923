// Package config resolves runtime settings from defaults, SCRAPEDASH_*
// environment variables (optionally read from a .env file) and flags, in
// that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/scrapedash/scrapedash/internal/logging"
	"github.com/scrapedash/scrapedash/internal/resultview"
)

const envPrefix = "SCRAPEDASH_"

type Config struct {
	APIURL       string
	Timeout      time.Duration
	PollInterval time.Duration
	RetryDelay   time.Duration

	JobsPageSize    int
	ResultsPageSize int

	LogLevel string
	LogFile  string

	CacheDir    string
	CacheSizeMB int
	CacheTTL    time.Duration

	PrefsPath string
	ExportDir string
}

func Default() Config {
	tmp := filepath.Join(os.TempDir(), "scrapedash")
	prefs := filepath.Join(tmp, "preferences.json")
	if dir, err := os.UserConfigDir(); err == nil {
		prefs = filepath.Join(dir, "scrapedash", "preferences.json")
	}
	return Config{
		APIURL:          "http://localhost:5000/api",
		Timeout:         10 * time.Second,
		PollInterval:    5 * time.Second,
		RetryDelay:      time.Second,
		JobsPageSize:    10,
		ResultsPageSize: resultview.DefaultPageSize,
		LogLevel:        "info",
		LogFile:         filepath.Join(tmp, "scrapedash.log"),
		CacheDir:        filepath.Join(tmp, "results"),
		CacheSizeMB:     50,
		CacheTTL:        24 * time.Hour,
		PrefsPath:       prefs,
		ExportDir:       ".",
	}
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load returns the defaults overlaid with any SCRAPEDASH_* variables found
// through getenv. Every malformed variable is reported.
func Load(getenv func(string) string) (Config, error) {
	c := Default()
	var errs []error

	str := func(name string, dst *string) {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		v := getenv(envPrefix + name)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s%s must be a positive duration, got %q", envPrefix, name, v))
			return
		}
		*dst = d
	}
	num := func(name string, dst *int) {
		v := getenv(envPrefix + name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("%s%s must be a positive integer, got %q", envPrefix, name, v))
			return
		}
		*dst = n
	}

	str("API_URL", &c.APIURL)
	dur("TIMEOUT", &c.Timeout)
	dur("POLL_INTERVAL", &c.PollInterval)
	dur("RETRY_DELAY", &c.RetryDelay)
	num("JOBS_PAGE_SIZE", &c.JobsPageSize)
	num("PAGE_SIZE", &c.ResultsPageSize)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)
	str("CACHE_DIR", &c.CacheDir)
	num("CACHE_SIZE_MB", &c.CacheSizeMB)
	dur("CACHE_TTL", &c.CacheTTL)
	str("PREFS", &c.PrefsPath)
	str("EXPORT_DIR", &c.ExportDir)

	return c, errors.Join(errs...)
}

// RegisterFlags binds flags to c, using its current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.APIURL, "api", c.APIURL, "Scraping backend base URL")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "HTTP request timeout")
	fs.DurationVar(&c.PollInterval, "poll", c.PollInterval, "Job list refresh interval")
	fs.DurationVar(&c.RetryDelay, "retry-delay", c.RetryDelay, "Delay before retrying a failed job list fetch")
	fs.IntVar(&c.JobsPageSize, "jobs-page-size", c.JobsPageSize, "Jobs shown per page")
	fs.IntVar(&c.ResultsPageSize, "page-size", c.ResultsPageSize, "Initial results per page (5, 10, 25 or 50)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file path (empty disables logging)")
	fs.StringVar(&c.CacheDir, "cache-dir", c.CacheDir, "Directory for cached job results")
	fs.IntVar(&c.CacheSizeMB, "cache-size", c.CacheSizeMB, "Max result cache size in MB")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "Result cache TTL")
	fs.StringVar(&c.PrefsPath, "prefs", c.PrefsPath, "Preferences file")
	fs.StringVar(&c.ExportDir, "export-dir", c.ExportDir, "Directory CSV exports are written to")
}

func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api URL must be an absolute http(s) URL, got %q", c.APIURL))
	}
	for name, d := range map[string]time.Duration{
		"timeout": c.Timeout, "poll": c.PollInterval, "retry-delay": c.RetryDelay, "cache-ttl": c.CacheTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive duration, got %s", name, d))
		}
	}
	if c.JobsPageSize < 1 {
		errs = append(errs, fmt.Errorf("jobs-page-size must be positive, got %d", c.JobsPageSize))
	}
	if !slices.Contains(resultview.PageSizes, c.ResultsPageSize) {
		errs = append(errs, fmt.Errorf("page-size must be one of %v, got %d", resultview.PageSizes, c.ResultsPageSize))
	}
	if c.CacheSizeMB < 1 {
		errs = append(errs, fmt.Errorf("cache-size must be positive, got %d", c.CacheSizeMB))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
