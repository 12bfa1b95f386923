package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/cli/go-gh/v2/pkg/term"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scrapedash/scrapedash/internal/api"
	"github.com/scrapedash/scrapedash/internal/cache"
	"github.com/scrapedash/scrapedash/internal/config"
	"github.com/scrapedash/scrapedash/internal/headless"
	"github.com/scrapedash/scrapedash/internal/logging"
	"github.com/scrapedash/scrapedash/internal/prefs"
	"github.com/scrapedash/scrapedash/internal/resultview"
	"github.com/scrapedash/scrapedash/internal/tui"
	"github.com/scrapedash/scrapedash/internal/ui"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	envFile := os.Getenv("SCRAPEDASH_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		fatal(err)
	}
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fatal(err)
	}

	cfg.RegisterFlags(flag.CommandLine)
	showVersion := flag.Bool("version", false, "Print version and exit")
	watch := flag.Bool("watch", false, "Print the job table on every poll instead of starting the UI")
	exportID := flag.String("export", "", "Export the results of job `id` to CSV and exit")
	search := flag.String("search", "", "Search term applied with -export")
	sortFlag := flag.String("sort", "", "Sort applied with -export, as field or field:desc")
	flag.Parse()

	if *showVersion {
		fmt.Println("scrapedash", version)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fatal(err)
	}
	defer log.Sync()
	log.Info("starting", "version", version, "api", cfg.APIURL)

	client := api.NewClient(cfg.APIURL, api.WithTimeout(cfg.Timeout), api.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *exportID != "":
		sort, err := resultview.ParseSort(*sortFlag)
		if err != nil {
			fatal(err)
		}
		path, n, err := headless.Export(ctx, client, headless.ExportOptions{
			JobID:  *exportID,
			Search: *search,
			Sort:   sort,
			Dir:    cfg.ExportDir,
			Now:    time.Now(),
		})
		if errors.Is(err, headless.ErrNothingToExport) {
			fmt.Fprintln(os.Stderr, "No results to export")
			return
		}
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Exported %d results to %s\n", n, path)
		return

	case *watch:
		t := term.FromEnv()
		w := headless.NewWatcher(client, os.Stdout, cfg.PollInterval, cfg.RetryDelay, log)
		width, _, _ := t.Size()
		w.SetTerminal(t.IsTerminalOutput(), width)
		if err := headless.Watch(ctx, w); err != nil {
			fatal(err)
		}
		return
	}

	resultCache, err := cache.NewResultCache(cfg.CacheDir, cfg.CacheSizeMB, cfg.CacheTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cache error: %v\n", err)
		os.Exit(1)
	}

	store := prefs.NewStore(cfg.PrefsPath)
	theme, err := prefs.ResolveTheme(store, prefs.TerminalDetector())
	if err != nil {
		log.Warn("read preferences", "path", store.Path(), "error", err)
	}
	ui.SetTheme(theme == prefs.ThemeDark)

	app := tui.NewApp(cfg, client, resultCache, store, theme, log)
	app.SetBrowser(browser.New("", os.Stdout, os.Stderr))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
