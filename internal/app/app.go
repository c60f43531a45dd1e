package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/five82/tally/internal/config"
	"github.com/five82/tally/internal/kvstore"
	"github.com/five82/tally/internal/pending"
	"github.com/five82/tally/internal/prefs"
	"github.com/five82/tally/internal/remote"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/stopwatch"
	"github.com/five82/tally/internal/ui"
)

// Options configure the Tally application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tally/prefs.toml
	PollEvery  int    // seconds; zero uses default
	Session    string // overrides the configured session
}

// Run boots the Tally TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s := strings.TrimSpace(opts.Session); s != "" {
		cfg.Session = s
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The TUI owns the terminal, so log output goes to a file the UI tails.
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	prevOutput := log.Writer()
	log.SetOutput(logFile)
	defer log.SetOutput(prevOutput)

	kv, err := kvstore.Open(ctx, cfg.StoreBackend, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer kv.Close()

	client, err := remote.NewClient(cfg.APIURL, remote.Options{
		Token:   cfg.APIToken,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	queue := pending.New(kv, client, pending.Options{Session: cfg.Session})
	if err := queue.Load(ctx); err != nil {
		// The queue starts empty and stays usable.
		log.Printf("pending queue load failed: %v", err)
	}

	svc := stopwatch.New(queue, client, cfg.Session)
	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	log.Printf("tally starting: session=%s api=%s store=%s pending=%d",
		svc.Session(), cfg.APIURL, cfg.StoreBackend, len(queue.Pending()))

	// Deliver anything left over from a previous run before the first read.
	if len(queue.Pending()) > 0 {
		if err := svc.Sync(ctx); err != nil {
			log.Printf("startup sync failed, events kept locally: %v", err)
		}
	}

	StartPoller(ctx, store, svc, interval)

	// Do initial refresh to populate store before UI starts
	refresh(ctx, store, svc)

	uiOpts := ui.Options{
		Context: ctx,
		Actions: svc,
		Store:   store,
		Refresh: func(ctx context.Context) {
			refresh(ctx, store, svc)
		},
		Session:      svc.Session(),
		LogPath:      cfg.LogPath(),
		PollTick:     interval,
		ThemeName:    userPrefs.Theme,
		SessionTitle: userPrefs.SessionTitle,
		PrefsPath:    opts.PrefsPath,
	}
	return ui.Run(ctx, uiOpts)
}
