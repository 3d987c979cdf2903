package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/handiism/ultimate-tab/internal/acquire"
	"github.com/handiism/ultimate-tab/internal/audio"
	"github.com/handiism/ultimate-tab/internal/config"
	ioutils "github.com/handiism/ultimate-tab/internal/io"
	"github.com/handiism/ultimate-tab/internal/logging"
	"github.com/handiism/ultimate-tab/internal/model"
	"github.com/handiism/ultimate-tab/internal/tab"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8B500"))
	chordStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
)

func main() {
	// Command line flags
	var (
		urlsFlag    = flag.String("url", "", "Tab URL(s) to fetch (comma-separated or newline-separated)")
		configFlag  = flag.String("config", "", "Path to config file")
		formatFlag  = flag.String("format", "sheet", "Output format: sheet, lyrics, chords or json")
		outputFlag  = flag.String("output", "", "Save tabs to this directory instead of printing them")
		tagFlag     = flag.String("tag", "", "Embed the chord sheet into this MP3 file (single URL only)")
		retriesFlag = flag.Int("retries", -1, "Rendered attempts after the fast fetch (overrides config)")
		timeoutFlag = flag.Float64("timeout", -1, "Total time budget per tab in seconds (overrides config)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if *urlsFlag == "" && flag.NArg() == 0 {
		fmt.Println("Ultimate Tab - Chords and lyrics from Ultimate Guitar")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  tab-dl -url <URL> [options]")
		fmt.Println("  tab-dl <URL>... [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: tab-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := checkFormat(*formatFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_ = godotenv.Load()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	settings.ApplyEnv()

	// Apply flags
	if *retriesFlag >= 0 {
		settings.RenderMaxRetries = *retriesFlag
	}
	if *timeoutFlag >= 0 {
		settings.TotalTimeout = *timeoutFlag
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}

	logger := logging.New(settings.LogLevel, settings.LogFormat, os.Stderr)

	// Get URLs
	urls := acquire.SplitURLs(strings.Join(append([]string{*urlsFlag}, flag.Args()...), "\n"))
	urls = allowedURLs(settings, urls, logger)
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "No usable URLs given.")
		os.Exit(1)
	}
	if *tagFlag != "" && len(urls) != 1 {
		fmt.Fprintln(os.Stderr, "-tag needs exactly one URL.")
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
		cancel()
	}()

	orchestrator := acquire.NewFromSettings(settings, logging.ProgressHandler(logger))
	outcomes := orchestrator.FetchAll(ctx, urls)

	failed := 0
	for _, oc := range outcomes {
		if oc.Err != nil {
			failed++
			logger.Error("Failed to fetch tab", "url", oc.URL, "err", oc.Err)
			continue
		}
		if err := emit(ctx, oc.Result, *formatFlag, *outputFlag, logger); err != nil {
			failed++
			logger.Error("Failed to write tab", "url", oc.URL, "err", err)
			continue
		}
		if *tagFlag != "" {
			if err := audio.NewTagger(nil).SaveTags(*tagFlag, oc.Result.Metadata, tab.Sheet(oc.Result.Combined)); err != nil {
				failed++
				logger.Error("Failed to tag file", "file", *tagFlag, "err", err)
				continue
			}
			logger.Info("Embedded chord sheet", "file", *tagFlag)
		}
	}

	if ctx.Err() != nil {
		os.Exit(130)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// formats lists the values accepted by -format.
var formats = []string{"sheet", "lyrics", "chords", "json"}

// checkFormat rejects an unknown output format before anything is fetched.
func checkFormat(format string) error {
	if !slices.Contains(formats, format) {
		return fmt.Errorf("unknown format %q (want one of: %s)", format, strings.Join(formats, ", "))
	}
	return nil
}

// allowedURLs drops URLs whose host is not in settings.AllowedHosts.
func allowedURLs(settings *config.Settings, urls []string, logger *slog.Logger) []string {
	var kept []string
	for _, u := range urls {
		if !settings.IsAllowedURL(u) {
			logger.Warn("Skipping URL with host not allowed", "url", u, "allowed", settings.AllowedHosts)
			continue
		}
		kept = append(kept, u)
	}
	return kept
}

// emit prints res to stdout, or saves it under dir when dir is set.
func emit(ctx context.Context, res *model.Result, format, dir string, logger *slog.Logger) error {
	if dir != "" {
		text, ext, err := render(res, format, nil)
		if err != nil {
			return err
		}
		path, err := ioutils.SaveTab(ctx, dir, res.Metadata, ext, []byte(text))
		if err != nil {
			return err
		}
		logger.Info("Saved tab", "path", path)
		return nil
	}

	text, _, err := render(res, format, func(s string) string { return chordStyle.Render(s) })
	if err != nil {
		return err
	}
	if format != "json" {
		fmt.Println(headingStyle.Render(fmt.Sprintf("%s - %s", res.Metadata.Artist, res.Metadata.Title)))
		fmt.Println()
	}
	fmt.Print(text)
	return nil
}

// render formats res and returns the text and a file extension for it.
func render(res *model.Result, format string, style func(string) string) (string, string, error) {
	switch format {
	case "sheet":
		return tab.SheetFunc(res.Combined, style), "txt", nil
	case "lyrics":
		return tab.LyricsText(res.DualTrack) + "\n", "txt", nil
	case "chords":
		return tab.ChordsText(res.DualTrack) + "\n", "txt", nil
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", "", fmt.Errorf("encode json: %w", err)
		}
		return string(data) + "\n", "json", nil
	}
	return "", "", fmt.Errorf("unknown format %q", format)
}
