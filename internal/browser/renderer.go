package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// DefaultWaitSelector matches the elements that show a tab page has
// rendered its content.
const DefaultWaitSelector = "pre, .js-tab-content, .js-store, code"

// blockedResources are URL patterns the browser does not load. Tab text
// needs none of them.
var blockedResources = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.css",
	"*.mp4", "*.webm",
}

// Options configures a Renderer.
type Options struct {
	// ExecPath is the Chrome/Chromium binary. Empty lets chromedp find one.
	ExecPath string

	// Headless runs the browser without a window.
	Headless bool

	// BlockResources skips images, fonts, stylesheets and media.
	BlockResources bool

	// UserAgent overrides the browser's User-Agent when set.
	UserAgent string

	// WaitSelector is the CSS selector waited for before reading the page.
	// Empty means DefaultWaitSelector.
	WaitSelector string

	// Timeout bounds a single Render call. Zero means 30 seconds.
	Timeout time.Duration
}

// Renderer loads pages in a headless browser and returns the rendered HTML.
//
// Every Render call starts its own browser and shuts it down before
// returning, whether or not the render succeeded, so calls share no state
// and can run concurrently.
//
// Example:
//
//	r := NewRenderer(Options{Headless: true, BlockResources: true})
//	html, err := r.Render(ctx, "https://tabs.ultimate-guitar.com/tab/...")
type Renderer struct {
	opts Options
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	if opts.WaitSelector == "" {
		opts.WaitSelector = DefaultWaitSelector
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Renderer{opts: opts}
}

// Render navigates to url, waits for WaitSelector and returns the page HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", r.opts.Headless))
	if r.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.opts.ExecPath))
	}
	if r.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(r.opts.UserAgent))
	}
	if r.opts.BlockResources {
		allocOpts = append(allocOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancelTimeout()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer func() {
		// Close the browser gracefully, then make sure the process is gone.
		_ = chromedp.Cancel(browserCtx)
		cancelBrowser()
	}()

	var html string

	var tasks chromedp.Tasks
	if r.opts.BlockResources {
		tasks = append(tasks, network.Enable(), network.SetBlockedURLS(blockedResources))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady(r.opts.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}
