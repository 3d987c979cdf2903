package acquire

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/ultimate-tab/internal/browser"
	"github.com/handiism/ultimate-tab/internal/config"
	"github.com/handiism/ultimate-tab/internal/http"
	"github.com/handiism/ultimate-tab/internal/model"
	"github.com/handiism/ultimate-tab/internal/tab"
	"github.com/handiism/ultimate-tab/internal/ultimate"
)

// Strategy names used in attempt records.
const (
	StrategyFast     = "fast"
	StrategyRendered = "rendered"
)

// Fetcher retrieves the raw document at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// DocumentParser turns a fetched document into a Tab.
type DocumentParser interface {
	Parse(html string) (*model.Tab, error)
}

// Options controls the attempt sequence.
type Options struct {
	// FastTimeout bounds the fast fetch.
	FastTimeout time.Duration

	// RenderTimeout bounds each rendered attempt.
	RenderTimeout time.Duration

	// RenderMaxRetries is the number of rendered attempts.
	RenderMaxRetries int

	// TotalTimeout bounds the whole sequence. Zero means no limit
	// beyond the caller's context.
	TotalTimeout time.Duration

	// RetryCooldown and RetryExponent set the wait before each rendered
	// attempt after the first: RetryCooldown * RetryExponent^(n-1).
	RetryCooldown time.Duration
	RetryExponent float64

	// MinContentLength is the minimum trimmed document length.
	MinContentLength int

	// MaxConcurrent limits FetchAll.
	MaxConcurrent int

	// CacheSize is the number of results kept. Zero disables the cache.
	CacheSize int
}

// OptionsFromSettings converts settings to Options.
func OptionsFromSettings(s *config.Settings) Options {
	return Options{
		FastTimeout:      config.Seconds(s.FastTimeout),
		RenderTimeout:    config.Seconds(s.RenderTimeout),
		RenderMaxRetries: s.RenderMaxRetries,
		TotalTimeout:     config.Seconds(s.TotalTimeout),
		RetryCooldown:    config.Seconds(s.RetryCooldown),
		RetryExponent:    s.RetryExponent,
		MinContentLength: s.MinContentLength,
		MaxConcurrent:    s.MaxConcurrentTabs,
		CacheSize:        s.CacheSize,
	}
}

// Orchestrator acquires a tab by trying a fast fetch first and then a
// number of rendered fetches, stopping at the first document that parses
// into at least one line.
//
// Every attempt is recorded. If all of them fail, the returned
// *AcquisitionError lists each attempt's reason in order.
//
// Example:
//
//	o := acquire.New(httpFetcher, browserFetcher, ultimate.NewParser(), opts, func(e acquire.ProgressEvent) {
//	    fmt.Println(e.Message)
//	})
//	res, err := o.Fetch(ctx, url)
type Orchestrator struct {
	fast   Fetcher
	slow   Fetcher
	parser DocumentParser
	opts   Options
	cache  *lru.Cache[string, *model.Result]

	onProgress func(ProgressEvent)
}

// New creates an Orchestrator. Either fetcher may be nil to skip that
// strategy. onProgress may be nil; it is called from the goroutine running
// the acquisition, so with FetchAll it must be safe for concurrent use.
func New(fast, slow Fetcher, parser DocumentParser, opts Options, onProgress func(ProgressEvent)) *Orchestrator {
	o := &Orchestrator{
		fast:       fast,
		slow:       slow,
		parser:     parser,
		opts:       opts,
		onProgress: onProgress,
	}
	if opts.CacheSize > 0 {
		if cache, err := lru.New[string, *model.Result](opts.CacheSize); err == nil {
			o.cache = cache
		}
	}
	return o
}

// NewFromSettings creates an Orchestrator using the HTTP client for the
// fast path, a headless browser for the rendered path and the Ultimate
// Guitar parser.
func NewFromSettings(settings *config.Settings, onProgress func(ProgressEvent)) *Orchestrator {
	opts := OptionsFromSettings(settings)

	client := http.NewClient(opts.FastTimeout, settings.UserAgent)
	renderer := browser.NewRenderer(browser.Options{
		ExecPath:       settings.BrowserPath,
		Headless:       settings.Headless,
		BlockResources: settings.BlockResources,
		UserAgent:      settings.UserAgent,
		Timeout:        opts.RenderTimeout,
	})

	return New(
		FetcherFunc(client.GetString),
		FetcherFunc(renderer.Render),
		ultimate.NewParser(),
		opts,
		onProgress,
	)
}

// strategy is one planned attempt.
type strategy struct {
	name          string
	number        int
	fetcher       Fetcher
	timeout       time.Duration
	requireMarker bool
	state         State
}

func (o *Orchestrator) plan() []strategy {
	var plan []strategy
	if o.fast != nil {
		plan = append(plan, strategy{
			name:          StrategyFast,
			number:        1,
			fetcher:       o.fast,
			timeout:       o.opts.FastTimeout,
			requireMarker: true,
			state:         StateTryingFast,
		})
	}
	if o.slow != nil {
		for n := 1; n <= o.opts.RenderMaxRetries; n++ {
			plan = append(plan, strategy{
				name:    StrategyRendered,
				number:  n,
				fetcher: o.slow,
				timeout: o.opts.RenderTimeout,
				state:   StateTryingSlow,
			})
		}
	}
	return plan
}

// Fetch acquires and parses the tab at url.
//
// On failure the error is an *AcquisitionError. Cancelling ctx, or running
// out of Options.TotalTimeout, stops the sequence before the next attempt
// and aborts the running one.
//
// The returned Result belongs to the caller; cached results are copied on
// the way in and out.
func (o *Orchestrator) Fetch(ctx context.Context, url string) (*model.Result, error) {
	return o.FetchWith(ctx, url, nil)
}

// FetchWith is Fetch with an extra progress callback for this call only.
// Events go to onProgress and to the callback given to New.
func (o *Orchestrator) FetchWith(ctx context.Context, url string, onProgress func(ProgressEvent)) (*model.Result, error) {
	emit := func(e ProgressEvent) {
		o.progress(e)
		if onProgress != nil {
			onProgress(e)
		}
	}

	emit(ProgressEvent{URL: url, State: StateNotStarted, Message: fmt.Sprintf("Acquiring %s", url), Level: LevelVerbose})

	if o.cache != nil {
		if res, ok := o.cache.Get(url); ok {
			emit(ProgressEvent{URL: url, State: StateSucceeded, Message: fmt.Sprintf("Using cached tab for %s", url), Level: LevelSuccess})
			return cloneResult(res), nil
		}
	}

	if o.opts.TotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.TotalTimeout)
		defer cancel()
	}

	var attempts []model.Attempt
	for _, s := range o.plan() {
		if s.name == StrategyRendered && s.number > 1 {
			o.waitForRetry(ctx, s.number-2)
		}
		if ctx.Err() != nil {
			break
		}

		emit(ProgressEvent{
			URL:     url,
			State:   s.state,
			Message: fmt.Sprintf("Trying %s fetch (attempt %d) for %s", s.name, s.number, url),
			Level:   LevelVerbose,
		})

		res, reason, err := o.try(ctx, url, s)
		attempt := model.Attempt{
			Strategy:  s.name,
			Number:    s.number,
			Succeeded: err == nil,
			Reason:    reason,
			Err:       err,
		}
		attempts = append(attempts, attempt)

		if err == nil {
			res.Attempts = attempts
			if o.cache != nil {
				o.cache.Add(url, cloneResult(res))
			}
			emit(ProgressEvent{
				URL:     url,
				State:   StateSucceeded,
				Attempt: &attempt,
				Message: fmt.Sprintf("Parsed %s - %s (%d lines)", res.Metadata.Artist, res.Metadata.Title, len(res.Lines)),
				Level:   LevelSuccess,
			})
			return res, nil
		}

		emit(ProgressEvent{
			URL:     url,
			State:   s.state,
			Attempt: &attempt,
			Message: fmt.Sprintf("%s fetch (attempt %d) failed: %s", s.name, s.number, reason),
			Level:   LevelWarning,
		})
	}

	acqErr := &AcquisitionError{URL: url, Attempts: attempts, Cause: ctx.Err()}
	emit(ProgressEvent{URL: url, State: StateFailed, Message: acqErr.Error(), Level: LevelError})
	return nil, acqErr
}

// cloneResult returns a deep copy of res.
func cloneResult(res *model.Result) *model.Result {
	if res == nil {
		return nil
	}
	c := *res
	c.Lines = make([]model.Line, len(res.Lines))
	for i, l := range res.Lines {
		l.Chords = slices.Clone(l.Chords)
		c.Lines[i] = l
	}
	c.DualTrack = model.DualTrack{
		Lyrics: slices.Clone(res.DualTrack.Lyrics),
		Tabs:   slices.Clone(res.DualTrack.Tabs),
	}
	c.Combined = slices.Clone(res.Combined)
	c.Attempts = slices.Clone(res.Attempts)
	return &c
}

// try runs one attempt. On failure it returns the reason and the error
// behind it; a panic in the fetcher or parser counts as a failure too.
func (o *Orchestrator) try(ctx context.Context, url string, s strategy) (res *model.Result, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("panic: %v", r)
			reason = exceptionReason(err)
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	content, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, exceptionReason(err), err
	}

	trimmed := strings.TrimSpace(content)
	switch {
	case trimmed == "":
		return nil, ReasonEmptyResponse, ErrEmptyResponse
	case len(trimmed) < o.opts.MinContentLength:
		return nil, ReasonTooShort, ErrTooShort
	case s.requireMarker && !HasStructuralMarker(content):
		return nil, ReasonNoMarker, ErrNoMarker
	}

	t, err := o.parser.Parse(content)
	switch {
	case errors.Is(err, ultimate.ErrNoContent):
		return nil, ReasonNoContent, err
	case errors.Is(err, ultimate.ErrEmptyResult):
		return nil, ReasonZeroLines, err
	case err != nil:
		return nil, exceptionReason(err), err
	}

	assembled := tab.Assemble(t.Lines)
	if len(assembled.Structured) == 0 {
		return nil, ReasonZeroLines, ultimate.ErrEmptyResult
	}

	return &model.Result{
		URL:       url,
		Metadata:  t.Metadata,
		Lines:     assembled.Structured,
		DualTrack: assembled.DualTrack,
		Combined:  assembled.Combined,
	}, "", nil
}

// Outcome is the result of one URL in FetchAll.
type Outcome struct {
	URL    string
	Result *model.Result
	Err    error
}

// FetchAll acquires several URLs concurrently, at most
// Options.MaxConcurrent at a time. Outcomes are returned in input order;
// a failed URL does not stop the others. A URL listed more than once is
// fetched once and every copy gets its own Result.
func (o *Orchestrator) FetchAll(ctx context.Context, urls []string) []Outcome {
	outcomes := make([]Outcome, len(urls))
	first := make(map[string]int, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	if o.opts.MaxConcurrent > 0 {
		g.SetLimit(o.opts.MaxConcurrent)
	}

	for i, url := range urls {
		if _, seen := first[url]; seen {
			continue
		}
		first[url] = i
		g.Go(func() error {
			res, err := o.Fetch(ctx, url)
			outcomes[i] = Outcome{URL: url, Result: res, Err: err}
			return nil // Continue with other URLs
		})
	}

	_ = g.Wait()

	for i, url := range urls {
		if j := first[url]; j != i {
			outcomes[i] = Outcome{URL: url, Result: cloneResult(outcomes[j].Result), Err: outcomes[j].Err}
		}
	}
	return outcomes
}

func (o *Orchestrator) waitForRetry(ctx context.Context, tries int) {
	if o.opts.RetryCooldown <= 0 {
		return
	}
	exp := o.opts.RetryExponent
	if exp <= 0 {
		exp = 1
	}
	cooldown := time.Duration(float64(o.opts.RetryCooldown) * math.Pow(exp, float64(tries)))

	timer := time.NewTimer(cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (o *Orchestrator) progress(event ProgressEvent) {
	if o.onProgress != nil {
		o.onProgress(event)
	}
}

// structuralMarkers are substrings that suggest a page carries tab content.
var structuralMarkers = []string{"<pre", "chord", "lyric", "tab"}

// HasStructuralMarker reports whether content contains a tab-content
// marker, ignoring case.
func HasStructuralMarker(content string) bool {
	lower := strings.ToLower(content)
	for _, m := range structuralMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// SplitURLs extracts http(s) URLs from input separated by newlines,
// commas or spaces.
func SplitURLs(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	var urls []string
	for _, f := range fields {
		if strings.HasPrefix(f, "http://") || strings.HasPrefix(f, "https://") {
			urls = append(urls, f)
		}
	}
	return urls
}
