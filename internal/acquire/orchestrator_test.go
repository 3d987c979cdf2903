package acquire

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/ultimate-tab/internal/config"
	"github.com/handiism/ultimate-tab/internal/model"
	"github.com/handiism/ultimate-tab/internal/ultimate"
)

const tabPage = `<html><body>
<h1 itemprop="name">Perfect Chords</h1>
<div class="t_autor">by Ed Sheeran</div>
<pre class="js-tab-content">[Verse 1]
G   D
I found a love

Em
for me somebody
</pre>
</body></html>`

// markerlessPage is long enough but carries none of the structural markers.
var markerlessPage = "<html><body><div>" + strings.Repeat("please enable javascript ", 10) + "</div></body></html>"

type countingParser struct {
	mu     sync.Mutex
	inputs []string
	next   DocumentParser
}

func (p *countingParser) Parse(html string) (*model.Tab, error) {
	p.mu.Lock()
	p.inputs = append(p.inputs, html)
	p.mu.Unlock()
	return p.next.Parse(html)
}

func (p *countingParser) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inputs)
}

func staticFetcher(content string, err error, calls *int32) Fetcher {
	return FetcherFunc(func(ctx context.Context, url string) (string, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return content, err
	})
}

func testOptions() Options {
	return Options{
		FastTimeout:      time.Second,
		RenderTimeout:    time.Second,
		RenderMaxRetries: 3,
		MinContentLength: 100,
		MaxConcurrent:    2,
	}
}

func TestOrchestrator_FastPathSucceeds(t *testing.T) {
	var slowCalls int32
	o := New(staticFetcher(tabPage, nil, nil), staticFetcher("", nil, &slowCalls), ultimate.NewParser(), testOptions(), nil)

	res, err := o.Fetch(context.Background(), "https://tabs.example/perfect")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if slowCalls != 0 {
		t.Errorf("rendered fetcher called %d times, want 0", slowCalls)
	}
	if res.Metadata.Title != "Perfect" || res.Metadata.Artist != "Ed Sheeran" {
		t.Errorf("Metadata = %+v", res.Metadata)
	}
	if len(res.Lines) == 0 {
		t.Fatal("expected parsed lines")
	}
	if len(res.DualTrack.Lyrics) != len(res.DualTrack.Tabs) {
		t.Errorf("dual track lengths differ: %d vs %d", len(res.DualTrack.Lyrics), len(res.DualTrack.Tabs))
	}
	if len(res.Attempts) != 1 || !res.Attempts[0].Succeeded || res.Attempts[0].Strategy != StrategyFast {
		t.Errorf("Attempts = %+v, want one successful fast attempt", res.Attempts)
	}
}

func TestOrchestrator_NoMarkerSkipsParse(t *testing.T) {
	parser := &countingParser{next: ultimate.NewParser()}
	o := New(staticFetcher(markerlessPage, nil, nil), staticFetcher(tabPage, nil, nil), parser, testOptions(), nil)

	res, err := o.Fetch(context.Background(), "https://tabs.example/perfect")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if parser.calls() != 1 {
		t.Fatalf("parser called %d times, want 1", parser.calls())
	}
	if parser.inputs[0] != tabPage {
		t.Error("parser received the markerless fast document")
	}

	want := []model.Attempt{
		{Strategy: StrategyFast, Number: 1, Reason: ReasonNoMarker},
		{Strategy: StrategyRendered, Number: 1, Succeeded: true},
	}
	if len(res.Attempts) != len(want) {
		t.Fatalf("got %d attempts, want %d", len(res.Attempts), len(want))
	}
	for i, w := range want {
		got := res.Attempts[i]
		if got.Strategy != w.Strategy || got.Number != w.Number || got.Succeeded != w.Succeeded || got.Reason != w.Reason {
			t.Errorf("Attempts[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestOrchestrator_AllAttemptsFail(t *testing.T) {
	boom := errors.New("boom")
	opts := testOptions()
	opts.RenderMaxRetries = 3

	o := New(staticFetcher("<pre>short</pre>", nil, nil), staticFetcher("", boom, nil), ultimate.NewParser(), opts, nil)

	_, err := o.Fetch(context.Background(), "https://tabs.example/x")
	if err == nil {
		t.Fatal("expected error")
	}

	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("error is %T, want *AcquisitionError", err)
	}
	if !errors.Is(err, ErrAcquisitionFailed) {
		t.Error("errors.Is(err, ErrAcquisitionFailed) = false")
	}
	if !errors.Is(err, boom) {
		t.Error("attempt cause not reachable through errors.Is")
	}

	want := []string{ReasonTooShort, "exception: boom", "exception: boom", "exception: boom"}
	got := acqErr.Reasons()
	if len(got) != opts.RenderMaxRetries+1 {
		t.Fatalf("got %d reasons, want %d", len(got), opts.RenderMaxRetries+1)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reason[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !strings.Contains(err.Error(), "rendered#3: exception: boom") {
		t.Errorf("error message missing last attempt: %v", err)
	}
}

func TestOrchestrator_FailureReasons(t *testing.T) {
	long := strings.Repeat("x", 120)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"whitespace only", "   \n\t ", ReasonEmptyResponse},
		{"below minimum length", "<pre>G</pre>", ReasonTooShort},
		{"no container", "<html><body><p>" + long + " tab</p></body></html>", ReasonNoContent},
		{"only section labels", "<html><body><pre class=\"js-tab-content\">[Intro]\n[Verse 1]\n</pre><p>" + long + "</p></body></html>", ReasonZeroLines},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.RenderMaxRetries = 0
			o := New(staticFetcher(tt.content, nil, nil), nil, ultimate.NewParser(), opts, nil)

			_, err := o.Fetch(context.Background(), "https://tabs.example/x")
			var acqErr *AcquisitionError
			if !errors.As(err, &acqErr) {
				t.Fatalf("error = %v, want *AcquisitionError", err)
			}
			if got := acqErr.Reasons(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("Reasons() = %q, want [%q]", got, tt.want)
			}
		})
	}
}

func TestOrchestrator_PanicIsRecorded(t *testing.T) {
	opts := testOptions()
	opts.RenderMaxRetries = 2

	var calls int32
	slow := FetcherFunc(func(ctx context.Context, url string) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("renderer crashed")
		}
		return tabPage, nil
	})

	o := New(nil, slow, ultimate.NewParser(), opts, nil)
	res, err := o.Fetch(context.Background(), "https://tabs.example/x")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(res.Attempts))
	}
	if r := res.Attempts[0].Reason; r != "exception: panic: renderer crashed" {
		t.Errorf("first reason = %q", r)
	}
}

func TestOrchestrator_AttemptTimeout(t *testing.T) {
	opts := testOptions()
	opts.RenderMaxRetries = 2
	opts.RenderTimeout = 10 * time.Millisecond

	slow := FetcherFunc(func(ctx context.Context, url string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	o := New(nil, slow, ultimate.NewParser(), opts, nil)
	_, err := o.Fetch(context.Background(), "https://tabs.example/x")

	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("error = %v, want *AcquisitionError", err)
	}
	if len(acqErr.Attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(acqErr.Attempts))
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, context.DeadlineExceeded) = false")
	}
	if acqErr.Cause != nil {
		t.Errorf("Cause = %v, want nil", acqErr.Cause)
	}
}

func TestOrchestrator_CancelStopsSequence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var slowCalls int32
	fast := FetcherFunc(func(ctx context.Context, url string) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	o := New(fast, staticFetcher(tabPage, nil, &slowCalls), ultimate.NewParser(), testOptions(), nil)
	_, err := o.Fetch(ctx, "https://tabs.example/x")

	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("error = %v, want *AcquisitionError", err)
	}
	if slowCalls != 0 {
		t.Errorf("rendered fetcher called %d times after cancel", slowCalls)
	}
	if len(acqErr.Attempts) != 1 {
		t.Errorf("got %d attempts, want 1", len(acqErr.Attempts))
	}
	if !errors.Is(acqErr.Cause, context.Canceled) {
		t.Errorf("Cause = %v, want context.Canceled", acqErr.Cause)
	}
}

func TestOrchestrator_ProgressStates(t *testing.T) {
	var mu sync.Mutex
	var states []State
	onProgress := func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		if len(states) == 0 || states[len(states)-1] != e.State {
			states = append(states, e.State)
		}
	}

	opts := testOptions()
	opts.RenderMaxRetries = 1
	o := New(staticFetcher("", nil, nil), staticFetcher("", nil, nil), ultimate.NewParser(), opts, onProgress)
	_, _ = o.Fetch(context.Background(), "https://tabs.example/x")

	want := []State{StateNotStarted, StateTryingFast, StateTryingSlow, StateFailed}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states[%d] = %v, want %v", i, states[i], want[i])
		}
	}
}

func TestOrchestrator_Cache(t *testing.T) {
	var fastCalls int32
	opts := testOptions()
	opts.CacheSize = 4

	o := New(staticFetcher(tabPage, nil, &fastCalls), nil, ultimate.NewParser(), opts, nil)
	for i := 0; i < 3; i++ {
		if _, err := o.Fetch(context.Background(), "https://tabs.example/perfect"); err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
	}
	if fastCalls != 1 {
		t.Errorf("fetcher called %d times, want 1", fastCalls)
	}
}

func TestOrchestrator_CachedResultIsCopied(t *testing.T) {
	opts := testOptions()
	opts.CacheSize = 4
	o := New(staticFetcher(tabPage, nil, nil), nil, ultimate.NewParser(), opts, nil)

	first, err := o.Fetch(context.Background(), "https://tabs.example/perfect")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	wantLyric := first.Combined[0].Lyric
	first.Metadata.Title = "changed"
	first.Combined[0].Lyric = "changed"
	first.Lines[0].Chords[0].Symbol = "X"

	second, err := o.Fetch(context.Background(), "https://tabs.example/perfect")
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	second.DualTrack.Lyrics[0] = "changed again"

	third, err := o.Fetch(context.Background(), "https://tabs.example/perfect")
	if err != nil {
		t.Fatalf("third Fetch failed: %v", err)
	}
	for i, res := range []*model.Result{second, third} {
		if res.Metadata.Title != "Perfect" || res.Combined[0].Lyric != wantLyric || res.Lines[0].Chords[0].Symbol != "G" {
			t.Errorf("result %d shares state with an earlier caller: %+v", i+2, res)
		}
	}
	if third.DualTrack.Lyrics[0] == "changed again" {
		t.Error("cached dual track was modified through a returned result")
	}
}

func TestOrchestrator_FetchWithPerCallProgress(t *testing.T) {
	var shared, perCall []State
	opts := testOptions()
	opts.CacheSize = 4
	o := New(staticFetcher(tabPage, nil, nil), nil, ultimate.NewParser(), opts, func(e ProgressEvent) {
		shared = append(shared, e.State)
	})

	if _, err := o.FetchWith(context.Background(), "https://tabs.example/perfect", func(e ProgressEvent) {
		perCall = append(perCall, e.State)
	}); err != nil {
		t.Fatalf("FetchWith failed: %v", err)
	}
	if len(perCall) == 0 || len(perCall) != len(shared) {
		t.Fatalf("per-call events %v, shared events %v", perCall, shared)
	}
	if perCall[0] != StateNotStarted || perCall[len(perCall)-1] != StateSucceeded {
		t.Errorf("per-call states = %v", perCall)
	}

	// A cache hit still reports through the per-call sink.
	perCall = nil
	if _, err := o.FetchWith(context.Background(), "https://tabs.example/perfect", func(e ProgressEvent) {
		perCall = append(perCall, e.State)
	}); err != nil {
		t.Fatalf("cached FetchWith failed: %v", err)
	}
	want := []State{StateNotStarted, StateSucceeded}
	if len(perCall) != len(want) || perCall[0] != want[0] || perCall[1] != want[1] {
		t.Errorf("cached states = %v, want %v", perCall, want)
	}
}

func TestOrchestrator_FetchAllDuplicates(t *testing.T) {
	var calls int32
	opts := testOptions()
	opts.RenderMaxRetries = 0
	o := New(staticFetcher(tabPage, nil, &calls), nil, ultimate.NewParser(), opts, nil)

	urls := []string{"https://t/a", "https://t/b", "https://t/a"}
	outcomes := o.FetchAll(context.Background(), urls)

	if calls != 2 {
		t.Errorf("fetcher called %d times, want 2", calls)
	}
	if outcomes[2].URL != "https://t/a" || outcomes[2].Err != nil || outcomes[2].Result == nil {
		t.Fatalf("duplicate outcome = %+v", outcomes[2])
	}
	if outcomes[0].Result == outcomes[2].Result {
		t.Error("duplicate URLs share one Result")
	}
}

func TestOrchestrator_FetchAll(t *testing.T) {
	var inFlight, peak int32
	fast := FetcherFunc(func(ctx context.Context, url string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		if strings.HasSuffix(url, "bad") {
			return "", errors.New("not found")
		}
		return tabPage, nil
	})

	opts := testOptions()
	opts.RenderMaxRetries = 0
	opts.MaxConcurrent = 2
	o := New(fast, nil, ultimate.NewParser(), opts, nil)

	urls := []string{"https://t/1", "https://t/bad", "https://t/3", "https://t/4"}
	outcomes := o.FetchAll(context.Background(), urls)

	if len(outcomes) != len(urls) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(urls))
	}
	for i, oc := range outcomes {
		if oc.URL != urls[i] {
			t.Errorf("outcomes[%d].URL = %q, want %q", i, oc.URL, urls[i])
		}
		wantErr := i == 1
		if (oc.Err != nil) != wantErr {
			t.Errorf("outcomes[%d].Err = %v, wantErr %v", i, oc.Err, wantErr)
		}
		if !wantErr && oc.Result == nil {
			t.Errorf("outcomes[%d].Result is nil", i)
		}
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestOrchestrator_RetryCooldownHonoursCancel(t *testing.T) {
	opts := testOptions()
	opts.RenderMaxRetries = 3
	opts.RetryCooldown = time.Hour
	opts.RetryExponent = 2
	opts.TotalTimeout = 20 * time.Millisecond

	o := New(nil, staticFetcher("", nil, nil), ultimate.NewParser(), opts, nil)

	start := time.Now()
	_, err := o.Fetch(context.Background(), "https://tabs.example/x")
	if time.Since(start) > time.Second {
		t.Fatal("cooldown ignored the total timeout")
	}

	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("error = %v, want *AcquisitionError", err)
	}
	if len(acqErr.Attempts) != 1 {
		t.Errorf("got %d attempts, want 1", len(acqErr.Attempts))
	}
	if !errors.Is(acqErr.Cause, context.DeadlineExceeded) {
		t.Errorf("Cause = %v, want context.DeadlineExceeded", acqErr.Cause)
	}
}

func TestHasStructuralMarker(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"<PRE class=x>", true},
		{"Guitar CHORDS by someone", true},
		{"lyrics here", true},
		{"<div data-tab-id=1>", true},
		{"<html><body>nothing here</body></html>", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := HasStructuralMarker(tt.content); got != tt.want {
			t.Errorf("HasStructuralMarker(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestSplitURLs(t *testing.T) {
	input := "https://tabs.example/a, https://tabs.example/b\nnot-a-url\n\thttp://tabs.example/c"
	got := SplitURLs(input)
	want := []string{"https://tabs.example/a", "https://tabs.example/b", "http://tabs.example/c"}

	if len(got) != len(want) {
		t.Fatalf("SplitURLs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitURLs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOptionsFromSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.RenderMaxRetries = 5
	s.FastTimeout = 2.5

	opts := OptionsFromSettings(s)
	if opts.RenderMaxRetries != 5 {
		t.Errorf("RenderMaxRetries = %d, want 5", opts.RenderMaxRetries)
	}
	if opts.FastTimeout != 2500*time.Millisecond {
		t.Errorf("FastTimeout = %v, want 2.5s", opts.FastTimeout)
	}
	if opts.MinContentLength != s.MinContentLength || opts.CacheSize != s.CacheSize {
		t.Errorf("opts = %+v", opts)
	}

	o := NewFromSettings(s, nil)
	if got := len(o.plan()); got != 6 {
		t.Errorf("plan has %d attempts, want 6", got)
	}
}
