// Package acquire fetches tab pages with a fast path and a rendered
// fallback, and hands the first usable document to the parser.
//
// # Attempt sequence
//
// An Orchestrator moves through these states:
//
//	NotStarted → TryingFast → TryingSlow (1..N) → Succeeded | Failed
//
//  1. One plain HTTP fetch. The document must be long enough and contain a
//     structural marker (a <pre>, or "chord", "tab" or "lyric") before it is
//     parsed.
//  2. Up to N headless-browser renders, each with its own timeout.
//
// A document counts only if it parses into at least one non-blank line.
// Each failed attempt is recorded with a short reason such as "too short",
// "no structural marker", "zero parsed lines" or "exception: <message>".
//
// # Basic Usage
//
//	o := acquire.New(
//	    acquire.FetcherFunc(client.GetString),
//	    acquire.FetcherFunc(renderer.Render),
//	    ultimate.NewParser(),
//	    acquire.OptionsFromSettings(settings),
//	    func(e acquire.ProgressEvent) { log.Println(e.Message) },
//	)
//
//	res, err := o.Fetch(ctx, url)
//	var acqErr *acquire.AcquisitionError
//	if errors.As(err, &acqErr) {
//	    for _, a := range acqErr.Attempts {
//	        fmt.Println(a)
//	    }
//	}
//
// # Progress Tracking
//
// Progress is reported via a callback that receives ProgressEvent values
// carrying the state, a message and, once an attempt finishes, its record.
// Every Fetch starts with a StateNotStarted event. Nothing is written to a
// global logger.
//
// A long-lived Orchestrator, for example one per UI session so that its
// cache is reused, can take a callback per call:
//
//	res, err := o.FetchWith(ctx, url, func(e acquire.ProgressEvent) {
//	    events <- e
//	})
//
// # Retry Logic
//
// Rendered attempts after the first wait RetryCooldown * RetryExponent^(n-1).
// Options.TotalTimeout bounds the whole sequence on top of the per-attempt
// timeouts.
package acquire
