// Package browser renders JavaScript-driven pages in a headless Chrome
// using chromedp.
//
// It is the slow acquisition path: used when a plain HTTP fetch returns a
// page whose tab content is only filled in by scripts.
//
//	r := browser.NewRenderer(browser.Options{
//	    Headless:       true,
//	    BlockResources: true,
//	    Timeout:        30 * time.Second,
//	})
//	html, err := r.Render(ctx, url)
//
// Each call owns its browser process and always tears it down before
// returning.
package browser
