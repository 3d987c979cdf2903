// Package http provides the HTTP client used for the fast acquisition path.
//
// The Client in this package handles:
//   - Browser-like request headers, to avoid being served a bot page
//   - Short timeouts
//   - Response size limits
//
// # Basic Usage
//
//	client := http.NewClient(5*time.Second, "")
//
//	html, err := client.GetString(ctx, "https://tabs.ultimate-guitar.com/tab/...")
//	if err != nil {
//	    log.Fatal(err)
//	}
package http
