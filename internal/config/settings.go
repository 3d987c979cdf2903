package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Fast path
	FastTimeout float64 `json:"fast_timeout"` // seconds
	UserAgent   string  `json:"user_agent"`

	// Rendered (slow) path
	RenderMaxRetries int     `json:"render_max_retries"`
	RenderTimeout    float64 `json:"render_timeout"` // seconds, per attempt
	RetryCooldown    float64 `json:"retry_cooldown"` // seconds
	RetryExponent    float64 `json:"retry_exponent"`
	BrowserPath      string  `json:"browser_path"`
	Headless         bool    `json:"headless"`
	BlockResources   bool    `json:"block_resources"`

	// Whole acquisition
	TotalTimeout     float64 `json:"total_timeout"` // seconds, 0 = no limit
	MinContentLength int     `json:"min_content_length"`

	// Batch and cache
	MaxConcurrentTabs int `json:"max_concurrent_tabs"`
	CacheSize         int `json:"cache_size"` // 0 disables the cache

	// URL check
	AllowedHosts []string `json:"allowed_hosts"`

	// Logging
	LogLevel  string `json:"log_level"`  // debug, info, warn, error
	LogFormat string `json:"log_format"` // text, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		FastTimeout: 5,

		RenderMaxRetries: 3,
		RenderTimeout:    30,
		RetryCooldown:    0.5,
		RetryExponent:    2,
		Headless:         true,
		BlockResources:   true,

		TotalTimeout:     120,
		MinContentLength: 100,

		MaxConcurrentTabs: 2,
		CacheSize:         32,

		AllowedHosts: []string{"tabs.ultimate-guitar.com"},

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads settings from a JSON file.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Environment variables read by ApplyEnv.
const (
	EnvBrowserPath   = "ULTIMATE_TAB_BROWSER_PATH"
	EnvRenderRetries = "ULTIMATE_TAB_RENDER_RETRIES"
	EnvTotalTimeout  = "ULTIMATE_TAB_TOTAL_TIMEOUT"
	EnvUserAgent     = "ULTIMATE_TAB_USER_AGENT"
	EnvLogLevel      = "ULTIMATE_TAB_LOG_LEVEL"
	EnvLogFormat     = "ULTIMATE_TAB_LOG_FORMAT"
)

// ApplyEnv overrides settings from ULTIMATE_TAB_* environment variables.
// Unset or unparsable values are ignored.
func (s *Settings) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBrowserPath)); v != "" {
		s.BrowserPath = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvRenderRetries))); err == nil && v >= 0 {
		s.RenderMaxRetries = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(EnvTotalTimeout)), 64); err == nil && v >= 0 {
		s.TotalTimeout = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUserAgent)); v != "" {
		s.UserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		s.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		s.LogFormat = v
	}
}

// IsAllowedURL reports whether rawURL is an http(s) URL on one of the
// allowed hosts. An empty AllowedHosts list allows every host.
func (s *Settings) IsAllowedURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	if len(s.AllowedHosts) == 0 {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range s.AllowedHosts {
		if strings.EqualFold(host, h) {
			return true
		}
	}
	return false
}

// Seconds converts a seconds setting into a time.Duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
