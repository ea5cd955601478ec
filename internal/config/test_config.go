package config

import "time"

// TestConfig returns a config with short timings and no files outside the
// caller's control.
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Action.Debounce = 50 * time.Millisecond
	cfg.Action.ResetDelay = 100 * time.Millisecond
	cfg.Random.Delay = 10 * time.Millisecond
	cfg.Feed.HTTPTimeout = 2 * time.Second
	cfg.Feed.UserAgent = "lull-test/1.0"
	cfg.Feed.AllowLocalhost = true
	cfg.Database.Path = ""
	cfg.Database.SearchIndex = ""
	return cfg
}
