package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	src := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return Config{
		Source:           src,
		IntervalSecs:     1.5,
		GeminiAPIKey:     "g",
		ElevenLabsAPIKey: "e",
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"empty source", func(c *Config) { c.Source = "" }, "source is empty"},
		{"missing source", func(c *Config) { c.Source = c.Source + ".nope" }, "stat source"},
		{"negative start", func(c *Config) { c.StartTime = -1 }, "start time"},
		{"zero interval", func(c *Config) { c.IntervalSecs = 0 }, "interval"},
		{"negative workers", func(c *Config) { c.MaxWorkers = -1 }, "workers"},
		{"no gemini key", func(c *Config) { c.GeminiAPIKey = "" }, "gemini api key"},
		{"no elevenlabs key", func(c *Config) { c.ElevenLabsAPIKey = "" }, "elevenlabs api key"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig(t)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestDefaultPromptMentionsSentinel(t *testing.T) {
	t.Parallel()

	if !strings.Contains(DefaultPrompt, "NO INFORMATION") {
		t.Fatalf("default prompt must define the no-information sentinel")
	}
}
