package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "EMBEDDING_URL", "EMBEDDING_DIM", "MATCH_TOLERANCE",
		"MATCHER_TIMEOUT", "COMMAND_TTL", "RESULT_TTL", "DUPLICATE_WINDOW",
		"UPLOADS_DIR", "SMTP_EMAIL", "SMTP_PASSWORD",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Matcher.Tolerance != 0.6 {
		t.Errorf("expected default tolerance 0.6, got %v", cfg.Matcher.Tolerance)
	}
	if cfg.Command.CommandTTL != 30*time.Second {
		t.Errorf("expected default command TTL 30s, got %v", cfg.Command.CommandTTL)
	}
	if cfg.Command.ResultTTL != 60*time.Second {
		t.Errorf("expected default result TTL 60s, got %v", cfg.Command.ResultTTL)
	}
	if cfg.Command.DuplicateWindow != 5*time.Minute {
		t.Errorf("expected default duplicate window 5m, got %v", cfg.Command.DuplicateWindow)
	}
	if cfg.Embedding.Dim != 512 {
		t.Errorf("expected default embedding dim 512, got %d", cfg.Embedding.Dim)
	}
	if cfg.Uploads.Dir != "uploads" {
		t.Errorf("expected default uploads dir 'uploads', got '%s'", cfg.Uploads.Dir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMMAND_TTL", "10s")
	t.Setenv("RESULT_TTL", "2m")
	t.Setenv("DUPLICATE_WINDOW", "90s")
	t.Setenv("MATCH_TOLERANCE", "0.45")
	t.Setenv("EMBEDDING_DIM", "768")

	cfg := Load()

	if cfg.Command.CommandTTL != 10*time.Second {
		t.Errorf("expected command TTL 10s, got %v", cfg.Command.CommandTTL)
	}
	if cfg.Command.ResultTTL != 2*time.Minute {
		t.Errorf("expected result TTL 2m, got %v", cfg.Command.ResultTTL)
	}
	if cfg.Command.DuplicateWindow != 90*time.Second {
		t.Errorf("expected duplicate window 90s, got %v", cfg.Command.DuplicateWindow)
	}
	if cfg.Matcher.Tolerance != 0.45 {
		t.Errorf("expected tolerance 0.45, got %v", cfg.Matcher.Tolerance)
	}
	if cfg.Embedding.Dim != 768 {
		t.Errorf("expected embedding dim 768, got %d", cfg.Embedding.Dim)
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("COMMAND_TTL", "not-a-duration")
	t.Setenv("MATCH_TOLERANCE", "-1")
	t.Setenv("EMBEDDING_DIM", "zero")

	cfg := Load()

	if cfg.Command.CommandTTL != 30*time.Second {
		t.Errorf("expected fallback command TTL 30s, got %v", cfg.Command.CommandTTL)
	}
	if cfg.Matcher.Tolerance != 0.6 {
		t.Errorf("expected fallback tolerance 0.6, got %v", cfg.Matcher.Tolerance)
	}
	if cfg.Embedding.Dim != 512 {
		t.Errorf("expected fallback embedding dim 512, got %d", cfg.Embedding.Dim)
	}
}

func TestAssets_Embedded(t *testing.T) {
	cfg := Load()

	if len(cfg.Assets.YearLevels) == 0 {
		t.Fatal("expected embedded year levels to be non-empty")
	}
	if cfg.Assets.Notify.SubjectIn == "" {
		t.Error("expected embedded subject_in template")
	}
	if cfg.Assets.Notify.SubjectOut == "" {
		t.Error("expected embedded subject_out template")
	}
}

func TestSMTPConfig_Enabled(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"both set", "a@b.c", "secret", true},
		{"no email", "", "secret", false},
		{"no password", "a@b.c", "", false},
		{"neither", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := SMTPConfig{Email: tc.email, Password: tc.password}
			if cfg.Enabled() != tc.want {
				t.Errorf("expected Enabled() = %v", tc.want)
			}
		})
	}
}
