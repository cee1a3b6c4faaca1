package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed assets.yaml
var assetsYAML []byte

type Config struct {
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	Matcher   MatcherConfig
	Command   CommandConfig
	Uploads   UploadsConfig
	SMTP      SMTPConfig
	Assets    AssetsConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL (pgvector extension required)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type EmbeddingConfig struct {
	URL string // face embedding service, defaults to http://localhost:8000
	Dim int    // embedding dimension, defaults to 512
}

type MatcherConfig struct {
	Tolerance float64       // max accepted distance, boundary inclusive (default 0.6)
	Timeout   time.Duration // per-call budget for the embedding service (default 15s)
}

type CommandConfig struct {
	CommandTTL      time.Duration // how long a capture command stays pollable (default 30s)
	ResultTTL       time.Duration // how long a capture result stays visible (default 60s)
	DuplicateWindow time.Duration // min gap between two logs of the same type (default 5m)
}

type UploadsConfig struct {
	Dir string // directory for captured images (default ./uploads)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Email    string
	Password string
	UseTLS   bool
	FromName string
}

// Enabled reports whether guardian mail can actually be sent.
func (c *SMTPConfig) Enabled() bool {
	return c.Email != "" && c.Password != ""
}

// AssetsConfig holds static options shipped with the binary.
type AssetsConfig struct {
	YearLevels []string     `yaml:"year_levels"`
	Notify     NotifyConfig `yaml:"notify"`
}

type NotifyConfig struct {
	SubjectIn  string `yaml:"subject_in"`
	SubjectOut string `yaml:"subject_out"`
	FromName   string `yaml:"from_name"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a time.Duration.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return b
}

func Load() *Config {
	var assets AssetsConfig
	if err := yaml.Unmarshal(assetsYAML, &assets); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded assets.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Embedding: EmbeddingConfig{
			URL: envString("EMBEDDING_URL", "http://localhost:8000"),
			Dim: envInt("EMBEDDING_DIM", 512),
		},
		Matcher: MatcherConfig{
			Tolerance: envFloat("MATCH_TOLERANCE", 0.6),
			Timeout:   envDuration("MATCHER_TIMEOUT", 15*time.Second),
		},
		Command: CommandConfig{
			CommandTTL:      envDuration("COMMAND_TTL", 30*time.Second),
			ResultTTL:       envDuration("RESULT_TTL", 60*time.Second),
			DuplicateWindow: envDuration("DUPLICATE_WINDOW", 5*time.Minute),
		},
		Uploads: UploadsConfig{
			Dir: envString("UPLOADS_DIR", "uploads"),
		},
		SMTP: SMTPConfig{
			Host:     envString("SMTP_SERVER", "smtp.gmail.com"),
			Port:     envInt("SMTP_PORT", 587),
			Email:    os.Getenv("SMTP_EMAIL"),
			Password: os.Getenv("SMTP_PASSWORD"),
			UseTLS:   envBool("SMTP_USE_TLS", true),
			FromName: envString("SMTP_FROM_NAME", assets.Notify.FromName),
		},
		Assets: assets,
	}
}
