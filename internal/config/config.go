// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing else reads the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port           string   // default "8080"
	Env            string   // "development" | "staging" | "production"
	BaseURL        string   // e.g. "https://exit.example.de", used in email links
	AllowedOrigins []string // CORS origins, default ["*"]

	// ── Database ──────────────────────────────────────────────────────────────
	// Empty means the in-memory store; results do not survive a restart.
	DatabaseURL string

	// ── Questionnaire documents ───────────────────────────────────────────────
	QuestionsPath       string // default "data/questions.json"
	ExpertQuestionsPath string // default "data/experto_questions.json"
	ConfigCache         bool   // default true; false re-reads the files per request

	// ── Admin ─────────────────────────────────────────────────────────────────
	// Empty disables the /api/admin routes entirely.
	AdminToken string

	// ── Resend ────────────────────────────────────────────────────────────────
	ResendAPIKey  string // empty logs emails instead of sending them
	EmailFromAddr string
	EmailFromName string
	SalesInbox    string // recipient of new-lead notifications

	// ── Worker ────────────────────────────────────────────────────────────────
	WorkerCount  int           // default 2
	PollInterval time.Duration // default 1m
	JobTimeout   time.Duration // default 30s
	MaxRetries   int           // default 3

	// ── Rate limiting ─────────────────────────────────────────────────────────
	SubmitRatePerMinute int // per client IP, default 10
	SubmitBurst         int // default 5
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

var defaults = map[string]any{
	"PORT":                   "8080",
	"ENV":                    "development",
	"BASE_URL":               "http://localhost:8080",
	"ALLOWED_ORIGINS":        "*",
	"DATABASE_URL":           "",
	"QUESTIONS_PATH":         "data/questions.json",
	"EXPERT_QUESTIONS_PATH":  "data/experto_questions.json",
	"CONFIG_CACHE":           true,
	"ADMIN_TOKEN":            "",
	"RESEND_API_KEY":         "",
	"EMAIL_FROM_ADDR":        "bewertung@exit-rechner.de",
	"EMAIL_FROM_NAME":        "Exit-Rechner",
	"SALES_INBOX":            "",
	"WORKER_COUNT":           2,
	"POLL_INTERVAL":          "1m",
	"JOB_TIMEOUT":            "30s",
	"MAX_RETRIES":            3,
	"SUBMIT_RATE_PER_MINUTE": 10,
	"SUBMIT_BURST":           5,
}

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; real
// environment variables always take precedence over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	c := &Config{
		Port:                v.GetString("PORT"),
		Env:                 v.GetString("ENV"),
		BaseURL:             strings.TrimRight(v.GetString("BASE_URL"), "/"),
		AllowedOrigins:      splitList(v.GetString("ALLOWED_ORIGINS")),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		QuestionsPath:       v.GetString("QUESTIONS_PATH"),
		ExpertQuestionsPath: v.GetString("EXPERT_QUESTIONS_PATH"),
		ConfigCache:         v.GetBool("CONFIG_CACHE"),
		AdminToken:          v.GetString("ADMIN_TOKEN"),
		ResendAPIKey:        v.GetString("RESEND_API_KEY"),
		EmailFromAddr:       v.GetString("EMAIL_FROM_ADDR"),
		EmailFromName:       v.GetString("EMAIL_FROM_NAME"),
		SalesInbox:          v.GetString("SALES_INBOX"),
		WorkerCount:         v.GetInt("WORKER_COUNT"),
		PollInterval:        v.GetDuration("POLL_INTERVAL"),
		JobTimeout:          v.GetDuration("JOB_TIMEOUT"),
		MaxRetries:          v.GetInt("MAX_RETRIES"),
		SubmitRatePerMinute: v.GetInt("SUBMIT_RATE_PER_MINUTE"),
		SubmitBurst:         v.GetInt("SUBMIT_BURST"),
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	var errs []error

	if c.IsProduction() {
		required := map[string]string{
			"DATABASE_URL":   c.DatabaseURL,
			"RESEND_API_KEY": c.ResendAPIKey,
			"SALES_INBOX":    c.SalesInbox,
		}
		for name, val := range required {
			if val == "" {
				errs = append(errs, fmt.Errorf("missing required env var: %s", name))
			}
		}
	}

	if c.QuestionsPath == "" || c.ExpertQuestionsPath == "" {
		errs = append(errs, errors.New("QUESTIONS_PATH and EXPERT_QUESTIONS_PATH must not be empty"))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be >= 1, got %d", c.WorkerCount))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL must be a positive duration such as 1m"))
	}
	if c.JobTimeout <= 0 {
		errs = append(errs, errors.New("JOB_TIMEOUT must be a positive duration such as 30s"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("MAX_RETRIES must be >= 0, got %d", c.MaxRetries))
	}
	if c.SubmitRatePerMinute < 1 || c.SubmitBurst < 1 {
		errs = append(errs, errors.New("SUBMIT_RATE_PER_MINUTE and SUBMIT_BURST must be >= 1"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
