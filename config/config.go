package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"campscout/models"
)

type Config struct {
	Database    DatabaseConfig
	Proxy       ProxyConfig
	Smtp        SmtpConfig
	Billing     BillingConfig
	Render      RenderConfig
	Search      SearchConfig
	Storage     StorageConfig
	Scheduler   SchedulerConfig
	Pipeline    PipelineConfig
	Discovery   DiscoveryConfig
	DBPath      string // local SQLite for the command queue
	LogLevel    string
	AdminEmails []string
	Seeds       map[string]*SourceSeed
}

type DatabaseConfig struct {
	URL string
}

type ProxyConfig struct {
	URL string
}

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
}

type BillingConfig struct {
	BaseURL string
	APIKey  string
}

type RenderConfig struct {
	BaseURL string
	APIKey  string
}

type SearchConfig struct {
	BaseURL string
	APIKey  string
}

type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

// PipelineConfig carries the pipeline thresholds. Defaults match production.
type PipelineConfig struct {
	ImportThreshold      int     // completeness below this goes to pending review
	AutoActivateScore    float64 // avg completeness that auto-activates a source
	DegradedFailures     int     // consecutive failures that raise a warning
	RegenerateFailures   int     // consecutive failures that flag regeneration
	DisableFailures      int     // consecutive failures that disable the source
	DevRequestCap        int     // dev requests filed per sweep
	DevRequestStaleAfter time.Duration
	DefaultCadenceHours  int
	LowAvailability      int // spots-remaining threshold for alerts
	ChangeLookback       time.Duration
}

type DiscoveryConfig struct {
	MaxDepth    int
	RateLimitMS int
	MaxPerCity  int
	Feeds       map[string][]string // city slug -> feed URLs, from config/feeds.yaml
}

// SourceSeed is a YAML-seeded scrape source definition under config/sources/.
type SourceSeed struct {
	Name         string                   `yaml:"name"`
	URL          string                   `yaml:"url"`
	City         string                   `yaml:"city"`
	Organization string                   `yaml:"organization,omitempty"`
	LogoURL      string                   `yaml:"logo_url,omitempty"`
	CadenceHours int                      `yaml:"cadence_hours,omitempty"`
	Method       *models.ExtractionMethod `yaml:"method,omitempty"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Smtp: SmtpConfig{
			Server:       os.Getenv("SMTP_SERVER"),
			Port:         getEnvInt("SMTP_PORT", 587),
			EmailAddress: os.Getenv("SMTP_EMAIL"),
			Password:     os.Getenv("SMTP_PASSWORD"),
		},
		Billing: BillingConfig{
			BaseURL: os.Getenv("BILLING_API_URL"),
			APIKey:  os.Getenv("BILLING_API_KEY"),
		},
		Render: RenderConfig{
			BaseURL: os.Getenv("RENDER_API_URL"),
			APIKey:  os.Getenv("RENDER_API_KEY"),
		},
		Search: SearchConfig{
			BaseURL: os.Getenv("SEARCH_API_URL"),
			APIKey:  os.Getenv("SEARCH_API_KEY"),
		},
		Storage: StorageConfig{
			Bucket:          os.Getenv("STORAGE_BUCKET"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
			PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_URL"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		Pipeline: PipelineConfig{
			ImportThreshold:      getEnvInt("IMPORT_THRESHOLD", 60),
			AutoActivateScore:    getEnvFloat("AUTO_ACTIVATE_SCORE", 80),
			DegradedFailures:     getEnvInt("DEGRADED_FAILURES", 3),
			RegenerateFailures:   getEnvInt("REGENERATE_FAILURES", 5),
			DisableFailures:      getEnvInt("DISABLE_FAILURES", 10),
			DevRequestCap:        getEnvInt("DEV_REQUEST_CAP", 5),
			DevRequestStaleAfter: getEnvDuration("DEV_REQUEST_STALE_AFTER", 7*24*time.Hour),
			DefaultCadenceHours:  getEnvInt("DEFAULT_CADENCE_HOURS", 24),
			LowAvailability:      getEnvInt("LOW_AVAILABILITY_THRESHOLD", 5),
			ChangeLookback:       getEnvDuration("CHANGE_LOOKBACK", 24*time.Hour),
		},
		Discovery: DiscoveryConfig{
			MaxDepth:    getEnvInt("DISCOVERY_MAX_DEPTH", 2),
			RateLimitMS: getEnvInt("DISCOVERY_RATE_LIMIT_MS", 1000),
			MaxPerCity:  getEnvInt("DISCOVERY_MAX_PER_CITY", 50),
		},
		DBPath:   getEnv("DB_PATH", "campscout.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Seeds:    make(map[string]*SourceSeed),
	}

	if admins := os.Getenv("ADMIN_EMAILS"); admins != "" {
		cfg.AdminEmails = splitCSV(admins)
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSourceSeeds(); err != nil {
		return nil, err
	}
	if err := cfg.loadFeeds(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFeeds reads the per-city discovery feed list. No file means no feed
// scanning.
func (c *Config) loadFeeds() error {
	data, err := os.ReadFile("config/feeds.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	feeds, err := parseFeeds(data)
	if err != nil {
		return fmt.Errorf("config/feeds.yaml: %w", err)
	}
	c.Discovery.Feeds = feeds
	return nil
}

// parseFeeds decodes a city-slug-to-feed-URLs mapping.
func parseFeeds(data []byte) (map[string][]string, error) {
	feeds := make(map[string][]string)
	if err := yaml.Unmarshal(data, &feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

func (c *Config) loadSourceSeeds() error {
	seedDir := "config/sources"
	entries, err := os.ReadDir(seedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(seedDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var seed SourceSeed
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return err
		}

		c.Seeds[seed.URL] = &seed
	}

	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
