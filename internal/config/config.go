package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yhzhou/ttagent/pkg/logger"
)

// Config is the root configuration, loaded from config.yaml.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Behavior BehaviorConfig `yaml:"behavior"`
	Style    StyleConfig    `yaml:"style"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  logger.Config  `yaml:"logging"`
}

// BrowserConfig configures the chromedp session.
type BrowserConfig struct {
	Headless    bool   `yaml:"headless"`
	CookiesFile string `yaml:"cookies_file"`
	UserDataDir string `yaml:"user_data_dir"`
	SlowMoMs    int    `yaml:"slow_mo_ms"`
}

// BehaviorConfig controls pacing and interactive gates.
type BehaviorConfig struct {
	ConfirmationMode  bool `yaml:"confirmation_mode"`
	MaxCommentsPerRun int  `yaml:"max_comments_per_run"`
	MinReadCount      int  `yaml:"min_read_count"`
	CommentIntervalS  int  `yaml:"comment_interval"`
}

// CommentInterval returns the pause between consecutive actions.
func (b BehaviorConfig) CommentInterval() time.Duration {
	return time.Duration(b.CommentIntervalS) * time.Second
}

// StyleConfig shapes generated-comment prompts.
type StyleConfig struct {
	Length       string `yaml:"length"`
	Stance       string `yaml:"stance"`
	EmotionLevel string `yaml:"emotion_level"`
}

// ScheduleConfig configures unattended runs.
type ScheduleConfig struct {
	Timezone         string `yaml:"timezone"`
	RunIntervalHours int    `yaml:"run_interval_hours"`
}

// StorageConfig configures the ledger database.
type StorageConfig struct {
	DBFile string `yaml:"db_file"`
}

// Credentials are the platform account credentials, read from the
// environment (a .env file is honored) rather than the config file.
type Credentials struct {
	Username string
	Password string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:    true,
			CookiesFile: "data/cookies.json",
			UserDataDir: "data/user_data",
		},
		Behavior: BehaviorConfig{
			ConfirmationMode:  true,
			MaxCommentsPerRun: 5,
			MinReadCount:      1000,
			CommentIntervalS:  30,
		},
		Style: StyleConfig{
			Length:       "50-100字",
			Stance:       "理性批判",
			EmotionLevel: "medium",
		},
		Schedule: ScheduleConfig{
			Timezone:         "Asia/Shanghai",
			RunIntervalHours: 4,
		},
		Storage: StorageConfig{
			DBFile: "data/comments.db",
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path and merges it over defaults. A missing
// file is not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Dump renders the effective configuration as YAML.
func (c *Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadCredentials reads account credentials from the environment, loading a
// .env file first if one exists.
func LoadCredentials() Credentials {
	_ = godotenv.Load()
	return Credentials{
		Username: os.Getenv("TOUTIAO_USERNAME"),
		Password: os.Getenv("TOUTIAO_PASSWORD"),
	}
}

// Valid reports whether both credential fields are present.
func (c Credentials) Valid() bool {
	return c.Username != "" && c.Password != ""
}
