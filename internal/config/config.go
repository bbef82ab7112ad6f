// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dorontal/scrapelog/internal/revreader"
)

const (
	defaultLogDir       = "."
	defaultLogName      = "scraper"
	defaultDBName       = "scrapelog.db"
	defaultStateName    = ".scrapelog-state"
	defaultPollInterval = 5 * time.Minute
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"

	dayLayout = "2006-01-02"
)

// Config for the scrapelog tools
type Config struct {
	LogDir       string        `yaml:"log_dir" validate:"required"`
	LogName      string        `yaml:"log_name" validate:"required,excludesall=/"`
	DBPath       string        `yaml:"db_path" validate:"required"`
	StateFile    string        `yaml:"state_file" validate:"required"`
	MetricsFile  string        `yaml:"metrics_file"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gte=1s"`
	BufferSize   int           `yaml:"buffer_size" validate:"gte=1"`
	LogLevel     string        `yaml:"log_level" validate:"oneof=trace debug info warn warning error critical fatal disabled off"`
	LogFormat    string        `yaml:"log_format" validate:"oneof=console json"`
}

// envOverrides are applied on top of the file. Unset variables leave
// the file value alone; LOG_DIR and LOG_LEVEL are shared with the scrapers.
type envOverrides struct {
	LogDir       string        `env:"LOG_DIR"`
	LogLevel     string        `env:"LOG_LEVEL"`
	DBPath       string        `env:"SCRAPELOG_DB_PATH"`
	StateFile    string        `env:"SCRAPELOG_STATE_FILE"`
	MetricsFile  string        `env:"SCRAPELOG_METRICS_FILE"`
	LogFormat    string        `env:"SCRAPELOG_LOG_FORMAT"`
	PollInterval time.Duration `env:"SCRAPELOG_POLL_INTERVAL"`
}

// tomlConfig mirrors Config for TOML files, which have no duration type.
type tomlConfig struct {
	LogDir       string `toml:"log_dir"`
	LogName      string `toml:"log_name"`
	DBPath       string `toml:"db_path"`
	StateFile    string `toml:"state_file"`
	PollInterval string `toml:"poll_interval"`
	BufferSize   int    `toml:"buffer_size"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	MetricsFile  string `toml:"metrics_file"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. Variables that are already set win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML (or .toml) file with env overrides.
// An empty path yields the defaults plus env overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			err = decodeTOML(data, &cfg)
		} else {
			err = yaml.Unmarshal(data, &cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if o.LogDir != "" {
		c.LogDir = o.LogDir
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.StateFile != "" {
		c.StateFile = o.StateFile
	}
	if o.MetricsFile != "" {
		c.MetricsFile = o.MetricsFile
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.PollInterval > 0 {
		c.PollInterval = o.PollInterval
	}
	return nil
}

// Validate checks the settings after defaults have been applied.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func decodeTOML(data []byte, cfg *Config) error {
	var raw tomlConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}

	cfg.LogDir = raw.LogDir
	cfg.LogName = raw.LogName
	cfg.DBPath = raw.DBPath
	cfg.StateFile = raw.StateFile
	cfg.BufferSize = raw.BufferSize
	cfg.LogLevel = raw.LogLevel
	cfg.LogFormat = raw.LogFormat
	cfg.MetricsFile = raw.MetricsFile
	if s := strings.TrimSpace(raw.PollInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.LogDir = strings.TrimSpace(c.LogDir)
	if c.LogDir == "" {
		c.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.LogName) == "" {
		c.LogName = defaultLogName
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.LogDir, defaultDBName)
	}
	if c.StateFile == "" {
		c.StateFile = filepath.Join(c.LogDir, defaultStateName)
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.BufferSize <= 0 {
		c.BufferSize = revreader.BufferSize
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
}

// LogPath returns the log file the scrapers write on the given day:
// <log_dir>/<YYYY-MM-DD>_<log_name>.log
func (c *Config) LogPath(day time.Time) string {
	return filepath.Join(c.LogDir, day.Format(dayLayout)+"_"+c.LogName+".log")
}

// LatestLogPath returns the newest dated log file for LogName in LogDir.
func (c *Config) LatestLogPath() (string, error) {
	pattern := filepath.Join(c.LogDir, "*_"+c.LogName+".log")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}

	var dated []string
	for _, m := range matches {
		day := strings.TrimSuffix(filepath.Base(m), "_"+c.LogName+".log")
		if _, err := time.Parse(dayLayout, day); err == nil {
			dated = append(dated, m)
		}
	}
	if len(dated) == 0 {
		return "", fmt.Errorf("no %s logs found in %s", c.LogName, c.LogDir)
	}

	sort.Strings(dated)
	return dated[len(dated)-1], nil
}

// ReaderOptions returns the reverse reader settings from the config.
func (c *Config) ReaderOptions() []revreader.Option {
	return []revreader.Option{revreader.WithBufferSize(c.BufferSize)}
}
