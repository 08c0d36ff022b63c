package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"laborpulse/pkg/contracts/domain"
)

// Config is the complete application configuration. It is loaded once in
// main and passed explicitly into constructors; domain packages never read
// the environment themselves.
type Config struct {
	FRED    FREDConfig    `yaml:"fred" envconfig:"FRED"`
	Skills  SkillsConfig  `yaml:"skills" envconfig:"SKILLS"`
	Storage StorageConfig `yaml:"storage" envconfig:"STORAGE"`
	Metrics MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// FREDConfig configures the FRED observations client and the tracked series.
type FREDConfig struct {
	APIKey          string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	MandatorySeries []string      `yaml:"mandatory_series" envconfig:"MANDATORY_SERIES"`
	OptionalSeries  []string      `yaml:"optional_series" envconfig:"OPTIONAL_SERIES"`
}

// SkillsConfig configures the optional taxonomy source.
type SkillsConfig struct {
	URL     string        `yaml:"url" envconfig:"URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// StorageConfig configures where the flat tables live and whether the
// SQLite mirror is maintained alongside them.
type StorageConfig struct {
	DataDir             string `yaml:"data_dir" envconfig:"DATA_DIR"`
	CSVDir              string `yaml:"csv_dir" envconfig:"CSV_DIR"`
	UseSecondaryStorage bool   `yaml:"use_secondary_storage" envconfig:"USE_SECONDARY_STORAGE"`
	SQLitePath          string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

// MetricsConfig configures the metrics builder.
type MetricsConfig struct {
	// BaselineMonth is the reference period normalized to 100, "YYYY-MM".
	BaselineMonth string `yaml:"baseline_month" envconfig:"BASELINE_MONTH"`
	// SmoothingWindow is the trailing SMA window applied to index columns
	// when a consumer requests smoothed output. The persisted table is
	// always written unsmoothed.
	SmoothingWindow int `yaml:"smoothing_window" envconfig:"SMOOTHING_WINDOW"`
}

// ServerConfig contains HTTP server configuration for the dashboard API.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load loads configuration in precedence order: environment variables
// (prefix LABOR_) win over the optional YAML file, which wins over built-in
// defaults. The environment is processed first and the file only fills
// fields the environment left unset; defaults fill whatever remains.
func Load() (*Config, error) {
	var cfg Config

	// Environment first. Fields without an env var stay zero so the file
	// can fill them.
	if err := envconfig.Process("LABOR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := configFilePath(); path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no environment or file
// overrides are present. Tests build on top of this.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// mergeConfigs merges file config into env config; env takes precedence, so
// a file value lands only where the environment left the field zero.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.FRED.APIKey == "" {
		envConfig.FRED.APIKey = fileConfig.FRED.APIKey
	}
	if envConfig.FRED.BaseURL == "" {
		envConfig.FRED.BaseURL = fileConfig.FRED.BaseURL
	}
	if envConfig.FRED.Timeout == 0 {
		envConfig.FRED.Timeout = fileConfig.FRED.Timeout
	}
	if len(envConfig.FRED.MandatorySeries) == 0 {
		envConfig.FRED.MandatorySeries = fileConfig.FRED.MandatorySeries
	}
	if len(envConfig.FRED.OptionalSeries) == 0 {
		envConfig.FRED.OptionalSeries = fileConfig.FRED.OptionalSeries
	}

	if envConfig.Skills.URL == "" {
		envConfig.Skills.URL = fileConfig.Skills.URL
	}
	if envConfig.Skills.Timeout == 0 {
		envConfig.Skills.Timeout = fileConfig.Skills.Timeout
	}

	if envConfig.Storage.DataDir == "" {
		envConfig.Storage.DataDir = fileConfig.Storage.DataDir
	}
	if envConfig.Storage.CSVDir == "" {
		envConfig.Storage.CSVDir = fileConfig.Storage.CSVDir
	}
	if !envConfig.Storage.UseSecondaryStorage {
		envConfig.Storage.UseSecondaryStorage = fileConfig.Storage.UseSecondaryStorage
	}
	if envConfig.Storage.SQLitePath == "" {
		envConfig.Storage.SQLitePath = fileConfig.Storage.SQLitePath
	}

	if envConfig.Metrics.BaselineMonth == "" {
		envConfig.Metrics.BaselineMonth = fileConfig.Metrics.BaselineMonth
	}
	if envConfig.Metrics.SmoothingWindow == 0 {
		envConfig.Metrics.SmoothingWindow = fileConfig.Metrics.SmoothingWindow
	}

	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Server.IdleTimeout == 0 {
		envConfig.Server.IdleTimeout = fileConfig.Server.IdleTimeout
	}
	if envConfig.Server.ShutdownTimeout == 0 {
		envConfig.Server.ShutdownTimeout = fileConfig.Server.ShutdownTimeout
	}
	if envConfig.Server.RateLimitRPS == 0 {
		envConfig.Server.RateLimitRPS = fileConfig.Server.RateLimitRPS
	}
	if envConfig.Server.RateLimitBurst == 0 {
		envConfig.Server.RateLimitBurst = fileConfig.Server.RateLimitBurst
	}

	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	return envConfig
}

// applyDefaults fills every field neither the environment nor the file set.
func (c *Config) applyDefaults() {
	if c.FRED.BaseURL == "" {
		c.FRED.BaseURL = "https://api.stlouisfed.org/fred/series/observations"
	}
	if c.FRED.Timeout == 0 {
		c.FRED.Timeout = 30 * time.Second
	}
	if len(c.FRED.MandatorySeries) == 0 {
		c.FRED.MandatorySeries = []string{domain.SeriesUnemployment, domain.SeriesCPI}
	}
	if len(c.FRED.OptionalSeries) == 0 {
		c.FRED.OptionalSeries = []string{domain.SeriesOpenings, domain.SeriesHires, domain.SeriesQuits}
	}

	if c.Skills.URL == "" {
		c.Skills.URL = "https://raw.githubusercontent.com/lightcast/open-skills/main/data/skills.csv"
	}
	if c.Skills.Timeout == 0 {
		c.Skills.Timeout = 60 * time.Second
	}

	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.CSVDir == "" {
		c.Storage.CSVDir = filepath.Join(c.Storage.DataDir, "csv")
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = filepath.Join(c.Storage.DataDir, "labor.db")
	}

	if c.Metrics.BaselineMonth == "" {
		c.Metrics.BaselineMonth = "2019-12"
	}
	if c.Metrics.SmoothingWindow == 0 {
		c.Metrics.SmoothingWindow = 3
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 50
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 100
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join("logs", "laborpulse.log")
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, err := c.Baseline(); err != nil {
		return err
	}
	if c.Metrics.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing window must be at least 1, got %d", c.Metrics.SmoothingWindow)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if len(c.FRED.MandatorySeries) == 0 {
		return fmt.Errorf("at least one mandatory series must be configured")
	}
	return nil
}

// Baseline parses the configured baseline month.
func (c *Config) Baseline() (time.Time, error) {
	t, err := time.Parse("2006-01", c.Metrics.BaselineMonth)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid baseline month %q: %w", c.Metrics.BaselineMonth, err)
	}
	return t, nil
}

// AllSeries returns the full tracked series set, mandatory first.
func (c *Config) AllSeries() []string {
	out := make([]string, 0, len(c.FRED.MandatorySeries)+len(c.FRED.OptionalSeries))
	out = append(out, c.FRED.MandatorySeries...)
	out = append(out, c.FRED.OptionalSeries...)
	return out
}

// IsMandatory reports whether a series is a mandatory input.
func (c *Config) IsMandatory(seriesID string) bool {
	for _, id := range c.FRED.MandatorySeries {
		if id == seriesID {
			return true
		}
	}
	return false
}

// CSVPath returns the path of a named CSV table under the csv directory.
func (c *Config) CSVPath(filename string) string {
	return filepath.Join(c.Storage.CSVDir, filename)
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
