package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"leadtracker/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string   `yaml:"name"`
	Environment string   `yaml:"environment"`
	Version     string   `yaml:"version"`
	SecretKey   string   `yaml:"secret_key"`
	Interests   []string `yaml:"interests"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects the engine and carries its credentials.
// Path is only used by the sqlite engine.
type DatabaseConfig struct {
	Engine         string `yaml:"engine"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Name           string `yaml:"name"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	SSLMode        string `yaml:"sslmode"`
	Path           string `yaml:"path"`
	ConnectTimeout int    `yaml:"connect_timeout"`
	MaxRetries     int    `yaml:"max_retries"`
	RetryDelay     string `yaml:"retry_delay"`
	Pooled         bool   `yaml:"pooled"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type RateLimitConfig struct {
	SubmissionsPerWindow int `yaml:"submissions_per_window"`
	WindowSeconds        int `yaml:"window_seconds"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional: in containers everything comes from the environment
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyEnv lets the DB_* variables override whatever the file says.
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_ENGINE"); v != "" {
		c.Database.Engine = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.App.SecretKey = v
	}
}

func (c *Config) Validate() error {
	switch c.Database.Engine {
	case models.EngineMySQL, models.EnginePostgres:
		if c.Database.Host == "" {
			return errors.New("database host is required")
		}
		if c.Database.Name == "" {
			return errors.New("database name is required")
		}
		if c.Database.User == "" {
			return errors.New("database user is required")
		}
	case models.EngineSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database engine %q: must be mysql, postgres or sqlite", c.Database.Engine)
	}

	if c.Database.MaxRetries < 1 {
		return errors.New("database max_retries must be at least 1")
	}
	if _, err := c.Database.RetryDelayDuration(); err != nil {
		return fmt.Errorf("invalid database retry_delay: %w", err)
	}

	return ValidateInterests(c.App.Interests)
}

func ValidateInterests(interests []string) error {
	seen := make(map[string]bool)
	for _, interest := range interests {
		name := strings.TrimSpace(interest)
		if name == "" {
			return errors.New("interest name must not be empty")
		}
		if len([]rune(name)) > models.MaxInterestLen {
			return fmt.Errorf("interest %q exceeds %d characters", name, models.MaxInterestLen)
		}
		if seen[name] {
			return fmt.Errorf("duplicate interest found: %s", name)
		}
		seen[name] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "leadtracker"
	}
	if len(c.App.Interests) == 0 {
		c.App.Interests = append([]string(nil), models.DefaultInterests...)
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.Database.Engine == "" {
		c.Database.Engine = models.EngineMySQL
	}
	c.Database.Engine = strings.ToLower(strings.TrimSpace(c.Database.Engine))
	if c.Database.Engine == "postgresql" {
		c.Database.Engine = models.EnginePostgres
	}
	if c.Database.Port == 0 {
		switch c.Database.Engine {
		case models.EngineMySQL:
			c.Database.Port = 3306
		case models.EnginePostgres:
			c.Database.Port = 5432
		}
	}
	if c.Database.SSLMode == "" && c.Database.Engine == models.EnginePostgres {
		c.Database.SSLMode = "prefer"
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = models.DefaultConnectTimeout
	}
	if c.Database.MaxRetries == 0 {
		c.Database.MaxRetries = models.DefaultMaxRetries
	}
	if c.Database.RetryDelay == "" {
		c.Database.RetryDelay = fmt.Sprintf("%ds", models.DefaultRetryDelay)
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = models.DefaultSubmissionWindow
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// RetryDelayDuration parses RetryDelay ("2s", "500ms").
func (d DatabaseConfig) RetryDelayDuration() (time.Duration, error) {
	if d.RetryDelay == "" {
		return time.Duration(models.DefaultRetryDelay) * time.Second, nil
	}
	delay, err := time.ParseDuration(d.RetryDelay)
	if err != nil {
		return 0, err
	}
	if delay < 0 {
		return 0, fmt.Errorf("negative delay %s", delay)
	}
	return delay, nil
}

// Window returns the submission rate limit window.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}
