package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/rights-console"
	ConfigFileName    = "rights.yml"
)

// Backend kinds
const (
	BackendAPI      = "api"
	BackendDatabase = "database"
)

// Config holds all rights console configuration settings
type Config struct {
	// APIURL is the root of the remote permission API
	APIURL string `yaml:"api_url" json:"api_url"`

	// APIToken is the bearer token sent to the API
	APIToken string `yaml:"api_token" json:"-"`

	// Backend selects the permission backend: api or database
	Backend string `yaml:"backend" json:"backend"`

	// DatabaseURL is used by the database backend and by migrations
	DatabaseURL string `yaml:"database_url" json:"-"`

	// AuditDatabaseURL enables persisting audit messages
	AuditDatabaseURL string `yaml:"audit_database_url" json:"-"`

	// ListenAddress is the console server bind address
	ListenAddress string `yaml:"listen_address" json:"listen_address"`

	// Port is the console server port
	Port int `yaml:"port" json:"port"`

	// SessionTTL is how long an idle edit session is kept
	SessionTTL time.Duration `yaml:"session_ttl" json:"session_ttl"`

	// SessionCacheSize is the maximum number of open edit sessions
	SessionCacheSize int `yaml:"session_cache_size" json:"session_cache_size"`

	// RequestTimeout bounds each backend request
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ReadOnly disables every mutation in the console
	ReadOnly bool `yaml:"read_only" json:"read_only"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig distinguishes unset file values from zero values
type fileConfig struct {
	APIURL           *string        `yaml:"api_url"`
	APIToken         *string        `yaml:"api_token"`
	Backend          *string        `yaml:"backend"`
	DatabaseURL      *string        `yaml:"database_url"`
	AuditDatabaseURL *string        `yaml:"audit_database_url"`
	ListenAddress    *string        `yaml:"listen_address"`
	Port             *int           `yaml:"port"`
	SessionTTL       *time.Duration `yaml:"session_ttl"`
	SessionCacheSize *int           `yaml:"session_cache_size"`
	RequestTimeout   *time.Duration `yaml:"request_timeout"`
	LogLevel         *string        `yaml:"log_level"`
	ReadOnly         *bool          `yaml:"read_only"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		Backend:          BackendAPI,
		ListenAddress:    "127.0.0.1",
		Port:             8080,
		SessionTTL:       30 * time.Minute,
		SessionCacheSize: 256,
		RequestTimeout:   30 * time.Second,
		LogLevel:         "info",
		sources:          make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("RIGHTS_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"api_url", "api_token", "backend", "database_url", "audit_database_url",
		"listen_address", "port", "session_ttl", "session_cache_size",
		"request_timeout", "log_level", "read_only",
	}
}

func setFrom[T any](dst *T, src *T, sources map[string]string, name string) {
	if src != nil {
		*dst = *src
		sources[name] = "file"
	}
}

func (c *Config) applyFileConfig(file *fileConfig) {
	setFrom(&c.APIURL, file.APIURL, c.sources, "api_url")
	setFrom(&c.APIToken, file.APIToken, c.sources, "api_token")
	setFrom(&c.Backend, file.Backend, c.sources, "backend")
	setFrom(&c.DatabaseURL, file.DatabaseURL, c.sources, "database_url")
	setFrom(&c.AuditDatabaseURL, file.AuditDatabaseURL, c.sources, "audit_database_url")
	setFrom(&c.ListenAddress, file.ListenAddress, c.sources, "listen_address")
	setFrom(&c.Port, file.Port, c.sources, "port")
	setFrom(&c.SessionTTL, file.SessionTTL, c.sources, "session_ttl")
	setFrom(&c.SessionCacheSize, file.SessionCacheSize, c.sources, "session_cache_size")
	setFrom(&c.RequestTimeout, file.RequestTimeout, c.sources, "request_timeout")
	setFrom(&c.LogLevel, file.LogLevel, c.sources, "log_level")
	setFrom(&c.ReadOnly, file.ReadOnly, c.sources, "read_only")
}

func (c *Config) applyEnvConfig() error {
	texts := map[string]struct {
		env string
		dst *string
	}{
		"api_url":            {"RIGHTS_API_URL", &c.APIURL},
		"api_token":          {"RIGHTS_API_TOKEN", &c.APIToken},
		"backend":            {"RIGHTS_BACKEND", &c.Backend},
		"database_url":       {"DATABASE_URL", &c.DatabaseURL},
		"audit_database_url": {"AUDIT_DATABASE_URL", &c.AuditDatabaseURL},
		"listen_address":     {"RIGHTS_LISTEN_ADDRESS", &c.ListenAddress},
		"log_level":          {"RIGHTS_LOG_LEVEL", &c.LogLevel},
	}
	for name, s := range texts {
		if val := os.Getenv(s.env); val != "" {
			*s.dst = val
			c.sources[name] = "environment"
		}
	}

	ints := map[string]struct {
		env string
		dst *int
	}{
		"port":               {"PORT", &c.Port},
		"session_cache_size": {"RIGHTS_SESSION_CACHE_SIZE", &c.SessionCacheSize},
	}
	for name, s := range ints {
		if val := os.Getenv(s.env); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", s.env, val, err)
			}
			*s.dst = i
			c.sources[name] = "environment"
		}
	}

	durations := map[string]struct {
		env string
		dst *time.Duration
	}{
		"session_ttl":     {"RIGHTS_SESSION_TTL", &c.SessionTTL},
		"request_timeout": {"RIGHTS_REQUEST_TIMEOUT", &c.RequestTimeout},
	}
	for name, s := range durations {
		if val := os.Getenv(s.env); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", s.env, val, err)
			}
			*s.dst = d
			c.sources[name] = "environment"
		}
	}

	if val := os.Getenv("RIGHTS_READ_ONLY"); val != "" {
		c.ReadOnly = val == "true" || val == "1"
		c.sources["read_only"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Address returns the console server listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.Port)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAPI:
		if c.APIURL == "" {
			return fmt.Errorf("api_url is required when backend is %q", BackendAPI)
		}
	case BackendDatabase:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when backend is %q", BackendDatabase)
		}
	default:
		return fmt.Errorf("invalid backend %q: must be %q or %q", c.Backend, BackendAPI, BackendDatabase)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid session_ttl: %s", c.SessionTTL)
	}
	if c.SessionCacheSize < 1 {
		return fmt.Errorf("invalid session_cache_size: %d", c.SessionCacheSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request_timeout: %s", c.RequestTimeout)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "backend", Value: c.Backend, Source: c.Source("backend")},
		{Name: "api_url", Value: c.APIURL, Source: c.Source("api_url")},
		{Name: "api_token", Value: mask(c.APIToken), Source: c.Source("api_token")},
		{Name: "database_url", Value: mask(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "audit_database_url", Value: mask(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
		{Name: "listen_address", Value: c.ListenAddress, Source: c.Source("listen_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "session_ttl", Value: c.SessionTTL.String(), Source: c.Source("session_ttl")},
		{Name: "session_cache_size", Value: strconv.Itoa(c.SessionCacheSize), Source: c.Source("session_cache_size")},
		{Name: "request_timeout", Value: c.RequestTimeout.String(), Source: c.Source("request_timeout")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "read_only", Value: strconv.FormatBool(c.ReadOnly), Source: c.Source("read_only")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
