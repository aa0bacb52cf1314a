package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is picked up from the working directory when no explicit
// path is given.
const DefaultConfigFile = "dbddl.yaml"

// EnvPrefix marks environment overrides. Nested keys use a double underscore:
// DBDDL_SOURCE__HOST sets source.host.
const EnvPrefix = "DBDDL_"

type DatabaseConfig struct {
	Type     string `koanf:"type" yaml:"type"`
	Host     string `koanf:"host" yaml:"host"`
	Port     int    `koanf:"port" yaml:"port"`
	Database string `koanf:"database" yaml:"database"`
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`
	SSLMode  string `koanf:"sslmode" yaml:"sslmode"`
	Schema   string `koanf:"schema" yaml:"schema"`
}

type GenerationConfig struct {
	QuoteIdentifiers bool     `koanf:"quote_identifiers" yaml:"quote_identifiers"`
	IncludeDrops     bool     `koanf:"include_drops" yaml:"include_drops"`
	Catalog          string   `koanf:"catalog" yaml:"catalog,omitempty"`
	Schema           string   `koanf:"schema" yaml:"schema,omitempty"`
	Tables           []string `koanf:"tables" yaml:"tables,omitempty"`
}

type Config struct {
	Dialects   []string         `koanf:"dialects" yaml:"dialects"`
	Input      string           `koanf:"input" yaml:"input,omitempty"`
	Output     string           `koanf:"output" yaml:"output,omitempty"`
	Terminator string           `koanf:"terminator" yaml:"terminator"`
	Verbose    bool             `koanf:"verbose" yaml:"verbose"`
	Generation GenerationConfig `koanf:"generation" yaml:"generation"`
	Source     DatabaseConfig   `koanf:"source" yaml:"source"`
}

// flagKeys maps CLI flag names onto config keys where the two differ.
var flagKeys = map[string]string{
	"dialect":           "dialects",
	"quote-identifiers": "generation.quote_identifiers",
	"include-drops":     "generation.include_drops",
	"catalog":           "generation.catalog",
	"schema":            "generation.schema",
	"tables":            "generation.tables",
	"source-schema":     "source.schema",
	"source-host":       "source.host",
	"source-port":       "source.port",
	"source-database":   "source.database",
	"source-user":       "source.username",
	"source-password":   "source.password",
	"source-sslmode":    "source.sslmode",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"dialects":       []string{"generic"},
		"terminator":     ";",
		"verbose":        false,
		"source.type":    "postgres",
		"source.host":    "localhost",
		"source.port":    5432,
		"source.sslmode": "disable",
		"source.schema":  "public",
	}
}

// LoadConfig reads a single YAML configuration file on top of the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(configPath, nil)
}

// Load builds the configuration from defaults, the YAML file, DBDDL_*
// environment variables and explicitly set flags, in increasing precedence.
// An empty configPath falls back to DefaultConfigFile when it exists.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configPath = DefaultConfigFile
		}
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func (c *Config) normalize() {
	var dialects []string
	for _, d := range c.Dialects {
		for _, part := range strings.Split(d, ",") {
			if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
				dialects = append(dialects, name)
			}
		}
	}
	c.Dialects = dialects

	c.Source.Type = normalizeDatabaseType(c.Source.Type)
	if c.Source.Type == "postgres" && c.Source.SSLMode == "" {
		c.Source.SSLMode = "disable"
	}
}

// Validate checks settings that do not depend on which command runs.
func (c *Config) Validate() error {
	if len(c.Dialects) == 0 {
		return fmt.Errorf("at least one dialect is required")
	}
	if c.Source.Type != "postgres" {
		return fmt.Errorf("unsupported source database type: %s", c.Source.Type)
	}
	return nil
}

// ConnectionString returns the lib/pq DSN for the source database.
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.Username,
		d.Password,
		d.Database,
		d.SSLMode,
	)
}

func normalizeDatabaseType(dbType string) string {
	dbType = strings.ToLower(strings.TrimSpace(dbType))
	switch dbType {
	case "", "postgres", "postgresql":
		return "postgres"
	default:
		return dbType
	}
}
