// Package config loads the settings shared by the cityadm commands.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/errors"
	"github.com/smartcity/citydump/replay"
	"gopkg.in/yaml.v3"
)

// DatabaseEnv overrides Config.Database when set
const DatabaseEnv = "CITYADM_DATABASE"

// DefaultTables are the Smart City tables, in an order that satisfies
// their foreign keys on restore.
var DefaultTables = []string{"citizens", "vehicles", "sensors", "incidents", "fines"}

// Config is passed explicitly to every component the CLI builds.
type Config struct {
	// Database is a mysql:// or postgres:// URI
	Database string `yaml:"database"`
	// Tables are dumped in this order. Empty means every table.
	Tables  []string `yaml:"tables"`
	Exclude []string `yaml:"exclude"`
	// RestrictedTables may not be modified from the console
	RestrictedTables []string `yaml:"restricted_tables"`
	// ErrorPreview is how many failed statements a restore prints
	ErrorPreview     int `yaml:"error_preview"`
	ProgressInterval int `yaml:"progress_interval"`
}

// DefaultEnvFile is read by the CLI before the config file
const DefaultEnvFile = ".env"

// LoadEnvFile exports the variables of a dotenv file that are not
// already set in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil
		}
		return errors.Wrapf(err, `failed to load env file %s`, path)
	}
	return nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Tables:       append([]string(nil), DefaultTables...),
		ErrorPreview: replay.DefaultPreview,
	}
}

// Load reads the YAML file at path on top of Default. An empty path
// yields the defaults. The DatabaseEnv variable takes precedence over
// the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, `failed to read config file %s`, path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, `failed to parse config file %s`, path)
		}
	}

	if v := os.Getenv(DatabaseEnv); v != "" {
		cfg.Database = v
	}
	return cfg, nil
}

// Validate checks the configuration for values no command can use.
func (c *Config) Validate() error {
	if c.Database != "" {
		if _, err := citydump.ParseDatabaseURI(c.Database); err != nil {
			return errors.Wrap(err, `invalid database`)
		}
	}
	if c.ErrorPreview < 0 {
		return errors.Errorf(`error_preview must not be negative, got %d`, c.ErrorPreview)
	}
	if c.ProgressInterval < 0 {
		return errors.Errorf(`progress_interval must not be negative, got %d`, c.ProgressInterval)
	}
	return nil
}

// OpenDatabase parses and opens the configured database.
func (c *Config) OpenDatabase() (*citydump.Database, error) {
	if c.Database == "" {
		return nil, errors.Errorf(`no database configured (set "database" or %s)`, DatabaseEnv)
	}
	db, err := citydump.ParseDatabaseURI(c.Database)
	if err != nil {
		return nil, errors.Wrap(err, `invalid database`)
	}
	return db, nil
}
