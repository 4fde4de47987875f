// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Identifier schemes accepted by IDScheme.
const (
	IDSchemeTime = "time"
	IDSchemeUUID = "uuid"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StoragePath is the filesystem path to the SQLite .db file.
	// When empty, records live in a process-local slot and are lost on exit.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	// SlotKey names the durable slot holding the whole collection.
	SlotKey string `yaml:"slot_key" env:"SLOT_KEY" env-default:"students-data"`

	// IDScheme selects how new record ids are minted: "time" or "uuid".
	IDScheme string `yaml:"id_scheme" env:"ID_SCHEME" env-default:"time"`

	// SeedFile is an optional YAML file replacing the built-in seed records
	// used when the slot is empty.
	SeedFile string `yaml:"seed_file" env:"SEED_FILE"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	switch c.IDScheme {
	case IDSchemeTime, IDSchemeUUID:
	default:
		return fmt.Errorf("invalid id_scheme %q: want %q or %q", c.IDScheme, IDSchemeTime, IDSchemeUUID)
	}
	if c.SlotKey == "" {
		return fmt.Errorf("slot_key must not be empty")
	}
	return nil
}

// MustLoad reads, validates, and returns the application config.
// It exits the process on failure, so callers need no error check.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	return cfg
}
