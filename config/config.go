package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingRomsDir   = errors.New("storage.roms_dir is not set")
	ErrMissingServer    = errors.New("server.address is not set")
	ErrMissingIndexFile = errors.New("server.index_file is not set")
)

type Config struct {
	LogLevel  int  `yaml:"log_level"`
	AssumeYes bool `yaml:"assume_yes"`

	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Publish PublishConfig `yaml:"publish"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig describes the remote archive holding the CPC collection.
type ServerConfig struct {
	Address        string `yaml:"address"`
	CatalogPath    string `yaml:"catalog_path"`
	IndexFile      string `yaml:"index_file"`
	WhatsNewFile   string `yaml:"whats_new_file"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StorageConfig struct {
	// Directory the ROM files are downloaded into
	RomsDir string `yaml:"roms_dir"`

	// Directory holding the local index copy, the notice file and the exports
	WorkDir string `yaml:"work_dir"`
}

type PublishConfig struct {
	// Type of publishing target for exports: "none" or "gcs"
	Type string `yaml:"type"`

	// GCS options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// CatalogURL is the server address joined with the catalog sub-path,
// always ending in a slash.
func (s ServerConfig) CatalogURL() string {
	base := strings.TrimRight(s.Address, "/")
	p := strings.Trim(s.CatalogPath, "/")
	if p == "" {
		return base + "/"
	}
	return base + "/" + p + "/"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config *Config

	// Unmarshal the YAML data into the struct, expanding ${VAR} references first
	err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config == nil {
		config = &Config{}
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) setDefaults() {
	if c.Server.Username == "" {
		c.Server.Username = "anonymous"
	}
	if c.Server.Password == "" {
		c.Server.Password = "anonymous"
	}
	if c.Server.TimeoutSeconds <= 0 {
		c.Server.TimeoutSeconds = 30
	}

	if c.Storage.WorkDir == "" {
		c.Storage.WorkDir = "."
	}

	if c.Publish.Type == "" {
		c.Publish.Type = "none"
	}

	if c.Log.File == "" {
		c.Log.File = "Cpceek.log"
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = 10
	}
}

// Validate reports the first required setting that is missing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.RomsDir) == "" {
		return ErrMissingRomsDir
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return ErrMissingServer
	}
	if strings.TrimSpace(c.Server.IndexFile) == "" {
		return ErrMissingIndexFile
	}
	switch c.Publish.Type {
	case "none":
	case "gcs":
		if c.Publish.Bucket == "" {
			return fmt.Errorf("publish.bucket is required for publish type %q", c.Publish.Type)
		}
	default:
		return fmt.Errorf("unknown publish type: %s", c.Publish.Type)
	}
	return nil
}
