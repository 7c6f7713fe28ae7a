package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath dipakai kalau CONFIG_PATH kosong
const DefaultPath = "config.yaml"

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		MaxUploadMB int64    `yaml:"maxUploadMB"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	History struct {
		Backend string `yaml:"backend"` // file | mysql | postgres
		Path    string `yaml:"path"`
	} `yaml:"history"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Model struct {
		Backend        string `yaml:"backend"` // onnx | tfserving | openai
		Path           string `yaml:"path"`
		Labels         string `yaml:"labels"`
		RuntimeLibrary string `yaml:"runtimeLibrary"`
		InputName      string `yaml:"inputName"`
		OutputName     string `yaml:"outputName"`
		CleanIndicator string `yaml:"cleanIndicator"`
		Watch          bool   `yaml:"watch"`
		ServingURL     string `yaml:"servingURL"`
		ServingModel   string `yaml:"servingModel"`
	} `yaml:"model"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Charts struct {
		FontPath string `yaml:"fontPath"`
	} `yaml:"charts"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv loads CONFIG_PATH (default config.yaml). When the default file does
// not exist the built-in defaults are used, so the CLI works without a config.
func FromEnv() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default config tanpa file
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.History.Backend == "" {
		c.History.Backend = "file"
	}
	if c.History.Path == "" {
		c.History.Path = "analysis_history.json"
	}
	if c.Model.Backend == "" {
		c.Model.Backend = "onnx"
	}
	if c.Model.Path == "" {
		c.Model.Path = "keras_model.onnx"
	}
	if c.Model.Labels == "" {
		c.Model.Labels = "labels.txt"
	}
	if c.Model.ServingModel == "" {
		c.Model.ServingModel = "room"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "room-uploads"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		switch c.History.Backend {
		case "postgres":
			c.Database.Port = 5432
		default:
			c.Database.Port = 3306
		}
	}
}

// Validate checks enum fields.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case "file", "memory", "mysql", "postgres":
	default:
		return fmt.Errorf("history.backend %q not supported (file, memory, mysql, postgres)", c.History.Backend)
	}
	switch c.Model.Backend {
	case "onnx":
	case "tfserving":
		if c.Model.ServingURL == "" {
			return errors.New("model.servingURL is required for the tfserving backend")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return errors.New("openai.apiKey (or OPENAI_API_KEY) is required for the openai backend")
		}
	default:
		return fmt.Errorf("model.backend %q not supported (onnx, tfserving, openai)", c.Model.Backend)
	}
	return nil
}

// MaxUploadBytes is server.maxUploadMB in bytes
func (c *Config) MaxUploadBytes() int64 { return c.Server.MaxUploadMB << 20 }

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres (lib/pq URL form)
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// MigrateURL is the golang-migrate database URL for the SQL history backend.
func (c *Config) MigrateURL() (string, error) {
	switch c.History.Backend {
	case "mysql":
		return "mysql://" + c.MySQLDSN() + "&multiStatements=true", nil
	case "postgres":
		return c.PostgresDSN(), nil
	}
	return "", fmt.Errorf("history.backend %q has no schema to migrate", c.History.Backend)
}
