package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Thomazoide/superform-av/internal/utils"
)

// DeviceKey is a provisioned device credential. KeyHash is a bcrypt hash of
// the device key handed to the field unit.
type DeviceKey struct {
	ID      string `yaml:"id"`
	KeyHash string `yaml:"key_hash"`
}

// Config is the main configuration structure shared by the capture client
// and the ingest server.
type Config struct {
	Server struct {
		IP        string `yaml:"ip"`
		Port      int    `yaml:"port"`
		UploadDir string `yaml:"upload_dir"`
		DSN       string `yaml:"dsn"`
		Auth      struct {
			Enabled bool        `yaml:"enabled"`
			Secret  string      `yaml:"secret"`
			Devices []DeviceKey `yaml:"devices"`
		} `yaml:"auth"`
	} `yaml:"server"`

	Client struct {
		Endpoint string `yaml:"endpoint"`
		Token    string `yaml:"token"`
		Camera   struct {
			Command   string `yaml:"command"`
			OutputDir string `yaml:"output_dir"`
		} `yaml:"camera"`
		Location struct {
			Provider       string  `yaml:"provider"` // "http" or "static"
			URL            string  `yaml:"url"`
			TimeoutSeconds int     `yaml:"timeout_seconds"`
			Lat            float64 `yaml:"lat"`
			Lng            float64 `yaml:"lng"`
		} `yaml:"location"`
	} `yaml:"client"`

	Log struct {
		LogDir  string `yaml:"log_dir"`
		LogFile string `yaml:"log_file"`
	} `yaml:"log"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.IP = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.UploadDir = utils.Getenv("UPLOAD_DIR", "uploads")
	cfg.Server.DSN = "sqlite://superform.db"
	cfg.Client.Endpoint = "http://localhost:8080/api/reports"
	cfg.Client.Camera.Command = "libcamera-still -n -o %s"
	cfg.Client.Camera.OutputDir = os.TempDir()
	cfg.Client.Location.Provider = "http"
	cfg.Client.Location.URL = "http://ip-api.com/json"
	cfg.Client.Location.TimeoutSeconds = 10
	cfg.Log.LogDir = "logs"
	cfg.Log.LogFile = "superform.log"
	return cfg
}

// LoadConfig reads .config.yaml (preferred) or config.yaml, falling back to
// defaults when neither exists, then applies environment overrides.
func LoadConfig() (*Config, string, error) {
	path := ".config.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "config.yaml"
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, path, err
		}
		path = ""
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, path, nil
}

// applyEnv lets deployment env vars override file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SUPERFORM_ENDPOINT"); v != "" {
		cfg.Client.Endpoint = v
	}
	if v := os.Getenv("SUPERFORM_TOKEN"); v != "" {
		cfg.Client.Token = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Server.DSN = v
	}
	if v := os.Getenv("SUPERFORM_AUTH_SECRET"); v != "" {
		cfg.Server.Auth.Secret = v
	}
}
