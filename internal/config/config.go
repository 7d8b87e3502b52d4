package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Employee API
	APIBaseURL string        `yaml:"api_base_url"`
	APITimeout time.Duration `yaml:"api_timeout"`

	// Logging
	LogLevel    string `yaml:"log_level"`
	LogFilePath string `yaml:"log_file_path"`

	// Stub server
	StubAddr string `yaml:"stub_addr"`

	// SFTP drop for exports
	SFTPHost                  string `yaml:"sftp_host"`
	SFTPPort                  int    `yaml:"sftp_port"`
	SFTPUser                  string `yaml:"sftp_user"`
	SFTPPass                  string `yaml:"sftp_pass"`
	SFTPDir                   string `yaml:"sftp_dir"`
	SFTPKnownHosts            string `yaml:"sftp_known_hosts"`
	SFTPInsecureIgnoreHostKey bool   `yaml:"sftp_insecure_ignore_hostkey"`
}

func defaults() Config {
	return Config{
		APIBaseURL:                "http://localhost:8080",
		APITimeout:                30 * time.Second,
		LogLevel:                  "info",
		StubAddr:                  ":8080",
		SFTPPort:                  22,
		SFTPDir:                   "/inbound",
		SFTPInsecureIgnoreHostKey: true,
	}
}

// Load builds the configuration from defaults, an optional .env file, an
// optional YAML file (EMPLOYEES_CONFIG_PATH) and finally the environment.
func Load() (Config, error) {
	if err := godotenv.Load(getenv("EMPLOYEES_ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env file: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("EMPLOYEES_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.APIBaseURL = getenv("EMPLOYEE_API_BASE_URL", cfg.APIBaseURL)
	cfg.APITimeout = getenvDuration("EMPLOYEE_API_TIMEOUT", cfg.APITimeout)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFilePath = getenv("LOG_FILE_PATH", cfg.LogFilePath)
	cfg.StubAddr = getenv("STUB_ADDR", cfg.StubAddr)

	cfg.SFTPHost = getenv("SFTP_HOST", cfg.SFTPHost)
	cfg.SFTPPort = getenvInt("SFTP_PORT", cfg.SFTPPort)
	cfg.SFTPUser = getenv("SFTP_USER", cfg.SFTPUser)
	cfg.SFTPPass = getenv("SFTP_PASS", cfg.SFTPPass)
	cfg.SFTPDir = getenv("SFTP_DIR", cfg.SFTPDir)
	cfg.SFTPKnownHosts = getenv("SFTP_KNOWN_HOSTS", cfg.SFTPKnownHosts)
	cfg.SFTPInsecureIgnoreHostKey = getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", cfg.SFTPInsecureIgnoreHostKey)

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("config: EMPLOYEE_API_BASE_URL must not be empty")
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse config file: %w", err)
	}
	return nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getenvDuration accepts Go durations ("45s") or plain seconds ("45").
func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return def
}
