package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/linesmerrill/shift-handover/models"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys: HANDOVER_SERVER_PORT -> server.port
const EnvPrefix = "HANDOVER_"

const maxConfigFileSize = 1024 * 1024

const defaults = `
env: local
server:
  host: 127.0.0.1
  port: 8080
  request_timeout: 30s
storage:
  path: ""
  max_value_bytes: 5242880
export:
  dir: ""
  department_title: "BÁO CÁO GIAO BAN KHOA NGOẠI"
  author: "bshieuubdl@gmail.com"
  company: "BUH"
  footer: "bshieuubdl@gmail.com"
  logo_path: ""
  rows_per_slide: 10
backup:
  enabled: false
  schedule: "0 2 * * *"
  dir: ""
  keep: 7
auth:
  username: ""
  password_hash: ""
`

// Config holds the project config values
type Config struct {
	Env     string        `koanf:"env"`
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Export  ExportConfig  `koanf:"export"`
	Backup  BackupConfig  `koanf:"backup"`
	Auth    AuthConfig    `koanf:"auth"`
}

// ServerConfig holds the local HTTP listener settings
type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig locates the local report store
type StorageConfig struct {
	Path          string `koanf:"path"`
	MaxValueBytes int    `koanf:"max_value_bytes"`
}

// ExportConfig holds slide deck metadata and the default download folder.
// LogoPath optionally points at a PNG, JPEG or GIF drawn on every slide.
type ExportConfig struct {
	Dir             string `koanf:"dir"`
	DepartmentTitle string `koanf:"department_title"`
	Author          string `koanf:"author"`
	Company         string `koanf:"company"`
	Footer          string `koanf:"footer"`
	LogoPath        string `koanf:"logo_path"`
	RowsPerSlide    int    `koanf:"rows_per_slide"`
}

// BackupConfig controls the periodic store snapshot
type BackupConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"`
	Dir      string `koanf:"dir"`
	Keep     int    `koanf:"keep"`
}

// AuthConfig enables basic/bearer auth on the local API when PasswordHash is set
type AuthConfig struct {
	Username     string `koanf:"username"`
	PasswordHash string `koanf:"password_hash"`
}

// Enabled reports whether credentials are configured
func (a AuthConfig) Enabled() bool {
	return a.Username != "" && a.PasswordHash != ""
}

// New loads the config and replaces the global zap logger with one suited to
// the configured environment
func New(configPath string) (*Config, error) {
	conf, err := Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := setLogger(conf.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	_ = zap.ReplaceGlobals(logger)
	return conf, nil
}

// Load reads defaults, then the optional YAML file at configPath, then
// HANDOVER_* environment variables. Later sources win.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var conf Config
	if err := k.Unmarshal("", &conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := conf.resolvePaths(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// envKey maps HANDOVER_SECTION_SOME_FIELD to section.some_field. Section names
// never contain an underscore, field names may.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if s == "env" {
		return s
	}
	return strings.Replace(s, "_", ".", 1)
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s is larger than %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// resolvePaths fills the per-profile default locations
func (c *Config) resolvePaths() error {
	if c.Storage.Path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to find user config directory: %w", err)
		}
		c.Storage.Path = filepath.Join(dir, "shift-handover", "reports.db")
	}
	if c.Export.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to find home directory: %w", err)
		}
		c.Export.Dir = filepath.Join(home, "Downloads")
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(filepath.Dir(c.Storage.Path), "backups")
	}
	return nil
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	if err != nil {
		zap.S().With(err).Error(message)
	} else {
		zap.S().Error(message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)

	resp := models.ErrorMessageResponse{Response: models.MessageError{Message: message}}
	if err != nil {
		resp.Response.Error = err.Error()
	}
	_ = json.NewEncoder(w).Encode(resp)
}
