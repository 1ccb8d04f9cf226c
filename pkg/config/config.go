// pkg/config/config.go - configuration settings for the catalog server and install agent.

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// RegistryPath is the HKLM key consulted on Windows when no YAML file exists.
const RegistryPath = `SOFTWARE\AppStore\Config`

// EnvPrefix prefixes every environment override.
const EnvPrefix = "APPSTORE_"

// Configuration holds the configurable options in YAML format.
type Configuration struct {
	Debug         bool   `yaml:"Debug"`
	Verbose       bool   `yaml:"Verbose"`
	LogLevel      string `yaml:"LogLevel"`
	LogPath       string `yaml:"LogPath"`
	LogJSON       bool   `yaml:"LogJSON"`
	LogMaxSizeMB  int    `yaml:"LogMaxSizeMB"`
	LogMaxBackups int    `yaml:"LogMaxBackups"`
	LogMaxAgeDays int    `yaml:"LogMaxAgeDays"`

	// Catalog server
	CatalogListenAddr  string   `yaml:"CatalogListenAddr"`
	CatalogBaseURL     string   `yaml:"CatalogBaseURL"` // prefix for resolved download and logo URLs
	DatabaseDriver     string   `yaml:"DatabaseDriver"` // sqlite, postgres or mysql
	DatabaseDSN        string   `yaml:"DatabaseDSN"`
	DownloadsPath      string   `yaml:"DownloadsPath"` // installer files served under /download/
	LogosPath          string   `yaml:"LogosPath"`     // logo files served under /logos/
	APIToken           string   `yaml:"APIToken"`      // guards catalog writes when set
	CORSAllowedOrigins []string `yaml:"CORSAllowedOrigins"`

	// Install agent
	AgentListenAddr         string `yaml:"AgentListenAddr"`
	TempPath                string `yaml:"TempPath"`
	DownloadTimeoutSeconds  int    `yaml:"DownloadTimeoutSeconds"`
	InstallerTimeoutMinutes int    `yaml:"InstallerTimeoutMinutes"`
	RevealManualDownloads   bool   `yaml:"RevealManualDownloads"`
}

// DataDir returns the platform default directory for state and logs.
func DataDir() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "AppStore")
	}
	return "/var/lib/appstore"
}

// DefaultConfigPath is where LoadConfig looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(DataDir(), "Config.yaml")
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	dataDir := DataDir()
	return &Configuration{
		LogLevel:                "INFO",
		LogPath:                 filepath.Join(dataDir, "logs"),
		LogMaxSizeMB:            10,
		LogMaxBackups:           5,
		LogMaxAgeDays:           30,
		CatalogListenAddr:       ":5000",
		CatalogBaseURL:          "http://localhost:5000",
		DatabaseDriver:          "sqlite",
		DatabaseDSN:             filepath.Join(dataDir, "appstore.db"),
		DownloadsPath:           filepath.Join(dataDir, "downloads"),
		LogosPath:               filepath.Join(dataDir, "logos"),
		CORSAllowedOrigins:      []string{"*"},
		AgentListenAddr:         "127.0.0.1:9001",
		TempPath:                filepath.Join(os.TempDir(), "AppStoreDownloads"),
		DownloadTimeoutSeconds:  600,
		InstallerTimeoutMinutes: 15,
	}
}

// LoadConfig loads the configuration from a YAML file on top of the defaults.
// A .env file in the working directory and APPSTORE_* variables override file values.
// If the YAML file doesn't exist, Windows hosts fall back to registry settings.
func LoadConfig(path string) (*Configuration, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env file: %v", err)
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	config := GetDefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Configuration file does not exist: %s", path)
		if regErr := loadFromRegistry(config); regErr != nil {
			log.Printf("Registry configuration unavailable, using defaults: %v", regErr)
		} else {
			log.Printf("Loaded configuration from registry path: %s", RegistryPath)
		}
	default:
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	applyEnv(config, os.LookupEnv)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the binaries cannot run with.
func (c *Configuration) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DatabaseDriver %q (want sqlite, postgres or mysql)", c.DatabaseDriver)
	}
	if c.DownloadTimeoutSeconds <= 0 {
		return fmt.Errorf("DownloadTimeoutSeconds must be positive, got %d", c.DownloadTimeoutSeconds)
	}
	if c.InstallerTimeoutMinutes <= 0 {
		return fmt.Errorf("InstallerTimeoutMinutes must be positive, got %d", c.InstallerTimeoutMinutes)
	}
	if !strings.HasPrefix(c.CatalogBaseURL, "http://") && !strings.HasPrefix(c.CatalogBaseURL, "https://") {
		return fmt.Errorf("CatalogBaseURL must be an absolute http(s) URL, got %q", c.CatalogBaseURL)
	}
	return nil
}

// EnsureDirectories creates the directories named in the configuration.
func (c *Configuration) EnsureDirectories(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
	}
	return nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(config *Configuration, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnv(c *Configuration, lookup func(string) (string, bool)) {
	str := func(name string, target *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*target = v
		}
	}
	num := func(name string, target *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}
	flag := func(name string, target *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*target = b
			}
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_PATH", &c.LogPath)
	flag("DEBUG", &c.Debug)
	flag("VERBOSE", &c.Verbose)
	str("CATALOG_LISTEN_ADDR", &c.CatalogListenAddr)
	str("CATALOG_BASE_URL", &c.CatalogBaseURL)
	str("DATABASE_DRIVER", &c.DatabaseDriver)
	str("DATABASE_DSN", &c.DatabaseDSN)
	str("DOWNLOADS_PATH", &c.DownloadsPath)
	str("LOGOS_PATH", &c.LogosPath)
	str("API_TOKEN", &c.APIToken)
	str("AGENT_LISTEN_ADDR", &c.AgentListenAddr)
	str("TEMP_PATH", &c.TempPath)
	num("DOWNLOAD_TIMEOUT_SECONDS", &c.DownloadTimeoutSeconds)
	num("INSTALLER_TIMEOUT_MINUTES", &c.InstallerTimeoutMinutes)
	flag("REVEAL_MANUAL_DOWNLOADS", &c.RevealManualDownloads)

	if v, ok := lookup(EnvPrefix + "CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.CORSAllowedOrigins = splitCSV(v)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			result = append(result, v)
		}
	}
	return result
}
