package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"leasesync/internal/subnet"
)

// DefaultEnvFile is read when no config path is given
const DefaultEnvFile = "config.env"

// DNS provider kinds
const (
	ProviderPihole = "pihole"
	ProviderPDNS   = "pdns"
)

// Config holds all configuration
type Config struct {
	UniFi          UniFiConfig
	DNSProvider    string
	Pihole         PiholeConfig
	PDNS           PDNSConfig
	DNSDomain      string
	AllowedSubnets []string
	DeniedSubnets  []string
	HTTPTimeoutSec int
	Log            LogConfig
	Worker         WorkerConfig
	HTTPAddr       string
	Redis          RedisConfig
	LockTTLSec     int
	HistoryDSN     string
	JWT            JWTConfig
	AdminHash      string

	// FileLoaded is false when the config file was missing and only the environment was used
	FileLoaded bool
}

// UniFiConfig holds the controller configuration
type UniFiConfig struct {
	Host      string
	Port      string
	APIToken  string
	Site      string
	VerifyTLS bool
}

// PiholeConfig holds Pi-hole configuration
type PiholeConfig struct {
	Host     string
	Scheme   string
	Password string
}

// PDNSConfig holds PowerDNS configuration
type PDNSConfig struct {
	URL      string
	APIKey   string
	ServerID string
	Zone     string
	TTL      int
}

// LogConfig holds logging configuration
type LogConfig struct {
	File  string
	Level string
}

// WorkerConfig holds the periodic sync worker configuration
type WorkerConfig struct {
	Enabled     bool
	IntervalSec int
}

// RedisConfig holds Redis configuration for the pass lock
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration for the HTTP API
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// HTTPTimeout is the per-call timeout for controller and resolver requests
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// Load loads configuration from an env file and environment variables.
// Variables already set in the environment win over the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultEnvFile
	}

	fileLoaded := false
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		fileLoaded = true
	}

	cfg := &Config{
		UniFi: UniFiConfig{
			Host:      getEnv("UNIFI_HOST", ""),
			Port:      getEnv("UNIFI_PORT", "443"),
			APIToken:  getEnv("UNIFI_API_TOKEN", ""),
			Site:      getEnv("UNIFI_SITE", "default"),
			VerifyTLS: getEnvBool("UNIFI_VERIFY_TLS", false),
		},
		DNSProvider: strings.ToLower(getEnv("DNS_PROVIDER", ProviderPihole)),
		Pihole: PiholeConfig{
			Host:     getEnv("PIHOLE_HOST", ""),
			Scheme:   getEnv("PIHOLE_SCHEME", "http"),
			Password: getEnv("PIHOLE_PASSWORD", ""),
		},
		PDNS: PDNSConfig{
			URL:      getEnv("PDNS_URL", ""),
			APIKey:   getEnv("PDNS_API_KEY", ""),
			ServerID: getEnv("PDNS_SERVER_ID", "localhost"),
			Zone:     getEnv("PDNS_ZONE", ""),
			TTL:      getEnvInt("PDNS_TTL", 300),
		},
		DNSDomain:      getEnv("DNS_DOMAIN", ""),
		AllowedSubnets: subnet.ParsePrefixes(getEnv("ALLOWED_SUBNETS", "")),
		DeniedSubnets:  subnet.ParsePrefixes(getEnv("DENIED_SUBNETS", "")),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 10),
		Log: LogConfig{
			File:  getEnv("LOG_FILE", "/var/log/leasesync.log"),
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
		Worker: WorkerConfig{
			Enabled:     getEnvBool("SYNC_WORKER_ENABLED", true),
			IntervalSec: getEnvInt("SYNC_INTERVAL_SEC", 300),
		},
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		LockTTLSec: getEnvInt("LOCK_TTL_SEC", 120),
		HistoryDSN: getEnv("HISTORY_DSN", ""),
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "leasesync"),
		},
		AdminHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		FileLoaded: fileLoaded,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"UNIFI_HOST", c.UniFi.Host},
		{"UNIFI_API_TOKEN", c.UniFi.APIToken},
		{"DNS_DOMAIN", c.DNSDomain},
	}

	switch c.DNSProvider {
	case ProviderPihole:
		required = append(required,
			struct{ key, value string }{"PIHOLE_HOST", c.Pihole.Host},
			struct{ key, value string }{"PIHOLE_PASSWORD", c.Pihole.Password},
		)
	case ProviderPDNS:
		required = append(required,
			struct{ key, value string }{"PDNS_URL", c.PDNS.URL},
			struct{ key, value string }{"PDNS_API_KEY", c.PDNS.APIKey},
			struct{ key, value string }{"PDNS_ZONE", c.PDNS.Zone},
		)
	default:
		return fmt.Errorf("unsupported DNS_PROVIDER %q (want %s or %s)", c.DNSProvider, ProviderPihole, ProviderPDNS)
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.HTTPTimeoutSec <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SEC must be positive, got %d", c.HTTPTimeoutSec)
	}
	if c.Worker.IntervalSec <= 0 {
		return fmt.Errorf("SYNC_INTERVAL_SEC must be positive, got %d", c.Worker.IntervalSec)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "1" || strings.EqualFold(value, "true")
	}
	return defaultValue
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || strings.EqualFold(value, "true")
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	cfg := &Config{
		UniFi: UniFiConfig{
			Host:      getValue("UNIFI_HOST", "unifi", "host", ""),
			Port:      getValue("UNIFI_PORT", "unifi", "port", "443"),
			APIToken:  getValue("UNIFI_API_TOKEN", "unifi", "api_token", ""),
			Site:      getValue("UNIFI_SITE", "unifi", "site", "default"),
			VerifyTLS: getValueBool("UNIFI_VERIFY_TLS", "unifi", "verify_tls", false),
		},
		DNSProvider: strings.ToLower(getValue("DNS_PROVIDER", "dns", "provider", ProviderPihole)),
		Pihole: PiholeConfig{
			Host:     getValue("PIHOLE_HOST", "pihole", "host", ""),
			Scheme:   getValue("PIHOLE_SCHEME", "pihole", "scheme", "http"),
			Password: getValue("PIHOLE_PASSWORD", "pihole", "password", ""),
		},
		PDNS: PDNSConfig{
			URL:      getValue("PDNS_URL", "pdns", "url", ""),
			APIKey:   getValue("PDNS_API_KEY", "pdns", "api_key", ""),
			ServerID: getValue("PDNS_SERVER_ID", "pdns", "server_id", "localhost"),
			Zone:     getValue("PDNS_ZONE", "pdns", "zone", ""),
			TTL:      getValueInt("PDNS_TTL", "pdns", "ttl", 300),
		},
		DNSDomain:      getValue("DNS_DOMAIN", "dns", "domain", ""),
		AllowedSubnets: subnet.ParsePrefixes(getValue("ALLOWED_SUBNETS", "sync", "allowed_subnets", "")),
		DeniedSubnets:  subnet.ParsePrefixes(getValue("DENIED_SUBNETS", "sync", "denied_subnets", "")),
		HTTPTimeoutSec: getValueInt("HTTP_TIMEOUT_SEC", "sync", "http_timeout_sec", 10),
		Log: LogConfig{
			File:  getValue("LOG_FILE", "log", "file", "/var/log/leasesync.log"),
			Level: getValue("LOG_LEVEL", "log", "level", "INFO"),
		},
		Worker: WorkerConfig{
			Enabled:     getValueBool("SYNC_WORKER_ENABLED", "sync", "worker_enabled", true),
			IntervalSec: getValueInt("SYNC_INTERVAL_SEC", "sync", "interval_sec", 300),
		},
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", ""),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		LockTTLSec: getValueInt("LOCK_TTL_SEC", "redis", "lock_ttl_sec", 120),
		HistoryDSN: getValue("HISTORY_DSN", "history", "dsn", ""),
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "leasesync"),
		},
		AdminHash:  getValue("ADMIN_PASSWORD_HASH", "http", "admin_password_hash", ""),
		FileLoaded: true,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
