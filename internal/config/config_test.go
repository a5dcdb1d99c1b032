package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var allKeys = []string{
	"UNIFI_HOST", "UNIFI_PORT", "UNIFI_API_TOKEN", "UNIFI_SITE", "UNIFI_VERIFY_TLS",
	"DNS_PROVIDER", "PIHOLE_HOST", "PIHOLE_SCHEME", "PIHOLE_PASSWORD",
	"PDNS_URL", "PDNS_API_KEY", "PDNS_SERVER_ID", "PDNS_ZONE", "PDNS_TTL",
	"DNS_DOMAIN", "ALLOWED_SUBNETS", "DENIED_SUBNETS", "HTTP_TIMEOUT_SEC",
	"LOG_FILE", "LOG_LEVEL", "SYNC_WORKER_ENABLED", "SYNC_INTERVAL_SEC",
	"HTTP_ADDR", "REDIS_ADDR", "REDIS_PASS", "REDIS_DB", "LOCK_TTL_SEC",
	"HISTORY_DSN", "JWT_SECRET", "JWT_EXPIRE_MINUTES", "JWT_ISSUER", "ADMIN_PASSWORD_HASH",
}

// clearEnv unsets every config key for the test and restores the old values afterwards.
// godotenv never overrides a variable that is present, even when empty, so keys must be unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("UNIFI_HOST", "unifi.lan")
	t.Setenv("UNIFI_API_TOKEN", "token")
	t.Setenv("PIHOLE_HOST", "pi.hole")
	t.Setenv("PIHOLE_PASSWORD", "secret")
	t.Setenv("DNS_DOMAIN", "lan")
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.FileLoaded {
		t.Error("FileLoaded should be false for a missing file")
	}
	if cfg.UniFi.Port != "443" {
		t.Errorf("Expected UniFi port 443, got %s", cfg.UniFi.Port)
	}
	if cfg.UniFi.Site != "default" {
		t.Errorf("Expected site default, got %s", cfg.UniFi.Site)
	}
	if cfg.UniFi.VerifyTLS {
		t.Error("VerifyTLS should default to false")
	}
	if cfg.DNSProvider != ProviderPihole {
		t.Errorf("Expected provider pihole, got %s", cfg.DNSProvider)
	}
	if cfg.HTTPTimeoutSec != 10 {
		t.Errorf("Expected timeout 10, got %d", cfg.HTTPTimeoutSec)
	}
	if cfg.Log.File != "/var/log/leasesync.log" {
		t.Errorf("Expected default log file, got %s", cfg.Log.File)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if len(cfg.AllowedSubnets) != 0 {
		t.Errorf("Expected no allowed subnets, got %v", cfg.AllowedSubnets)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNIFI_HOST", "unifi.lan")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("Expected error when required keys are missing")
	}
	for _, key := range []string{"UNIFI_API_TOKEN", "DNS_DOMAIN", "PIHOLE_HOST", "PIHOLE_PASSWORD"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
	if strings.Contains(err.Error(), "UNIFI_HOST") {
		t.Errorf("error %q names a key that is set", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.env")
	content := strings.Join([]string{
		"UNIFI_HOST=10.0.0.1",
		"UNIFI_API_TOKEN=abc",
		"UNIFI_VERIFY_TLS=true",
		"PIHOLE_HOST=10.0.0.2",
		"PIHOLE_PASSWORD=pw",
		"DNS_DOMAIN=home.lan",
		"ALLOWED_SUBNETS=192.168.1., 10.0.",
		"DENIED_SUBNETS=192.168.1.250",
		"HTTP_TIMEOUT_SEC=5",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// the environment wins over the file
	t.Setenv("DNS_DOMAIN", "override.lan")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.FileLoaded {
		t.Error("FileLoaded should be true")
	}
	if cfg.UniFi.Host != "10.0.0.1" {
		t.Errorf("Expected host from file, got %s", cfg.UniFi.Host)
	}
	if !cfg.UniFi.VerifyTLS {
		t.Error("VerifyTLS should be true")
	}
	if cfg.DNSDomain != "override.lan" {
		t.Errorf("Expected env override, got %s", cfg.DNSDomain)
	}
	if len(cfg.AllowedSubnets) != 2 || cfg.AllowedSubnets[0] != "192.168.1." || cfg.AllowedSubnets[1] != "10.0." {
		t.Errorf("unexpected allowed subnets %v", cfg.AllowedSubnets)
	}
	if len(cfg.DeniedSubnets) != 1 {
		t.Errorf("unexpected denied subnets %v", cfg.DeniedSubnets)
	}
	if cfg.HTTPTimeoutSec != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.HTTPTimeoutSec)
	}
}

func TestLoad_PDNSProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNIFI_HOST", "unifi.lan")
	t.Setenv("UNIFI_API_TOKEN", "token")
	t.Setenv("DNS_DOMAIN", "home.arpa")
	t.Setenv("DNS_PROVIDER", "PDNS")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil || !strings.Contains(err.Error(), "PDNS_URL") {
		t.Fatalf("expected missing PDNS_URL error, got %v", err)
	}

	t.Setenv("PDNS_URL", "http://ns1:8081/api/v1")
	t.Setenv("PDNS_API_KEY", "key")
	t.Setenv("PDNS_ZONE", "home.arpa")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DNSProvider != ProviderPDNS || cfg.PDNS.ServerID != "localhost" || cfg.PDNS.TTL != 300 {
		t.Errorf("unexpected pdns config %+v", cfg.PDNS)
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("DNS_PROVIDER", "bind")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("HTTP_TIMEOUT_SEC", "0")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for zero timeout")
	}
}

func TestLoadFromINI(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "leasesync.ini")
	content := `[unifi]
host = unifi.lan
api_token = token
site = branch

[dns]
provider = pihole
domain = lan

[pihole]
host = pi.hole
password = secret

[sync]
allowed_subnets = 192.168.1.
interval_sec = 60
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UNIFI_SITE", "from-env")

	cfg, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI() failed: %v", err)
	}
	if cfg.UniFi.Host != "unifi.lan" {
		t.Errorf("Expected host from INI, got %s", cfg.UniFi.Host)
	}
	if cfg.UniFi.Site != "from-env" {
		t.Errorf("Expected env to win over INI, got %s", cfg.UniFi.Site)
	}
	if cfg.Worker.IntervalSec != 60 {
		t.Errorf("Expected interval 60, got %d", cfg.Worker.IntervalSec)
	}
	if cfg.HTTPTimeoutSec != 10 {
		t.Errorf("Expected default timeout, got %d", cfg.HTTPTimeoutSec)
	}
	if len(cfg.AllowedSubnets) != 1 {
		t.Errorf("unexpected allowed subnets %v", cfg.AllowedSubnets)
	}
}

func TestLoadFromINI_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFromINI(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Error("Expected error for missing INI file")
	}
}
