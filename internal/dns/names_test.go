package dns

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"apostrophe stripped", "John's iPhone", "johns-iphone"},
		{"smart quote stripped", "Anna’s MacBook", "annas-macbook"},
		{"spaces become hyphens", "Living Room TV", "living-room-tv"},
		{"symbols removed", "Server#1", "server1"},
		{"dots and hyphens kept", "nas-01.storage", "nas-01.storage"},
		{"underscore removed", "esp_32_sensor", "esp32sensor"},
		{"non ascii removed", "Café Ünit", "caf-nit"},
		{"all removed yields empty", "###", ""},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sanitize(tt.input)
			if result != tt.expected {
				t.Errorf("Sanitize(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"John's iPhone",
		"Living Room TV",
		"Server#1",
		"  Spaced  Out  ",
		"“Quoted” Device",
		"UPPER.lower-Mixed_123",
		"日本語",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestToFQDN(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		input    string
		expected string
	}{
		{
			name:     "@ converts to zone",
			zone:     "home.arpa",
			input:    "@",
			expected: "home.arpa",
		},
		{
			name:     "host converts to host.zone",
			zone:     "home.arpa",
			input:    "nas",
			expected: "nas.home.arpa",
		},
		{
			name:     "a.b converts to a.b.zone",
			zone:     "home.arpa",
			input:    "a.b",
			expected: "a.b.home.arpa",
		},
		{
			name:     "empty name defaults to @",
			zone:     "example.com",
			input:    "",
			expected: "example.com",
		},
		{
			name:     "already FQDN returns as-is",
			zone:     "example.com",
			input:    "test.example.com",
			expected: "test.example.com",
		},
		{
			name:     "zone is lowercased and dots trimmed",
			zone:     " .LAN. ",
			input:    " laptop ",
			expected: "laptop.lan",
		},
		{
			name:     "empty zone leaves name bare",
			zone:     "",
			input:    "laptop",
			expected: "laptop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToFQDN(tt.zone, tt.input)
			if result != tt.expected {
				t.Errorf("ToFQDN(%q, %q) = %q; want %q", tt.zone, tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName(" Laptop.Home.Arpa. "); got != "laptop.home.arpa" {
		t.Errorf("NormalizeName = %q", got)
	}
}

func TestNormalizeRelativeName(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		expected string
	}{
		{"home.arpa", "home.arpa", "@"},
		{"nas.home.arpa", "home.arpa", "nas"},
		{"a.b.home.arpa", "home.arpa", "a.b"},
		{"nas.home.arpa.", "home.arpa", "nas"},
		{"nas", "home.arpa", "nas"},
		{"nas.home.arpa", "", "nas.home.arpa"},
		{"", "home.arpa", "@"},
	}

	for _, tt := range tests {
		result := NormalizeRelativeName(tt.name, tt.zone)
		if result != tt.expected {
			t.Errorf("NormalizeRelativeName(%q, %q) = %q; want %q", tt.name, tt.zone, result, tt.expected)
		}
	}
}
