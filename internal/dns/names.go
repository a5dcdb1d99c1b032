package dns

import "strings"

// Sanitize turns a controller-reported device name into a DNS-safe label.
//
// Steps, in order:
// - lowercase
// - spaces become hyphens
// - apostrophes and smart quotes are stripped
// - anything outside [a-z0-9-.] is removed
//
// "John's iPhone" -> "johns-iphone", "Server#1" -> "server1".
// An empty result means the lease has no usable hostname.
func Sanitize(raw string) string {
	clean := strings.ToLower(raw)
	clean = strings.ReplaceAll(clean, " ", "-")
	clean = quoteStripper.Replace(clean)

	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var quoteStripper = strings.NewReplacer(
	"'", "",
	"‘", "", // left single quotation mark
	"’", "", // right single quotation mark
	"‛", "",
	"ʼ", "", // modifier letter apostrophe
	"`", "",
	"´", "",
	"\"", "",
	"“", "",
	"”", "",
)

// ToFQDN converts a relative DNS name to a Fully Qualified Domain Name (FQDN)
//
// Rules:
// - zone = "home.arpa"
// - name = "@"      -> fqdn = "home.arpa"
// - name = "nas"    -> fqdn = "nas.home.arpa"
// - name = "a.b"    -> fqdn = "a.b.home.arpa"
// - zone = ""       -> fqdn = name
//
// If name is already a FQDN (contains the zone), it will be returned as-is.
func ToFQDN(zone string, name string) string {
	zone = normalizeZone(zone)
	name = strings.TrimSpace(name)

	if name == "" {
		name = "@"
	}

	if name == "@" {
		return zone
	}

	if zone == "" {
		return name
	}

	if strings.HasSuffix(name, "."+zone) || name == zone {
		return name
	}

	return name + "." + zone
}

// NormalizeName canonicalizes a record name for comparison:
// trimmed, lowercase, without the trailing root dot.
func NormalizeName(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}

func normalizeZone(zone string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(zone)), ".")
}

// NormalizeRelativeName converts any name format to a relative name (non-FQDN)
//
// Rules:
// - zone = "home.arpa"
// - name = "home.arpa"           -> "@"
// - name = "nas.home.arpa"       -> "nas"
// - name = "a.b.home.arpa"       -> "a.b"
// - name = "nas.home.arpa."      -> "nas" (trailing dot removed)
// - name = "nas"                 -> "nas"
//
// A device that already reports its name inside the zone would otherwise
// be qualified twice.
func NormalizeRelativeName(name, zone string) string {
	zone = normalizeZone(zone)
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")

	if name == "" {
		return "@"
	}

	if zone == "" {
		return name
	}

	if name == zone {
		return "@"
	}

	if strings.HasSuffix(name, "."+zone) {
		relName := strings.TrimSuffix(name, "."+zone)
		if relName == "" {
			return "@"
		}
		return relName
	}

	return name
}
