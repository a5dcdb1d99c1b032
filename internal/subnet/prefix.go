package subnet

import "strings"

// Included decides whether an IP takes part in the sync.
//
// Matching is a plain textual prefix test against the dotted-quad string, not CIDR:
// "192.168.1." matches 192.168.1.0/24, while "10.0.1" also matches 10.0.10.x.
// Existing deployments rely on this, so it stays textual.
//
// Rules:
// - ip starts with any deny prefix  -> false (deny wins over allow)
// - allow is non-empty              -> true only if ip starts with an allow prefix
// - allow is empty                  -> true
func Included(ip string, allow, deny []string) bool {
	if hasAnyPrefix(ip, deny) {
		return false
	}
	if len(allow) == 0 {
		return true
	}
	return hasAnyPrefix(ip, allow)
}

func hasAnyPrefix(ip string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(ip, p) {
			return true
		}
	}
	return false
}

// ParsePrefixes splits a comma separated list ("192.168.1., 10.0.") into prefixes,
// trimming whitespace and dropping empty entries.
func ParsePrefixes(csv string) []string {
	var prefixes []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}
