package pihole

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"leasesync/internal/dnstypes"
)

const (
	requestTimeout = 10 * time.Second
	hostsPath      = "/api/config/dns/hosts"
	authPath       = "/api/auth"
)

var (
	// ErrNotFound is returned when a host entry is not present on Pi-hole
	ErrNotFound = errors.New("host entry not found")
)

// Config holds the Pi-hole connection settings
type Config struct {
	Host     string // host or host:port
	Scheme   string // http (default) or https
	Password string
	Timeout  time.Duration
}

// PiholeProvider implements dns.Sink for the Pi-hole v6 local DNS hosts list
type PiholeProvider struct {
	baseURL  string
	password string
	client   *http.Client
	logger   *logrus.Entry

	mu     sync.Mutex
	authed bool
	sid    string
	csrf   string
	lines  []hostLine // hosts entries as last listed, reset on Close
}

// hostLine is one stored hosts entry. Pi-hole deletes entries by their exact text,
// so the raw line is kept to remove entries that carry several names.
type hostLine struct {
	raw   string
	ip    string
	names []string
}

// NewPiholeProvider creates a new Pi-hole DNS provider
func NewPiholeProvider(cfg Config, logger *logrus.Entry) *PiholeProvider {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &PiholeProvider{
		baseURL:  fmt.Sprintf("%s://%s", scheme, strings.TrimSuffix(cfg.Host, "/")),
		password: cfg.Password,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.WithField("component", "pihole"),
	}
}

// WithHTTPClient replaces the transport, mainly for tests against httptest servers.
func (p *PiholeProvider) WithHTTPClient(httpClient *http.Client, baseURL string) *PiholeProvider {
	p.client = httpClient
	p.baseURL = strings.TrimSuffix(baseURL, "/")
	return p
}

// authResponse represents the Pi-hole /api/auth response
type authResponse struct {
	Session struct {
		Valid   bool   `json:"valid"`
		SID     string `json:"sid"`
		CSRF    string `json:"csrf"`
		Message string `json:"message"`
	} `json:"session"`
}

// hostsResponse represents the Pi-hole /api/config/dns/hosts response
type hostsResponse struct {
	Config struct {
		DNS struct {
			Hosts []string `json:"hosts"`
		} `json:"dns"`
	} `json:"config"`
}

// errorResponse represents a Pi-hole API error
type errorResponse struct {
	Error struct {
		Key     string `json:"key"`
		Message string `json:"message"`
		Hint    string `json:"hint"`
	} `json:"error"`
}

// authenticate opens one session and reuses it until Close
func (p *PiholeProvider) authenticate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.authed {
		return nil
	}

	const op = "pihole.authenticate"
	body, err := json.Marshal(map[string]string{"password": p.password})
	if err != nil {
		return dnstypes.NewError(op, dnstypes.KindSinkAuth, fmt.Errorf("failed to marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+authPath, bytes.NewReader(body))
	if err != nil {
		return dnstypes.NewError(op, dnstypes.KindSinkUnavailable, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return dnstypes.NewError(op, dnstypes.KindSinkUnavailable, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return dnstypes.NewError(op, dnstypes.KindSinkUnavailable, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return dnstypes.NewError(op, dnstypes.KindSinkAuth, fmt.Errorf("pihole API error: %s", formatError(resp.Status, respBody)))
	}
	if resp.StatusCode >= 300 {
		return dnstypes.NewError(op, dnstypes.KindSinkUnavailable, fmt.Errorf("pihole API error: %s", formatError(resp.Status, respBody)))
	}

	var auth authResponse
	if err := json.Unmarshal(respBody, &auth); err != nil {
		return dnstypes.NewError(op, dnstypes.KindSinkUnavailable, fmt.Errorf("failed to parse response: %w", err))
	}
	if !auth.Session.Valid {
		return dnstypes.NewError(op, dnstypes.KindSinkAuth, fmt.Errorf("session not valid: %s", auth.Session.Message))
	}

	p.authed = true
	p.sid = auth.Session.SID
	p.csrf = auth.Session.CSRF
	p.logger.Info("Successfully authenticated to Pi-hole")
	return nil
}

// do sends an authenticated request and returns the response body
func (p *PiholeProvider) do(ctx context.Context, method, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	p.mu.Lock()
	if p.sid != "" {
		req.Header.Set("X-FTL-SID", p.sid)
	}
	if p.csrf != "" {
		req.Header.Set("X-FTL-CSRF", p.csrf)
	}
	p.mu.Unlock()
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return body, resp.StatusCode, ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return body, resp.StatusCode, fmt.Errorf("pihole API error: %s", formatError(resp.Status, body))
	}
	return body, resp.StatusCode, nil
}

// ListRecords lists all local DNS host entries
func (p *PiholeProvider) ListRecords(ctx context.Context) ([]dnstypes.ExistingRecord, error) {
	const op = "pihole.ListRecords"

	if err := p.authenticate(ctx); err != nil {
		return nil, err
	}

	body, status, err := p.do(ctx, http.MethodGet, hostsPath)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, dnstypes.NewError(op, dnstypes.KindSinkAuth, err)
		}
		return nil, dnstypes.NewError(op, dnstypes.KindSinkUnavailable, err)
	}

	var hosts hostsResponse
	if err := json.Unmarshal(body, &hosts); err != nil {
		return nil, dnstypes.NewError(op, dnstypes.KindSinkUnavailable, fmt.Errorf("failed to parse response: %w", err))
	}

	records := make([]dnstypes.ExistingRecord, 0, len(hosts.Config.DNS.Hosts))
	lines := make([]hostLine, 0, len(hosts.Config.DNS.Hosts))
	for _, raw := range hosts.Config.DNS.Hosts {
		parsed := ParseHostsLine(raw)
		if len(parsed) == 0 {
			continue
		}
		line := hostLine{raw: raw, ip: parsed[0].IP}
		for _, r := range parsed {
			line.names = append(line.names, r.Hostname)
		}
		lines = append(lines, line)
		records = append(records, parsed...)
	}

	p.mu.Lock()
	p.lines = lines
	p.mu.Unlock()

	p.logger.Infof("Retrieved %d existing DNS records", len(records))
	return records, nil
}

// CreateRecord adds "ip fqdn" to the hosts list
func (p *PiholeProvider) CreateRecord(ctx context.Context, record dnstypes.ResolvedRecord) error {
	if err := p.authenticate(ctx); err != nil {
		return err
	}
	if err := p.put(ctx, record.IP, []string{record.Hostname}); err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// UpdateRecord points the hostname at the desired address only.
//
// Every listed entry that maps the name to another address is deleted by its
// exact text; other names on such an entry are put back under the old address.
// A listed entry that is already gone is an error, since the name may still
// resolve to the stale address. When nothing was listed for the name, the
// plain "ip fqdn" entry of the existing record is removed and a 404 is fine.
func (p *PiholeProvider) UpdateRecord(ctx context.Context, existing dnstypes.ExistingRecord, desired dnstypes.ResolvedRecord) error {
	if err := p.authenticate(ctx); err != nil {
		return err
	}

	stale, present := p.linesFor(desired)
	if len(stale) == 0 {
		if err := p.delete(ctx, existing.IP+" "+existing.Hostname); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to delete stale record: %w", err)
		}
	}

	for _, line := range stale {
		if err := p.delete(ctx, line.raw); err != nil {
			return fmt.Errorf("failed to delete stale entry %q: %w", line.raw, err)
		}
		p.dropLine(line.raw)

		others := otherNames(line.names, desired.Hostname)
		if len(others) == 0 {
			continue
		}
		if err := p.put(ctx, line.ip, others); err != nil {
			return fmt.Errorf("failed to restore aliases %v: %w", others, err)
		}
	}

	if present {
		return nil
	}
	if err := p.put(ctx, desired.IP, []string{desired.Hostname}); err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// linesFor returns the listed entries mapping the name to another address, and
// whether an entry already maps it to the desired one.
func (p *PiholeProvider) linesFor(desired dnstypes.ResolvedRecord) ([]hostLine, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var stale []hostLine
	present := false
	for _, line := range p.lines {
		if !hasName(line.names, desired.Hostname) {
			continue
		}
		if line.ip == desired.IP {
			present = true
			continue
		}
		stale = append(stale, line)
	}
	return stale, present
}

func (p *PiholeProvider) dropLine(raw string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, line := range p.lines {
		if line.raw == raw {
			p.lines = append(p.lines[:i], p.lines[i+1:]...)
			return
		}
	}
}

func (p *PiholeProvider) put(ctx context.Context, ip string, names []string) error {
	entry := ip + " " + strings.Join(names, " ")
	if _, _, err := p.do(ctx, http.MethodPut, hostsPath+"/"+url.PathEscape(entry)); err != nil {
		return err
	}
	p.mu.Lock()
	p.lines = append(p.lines, hostLine{raw: entry, ip: ip, names: names})
	p.mu.Unlock()
	return nil
}

func (p *PiholeProvider) delete(ctx context.Context, entry string) error {
	_, _, err := p.do(ctx, http.MethodDelete, hostsPath+"/"+url.PathEscape(entry))
	return err
}

// Close logs the session out so the next pass authenticates afresh
func (p *PiholeProvider) Close(ctx context.Context) error {
	p.mu.Lock()
	hadSession := p.sid != ""
	p.mu.Unlock()

	var err error
	if hadSession {
		if _, _, derr := p.do(ctx, http.MethodDelete, authPath); derr != nil && !errors.Is(derr, ErrNotFound) {
			err = fmt.Errorf("failed to log out: %w", derr)
		}
	}

	p.mu.Lock()
	p.authed = false
	p.sid = ""
	p.csrf = ""
	p.lines = nil
	p.mu.Unlock()
	return err
}

// ParseHostsLine splits a hosts entry ("ip name [alias...]") into records
func ParseHostsLine(line string) []dnstypes.ExistingRecord {
	fields := strings.Fields(line)
	if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	records := make([]dnstypes.ExistingRecord, 0, len(fields)-1)
	for _, name := range fields[1:] {
		if strings.HasPrefix(name, "#") {
			break
		}
		records = append(records, dnstypes.ExistingRecord{Hostname: name, IP: fields[0]})
	}
	return records
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

func hasName(names []string, name string) bool {
	for _, n := range names {
		if sameName(n, name) {
			return true
		}
	}
	return false
}

func otherNames(names []string, name string) []string {
	var others []string
	for _, n := range names {
		if !sameName(n, name) {
			others = append(others, n)
		}
	}
	return others
}

// formatError formats a Pi-hole API error into a readable string
func formatError(status string, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		if e.Error.Hint != "" {
			return fmt.Sprintf("%s: [%s] %s (%s)", status, e.Error.Key, e.Error.Message, e.Error.Hint)
		}
		return fmt.Sprintf("%s: [%s] %s", status, e.Error.Key, e.Error.Message)
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		return status
	}
	return fmt.Sprintf("%s: %s", status, msg)
}
