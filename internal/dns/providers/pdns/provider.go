package pdns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leasesync/internal/dnstypes"
)

const requestTimeout = 10 * time.Second

// Config holds the PowerDNS Authoritative API settings
type Config struct {
	Endpoint string // base path of the API, e.g. "http://localhost:8081/api/v1"
	APIKey   string
	ServerID string // default "localhost"
	Zone     string // e.g. "home.arpa"
	TTL      int    // default 300
	Timeout  time.Duration
}

// Provider implements dns.Sink for A records in one PowerDNS zone
type Provider struct {
	endpoint *url.URL
	apiKey   string
	serverID string
	zone     string
	ttl      int
	http     *http.Client
	logger   *logrus.Entry
}

// Zone represents a DNS zone managed by PowerDNS.
type Zone struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Serial int     `json:"serial,omitempty"`
	RRsets []RRSet `json:"rrsets,omitempty"`
}

// RRSet represents a set of resource records with the same name and type.
type RRSet struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	TTL        int      `json:"ttl"`
	Changetype string   `json:"changetype,omitempty"`
	Records    []Record `json:"records"`
}

// Record represents a single DNS record within an RRSet.
type Record struct {
	Content  string `json:"content"`
	Disabled bool   `json:"disabled"`
}

// NewProvider creates a new PowerDNS provider. The endpoint should include the
// base path of the API, for example "http://localhost:8081/api/v1".
func NewProvider(cfg Config, httpClient *http.Client, logger *logrus.Entry) (*Provider, error) {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = requestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	u, err := url.Parse(strings.TrimSuffix(cfg.Endpoint, "/"))
	if err != nil {
		return nil, err
	}
	serverID := cfg.ServerID
	if serverID == "" {
		serverID = "localhost"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 300
	}
	return &Provider{
		endpoint: u,
		apiKey:   cfg.APIKey,
		serverID: serverID,
		zone:     canonical(cfg.Zone),
		ttl:      ttl,
		http:     httpClient,
		logger:   logger.WithField("component", "pdns"),
	}, nil
}

func (p *Provider) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	u := *p.endpoint
	u.Path = p.endpoint.Path + path
	var buf io.ReadWriter
	if body != nil {
		buf = new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}
	return req, nil
}

// statusError carries a non-2xx response
type statusError struct {
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %s", e.status, e.body)
}

func (p *Provider) do(req *http.Request, v interface{}) error {
	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, status: resp.Status, body: strings.TrimSpace(string(b))}
	}
	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

func (p *Provider) zonePath() string {
	return fmt.Sprintf("/servers/%s/zones/%s", p.serverID, p.zone)
}

// ListRecords returns every enabled A record of the zone
func (p *Provider) ListRecords(ctx context.Context) ([]dnstypes.ExistingRecord, error) {
	const op = "pdns.ListRecords"

	req, err := p.newRequest(ctx, http.MethodGet, p.zonePath(), nil)
	if err != nil {
		return nil, dnstypes.NewError(op, dnstypes.KindSinkUnavailable, err)
	}
	var z Zone
	if err := p.do(req, &z); err != nil {
		if se, ok := err.(*statusError); ok && (se.code == http.StatusUnauthorized || se.code == http.StatusForbidden) {
			return nil, dnstypes.NewError(op, dnstypes.KindSinkAuth, err)
		}
		return nil, dnstypes.NewError(op, dnstypes.KindSinkUnavailable, err)
	}

	var records []dnstypes.ExistingRecord
	for _, rrset := range z.RRsets {
		if rrset.Type != "A" {
			continue
		}
		for _, r := range rrset.Records {
			if r.Disabled {
				continue
			}
			records = append(records, dnstypes.ExistingRecord{
				Hostname: strings.TrimSuffix(rrset.Name, "."),
				IP:       r.Content,
			})
		}
	}

	p.logger.Infof("Retrieved %d existing A records from zone %s", len(records), p.zone)
	return records, nil
}

// CreateRecord adds the A record
func (p *Provider) CreateRecord(ctx context.Context, record dnstypes.ResolvedRecord) error {
	return p.replace(ctx, record)
}

// UpdateRecord replaces the whole A rrset of the name with the desired address
func (p *Provider) UpdateRecord(ctx context.Context, existing dnstypes.ExistingRecord, desired dnstypes.ResolvedRecord) error {
	return p.replace(ctx, desired)
}

// Close is a no-op; the API key is stateless
func (p *Provider) Close(ctx context.Context) error {
	return nil
}

// ModifyRRsets applies RRSet changes to the zone.
func (p *Provider) ModifyRRsets(ctx context.Context, rrsets []RRSet) error {
	payload := map[string]interface{}{"rrsets": rrsets}
	req, err := p.newRequest(ctx, http.MethodPatch, p.zonePath(), payload)
	if err != nil {
		return err
	}
	return p.do(req, nil)
}

func (p *Provider) replace(ctx context.Context, record dnstypes.ResolvedRecord) error {
	rrset := RRSet{
		Name:       canonical(record.Hostname),
		Type:       "A",
		TTL:        p.ttl,
		Changetype: "REPLACE",
		Records:    []Record{{Content: record.IP}},
	}
	if err := p.ModifyRRsets(ctx, []RRSet{rrset}); err != nil {
		return fmt.Errorf("failed to replace rrset %s: %w", rrset.Name, err)
	}
	return nil
}

// canonical returns the name with exactly one trailing dot, as PowerDNS expects
func canonical(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".") + "."
}
