package unifi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leasesync/internal/dnstypes"
)

const (
	defaultTimeout = 10 * time.Second
	apiKeyHeader   = "X-API-KEY"
)

// Config holds the controller connection settings
type Config struct {
	Host      string // host or host:port without scheme
	Port      string // default 443
	APIToken  string
	Site      string // default "default"
	VerifyTLS bool
	Timeout   time.Duration
}

// Client reads connected clients from a UniFi Network controller
type Client struct {
	baseURL  string
	site     string
	apiToken string
	client   *http.Client
	logger   *logrus.Entry
}

// NewClient creates a new controller client. The API token is attached to every
// request; one client is built per process and reused by every pass.
func NewClient(cfg Config, logger *logrus.Entry) *Client {
	port := cfg.Port
	if port == "" {
		port = "443"
	}
	site := cfg.Site
	if site == "" {
		site = "default"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	host := cfg.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, port)
	}

	// Controllers usually run with a self-signed certificate
	tlsConfig := &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}

	return &Client{
		baseURL:  "https://" + host,
		site:     site,
		apiToken: cfg.APIToken,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: tlsConfig,
			},
		},
		logger: logger.WithField("component", "unifi"),
	}
}

// WithHTTPClient replaces the transport, mainly for tests against httptest servers.
func (c *Client) WithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	c.client = httpClient
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// clientEntry is one element of the stat/sta "data" array
type clientEntry struct {
	MAC      string `json:"mac"`
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	Name     string `json:"name"`
	UseFixed bool   `json:"use_fixedip"`
	Blocked  bool   `json:"blocked"`
}

// staResponse is the envelope of the legacy controller API
type staResponse struct {
	Meta struct {
		RC  string `json:"rc"`
		Msg string `json:"msg"`
	} `json:"meta"`
	Data *[]clientEntry `json:"data"`
}

// FetchActiveLeases returns the clients currently bound on the configured site
func (c *Client) FetchActiveLeases(ctx context.Context) ([]dnstypes.Lease, error) {
	const op = "unifi.FetchActiveLeases"

	endpoint := fmt.Sprintf("%s/proxy/network/api/s/%s/stat/sta", c.baseURL, url.PathEscape(c.site))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dnstypes.NewError(op, dnstypes.KindSourceUnavailable, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set(apiKeyHeader, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, dnstypes.NewError(op, dnstypes.KindSourceUnavailable, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dnstypes.NewError(op, dnstypes.KindSourceUnavailable, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, dnstypes.NewError(op, dnstypes.KindSourceUnavailable,
			fmt.Errorf("unexpected status %s: %s", resp.Status, truncate(string(body), 200)))
	}

	var sta staResponse
	if err := json.Unmarshal(body, &sta); err != nil {
		return nil, dnstypes.NewError(op, dnstypes.KindSourceProtocol, fmt.Errorf("failed to parse response: %w", err))
	}
	if sta.Meta.RC != "ok" {
		return nil, dnstypes.NewError(op, dnstypes.KindSourceProtocol,
			fmt.Errorf("controller returned rc=%q msg=%q", sta.Meta.RC, sta.Meta.Msg))
	}
	if sta.Data == nil {
		return nil, dnstypes.NewError(op, dnstypes.KindSourceProtocol, errors.New("response has no data array"))
	}

	leases := make([]dnstypes.Lease, 0, len(*sta.Data))
	for _, entry := range *sta.Data {
		if entry.IP == "" {
			c.logger.Debugf("Skipping client %s: no bound IP", entry.MAC)
			continue
		}
		hostname := entry.Hostname
		if hostname == "" {
			hostname = entry.Name
		}
		leases = append(leases, dnstypes.Lease{
			MAC:      strings.ToLower(entry.MAC),
			IP:       entry.IP,
			Hostname: hostname,
			Active:   !entry.Blocked,
			Static:   entry.UseFixed,
		})
	}

	c.logger.Debugf("Fetched %d clients from site %s (%d with a bound IP)", len(*sta.Data), c.site, len(leases))
	return leases, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
