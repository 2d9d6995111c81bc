package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MapperConfig holds the site mapper bot's crawl defaults
type MapperConfig struct {
	MaxDepth       int   `yaml:"max_depth,omitempty"`
	MaxPages       int   `yaml:"max_pages,omitempty"`
	SameDomainOnly *bool `yaml:"same_domain_only,omitempty"` // Pointer for tri-state: nil = default (true)
	Parallelism    int   `yaml:"parallelism,omitempty"`
}

// SameDomain resolves the effective same-domain setting (defaults to true)
func (m MapperConfig) SameDomain() bool {
	if m.SameDomainOnly != nil {
		return *m.SameDomainOnly
	}
	return true
}

// DepositsConfig holds the fixed-deposit scraper's bank sources
type DepositsConfig struct {
	// Candidate URLs per bank, kept as a list to improve robustness if page structures move
	BankSources     map[string][]string `yaml:"bank_sources,omitempty"`
	DelayPerRequest time.Duration       `yaml:"delay_per_request,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil = default (true)
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
}

// AppConfig holds the global application configuration
type AppConfig struct {
	DefaultUserAgent   string           `yaml:"default_user_agent,omitempty"`
	FetchTimeout       time.Duration    `yaml:"fetch_timeout,omitempty"` // Per-request timeout for bot fetches
	MaxRequests        int              `yaml:"max_requests,omitempty"`  // Global in-flight request bound
	DataDir            string           `yaml:"data_dir,omitempty"`      // Where bots write JSON snapshots
	StateDir           string           `yaml:"state_dir,omitempty"`     // Where the run-history DB lives
	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
	Mapper             MapperConfig     `yaml:"mapper,omitempty"`
	Deposits           DepositsConfig   `yaml:"deposits,omitempty"`
}

// Load reads and parses the YAML config file at path.
// A missing file is not an error: defaults apply (validated by Validate).
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}
