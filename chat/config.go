package chat

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshchat/meshchat-go-sdk/chat/retry"
	"github.com/meshchat/meshchat-go-sdk/chat/signer"
	"github.com/meshchat/meshchat-go-sdk/chat/telemetry"
)

type Config struct {
	// The endpoint of the chat service, e.g. https://chat.example.com.
	Endpoint *string

	// Retryer, when set, replaces the per-operation retry policies for the
	// whole client.
	Retryer retry.Retryer

	// The HTTP client to invoke API calls with. Defaults to the SDK's
	// transport if nil.
	HttpClient HTTPClient

	// Signer attaches authentication headers. Defaults to the nonce-echo
	// signer.
	Signer signer.Signer

	// TelemetrySink receives one sanitized event per attempt.
	TelemetrySink telemetry.Sink

	// RequestIDProvider generates idempotent call identifiers when the
	// caller supplies none.
	RequestIDProvider func() string

	// OperationTimeouts overrides per-operation attempt timeouts. Keys must
	// name operations from the catalog.
	OperationTimeouts map[string]time.Duration

	// Connect timeout
	ConnectTimeout *time.Duration

	// Read & write timeout
	ReadWriteTimeout *time.Duration

	// Skip server certificate verification
	InsecureSkipVerify *bool

	// UserAgent is appended to the SDK's own user agent when set.
	UserAgent *string
}

func NewConfig() *Config {
	return &Config{}
}

func LoadDefaultConfig() *Config {
	return &Config{}
}

func (c Config) Copy() Config {
	cp := c
	return cp
}

func (c *Config) WithEndpoint(endpoint string) *Config {
	c.Endpoint = Ptr(endpoint)
	return c
}

func (c *Config) WithRetryer(retryer retry.Retryer) *Config {
	c.Retryer = retryer
	return c
}

func (c *Config) WithHttpClient(client HTTPClient) *Config {
	c.HttpClient = client
	return c
}

func (c *Config) WithSigner(s signer.Signer) *Config {
	c.Signer = s
	return c
}

func (c *Config) WithTelemetrySink(sink telemetry.Sink) *Config {
	c.TelemetrySink = sink
	return c
}

func (c *Config) WithRequestIDProvider(fn func() string) *Config {
	c.RequestIDProvider = fn
	return c
}

func (c *Config) WithOperationTimeouts(timeouts map[string]time.Duration) *Config {
	c.OperationTimeouts = timeouts
	return c
}

func (c *Config) WithConnectTimeout(value time.Duration) *Config {
	c.ConnectTimeout = Ptr(value)
	return c
}

func (c *Config) WithReadWriteTimeout(value time.Duration) *Config {
	c.ReadWriteTimeout = Ptr(value)
	return c
}

func (c *Config) WithInsecureSkipVerify(value bool) *Config {
	c.InsecureSkipVerify = Ptr(value)
	return c
}

func (c *Config) WithUserAgent(value string) *Config {
	c.UserAgent = Ptr(value)
	return c
}

// timeoutProfile is the on-disk shape of an operation timeout table.
type timeoutProfile struct {
	Operations map[string]string `yaml:"operations"`
}

// LoadTimeoutProfile reads a YAML operation timeout table, e.g.
//
//	operations:
//	  GetAuthToken: 8s
//	  SendMessage: 5s
//
// Unknown operation names are rejected at load time, not at call time.
func LoadTimeoutProfile(path string) (map[string]time.Duration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeout profile: %w", err)
	}

	var profile timeoutProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse timeout profile: %w", err)
	}

	known := defaultOperationProfiles()
	timeouts := make(map[string]time.Duration, len(profile.Operations))
	for name, raw := range profile.Operations {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("timeout profile: unknown operation %q", name)
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("timeout profile: operation %q: %w", name, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("timeout profile: operation %q: timeout must be positive", name)
		}
		timeouts[name] = d
	}
	return timeouts, nil
}
