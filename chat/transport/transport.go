package transport

import (
	"crypto/tls"
	"net/http"
	"time"
)

const (
	DefaultConnectTimeout   = 5 * time.Second
	DefaultReadWriteTimeout = 10 * time.Second
	DefaultKeepAliveTimeout = 30 * time.Second

	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 50 * time.Second
)

type Config struct {
	// Connect timeout
	ConnectTimeout *time.Duration

	// Read & write timeout applied as a rolling deadline on the connection
	ReadWriteTimeout *time.Duration

	// TCP keep-alive interval
	KeepAliveTimeout *time.Duration

	// Skip server certificate verification
	InsecureSkipVerify *bool
}

func newDefaultConfig() *Config {
	connectTimeout := DefaultConnectTimeout
	readWriteTimeout := DefaultReadWriteTimeout
	keepAliveTimeout := DefaultKeepAliveTimeout
	return &Config{
		ConnectTimeout:   &connectTimeout,
		ReadWriteTimeout: &readWriteTimeout,
		KeepAliveTimeout: &keepAliveTimeout,
	}
}

func (c *Config) mergeIn(cfg *Config) {
	if cfg.ConnectTimeout != nil {
		c.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.ReadWriteTimeout != nil {
		c.ReadWriteTimeout = cfg.ReadWriteTimeout
	}
	if cfg.KeepAliveTimeout != nil {
		c.KeepAliveTimeout = cfg.KeepAliveTimeout
	}
	if cfg.InsecureSkipVerify != nil {
		c.InsecureSkipVerify = cfg.InsecureSkipVerify
	}
}

// NewTransport builds a http.RoundTripper with the SDK's dialer so that
// read/write deadlines keep nudging forward while bytes flow.
func NewTransport(cfgs ...*Config) *http.Transport {
	cfg := newDefaultConfig()
	for _, c := range cfgs {
		if c != nil {
			cfg.mergeIn(c)
		}
	}

	dialer := newDialer(cfg)
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		Proxy:               http.ProxyFromEnvironment,
	}

	if cfg.InsecureSkipVerify != nil && *cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return transport
}
