package http

import (
	"net"
	"net/http"
	"time"
)

type TransportFunc func(http.RoundTripper) http.RoundTripper

type httpConfig struct {
	connClientTimeout     time.Duration
	requestTimeout        time.Duration
	clientKeepAlive       time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConnsPerHost   int
	transports            []TransportFunc
}

func defaultHTTPConfig() *httpConfig {
	return &httpConfig{
		connClientTimeout:     10 * time.Second,
		requestTimeout:        30 * time.Second,
		clientKeepAlive:       90 * time.Second,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 30 * time.Second,
		idleConnTimeout:       90 * time.Second,
		maxIdleConnsPerHost:   10,
	}
}

// transport starts from the default transport so proxy and HTTP/2 settings are kept
func (cfg *httpConfig) transport() http.RoundTripper {
	dialer := &net.Dialer{
		Timeout:   cfg.connClientTimeout,
		KeepAlive: cfg.clientKeepAlive,
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DialContext = dialer.DialContext
	base.MaxIdleConnsPerHost = cfg.maxIdleConnsPerHost
	base.TLSHandshakeTimeout = cfg.tlsHandshakeTimeout
	base.ResponseHeaderTimeout = cfg.responseHeaderTimeout
	base.IdleConnTimeout = cfg.idleConnTimeout

	var rt http.RoundTripper = base
	for _, wrap := range cfg.transports {
		rt = wrap(rt)
	}
	return rt
}

// NewClient builds an *http.Client with pooled connections and the given transport wrappers.
// SDK clients that accept a custom *http.Client use it directly.
func NewClient(opts ...HttpOpts) *http.Client {
	cfg := defaultHTTPConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: cfg.transport(),
	}
}
