package common

import (
	"github.com/futig/faq-assistant/internal/config"
	pkgHTTP "github.com/futig/faq-assistant/pkg/http"
)

const userAgent = "faq-assistant"

// ClientOptions translates the HTTP client section of the config into pkg/http options
func ClientOptions(cfg config.HTTPClientConfig) []pkgHTTP.HttpOpts {
	return []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithMaxIdleConnsPerHost(cfg.MaxIdleConnsPerHost),
		pkgHTTP.WithUserAgent(userAgent),
		pkgHTTP.WithRequestLogging(),
	}
}

func NewBaseConnector(cfg config.HTTPClientConfig) *pkgHTTP.Connector {
	return pkgHTTP.NewConnector(&pkgHTTP.ConnectorConfig{BaseURL: cfg.Url}, ClientOptions(cfg)...)
}
