package client

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/denmor86/ya-minerpool/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// LoggingTransport — логер исходящих HTTP-запросов к серверу пула
type LoggingTransport struct {
	Next http.RoundTripper
}

func (t *LoggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}

	start := time.Now()
	resp, err := next.RoundTrip(r)
	duration := time.Since(start)

	if err != nil {
		logger.Warn("outgoing HTTP request failed",
			"uri", r.URL.RequestURI(),
			"method", r.Method,
			"duration", duration,
			zap.Error(err),
		)
		return nil, err
	}
	logger.Debug("outgoing HTTP request",
		"uri", r.URL.RequestURI(),
		"method", r.Method,
		"status", resp.StatusCode,
		"duration", duration,
		"size", resp.ContentLength,
	)
	return resp, nil
}

// NewCookieJar - общее хранилище cookie для REST и realtime соединения
func NewCookieJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// NewHTTPClient - http клиент с логированием и cookie сессии
func NewHTTPClient(jar http.CookieJar, timeout time.Duration) *http.Client {
	return &http.Client{
		Jar:       jar,
		Timeout:   timeout,
		Transport: &LoggingTransport{Next: http.DefaultTransport},
	}
}
