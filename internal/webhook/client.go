package webhook

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	defaultConnectTimeout = time.Second
	maxConnectTimeout     = 5 * time.Second
	defaultRequestTimeout = 3 * time.Second
	maxRequestTimeout     = 20 * time.Second
	maxRedirects          = 5
)

// ValidationError reports a webhook rule whose configured timeout exceeds
// the fixed ceiling (spec.md §4.6); it is a configuration mistake, never a
// transport failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// resolveTimeouts applies the default/max rules from spec.md §4.6:
// connect_timeout <= 5s (default 1s), request_timeout <= 20s (default 3s).
func resolveTimeouts(requestTimeout time.Duration, hasRequestTO bool, connectTimeout time.Duration, hasConnectTO bool) (time.Duration, time.Duration, error) {
	connect := defaultConnectTimeout
	if hasConnectTO {
		connect = connectTimeout
	}
	if connect > maxConnectTimeout {
		return 0, 0, &ValidationError{Message: fmt.Sprintf("connect timeout of %s is longer than maximum value of %s", connect, maxConnectTimeout)}
	}

	request := defaultRequestTimeout
	if hasRequestTO {
		request = requestTimeout
	}
	if request > maxRequestTimeout {
		return 0, 0, &ValidationError{Message: fmt.Sprintf("request timeout of %s is longer than maximum value of %s", request, maxRequestTimeout)}
	}

	return connect, request, nil
}

// buildClient constructs a one-shot http.Client matching the original
// source's reqwest::blocking::Client configuration (webhook.rs): at most 5
// redirects, no persistent connections, no transport compression, and
// HTTP/1.1 only (ForceAttemptHTTP2 left false and TLSNextProto cleared so
// the client can never upgrade to h2).
func buildClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext:        dialer.DialContext,
		DisableKeepAlives:  true,
		DisableCompression: true,
		ForceAttemptHTTP2:  false,
		TLSNextProto:       map[string]func(string, *tls.Conn) http.RoundTripper{},
	}
	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}
