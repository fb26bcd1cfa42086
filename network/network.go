package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// NewClient builds the HTTP client shared by health checks and alert
// delivery. A zero timeout leaves requests unbounded. proxyAddr, when set,
// routes every request through a SOCKS5 proxy.
func NewClient(timeout time.Duration, proxyAddr string) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if proxyAddr != "" {
		dialer, err := socks5Dialer(proxyAddr)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dialer.DialContext
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

type contextDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

func socks5Dialer(addr string) (contextDialer, error) {
	if !strings.Contains(addr, "://") {
		addr = "socks5://" + addr
	}
	parsed, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address: %w", err)
	}
	if parsed.Scheme != "socks5" && parsed.Scheme != "socks5h" {
		return nil, fmt.Errorf("unsupported proxy scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("proxy address %q has no host", addr)
	}

	var auth *proxy.Auth
	if parsed.User != nil {
		password, _ := parsed.User.Password()
		auth = &proxy.Auth{User: parsed.User.Username(), Password: password}
	}

	dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
	if err != nil {
		return nil, err
	}
	ctxDialer, ok := dialer.(contextDialer)
	if !ok {
		return nil, errors.New("proxy dialer does not support context")
	}
	return ctxDialer, nil
}
