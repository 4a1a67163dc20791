// Package client is the Go client for the cedarlink HTTP API, shared by
// the CLI and by programmatic consumers.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	server     string
	authToken  string
	httpClient *http.Client
}

type Option func(*Client)

func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(server string, opts ...Option) *Client {
	c := &Client{
		server: strings.TrimSuffix(server, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type urlBuilder struct {
	server string
	path   string
	query  url.Values
}

func (c *Client) url() *urlBuilder {
	return &urlBuilder{
		server: c.server,
		query:  url.Values{},
	}
}

func (b *urlBuilder) setPath(path string) *urlBuilder {
	b.path = path
	return b
}

// setPathParam substitutes a "{name}" segment in the route pattern.
func (b *urlBuilder) setPathParam(name, value string) *urlBuilder {
	b.path = strings.ReplaceAll(b.path, "{"+name+"}", url.PathEscape(value))
	return b
}

func (b *urlBuilder) addQueryParam(name string, value any) *urlBuilder {
	b.query.Add(name, fmt.Sprint(value))
	return b
}

func (b *urlBuilder) build() string {
	u := b.server + b.path
	if len(b.query) > 0 {
		u += "?" + b.query.Encode()
	}
	return u
}
