package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type Client struct {
	client   *http.Client
	header   http.Header
	endpoint string
	log      *logrus.Logger
}

// NewClient creates a new http client wrapper.
func NewClient(endpoint string, options ...Option) *Client {
	client := &Client{
		endpoint: endpoint,
		client:   http.DefaultClient,
	}
	for _, option := range options {
		option(client)
	}

	if client.log == nil {
		client.log = logrus.New()
	}

	return client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.client = httpClient
	}
}

func WithHTTPHeader(header http.Header) Option {
	return func(c *Client) {
		c.header = header
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// Post sends a GraphQL operation and decodes its data into out.
func (c *Client) Post(ctx context.Context, operationName, query string, variables map[string]any, out any, options ...Option) error {
	for _, option := range options {
		option(c)
	}

	req, err := NewRequest(ctx, c.endpoint, operationName, query, variables)
	if err != nil {
		return fmt.Errorf("failed to create post request: %w", err)
	}

	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	log := c.log.WithFields(logrus.Fields{
		"endpoint":  c.endpoint,
		"operation": operationName,
	})
	log.Debug("sending graphql request")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.WithField("status", resp.StatusCode).Debug("received graphql response")

	return ParseResponse(resp, out)
}
