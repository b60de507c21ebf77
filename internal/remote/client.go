// Package remote builds the outbound HTTP client shared by remote
// adapters: resty over a retryable transport, with a client-side rate
// limiter and a circuit breaker. Timeouts, transient-error retries and
// failure isolation live here, per client, never at the dispatch layer.
package remote

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultTimeout = 60 * time.Second

// Client wraps resty with a rate limiter and a circuit breaker.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *Breaker
}

// New creates a production-ready outbound client. Transient HTTP errors
// are retried by the transport with backoff; the limiter is unlimited
// until configured.
func New() *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = nil

	restyClient := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("User-Agent", "bridgefs/1.0")
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	return &Client{
		Resty:   restyClient,
		Limiter: rate.NewLimiter(rate.Inf, 0),
		Breaker: NewBreaker(0, 0),
	}
}

// Do admits one request through the rate limiter and the circuit
// breaker, then runs fn and records its outcome.
func (c *Client) Do(ctx context.Context, fn func() error) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}
	return c.Breaker.Execute(fn)
}

// SetRate bounds outbound requests per second.
func (c *Client) SetRate(rps float64, burst int) {
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
}
