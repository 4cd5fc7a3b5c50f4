package mailer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reactiveshots/portfolio/pkg/buildinfo"
	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/observability"
)

// DefaultEndpoint is the production mailer endpoint.
const DefaultEndpoint = "https://mailer.geethg.com/reactiveshots/send"

const httpTimeout = 15 * time.Second

// Receipt describes an accepted inquiry.
type Receipt struct {
	ID     string    `json:"id"`
	SentAt time.Time `json:"sent_at"`
	Status int       `json:"status"`
}

// Client sends inquiries to the mailer service.
type Client struct {
	http     *http.Client
	endpoint string
	retry    func(context.Context, func() error) error
}

// NewClient creates a Client for endpoint. An empty endpoint selects
// [DefaultEndpoint].
func NewClient(endpoint string) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if err := errors.ValidateURL(endpoint); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "mailer endpoint")
	}
	return &Client{
		http:     &http.Client{Timeout: httpTimeout},
		endpoint: endpoint,
		retry:    cache.RetryWithBackoff,
	}, nil
}

// Endpoint returns the URL inquiries are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send validates q and posts it. Transport failures and 5xx responses are
// retried; the returned error carries [errors.ErrCodeUpstream] when the
// mailer ultimately refuses or cannot be reached.
func (c *Client) Send(ctx context.Context, q Inquiry) (Receipt, error) {
	if err := q.Validate(); err != nil {
		return Receipt{}, err
	}
	q = q.Normalized()

	id := uuid.NewString()
	form := url.Values{
		"name":    {q.Name},
		"email":   {q.Email},
		"subject": {q.Subject},
		"message": {q.Message},
	}.Encode()

	var status int
	err := c.retry(ctx, func() error {
		var err error
		status, err = c.post(ctx, id, form)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return Receipt{}, errors.Wrap(errors.ErrCodeTimeout, err, "send inquiry")
		}
		return Receipt{}, errors.Wrap(errors.ErrCodeUpstream, err, "send inquiry")
	}
	return Receipt{ID: id, SentAt: time.Now().UTC(), Status: status}, nil
}

func (c *Client) post(ctx context.Context, id, form string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("X-Request-ID", id)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return 0, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return code, nil
	case code == http.StatusTooManyRequests, code >= 500:
		return code, cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return code, fmt.Errorf("mailer rejected inquiry: status %d", code)
	}
}
