package labels

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// defaultHTTPTimeout bounds every single API request
const defaultHTTPTimeout = 60 * time.Second

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client  *github.Client
	limiter RateLimiter
	retry   *RetryConfig
}

// ClientOption customizes a Client
type ClientOption func(*Client) error

// WithBaseURL points the client at a GitHub Enterprise Server API
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) error {
		if baseURL == "" || strings.TrimRight(baseURL, "/") == "https://api.github.com" {
			return nil
		}
		enterprise, err := c.client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		c.client = enterprise
		return nil
	}
}

// WithRetryConfig replaces the default retry policy
func WithRetryConfig(cfg *RetryConfig) ClientOption {
	return func(c *Client) error {
		c.retry = cfg
		return nil
	}
}

// WithRateLimiter replaces the default rate limiter
func WithRateLimiter(limiter RateLimiter) ClientOption {
	return func(c *Client) error {
		c.limiter = limiter
		return nil
	}
}

// NewClient creates a new GitHub API client with the provided token
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = defaultHTTPTimeout

	c := &Client{
		client:  github.NewClient(tc),
		limiter: NewRateLimiter(nil),
		retry:   DefaultRetryConfig(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ListLabels retrieves every label of a repository, following pagination
func (c *Client) ListLabels(ctx context.Context, repo Repository) ([]RemoteLabel, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allLabels []RemoteLabel

	err := WithRetry(ctx, func() error {
		allLabels = nil // Reset on retry
		opts.Page = 0   // Reset pagination on retry

		for {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			labels, resp, err := c.client.Issues.ListLabels(ctx, repo.Owner, repo.Name, opts)
			observeResponse(c.limiter, resp)
			if err != nil {
				return WrapTransportError(err, fmt.Sprintf("repository %s", repo))
			}

			for _, label := range labels {
				allLabels = append(allLabels, RemoteLabel{
					Name:        label.GetName(),
					Color:       fromAPIColor(label.GetColor()),
					Description: label.GetDescription(),
				})
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, c.retry)

	if err != nil {
		return nil, err
	}
	return allLabels, nil
}

// CreateLabel creates a new label
func (c *Client) CreateLabel(ctx context.Context, repo Repository, label RemoteLabel) error {
	request := &github.Label{
		Name:        github.String(label.Name),
		Color:       github.String(toAPIColor(label.Color)),
		Description: github.String(label.Description),
	}

	return WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		_, resp, err := c.client.Issues.CreateLabel(ctx, repo.Owner, repo.Name, request)
		observeResponse(c.limiter, resp)
		if err != nil {
			return WrapTransportError(err, fmt.Sprintf("label %q in %s", label.Name, repo))
		}
		return nil
	}, c.retry)
}

// EditLabel updates the label currently named currentName. When label.Name
// differs from currentName the label is renamed in the same request.
func (c *Client) EditLabel(ctx context.Context, repo Repository, currentName string, label RemoteLabel) error {
	request := &github.Label{
		Name:        github.String(label.Name),
		Color:       github.String(toAPIColor(label.Color)),
		Description: github.String(label.Description),
	}

	return WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		_, resp, err := c.client.Issues.EditLabel(ctx, repo.Owner, repo.Name, url.PathEscape(currentName), request)
		observeResponse(c.limiter, resp)
		if err != nil {
			return WrapTransportError(err, fmt.Sprintf("label %q in %s", currentName, repo))
		}
		return nil
	}, c.retry)
}

// DeleteLabel deletes a label by name
func (c *Client) DeleteLabel(ctx context.Context, repo Repository, name string) error {
	return WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		resp, err := c.client.Issues.DeleteLabel(ctx, repo.Owner, repo.Name, url.PathEscape(name))
		observeResponse(c.limiter, resp)
		if err != nil {
			return WrapTransportError(err, fmt.Sprintf("label %q in %s", name, repo))
		}
		return nil
	}, c.retry)
}

// GetContents reads a file from the repository at ref. An empty ref reads
// the default branch.
func (c *Client) GetContents(ctx context.Context, repo Repository, path, ref string) ([]byte, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}

	var content string

	err := WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		file, _, resp, err := c.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, opts)
		observeResponse(c.limiter, resp)
		if err != nil {
			return WrapTransportError(err, fmt.Sprintf("file %s in %s", path, repo))
		}
		if file == nil {
			return NewTransportError(ErrorTypeValidation, fmt.Sprintf("%s is a directory, not a file", path), nil)
		}
		content, err = file.GetContent()
		if err != nil {
			return NewTransportError(ErrorTypeUnknown, fmt.Sprintf("failed to decode %s: %v", path, err), err)
		}
		return nil
	}, c.retry)

	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// RateLimitStats exposes the statistics of the client's rate limiter
func (c *Client) RateLimitStats() RateLimiterStats {
	return c.limiter.GetStats()
}

// toAPIColor converts "#rrggbb" to the bare hex the API expects
func toAPIColor(color string) string {
	return strings.TrimPrefix(color, "#")
}

// fromAPIColor converts the API's bare hex to "#rrggbb"
func fromAPIColor(color string) string {
	if color == "" || strings.HasPrefix(color, "#") {
		return color
	}
	return "#" + color
}

var _ APIClient = (*Client)(nil)
