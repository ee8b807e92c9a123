package labels

import (
	"context"
	"fmt"
	"strings"
)

// ResolveToken returns the first non-empty token candidate
func ResolveToken(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if token := strings.TrimSpace(candidate); token != "" {
			return token, nil
		}
	}
	return "", &ConfigError{
		Field:   "token",
		Message: "no GitHub token found: set INPUT_TOKEN or GITHUB_TOKEN, or configure github.token in ~/.labelsync/config.yaml",
	}
}

// AccessInfo describes what the token may do in a repository
type AccessInfo struct {
	Repository string   `json:"repository"`
	Scopes     []string `json:"scopes,omitempty"`
	// PermissionsKnown is false when the API returned no permission block,
	// which is the case for some installation tokens
	PermissionsKnown bool `json:"permissions_known"`
	CanPush          bool `json:"can_push"`
}

// CheckAccess verifies the repository exists and the token can manage its labels
func (c *Client) CheckAccess(ctx context.Context, repo Repository) (*AccessInfo, error) {
	info := &AccessInfo{Repository: repo.String()}

	err := WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		r, resp, err := c.client.Repositories.Get(ctx, repo.Owner, repo.Name)
		observeResponse(c.limiter, resp)
		if err != nil {
			return WrapTransportError(err, fmt.Sprintf("repository %s", repo))
		}

		if resp != nil {
			if header := resp.Header.Get("X-OAuth-Scopes"); header != "" {
				info.Scopes = strings.Split(strings.ReplaceAll(header, " ", ""), ",")
			}
		}

		perms := r.GetPermissions()
		if len(perms) > 0 {
			info.PermissionsKnown = true
			info.CanPush = perms["push"] || perms["maintain"] || perms["admin"]
		}
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}

	if info.PermissionsKnown && !info.CanPush {
		return info, NewTransportError(ErrorTypePermission,
			fmt.Sprintf("token cannot manage labels in %s: write access is required", repo), nil)
	}
	return info, nil
}

// GetAuthInstructions returns instructions for setting up GitHub authentication
func GetAuthInstructions() string {
	return `GitHub authentication is required. Please set up authentication using one of the following methods:

1. GitHub Actions:
   with:
     token: ${{ secrets.GITHUB_TOKEN }}

2. Environment Variable:
   export GITHUB_TOKEN="your_personal_access_token"

3. Configuration File:
   Add the following to ~/.labelsync/config.yaml:

   github:
     token: "your_personal_access_token"

To create a personal access token:
1. Go to GitHub Settings > Developer settings > Personal access tokens
2. Create a fine-grained token with "Issues: Read and write" for the repository,
   or a classic token with the repo (or public_repo) scope
3. Copy the generated token and use it with one of the methods above`
}
