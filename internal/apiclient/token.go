package apiclient

import (
	"context"
	"fmt"
	"strings"
)

const (
	adminPrefix  = "/admin"
	uploadPrefix = "/upload"
)

// CredentialProvider supplies bearer tokens at request time.
// Empty strings mean "no token"; errors mean the stored credentials could not be read.
type CredentialProvider interface {
	AdminToken() (string, error)
	CustomerToken() (string, error)
	ClearAdminToken() error
}

// IsAdminScoped reports whether a call needs the admin token: the caller is on an
// admin page, or the endpoint is an admin or upload endpoint.
func IsAdminScoped(location, endpoint string) bool {
	return strings.HasPrefix(location, adminPrefix) ||
		strings.HasPrefix(endpoint, adminPrefix) ||
		strings.HasPrefix(endpoint, uploadPrefix)
}

// isAdminEndpoint reports whether a 401 on endpoint ends the admin session
func isAdminEndpoint(endpoint string) bool {
	return strings.HasPrefix(endpoint, adminPrefix)
}

// resolveToken picks the bearer token for a call: the admin token for admin scoped
// calls, otherwise (or when no admin token is stored) the customer token.
//
// Failures reading the store are reported and treated as "no token"; they never fail the request.
func (c *Client) resolveToken(ctx context.Context, endpoint string) string {
	if IsAdminScoped(ContextLocation(ctx), endpoint) {
		token, err := c.credentials.AdminToken()
		if err != nil {
			c.reportError(ctx, fmt.Errorf("reading admin token: %w", err))
		} else if token != "" {
			return token
		}
	}

	token, err := c.credentials.CustomerToken()
	if err != nil {
		c.reportError(ctx, fmt.Errorf("reading customer token: %w", err))
		return ""
	}
	return token
}

// anonymous is used when the client is created without a credential provider
type anonymous struct{}

func (anonymous) AdminToken() (string, error)    { return "", nil }
func (anonymous) CustomerToken() (string, error) { return "", nil }
func (anonymous) ClearAdminToken() error         { return nil }
