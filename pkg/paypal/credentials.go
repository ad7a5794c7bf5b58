package paypal

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"
)

// Credentials identify the merchant account for one environment.
type Credentials struct {
	ClientID string
	Secret   string
	BaseURL  string
}

// String never includes the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("paypal credentials (client_id=%s base_url=%s)", c.ClientID, c.BaseURL)
}

// Sandbox reports whether the credentials target the sandbox endpoint.
func (c Credentials) Sandbox() bool {
	return c.BaseURL == SandboxBaseURL
}

// ResolveCredentials selects the sandbox pair unless the flag is exactly "false".
// Empty values are passed through; the token exchange reports them.
func ResolveCredentials(cfg config.PayPalConfig) Credentials {
	if cfg.UseSandbox() {
		return Credentials{
			ClientID: strings.TrimSpace(cfg.SandboxClientID),
			Secret:   strings.TrimSpace(cfg.SandboxSecret),
			BaseURL:  SandboxBaseURL,
		}
	}
	return Credentials{
		ClientID: strings.TrimSpace(cfg.ClientID),
		Secret:   strings.TrimSpace(cfg.Secret),
		BaseURL:  LiveBaseURL,
	}
}

// Resolver yields the credentials for the current request.
type Resolver func() Credentials

// ConfigResolver resolves from a fixed configuration snapshot.
func ConfigResolver(cfg config.PayPalConfig) Resolver {
	return func() Credentials {
		return ResolveCredentials(cfg)
	}
}

// StaticResolver always returns creds. Used to point the client at a test server.
func StaticResolver(creds Credentials) Resolver {
	return func() Credentials {
		return creds
	}
}
