package paypal

import (
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestResolveCredentials(t *testing.T) {
	cfg := config.PayPalConfig{
		ClientID:        "live-id",
		Secret:          "live-secret",
		SandboxClientID: "sb-id",
		SandboxSecret:   "sb-secret",
	}

	tests := []struct {
		flag    string
		wantID  string
		wantURL string
	}{
		{flag: "", wantID: "sb-id", wantURL: SandboxBaseURL},
		{flag: "true", wantID: "sb-id", wantURL: SandboxBaseURL},
		{flag: "FALSE", wantID: "sb-id", wantURL: SandboxBaseURL},
		{flag: "0", wantID: "sb-id", wantURL: SandboxBaseURL},
		{flag: "false", wantID: "live-id", wantURL: LiveBaseURL},
	}

	for _, tt := range tests {
		t.Run("flag="+tt.flag, func(t *testing.T) {
			c := cfg
			c.IsSandbox = tt.flag
			got := ResolveCredentials(c)
			assert.Equal(t, tt.wantID, got.ClientID)
			assert.Equal(t, tt.wantURL, got.BaseURL)
			assert.Equal(t, tt.wantURL == SandboxBaseURL, got.Sandbox())
		})
	}
}

func TestResolveCredentialsPassesThroughEmptyValues(t *testing.T) {
	got := ResolveCredentials(config.PayPalConfig{IsSandbox: "false"})
	assert.Equal(t, Credentials{BaseURL: LiveBaseURL}, got)
}

func TestCredentialsStringOmitsSecret(t *testing.T) {
	creds := Credentials{ClientID: "id", Secret: "super-secret", BaseURL: SandboxBaseURL}
	assert.False(t, strings.Contains(creds.String(), "super-secret"))
	assert.Contains(t, creds.String(), "id")
}
