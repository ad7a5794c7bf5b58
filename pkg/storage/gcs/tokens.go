package gcs

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenEndpoint = "https://oauth2.googleapis.com/token"
	scope         = "https://www.googleapis.com/auth/devstorage.read_write"
	metadataToken = "http://metadata.google.internal/computeMetadata/v1/instance/service-accounts/default/token"
	refreshWindow = time.Minute
)

// TokenSource returns a bearer token for the storage API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type fetchFunc func(ctx context.Context) (string, time.Duration, error)

// cachedTokenSource reuses a token until it is within a minute of expiry.
type cachedTokenSource struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
	fetch  fetchFunc
}

func newCachedTokenSource(fetch fetchFunc) *cachedTokenSource {
	return &cachedTokenSource{fetch: fetch, now: time.Now}
}

func (t *cachedTokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.expiry.Sub(t.now()) > refreshWindow {
		return t.token, nil
	}

	token, ttl, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}
	t.token = token
	t.expiry = t.now().Add(ttl)
	return token, nil
}

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// NewServiceAccountTokenSource exchanges a signed RS256 assertion for an
// access token using the JWT bearer grant.
func NewServiceAccountTokenSource(client *http.Client, credentialsJSON []byte) (TokenSource, error) {
	var sa serviceAccount
	if err := json.Unmarshal(credentialsJSON, &sa); err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, errors.New("invalid service account credentials")
	}
	if sa.TokenURI == "" {
		sa.TokenURI = tokenEndpoint
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}

	return newCachedTokenSource(func(ctx context.Context) (string, time.Duration, error) {
		return fetchServiceAccountToken(ctx, client, sa.ClientEmail, sa.TokenURI, key, time.Now())
	}), nil
}

func NewMetadataTokenSource(client *http.Client) TokenSource {
	return newCachedTokenSource(func(ctx context.Context) (string, time.Duration, error) {
		return fetchMetadataToken(ctx, client, metadataToken)
	})
}

func signAssertion(email, audience string, key *rsa.PrivateKey, now time.Time) (string, error) {
	claims := struct {
		Scope string `json:"scope"`
		jwt.RegisteredClaims
	}{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    email,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

func fetchServiceAccountToken(ctx context.Context, client *http.Client, email, tokenURI string, key *rsa.PrivateKey, now time.Time) (string, time.Duration, error) {
	assertion, err := signAssertion(email, tokenURI, key, now)
	if err != nil {
		return "", 0, fmt.Errorf("signing assertion: %w", err)
	}
	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeTokenResponse(resp)
}

func fetchMetadataToken(ctx context.Context, client *http.Client, endpoint string) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Metadata-Flavor", "Google")
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeTokenResponse(resp)
}
