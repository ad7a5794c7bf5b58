package paypal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// TokenSafetyMargin is how long before the real expiry a token stops being served.
const TokenSafetyMargin = 5 * time.Minute

// CachedAccessToken is the single account-level bearer token.
type CachedAccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// Usable reports now + margin < expiry.
func (t *CachedAccessToken) Usable(now time.Time) bool {
	return t != nil && t.Token != "" && now.Add(TokenSafetyMargin).Before(t.ExpiresAt)
}

// TokenSource hands out bearer tokens for provider calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenCacheParams struct {
	HTTPClient HTTPDoer
	Resolve    Resolver
	// Now defaults to time.Now; tests inject a fake clock.
	Now     func() time.Time
	Timeout time.Duration
	Logger  *logger.Logger
	Metrics *metrics.CheckoutMetrics
}

// TokenCache amortizes the client-credentials exchange across requests.
// Concurrent misses share one in-flight exchange. The mutex only guards
// the cached pointer and is never held across network I/O.
type TokenCache struct {
	httpClient HTTPDoer
	resolve    Resolver
	now        func() time.Time
	timeout    time.Duration
	logger     *logger.Logger
	metrics    *metrics.CheckoutMetrics

	mu     sync.RWMutex
	cached *CachedAccessToken
	group  singleflight.Group
}

func NewTokenCache(p TokenCacheParams) (*TokenCache, error) {
	if p.Resolve == nil {
		return nil, errors.New("paypal credential resolver is required")
	}
	if p.HTTPClient == nil {
		p.HTTPClient = http.DefaultClient
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultRequestTimeout
	}
	return &TokenCache{
		httpClient: p.HTTPClient,
		resolve:    p.Resolve,
		now:        p.Now,
		timeout:    p.Timeout,
		logger:     p.Logger,
		metrics:    p.Metrics,
	}, nil
}

// Token returns the cached token while usable, otherwise performs one
// exchange shared by every caller waiting on it.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.current(); ok {
		c.metrics.IncToken(metrics.TokenCacheHit)
		return token, nil
	}

	// exchanged is only set by the caller whose closure the group ran.
	var exchanged bool
	ch := c.group.DoChan("token", func() (any, error) {
		if token, ok := c.current(); ok {
			return token, nil
		}
		exchanged = true
		// Detached so one caller giving up does not fail the others.
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", pkgerrors.Wrap(pkgerrors.CodeProviderAuth, ctx.Err(), "paypal token request cancelled")
	case res := <-ch:
		if res.Err != nil {
			c.metrics.IncToken(metrics.TokenCacheError)
			return "", res.Err
		}
		if exchanged {
			c.metrics.IncToken(metrics.TokenCacheRefresh)
		} else {
			c.metrics.IncToken(metrics.TokenCacheHit)
		}
		return res.Val.(string), nil
	}
}

// Snapshot returns a copy of the cached entry, if any.
func (c *TokenCache) Snapshot() (CachedAccessToken, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil {
		return CachedAccessToken{}, false
	}
	return *c.cached, true
}

func (c *TokenCache) current() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached.Usable(c.now()) {
		return c.cached.Token, true
	}
	return "", false
}

func (c *TokenCache) store(token *CachedAccessToken) {
	c.mu.Lock()
	c.cached = token
	c.mu.Unlock()
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	creds := c.resolve()

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeProviderAuth, err, "building paypal token request")
	}
	req.SetBasicAuth(creds.ClientID, creds.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	status, body, err := roundTrip(c.httpClient, req)
	c.metrics.ObserveProviderCall(opToken, time.Since(started))
	if err != nil {
		c.logFailure(ctx, status, nil, err)
		return "", pkgerrors.Wrap(pkgerrors.CodeProviderAuth, err, "paypal token request failed")
	}
	if !isSuccess(status) {
		cause := fmt.Errorf("token endpoint returned %d: %s", status, truncate(body, 2048))
		c.logFailure(ctx, status, body, cause)
		return "", pkgerrors.Wrap(pkgerrors.CodeProviderAuth, cause, "paypal token request rejected")
	}

	parsed, err := parseTokenResponse(body)
	if err != nil {
		c.logFailure(ctx, status, nil, err)
		return "", err
	}

	c.store(&CachedAccessToken{
		Token:     parsed.AccessToken,
		ExpiresAt: c.now().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	})
	if c.logger != nil {
		c.logger.Info(c.logger.WithFields(ctx, map[string]any{
			"operation":  opToken,
			"expires_in": parsed.ExpiresIn,
			"sandbox":    creds.Sandbox(),
		}), "paypal access token refreshed")
	}
	return parsed.AccessToken, nil
}

func (c *TokenCache) logFailure(ctx context.Context, status int, body []byte, err error) {
	if c.logger == nil {
		return
	}
	fields := map[string]any{"operation": opToken, "status": status}
	if len(body) > 0 {
		fields["response_body"] = truncate(body, 2048)
	}
	c.logger.Error(c.logger.WithFields(ctx, fields), "paypal token exchange failed", err)
}
