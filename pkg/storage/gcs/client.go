package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	DefaultEndpoint = "https://storage.googleapis.com"
	pingTimeout     = 5 * time.Second
	errorBodyLimit  = 2048
)

// Object is a downloaded blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	ETag        string
	Size        int64
}

// Client talks to the GCS JSON API for a single bucket.
type Client struct {
	httpClient *http.Client
	endpoint   string
	bucket     string
	tokens     TokenSource
	logg       *logger.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientParams builds a client without touching the network. Tokens may be
// nil for emulators that accept anonymous requests.
type ClientParams struct {
	HTTPClient *http.Client
	Endpoint   string
	Bucket     string
	Tokens     TokenSource
	Logger     *logger.Logger
}

func NewClientWithParams(p ClientParams) (*Client, error) {
	if strings.TrimSpace(p.Bucket) == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	if p.HTTPClient == nil {
		p.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	endpoint := strings.TrimRight(strings.TrimSpace(p.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: p.HTTPClient,
		endpoint:   endpoint,
		bucket:     p.Bucket,
		tokens:     p.Tokens,
		logg:       p.Logger,
	}, nil
}

// NewClient resolves credentials from config and verifies bucket access.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	tokens, err := tokenSourceFromConfig(httpClient, cfg, gcp)
	if err != nil {
		return nil, err
	}

	client, err := NewClientWithParams(ClientParams{
		HTTPClient: httpClient,
		Endpoint:   cfg.Endpoint,
		Bucket:     cfg.BucketName,
		Tokens:     tokens,
		Logger:     logg,
	})
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func tokenSourceFromConfig(httpClient *http.Client, cfg config.GCSConfig, gcp config.GCPConfig) (TokenSource, error) {
	switch {
	case gcp.CredentialsJSON != "":
		return NewServiceAccountTokenSource(httpClient, []byte(gcp.CredentialsJSON))
	case gcp.ApplicationCredentials != "":
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		return NewServiceAccountTokenSource(httpClient, raw)
	case cfg.Endpoint != "" && strings.TrimRight(cfg.Endpoint, "/") != DefaultEndpoint:
		// local emulator
		return nil, nil
	default:
		return NewMetadataTokenSource(httpClient), nil
	}
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.endpoint, url.PathEscape(c.bucket))
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError("gcs object check", resp)
	}
	return nil
}

// Upload stores body under key. size may be -1 when unknown.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if strings.TrimSpace(key) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "object key required")
	}
	q := url.Values{}
	q.Set("uploadType", "media")
	q.Set("name", key)
	u := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", c.endpoint, url.PathEscape(c.bucket), q.Encode())

	req, err := c.newRequest(ctx, http.MethodPost, u, body, contentType)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload object")
	}
	if size >= 0 {
		req.ContentLength = size
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload object")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, statusError("gcs upload", resp), "upload object")
	}
	c.logInfo(ctx, key, "gcs object uploaded")
	return nil
}

// Download streams the object. A missing object is a NotFound error.
func (c *Client) Download(ctx context.Context, key string) (*Object, error) {
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", c.endpoint, url.PathEscape(c.bucket), url.PathEscape(key))
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "download object")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Not found")
	case resp.StatusCode != http.StatusOK:
		err := statusError("gcs download", resp)
		_ = resp.Body.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "download object")
	}

	obj := &Object{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
		Size:        resp.ContentLength,
	}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	if n, err := strconv.ParseInt(resp.Header.Get("X-Goog-Stored-Content-Length"), 10, 64); err == nil {
		obj.Size = n
	}
	return obj, nil
}

// Delete removes key. Deleting a missing object succeeds.
func (c *Client) Delete(ctx context.Context, key string) error {
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(c.bucket), url.PathEscape(key))
	resp, err := c.do(ctx, http.MethodDelete, u, nil, "")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		c.logInfo(ctx, key, "gcs object deleted")
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, statusError("gcs delete", resp), "delete object")
	}
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, u, body, contentType)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) logInfo(ctx context.Context, key, msg string) {
	if c.logg == nil {
		return
	}
	c.logg.Info(c.logg.WithFields(ctx, map[string]any{"bucket": c.bucket, "object": key}), msg)
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if msg := strings.TrimSpace(string(b)); msg != "" {
		return fmt.Errorf("%s failed: %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("%s failed: %s", op, resp.Status)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func decodeTokenResponse(resp *http.Response) (string, time.Duration, error) {
	if resp.StatusCode != http.StatusOK {
		return "", 0, statusError("token request", resp)
	}
	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("decoding token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", 0, errors.New("token response missing access_token")
	}
	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}
