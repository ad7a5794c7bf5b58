package paypal

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	maxResponseBytes      = 1 << 20

	opToken        = "token"
	opCreateOrder  = "create_order"
	opCaptureOrder = "capture_order"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// roundTrip sends req and drains the body. A non-nil error means the request
// never produced a response (transport failure or timeout).
func roundTrip(client HTTPDoer, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
