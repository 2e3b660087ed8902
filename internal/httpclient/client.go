package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shhac/interfere/internal/domain"
	apperrors "github.com/shhac/interfere/internal/errors"
)

const (
	// DefaultTimeout bounds a whole send including reading the body.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response body is kept.
	maxBodyBytes = 32 << 20
)

// Outgoing is everything needed to issue one request
type Outgoing struct {
	Method  domain.Method
	URL     string
	Request domain.Request
}

// Result is a received reply. Non-2xx statuses are results, not errors.
type Result struct {
	Code      int
	Status    string
	Text      string
	Header    http.Header
	Duration  time.Duration
	Size      int
	Truncated bool
}

// Options configures a Client
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client issues GET and POST requests built from a domain.Request
type Client struct {
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// New creates a Client. A zero timeout uses DefaultTimeout.
func New(opts Options, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Send performs the request and reads the whole body. Failures are
// *apperrors.Error values: KindClient for a bad URL, KindUnknown otherwise.
func (c *Client) Send(ctx context.Context, out Outgoing) (*Result, error) {
	target, err := BuildURL(out.URL, out.Request.EncodedQuery())
	if err != nil {
		return nil, err
	}

	method := out.Method.String()
	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, apperrors.Client(apperrors.ErrInvalidURL, "%v", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, values := range out.Request.EnabledHeaders() {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	c.logger.Debug("sending request",
		slog.String("method", method),
		slog.String("url", target.String()),
		slog.Int("headers", len(req.Header)))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("url", target.String()),
			slog.Any("error", err))
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	duration := time.Since(start)
	if err != nil {
		return nil, transportError(fmt.Errorf("read response body: %w", err))
	}

	result := &Result{
		Code:     resp.StatusCode,
		Status:   resp.Status,
		Header:   resp.Header,
		Duration: duration,
		Size:     len(body),
	}
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
		result.Size = maxBodyBytes
		result.Truncated = true
	}
	result.Text = string(body)

	c.logger.Info("received response",
		slog.String("method", method),
		slog.String("url", target.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
		slog.Int("size", result.Size))

	return result, nil
}

// BuildURL validates raw and appends the encoded query to any query it
// already carries.
func BuildURL(raw, query string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Client(apperrors.ErrNoURL, "no URL to send")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperrors.Client(apperrors.ErrInvalidURL, "invalid URL %q", raw)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return nil, apperrors.Client(apperrors.ErrInvalidURL, "missing scheme in %q", raw)
	default:
		return nil, apperrors.Client(apperrors.ErrUnsupportedURL, "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, apperrors.Client(apperrors.ErrInvalidURL, "missing host in %q", raw)
	}

	if query != "" {
		if u.RawQuery == "" {
			u.RawQuery = query
		} else {
			u.RawQuery += "&" + query
		}
	}
	return u, nil
}

func transportError(err error) *apperrors.Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &apperrors.Error{
			Kind: apperrors.KindUnknown,
			Msg:  err.Error(),
			Err:  fmt.Errorf("%w: %w", apperrors.ErrRequestTimeout, err),
		}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &apperrors.Error{
			Kind: apperrors.KindUnknown,
			Msg:  err.Error(),
			Err:  fmt.Errorf("%w: %w", apperrors.ErrConnectionFailed, err),
		}
	}
	return apperrors.Unknown(err)
}
