package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"weather-mcp/internal/apperr"
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errNoClient    = errors.New("http client not configured")
)

// doResilientRequest executes a single HTTP attempt through the circuit
// breaker. There are never retries here: one invocation means at most one
// outbound call. Only transport failures, 429s and 5xx responses count
// against the breaker; client errors (404, 400) pass through for the
// caller to classify.
func doResilientRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	if client == nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "weather provider misconfigured", errNoClient)
	}
	if ctx.Err() != nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "request aborted", ctx.Err())
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, errServerError
		}
		return resp, nil
	})
	if err != nil {
		return nil, classifyTransportError(err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, apperr.New(apperr.CodeInternal, "unexpected result type from circuit breaker")
	}
	return resp, nil
}

func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperr.Wrap(apperr.CodeUnavailable, "weather provider circuit open", err)
	case errors.Is(err, errRateLimited):
		return apperr.Wrap(apperr.CodeRateLimited, "weather provider rate limit exceeded", err)
	case errors.Is(err, errServerError):
		return apperr.Wrap(apperr.CodeUnavailable, "weather provider server error", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.CodeUnavailable, "weather provider request timed out", err)
	default:
		return apperr.Wrap(apperr.CodeUnavailable, "weather provider unreachable", err)
	}
}

// classifyStatus maps a non-2xx response the breaker let through into an
// application error, using the provider's error message when present.
func classifyStatus(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.Message
	if msg == "" {
		msg = fmt.Sprintf("provider returned status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.New(apperr.CodeNotFound, msg)
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return apperr.New(apperr.CodeInvalidRequest, msg)
	default:
		return apperr.New(apperr.CodeUnavailable, msg)
	}
}
