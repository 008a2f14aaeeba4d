package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const defaultRequestTimeout = 15 * time.Second

// newHTTPClient returns the client shared by a provider instance. The
// timeout bounds every call; callers may tighten it further via context.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultRequestTimeout}
}

// newBreaker returns the circuit breaker guarding one provider's upstream.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes req through the breaker and reads the full body.
// Non-2xx responses and transport failures come back as typed provider
// errors; the breaker opening counts as a network failure.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) ([]byte, *Error) {
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, NotFoundError("%s returned 404", req.URL.Path)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, ServerError(resp.StatusCode, "HTTP error: %s", resp.Status)
		}

		return body, nil
	})

	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			return nil, perr
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, NetworkError(err, "upstream temporarily unavailable: %v", err)
		}
		return nil, NetworkError(err, "request failed: %v", err)
	}

	return result.([]byte), nil
}
