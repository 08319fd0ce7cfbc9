package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// APIError is a non-2xx response from the Spotify Web API.
type APIError struct {
	StatusCode int

	// RetryAfter is the cooldown the server asked for on a 429, zero
	// otherwise.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("spotify: status %d, retry after %s", e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("spotify: status %d", e.StatusCode)
}

func newAPIError(resp *http.Response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp),
	}
}

// parseRetryAfter reads the Retry-After header, which carries either a
// number of seconds or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsRateLimited reports whether err is a 429 from the API.
func IsRateLimited(err error) bool {
	apiErr := asAPIError(err)
	return apiErr != nil && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsAuthFailure reports whether err means the credentials were rejected,
// either by the API itself or while fetching a token. Retrying cannot
// help until the credentials change.
func IsAuthFailure(err error) bool {
	if apiErr := asAPIError(err); apiErr != nil {
		return apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden
	}

	var tokenErr *oauth2.RetrieveError
	return errors.As(err, &tokenErr)
}
