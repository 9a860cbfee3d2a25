package etsy

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveConnection is returned when a user has no active connection for a shop
	ErrNoActiveConnection = errors.New("no active etsy connection found")
	// ErrMissingCode is returned when the provider callback carries no authorization code
	ErrMissingCode = errors.New("authorization code is missing")
	// ErrStateMismatch is returned when the callback state does not belong to the caller
	ErrStateMismatch = errors.New("oauth state does not match the current user")
)

// TokenExchangeError reports a failed authorization_code grant
type TokenExchangeError struct {
	err error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %v", e.err)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.err
}

// TokenRefreshError reports a failed refresh_token grant
type TokenRefreshError struct {
	err error
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.err)
}

func (e *TokenRefreshError) Unwrap() error {
	return e.err
}

// ProviderFetchError reports a failed shop or listings request
type ProviderFetchError struct {
	Resource   string
	StatusCode int
	err        error
}

func (e *ProviderFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d: %v", e.Resource, e.StatusCode, e.err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.err)
}

func (e *ProviderFetchError) Unwrap() error {
	return e.err
}

// IsTokenExchange returns true if err is a TokenExchangeError
func IsTokenExchange(err error) bool {
	var target *TokenExchangeError
	return errors.As(err, &target)
}

// IsTokenRefresh returns true if err is a TokenRefreshError
func IsTokenRefresh(err error) bool {
	var target *TokenRefreshError
	return errors.As(err, &target)
}

// IsProviderFetch returns true if err is a ProviderFetchError
func IsProviderFetch(err error) bool {
	var target *ProviderFetchError
	return errors.As(err, &target)
}
