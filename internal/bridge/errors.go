package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAuthConfig        = errors.New("bridge requires exactly one of an API key secret or a complete certificate bundle")
	ErrMissingSecretStore       = errors.New("bridge requires a secret store")
	ErrEmptyBaseURL             = errors.New("bridge base URL must be specified")
	ErrFetchSecret              = errors.New("failed to fetch bridge secret")
	ErrInvalidCertificateBundle = errors.New("certificate bundle must contain certificate and privateKey")
	ErrCredentialExchange       = errors.New("credential exchange failed")
	ErrSignRequest              = errors.New("failed to sign bridge request")
	ErrBuildRequest             = errors.New("failed to build bridge request")
	ErrDecodeResponse           = errors.New("failed to decode bridge response")
)

// APIError is returned for every non-2xx bridge response other than a missing cost mapping.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bridge API error: status %d: %s", e.StatusCode, e.Body)
}

// AccountMappingNotFoundError reports that the bridge knows no cross-partition mapping
// for the queried account. Callers are expected to skip the account.
type AccountMappingNotFoundError struct {
	LinkedAccountID string
	Body            string
}

func (e *AccountMappingNotFoundError) Error() string {
	return fmt.Sprintf("no cross-partition account mapping for %s: %s", e.LinkedAccountID, e.Body)
}
