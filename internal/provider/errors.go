package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData covers empty input, missing target language, or absent
	// credentials; nothing was sent to the vendor.
	ErrMissingData = errors.New("provider: missing data for translation request")
	// ErrRateLimited reports a local admission rejection; no network call was made.
	ErrRateLimited = errors.New("provider: rate limit exceeded")
	// ErrHTTP reports a transport-level failure reaching the vendor.
	ErrHTTP = errors.New("provider: transport failure")
	// ErrAPI reports a non-2xx vendor response.
	ErrAPI = errors.New("provider: vendor rejected the request")
	// ErrMalformedResponse reports a 2xx response missing the expected
	// translated-text payload.
	ErrMalformedResponse = errors.New("provider: malformed vendor response")
	// ErrCredential reports bad or missing signing material.
	ErrCredential = errors.New("provider: invalid credentials")
)

// VendorError tags a provider failure with the vendor key and, where
// available, the HTTP status and raw body for post-hoc diagnosis.
type VendorError struct {
	Provider string
	Kind     error
	Status   int
	Body     string
	Err      error
}

func (e *VendorError) Error() string {
	if e == nil {
		return ErrAPI.Error()
	}
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind.Error())
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *VendorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// NewVendorError builds a tagged provider error.
func NewVendorError(providerKey string, kind error, status int, body string, cause error) *VendorError {
	return &VendorError{
		Provider: providerKey,
		Kind:     kind,
		Status:   status,
		Body:     body,
		Err:      cause,
	}
}

// RateLimiter is the admission capability providers consult before any
// network call. Implementations must be safe for concurrent use.
type RateLimiter interface {
	Allow(charCount int) bool
}
