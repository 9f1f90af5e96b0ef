package market

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheMiss indicates that no stored record exists for a key.
	ErrCacheMiss = errors.New("market: cache miss")
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("market: invalid input")
	// ErrSerialization is wrapped by every SerializationError.
	ErrSerialization = errors.New("market: stored payload cannot be decoded")
)

// ProviderError reports a network failure or non-success response from the market-data provider.
type ProviderError struct {
	Provider   string
	Op         string
	AssetID    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Op)
	if e.AssetID != "" {
		msg += " " + e.AssetID
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": http status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError reports a missing or malformed input parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("market: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// SerializationError reports a stored payload that could not be decoded.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("market: decode %s: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() []error { return []error{ErrSerialization, e.Err} }

// IsProviderError reports whether err originated at the market-data provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsCacheMiss reports whether err means "nothing usable stored". Corrupt
// payloads count as misses.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss) || errors.Is(err, ErrSerialization)
}

// ValidateLimit checks a snapshot page size.
func ValidateLimit(limit int) error {
	if limit < 1 {
		return &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be >= 1, got %d", limit)}
	}
	return nil
}

// ValidateSeriesRequest checks the asset id and window before any I/O happens.
func ValidateSeriesRequest(req SeriesRequest) error {
	if req.AssetID == "" {
		return &ValidationError{Field: "assetId", Reason: "required"}
	}
	if req.WindowDays < 1 {
		return &ValidationError{Field: "windowDays", Reason: fmt.Sprintf("must be >= 1, got %d", req.WindowDays)}
	}
	return nil
}
