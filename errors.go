package aocdata

import (
	"errors"
	"fmt"
)

// ErrCacheMiss indicates the requested entry is not in the puzzle cache.
var ErrCacheMiss = errors.New("puzzle cache miss")

// ConfigError indicates a configuration source could not be read or parsed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// AuthError indicates the session token is missing, invalid, or expired. The
// token itself is never included in the message.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason + "; sign in to the puzzle service in a browser and copy a fresh session cookie"
}

// NotUnlockedError indicates the requested puzzle has not been published yet
// or does not exist.
type NotUnlockedError struct {
	Year Year
	Day  Day
}

func (e *NotUnlockedError) Error() string {
	return fmt.Sprintf("puzzle day %s year %s is not available", e.Day, e.Year)
}

// TransportError wraps a network or unexpected HTTP failure. Retrying with
// backoff is safe; the wrapped error is available via Unwrap.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecryptionError indicates a cache entry could not be decrypted, either
// because the passphrase changed or because the entry's encryption state does
// not match the active configuration. The entry must be fixed or removed by
// hand; it is never silently treated as a cache miss.
type DecryptionError struct {
	Path   string
	Reason string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decrypt %s: %s", e.Path, e.Reason)
}
