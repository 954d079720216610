// Package util provides logging, error types, and small shared helpers.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for device collection failures. Typed errors below
// unwrap to one of these so callers can classify without type switches.
var (
	ErrConnection     = errors.New("connection failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrTimeout        = errors.New("operation timed out")
	ErrCommand        = errors.New("command rejected")
	ErrParse          = errors.New("no parser matched")
	ErrConfig         = errors.New("invalid configuration")
	ErrCancelled      = errors.New("operation cancelled")
)

// maxCapturedOutput bounds how much device output an error carries.
const maxCapturedOutput = 200

// retryable is implemented by error types that know their own
// retriability (inventory API errors report it per HTTP status).
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether an operation that failed with err may
// succeed on a retry. Connection drops and timeouts are retriable;
// authentication, command, parse, and config failures are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrTimeout)
}

// ConnectionError indicates the transport to a device was refused or dropped.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return ErrConnection }

// NewConnectionError wraps a transport failure with the device host.
func NewConnectionError(host string, err error) *ConnectionError {
	return &ConnectionError{Host: host, Err: err}
}

// AuthenticationError indicates the device rejected the supplied credentials.
// Never retried.
type AuthenticationError struct {
	Host string
	User string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %s@%s", e.User, e.Host)
}

func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(host, user string) *AuthenticationError {
	return &AuthenticationError{Host: host, User: user}
}

// TimeoutError indicates a connect or read exceeded its deadline.
type TimeoutError struct {
	Host string
	Op   string // "connect" or "read"
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timeout on %s", e.Op, e.Host)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// NewTimeoutError creates a timeout error for the given operation.
func NewTimeoutError(host, op string) *TimeoutError {
	return &TimeoutError{Host: host, Op: op}
}

// CommandError indicates the device rejected a command. The run for
// that device is aborted; the error captures the command and a
// truncated slice of the device's response.
type CommandError struct {
	Host    string
	Command string
	Output  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q rejected by %s: %s", e.Command, e.Host, Truncate(e.Output, maxCapturedOutput))
}

func (e *CommandError) Unwrap() error { return ErrCommand }

// NewCommandError creates a command rejection error.
func NewCommandError(host, command, output string) *CommandError {
	return &CommandError{Host: host, Command: command, Output: output}
}

// ParseError indicates no template matched a command's output and the
// regex fallback recovered nothing.
type ParseError struct {
	Platform string
	Command  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no parser for %q on platform %s", e.Command, e.Platform)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NewParseError creates a parse error.
func NewParseError(platform, command string) *ParseError {
	return &ParseError{Platform: platform, Command: command}
}

// ConfigError surfaces the file and key of an invalid configuration
// value. Terminal for the run.
type ConfigError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config %s: key %q: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// NewConfigError creates a configuration error.
func NewConfigError(path, key string, err error) *ConfigError {
	return &ConfigError{Path: path, Key: key, Err: err}
}
