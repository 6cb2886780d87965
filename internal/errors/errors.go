// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTimeout           = errors.New("operation timed out")
	ErrConnectionFailed  = errors.New("connection failed")
	ErrRateLimited       = errors.New("rate limited")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrNoData            = errors.New("no data available")
	ErrProviderDisabled  = errors.New("data source disabled")
	ErrEmptyResponse     = errors.New("empty response from model")
	ErrUnknownProvider   = errors.New("unsupported LLM provider")
	ErrInsufficientPrice = errors.New("insufficient price history")
)

// ErrorKind separates failures the retry layer may repeat from those it
// must not.
type ErrorKind string

const (
	Transient ErrorKind = "transient"
	Permanent ErrorKind = "permanent"
)

// RemoteError wraps a failure from a remote call (LLM generation or data
// fetch) with its retry classification.
type RemoteError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call [%s] %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewTransient creates a retryable RemoteError.
func NewTransient(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Kind: Transient, Err: err}
}

// NewPermanent creates a non-retryable RemoteError.
func NewPermanent(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Kind: Permanent, Err: err}
}

// IsPermanent reports whether err carries a permanent classification. An
// unclassified error is treated as transient so a plain network failure
// still gets its retries.
func IsPermanent(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind == Permanent
	}
	return false
}

// IsTransient reports whether err may be retried.
func IsTransient(err error) bool {
	return err != nil && !IsPermanent(err)
}

// DataSourceError represents a failure fetching from one market data source.
type DataSourceError struct {
	Source string
	Ticker string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source [%s] %s: %v", e.Source, e.Ticker, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSourceError creates a new DataSourceError.
func NewDataSourceError(source, ticker string, err error) *DataSourceError {
	return &DataSourceError{Source: source, Ticker: ticker, Err: err}
}

// InvariantError indicates a pipeline stage executed before its
// prerequisite stage populated the state it needs. It is a programming
// defect and the only fatal error class: the run aborts with no partial
// decision.
type InvariantError struct {
	Stage   string
	Missing string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("pipeline invariant violated at %s: missing %s", e.Stage, e.Missing)
}

// NewInvariantError creates a new InvariantError.
func NewInvariantError(stage, missing string) *InvariantError {
	return &InvariantError{Stage: stage, Missing: missing}
}

// IsInvariant reports whether err is a fatal pipeline invariant violation.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
