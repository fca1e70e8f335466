package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Kind classifies a tagged service error.
type Kind string

const (
	// KindExternalService covers provider outages, provider 4xx/5xx responses,
	// and generation preconditions that depend on provider data.
	KindExternalService Kind = "external_service"
	// KindInternal covers faults outside generation (storage, corrupt rows).
	KindInternal Kind = "internal"
)

// ExternalServiceError is the tagged error raised by the puzzle core and the
// metadata client. Callers switch on Kind rather than probing properties.
type ExternalServiceError struct {
	Kind       Kind
	Message    string
	StatusCode int
	RetryAfter time.Duration
	Cause      error
}

func (e *ExternalServiceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = string(e.kind())
	}
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExternalServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ErrorKind reports the classification of the error.
func (e *ExternalServiceError) ErrorKind() Kind {
	return e.kind()
}

func (e *ExternalServiceError) kind() Kind {
	if e == nil || e.Kind == "" {
		return KindExternalService
	}
	return e.Kind
}

// External builds a KindExternalService error.
func External(message string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Kind: KindExternalService, Message: message, Cause: cause}
}

// ExternalStatus builds a KindExternalService error carrying a provider status code.
func ExternalStatus(message string, status int, cause error) *ExternalServiceError {
	return &ExternalServiceError{Kind: KindExternalService, Message: message, StatusCode: status, Cause: cause}
}

// Internal builds a KindInternal error.
func Internal(message string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Kind: KindInternal, Message: message, Cause: cause}
}

// AsExternal extracts the tagged error from err's chain.
func AsExternal(err error) (*ExternalServiceError, bool) {
	var tagged *ExternalServiceError
	if errors.As(err, &tagged) && tagged != nil {
		return tagged, true
	}
	return nil, false
}

// KindOf classifies err. Untagged errors are treated as internal.
func KindOf(err error) Kind {
	if tagged, ok := AsExternal(err); ok {
		return tagged.ErrorKind()
	}
	return KindInternal
}

// AsExternalServiceError re-wraps any error into the external-service
// category. Errors that are already tagged as external pass through unchanged.
func AsExternalServiceError(message string, err error) error {
	if err == nil {
		return nil
	}
	if tagged, ok := AsExternal(err); ok && tagged.ErrorKind() == KindExternalService {
		return err
	}
	return External(message, err)
}

// Wrap builds an error message that includes component context while tagging it
// with the provided marker. The marker should be one of the exported sentinel
// errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
