package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorKind categorizes pipeline failures.
type ErrorKind string

const (
	KindSourceUnavailable ErrorKind = "source_unavailable"
	KindEncodeFailed      ErrorKind = "encode_failed"
	KindPublishFailed     ErrorKind = "publish_failed"
	KindNetworkTimeout    ErrorKind = "network_timeout"
	KindUnknown           ErrorKind = "unknown"
)

// HTTPStatus maps an error kind to the status returned by the clip API.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindSourceUnavailable:
		return http.StatusUnprocessableEntity
	case KindEncodeFailed:
		return http.StatusInternalServerError
	case KindPublishFailed:
		return http.StatusBadGateway
	case KindNetworkTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ClipError is a structured pipeline error.
type ClipError struct {
	Kind    ErrorKind
	Message string
	Cause   error
	Context map[string]any
}

func (e *ClipError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClipError) Unwrap() error {
	return e.Cause
}

func SourceUnavailableError(message string, cause error, context map[string]any) *ClipError {
	return &ClipError{Kind: KindSourceUnavailable, Message: message, Cause: cause, Context: context}
}

func EncodeFailedError(message string, cause error, context map[string]any) *ClipError {
	return &ClipError{Kind: KindEncodeFailed, Message: message, Cause: cause, Context: context}
}

func PublishFailedError(message string, cause error, context map[string]any) *ClipError {
	return &ClipError{Kind: KindPublishFailed, Message: message, Cause: cause, Context: context}
}

func NetworkTimeoutError(message string, cause error, context map[string]any) *ClipError {
	return &ClipError{Kind: KindNetworkTimeout, Message: message, Cause: cause, Context: context}
}

// KindOf returns the kind of the first ClipError in err's chain.
func KindOf(err error) ErrorKind {
	var ce *ClipError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

var (
	ErrSessionNotFound      = errors.New("clip session not found")
	ErrShareInFlight        = errors.New("share already in progress")
	ErrNotSelecting         = errors.New("clip session is not accepting gestures")
	ErrClipNotFound         = errors.New("clip not found")
	ErrClipImageNotFound    = errors.New("clip image not found")
	ErrInvalidSurface       = errors.New("surface too small for a selection")
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	ErrPageURLNotAllowed    = errors.New("page image url is not an edition page or an allowed host")
)

func IsShareInFlight(err error) bool {
	return errors.Is(err, ErrShareInFlight)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrClipNotFound) ||
		errors.Is(err, ErrClipImageNotFound)
}

// LogError logs err once with its kind and context.
func LogError(logger *slog.Logger, err error, operation string) {
	if logger == nil || err == nil {
		return
	}

	var ce *ClipError
	if errors.As(err, &ce) {
		args := []any{
			"operation", operation,
			"error_kind", string(ce.Kind),
			"error_message", ce.Message,
		}
		for key, value := range ce.Context {
			args = append(args, key, value)
		}
		if ce.Cause != nil {
			args = append(args, "cause", ce.Cause.Error())
		}
		logger.Error("clip pipeline error", args...)
		return
	}

	logger.Error("unclassified error",
		"operation", operation,
		"error", err.Error(),
	)
}
