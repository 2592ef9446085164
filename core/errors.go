package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput         = "EXOLIX_BAD_INPUT"
	ErrorRemote           = "EXOLIX_REMOTE_ERROR"
	ErrorTransportFailure = "EXOLIX_TRANSPORT_FAILURE"
	ErrorCancelled        = "EXOLIX_CANCELLED"
	ErrorDecodeFailed     = "EXOLIX_DECODE_FAILED"
	ErrorInternal         = "EXOLIX_INTERNAL_ERROR"
)

const (
	MetadataURL        = "url"
	MetadataStatusCode = "status_code"
	MetadataStatusText = "status_text"
	MetadataBody       = "body"
	MetadataReason     = "reason"
	MetadataMethod     = "method"
)

const genericRemoteErrorMessage = "request failed"

// Outcome classifies how a call settled.
type Outcome string

const (
	OutcomePayload          Outcome = "payload"
	OutcomeStructuredError  Outcome = "structured_error"
	OutcomeTransportFailure Outcome = "transport_failure"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeValidation       Outcome = "validation"
	OutcomeDecodeFailure    Outcome = "decode_failure"
	OutcomeInternal         Outcome = "internal"
)

func validationError(field string, message string) error {
	return goerrors.NewValidation("exolix: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func internalError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
}

func remoteError(message string, statusCode int, statusText string, url string, body any) error {
	if strings.TrimSpace(message) == "" {
		message = genericRemoteErrorMessage
	}
	return goerrors.New(message, remoteCategory(statusCode)).
		WithCode(statusCode).
		WithTextCode(ErrorRemote).
		WithMetadata(map[string]any{
			MetadataURL:        url,
			MetadataStatusCode: statusCode,
			MetadataStatusText: statusText,
			MetadataBody:       body,
		})
}

func transportFailure(source error, url string) error {
	message := "transport failure"
	if source != nil && strings.TrimSpace(source.Error()) != "" {
		message = source.Error()
	}
	return goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithTextCode(ErrorTransportFailure).
		WithMetadata(map[string]any{
			MetadataURL:        url,
			MetadataStatusCode: 0,
		})
}

func cancelledError(cause error, url string) error {
	if cause == nil {
		cause = context.Canceled
	}
	message := "request cancelled"
	if errors.Is(cause, ErrRequestTimedOut) {
		message = ErrRequestTimedOut.Error()
	}
	return goerrors.Wrap(cause, goerrors.CategoryOperation, message).
		WithTextCode(ErrorCancelled).
		WithMetadata(map[string]any{
			MetadataURL:        url,
			MetadataStatusCode: 0,
			MetadataReason:     cause.Error(),
		})
}

func decodeError(source error, statusCode int, url string, body any) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, fmt.Sprintf("exolix: decode response: %v", source)).
		WithCode(statusCode).
		WithTextCode(ErrorDecodeFailed).
		WithMetadata(map[string]any{
			MetadataURL:        url,
			MetadataStatusCode: statusCode,
			MetadataBody:       body,
		})
}

func remoteCategory(statusCode int) goerrors.Category {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return goerrors.CategoryBadInput
	case http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case http.StatusForbidden:
		return goerrors.CategoryAuthz
	case http.StatusNotFound:
		return goerrors.CategoryNotFound
	case http.StatusConflict:
		return goerrors.CategoryConflict
	case http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	default:
		return goerrors.CategoryExternal
	}
}

// OutcomeOf reports how a call that returned err settled.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomePayload
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return OutcomeInternal
	}
	switch rich.TextCode {
	case ErrorRemote:
		return OutcomeStructuredError
	case ErrorTransportFailure:
		return OutcomeTransportFailure
	case ErrorCancelled:
		return OutcomeCancelled
	case ErrorBadInput:
		return OutcomeValidation
	case ErrorDecodeFailed:
		return OutcomeDecodeFailure
	default:
		return OutcomeInternal
	}
}

func IsCancelled(err error) bool {
	return OutcomeOf(err) == OutcomeCancelled
}

func IsValidation(err error) bool {
	return OutcomeOf(err) == OutcomeValidation
}

// StatusCodeOf returns the HTTP status carried by err, or 0 when no response
// was received.
func StatusCodeOf(err error) int {
	code, _ := metadataOf(err)[MetadataStatusCode].(int)
	return code
}

// ResponseBodyOf returns the parsed JSON or raw text body attached to a
// structured error.
func ResponseBodyOf(err error) any {
	return metadataOf(err)[MetadataBody]
}

func RequestURLOf(err error) string {
	url, _ := metadataOf(err)[MetadataURL].(string)
	return url
}

// CancelReasonOf returns the cause text of a cancelled call.
func CancelReasonOf(err error) string {
	reason, _ := metadataOf(err)[MetadataReason].(string)
	return reason
}

func metadataOf(err error) map[string]any {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) || rich == nil {
		return nil
	}
	return rich.Metadata
}
