package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/freshbowl/storefront/pkg/enums"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	CodeStockExceeded        Code = "STOCK_EXCEEDED"
	CodeLimitExceeded        Code = "LIMIT_EXCEEDED"
	CodeEmptySelection       Code = "EMPTY_SELECTION"
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"
	CodeChannelUnavailable   Code = "CHANNEL_UNAVAILABLE"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	// Severity is used when the error is surfaced as a user notification.
	Severity enums.Severity
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
		Severity:       enums.SeverityWarning,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
		Severity:      enums.SeverityWarning,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
		Severity:      enums.SeverityWarning,
	},
	CodeStateConflict: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "state transition disallowed",
		DetailsAllowed: true,
		Severity:       enums.SeverityWarning,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
		Severity:      enums.SeverityError,
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
		Severity:       enums.SeverityError,
	},
	CodeStockExceeded: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "not enough stock available",
		DetailsAllowed: true,
		Severity:       enums.SeverityWarning,
	},
	CodeLimitExceeded: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "selection limit reached",
		DetailsAllowed: true,
		Severity:       enums.SeverityWarning,
	},
	CodeEmptySelection: {
		HTTPStatus:    http.StatusUnprocessableEntity,
		PublicMessage: "select at least one add-on",
		Severity:      enums.SeverityWarning,
	},
	CodeMissingRequiredField: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "required details are missing",
		DetailsAllowed: true,
		Severity:       enums.SeverityWarning,
	},
	CodeChannelUnavailable: {
		HTTPStatus:     http.StatusBadGateway,
		Retryable:      true,
		PublicMessage:  "could not open the messaging app, please try again",
		DetailsAllowed: true,
		Severity:       enums.SeverityError,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
