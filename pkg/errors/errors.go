package errors

import (
	stdErrors "errors"
	"fmt"
)

// Kind classifies every failure the console core can surface.
type Kind string

const (
	// KindValidationRejected marks client-detected bad input. It never
	// reaches the network and is resolved inside the form session.
	KindValidationRejected Kind = "VALIDATION_REJECTED"
	// KindServerRejected marks a well-formed backend reply with success:false.
	KindServerRejected Kind = "SERVER_REJECTED"
	// KindNotFound marks a reply about an id the backend no longer knows.
	KindNotFound Kind = "NOT_FOUND"
	// KindUnreachable marks a transport-level failure.
	KindUnreachable Kind = "UNREACHABLE"
	// KindMalformedResponse marks a reply that did not match the wire contract.
	KindMalformedResponse Kind = "MALFORMED_RESPONSE"
	// KindInternal marks a programming error inside the core.
	KindInternal Kind = "INTERNAL"
)

// Metadata describes how a Kind is handled and presented.
type Metadata struct {
	Retryable       bool
	FallbackMessage string
}

var metadataByKind = map[Kind]Metadata{
	KindValidationRejected: {
		Retryable:       false,
		FallbackMessage: "Please correct the highlighted field.",
	},
	KindServerRejected: {
		Retryable:       false,
		FallbackMessage: "The server rejected the request.",
	},
	KindNotFound: {
		Retryable:       false,
		FallbackMessage: "The requested record no longer exists.",
	},
	KindUnreachable: {
		Retryable:       true,
		FallbackMessage: "Could not reach the server. Please try again.",
	},
	KindMalformedResponse: {
		Retryable:       true,
		FallbackMessage: "Could not reach the server. Please try again.",
	},
	KindInternal: {
		Retryable:       false,
		FallbackMessage: "Something went wrong.",
	},
}

// MetadataFor returns handling metadata for the kind, defaulting to internal.
func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindInternal]
}

// UserFacing maps a kind to the kind shown to the user. Malformed responses
// are logged in full but presented as unreachability.
func (k Kind) UserFacing() Kind {
	if k == KindMalformedResponse {
		return KindUnreachable
	}
	return k
}

// Error is the typed failure passed between the gateway, the record store,
// and the form session layer.
type Error struct {
	kind    Kind
	message string
	field   string
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{kind: kind, message: message, cause: err}
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Field names the first failing form field for validation errors.
func (e *Error) Field() string {
	if e == nil {
		return ""
	}
	return e.field
}

func (e *Error) WithField(field string) *Error {
	if e == nil {
		return nil
	}
	e.field = field
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts a typed *Error from an error chain, or nil.
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

// KindOf reports the kind of any error, treating untyped errors as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if typed := As(err); typed != nil {
		return typed.Kind()
	}
	return KindInternal
}

// UserMessage returns the inline message a form should display for err.
func UserMessage(err error) string {
	typed := As(err)
	if typed == nil {
		return MetadataFor(KindInternal).FallbackMessage
	}
	if typed.kind == KindMalformedResponse {
		return MetadataFor(KindUnreachable).FallbackMessage
	}
	if typed.message != "" {
		return typed.message
	}
	return MetadataFor(typed.kind).FallbackMessage
}
