package errors

import (
	stderrors "errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// Kind classifies a FieldError and selects its HTTP status.
type Kind int

const (
	// KindValidation is malformed, user-correctable input.
	KindValidation Kind = iota
	// KindAuthorization is a caller lacking permission for the request.
	KindAuthorization
	// KindConflict is input clashing with stored state.
	KindConflict
	// KindNotFound is a referenced record that does not exist.
	KindNotFound
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "validation"
	}
}

// FieldError is an error whose payload is a map of field name to a
// human-readable message, e.g. {"phone": "A member account with that phone
// number already exists."}.
type FieldError struct {
	Kind   Kind
	Fields map[string]string
}

// Error implements the error interface
func (e *FieldError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Kind.String() + " error: " + strings.Join(parts, "; ")
}

// Has reports whether the error carries a message for field.
func (e *FieldError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// NewFieldError creates a FieldError with a single field message.
func NewFieldError(kind Kind, field, message string) *FieldError {
	return &FieldError{Kind: kind, Fields: map[string]string{field: message}}
}

// NewFieldErrors creates a FieldError carrying several field messages.
func NewFieldErrors(kind Kind, fields map[string]string) *FieldError {
	return &FieldError{Kind: kind, Fields: fields}
}

func Validation(field, message string) *FieldError {
	return NewFieldError(KindValidation, field, message)
}

func Authorization(field, message string) *FieldError {
	return NewFieldError(KindAuthorization, field, message)
}

func Conflict(field, message string) *FieldError {
	return NewFieldError(KindConflict, field, message)
}

func NotFoundField(field, message string) *FieldError {
	return NewFieldError(KindNotFound, field, message)
}

// AsFieldError unwraps err into a FieldError when it is one.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsKind reports whether err is a FieldError of the given kind.
func IsKind(err error, kind Kind) bool {
	fe, ok := AsFieldError(err)
	return ok && fe.Kind == kind
}

// Default detail messages
const (
	MsgUnauthorized = "Authentication credentials were not provided."
	MsgForbidden    = "You do not have permission to perform this action."
	MsgNotFound     = "Not found."
	MsgInternal     = "Encountered an unexpected error"
)

// Respond writes the field map of err with the status matching its kind.
func Respond(c *gin.Context, err *FieldError) {
	c.JSON(err.Kind.Status(), err.Fields)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = MsgUnauthorized
	}
	c.JSON(http.StatusUnauthorized, gin.H{"detail": message})
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = MsgForbidden
	}
	c.JSON(http.StatusForbidden, gin.H{"detail": message})
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = MsgNotFound
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": message})
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	c.JSON(http.StatusBadRequest, gin.H{"detail": message})
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = MsgInternal
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
