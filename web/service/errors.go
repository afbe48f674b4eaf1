package service

import "errors"

// AuthErrorKind discriminates authentication failures so callers can map them
// to HTTP statuses without matching on message text.
type AuthErrorKind int

const (
	// ErrKindValidation marks missing or malformed request fields.
	ErrKindValidation AuthErrorKind = iota
	// ErrKindUnauthorized marks credentials rejected by a provider.
	ErrKindUnauthorized
	// ErrKindAccessDenied marks a policy rejection.
	ErrKindAccessDenied
	// ErrKindAddEmailRequired marks a first-time sign-in that must resubmit
	// with an email address.
	ErrKindAddEmailRequired
	// ErrKindInternal marks unexpected provider or storage failures.
	ErrKindInternal
)

// Messages surfaced to clients. MsgAddEmailRequired is a wire-level constant
// that clients branch on.
const (
	MsgAccessDenied     = "Access denied."
	MsgAddEmailRequired = "CREDENTIAL_ERROR_ADD_EMAIL"
	MsgInternalError    = "Something went wrong."
	MsgInvalidResetLink = "The link is invalid or expired."
)

// AuthError carries a kind discriminant plus a human-readable message.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func newAuthError(kind AuthErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// AsAuthError unwraps err into an *AuthError when possible.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
