package account

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes exposed so callers can branch on failures without string
// matching error messages.
const (
	TextCodeValidationFailed  = "VALIDATION_FAILED"
	TextCodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeInvalidTokenType  = "INVALID_TOKEN_TYPE"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeTokenEmpty        = "TOKEN_EMPTY"
	TextCodeAccountNotFound   = "ACCOUNT_NOT_FOUND"
	TextCodeAlreadyConfirmed  = "ALREADY_CONFIRMED"
	TextCodeHashFailure       = "HASH_FAILURE"
	TextCodeNoCapability      = "CAPABILITY_NOT_CONFIGURED"
)

// ErrDuplicateIdentity is returned when registering an identity or email
// value that is already taken.
var ErrDuplicateIdentity = goerrors.New("the supplied value has already been taken", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is the generic authentication failure. It is shared
// by the unknown-identity and wrong-password paths so a caller cannot tell
// which check failed.
var ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidTokenType is returned when a token decodes cleanly but its type
// claim does not match the operation consuming it.
var ErrInvalidTokenType = goerrors.New("invalid token type", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidTokenType).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when the current time is past the token expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers signature mismatches, secret mismatches, and
// tokens that cannot be parsed at all.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenEmpty is returned when a token verifies but carries no payload
// once bookkeeping claims are stripped.
var ErrTokenEmpty = goerrors.New("token is empty", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenEmpty).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotFound is returned by actions that require an existing account.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrAlreadyConfirmed is returned when requesting confirmation for an
// account that already completed it.
var ErrAlreadyConfirmed = goerrors.New("account is already confirmed", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyConfirmed).
	WithCode(goerrors.CodeConflict)

// ErrEmptyPassword is returned when hashing an empty plaintext.
var ErrEmptyPassword = goerrors.New("password must not be empty", goerrors.CategoryBadInput).
	WithTextCode(TextCodeHashFailure).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordMismatch is returned when a plaintext does not reproduce the
// stored hash. It is a comparison outcome, not an internal failure.
var ErrPasswordMismatch = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrCapabilityNotConfigured is returned when invoking a workflow whose
// collaborator (reset or confirmation sink, distinct email field) was not
// provided at construction.
var ErrCapabilityNotConfigured = goerrors.New("capability not configured", goerrors.CategoryOperation).
	WithTextCode(TextCodeNoCapability).
	WithCode(goerrors.CodeBadRequest)

// NewValidationError builds the aggregate error returned by the field
// validator. The field->reason map rides in metadata so callers can
// re-render forms without parsing messages.
func NewValidationError(fields map[string]string) *goerrors.Error {
	details := make(map[string]any, len(fields))
	for field, reason := range fields {
		details[field] = reason
	}

	return goerrors.New("a validation error occurred", goerrors.CategoryValidation).
		WithTextCode(TextCodeValidationFailed).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"fields": details})
}

// ValidationFields extracts the field->reason map from a validation error.
// Returns nil when err does not carry field details.
func ValidationFields(err error) map[string]string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return nil
	}

	raw, ok := richErr.Metadata["fields"]
	if !ok {
		return nil
	}

	fields := map[string]string{}
	switch detail := raw.(type) {
	case map[string]string:
		for k, v := range detail {
			fields[k] = v
		}
	case map[string]any:
		for k, v := range detail {
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}
	default:
		return nil
	}

	return fields
}

// IsDuplicateError reports whether err is a uniqueness violation, either
// ours or one surfaced by a store backend.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeDuplicateIdentity {
		return true
	}

	return isUniqueViolation(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// isUniqueViolation matches the unique-constraint messages of the SQL
// drivers the bun store runs against.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}
