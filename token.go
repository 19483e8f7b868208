package account

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// Token types accepted by the service workflows. The type claim is the sole
// authorization gate: a validly signed, unexpired token of the right type is
// necessary and sufficient to perform the action it names.
const (
	TokenTypeLogin         = "login"
	TokenTypePasswordReset = "password-reset"
	TokenTypeConfirmation  = "confirmation"
)

const tokenTypeClaim = "type"

// The codec is fixed to a single symmetric algorithm. There is no
// negotiation, which removes the algorithm-confusion surface.
var tokenSigningMethod = jwt.SigningMethodHS256

// SignToken signs a flat claims map with the shared secret, embedding
// issued-at and, when ttl is positive, the expiry. A zero or negative ttl
// produces a token with no expiry; the account service never issues one.
func SignToken(secret []byte, ttl time.Duration, content map[string]any) (string, error) {
	if len(secret) == 0 {
		return "", NewValidationError(map[string]string{"secret": "required"})
	}

	if len(content) == 0 {
		return "", NewValidationError(map[string]string{"content": "required"})
	}

	now := time.Now()
	claims := jwt.MapClaims{}
	for k, v := range content {
		claims[k] = v
	}
	claims["iat"] = jwt.NewNumericDate(now)
	if ttl > 0 {
		claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(tokenSigningMethod, claims).SignedString(secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// DecodeToken verifies the signature and expiry of a token and returns its
// claims with the iat/exp bookkeeping stripped. Expired tokens fail with
// ErrTokenExpired, everything else that does not verify fails with
// ErrTokenMalformed.
func DecodeToken(secret []byte, tokenString string) (map[string]any, error) {
	if len(secret) == 0 {
		return nil, NewValidationError(map[string]string{"secret": "required"})
	}

	if tokenString == "" {
		return nil, NewValidationError(map[string]string{"token": "required"})
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	content := make(map[string]any, len(claims))
	for k, v := range claims {
		if k == "iat" || k == "exp" {
			continue
		}
		content[k] = v
	}

	if len(content) == 0 {
		return nil, ErrTokenEmpty
	}

	return content, nil
}
