package auth

import "errors"

// Errors returned by ValidateToken. The auth middleware maps each to a 401.
var (
	ErrInvalidToken     = errors.New("invalid operator token")
	ErrExpiredToken     = errors.New("operator token has expired")
	ErrTokenNotYetValid = errors.New("operator token not yet valid")
	ErrMissingToken     = errors.New("operator token is missing")

	// ErrWrongTokenType is returned for a correctly signed token whose
	// token_type claim is not "access".
	ErrWrongTokenType = errors.New("wrong token type")
)
