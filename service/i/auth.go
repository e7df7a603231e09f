package i

import "errors"

var ErrInvalidCredentials = errors.New("invalid operator name or key")

// Authenticator issues operator tokens.
type Authenticator interface {
	// SignIn checks the operator key and returns a signed token.
	SignIn(name, key string) (string, error)
}
