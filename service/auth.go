package service

import (
	"errors"
	"strings"
	"time"

	"github.com/beka-birhanu/mazebot/infrastruture/token"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL     = 24 * time.Hour
	minKeyStrengthScore = 3
)

var ErrWeakKey = errors.New("operator key is too weak")

// Auth signs in operators holding the shared operator key.
// Implements i.Authenticator.
type Auth struct {
	keyHash   []byte
	tokenizer i.Tokenizer
	ttl       time.Duration
}

// NewAuthService creates an Auth checking keys against the bcrypt keyHash.
func NewAuthService(keyHash string, t i.Tokenizer, ttl time.Duration) (*Auth, error) {
	if keyHash == "" {
		return nil, errors.New("operator key hash is empty")
	}
	if _, err := bcrypt.Cost([]byte(keyHash)); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Auth{keyHash: []byte(keyHash), tokenizer: t, ttl: ttl}, nil
}

// HashKey returns the bcrypt hash to configure for key. Guessable keys are
// rejected.
func HashKey(key string) (string, error) {
	if zxcvbn.PasswordStrength(key, []string{"mazebot", "robot", "operator"}).Score < minKeyStrengthScore {
		return "", ErrWeakKey
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SignIn returns an operator token for name when key matches.
func (a *Auth) SignIn(name, key string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", i.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(a.keyHash, []byte(key)); err != nil {
		return "", i.ErrInvalidCredentials
	}

	return a.tokenizer.Generate(token.OperatorClaims(name), a.ttl)
}
