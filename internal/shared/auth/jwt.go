package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by an access token.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

var ErrInvalidToken = errors.New("invalid token")

// Tokens signs and verifies access tokens. The zero value is not usable;
// build one from the loaded configuration.
type Tokens struct {
	secret    []byte
	method    jwt.SigningMethod
	expiresIn time.Duration
}

// NewTokens builds a token signer. Only HMAC algorithms are supported; an
// empty secret is allowed outside production and handled by the config
// layer.
func NewTokens(secret, algorithm string, expireMinutes int) (*Tokens, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	return &Tokens{
		secret:    []byte(secret),
		method:    method,
		expiresIn: time.Duration(expireMinutes) * time.Minute,
	}, nil
}

// Sign issues a token for the given identity.
func (t *Tokens) Sign(claims Claims) (string, error) {
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}
	now := time.Now().UTC()
	token := jwt.NewWithClaims(t.method, jwt.MapClaims{
		"sub":   claims.Sub,
		"email": claims.Email,
		"name":  claims.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(t.expiresIn).Unix(),
	})
	return token.SignedString(t.secret)
}

// Verify parses a token and returns its claims.
func (t *Tokens) Verify(raw string) (Claims, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != t.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}
	email, _ := mapClaims["email"].(string)
	name, _ := mapClaims["name"].(string)
	return Claims{Sub: sub, Email: email, Name: name}, nil
}
