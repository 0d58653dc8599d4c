package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrMissingIdentity = errors.New("identity claims must include an email")
)

// Claims set by the signer. A submitted identity cannot override them.
var reservedClaims = []string{"sub", "iat", "exp", "nbf"}

// Claims is the caller identity carried by a session token. Extra holds
// every other claim the client submitted when the session was issued.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
	Extra map[string]interface{} `json:"-"`
}

// SessionSigner issues and verifies session tokens.
type SessionSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionSigner derives the signing key from secret.
func NewSessionSigner(secret string, ttl time.Duration) (*SessionSigner, error) {
	key, err := DeriveSessionKey([]byte(secret))
	if err != nil {
		return nil, err
	}
	return &SessionSigner{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the given identity.
func (s *SessionSigner) Issue(email, name string) (string, error) {
	identity := map[string]interface{}{"email": email}
	if name != "" {
		identity["name"] = name
	}
	return s.IssueClaims(identity)
}

// IssueClaims signs every claim in identity. identity must hold a non-empty
// string email; sub, iat, exp and nbf are always set here.
func (s *SessionSigner) IssueClaims(identity map[string]interface{}) (string, error) {
	email, _ := identity["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrMissingIdentity
	}

	claims := make(jwt.MapClaims, len(identity)+3)
	for k, v := range identity {
		claims[k] = v
	}
	for _, k := range reservedClaims {
		delete(claims, k)
	}
	now := s.now()
	claims["email"] = email
	claims["sub"] = email
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(s.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Verify returns the identity embedded in tokenStr.
func (s *SessionSigner) Verify(tokenStr string) (*Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrInvalidToken
	}
	mc := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, mc, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claimsFrom(mc)
}

func claimsFrom(mc jwt.MapClaims) (*Claims, error) {
	email, _ := mc["email"].(string)
	if email == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{Email: email, Extra: map[string]interface{}{}}
	claims.Name, _ = mc["name"].(string)
	claims.Subject, _ = mc.GetSubject()
	claims.ExpiresAt, _ = mc.GetExpirationTime()
	claims.IssuedAt, _ = mc.GetIssuedAt()

	for k, v := range mc {
		switch k {
		case "email", "name", "sub", "iat", "exp", "nbf":
			continue
		}
		claims.Extra[k] = v
	}
	return claims, nil
}

// TTL is how long an issued token stays valid.
func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}
