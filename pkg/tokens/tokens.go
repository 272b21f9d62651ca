package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a link token to exactly one transition, so a link that
// proves email ownership cannot be replayed to establish a session and
// vice versa.
type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeLogin  Purpose = "login"
)

var (
	// ErrTokenInvalid covers bad signatures and malformed tokens.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired means the token was well-formed and correctly
	// signed but presented after its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrPurposeMismatch means a link token was presented to the wrong
	// flow (a verify link to the login path or the other way around).
	ErrPurposeMismatch = errors.New("token purpose mismatch")
)

// Secrets carries the two independent signing keys, one per token
// family. Keeping them in one struct with distinct fields makes the
// independence a property of the wiring rather than a convention.
type Secrets struct {
	Link    string
	Session string
}

type linkClaims struct {
	Purpose Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// LinkCodec mints and validates the short-lived, purpose-scoped tokens
// embedded in magic links. It is a pure codec: no storage, safe for
// concurrent use.
type LinkCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewLinkCodec(s Secrets, ttl time.Duration) *LinkCodec {
	return &LinkCodec{secret: []byte(s.Link), ttl: ttl}
}

// TTL returns the validity window tokens are issued with.
func (c *LinkCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token asserting control of subject for the given purpose.
func (c *LinkCodec) Issue(subject string, purpose Purpose) (string, error) {
	now := time.Now()
	claims := &linkClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Validate checks signature, expiry, and purpose in that order and
// returns the subject claim. Each failure is terminal for the request;
// the caller must obtain a fresh token through the appropriate flow.
func (c *LinkCodec) Validate(token string, expected Purpose) (string, error) {
	claims := &linkClaims{}
	if err := parseInto(token, c.secret, claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	if claims.Purpose != expected {
		return "", ErrPurposeMismatch
	}
	return claims.Subject, nil
}

// SessionCodec mints and validates the longer-lived bearer credential
// used on ordinary authenticated requests. Sessions are stateless:
// nothing server-side tracks them and there is no revocation list, a
// token stays valid until its expiry.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionCodec(s Secrets, ttl time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(s.Session), ttl: ttl}
}

// Issue signs a session token for subject and returns it with its expiry.
func (c *SessionCodec) Issue(subject string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.ttl)
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(c.secret)
	return s, exp, err
}

// Validate checks signature then expiry and returns the subject claim.
func (c *SessionCodec) Validate(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := parseInto(token, c.secret, claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func parseInto(token string, secret []byte, claims jwt.Claims) error {
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !tkn.Valid {
		return ErrTokenInvalid
	}
	return nil
}
