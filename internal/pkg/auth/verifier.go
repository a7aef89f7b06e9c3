package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	repository "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

// Authentication errors. All of them refuse the connection or request
// outright; there is no partial admission.
var (
	ErrTokenMissing = errors.New("auth: token not provided")
	ErrTokenInvalid = errors.New("auth: token is invalid or expired")
	ErrUnknownUser  = errors.New("auth: user not found")
)

// Claims is the JWT payload issued by the account service.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Verifier checks bearer tokens and resolves them to stored users.
type Verifier struct {
	secret []byte
	users  repository.UserRepository
}

func NewVerifier(secret []byte, users repository.UserRepository) *Verifier {
	return &Verifier{secret: secret, users: users}
}

// NewVerifierFromEnv reads the signing secret from JWT_SECRET.
func NewVerifierFromEnv(users repository.UserRepository) (*Verifier, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("auth: JWT_SECRET environment variable is not set")
	}
	return NewVerifier([]byte(secret), users), nil
}

// Verify validates the token signature and expiry, then resolves the subject
// to a stored user projection. Any failure yields one of the auth errors.
func (v *Verifier) Verify(ctx context.Context, token string) (*repository.User, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	user, err := v.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Sign mints a token for the given user id. The REST account service is the
// normal issuer; this is used by tooling and tests.
func (v *Verifier) Sign(userID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
