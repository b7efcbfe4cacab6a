package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const cookieIssuer = "gophtweeter"

// CookieStore keeps no server-side state: the token is an HS256-signed
// record of the user ID and its expiry. Destroy cannot revoke a token, so
// logout relies on the handler clearing the cookie.
type CookieStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCookieStore returns a CookieStore signing with secret.
func NewCookieStore(secret string, ttl time.Duration) (*CookieStore, error) {
	if secret == "" {
		return nil, errors.New("cookie session store requires a secret key")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CookieStore{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Create implements Store.
func (s *CookieStore) Create(_ context.Context, userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    cookieIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Lookup implements Store.
func (s *CookieStore) Lookup(_ context.Context, token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, ErrNoSession
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrNoSession
	}
	return userID, nil
}

// Destroy implements Store. Signed cookies cannot be revoked server-side.
func (s *CookieStore) Destroy(context.Context, string) error {
	return nil
}
