package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const DefaultTokenTTL = 7 * 24 * time.Hour

type JWTClaims struct {
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(userID uuid.UUID) (string, error)
	// Parse returns ErrTokenExpired or ErrTokenInvalid on failure.
	Parse(token string) (uuid.UUID, error)
	TTL() time.Duration
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    Clock
}

func NewTokenService(secret string, ttl time.Duration) (TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &tokenService{secret: []byte(secret), ttl: ttl, now: systemClock}, nil
}

func (ts *tokenService) TTL() time.Duration { return ts.ttl }

func (ts *tokenService) Issue(userID uuid.UUID) (string, error) {
	now := ts.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

func (ts *tokenService) Parse(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, ErrTokenInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	return userID, nil
}
