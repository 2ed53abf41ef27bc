package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier checks Google ID tokens against clientID.
func NewGoogleVerifier(clientID string) (GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	return &googleVerifier{clientID: clientID, validate: idtoken.Validate}, nil
}

func (g *googleVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	payload, err := g.validate(ctx, credential, g.clientID)
	if err != nil {
		return nil, err
	}
	switch payload.Issuer {
	case "accounts.google.com", "https://accounts.google.com":
	default:
		return nil, fmt.Errorf("unexpected issuer %q", payload.Issuer)
	}
	return &GoogleIdentity{
		Subject:       payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		Name:          claimString(payload.Claims, "name"),
		Picture:       claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}
