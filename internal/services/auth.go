package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/user"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	domainuser "github.com/yungbote/bytesolver-backend/internal/domain/user"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

const (
	MinPasswordLength = 6
	maxNameLength     = 100
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type ProfileInput struct {
	Name        *string         `json:"name"`
	Avatar      *string         `json:"avatar"`
	Preferences json.RawMessage `json:"preferences"`
}

// AuthResult is the payload of every sign-in style endpoint.
type AuthResult struct {
	User        *types.User `json:"user"`
	AccessToken string      `json:"accessToken"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, credential string) (*AuthResult, error)
	// Authenticate resolves a bearer token to its user. Errors are
	// *apierr.Error values carrying one of the four 401 codes.
	Authenticate(ctx context.Context, token string) (*types.User, error)
	Me(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, in ProfileInput) (*types.User, error)
	ChangePassword(ctx context.Context, current, next string) error
}

type authService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	tokens   TokenService
	google   GoogleVerifier
	now      Clock
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, tokens TokenService, google GoogleVerifier) AuthService {
	return &authService{
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		tokens:   tokens,
		google:   google,
		now:      systemClock,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := user.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apierr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if name == "" {
		return nil, apierr.Validation("Name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, apierr.Validation("Name is too long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)
	now := as.now().UTC()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &hashStr,
		Name:         name,
		Role:         domainuser.RoleStudent,
		Preferences:  datatypes.JSON([]byte(`{}`)),
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := as.userRepo.Create(dbctx.New(ctx), u)
	if errors.Is(err, pkgerrors.ErrConflict) {
		return nil, apierr.Conflict("An account with this email already exists")
	}
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", created.ID)
	return as.issue(created)
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apierr.Validation("Email and password are required")
	}
	dbc := dbctx.New(ctx)
	u, err := as.userRepo.GetByEmail(dbc, email)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if !u.HasPassword() {
		return nil, apierr.Unauthorized("INVALID_CREDENTIALS", "This account uses Google sign-in. Continue with Google instead.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	as.touchLogin(dbc, u)
	return as.issue(u)
}

func (as *authService) LoginWithGoogle(ctx context.Context, credential string) (*AuthResult, error) {
	if as.google == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "GOOGLE_AUTH_UNAVAILABLE", errors.New("Google sign-in is not configured"))
	}
	if strings.TrimSpace(credential) == "" {
		return nil, apierr.Validation("credential is required")
	}
	id, err := as.google.Verify(ctx, credential)
	if err != nil {
		as.log.Warn("Google token rejected", "error", err)
		return nil, apierr.Unauthorized("INVALID_TOKEN", "Invalid Google credential")
	}
	email := user.NormalizeEmail(id.Email)
	if email == "" || !id.EmailVerified {
		return nil, apierr.Unauthorized("INVALID_TOKEN", "Google account email is not verified")
	}

	dbc := dbctx.New(ctx)
	u, err := as.userRepo.GetByGoogleID(dbc, id.Subject)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		u, err = as.userRepo.GetByEmail(dbc, email)
	}
	switch {
	case err == nil:
		updates := map[string]any{}
		if u.GoogleID == nil || *u.GoogleID != id.Subject {
			updates["google_id"] = id.Subject
		}
		if u.Avatar == "" && id.Picture != "" {
			updates["avatar"] = id.Picture
			u.Avatar = id.Picture
		}
		if len(updates) > 0 {
			if err := as.userRepo.UpdateFields(dbc, u.ID, updates); err != nil {
				return nil, err
			}
			sub := id.Subject
			u.GoogleID = &sub
		}
		as.touchLogin(dbc, u)
		return as.issue(u)
	case errors.Is(err, pkgerrors.ErrNotFound):
	default:
		return nil, err
	}

	name := id.Name
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	sub := id.Subject
	now := as.now().UTC()
	created, err := as.userRepo.Create(dbc, &types.User{
		ID:          uuid.New(),
		Email:       email,
		Name:        truncateRunes(name, maxNameLength),
		Avatar:      id.Picture,
		Role:        domainuser.RoleStudent,
		GoogleID:    &sub,
		Preferences: datatypes.JSON([]byte(`{}`)),
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered via Google", "user_id", created.ID)
	return as.issue(created)
}

func (as *authService) Authenticate(ctx context.Context, token string) (*types.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierr.Unauthorized("AUTH_REQUIRED", "Authentication required")
	}
	userID, err := as.tokens.Parse(token)
	if errors.Is(err, ErrTokenExpired) {
		return nil, apierr.Unauthorized("TOKEN_EXPIRED", "Token expired")
	}
	if err != nil {
		return nil, apierr.Unauthorized("INVALID_TOKEN", "Invalid token")
	}
	u, err := as.userRepo.GetByID(dbctx.New(ctx), userID)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, apierr.Unauthorized("USER_NOT_FOUND", "User not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (as *authService) Me(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := as.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (as *authService) UpdateProfile(ctx context.Context, in ProfileInput) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len([]rune(name)) > maxNameLength {
			return nil, apierr.Validation("Name must be between 1 and 100 characters")
		}
		updates["name"] = name
	}
	if in.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*in.Avatar)
	}
	if len(in.Preferences) > 0 && string(in.Preferences) != "null" {
		var obj map[string]any
		if err := json.Unmarshal(in.Preferences, &obj); err != nil {
			return nil, apierr.Validation("preferences must be an object")
		}
		updates["preferences"] = datatypes.JSON(in.Preferences)
	}
	dbc := dbctx.New(ctx)
	if len(updates) > 0 {
		if err := as.userRepo.UpdateFields(dbc, userID, updates); err != nil {
			return nil, notFound(err, "User")
		}
	}
	u, err := as.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (as *authService) ChangePassword(ctx context.Context, current, next string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if len(next) < MinPasswordLength {
		return apierr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	dbc := dbctx.New(ctx)
	u, err := as.userRepo.GetByID(dbc, userID)
	if err != nil {
		return notFound(err, "User")
	}
	// Google-only accounts may set a first password without a current one.
	if u.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(current)); err != nil {
			return apierr.Unauthorized("INVALID_CREDENTIALS", "Current password is incorrect")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return as.userRepo.UpdateFields(dbc, userID, map[string]any{"password_hash": string(hash)})
}

func (as *authService) issue(u *types.User) (*AuthResult, error) {
	token, err := as.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int64(as.tokens.TTL() / time.Second),
	}, nil
}

func (as *authService) touchLogin(dbc dbctx.Context, u *types.User) {
	now := as.now().UTC()
	if err := as.userRepo.UpdateFields(dbc, u.ID, map[string]any{"last_login_at": now}); err != nil {
		as.log.Warn("Failed to record login time", "user_id", u.ID, "error", err)
		return
	}
	u.LastLoginAt = &now
}

func invalidCredentials() error {
	return apierr.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
}

func validateEmail(email string) error {
	if email == "" {
		return apierr.Validation("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return apierr.Validation("Email is invalid")
	}
	return nil
}
