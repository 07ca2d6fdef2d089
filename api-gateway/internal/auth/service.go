// Package auth handles accounts and bearer tokens for the gateway: bcrypt
// password hashes and profiles in Mongo, HS256 tokens, and a Redis
// denylist for signed-out tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid sign-up details")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const minPasswordLength = 6

type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserView is the user as returned to clients.
type UserView struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Profile *Profile `json:"profile,omitempty"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

type Service struct {
	users       UserStore
	tokens      *TokenIssuer
	denylist    Denylist
	adminEmails map[string]bool
	bcryptCost  int
}

// NewService wires the auth service. Accounts signing up with an email in
// adminEmails get an admin profile.
func NewService(users UserStore, tokens *TokenIssuer, denylist Denylist, adminEmails []string) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		denylist:    denylist,
		adminEmails: admins,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email address is not valid", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	profile := &Profile{UserID: user.ID.Hex(), IsAdmin: s.adminEmails[email]}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		log.Printf("Auth: failed to create profile for user %s: %v", user.ID.Hex(), err)
		profile = nil
	}

	return s.newSession(user, profile)
}

// Login checks the password and issues a token. A failed profile lookup
// does not fail the login; the session simply carries no profile.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.users.GetProfile(ctx, user.ID.Hex())
	if err != nil {
		log.Printf("Auth: profile lookup failed for user %s: %v", user.ID.Hex(), err)
		profile = nil
	}

	return s.newSession(user, profile)
}

func (s *Service) newSession(user *User, profile *Profile) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      UserView{ID: user.ID.Hex(), Email: user.Email, Profile: profile},
	}, nil
}

// Authenticate verifies a bearer token and rejects signed-out ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token has been signed out", ErrInvalidToken)
	}
	return claims, nil
}

func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &UserView{ID: user.ID.Hex(), Email: user.Email}
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("Auth: profile lookup failed for user %s: %v", userID, err)
		return view, nil
	}
	view.Profile = profile
	return view, nil
}

func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	return profile.IsAdmin, nil
}
