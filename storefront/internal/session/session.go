// Package session tracks the signed-in user and mirrors it to storage so a
// restart keeps the user signed in.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ecommerce-storefront/storefront/internal/gateway"
	"ecommerce-storefront/storefront/internal/storage"
)

var ErrRemoteLogout = errors.New("server sign-out failed")

// Remote revokes a token on the server.
type Remote interface {
	Logout(ctx context.Context, token string) error
}

type Holder struct {
	store  storage.Store
	remote Remote
	now    func() time.Time

	mu      sync.RWMutex
	current *gateway.Session
}

func NewHolder(store storage.Store, remote Remote) *Holder {
	return &Holder{store: store, remote: remote, now: time.Now}
}

func (h *Holder) valid(s *gateway.Session) bool {
	if s.Token == "" || s.User.ID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || s.ExpiresAt.After(h.now())
}

// Load restores the mirrored session. A malformed or expired mirror is
// deleted and the holder starts signed out.
func (h *Holder) Load(ctx context.Context) error {
	var stored gateway.Session
	err := storage.LoadJSON(ctx, h.store, storage.SessionKey, &stored)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = nil

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		log.Printf("Session: discarding unreadable session mirror: %v", err)
		return h.store.Delete(ctx, storage.SessionKey)
	case !h.valid(&stored):
		log.Printf("Session: discarding invalid or expired session for %q", stored.User.Email)
		return h.store.Delete(ctx, storage.SessionKey)
	}
	h.current = &stored
	return nil
}

// Login replaces the current session and persists it.
func (h *Holder) Login(ctx context.Context, s *gateway.Session) error {
	if s == nil || !h.valid(s) {
		return errors.New("session: refusing to store an incomplete session")
	}
	if err := storage.SaveJSON(ctx, h.store, storage.SessionKey, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	h.mu.Lock()
	copied := *s
	h.current = &copied
	h.mu.Unlock()
	return nil
}

// UpdateUser refreshes the stored user record, e.g. after its profile was
// re-fetched.
func (h *Holder) UpdateUser(ctx context.Context, u gateway.User) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil
	}
	updated := *h.current
	updated.User = u
	if err := storage.SaveJSON(ctx, h.store, storage.SessionKey, &updated); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	h.current = &updated
	return nil
}

// Logout asks the server to revoke the token and then always clears the
// local session. A failed server call is reported as ErrRemoteLogout after
// the local state is gone.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	current := h.current
	h.current = nil
	h.mu.Unlock()

	var remoteErr error
	if current != nil {
		if err := h.remote.Logout(ctx, current.Token); err != nil {
			log.Printf("Session: server sign-out for %s failed: %v", current.User.Email, err)
			remoteErr = fmt.Errorf("%w: %w", ErrRemoteLogout, err)
		}
	}

	if err := h.store.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return remoteErr
}

// Current returns a copy of the signed-in user, or nil.
func (h *Holder) Current() *gateway.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil
	}
	u := h.current.User
	return &u
}

func (h *Holder) IsLoggedIn() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current != nil
}

func (h *Holder) IsAdmin() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current != nil && h.current.User.Profile != nil && h.current.User.Profile.IsAdmin
}

func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return ""
	}
	return h.current.Token
}
