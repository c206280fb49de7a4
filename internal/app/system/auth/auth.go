// Package auth owns the session lifecycle: turning a verified credential
// into a cookie session, and resolving that session back into a typed
// principal on every request.
//
// Sessions are persisted server-side through a SessionBackend. The cookie
// never carries account data: it holds only the opaque session ID the
// backend issued, signed by gorilla/securecookie. On each request the ID is
// resolved to a `{account_id, role}` record and the principal re-fetched
// from the identity store, so logout and deleted accounts take effect
// immediately even against a replayed cookie. Resolution failures of any
// kind degrade to "unauthenticated" rather than faulting the request.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

const sessionIDKey = "session_id"

// SessionUser is the resolved principal injected into r.Context().
type SessionUser struct {
	ID   string
	Name string
	Role string
}

// AccountFetcher loads a fresh principal for the given role and account ID.
// Implementations return nil when the account does not exist or can no
// longer log in; the session is then treated as unauthenticated.
type AccountFetcher interface {
	FetchAccount(ctx context.Context, role, accountID string) *SessionUser
}

// SessionBackend persists sessions server-side. Create issues an opaque ID
// bound to exactly one {accountID, role} pair; Lookup resolves it; Delete
// invalidates it so every cookie carrying the ID stops resolving.
type SessionBackend interface {
	Create(ctx context.Context, accountID, role string) (string, error)
	Lookup(ctx context.Context, sessionID string) (accountID, role string, ok bool)
	Delete(ctx context.Context, sessionID string) error
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager wraps the cookie store and the middleware that resolves
// sessions into principals.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher AccountFetcher
	backend SessionBackend
}

// NewSessionManager builds a SessionManager backed by a signed cookie store.
// The secure flag controls Secure + SameSite handling: production uses
// Secure cookies with SameSite=None, local dev uses Lax over plain HTTP.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetAccountFetcher wires the identity-store lookup used by LoadSessionUser.
func (sm *SessionManager) SetAccountFetcher(f AccountFetcher) {
	sm.fetcher = f
}

// SetSessionBackend wires the server-side session store.
func (sm *SessionManager) SetSessionBackend(b SessionBackend) {
	sm.backend = b
}

// GetSession returns the request's session, or a fresh one alongside the
// decode error if the cookie is damaged.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// CreateSession persists a server-side session for the principal and puts
// its opaque ID in the cookie. Only the account ID and role are persisted;
// everything else is re-fetched per request.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	if sm.backend == nil {
		return fmt.Errorf("no session backend configured")
	}

	sess, err := sm.GetSession(r)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			sm.log.Warn("session cookie invalid, using fresh session",
				zap.Error(err), zap.String("account_id", u.ID))
		} else {
			sm.log.Error("session store error during login, using fresh session",
				zap.Error(err), zap.String("account_id", u.ID))
		}
	}

	id, err := sm.backend.Create(r.Context(), u.ID, u.Role)
	if err != nil {
		return fmt.Errorf("create session record: %w", err)
	}
	sess.Values[sessionIDKey] = id

	return sess.Save(r, w)
}

// ClearSession deletes the server-side session record and the cookie, so a
// replayed copy of the cookie no longer resolves. The deletion cookie must
// match the store's original options or browsers will keep the old one.
func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during logout", zap.Error(err))
	}

	if id := getString(sess, sessionIDKey); id != "" && sm.backend != nil {
		if err := sm.backend.Delete(r.Context(), id); err != nil {
			sm.log.Warn("session record delete failed", zap.Error(err))
		}
	}

	if opts := sm.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1

	return sess.Save(r, w)
}

// CurrentUser returns the resolved principal and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser resolves the session into a principal and injects it into
// the request context. Every failure mode (damaged cookie, unknown role,
// account deleted mid-session) leaves the request unauthenticated and lets
// it continue; role gates downstream decide whether that is fatal.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
				sm.log.Debug("undecodable session cookie, treating as unauthenticated")
			}
			next.ServeHTTP(w, r)
			return
		}

		id := getString(sess, sessionIDKey)
		if id == "" || sm.backend == nil || sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		accountID, role, ok := sm.backend.Lookup(r.Context(), id)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if u := sm.fetcher.FetchAccount(r.Context(), role, accountID); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a resolved principal with a 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpjson.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only principals whose role is in the given set.
// No principal → 401; wrong role → 403. The two failure modes stay distinct
// so clients can tell "log in" apart from "not yours".
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				httpjson.Error(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser injects a principal directly, bypassing session middleware.
// Test helper only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
