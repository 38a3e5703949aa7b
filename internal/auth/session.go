package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
)

// CookieName identifies the session cookie.
const CookieName = "qid"

// sessionUserKey is the session key holding the authenticated user id.
const sessionUserKey = "userID"

// NewSessionManager builds the server-side session manager backed by Redis.
// The cookie carries only the opaque session token.
func NewSessionManager(client *redis.Client, production bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = goredisstore.New(client)
	sm.Lifetime = 10 * 365 * 24 * time.Hour
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = production
	return sm
}

// LoginSession rotates the session token and stores the user id in it.
// Rotation on privilege change keeps old session ids worthless.
func LoginSession(ctx context.Context, sm *scs.SessionManager, userID int64) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, sessionUserKey, userID)
	return nil
}

// LogoutSession destroys the server-side session data.
func LogoutSession(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// SessionUserID reads the authenticated user id out of the session.
func SessionUserID(ctx context.Context, sm *scs.SessionManager) (int64, bool) {
	id := sm.GetInt64(ctx, sessionUserKey)
	return id, id != 0
}
