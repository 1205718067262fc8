package auth

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/lesezeit/lesezeit/internal/api/models"
	"github.com/lesezeit/lesezeit/internal/config"
	"github.com/lesezeit/lesezeit/internal/database"
)

// Session keys.
const (
	SessionUserID    = "user_id"
	SessionUserEmail = "user_email"
	SessionReturnTo  = "return_to"
)

// ContextUserKey is the gin context key holding the current *models.User.
const ContextUserKey = "user"

func getSessionString(session sessions.Session, key string) string {
	if val := session.Get(key); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// SessionUser returns the identity stored in the session, or nil. Admin
// status is not kept in the session; it is derived from the current config.
func SessionUser(session sessions.Session, cfg *config.Config) *models.User {
	id, ok := session.Get(SessionUserID).(uint)
	if !ok || id == 0 {
		return nil
	}
	email := getSessionString(session, SessionUserEmail)
	return &models.User{
		ID:      id,
		Email:   email,
		IsAdmin: cfg.IsAdminEmail(email),
	}
}

// CurrentUser returns the user loaded by LoadUser, or nil for anonymous visitors.
func CurrentUser(c *gin.Context) *models.User {
	if val, ok := c.Get(ContextUserKey); ok {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

// startSession stores the identity of user in the session. Any previous
// session data is dropped.
func startSession(session sessions.Session, user *database.User) {
	session.Clear()
	session.Set(SessionUserID, user.ID)
	session.Set(SessionUserEmail, user.Email)
}

// SetReturnTo remembers where to send the visitor after logging in.
func SetReturnTo(session sessions.Session, path string) {
	if IsSafeReturnPath(path) {
		session.Set(SessionReturnTo, path)
	}
}

// popReturnTo returns and clears the remembered path, defaulting to "/".
func popReturnTo(session sessions.Session) string {
	path := getSessionString(session, SessionReturnTo)
	session.Delete(SessionReturnTo)
	if !IsSafeReturnPath(path) {
		return "/"
	}
	return path
}

// IsSafeReturnPath reports whether path is a relative path on this site.
func IsSafeReturnPath(path string) bool {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return false
	}
	return !strings.ContainsAny(path, "\r\n")
}

// AddFlash queues a one-time message for the next page.
func AddFlash(session sessions.Session, msg string) {
	session.AddFlash(msg)
}

// PopFlash returns the first queued message. Callers must save the session.
func PopFlash(session sessions.Session) string {
	for _, f := range session.Flashes() {
		if msg, ok := f.(string); ok {
			return msg
		}
	}
	return ""
}
