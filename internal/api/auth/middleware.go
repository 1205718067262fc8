package auth

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/config"
	"github.com/lesezeit/lesezeit/internal/gravatar"
	"github.com/lesezeit/lesezeit/web/templates/pages"
)

// MsgLoginRequired is flashed on the login page after a redirect from a
// protected page.
const MsgLoginRequired = "Please log in to continue."

// LoadUser puts the session identity, if any, into the gin context.
func LoadUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := SessionUser(sessions.Default(c), cfg); user != nil {
			user.AvatarURL = gravatar.URL(user.Email, cfg.Avatars)
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}
}

// RequireAuth only lets logged in users through.
func RequireAuth() gin.HandlerFunc {
	return require(RequireAuthenticated)
}

// RequireAdmin only lets the admin through.
func RequireAdmin() gin.HandlerFunc {
	return require(RequireAdminRole)
}

func require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		switch Decide(user, req) {
		case Allow:
			c.Next()
		case RedirectToLogin:
			session := sessions.Default(c)
			SetReturnTo(session, c.Request.URL.RequestURI())
			AddFlash(session, MsgLoginRequired)
			if err := session.Save(); err != nil {
				log.Error("Failed to save session", "error", err)
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		case Forbid:
			ferr := apperr.Forbidden()
			c.Header("Content-Type", "text/html; charset=utf-8")
			c.Status(ferr.Kind.Status())
			if err := pages.Error(user, ferr.Kind.Status(), apperr.MessageOf(ferr)).Render(c.Request.Context(), c.Writer); err != nil {
				log.Error("Failed to render forbidden page", "error", err)
			}
			c.Abort()
		}
	}
}
