package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

const (
	// SessionCookie holds the admin session token. It has no Expires, so the
	// browser drops it when it closes.
	SessionCookie = "verse_admin_session"

	// ContextKeySession is the gin context key of a validated session token.
	ContextKeySession = "admin_session"
)

// SessionValidator reports whether a token belongs to a live admin session.
type SessionValidator interface {
	Authorized(token string) bool
}

// SessionCookies writes and clears the admin session cookie.
type SessionCookies struct {
	// Secure restricts the cookie to HTTPS.
	Secure bool
}

// Set issues token as an HttpOnly, SameSite=Lax session cookie.
func (s SessionCookies) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, 0, "/", "", s.Secure, true)
}

// Clear expires the session cookie.
func (s SessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.Secure, true)
}

// SessionToken returns the raw cookie value, or "".
func SessionToken(c *gin.Context) string {
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}

	return token
}

// LoggedIn reports whether c carries a valid session.
func LoggedIn(c *gin.Context, v SessionValidator) bool {
	if c.GetString(ContextKeySession) != "" {
		return true
	}

	token := SessionToken(c)
	if token == "" || !v.Authorized(token) {
		return false
	}

	c.Set(ContextKeySession, token)

	return true
}

// RequireSession rejects API calls without a valid session with 401 and the
// login-required message.
func RequireSession(v SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !LoggedIn(c, v) {
			dto.HandleError(c, domain.NewUnauthorizedError(domain.MsgLoginRequired))
			return
		}

		c.Next()
	}
}

// RequireSessionPage redirects page requests without a valid session to loginPath.
func RequireSessionPage(v SessionValidator, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !LoggedIn(c, v) {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()

			return
		}

		c.Next()
	}
}
