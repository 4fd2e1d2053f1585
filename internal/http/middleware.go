package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/helpdesk/internal/session"
)

const (
	sessionCookie = "helpdesk_session"
	ctxSession    = "session"
)

func currentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// loadPageSession resolves the session cookie, if any. Stale cookies are cleared.
func (s *Server) loadPageSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			c.Next()
			return
		}
		sess, err := s.sessions.Get(c.Request.Context(), id)
		if err != nil {
			s.clearSessionCookie(c)
			c.Next()
			return
		}
		c.Set(ctxSession, sess)
		c.Next()
	}
}

func (s *Server) requirePageLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c) == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireAPISession authenticates API calls from a bearer token, a token query
// parameter (websocket clients) or the UI session cookie.
func (s *Server) requireAPISession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessionID string
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString != "" {
			claims, err := s.tokens.Parse(tokenString)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			sessionID = claims.SessionID
		} else if id, err := c.Cookie(sessionCookie); err == nil {
			sessionID = id
		}
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}
		sess, err := s.sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		c.Set(ctxSession, sess)
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentSession(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func (s *Server) setSessionCookie(c *gin.Context, sess *session.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, int(s.sessions.TTL().Seconds()), "/", "", s.opts.SecureCookie, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.opts.SecureCookie, true)
}
