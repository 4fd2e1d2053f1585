package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/example/helpdesk/internal/models"
	"github.com/example/helpdesk/internal/service"
)

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) apiRegister(c *gin.Context) {
	var payload credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.helpdesk.Register(c.Request.Context(), payload.Username, payload.Password)
	if errors.Is(err, service.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.apiError(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) apiLogin(c *gin.Context) {
	s.apiAuthenticate(c, s.helpdesk.Login)
}

func (s *Server) apiAdminLogin(c *gin.Context) {
	s.apiAuthenticate(c, s.helpdesk.LoginAdmin)
}

func (s *Server) apiAuthenticate(c *gin.Context, login func(ctx context.Context, username, password string) (*models.User, error)) {
	var payload credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := login(c.Request.Context(), payload.Username, payload.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.apiError(c, "login", err)
		return
	}
	sess, err := s.sessions.Create(c.Request.Context(), user)
	if err != nil {
		s.apiError(c, "create session", err)
		return
	}
	token, err := s.tokens.Issue(sess)
	if err != nil {
		s.apiError(c, "issue token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": sess.ExpiresAt.UTC().Format(time.RFC3339),
		"user":      user,
	})
}

func (s *Server) apiLogout(c *gin.Context) {
	if err := s.sessions.Destroy(c.Request.Context(), currentSession(c).ID); err != nil {
		s.apiError(c, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ownerFilter limits non-admin callers to their own tickets.
func ownerFilter(c *gin.Context) *uint {
	sess := currentSession(c)
	if sess.IsAdmin() {
		return nil
	}
	return &sess.UserID
}

func (s *Server) apiListTickets(c *gin.Context) {
	tickets, err := s.helpdesk.ListTickets(c.Request.Context(), ownerFilter(c))
	if err != nil {
		s.apiError(c, "list tickets", err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (s *Server) apiSubmitTicket(c *gin.Context) {
	sess := currentSession(c)
	if sess.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admins cannot submit tickets"})
		return
	}
	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, err := s.helpdesk.SubmitTicket(c.Request.Context(), payload.Title, payload.Description, payload.Priority, sess.UserID)
	if errors.Is(err, models.ErrInvalidPriority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.apiError(c, "submit ticket", err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (s *Server) apiUpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var payload struct {
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	err = s.helpdesk.UpdateStatus(c.Request.Context(), uint(id), *payload.Status)
	if errors.Is(err, models.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.apiError(c, "update status", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) apiSaveChanges(c *gin.Context) {
	var edits []service.TicketEdit
	if err := c.ShouldBindJSON(&edits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.helpdesk.SaveChanges(c.Request.Context(), edits)
	if errors.Is(err, models.ErrInvalidStatus) || errors.Is(err, models.ErrInvalidPriority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.apiError(c, "save changes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (s *Server) apiSummary(c *gin.Context) {
	summary, err := s.helpdesk.Summarize(c.Request.Context(), ownerFilter(c))
	if err != nil {
		s.apiError(c, "summarize", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) apiError(c *gin.Context, op string, err error) {
	log.Printf("%s: %+v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
