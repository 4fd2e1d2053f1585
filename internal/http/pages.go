package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/example/helpdesk/internal/models"
	"github.com/example/helpdesk/internal/service"
	"github.com/example/helpdesk/internal/session"
)

// submitPriorities are the labels offered on the submission form.
var submitPriorities = []string{"Low", "Mid", "High"}

type pageData struct {
	Title      string
	Menu       []MenuItem
	Session    *session.Session
	Success    string
	Error      string
	Username   string
	Tickets    []models.Ticket
	Closed     []models.Ticket
	Summary    models.Summary
	Statuses   []models.TicketStatus
	Priorities []models.TicketPriority
	SubmitOpts []string
}

func (s *Server) render(c *gin.Context, status int, name, active string, data pageData) {
	data.Session = currentSession(c)
	data.Menu = menuFor(data.Session, active)
	c.HTML(status, name, data)
}

func (s *Server) home(c *gin.Context) {
	if currentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	s.render(c, http.StatusOK, "home.tmpl", "/", pageData{Title: "Home"})
}

func (s *Server) registerPage(c *gin.Context) {
	s.render(c, http.StatusOK, "register.tmpl", "/register", pageData{Title: "Register"})
}

func (s *Server) register(c *gin.Context) {
	username, password := c.PostForm("username"), c.PostForm("password")
	_, err := s.helpdesk.Register(c.Request.Context(), username, password)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		s.render(c, http.StatusConflict, "register.tmpl", "/register", pageData{
			Title: "Register", Username: username, Error: "Username already exists. Try a different one.",
		})
	case err != nil:
		s.serverError(c, "register", err)
	default:
		s.render(c, http.StatusOK, "register.tmpl", "/register", pageData{
			Title: "Register", Success: "Registration successful! You can now log in.",
		})
	}
}

func (s *Server) loginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "login.tmpl", "/login", pageData{Title: "User Login"})
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	user, err := s.helpdesk.Login(c.Request.Context(), username, c.PostForm("password"))
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		s.render(c, http.StatusUnauthorized, "login.tmpl", "/login", pageData{
			Title: "User Login", Username: username, Error: "Invalid credentials. Please try again.",
		})
	case err != nil:
		s.serverError(c, "login", err)
	default:
		s.startPageSession(c, user)
	}
}

func (s *Server) adminLoginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "admin_login.tmpl", "/admin/login", pageData{Title: "Admin Login"})
}

func (s *Server) adminLogin(c *gin.Context) {
	username := c.PostForm("username")
	user, err := s.helpdesk.LoginAdmin(c.Request.Context(), username, c.PostForm("password"))
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		s.render(c, http.StatusUnauthorized, "admin_login.tmpl", "/admin/login", pageData{
			Title: "Admin Login", Username: username, Error: "Invalid admin credentials.",
		})
	case err != nil:
		s.serverError(c, "admin login", err)
	default:
		s.startPageSession(c, user)
	}
}

func (s *Server) startPageSession(c *gin.Context, user *models.User) {
	// Replace any session the browser already holds.
	if old := currentSession(c); old != nil {
		_ = s.sessions.Destroy(c.Request.Context(), old.ID)
	}
	sess, err := s.sessions.Create(c.Request.Context(), user)
	if err != nil {
		s.serverError(c, "create session", err)
		return
	}
	s.setSessionCookie(c, sess)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) logout(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		if err := s.sessions.Destroy(c.Request.Context(), sess.ID); err != nil {
			log.Printf("destroy session: %v", err)
		}
	}
	s.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) dashboard(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()
	data := pageData{Title: "Dashboard"}

	var owner *uint
	name := "admin_dashboard.tmpl"
	if !sess.IsAdmin() {
		owner = &sess.UserID
		name = "user_dashboard.tmpl"
		data.SubmitOpts = submitPriorities
		if c.Query("submitted") != "" {
			data.Success = "Ticket submitted successfully!"
		}
	} else if n := c.Query("saved"); n != "" {
		data.Success = "Saved changes to " + n + " ticket(s)."
	}

	tickets, err := s.helpdesk.ListTickets(ctx, owner)
	if err != nil {
		s.serverError(c, "list tickets", err)
		return
	}
	data.Tickets = tickets
	data.Summary = models.Summarize(tickets)
	if sess.IsAdmin() {
		data.Statuses = models.TicketStatuses
		data.Priorities = models.TicketPriorities
		for _, t := range tickets {
			if t.Status == models.TicketStatusClosed {
				data.Closed = append(data.Closed, t)
			}
		}
	}
	s.render(c, http.StatusOK, name, "/dashboard", data)
}

func (s *Server) submitTicket(c *gin.Context) {
	sess := currentSession(c)
	if sess.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admins cannot submit tickets"})
		return
	}
	_, err := s.helpdesk.SubmitTicket(c.Request.Context(), c.PostForm("title"), c.PostForm("description"), c.PostForm("priority"), sess.UserID)
	if errors.Is(err, models.ErrInvalidPriority) {
		s.render(c, http.StatusBadRequest, "user_dashboard.tmpl", "/dashboard", pageData{
			Title: "Dashboard", Error: err.Error(), SubmitOpts: submitPriorities,
		})
		return
	}
	if err != nil {
		s.serverError(c, "submit ticket", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard?submitted=1")
}

// saveChanges reads the admin grid as parallel id/status/priority form arrays.
func (s *Server) saveChanges(c *gin.Context) {
	ids := c.PostFormArray("id")
	statuses := c.PostFormArray("status")
	priorities := c.PostFormArray("priority")
	if len(statuses) != len(ids) || len(priorities) != len(ids) {
		c.String(http.StatusBadRequest, "malformed grid")
		return
	}
	edits := make([]service.TicketEdit, 0, len(ids))
	for i, raw := range ids {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.String(http.StatusBadRequest, "invalid id %q", raw)
			return
		}
		edits = append(edits, service.TicketEdit{ID: uint(id), Status: statuses[i], Priority: priorities[i]})
	}
	n, err := s.helpdesk.SaveChanges(c.Request.Context(), edits)
	if errors.Is(err, models.ErrInvalidStatus) || errors.Is(err, models.ErrInvalidPriority) {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.serverError(c, "save changes", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard?saved="+strconv.Itoa(n))
}

func (s *Server) serverError(c *gin.Context, op string, err error) {
	log.Printf("%s: %+v", op, err)
	c.String(http.StatusInternalServerError, "internal error")
}
