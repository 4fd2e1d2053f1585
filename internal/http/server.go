package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/example/helpdesk/internal/auth"
	"github.com/example/helpdesk/internal/models"
	"github.com/example/helpdesk/internal/service"
	"github.com/example/helpdesk/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Options tune the server's outer surface.
type Options struct {
	CORSOrigins  []string
	SecureCookie bool
}

// Server wraps the gin engine and collaborators needed to handle UI and API requests.
type Server struct {
	Engine   *gin.Engine
	helpdesk *service.HelpdeskService
	sessions *session.Manager
	tokens   *auth.TokenIssuer
	hub      *SummaryHub
	opts     Options
}

// NewServer constructs a new server and registers routes. The summary hub is
// subscribed to ticket changes so admin dashboards refresh live.
func NewServer(helpdesk *service.HelpdeskService, sessions *session.Manager, tokens *auth.TokenIssuer, opts Options) *Server {
	router := gin.Default()
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")))

	srv := &Server{
		Engine:   router,
		helpdesk: helpdesk,
		sessions: sessions,
		tokens:   tokens,
		hub:      NewSummaryHub(helpdesk.Summarize),
		opts:     opts,
	}
	helpdesk.OnTicketsChanged(srv.hub.Broadcast)
	srv.registerRoutes()
	return srv
}

var templateFuncs = template.FuncMap{
	"statusLabel": func(s models.TicketStatus) string {
		if s == models.TicketStatusNew {
			return "—"
		}
		return string(s)
	},
}

func (s *Server) registerRoutes() {
	s.Engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	ui := s.Engine.Group("/", s.loadPageSession())
	ui.GET("/", s.home)
	ui.GET("/register", s.registerPage)
	ui.POST("/register", s.register)
	ui.GET("/login", s.loginPage)
	ui.POST("/login", s.login)
	ui.GET("/admin/login", s.adminLoginPage)
	ui.POST("/admin/login", s.adminLogin)
	ui.POST("/logout", s.logout)

	dash := ui.Group("/dashboard", s.requirePageLogin())
	dash.GET("", s.dashboard)
	dash.POST("/tickets", s.submitTicket)
	dash.POST("/save", s.requireAdmin(), s.saveChanges)

	api := s.Engine.Group("/api")
	if len(s.opts.CORSOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}
	api.POST("/register", s.apiRegister)
	api.POST("/login", s.apiLogin)
	api.POST("/admin/login", s.apiAdminLogin)

	authed := api.Group("", s.requireAPISession())
	authed.POST("/logout", s.apiLogout)
	authed.GET("/tickets", s.apiListTickets)
	authed.POST("/tickets", s.apiSubmitTicket)
	authed.GET("/summary", s.apiSummary)

	admin := authed.Group("", s.requireAdmin())
	admin.PATCH("/tickets/:id", s.apiUpdateStatus)
	admin.PUT("/tickets", s.apiSaveChanges)
	admin.GET("/ws/summary", s.hub.Handle)
}
