// Package httpserver is the HTTP surface of taskkeeper: form-encoded
// account and task routes answering with redirects or JSON.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

// Options configures the session cookie.
type Options struct {
	CookieSecure bool
}

type Server struct {
	address  string
	sessions Sessions
	users    Users
	tasks    Tasks
	exporter Exporter // nil when export is disabled
	health   HealthChecker
	opts     Options
	logger   logging.Logger
	engine   *gin.Engine
}

// NewServer builds the router. exporter may be nil.
func NewServer(address string, l logging.Logger, sessions Sessions, users Users, tasks Tasks, exporter Exporter, health HealthChecker, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		address:  address,
		sessions: sessions,
		users:    users,
		tasks:    tasks,
		exporter: exporter,
		health:   health,
		opts:     opts,
		logger:   l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.resolveIdentity(), s.requestLogger())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.GET("/", s.index)
	r.GET("/healthz", s.healthz)

	r.GET("/register", s.registerForm)
	r.POST("/register", s.register)
	r.GET("/login", s.loginForm)
	r.POST("/login", s.login)

	authed := r.Group("", requireSession())
	authed.GET("/logout", s.logout)

	authed.GET("/tasks", s.listTasks)
	authed.GET("/tasks/new", s.newTaskForm)
	authed.POST("/tasks/new", s.createTask)
	authed.GET("/tasks/export", s.exportTasks)
	authed.GET("/tasks/:id", s.getTask)
	authed.GET("/tasks/:id/edit", s.getTask)
	authed.POST("/tasks/:id/edit", s.editTask)
	authed.POST("/tasks/:id/delete", s.deleteTask)
	authed.POST("/tasks/:id/toggle", s.toggleTask)

	authed.GET("/api/tasks", s.apiTasks)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
