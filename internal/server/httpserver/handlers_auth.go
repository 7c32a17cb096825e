package httpserver

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type registerForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (s *Server) index(c *gin.Context) {
	if identityFrom(c).IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, "/tasks")
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.health.Check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) registerForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form":   "register",
		"action": "/register",
		"fields": []string{"username", "email", "password", "confirm_password"},
	})
}

func (s *Server) register(c *gin.Context) {
	var f registerForm
	if err := c.ShouldBind(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form"})
		return
	}

	_, err := s.users.Register(c.Request.Context(), services.Registration{
		Username:        f.Username,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) loginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form":   "login",
		"action": "/login",
		"fields": []string{"username", "password"},
	})
}

func (s *Server) login(c *gin.Context) {
	var f loginForm
	if err := c.ShouldBind(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form"})
		return
	}

	sess, err := s.sessions.Login(c.Request.Context(), f.Username, f.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	s.setSessionCookie(c, sess.Token, maxAge)
	c.Redirect(http.StatusSeeOther, "/tasks")
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(common.SessionCookieName); err == nil {
		s.sessions.Logout(c.Request.Context(), token)
	}
	s.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, value, maxAge, "/", "", s.opts.CookieSecure, true)
}
