package api

import (
	"net/http"

	"pharmacy-storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	h.setSessionCookie(c, sess.Token)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Registration successful!",
		"user":     sess.User,
		"redirect": h.path("/home"),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.svc.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	name := sess.User.FirstName
	if name == "" {
		name = sess.User.Username
	}

	h.setSessionCookie(c, sess.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome back, " + name + "!",
		"user":    sess.User,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.Security.SessionCookie); err == nil {
		if err := h.svc.Auth.Logout(c.Request.Context(), token); err != nil {
			h.respondError(c, err, "")
			return
		}
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message":  "You have been logged out.",
		"redirect": h.path("/home"),
	})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}
