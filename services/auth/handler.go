package auth

import (
	"net/http"

	"retailops-dashboard/internal/session"
	"retailops-dashboard/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc      *Service
	sessions *session.Store
}

func NewHandler(svc *Service, sessions *session.Store) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func RegisterRoutes(engine *gin.Engine, h *Handler, store *session.Store) {
	grp := engine.Group("/api/auth")
	grp.POST("/login", h.Login)
	grp.POST("/register", h.Register)
	grp.POST("/logout", h.Logout)
	grp.GET("/me", session.Required(store), h.Me)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), user.ID, user.Username)
	if err != nil {
		_ = c.Error(errutil.Internal("failed to create session", errutil.WithErr(err)))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), token, h.sessions.MaxAge(), "/", "", h.sessions.Secure(), true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"id": user.ID, "username": user.Username},
	})
}

func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.sessions.CookieName()); err == nil && token != "" {
		_ = h.sessions.Delete(c.Request.Context(), token)
	}
	c.SetCookie(h.sessions.CookieName(), "", -1, "/", "", h.sessions.Secure(), true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Me(c *gin.Context) {
	sess := session.FromContext(c)
	c.JSON(http.StatusOK, gin.H{"id": sess.UserID, "username": sess.Username})
}
