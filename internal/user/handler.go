package user

import (
	"context"
	"net/http"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/httpx"
	"github.com/FleetDesk/FleetDesk/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 5 * time.Second

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the account endpoints. Register and login must sit
// on the auth middleware's public path list.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)

	rg.GET("/users/me", h.me)
	rg.PUT("/users/me/preferences", h.setPreferences)

	rg.GET("/users", adminOnly, h.list)
	rg.GET("/users/:id", adminOnly, h.get)
	rg.PATCH("/users/:id/role", adminOnly, h.setRole)
}

type registerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Phone        string `json:"phone"`
	DealershipID string `json:"dealership_id"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	u, tok, err := h.svc.Register(ctx, RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		DealershipID: req.DealershipID,
	})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "token": tok})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	u, tok, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "token": tok})
}

func (h *Handler) me(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	u, err := h.svc.Get(ctx, p.UserID)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type preferencesRequest struct {
	Preferences string `json:"preferences"`
}

func (h *Handler) setPreferences(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	if err := h.svc.SetPreferences(ctx, p.UserID, req.Preferences); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.UserID, "preferences": req.Preferences})
}

func (h *Handler) list(c *gin.Context) {
	page, size := httpx.PageParams(c)

	ctx, cancel := boundedCtx(c)
	defer cancel()

	users, total, err := h.svc.List(ctx, (page-1)*size, size)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	ctx, cancel := boundedCtx(c)
	defer cancel()

	u, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) setRole(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	if err := h.svc.SetRole(ctx, p.UserID, c.Param("id"), req.Role); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "role": req.Role})
}

func boundedCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), storeTimeout)
}
