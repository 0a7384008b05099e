package dealership

import (
	"context"
	"net/http"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/httpx"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 5 * time.Second

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the dealership endpoints. Browsing is open to any
// authenticated user; writes are admin-only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.GET("/dealerships", h.list)
	rg.GET("/dealerships/:id", h.get)

	rg.POST("/dealerships", adminOnly, h.create)
	rg.PUT("/dealerships/:id", adminOnly, h.update)
	rg.DELETE("/dealerships/:id", adminOnly, h.delete)
}

type dealershipRequest struct {
	Name         string `json:"name" binding:"required"`
	City         string `json:"city"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
}

func (r *dealershipRequest) toInput() Input {
	return Input{
		Name:         r.Name,
		City:         r.City,
		Address:      r.Address,
		ContactPhone: r.ContactPhone,
	}
}

func (h *Handler) list(c *gin.Context) {
	ctx, cancel := boundedCtx(c)
	defer cancel()

	out, err := h.svc.List(ctx)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "count": len(out)})
}

func (h *Handler) get(c *gin.Context) {
	ctx, cancel := boundedCtx(c)
	defer cancel()

	d, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) create(c *gin.Context) {
	var req dealershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	d, err := h.svc.Create(ctx, req.toInput())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) update(c *gin.Context) {
	var req dealershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	d, err := h.svc.Update(ctx, c.Param("id"), req.toInput())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) delete(c *gin.Context) {
	ctx, cancel := boundedCtx(c)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

func boundedCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), storeTimeout)
}
