package vehicle

import (
	"context"
	"net/http"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/httpx"
	"github.com/FleetDesk/FleetDesk/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 5 * time.Second

// Handler exposes the vehicle API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the vehicle endpoints. Writes are admin-only;
// browsing is open to every authenticated user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.GET("/vehicles", h.listAvailable)
	rg.GET("/vehicles/:id", h.get)

	rg.GET("/vehicles/all", adminOnly, h.listAll)
	rg.POST("/vehicles", adminOnly, h.create)
	rg.PUT("/vehicles/:id", adminOnly, h.update)
	rg.PATCH("/vehicles/:id/status", adminOnly, h.setStatus)
	rg.GET("/vehicles/:id/can-delete", adminOnly, h.canDelete)
	rg.DELETE("/vehicles/:id", adminOnly, h.delete)
}

type vehicleRequest struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	Seats        int    `json:"seats"`
	RangeKm      int    `json:"range_km"`
	Color        string `json:"color"`
	ImageRef     string `json:"image_ref"`
	DealershipID string `json:"dealership_id" binding:"required"`
}

func (r *vehicleRequest) toInput() Input {
	return Input{
		LicensePlate: r.LicensePlate,
		Make:         r.Make,
		Model:        r.Model,
		Year:         r.Year,
		Seats:        r.Seats,
		RangeKm:      r.RangeKm,
		Color:        r.Color,
		ImageRef:     r.ImageRef,
		DealershipID: r.DealershipID,
	}
}

// listAvailable shows the reservable fleet. Employees with a home
// dealership see that dealership's vehicles; admins and unassigned users
// see everything.
func (h *Handler) listAvailable(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	dealershipID := c.Query("dealership_id")
	if dealershipID == "" && !p.IsAdmin() {
		dealershipID = p.DealershipID
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	vehicles, err := h.svc.ListAvailable(ctx, dealershipID)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles, "count": len(vehicles)})
}

func (h *Handler) listAll(c *gin.Context) {
	page, size := httpx.PageParams(c)

	ctx, cancel := boundedCtx(c)
	defer cancel()

	vehicles, total, err := h.svc.ListAll(ctx, (page-1)*size, size)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	ctx, cancel := boundedCtx(c)
	defer cancel()

	v, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) create(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	v, err := h.svc.Create(ctx, req.toInput())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) update(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	v, err := h.svc.Update(ctx, c.Param("id"), req.toInput())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	if err := h.svc.SetStatus(ctx, c.Param("id"), Status(req.Status)); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

func (h *Handler) canDelete(c *gin.Context) {
	ctx, cancel := boundedCtx(c)
	defer cancel()

	allowed, reason, err := h.svc.CanDelete(ctx, c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "deletable": allowed, "reason": reason})
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
