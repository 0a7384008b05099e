package reservation

import (
	"context"
	"net/http"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/httpx"
	"github.com/FleetDesk/FleetDesk/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

const (
	dateLayout   = "2006-01-02"
	storeTimeout = 5 * time.Second
)

// Handler exposes the reservation API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the reservation endpoints. The admin listing gets
// the supplied role guard.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.POST("/reservations", h.create)
	rg.GET("/reservations/mine", h.listMine)
	rg.GET("/reservations/:id", h.get)
	rg.POST("/reservations/:id/cancel", h.cancel)
	rg.GET("/vehicles/:id/availability", h.availability)

	rg.GET("/reservations", adminOnly, h.listAll)
}

type createRequest struct {
	VehicleID         string `json:"vehicle_id" binding:"required"`
	StartDate         string `json:"start_date" binding:"required"`
	EndDate           string `json:"end_date" binding:"required"`
	KilometersDriven  int64  `json:"kilometers_driven"`
	ReportedIncidents string `json:"reported_incidents"`
}

func (h *Handler) create(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	res, err := h.svc.Create(ctx, p.UserID, CreateInput{
		VehicleID:         req.VehicleID,
		StartDate:         start,
		EndDate:           end,
		KilometersDriven:  req.KilometersDriven,
		ReportedIncidents: req.ReportedIncidents,
	})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) get(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	res, err := h.svc.GetByID(ctx, c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if !p.IsAdmin() && res.UserID != p.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "reservation belongs to another user"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) cancel(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	res, err := h.svc.Cancel(ctx, c.Param("id"), p.UserID, p.IsAdmin())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) listMine(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		httpx.Unauthorized(c)
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	views, err := h.svc.ListMine(ctx, p.UserID)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "count": len(views)})
}

func (h *Handler) listAll(c *gin.Context) {
	page, size := httpx.PageParams(c)

	ctx, cancel := boundedCtx(c)
	defer cancel()

	views, total, err := h.svc.ListAll(ctx, (page-1)*size, size)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "total": total})
}

func (h *Handler) availability(c *gin.Context) {
	start, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	ctx, cancel := boundedCtx(c)
	defer cancel()

	available, err := h.svc.IsAvailable(ctx, c.Param("id"), start, end)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": c.Param("id"), "available": available})
}

func boundedCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), storeTimeout)
}
