package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/httpx"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 10 * time.Second

// Source produces the dashboard snapshot. *Repo implements it.
type Source interface {
	Dashboard(ctx context.Context, now time.Time) (*Dashboard, error)
}

type Handler struct {
	src Source
	now func() time.Time
}

func NewHandler(src Source) *Handler {
	return &Handler{src: src, now: time.Now}
}

// RegisterRoutes mounts the dashboard endpoint, admin-only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.GET("/stats/dashboard", adminOnly, h.dashboard)
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	d, err := h.src.Dashboard(ctx, h.now())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
