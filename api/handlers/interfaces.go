package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Lister returns the interfaces a client may choose from
type Lister interface {
	List(ctx context.Context) []string
}

// InterfaceHandler serves the interface list
type InterfaceHandler struct {
	lister Lister
}

// NewInterfaceHandler creates a new interface handler
func NewInterfaceHandler(lister Lister) *InterfaceHandler {
	return &InterfaceHandler{lister: lister}
}

// GetInterfaces handles the GET /api/interfaces endpoint
// @Summary List selectable network interfaces
// @Description Returns "all" followed by the host's network interfaces, loopback excluded. Recomputed on every call.
// @Tags interfaces
// @Produce json
// @Success 200 {array} string "Interface names, first element is always all"
// @Router /api/interfaces [get]
func (h *InterfaceHandler) GetInterfaces(c *gin.Context) {
	c.JSON(http.StatusOK, h.lister.List(c.Request.Context()))
}
