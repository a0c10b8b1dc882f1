package httpserver

import (
	"net/http"

	"socialshop/internal/auth"
	"socialshop/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *handlers) currentOrder(c *gin.Context) {
	current := h.session(c).Store.CurrentOrder()
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no order to confirm"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": current})
}

// dismissCurrentOrder is "continue shopping" on the confirmation screen.
func (h *handlers) dismissCurrentOrder(c *gin.Context) {
	h.session(c).Store.SetCurrentOrder(nil)
	c.Status(http.StatusNoContent)
}

func (h *handlers) listOrders(c *gin.Context) {
	buyerID, _ := auth.ProfileID(c.Request.Context())
	orders, err := h.deps.Orders.ListOrders(c.Request.Context(), buyerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.OrderHeader{}
	}
	c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
}

func (h *handlers) getOrder(c *gin.Context) {
	buyerID, _ := auth.ProfileID(c.Request.Context())
	o, err := h.deps.Orders.GetOrder(c.Request.Context(), buyerID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
