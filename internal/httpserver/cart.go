package httpserver

import (
	"net/http"

	cartstore "socialshop/internal/cart"
	cartsvc "socialshop/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) session(c *gin.Context) *cartsvc.Session {
	return h.deps.Sessions.Session(c.GetString(sessionCtxKey))
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).Store.State())
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "itemId required")
		return
	}
	key := c.GetString(sessionCtxKey)
	line, err := h.deps.Sessions.AddItem(c.Request.Context(), key, req.ItemID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"line": line, "cart": h.deps.Sessions.Session(key).Store.State()})
}

// updateCartItem sets a line quantity. Zero or less removes the line; an
// unknown line id is not an error.
func (h *handlers) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity required")
		return
	}
	h.editCart(c, func(store *cartstore.Store) {
		store.UpdateQuantity(c.Param("lineId"), *req.Quantity)
	})
}

func (h *handlers) removeCartItem(c *gin.Context) {
	h.editCart(c, func(store *cartstore.Store) {
		store.RemoveFromCart(c.Param("lineId"))
	})
}

func (h *handlers) clearCart(c *gin.Context) {
	h.editCart(c, func(store *cartstore.Store) {
		store.ClearCart()
	})
}

// editCart applies fn unless the session has an order in flight (409).
func (h *handlers) editCart(c *gin.Context, fn func(store *cartstore.Store)) {
	sess := h.session(c)
	if err := sess.Flow.EditCart(fn); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Store.State())
}

func (h *handlers) openCart(c *gin.Context) {
	store := h.session(c).Store
	store.OpenCart()
	c.JSON(http.StatusOK, store.State())
}

func (h *handlers) closeCart(c *gin.Context) {
	store := h.session(c).Store
	store.CloseCart()
	c.JSON(http.StatusOK, store.State())
}
