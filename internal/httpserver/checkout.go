package httpserver

import (
	"net/http"

	"socialshop/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getCheckout(c *gin.Context) {
	sess := h.session(c)
	c.JSON(http.StatusOK, buildCheckoutView(sess.Store, sess.Flow))
}

func (h *handlers) openCheckout(c *gin.Context) {
	sess := h.session(c)
	sess.Flow.Open()
	c.JSON(http.StatusOK, buildCheckoutView(sess.Store, sess.Flow))
}

func (h *handlers) closeCheckout(c *gin.Context) {
	sess := h.session(c)
	if err := sess.Flow.Close(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildCheckoutView(sess.Store, sess.Flow))
}

func (h *handlers) setShipping(c *gin.Context) {
	var addr domain.ShippingAddress
	if err := c.ShouldBindJSON(&addr); err != nil {
		badRequest(c, "invalid shipping address")
		return
	}
	sess := h.session(c)
	if err := sess.Flow.SetShipping(addr); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildCheckoutView(sess.Store, sess.Flow))
}

func (h *handlers) setPayment(c *gin.Context) {
	var pm domain.PaymentMethod
	if err := c.ShouldBindJSON(&pm); err != nil {
		badRequest(c, "invalid payment method")
		return
	}
	sess := h.session(c)
	if err := sess.Flow.SetPayment(pm); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildCheckoutView(sess.Store, sess.Flow))
}

func (h *handlers) continueCheckout(c *gin.Context) {
	sess := h.session(c)
	if _, err := sess.Flow.Continue(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildCheckoutView(sess.Store, sess.Flow))
}

func (h *handlers) backCheckout(c *gin.Context) {
	sess := h.session(c)
	sess.Flow.Back()
	c.JSON(http.StatusOK, buildCheckoutView(sess.Store, sess.Flow))
}

// placeOrder returns the confirmation snapshot. Failures surface the message
// the buyer sees and leave the flow on review for a retry.
func (h *handlers) placeOrder(c *gin.Context) {
	sess := h.session(c)
	placed, err := sess.Flow.PlaceOrder(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": placed})
}
