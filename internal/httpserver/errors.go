package httpserver

import (
	"errors"
	"net/http"

	"socialshop/internal/checkout"
	"socialshop/internal/domain"
	"socialshop/internal/service/account"
	cartsvc "socialshop/internal/service/cart"
	"socialshop/internal/service/order"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to status codes. Anything unrecognised is
// a 500 and its text is not echoed to the client.
func writeError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "step": verr.Step, "fields": verr.Fields})
	case errors.Is(err, order.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in to place an order"})
	case errors.Is(err, account.ErrInvalidCredentials), errors.Is(err, account.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrSubmissionInFlight), errors.Is(err, checkout.ErrNotOnReview),
		errors.Is(err, cartsvc.ErrOutOfStock), errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, account.ErrInvalidInput), errors.Is(err, order.ErrMissingSubmissionID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, order.ErrOrderHeaderWriteFailed), errors.Is(err, order.ErrOrderLinesWriteFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
