package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
)

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
	CouponCode      string `json:"couponCode"`
}

// POST /api/checkout
func Checkout(pipeline *checkout.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/checkout"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		order, err := pipeline.Checkout(c.Request.Context(), userID, req.ShippingAddress, req.CouponCode)
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrUnauthenticated):
				respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			case errors.Is(err, checkout.ErrInvalidAddress):
				respondWithError(c, http.StatusBadRequest, route, "shipping address is required")
			case errors.Is(err, checkout.ErrEmptyCart):
				respondWithError(c, http.StatusBadRequest, route, "cart is empty")
			case errors.Is(err, checkout.ErrInvalidCoupon):
				respondWithError(c, http.StatusBadRequest, route, err.Error())
			case errors.Is(err, checkout.ErrDuplicateCheckout):
				respondWithError(c, http.StatusConflict, route, "checkout already in progress")
			default:
				log.Printf("[%s] checkout failed for user %s: %v", route, userID.Hex(), err)
				respondWithError(c, http.StatusInternalServerError, route, "checkout failed")
			}
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}
