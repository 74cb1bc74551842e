package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/store"
)

type validateCouponRequest struct {
	Code      string  `json:"code" binding:"required"`
	CartTotal float64 `json:"cartTotal" binding:"required,gt=0"`
}

type createCouponRequest struct {
	Code            string     `json:"code" binding:"required,min=3,max=32"`
	Name            string     `json:"name" binding:"required"`
	Description     string     `json:"description"`
	Type            string     `json:"type" binding:"required,oneof=percentage fixed"`
	Value           float64    `json:"value" binding:"required,gt=0"`
	MinimumAmount   float64    `json:"minimumAmount" binding:"gte=0"`
	MaximumDiscount *float64   `json:"maximumDiscount" binding:"omitempty,gt=0"`
	UsageLimit      *int       `json:"usageLimit" binding:"omitempty,gt=0"`
	ValidFrom       *time.Time `json:"validFrom"`
	ValidUntil      *time.Time `json:"validUntil"`
}

// POST /api/coupons/validate
func ValidateCoupon(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/coupons/validate"
		defer handlePanic(c, route)

		var req validateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		coupon, err := st.GetCouponByCode(c.Request.Context(), req.Code)
		if err != nil {
			notFoundOr(c, route, err, "coupon")
			return
		}

		valid, reason := checkout.ValidateCoupon(coupon, req.CartTotal, time.Now())
		if !valid {
			c.JSON(http.StatusOK, gin.H{"valid": false, "reason": reason})
			return
		}

		discount := checkout.CouponDiscount(coupon, req.CartTotal)
		c.JSON(http.StatusOK, gin.H{
			"valid":    true,
			"coupon":   coupon,
			"discount": discount,
			"total":    req.CartTotal - discount,
		})
	}
}

// POST /api/admin/coupons
func CreateCoupon(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/coupons"
		defer handlePanic(c, route)

		var req createCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		if req.Type == models.CouponPercentage && req.Value > 100 {
			respondWithError(c, http.StatusBadRequest, route, "percentage value cannot exceed 100")
			return
		}

		coupon := &models.Coupon{
			Code:            req.Code,
			Name:            req.Name,
			Description:     req.Description,
			Type:            req.Type,
			Value:           req.Value,
			MinimumAmount:   req.MinimumAmount,
			MaximumDiscount: req.MaximumDiscount,
			UsageLimit:      req.UsageLimit,
			IsActive:        true,
			ValidFrom:       time.Now(),
			ValidUntil:      req.ValidUntil,
		}
		if req.ValidFrom != nil {
			coupon.ValidFrom = *req.ValidFrom
		}

		if err := st.CreateCoupon(c.Request.Context(), coupon); err != nil {
			if mongo.IsDuplicateKeyError(err) || errors.Is(err, store.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, "coupon code already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] created coupon %s", route, coupon.Code)
		c.JSON(http.StatusCreated, coupon)
	}
}
