package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/store"
)

type addWishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// GET /api/wishlist
func GetWishlist(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/wishlist"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		items, err := st.ListWishlist(c.Request.Context(), userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// POST /api/wishlist
func AddToWishlist(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/wishlist"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		var req addWishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		if _, err := st.GetProduct(c.Request.Context(), productID); err != nil {
			notFoundOr(c, route, err, "product")
			return
		}

		item, err := st.AddWishlistItem(c.Request.Context(), &models.WishlistItem{
			UserID:    userID,
			ProductID: productID,
			CreatedAt: time.Now(),
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) || errors.Is(err, store.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, "product already in wishlist")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] user %s wishlisted product %s", route, userID.Hex(), productID.Hex())
		c.JSON(http.StatusCreated, item)
	}
}

// DELETE /api/wishlist/:productId
func RemoveFromWishlist(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/wishlist/:productId"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		productID, ok := parseObjectID(c, route, "productId")
		if !ok {
			return
		}

		if err := st.RemoveWishlistItem(c.Request.Context(), userID, productID); err != nil {
			notFoundOr(c, route, err, "wishlist item")
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": true})
	}
}
