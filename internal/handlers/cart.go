package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GET /api/cart
func GetCart(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		sessionID := resolveSessionID(c)
		items, err := st.ListCartItems(c.Request.Context(), sessionID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var total float64
		for _, item := range items {
			total += item.Product.Price * float64(item.Quantity)
		}

		c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
	}
}

// POST /api/cart
func AddToCart(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart"
		defer handlePanic(c, route)

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		// The product must exist before a line can reference it.
		if _, err := st.GetProduct(c.Request.Context(), productID); err != nil {
			notFoundOr(c, route, err, "product")
			return
		}

		sessionID := resolveSessionID(c)
		item, err := st.AddCartItem(c.Request.Context(), &models.CartItem{
			ProductID: productID,
			Quantity:  req.Quantity,
			SessionID: sessionID,
			CreatedAt: time.Now(),
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] session %s added product %s x%d", route, sessionID, productID.Hex(), req.Quantity)
		c.JSON(http.StatusCreated, item)
	}
}

// PATCH /api/cart/:id
func UpdateCartItem(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/cart/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		sessionID := resolveSessionID(c)
		existing, err := st.GetCartItem(c.Request.Context(), id)
		if err != nil {
			notFoundOr(c, route, err, "cart item")
			return
		}
		if existing.SessionID != sessionID {
			respondWithError(c, http.StatusNotFound, route, "cart item not found")
			return
		}

		// Quantity zero or below removes the line.
		if req.Quantity <= 0 {
			if err := st.RemoveCartItem(c.Request.Context(), id); err != nil {
				notFoundOr(c, route, err, "cart item")
				return
			}
			c.JSON(http.StatusOK, gin.H{"removed": true})
			return
		}

		item, err := st.UpdateCartItem(c.Request.Context(), id, req.Quantity)
		if err != nil {
			notFoundOr(c, route, err, "cart item")
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /api/cart/:id
func RemoveFromCart(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		sessionID := resolveSessionID(c)
		existing, err := st.GetCartItem(c.Request.Context(), id)
		if err != nil {
			notFoundOr(c, route, err, "cart item")
			return
		}
		if existing.SessionID != sessionID {
			respondWithError(c, http.StatusNotFound, route, "cart item not found")
			return
		}

		if err := st.RemoveCartItem(c.Request.Context(), id); err != nil {
			notFoundOr(c, route, err, "cart item")
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": true})
	}
}

// DELETE /api/cart
func ClearCart(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart"
		defer handlePanic(c, route)

		sessionID := resolveSessionID(c)
		if err := st.ClearCart(c.Request.Context(), sessionID); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] cleared session %s", route, sessionID)
		c.JSON(http.StatusOK, gin.H{"cleared": true})
	}
}
