package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=200"`
	Comment string `json:"comment" binding:"max=2000"`
}

// GET /api/products/:id/reviews
func GetProductReviews(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id/reviews"
		defer handlePanic(c, route)

		productID, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		reviews, err := st.ListProductReviews(c.Request.Context(), productID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

// POST /api/products/:id/reviews
func CreateReview(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/reviews"
		defer handlePanic(c, route)

		productID, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		if _, err := st.GetProduct(c.Request.Context(), productID); err != nil {
			notFoundOr(c, route, err, "product")
			return
		}

		now := time.Now()
		review := &models.ProductReview{
			ProductID: productID,
			UserID:    userID,
			Rating:    req.Rating,
			Title:     strings.TrimSpace(req.Title),
			Comment:   strings.TrimSpace(req.Comment),
			Verified:  hasDeliveredProduct(c.Request.Context(), st, userID, productID),
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := st.CreateReview(c.Request.Context(), review); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] user %s reviewed product %s (%d stars)", route, userID.Hex(), productID.Hex(), req.Rating)
		c.JSON(http.StatusCreated, review)
	}
}

// hasDeliveredProduct reports whether the user has a delivered order that
// contains the product. Lookup failures count as unverified rather than
// blocking the review.
func hasDeliveredProduct(ctx context.Context, st store.Store, userID, productID primitive.ObjectID) bool {
	orders, err := st.ListOrdersByUser(ctx, userID)
	if err != nil {
		return false
	}
	for _, order := range orders {
		if order.Status != models.StatusDelivered {
			continue
		}
		items, err := st.ListOrderItems(ctx, order.ID)
		if err != nil {
			continue
		}
		for _, item := range items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}

// GET /api/reviews
func GetUserReviews(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		reviews, err := st.ListUserReviews(c.Request.Context(), userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

// POST /api/reviews/:id/helpful
func MarkReviewHelpful(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews/:id/helpful"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		review, err := st.IncrementReviewHelpful(c.Request.Context(), id)
		if err != nil {
			notFoundOr(c, route, err, "review")
			return
		}
		c.JSON(http.StatusOK, review)
	}
}
