package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GET /api/orders
func GetUserOrders(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		orders, err := st.ListOrdersByUser(c.Request.Context(), userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:id
func GetOrder(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		order, err := st.GetOrder(c.Request.Context(), id)
		if err != nil {
			notFoundOr(c, route, err, "order")
			return
		}

		// Only the owner or an admin may read an order.
		if order.UserID != userID && !isAdmin(c) {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		items, err := st.ListOrderItems(c.Request.Context(), id)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
	}
}

// GET /api/admin/orders
func AdminListOrders(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		orders, err := st.ListOrders(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		pageStr, limitStr := c.Query("page"), c.Query("limit")
		if pageStr != "" || limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			pageItems, total := paginate(orders, page, limit)
			c.JSON(http.StatusOK, gin.H{
				"data": pageItems,
				"pagination": gin.H{
					"page":  page,
					"limit": limit,
					"total": total,
				},
			})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// PATCH /api/admin/orders/:id/status
func UpdateOrderStatus(st store.Store, publisher events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		order, err := st.UpdateOrderStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			notFoundOr(c, route, err, "order")
			return
		}

		// Publishing is best effort; the status change already landed.
		if err := publisher.PublishOrderStatusChanged(c.Request.Context(), order); err != nil {
			log.Printf("[%s] failed to publish status change for order %s: %v", route, id.Hex(), err)
		}

		log.Printf("[%s] order %s moved to %s", route, id.Hex(), req.Status)
		c.JSON(http.StatusOK, order)
	}
}

// DELETE /api/admin/orders/:id
func DeleteOrder(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/orders/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		if err := st.DeleteOrder(c.Request.Context(), id); err != nil {
			notFoundOr(c, route, err, "order")
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true, "deletedAt": time.Now()})
	}
}
