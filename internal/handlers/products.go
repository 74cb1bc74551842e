package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/store"
)

// GET /api/products
func GetProducts(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit category=%s subcategory=%s search=%s",
			route,
			c.Query("category"),
			c.Query("subcategory"),
			c.Query("search"),
		)

		filter := store.ProductFilter{
			Category:    strings.TrimSpace(c.Query("category")),
			Subcategory: strings.TrimSpace(c.Query("subcategory")),
			Search:      strings.TrimSpace(c.Query("search")),
		}

		products, err := st.ListProducts(c.Request.Context(), filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Pagination applies only when the client asks for it.
		pageStr, limitStr := c.Query("page"), c.Query("limit")
		if pageStr != "" || limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			pageItems, total := paginate(products, page, limit)
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

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

// GET /api/products/:id
func GetProduct(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		product, err := st.GetProduct(c.Request.Context(), id)
		if err != nil {
			notFoundOr(c, route, err, "product")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
