package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/store"
)

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	Subcategory string  `json:"subcategory"`
	ImageURL    string  `json:"imageUrl"`
	Inventory   *int    `json:"inventory" binding:"omitempty,gte=0"`
}

// updateProductRequest uses pointers so absent fields are left untouched.
// Inventory is raw JSON because an explicit null (stop tracking stock) must be
// distinguishable from the field being absent.
type updateProductRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Price       *float64        `json:"price" binding:"omitempty,gt=0"`
	Category    *string         `json:"category"`
	Subcategory *string         `json:"subcategory"`
	ImageURL    *string         `json:"imageUrl"`
	InStock     *bool           `json:"inStock"`
	Inventory   json.RawMessage `json:"inventory" binding:"-"`
}

// POST /api/admin/products
func CreateProduct(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products"
		defer handlePanic(c, route)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		now := time.Now()
		product := &models.Product{
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Price:       req.Price,
			Category:    strings.TrimSpace(req.Category),
			Subcategory: strings.TrimSpace(req.Subcategory),
			ImageURL:    req.ImageURL,
			Inventory:   req.Inventory,
			InStock:     req.Inventory == nil || *req.Inventory > 0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := st.CreateProduct(c.Request.Context(), product); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] created product %s", route, product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

// PATCH /api/admin/products/:id
func UpdateProduct(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		upd := store.ProductUpdate{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			Subcategory: req.Subcategory,
			ImageURL:    req.ImageURL,
			InStock:     req.InStock,
		}
		if len(req.Inventory) > 0 {
			if bytes.Equal(bytes.TrimSpace(req.Inventory), []byte("null")) {
				var untracked *int
				upd.Inventory = &untracked
			} else {
				var qty int
				if err := json.Unmarshal(req.Inventory, &qty); err != nil || qty < 0 {
					respondWithError(c, http.StatusBadRequest, route, "invalid inventory")
					return
				}
				tracked := &qty
				upd.Inventory = &tracked
			}
		}

		product, err := st.UpdateProduct(c.Request.Context(), id, upd)
		if err != nil {
			notFoundOr(c, route, err, "product")
			return
		}

		log.Printf("[%s] updated product %s", route, id.Hex())
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /api/admin/products/:id
func DeleteProduct(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		if err := st.DeleteProduct(c.Request.Context(), id); err != nil {
			notFoundOr(c, route, err, "product")
			return
		}

		log.Printf("[%s] deleted product %s", route, id.Hex())
		c.JSON(http.StatusOK, gin.H{"deleted": true, "deletedAt": time.Now()})
	}
}
