package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/store"
)

type createCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	ParentID string `json:"parentId"`
}

// GET /api/categories
func GetCategories(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories"
		defer handlePanic(c, route)

		categories, err := st.ListCategories(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /api/categories/:slug
func GetCategoryBySlug(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories/:slug"
		defer handlePanic(c, route)

		category, err := st.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			notFoundOr(c, route, err, "category")
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// POST /api/admin/categories
func CreateCategory(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/categories"
		defer handlePanic(c, route)

		var req createCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		category := &models.Category{
			Name: strings.TrimSpace(req.Name),
			Slug: strings.ToLower(strings.TrimSpace(req.Slug)),
		}
		if req.ParentID != "" {
			parentID, err := primitive.ObjectIDFromHex(req.ParentID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid parentId")
				return
			}
			category.ParentID = &parentID
		}

		if err := st.CreateCategory(c.Request.Context(), category); err != nil {
			if mongo.IsDuplicateKeyError(err) || errors.Is(err, store.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, "slug already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] created category %s", route, category.Slug)
		c.JSON(http.StatusCreated, category)
	}
}

// DELETE /api/admin/categories/:id
func DeleteCategory(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/categories/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		if err := st.DeleteCategory(c.Request.Context(), id); err != nil {
			notFoundOr(c, route, err, "category")
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true, "deletedAt": time.Now()})
	}
}
