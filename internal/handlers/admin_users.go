package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
	"storefront/internal/store"
)

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type updateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Role     *string `json:"role" binding:"omitempty,oneof=user admin"`
}

// POST /api/admin/users
func AdminCreateUser(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/users"
		defer handlePanic(c, route)

		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "internal server error")
			return
		}

		role := req.Role
		if role == "" {
			role = "user"
		}
		user := &models.User{
			Username:     strings.TrimSpace(req.Username),
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    time.Now(),
		}
		if err := st.CreateUser(c.Request.Context(), user); err != nil {
			if mongo.IsDuplicateKeyError(err) || errors.Is(err, store.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, "username or email already taken")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] created user %s with role %s", route, user.Username, role)
		c.JSON(http.StatusCreated, user)
	}
}

// GET /api/admin/users
func AdminListUsers(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		users, err := st.ListUsers(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// PATCH /api/admin/users/:id
func AdminUpdateUser(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/users/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		// Admins cannot change their own role through this route.
		if callerID, _ := currentUserID(c); callerID == id {
			respondWithError(c, http.StatusForbidden, route, "cannot modify own account")
			return
		}

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		upd := store.UserUpdate{
			Email: req.Email,
			Role:  req.Role,
		}
		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "internal server error")
				return
			}
			hashed := string(hash)
			upd.PasswordHash = &hashed
		}

		user, err := st.UpdateUser(c.Request.Context(), id, upd)
		if err != nil {
			notFoundOr(c, route, err, "user")
			return
		}

		log.Printf("[%s] updated user %s", route, id.Hex())
		c.JSON(http.StatusOK, user)
	}
}

// DELETE /api/admin/users/:id
func AdminDeleteUser(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/users/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c, route, "id")
		if !ok {
			return
		}

		if callerID, _ := currentUserID(c); callerID == id {
			respondWithError(c, http.StatusForbidden, route, "cannot delete own account")
			return
		}

		if err := st.DeleteUser(c.Request.Context(), id); err != nil {
			notFoundOr(c, route, err, "user")
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true, "deletedAt": time.Now()})
	}
}
