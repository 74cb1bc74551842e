package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/store"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.Hex(),
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(config.AppEnv.AccessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppEnv.JWTSecret))
}

// POST /api/auth/register
func Register(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "internal server error")
			return
		}

		user := &models.User{
			Username:     strings.TrimSpace(req.Username),
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: string(hash),
			Role:         "user",
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

		token, err := issueToken(user)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "internal server error")
			return
		}

		log.Printf("[%s] registered user %s", route, user.Username)
		c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
	}
}

// POST /api/auth/login
func Login(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}

		user, err := st.GetUserByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := issueToken(user)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "internal server error")
			return
		}

		log.Printf("[%s] user %s logged in", route, user.Username)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

// GET /api/auth/me
func Me(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/me"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "authentication required")
			return
		}

		user, err := st.GetUser(c.Request.Context(), userID)
		if err != nil {
			notFoundOr(c, route, err, "user")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
