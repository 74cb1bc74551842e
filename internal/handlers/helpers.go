package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/checkout"
	"storefront/internal/store"
)

// SessionHeader carries the guest cart session id. The server generates one on
// first use and echoes it back so the client can persist it.
const SessionHeader = "X-Session-Id"

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondBindError turns a gin binding failure into a 400 with per-field
// messages when the failure came from validation tags.
func respondBindError(c *gin.Context, route string, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerCamel(fe.Field())] = "failed on " + fe.Tag()
		}
		log.Printf("[%s] validation failed: %v", route, fields)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	respondWithError(c, http.StatusBadRequest, route, "invalid request body")
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func parseObjectID(c *gin.Context, route, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid "+param)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUserID returns the authenticated user's id from the gin context.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get("userId")
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == "admin"
}

// resolveSessionID picks the cart session for a request: logged-in shoppers
// get the deterministic user key, guests get the id from the session header.
// A guest without one is issued a fresh id, echoed back in the response.
func resolveSessionID(c *gin.Context) string {
	if userID, ok := currentUserID(c); ok {
		return checkout.SessionKeyFor(userID)
	}
	if sid := strings.TrimSpace(c.GetHeader(SessionHeader)); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	c.Header(SessionHeader, sid)
	return sid
}

func parsePaginationParams(pageStr, limitStr string) (int, int, error) {
	page := 1
	limit := 20

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, errors.New("invalid page")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > 100 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = l
	}

	return page, limit, nil
}

// paginate slices items for the requested page. Callers pass the full listing;
// the result is the page plus the total count for the pagination envelope.
func paginate[T any](items []T, page, limit int) ([]T, int) {
	total := len(items)
	start := (page - 1) * limit
	if start >= total {
		return []T{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], total
}

// notFoundOr maps store.ErrNotFound to a 404 and everything else to a 500.
func notFoundOr(c *gin.Context, route string, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, route, what+" not found")
		return
	}
	respondWithError(c, http.StatusInternalServerError, route, "db error")
}
