package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/checkout"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, total := paginate(items, 1, 2)
	if total != 5 || len(page) != 2 || page[0] != 1 {
		t.Fatalf("unexpected first page: %v total=%d", page, total)
	}

	page, _ = paginate(items, 3, 2)
	if len(page) != 1 || page[0] != 5 {
		t.Fatalf("unexpected last page: %v", page)
	}

	page, _ = paginate(items, 4, 2)
	if len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %v", page)
	}
}

func TestParsePaginationParamsRejectsBadInput(t *testing.T) {
	for _, tc := range [][2]string{{"0", "10"}, {"abc", "10"}, {"1", "0"}, {"1", "101"}} {
		if _, _, err := parsePaginationParams(tc[0], tc[1]); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", tc[0], tc[1])
		}
	}

	page, limit, err := parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("expected defaults, got page=%d limit=%d err=%v", page, limit, err)
	}
}

func TestResolveSessionIDPrefersAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/cart", nil)
	c.Request.Header.Set(SessionHeader, "guest-session")

	userID := primitive.NewObjectID()
	c.Set("userId", userID)

	if got := resolveSessionID(c); got != checkout.SessionKeyFor(userID) {
		t.Fatalf("expected user session key, got %q", got)
	}
}

func TestResolveSessionIDUsesHeaderForGuests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/cart", nil)
	c.Request.Header.Set(SessionHeader, "guest-session")

	if got := resolveSessionID(c); got != "guest-session" {
		t.Fatalf("expected header session, got %q", got)
	}
}

func TestResolveSessionIDIssuesFreshIDWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/api/cart", nil)

	got := resolveSessionID(c)
	if got == "" {
		t.Fatal("expected a generated session id")
	}
	if echoed := rec.Header().Get(SessionHeader); echoed != got {
		t.Fatalf("expected session id echoed in response header, got %q", echoed)
	}
}
