package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kochimetro/induction-engine/internal/platform/caller"
)

func signToken(t *testing.T, secret, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuth_RequireAuth_ValidTokenAttachesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret"
	auth := NewAuth(secret, testLogger(t))

	var captured caller.Identity
	r := gin.New()
	r.Use(auth.RequireAuth())
	r.GET("/x", func(c *gin.Context) {
		id, _ := caller.FromContext(c.Request.Context())
		captured = id
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, "op-1", "admin"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.ID != "op-1" || captured.Role != caller.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", captured)
	}
}

func TestAuth_RequireAuth_MissingTokenIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuth("test-secret", testLogger(t))

	r := gin.New()
	r.Use(auth.RequireAuth())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_RequireAuth_WrongSecretIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuth("test-secret", testLogger(t))

	r := gin.New()
	r.Use(auth.RequireAuth())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "op-1", "admin"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_RequireAuth_UnknownRoleDowngradesToReader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret"
	auth := NewAuth(secret, testLogger(t))

	var captured caller.Identity
	r := gin.New()
	r.Use(auth.RequireAuth())
	r.GET("/x", func(c *gin.Context) {
		id, _ := caller.FromContext(c.Request.Context())
		captured = id
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, "op-2", "intern"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if captured.Role != caller.RoleReader {
		t.Fatalf("expected unknown role to downgrade to READER, got %s", captured.Role)
	}
}
