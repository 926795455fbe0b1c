// README: Tests for bearer auth middleware and role guards.
package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cabcab/internal/http/middleware"
	"cabcab/internal/infra"
	"cabcab/internal/types"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	identity *infra.Identity
	err      error
}

func (s *stubVerifier) Verify(_ string) (*infra.Identity, error) {
	return s.identity, s.err
}

func newTestRouter(verifier infra.TokenVerifier, requiredType string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("", middleware.Auth(verifier))
	if requiredType != "" {
		group.Use(middleware.RequireType(requiredType))
	}
	group.GET("/test", func(c *gin.Context) {
		caller := middleware.Caller(c)
		c.JSON(http.StatusOK, gin.H{"user_id": caller.UserID, "user_type": caller.UserType})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{identity: &infra.Identity{UserID: "u1"}}, "")
	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthInvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(&stubVerifier{identity: &infra.Identity{UserID: "u1"}}, "")
	if w := doGet(r, "Token sometoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthVerifierError(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: errors.New("bad token")}, "")
	if w := doGet(r, "Bearer invalidtoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthValidTokenPopulatesIdentity(t *testing.T) {
	userID := types.NewID()
	r := newTestRouter(&stubVerifier{identity: &infra.Identity{UserID: userID, UserType: infra.UserTypeDriver}}, "")
	w := doGet(r, "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, string(userID)) {
		t.Errorf("expected user id %s in body, got %s", userID, body)
	}
	if !strings.Contains(body, infra.UserTypeDriver) {
		t.Errorf("expected user type driver in body, got %s", body)
	}
}

func TestRequireTypeRejectsOtherRoles(t *testing.T) {
	verifier := &stubVerifier{identity: &infra.Identity{UserID: "u1", UserType: infra.UserTypePassenger}}
	r := newTestRouter(verifier, infra.UserTypeDriver)
	if w := doGet(r, "Bearer validtoken"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRequireTypeAdmitsMatchingRole(t *testing.T) {
	verifier := &stubVerifier{identity: &infra.Identity{UserID: "u1", UserType: infra.UserTypeDriver}}
	r := newTestRouter(verifier, infra.UserTypeDriver)
	if w := doGet(r, "Bearer validtoken"); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
