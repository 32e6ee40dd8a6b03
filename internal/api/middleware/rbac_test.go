package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/freelancehub/auth-service/internal/core/domain"
)

func runRequireRole(t *testing.T, role string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := RequireRole(allowed...)(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestRequireRole_Allowed(t *testing.T) {
	rec := runRequireRole(t, domain.RoleClient, domain.RoleClient, domain.RoleFreelancer)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	rec := runRequireRole(t, "admin", domain.RoleClient, domain.RoleFreelancer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_MissingRole(t *testing.T) {
	rec := runRequireRole(t, "", domain.RoleClient)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when no role is set, got %d", rec.Code)
	}
}
