package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doWithRole(t *testing.T, mw echo.MiddlewareFunc, role interface{}) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	mw := RequireRole("CLIENT", "OPERATOR")
	rec := doWithRole(t, mw, "CLIENT")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	mw := RequireRole("OPERATOR")
	rec := doWithRole(t, mw, "CLIENT")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	mw := RequireRole("CLIENT")
	rec := doWithRole(t, mw, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsNonStringRole(t *testing.T) {
	mw := RequireRole("CLIENT")
	rec := doWithRole(t, mw, 7)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
