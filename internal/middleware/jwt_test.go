package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleCustomer, 15)
	require.NoError(t, err)

	rec := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, JWTAuth(testSecret), "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A token signed with a different secret is rejected.
	other, err := utils.NewAccessToken("other-secret", 42, model.RoleCustomer, 15)
	require.NoError(t, err)
	rec = doRequest(t, JWTAuth(testSecret), "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExposesClaims(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleAdmin, 15)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		assert.Equal(t, uint64(42), UserID(c))
		assert.Equal(t, model.RoleAdmin, Role(c))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserIDUnauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, uint64(0), UserID(c))
	assert.Equal(t, "", Role(c))
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	run := func(role any) int {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if role != nil {
			c.Set("role", role)
		}
		rec := c.Response().Writer.(*httptest.ResponseRecorder)
		require.NoError(t, RequireRole(model.RoleAdmin)(next)(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, run(model.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, run(nil))
}
