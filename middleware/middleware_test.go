package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(auth *services.AuthService, skipVerify bool) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth(auth, skipVerify), func(c *fiber.Ctx) error {
		return c.SendString(ClaimsFrom(c).UserID)
	})
	return app
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	auth := services.NewAuthService(nil, services.NewMemorySessionStore(), "secret")
	token, _, err := auth.IssueToken(&models.User{ID: "guest_42", Role: models.RoleLawyer, IsGuest: true})
	require.NoError(t, err)

	for _, skip := range []bool{true, false} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := newAuthApp(auth, skip).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "guest_42", readBody(t, resp))
	}
}

func TestRequireAuthRejectsWhenVerifying(t *testing.T) {
	auth := services.NewAuthService(nil, services.NewMemorySessionStore(), "secret")
	app := newAuthApp(auth, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthSkipVerifyAdmitsAnonymous(t *testing.T) {
	auth := services.NewAuthService(nil, services.NewMemorySessionStore(), "secret")
	app := newAuthApp(auth, true)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, AnonymousUserID, readBody(t, resp))
}

func TestRateLimitReturns429(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(shared.NewKeyedRateLimiter(2)))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
