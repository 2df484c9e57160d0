package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	var gotUserID, gotRole, gotAlunoID interface{}

	app := fiber.New()
	app.Get("/protegido", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		gotUserID = c.Locals("user_id")
		gotRole = c.Locals("user_role")
		gotAlunoID = c.Locals("aluno_id")
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
		"sub":      float64(7),
		"role":     "Admin",
		"aluno_id": "a1",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), gotUserID)
	require.Equal(t, "admin", gotRole, "roles are normalized to lower case")
	require.Equal(t, "a1", gotAlunoID)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/protegido", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protegido", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	app := fiber.New()
	app.Get("/protegido", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsWrongSignature(t *testing.T) {
	app := fiber.New()
	app.Get("/protegido", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": float64(7)})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
