package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "target ID", humanizeParam("targetId"))
	assert.Equal(t, "requester ID", humanizeParam("requesterId"))
	assert.Equal(t, "slug", humanizeParam("slug"))
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=-1&offset=-2", 20, 0},
		{"?limit=1000", 100, 0},
		{"?limit=abc", 20, 0},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, tt.wantLimit, got.Limit, "query %q", tt.query)
		assert.Equal(t, tt.wantOffset, got.Offset, "query %q", tt.query)
	}
}

func TestAuthRequired(t *testing.T) {
	_, app, db := newTestServer(t)
	user := createTestUser(t, db, "authed", false)

	makeToken := func(claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(testJWTSecret))
		require.NoError(t, err)
		return signed
	}

	base := jwt.MapClaims{
		"sub": "1",
		"iss": "ripple-api",
		"aud": "ripple-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	t.Run("valid token", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/users/me", tokenFor(t, user.ID))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("missing token", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/users/me", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/users/me", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := jwt.MapClaims{}
		for k, v := range base {
			claims[k] = v
		}
		claims["iss"] = "someone-else"
		resp := doRequest(t, app, http.MethodGet, "/api/users/me", makeToken(claims))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := jwt.MapClaims{}
		for k, v := range base {
			claims[k] = v
		}
		claims["aud"] = "other-client"
		resp := doRequest(t, app, http.MethodGet, "/api/users/me", makeToken(claims))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwt.MapClaims{}
		for k, v := range base {
			claims[k] = v
		}
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		resp := doRequest(t, app, http.MethodGet, "/api/users/me", makeToken(claims))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
