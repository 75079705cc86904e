package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopwise/config"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	signed, err := GenerateToken("64f1c2d3e4a5b6c7d8e9f0a1", "user")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return config.JWTSecret(), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "64f1c2d3e4a5b6c7d8e9f0a1", claims["userId"])
	assert.Equal(t, "user", claims["role"])
	assert.NotNil(t, claims["exp"])
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(header string) *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		return c
	}

	assert.Equal(t, "abc123", BearerToken(newCtx("Bearer abc123")))
	assert.Equal(t, "abc123", BearerToken(newCtx("abc123")))
	assert.Equal(t, "", BearerToken(newCtx("")))
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(role interface{}, set bool) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router := gin.New()
		router.GET("/admin", func(c *gin.Context) {
			if set {
				c.Set("role", role)
			}
		}, AdminMiddleware(), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, run("admin", true).Code)
	assert.Equal(t, http.StatusForbidden, run("user", true).Code)
	assert.Equal(t, http.StatusForbidden, run(nil, false).Code)
}

func TestAdminOrOwnerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(role, userID, paramID string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router := gin.New()
		router.GET("/users/:id", func(c *gin.Context) {
			c.Set("role", role)
			c.Set("userId", userID)
		}, AdminOrOwnerMiddleware(), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		req := httptest.NewRequest(http.MethodGet, "/users/"+paramID, nil)
		router.ServeHTTP(w, req)
		return w
	}

	ownerID := "64f1c2d3e4a5b6c7d8e9f0a1"
	assert.Equal(t, http.StatusOK, run("user", ownerID, ownerID).Code)
	assert.Equal(t, http.StatusOK, run("admin", "someoneelse", ownerID).Code)
	assert.Equal(t, http.StatusForbidden, run("user", "someoneelse", ownerID).Code)
}
