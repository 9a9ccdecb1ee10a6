package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/api/models"
	"projecthub/api/utils"
)

func identityRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalIdentity())
	r.GET("/probe", func(c *gin.Context) {
		email, _ := c.Get("user_email")
		verifiedEmail, _ := email.(string)
		c.JSON(http.StatusOK, gin.H{"email": verifiedEmail})
	})
	return r
}

func TestOptionalIdentityValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	r := identityRouter()

	token, err := utils.GenerateJWT(&models.User{ID: 42, Email: "dev@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "jwt_token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dev@example.com")
}

func TestOptionalIdentityBearerHeader(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	r := identityRouter()

	token, err := utils.GenerateJWT(&models.User{ID: 7, Email: "pm@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pm@example.com")
}

// Anonymous and garbage tokens must never reject the request; tracking has
// to work for logged-out visitors.
func TestOptionalIdentityNeverRejects(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	r := identityRouter()

	for _, setup := range []func(*http.Request){
		func(*http.Request) {}, // no credentials at all
		func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "jwt_token", Value: "not-a-jwt"})
		},
		func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer garbage")
		},
	} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		setup(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":""`)
	}
}
