package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtsvc "marineworks/internal/pkg/jwt"
)

func newActorRouter(jwt *jwtsvc.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Actor(jwt))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": ActorUID(c)})
	})
	return r
}

func TestActorAnonymousWithoutToken(t *testing.T) {
	r := newActorRouter(jwtsvc.New("test-secret", time.Hour))

	req := httptest.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":""`)
}

func TestActorResolvesUIDFromToken(t *testing.T) {
	jwt := jwtsvc.New("test-secret", time.Hour)
	r := newActorRouter(jwt)

	token, err := jwt.GenerateToken("tech-42", "Ana")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"tech-42"`)
}

func TestActorRejectsInvalidToken(t *testing.T) {
	r := newActorRouter(jwtsvc.New("test-secret", time.Hour))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorRejectsWrongSecret(t *testing.T) {
	r := newActorRouter(jwtsvc.New("test-secret", time.Hour))
	other := jwtsvc.New("other-secret", time.Hour)

	token, err := other.GenerateToken("tech-42", "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorRejectsMalformedHeader(t *testing.T) {
	r := newActorRouter(jwtsvc.New("test-secret", time.Hour))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
