package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/util"
)

const testSecret = "middleware-test-secret"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(func() string { return testSecret }))
	r.GET("/me", func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
	})
	return r
}

func issueToken(t *testing.T, secret string) string {
	t.Helper()
	user := &model.User{Email: "ana@example.com"}
	user.ID = 42
	token, err := util.GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()
	token := issueToken(t, testSecret)

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		target string
		status int
	}{
		{"missing token", func(*http.Request) {}, "/me", http.StatusUnauthorized},
		{"bearer header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, "/me", http.StatusOK},
		{"query token", func(*http.Request) {}, "/me?token=" + token, http.StatusOK},
		{"wrong secret", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+issueToken(t, "other-secret"))
		}, "/me", http.StatusUnauthorized},
		{"garbage", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, "/me", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":42}`, w.Body.String())
			}
		})
	}
}
