package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medshop/internal/auth"
	"medshop/internal/config"
	"medshop/internal/model"
	"medshop/pkg/logger"
	"medshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.JWTConfig{Secret: "middleware-secret", TTL: time.Hour})
}

func issue(t *testing.T, tokens *auth.TokenManager, id uint, role string) string {
	t.Helper()
	token, _, err := tokens.Issue(id, "user", role)
	require.NoError(t, err)
	return token
}

func whoAmI(c *gin.Context) {
	id, _ := UserID(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "role": UserRole(c)})
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/", RequireAuth(tokens), whoAmI)

	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := auth.NewTokenManager(config.JWTConfig{Secret: "other-secret"})
	w = do(r, issue(t, other, 1, model.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, issue(t, tokens, 42, model.RoleStaff))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 42, body.ID)
	assert.Equal(t, model.RoleStaff, body.Role)
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/", RequireAuth(tokens), RequireRole(model.RoleAdmin), whoAmI)

	assert.Equal(t, http.StatusForbidden, do(r, issue(t, tokens, 1, model.RoleStaff)).Code)
	assert.Equal(t, http.StatusOK, do(r, issue(t, tokens, 1, model.RoleAdmin)).Code)

	bare := gin.New()
	bare.GET("/", RequireRole(model.RoleAdmin), whoAmI)
	assert.Equal(t, http.StatusUnauthorized, do(bare, "").Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/", OptionalAuth(tokens), whoAmI)

	w := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"role":""}`, w.Body.String())

	w = do(r, "garbage")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"role":""}`, w.Body.String())

	w = do(r, issue(t, tokens, 7, model.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"admin"}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.Nop()), Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := do(r, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.Nop()))
	r.GET("/", func(c *gin.Context) {
		assert.NotNil(t, logger.FromContext(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
}
