package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) HasPermission(ctx context.Context, userID uint, perm string) (bool, error) {
	args := m.Called(ctx, userID, perm)
	return args.Bool(0), args.Error(1)
}

func TestAuthRequired_ValidToken(t *testing.T) {
	// Arrange
	tokens := utils.NewTokenService("test-secret-123", time.Hour)
	token, err := tokens.GenerateToken(42, 7, "desk@hotel.local")
	require.NoError(t, err)

	router := gin.New()
	router.Use(AuthRequired(tokens))
	router.GET("/protected", func(c *gin.Context) {
		actor, ok := Actor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"actor_id": actor.ActorID, "branch_id": actor.BranchID, "username": c.GetString("username")})
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"actor_id":42,"branch_id":7,"username":"desk@hotel.local"}`, w.Body.String())
}

func TestAuthRequired_Rejections(t *testing.T) {
	tokens := utils.NewTokenService("secret", time.Hour)
	foreign, err := utils.NewTokenService("other-secret", time.Hour).GenerateToken(1, 1, "x")
	require.NoError(t, err)
	noBranch, err := tokens.GenerateToken(1, 0, "x")
	require.NoError(t, err)
	expired, err := utils.NewTokenService("secret", -time.Minute).GenerateToken(1, 1, "x")
	require.NoError(t, err)

	router := gin.New()
	router.Use(AuthRequired(tokens))
	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	for name, header := range map[string]string{
		"missing header":   "",
		"not bearer":       "Basic abc",
		"empty bearer":     "Bearer ",
		"garbage":          "Bearer invalid-jwt-here",
		"wrong secret":     "Bearer " + foreign,
		"token w/o branch": "Bearer " + noBranch,
		"expired":          "Bearer " + expired,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"UNAUTHORIZED"`)
		})
	}
}

func withActor(actor services.ActorContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetActor(c, actor)
		c.Next()
	}
}

func TestRequirePermission(t *testing.T) {
	actor := services.ActorContext{ActorID: 5, BranchID: 1}

	cases := []struct {
		name     string
		allowed  bool
		err      error
		wantCode int
		wantBody string
	}{
		{"granted", true, nil, http.StatusOK, "ok"},
		{"denied", false, nil, http.StatusForbidden, "Missing permission bookings.checkout"},
		{"checker failure", false, errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			checker := new(mockChecker)
			checker.On("HasPermission", mock.Anything, uint(5), "bookings.checkout").Return(tc.allowed, tc.err).Once()
			router := gin.New()
			router.Use(withActor(actor), RequirePermission(checker, "bookings.checkout"))
			router.POST("/bookings/1/finish", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

			// Act
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/1/finish", nil))

			// Assert
			assert.Equal(t, tc.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
			checker.AssertExpectations(t)
		})
	}
}

func TestRequirePermission_WithoutActor(t *testing.T) {
	checker := new(mockChecker)
	router := gin.New()
	router.Use(RequirePermission(checker, "rooms.view"))
	router.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	checker.AssertNotCalled(t, "HasPermission", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestErrorLogger_RecoversPanics(t *testing.T) {
	router := gin.New()
	router.Use(ErrorLogger())
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Unexpected error, please try again"}}`, w.Body.String())
}
