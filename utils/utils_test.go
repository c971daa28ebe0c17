package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCode(t *testing.T) {
	code, err := RandomCode(8)
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, code)

	_, err = RandomCode(0)
	assert.Error(t, err)
}

func TestGenerateCodes(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	booking, err := GenerateBookingCode(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^BK-20260314-[A-Z0-9]{6}$`), booking)

	payment, err := GeneratePaymentCode(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^PAY-20260314153000-[A-Z0-9]{4}$`), payment)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, err := svc.GenerateToken(9, 2, "night@hotel.local")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, uint(2), claims.BranchID)
	assert.Equal(t, "night@hotel.local", claims.Username)

	_, err = NewTokenService("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	stale, err := NewTokenService("secret", -time.Minute).GenerateToken(9, 2, "x")
	require.NoError(t, err)
	_, err = svc.ValidateToken(stale)
	assert.Error(t, err)
}

func TestPaginated_LastPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		total int64
		want  int
	}{
		{0, 1},
		{20, 1},
		{21, 2},
		{45, 3},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Paginated(c, http.StatusOK, []int{}, 1, 20, tc.total)

		var body struct {
			Meta struct {
				LastPage int   `json:"last_page"`
				Total    int64 `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.want, body.Meta.LastPage, "total %d", tc.total)
		assert.Equal(t, tc.total, body.Meta.Total)
	}
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name  string `validate:"required"`
		Hours int    `validate:"gte=1"`
	}

	assert.Nil(t, ValidateStruct(input{Name: "x", Hours: 1}))
	assert.Equal(t, map[string]string{"input.Name": "required", "input.Hours": "gte"}, ValidateStruct(input{}))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("PMS_TEST_INT", " 42 ")
	t.Setenv("PMS_TEST_BAD", "abc")
	t.Setenv("PMS_TEST_BOOL", "true")

	assert.Equal(t, 42, EnvInt("PMS_TEST_INT", 1))
	assert.Equal(t, 7, EnvInt("PMS_TEST_BAD", 7))
	assert.True(t, EnvBool("PMS_TEST_BOOL", false))
	assert.Equal(t, "fallback", EnvOrDefault("PMS_TEST_MISSING", "fallback"))
}
