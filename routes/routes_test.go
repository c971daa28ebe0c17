package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-pms/config"
	"hotel-pms/controllers"
	"hotel-pms/metrics"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file:pms_routes?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	require.NoError(t, config.SeedDatabase(db))

	clock := services.RealClock{}
	tokens := utils.NewTokenService("routes-secret", time.Hour)
	kardex := services.NewKardexService(db, clock)
	payments := services.NewPaymentService(db, clock)
	consumptions := services.NewConsumptionService(db, kardex, clock)
	auth := services.NewAuthService(db, tokens)

	ctl := Controllers{
		Auth:         controllers.NewAuthController(auth),
		Booking:      controllers.NewBookingController(services.NewBookingService(db, kardex, consumptions, payments, clock)),
		Consumption:  controllers.NewConsumptionController(consumptions),
		Room:         controllers.NewRoomController(services.NewRoomService(db, clock)),
		Catalog:      controllers.NewCatalogController(services.NewRoomTypeService(db)),
		Customer:     controllers.NewCustomerController(services.NewCustomerService(db)),
		Pricing:      controllers.NewPricingController(services.NewPricingService(db), clock),
		Inventory:    controllers.NewInventoryController(kardex, services.NewProductService(db)),
		CashRegister: controllers.NewCashRegisterController(payments),
		Settings:     controllers.NewSettingsController(services.NewSettingsService(db)),
		Role:         controllers.NewRoleController(services.NewRoleService(db)),
		User:         controllers.NewUserController(services.NewUserService(db)),
	}
	router := SetupRouter(ctl, Options{
		Tokens:      tokens,
		Permissions: auth,
		Metrics:     metrics.New("pms-routes-test"),
	})
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Data.Token)
	return res.Data.Token
}

func TestRouter_LoginAndPermissions(t *testing.T) {
	srv := newTestServer(t)

	// Arrange
	admin := srv.login(t, "admin@hotel.local", "admin123")
	w := srv.do(t, http.MethodPost, "/api/users", admin, map[string]string{
		"full_name": "Rosa Mendez",
		"username":  "rosa@hotel.local",
		"password":  "cleaning-2026",
		"role":      "Housekeeping",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	housekeeper := srv.login(t, "rosa@hotel.local", "cleaning-2026")

	// Act + Assert
	w = srv.do(t, http.MethodGet, "/api/auth/me", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"*"`)

	w = srv.do(t, http.MethodGet, "/api/rooms", housekeeper, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodPost, "/api/bookings", housekeeper, map[string]any{"room_id": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Missing permission bookings.create")

	w = srv.do(t, http.MethodGet, "/api/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin@hotel.local", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/health"`)
}

func TestParseCorsOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseCorsOrigins(nil))
	assert.Equal(t, []string{"*"}, parseCorsOrigins([]string{" ", ""}))
	assert.Equal(t, []string{"http://desk.local"}, parseCorsOrigins([]string{" http://desk.local "}))
}
