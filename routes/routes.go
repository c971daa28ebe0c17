package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-pms/controllers"
	"hotel-pms/metrics"
	"hotel-pms/middleware"
	"hotel-pms/utils"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	Booking      *controllers.BookingController
	Consumption  *controllers.ConsumptionController
	Room         *controllers.RoomController
	Catalog      *controllers.CatalogController
	Customer     *controllers.CustomerController
	Pricing      *controllers.PricingController
	Inventory    *controllers.InventoryController
	CashRegister *controllers.CashRegisterController
	Settings     *controllers.SettingsController
	Role         *controllers.RoleController
	User         *controllers.UserController
}

type Options struct {
	CorsOrigins []string
	Tokens      *utils.TokenService
	Permissions middleware.PermissionChecker
	Metrics     *metrics.Metrics
	MetricsPath string
}

func parseCorsOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, part := range raw {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(ctl Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.ErrorLogger())
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}

	origins := parseCorsOrigins(opts.CorsOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	perm := func(p string) gin.HandlerFunc {
		return middleware.RequirePermission(opts.Permissions, p)
	}

	api := r.Group("/api")
	api.POST("/auth/login", ctl.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.AuthRequired(opts.Tokens))
	{
		secured.GET("/auth/me", ctl.Auth.Me)

		bookings := secured.Group("/bookings")
		{
			bookings.GET("", perm("bookings.view"), ctl.Booking.GetBookings)
			bookings.POST("", perm("bookings.create"), ctl.Booking.CreateBooking)
			bookings.GET("/:id", perm("bookings.view"), ctl.Booking.GetBookingDetails)
			bookings.GET("/:id/ticket", perm("bookings.view"), ctl.Booking.GetTicket)
			bookings.GET("/:id/events", perm("bookings.view"), ctl.Booking.GetEvents)
			bookings.POST("/:id/check-in", perm("bookings.checkin"), ctl.Booking.CheckIn)
			bookings.POST("/:id/cancel", perm("bookings.cancel"), ctl.Booking.Cancel)
			bookings.POST("/:id/finish", perm("bookings.checkout"), ctl.Booking.Finish)
			bookings.POST("/:id/extend", perm("bookings.extend"), ctl.Booking.Extend)
			bookings.POST("/:id/consumptions", perm("inventory.consume"), ctl.Consumption.AddConsumptions)
		}

		consumptions := secured.Group("/consumptions")
		{
			consumptions.PUT("/:id", perm("inventory.consume"), ctl.Consumption.UpdateConsumption)
			consumptions.DELETE("/:id", perm("inventory.consume"), ctl.Consumption.DeleteConsumption)
			consumptions.POST("/:id/pay", perm("cash.open"), ctl.Consumption.MarkPaid)
		}

		rooms := secured.Group("/rooms")
		{
			rooms.GET("", perm("rooms.view"), ctl.Room.GetRooms)
			// static segment before /:id
			rooms.GET("/stats", perm("rooms.view"), ctl.Room.Stats)
			rooms.POST("", perm("rooms.create"), ctl.Room.CreateRoom)
			rooms.GET("/:id", perm("rooms.view"), ctl.Room.GetRoom)
			rooms.PUT("/:id", perm("rooms.edit"), ctl.Room.UpdateRoom)
			rooms.DELETE("/:id", perm("rooms.delete"), ctl.Room.DeleteRoom)
			rooms.PATCH("/:id/status", perm("rooms.status"), ctl.Room.ChangeStatus)
			rooms.POST("/:id/release", perm("rooms.status"), ctl.Room.Release)
			rooms.GET("/:id/status-logs", perm("rooms.view"), ctl.Room.StatusLogs)
			rooms.GET("/:id/checkout-details", perm("bookings.view"), ctl.Booking.CheckoutDetails)
			rooms.POST("/:id/charge-extra-time", perm("bookings.extend"), ctl.Booking.ChargeExtraTime)
			rooms.POST("/:id/checkout", perm("bookings.checkout"), ctl.Booking.CheckoutRoom)
		}

		roomTypes := secured.Group("/room-types")
		{
			roomTypes.GET("", ctl.Catalog.GetRoomTypes)
			roomTypes.GET("/:id", ctl.Catalog.GetRoomType)
			roomTypes.POST("", perm("rooms.create"), ctl.Catalog.CreateRoomType)
			roomTypes.PUT("/:id", perm("rooms.edit"), ctl.Catalog.UpdateRoomType)
			roomTypes.DELETE("/:id", perm("rooms.delete"), ctl.Catalog.DeleteRoomType)
		}
		secured.GET("/rate-types", ctl.Catalog.GetRateTypes)
		secured.GET("/currencies", ctl.Catalog.GetCurrencies)
		secured.GET("/payment-methods", ctl.Catalog.GetPaymentMethods)

		customers := secured.Group("/customers")
		{
			customers.GET("", perm("customers.view"), ctl.Customer.GetCustomers)
			customers.GET("/:id", perm("customers.view"), ctl.Customer.GetCustomer)
			customers.POST("", perm("customers.create"), ctl.Customer.CreateCustomer)
			customers.PUT("/:id", perm("customers.edit"), ctl.Customer.UpdateCustomer)
		}

		pricing := secured.Group("/pricing")
		{
			pricing.GET("/resolve", perm("pricing.view"), ctl.Pricing.Resolve)
			pricing.GET("/calculate", perm("pricing.view"), ctl.Pricing.Calculate)
		}
		prices := secured.Group("/room-type-prices")
		{
			prices.GET("", perm("pricing.view"), ctl.Pricing.ListConfigurations)
			prices.POST("", perm("pricing.manage"), ctl.Pricing.CreateConfiguration)
			prices.PUT("/:id", perm("pricing.manage"), ctl.Pricing.UpdateConfiguration)
			prices.DELETE("/:id", perm("pricing.manage"), ctl.Pricing.DeleteConfiguration)
			prices.GET("/:id/options", perm("pricing.view"), ctl.Pricing.Options)
			prices.GET("/:id/ranges", perm("pricing.view"), ctl.Pricing.ListRanges)
			prices.POST("/:id/ranges", perm("pricing.manage"), ctl.Pricing.CreateRange)
		}
		ranges := secured.Group("/pricing-ranges")
		{
			ranges.PUT("/:rangeId", perm("pricing.manage"), ctl.Pricing.UpdateRange)
			ranges.DELETE("/:rangeId", perm("pricing.manage"), ctl.Pricing.DeleteRange)
		}

		secured.GET("/kardex", perm("inventory.view"), ctl.Inventory.GetKardex)
		secured.POST("/kardex/entries", perm("inventory.adjust"), ctl.Inventory.RegisterMovement)
		secured.GET("/stock", perm("inventory.view"), ctl.Inventory.GetStock)
		products := secured.Group("/products")
		{
			products.GET("", perm("inventory.view"), ctl.Inventory.GetProducts)
			products.GET("/:id", perm("inventory.view"), ctl.Inventory.GetProduct)
			products.POST("", perm("inventory.products"), ctl.Inventory.CreateProduct)
			products.PUT("/:id", perm("inventory.products"), ctl.Inventory.UpdateProduct)
		}

		cash := secured.Group("/cash-registers")
		{
			cash.GET("", perm("cash.view"), ctl.CashRegister.GetRegisters)
			cash.POST("/:id/open", perm("cash.open"), ctl.CashRegister.Open)
			cash.POST("/:id/close", perm("cash.close"), ctl.CashRegister.Close)
		}

		settings := secured.Group("/settings")
		{
			settings.GET("/tax", perm("settings.view"), ctl.Settings.GetTaxSettings)
			settings.PUT("/tax", perm("settings.edit"), ctl.Settings.UpdateTaxSettings)
		}

		roles := secured.Group("/roles")
		{
			roles.GET("", perm("roles.view"), ctl.Role.GetRoles)
			roles.PUT("/:id/permissions", perm("roles.edit"), ctl.Role.UpdateRolePermissions)
		}

		users := secured.Group("/users")
		{
			users.GET("", perm("roles.view"), ctl.User.GetUsers)
			users.POST("", perm("roles.edit"), ctl.User.CreateUser)
			users.PUT("/:id/role", perm("roles.edit"), ctl.User.AssignRole)
			users.DELETE("/:id", perm("roles.edit"), ctl.User.DeleteUser)
		}
	}

	return r
}
