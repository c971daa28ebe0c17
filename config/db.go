package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/utils"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "hotel_pms")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

func resolvePostgresDSN() string {
	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		utils.EnvOrDefault("DB_HOST", "127.0.0.1"),
		utils.EnvOrDefault("DB_PORT", "5432"),
		utils.EnvOrDefault("DB_USER", "postgres"),
		utils.EnvOrDefault("DB_PASS", ""),
		utils.EnvOrDefault("DB_NAME", "hotel_pms"),
		utils.EnvOrDefault("DB_SSLMODE", "disable"),
	)
}

// dialector picks the gorm driver from DB_DRIVER. MySQL is the default.
func dialector() (gorm.Dialector, string, error) {
	driver := strings.ToLower(utils.EnvOrDefault("DB_DRIVER", "mysql"))
	switch driver {
	case "mysql":
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, "", err
		}
		return mysql.Open(dsn), driver, nil
	case "postgres", "postgresql":
		return postgres.Open(resolvePostgresDSN()), "postgres", nil
	case "sqlite":
		return sqlite.Open(utils.EnvOrDefault("SQLITE_PATH", "hotel_pms.db")), driver, nil
	}
	return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// Migrate creates or updates every table of the application.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Branch{},
		&models.BranchTaxSetting{},
		&models.User{},
		&models.Role{},
		&models.RolePermission{},
		&models.RoleMember{},
		&models.RoomType{},
		&models.RateType{},
		&models.Currency{},
		&models.Customer{},
		&models.Room{},
		&models.RoomStatusLog{},
		&models.BranchRoomTypePrice{},
		&models.PricingRange{},
		&models.Product{},
		&models.BranchProductStock{},
		&models.PaymentMethod{},
		&models.CashRegisterSession{},
		&models.CashRegister{},
		&models.Booking{},
		&models.BookingConsumption{},
		&models.KardexEntry{},
		&models.Payment{},
		&models.BookingEvent{},
	)
}

// ConnectDatabase opens the configured database, migrates and seeds it.
// The handle is also kept in DB.
func ConnectDatabase() (*gorm.DB, string, error) {
	dial, driver, err := dialector()
	if err != nil {
		return nil, "", err
	}

	level := logger.Warn
	if utils.EnvBool("DB_DEBUG", false) {
		level = logger.Info
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, "", err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(utils.EnvInt("DB_MAX_OPEN_CONNS", 25))
		sqlDB.SetMaxIdleConns(utils.EnvInt("DB_MAX_IDLE_CONNS", 5))
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		log.Printf("info: cannot get raw sql.DB: %v", err)
	}

	if err := Migrate(db); err != nil {
		return nil, "", fmt.Errorf("migrate: %w", err)
	}
	if err := SeedDatabase(db); err != nil {
		return nil, "", fmt.Errorf("seed: %w", err)
	}

	DB = db
	return db, driver, nil
}
