package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Inventory InventoryConfig
	Billing   BillingConfig
	Printer   PrinterConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name         string
	Env          string
	Port         string
	Debug        bool
	StoreName    string
	StoreAddress string
	StorePhone   string
	Timezone     string
}

// Location resolves the configured timezone, falling back to the local zone
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// InventoryConfig points at the remote pharmacy API
type InventoryConfig struct {
	BaseURL string
	Timeout time.Duration
}

type BillingConfig struct {
	InitialRows     int
	CountryCode     string
	AlertDuration   time.Duration
	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

type PrinterConfig struct {
	Type       string // usb, network or none
	USBPath    string
	Address    string
	PaperWidth int
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "pharmacy-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("STORE_NAME", "Pharmacy")
	viper.SetDefault("STORE_ADDRESS", "")
	viper.SetDefault("STORE_PHONE", "")
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pharmacy")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("INVENTORY_BASE_URL", "http://localhost:3000")
	viper.SetDefault("INVENTORY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("BILLING_INITIAL_ROWS", 3)
	viper.SetDefault("BILLING_COUNTRY_CODE", "+91")
	viper.SetDefault("BILLING_ALERT_SECONDS", 3)
	viper.SetDefault("BILLING_SESSION_TTL_MINUTES", 120)
	viper.SetDefault("BILLING_CLEANUP_MINUTES", 5)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_PAPER_WIDTH", 48)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:         viper.GetString("APP_NAME"),
			Env:          viper.GetString("APP_ENV"),
			Port:         viper.GetString("APP_PORT"),
			Debug:        viper.GetBool("APP_DEBUG"),
			StoreName:    viper.GetString("STORE_NAME"),
			StoreAddress: viper.GetString("STORE_ADDRESS"),
			StorePhone:   viper.GetString("STORE_PHONE"),
			Timezone:     viper.GetString("APP_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Inventory: InventoryConfig{
			BaseURL: viper.GetString("INVENTORY_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("INVENTORY_TIMEOUT_SECONDS")) * time.Second,
		},
		Billing: BillingConfig{
			InitialRows:     viper.GetInt("BILLING_INITIAL_ROWS"),
			CountryCode:     viper.GetString("BILLING_COUNTRY_CODE"),
			AlertDuration:   time.Duration(viper.GetInt("BILLING_ALERT_SECONDS")) * time.Second,
			SessionTTL:      time.Duration(viper.GetInt("BILLING_SESSION_TTL_MINUTES")) * time.Minute,
			CleanupInterval: time.Duration(viper.GetInt("BILLING_CLEANUP_MINUTES")) * time.Minute,
		},
		Printer: PrinterConfig{
			Type:       viper.GetString("PRINTER_TYPE"),
			USBPath:    viper.GetString("PRINTER_USB_PATH"),
			Address:    viper.GetString("PRINTER_ADDRESS"),
			PaperWidth: viper.GetInt("PRINTER_PAPER_WIDTH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
