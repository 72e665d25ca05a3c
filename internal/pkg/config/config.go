package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server      ServerConfig
	Store       StoreConfig
	DB          DBConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Booking     BookingConfig
	Sweep       SweepConfig
	Webhook     WebhookConfig
	RateLimit   RateLimitConfig
	Idempotency IdempotencyConfig
}

type ServerConfig struct {
	Port              string        `envconfig:"PORT" required:"true"`
	ReadHeaderTimeout time.Duration `envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

type StoreConfig struct {
	// postgres or memory
	Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

// An empty Addr disables redis; intents are then logged and idempotency keys kept in process.
type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR"`
	Password     string `envconfig:"REDIS_PASSWORD"`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	StreamPrefix string `envconfig:"REDIS_STREAM_PREFIX" default:"booking"`
	StreamMaxLen int64  `envconfig:"REDIS_STREAM_MAXLEN" default:"100000"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Europe/Paris"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"3600"` // 1*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// BookingConfig carries the reservation policy. Monetary and rate values are decimal strings.
// Fields tagged yaml can be overridden from BOOKING_POLICY_FILE.
type BookingConfig struct {
	PolicyFile           string        `envconfig:"BOOKING_POLICY_FILE" yaml:"-"`
	CommissionRate       string        `envconfig:"BOOKING_COMMISSION_RATE" default:"0.15" yaml:"commission_rate"`
	Currency             string        `envconfig:"BOOKING_CURRENCY" default:"EUR" yaml:"currency"`
	MinAdvance           time.Duration `envconfig:"BOOKING_MIN_ADVANCE" default:"24h" yaml:"min_advance"`
	MaxAdvanceDays       int           `envconfig:"BOOKING_MAX_ADVANCE_DAYS" default:"90" yaml:"max_advance_days"`
	MinDuration          time.Duration `envconfig:"BOOKING_MIN_DURATION" default:"1h" yaml:"min_duration"`
	MaxDuration          time.Duration `envconfig:"BOOKING_MAX_DURATION" default:"8h" yaml:"max_duration"`
	MaxPerDay            int           `envconfig:"BOOKING_MAX_PER_DAY" default:"5" yaml:"max_per_day"`
	MaxPending           int           `envconfig:"BOOKING_MAX_PENDING" default:"10" yaml:"max_pending"`
	MinPrice             string        `envconfig:"BOOKING_MIN_PRICE" default:"15" yaml:"min_price"`
	MaxPrice             string        `envconfig:"BOOKING_MAX_PRICE" default:"5000" yaml:"max_price"`
	FullRefundWindow     time.Duration `envconfig:"BOOKING_FULL_REFUND_WINDOW" default:"48h" yaml:"full_refund_window"`
	PartialRefundWindow  time.Duration `envconfig:"BOOKING_PARTIAL_REFUND_WINDOW" default:"24h" yaml:"partial_refund_window"`
	PartialRefundRate    string        `envconfig:"BOOKING_PARTIAL_REFUND_RATE" default:"0.25" yaml:"partial_refund_rate"`
	UnpaidTimeout        time.Duration `envconfig:"BOOKING_UNPAID_TIMEOUT" default:"30m" yaml:"unpaid_timeout"`
	ReviewWindow         time.Duration `envconfig:"BOOKING_REVIEW_WINDOW" default:"720h" yaml:"review_window"`
	ReminderLead         time.Duration `envconfig:"BOOKING_REMINDER_LEAD" default:"24h" yaml:"reminder_lead"`
	ReviewReminderDelay  time.Duration `envconfig:"BOOKING_REVIEW_REMINDER_DELAY" default:"168h" yaml:"review_reminder_delay"`
	RatingWindow         int           `envconfig:"BOOKING_RATING_WINDOW" default:"30" yaml:"rating_window"`
	TimeZone             string        `envconfig:"BOOKING_TIMEZONE" default:"Europe/Paris" yaml:"timezone"`
	AutoConfirmOnPayment bool          `envconfig:"BOOKING_AUTO_CONFIRM_ON_PAYMENT" default:"true" yaml:"auto_confirm_on_payment"`
}

type SweepConfig struct {
	Enabled              bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	StartInterval        time.Duration `envconfig:"SWEEP_START_INTERVAL" default:"5m"`
	CompleteInterval     time.Duration `envconfig:"SWEEP_COMPLETE_INTERVAL" default:"15m"`
	ExpireInterval       time.Duration `envconfig:"SWEEP_EXPIRE_INTERVAL" default:"10m"`
	RemindInterval       time.Duration `envconfig:"SWEEP_REMIND_INTERVAL" default:"15m"`
	ReviewRemindInterval time.Duration `envconfig:"SWEEP_REVIEW_REMIND_INTERVAL" default:"1h"`

	// BatchSize <= 0 scans every due reservation in one run
	BatchSize   int `envconfig:"SWEEP_BATCH_SIZE" default:"200"`
	Parallelism int `envconfig:"SWEEP_PARALLELISM" default:"8"`
}

// Payment gateway callbacks must present Secret in X-Webhook-Secret. Empty rejects every callback.
type WebhookConfig struct {
	Secret string `envconfig:"PAYMENT_WEBHOOK_SECRET"`
}

type RateLimitConfig struct {
	BookingsPerHour int `envconfig:"RATE_LIMIT_BOOKINGS_PER_HOUR" default:"10"`
	Burst           int `envconfig:"RATE_LIMIT_BOOKINGS_BURST" default:"10"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Booking.PolicyFile != "" {
		if err := LoadBookingPolicyFile(cfg.Booking.PolicyFile, &cfg.Booking); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		CommissionRate:       "0.15",
		Currency:             "EUR",
		MinAdvance:           24 * time.Hour,
		MaxAdvanceDays:       90,
		MinDuration:          time.Hour,
		MaxDuration:          8 * time.Hour,
		MaxPerDay:            5,
		MaxPending:           10,
		MinPrice:             "15",
		MaxPrice:             "5000",
		FullRefundWindow:     48 * time.Hour,
		PartialRefundWindow:  24 * time.Hour,
		PartialRefundRate:    "0.25",
		UnpaidTimeout:        30 * time.Minute,
		ReviewWindow:         30 * 24 * time.Hour,
		ReminderLead:         24 * time.Hour,
		ReviewReminderDelay:  7 * 24 * time.Hour,
		RatingWindow:         30,
		TimeZone:             "Europe/Paris",
		AutoConfirmOnPayment: true,
	}
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:              "8889", // Test port
			ReadHeaderTimeout: time.Second,
			WriteTimeout:      5 * time.Second,
			ShutdownTimeout:   time.Second,
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Redis: RedisConfig{
			StreamPrefix: "booking-test",
			StreamMaxLen: 1000,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Europe/Paris",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 3600,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Booking: DefaultBookingConfig(),
		Sweep: SweepConfig{
			Enabled:              false,
			StartInterval:        5 * time.Minute,
			CompleteInterval:     15 * time.Minute,
			ExpireInterval:       10 * time.Minute,
			RemindInterval:       15 * time.Minute,
			ReviewRemindInterval: time.Hour,
			BatchSize:            50,
			Parallelism:          4,
		},
		Webhook: WebhookConfig{
			Secret: "test-webhook-secret",
		},
		RateLimit: RateLimitConfig{
			BookingsPerHour: 1000,
			Burst:           1000,
		},
		Idempotency: IdempotencyConfig{
			TTL: time.Hour,
		},
	}
}
