package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Chain     ChainConfig
	PriceFeed PriceFeedConfig
	IPFS      IPFSConfig
	Booking   BookingConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port         string
	Env          string
	LogLevel     string
	Timezone     string
	AdminWallets []string
	AutoMigrate  bool
	// Origins of the patient and doctor dapps allowed by CORS.
	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	NonceExpiry   time.Duration
}

// ChainConfig selects the network and the keystore used to sign
// transactions on behalf of wallets.
type ChainConfig struct {
	ChainID            int64
	RPCURL             string
	KeystoreDir        string
	KeystorePassphrase string
	Network            NetworkConfig
}

type PriceFeedConfig struct {
	BaseURL string
	Timeout time.Duration
	MaxAge  time.Duration
}

type IPFSConfig struct {
	APIURL string
}

type BookingConfig struct {
	ReferenceCurrency string
	HoldTTL           time.Duration
	LockTTL           time.Duration
	CacheTTL          time.Duration
	ExpiryInterval    time.Duration
}

type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_TIMEZONE", "Local")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("CHAIN_ID", 11155111)
	viper.SetDefault("PRICE_FEED_URL", "https://hermes.pyth.network")
	viper.SetDefault("PRICE_FEED_TIMEOUT", "10s")
	viper.SetDefault("PRICE_MAX_AGE", "60s")
	viper.SetDefault("IPFS_API_URL", "localhost:5001")
	viper.SetDefault("REFERENCE_CURRENCY", "USD")
	viper.SetDefault("SLOT_HOLD_TTL", "15m")
	viper.SetDefault("ATTEMPT_LOCK_TTL", "3m")
	viper.SetDefault("ENTITY_CACHE_TTL", "5m")
	viper.SetDefault("EXPIRY_INTERVAL", "1m")
	viper.SetDefault("OTEL_SERVICE_NAME", "pulsebridge-consult")
	viper.SetDefault("OTEL_SERVICE_VERSION", "dev")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
}

func LoadConfig() (*Config, error) {
	setDefaults()
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	chainID := viper.GetInt64("CHAIN_ID")
	network, ok := Network(chainID)
	if !ok {
		return nil, fmt.Errorf("unsupported chain id %d", chainID)
	}
	if addr := viper.GetString("DOCTOR_REGISTRY_ADDRESS"); addr != "" {
		network.DoctorRegistry = addr
	}
	if addr := viper.GetString("CONSULTATION_ESCROW_ADDRESS"); addr != "" {
		network.ConsultationEscrow = addr
	}

	config := &Config{
		App: AppConfig{
			Port:         viper.GetString("APP_PORT"),
			Env:          viper.GetString("APP_ENV"),
			LogLevel:     viper.GetString("LOG_LEVEL"),
			Timezone:     viper.GetString("APP_TIMEZONE"),
			AdminWallets: splitList(viper.GetString("ADMIN_WALLETS")),
			AutoMigrate:  viper.GetBool("AUTO_MIGRATE"),
			CORSOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			TimeZone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			NonceExpiry:   durationOr("AUTH_NONCE_EXPIRY", 5*time.Minute),
		},
		Chain: ChainConfig{
			ChainID:            chainID,
			RPCURL:             viper.GetString("CHAIN_RPC_URL"),
			KeystoreDir:        viper.GetString("KEYSTORE_DIR"),
			KeystorePassphrase: viper.GetString("KEYSTORE_PASSPHRASE"),
			Network:            network,
		},
		PriceFeed: PriceFeedConfig{
			BaseURL: viper.GetString("PRICE_FEED_URL"),
			Timeout: viper.GetDuration("PRICE_FEED_TIMEOUT"),
			MaxAge:  viper.GetDuration("PRICE_MAX_AGE"),
		},
		IPFS: IPFSConfig{
			APIURL: viper.GetString("IPFS_API_URL"),
		},
		Booking: BookingConfig{
			ReferenceCurrency: strings.ToUpper(viper.GetString("REFERENCE_CURRENCY")),
			HoldTTL:           viper.GetDuration("SLOT_HOLD_TTL"),
			LockTTL:           viper.GetDuration("ATTEMPT_LOCK_TTL"),
			CacheTTL:          viper.GetDuration("ENTITY_CACHE_TTL"),
			ExpiryInterval:    viper.GetDuration("EXPIRY_INTERVAL"),
		},
		Telemetry: TelemetryConfig{
			Enabled:        viper.GetBool("OTEL_ENABLED"),
			ServiceName:    viper.GetString("OTEL_SERVICE_NAME"),
			ServiceVersion: viper.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:       viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	return config, nil
}

// Location resolves the configured application time zone. Slot dates are
// compared against "today" in this zone.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "Local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
