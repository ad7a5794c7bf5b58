package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	Password PasswordConfig
	PayPal   PayPalConfig
	Checkout CheckoutConfig
	Plans    PlansConfig
	GCP      GCPConfig
	GCS      GCSConfig
	Media    MediaConfig

	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env              string `envconfig:"SHOP_APP_ENV" required:"true"`
	Port             string `envconfig:"SHOP_APP_PORT" default:"8080"`
	LogLevel         string `envconfig:"SHOP_LOG_LEVEL" default:"info"`
	LogWarnStack     bool   `envconfig:"SHOP_LOG_WARN_STACK" default:"false"`
	AllowAdminSetup  string `envconfig:"SHOP_ALLOW_ADMIN_SETUP"`
	AutoMigrate      bool   `envconfig:"SHOP_AUTO_MIGRATE" default:"false"`
	CORSAllowOrigins string `envconfig:"SHOP_CORS_ALLOW_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AdminSetupAllowed reports whether the first-admin bootstrap route is open.
// Only the exact string "true" enables it.
func (a AppConfig) AdminSetupAllowed() bool {
	return a.AllowAdminSetup == "true"
}

// CORSOrigins splits the comma separated origin list.
func (a AppConfig) CORSOrigins() []string {
	var origins []string
	for _, part := range strings.Split(a.CORSAllowOrigins, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"SHOP_DB_DSN"`
	Driver string `envconfig:"SHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOP_DB_USER"`
	LegacyPassword string `envconfig:"SHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOP_REDIS_URL"`
	Address      string        `envconfig:"SHOP_REDIS_ADDR"`
	Password     string        `envconfig:"SHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig covers the admin session token and the anonymous cart cookie.
type SessionConfig struct {
	Secret     string        `envconfig:"SHOP_SESSION_SECRET" required:"true"`
	Issuer     string        `envconfig:"SHOP_SESSION_ISSUER" default:"storefront"`
	AdminTTL   time.Duration `envconfig:"SHOP_SESSION_ADMIN_TTL" default:"24h"`
	CartTTL    time.Duration `envconfig:"SHOP_SESSION_CART_TTL" default:"168h"`
	SecureOnly bool          `envconfig:"SHOP_SESSION_SECURE_COOKIES" default:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"SHOP_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SetupWindow        time.Duration `envconfig:"SHOP_AUTH_RATE_LIMIT_SETUP_WINDOW" default:"5m"`
	SetupIPLimit       int           `envconfig:"SHOP_AUTH_RATE_LIMIT_SETUP_IP_LIMIT" default:"5"`
}

// PayPalConfig holds both credential pairs; the sandbox flag picks one per request.
type PayPalConfig struct {
	IsSandbox       string        `envconfig:"SHOP_IS_SANDBOX"`
	ClientID        string        `envconfig:"SHOP_PAYPAL_CLIENT_ID"`
	Secret          string        `envconfig:"SHOP_PAYPAL_SECRET"`
	SandboxClientID string        `envconfig:"SHOP_PAYPAL_SANDBOX_CLIENT_ID"`
	SandboxSecret   string        `envconfig:"SHOP_PAYPAL_SANDBOX_SECRET"`
	RequestTimeout  time.Duration `envconfig:"SHOP_PAYPAL_REQUEST_TIMEOUT" default:"10s"`
}

// UseSandbox is true unless the flag is exactly "false".
func (p PayPalConfig) UseSandbox() bool {
	return p.IsSandbox != "false"
}

type CheckoutConfig struct {
	SnapshotCart bool          `envconfig:"SHOP_CHECKOUT_SNAPSHOT_CART" default:"false"`
	SnapshotTTL  time.Duration `envconfig:"SHOP_CHECKOUT_SNAPSHOT_TTL" default:"3h"`
}

type PlansConfig struct {
	Five   string `envconfig:"SHOP_PLAN_FIVE"`
	Ten    string `envconfig:"SHOP_PLAN_TEN"`
	Twenty string `envconfig:"SHOP_PLAN_TWENTY"`
}

type GCPConfig struct {
	CredentialsJSON        string `envconfig:"SHOP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"SHOP_GCS_BUCKET_NAME" required:"true"`
	Endpoint   string `envconfig:"SHOP_GCS_ENDPOINT" default:"https://storage.googleapis.com"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"SHOP_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes converts the configured limit for multipart parsing.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
