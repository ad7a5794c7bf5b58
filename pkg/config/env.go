package config

const EnvPrefix = "SHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "SHOP_APP_ENV"
	EnvPort            = "SHOP_APP_PORT"
	EnvAllowAdminSetup = "SHOP_ALLOW_ADMIN_SETUP"
	EnvDBDSN           = "SHOP_DB_DSN"
	EnvDBHost          = "SHOP_DB_HOST"
	EnvDBUser          = "SHOP_DB_USER"
	EnvDBName          = "SHOP_DB_NAME"
	EnvRedisURL        = "SHOP_REDIS_URL"
	EnvSessionSecret   = "SHOP_SESSION_SECRET"
	EnvIsSandbox       = "SHOP_IS_SANDBOX"
	EnvPayPalClientID  = "SHOP_PAYPAL_CLIENT_ID"
	EnvPayPalSecret    = "SHOP_PAYPAL_SECRET"
	EnvPayPalSandboxID = "SHOP_PAYPAL_SANDBOX_CLIENT_ID"
	EnvPayPalSandboxSK = "SHOP_PAYPAL_SANDBOX_SECRET"
	EnvGCSBucket       = "SHOP_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
