package models

type Configuration struct {
	App      AppConfiguration      `mapstructure:"app"      validate:"required"`
	Store    StoreConfiguration    `mapstructure:"store"    validate:"required"`
	Identity IdentityConfiguration `mapstructure:"identity" validate:"required"`
	Delivery DeliveryConfiguration `mapstructure:"delivery" validate:"required"`
}

type AppConfiguration struct {
	LogLevel       string   `mapstructure:"log_level"       validate:"oneof=debug info warn error fatal panic"`
	Port           int      `mapstructure:"port"            validate:"gte=80,lte=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required"`
}

type StoreConfiguration struct {
	Redis RedisStoreConfiguration `mapstructure:"redis" validate:"required"`
}

type RedisStoreConfiguration struct {
	Hosts         []string `mapstructure:"hosts" validate:"required,min=1"`
	Password      string   `mapstructure:"password"`
	TLSEnabled    bool     `mapstructure:"tls_enabled"`
	TLSServerName string   `mapstructure:"tls_server_name"`
}

type IdentityConfiguration struct {
	Type    string                        `mapstructure:"type"    validate:"required,oneof=cognito http"`
	Cognito *CognitoIdentityConfiguration `mapstructure:"cognito" validate:"required_if=Type cognito"`
	HTTP    *HTTPIdentityConfiguration    `mapstructure:"http"    validate:"required_if=Type http"`
}

type CognitoIdentityConfiguration struct {
	UserPoolID string `mapstructure:"user_pool_id" validate:"required"`
	ClientID   string `mapstructure:"client_id"    validate:"required"`
	Region     string `mapstructure:"region"`
}

type HTTPIdentityConfiguration struct {
	BaseURL string `mapstructure:"base_url" validate:"required,http_url"`
	APIKey  string `mapstructure:"api_key"  validate:"required"`
}

type DeliveryConfiguration struct {
	// Channels lists the enabled delivery channels: sms, email, filesystem.
	// Channel-specific sections are checked by the delivery factory.
	Channels   []string                         `mapstructure:"channels" validate:"required,min=1,dive,oneof=sms email filesystem"`
	SMTP       *SMTPDeliveryConfiguration       `mapstructure:"smtp"     validate:"omitempty"`
	SNS        *SNSDeliveryConfiguration        `mapstructure:"sns"      validate:"omitempty"`
	Filesystem *FilesystemDeliveryConfiguration `mapstructure:"filesystem" validate:"omitempty"`
	// TestIdentities are phone numbers that receive the fixed well-known
	// passcode and no real dispatch. Must stay empty in production.
	TestIdentities []string `mapstructure:"test_identities"`
	// PrivilegedGroup marks accounts whose SMS channel is suppressed during
	// login; matching is by group-name substring.
	PrivilegedGroup string `mapstructure:"privileged_group"`
}

type SMTPDeliveryConfiguration struct {
	Host          string `mapstructure:"host"            validate:"required"`
	Port          int    `mapstructure:"port"            validate:"gte=1,lte=65535"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	FromAddress   string `mapstructure:"from_address"    validate:"required,email"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
	SkipVerifyTLS bool   `mapstructure:"skip_verify_tls"`
}

type SNSDeliveryConfiguration struct {
	Region string `mapstructure:"region"`
}

type FilesystemDeliveryConfiguration struct {
	Directory string `mapstructure:"directory" validate:"required"`
}
