package configuration

const AppName = "stepauth"

// Challenge step tags carried in challengeMetadata. These values are a wire
// contract with the identity pipeline and the login frontend.
const (
	StepSelectAuthFlow    = "SELECT_AUTH_FLOW"
	StepPasswordChallenge = "PASSWORD_CHALLENGE"
	StepOTPChallenge      = "OTP_CHALLENGE"
)

// CustomChallengeName is the challenge name the pipeline assigns to every
// round owned by this service.
const CustomChallengeName = "CUSTOM_CHALLENGE"

// ResendSentinel is the reserved challenge answer that requests a new code
// instead of answering the current one.
const ResendSentinel = "RESEND_OTP"

const (
	// MaxOTPResend is the hard cap on accepted resend requests per login.
	MaxOTPResend = 4
	// OTPLength is the number of digits in a generated passcode.
	OTPLength = 4
	// TestIdentityOTP is the fixed passcode returned for allow-listed test
	// identities. Dispatch is skipped entirely for those identities.
	TestIdentityOTP = "1234"
)

const (
	// ResetOTPTTLSeconds bounds the lifetime of a password-reset record.
	ResetOTPTTLSeconds = 300
	// MinPasswordLength is the local policy floor for a new credential.
	// The identity backend applies its own, stricter policy on top.
	MinPasswordLength = 8
)

// State store key formats.
const (
	StoreSessionKey = "auth:session:%s"
	StoreResetKey   = "auth:reset:%s"
)

// Event topics.
const (
	EventsAuth = "auth_events"
)

var ArrayConfigFields = []string{
	"app.allowed_origins",
	"store.redis.hosts",
	"delivery.channels",
	"delivery.test_identities",
}

var ConfigFileSearchPaths = []string{
	"config.yaml",
	"/etc/stepauth/config.yaml",
}
