package otp

import (
	"crypto/rand"
	"fmt"

	"github.com/stepauth/stepauth/internal/configuration"
)

// Generator produces short numeric passcodes. Allow-listed test identities
// receive a fixed well-known code so end-to-end tests stay deterministic;
// callers must skip dispatch for those identities.
type Generator struct {
	testIdentities map[string]struct{}
}

func NewGenerator(testIdentities []string) *Generator {
	set := make(map[string]struct{}, len(testIdentities))
	for _, id := range testIdentities {
		set[id] = struct{}{}
	}
	return &Generator{testIdentities: set}
}

// IsTestIdentity reports whether the identity is on the configured
// fixed-code allow-list.
func (g *Generator) IsTestIdentity(identity string) bool {
	_, ok := g.testIdentities[identity]
	return ok
}

// Generate returns a passcode for the given identity: the fixed test code
// for allow-listed identities, otherwise a fresh random code.
func (g *Generator) Generate(identity string) (string, error) {
	if g.IsTestIdentity(identity) {
		return configuration.TestIdentityOTP, nil
	}
	return Random(configuration.OTPLength)
}

// Random draws a numeric code of the given length from crypto/rand, each
// digit uniform over 0-9. Rejection sampling keeps the distribution flat.
func Random(length int) (string, error) {
	code := make([]byte, length)
	buf := make([]byte, 1)
	for i := 0; i < length; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		// 250 is the largest multiple of 10 below 256.
		if buf[0] >= 250 {
			continue
		}
		code[i] = '0' + buf[0]%10
		i++
	}
	return string(code), nil
}
