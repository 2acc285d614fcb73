package service

import (
	"strings"

	"standards-check-be/internal/faults"
)

const (
	credentialPrefix = "nvapi-"
	credentialLength = 70
)

// ValidateCredential checks the API credential's shape: fixed prefix, fixed
// total length. A cheap guard before any resource access, not an
// authentication system.
func ValidateCredential(key string) error {
	if !strings.HasPrefix(key, credentialPrefix) || len(key) != credentialLength {
		return faults.CredentialInvalid("api key verify failed")
	}
	return nil
}
