package utils

import "github.com/google/uuid"

// GenerateInviteToken returns an opaque unguessable invite token.
func GenerateInviteToken() string {
	return uuid.NewString()
}
