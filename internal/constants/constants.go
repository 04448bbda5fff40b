package constants

import "time"

// ContextKeyIdentity is the gin context key holding the resolved request identity.
const ContextKeyIdentity = "identity"

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 6

// TokenLifetime is how long an issued access token stays valid.
const TokenLifetime = 30 * 24 * time.Hour

// Pagination bounds for list endpoints.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
