package auth

import "context"

// APIKeyInfo describes a provisioned API key. The raw key is never stored;
// only its HMAC-SHA256 hash.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository provides API key lookups.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
