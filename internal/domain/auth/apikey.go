// Package auth holds the admin API key model. Keys are stored as
// HMAC-SHA256 hashes; the raw key never touches the database.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Admin scopes carried by API keys.
const (
	ScopeAdmin   = "admin"
	ScopeCatalog = "catalog"
	ScopeOrders  = "orders"
	ScopeContent = "content"
)

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key carries the given scope. The admin scope
// implies every other scope.
func (k *APIKeyInfo) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == ScopeAdmin {
			return true
		}
	}
	return false
}

// HashKey computes the hex HMAC-SHA256 of a raw API key under the given
// pepper. Used both for storage and for lookup at request time.
func HashKey(rawKey string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(rawKey))
	return hex.EncodeToString(mac.Sum(nil))
}

// Repository provides lookup of active API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
