// Package settings provides typed access to the store's key-value settings:
// shipping rates, general store info, and contact details.
package settings

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/wickandwax/storefront/internal/domain/shipping"
)

// ErrNotFound is returned when a requested setting key has no stored value.
var ErrNotFound = errors.New("setting not found")

// Shipping setting keys, consulted whenever a subtotal is displayed or finalized.
const (
	KeyShippingCost          = "shippingCost"
	KeyFreeShippingThreshold = "freeShippingThreshold"
)

// Named key groups backing the grouped settings endpoints.
var Groups = map[string][]string{
	"general": {"storeName", "tagline", "currency", "logoUrl"},
	"contact": {"contactEmail", "contactPhone", "address", "instagram", "facebook"},
}

// Repository defines persistence operations for key-value settings.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context, keys []string) (map[string]string, error)
	SetAll(ctx context.Context, values map[string]string) error
}

// Service reads and writes settings through the repository.
type Service struct {
	repo Repository
}

// NewService creates a settings Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ShippingRates loads the two shipping settings and parses them, falling
// back to the documented defaults for missing or malformed values.
func (s *Service) ShippingRates(ctx context.Context) (shipping.Rates, error) {
	values, err := s.repo.GetAll(ctx, []string{KeyShippingCost, KeyFreeShippingThreshold})
	if err != nil {
		return shipping.Rates{}, errors.Wrap(err, "load shipping settings")
	}
	return shipping.ParseRates(values[KeyShippingCost], values[KeyFreeShippingThreshold]), nil
}

// Group returns the stored values for a named group. Keys with no stored
// value are returned as empty strings so the admin form renders every field.
func (s *Service) Group(ctx context.Context, name string) (map[string]string, error) {
	keys, ok := Groups[name]
	if !ok {
		return nil, ErrNotFound
	}
	stored, err := s.repo.GetAll(ctx, keys)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s settings", name)
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = stored[k]
	}
	return out, nil
}

// SetGroup stores values for a named group, ignoring keys outside it.
func (s *Service) SetGroup(ctx context.Context, name string, values map[string]string) error {
	keys, ok := Groups[name]
	if !ok {
		return ErrNotFound
	}
	allowed := make(map[string]string, len(values))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			allowed[k] = v
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	return s.repo.SetAll(ctx, allowed)
}

// Get returns a single setting value.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, key)
}

// Set stores a single setting value.
func (s *Service) Set(ctx context.Context, key, value string) error {
	return s.repo.SetAll(ctx, map[string]string{key: value})
}
