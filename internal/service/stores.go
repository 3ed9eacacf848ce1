package service

import (
	"context" // Request-scoped context
	"errors"  // Error matching
	"strings" // Input normalisation

	"store_rating/internal/domain"     // Domain models
	"store_rating/internal/repository" // Data access
	"store_rating/internal/utils"      // Cache

	"github.com/sirupsen/logrus" // Structured logging
)

// CreateStoreInput carries the admin add-store fields
type CreateStoreInput struct {
	Name    string
	Email   string
	Address string
	OwnerID *uint
}

// StoreService manages stores on behalf of admins
type StoreService struct {
	users  repository.UserRepository
	stores repository.StoreRepository
	cache  *utils.Cache
}

// NewStoreService wires a StoreService
func NewStoreService(users repository.UserRepository, stores repository.StoreRepository, cache *utils.Cache) *StoreService {
	return &StoreService{users: users, stores: stores, cache: cache}
}

// CreateStore adds a store. When an owner is given it must be an existing
// store_owner account.
func (s *StoreService) CreateStore(ctx context.Context, in CreateStoreInput) (*domain.Store, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("Store name is required")
	}

	ownerID := in.OwnerID
	if ownerID != nil && *ownerID == 0 {
		ownerID = nil // 0 means no owner
	}
	if ownerID != nil {
		owner, err := s.users.FindByID(ctx, *ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Validation("Owner not found")
			}
			return nil, err
		}
		if owner.Role != domain.RoleStoreOwner {
			return nil, domain.Validation("Owner must have role store_owner")
		}
	}

	store := &domain.Store{
		Name:    name,
		Email:   optional(in.Email),
		Address: optional(in.Address),
		OwnerID: ownerID,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}

	invalidateAdminCache(ctx, s.cache)
	entry := logrus.WithField("store_id", store.ID)
	if ownerID != nil {
		entry = entry.WithField("owner_id", *ownerID)
	}
	entry.Info("Store created")
	return store, nil
}

// optional maps blank strings to NULL
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
