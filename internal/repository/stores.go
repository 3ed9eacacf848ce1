package repository

import (
	"context" // Request-scoped context

	"store_rating/internal/domain" // Domain models

	"gorm.io/gorm" // ORM
)

// StoreFilter narrows store listings by substring.
type StoreFilter struct {
	Name    string
	Email   string
	Address string
}

// StoreSummary is a store row with its owner name and rating aggregate.
type StoreSummary struct {
	ID            uint
	Name          string
	Email         *string
	Address       *string
	OwnerID       *uint
	OwnerName     *string
	AverageRating float64
	TotalRatings  int64
}

// UserStoreRow is a store as seen by a rating user: the aggregate plus the
// user's own rating, if any.
type UserStoreRow struct {
	ID            uint
	Name          string
	Address       *string
	AverageRating float64
	TotalRatings  int64
	UserRating    *int
	UserComment   *string
}

// StoreRepository defines store data operations.
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	FindByID(ctx context.Context, id uint) (*domain.Store, error)
	FindByOwner(ctx context.Context, ownerID uint) (*domain.Store, error)
	ListSummaries(ctx context.Context, filter StoreFilter) ([]StoreSummary, error)
	ListForUser(ctx context.Context, userID uint, filter StoreFilter) ([]UserStoreRow, error)
	Count(ctx context.Context) (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new StoreRepository instance.
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *domain.Store) error {
	return translate("create store", r.db.WithContext(ctx).Omit("Owner").Create(store).Error)
}

func (r *storeRepository) FindByID(ctx context.Context, id uint) (*domain.Store, error) {
	var store domain.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		return nil, translate("find store by id", err)
	}
	return &store, nil
}

// FindByOwner returns the owner's first store by id.
func (r *storeRepository) FindByOwner(ctx context.Context, ownerID uint) (*domain.Store, error) {
	var store domain.Store
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").First(&store).Error; err != nil {
		return nil, translate("find store by owner", err)
	}
	return &store, nil
}

func (r *storeRepository) ListSummaries(ctx context.Context, filter StoreFilter) ([]StoreSummary, error) {
	q := r.db.WithContext(ctx).
		Table("stores AS s").
		Select("s.id, s.name, s.email, s.address, s.owner_id, u.name AS owner_name, " +
			"COALESCE(AVG(r.rating), 0) AS average_rating, COUNT(r.id) AS total_ratings").
		Joins("LEFT JOIN users u ON u.id = s.owner_id").
		Joins("LEFT JOIN ratings r ON r.store_id = s.id")
	q = whereContains(q, "s.name", filter.Name)
	q = whereContains(q, "s.email", filter.Email)
	q = whereContains(q, "s.address", filter.Address)

	rows := []StoreSummary{}
	err := q.Group("s.id, s.name, s.email, s.address, s.owner_id, u.name").
		Order("s.name ASC").Order("s.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("list stores", err)
	}
	return rows, nil
}

func (r *storeRepository) ListForUser(ctx context.Context, userID uint, filter StoreFilter) ([]UserStoreRow, error) {
	q := r.db.WithContext(ctx).
		Table("stores AS s").
		Select("s.id, s.name, s.address, " +
			"COALESCE(AVG(r.rating), 0) AS average_rating, COUNT(r.id) AS total_ratings, " +
			"ur.rating AS user_rating, ur.comment AS user_comment").
		Joins("LEFT JOIN ratings r ON r.store_id = s.id").
		Joins("LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = ?", userID)
	q = whereContains(q, "s.name", filter.Name)
	q = whereContains(q, "s.address", filter.Address)

	rows := []UserStoreRow{}
	err := q.Group("s.id, s.name, s.address, ur.rating, ur.comment").
		Order("s.name ASC").Order("s.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("list stores for user", err)
	}
	return rows, nil
}

func (r *storeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Store{}).Count(&n).Error
	return n, translate("count stores", err)
}
