package repository

import (
	"context" // Request-scoped context
	"time"    // Rating timestamps

	"store_rating/internal/domain" // Domain models

	"gorm.io/gorm"        // ORM
	"gorm.io/gorm/clause" // ON CONFLICT upsert
)

// RatingStats is the count and mean of a set of ratings; Average is 0 when
// Total is 0.
type RatingStats struct {
	Total   int64
	Average float64
}

// OwnerRatingRow is a rating on an owner's store with the author's name.
type OwnerRatingRow struct {
	ID        uint
	StoreID   uint
	Rating    int
	Comment   *string
	CreatedAt time.Time
	UserName  string
}

// RatingRepository defines rating data operations.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *domain.Rating) (bool, error)
	StatsForStore(ctx context.Context, storeID uint) (RatingStats, error)
	StatsForOwner(ctx context.Context, ownerID uint) (RatingStats, error)
	ListForOwner(ctx context.Context, ownerID uint) ([]OwnerRatingRow, error)
	Count(ctx context.Context) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new RatingRepository instance.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert writes rating for its (UserID, StoreID) pair with a single
// INSERT .. ON CONFLICT DO UPDATE, so concurrent submissions can never
// produce a second row. On conflict only rating and comment change and
// created_at keeps its first value. The returned flag reports whether the
// row was new when the statement ran; rating is refreshed from the database.
func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.Rating) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.Rating{}).
			Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).
			Count(&existing).Error; err != nil {
			return err
		}
		created = existing == 0

		row := domain.Rating{
			UserID:  rating.UserID,
			StoreID: rating.StoreID,
			Rating:  rating.Rating,
			Comment: rating.Comment,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment"}),
		}).Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}

		var stored domain.Rating
		if err := tx.Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).First(&stored).Error; err != nil {
			return err
		}
		*rating = stored
		return nil
	})
	if err != nil {
		return false, translate("upsert rating", err)
	}
	return created, nil
}

func (r *ratingRepository) StatsForStore(ctx context.Context, storeID uint) (RatingStats, error) {
	var stats RatingStats
	err := r.db.WithContext(ctx).Model(&domain.Rating{}).
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average").
		Where("store_id = ?", storeID).
		Scan(&stats).Error
	return stats, translate("store rating stats", err)
}

func (r *ratingRepository) StatsForOwner(ctx context.Context, ownerID uint) (RatingStats, error) {
	var stats RatingStats
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("COUNT(r.id) AS total, COALESCE(AVG(r.rating), 0) AS average").
		Joins("JOIN stores s ON s.id = r.store_id").
		Where("s.owner_id = ?", ownerID).
		Scan(&stats).Error
	return stats, translate("owner rating stats", err)
}

// ListForOwner returns ratings on every store of ownerID, newest first.
func (r *ratingRepository) ListForOwner(ctx context.Context, ownerID uint) ([]OwnerRatingRow, error) {
	rows := []OwnerRatingRow{}
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("r.id, r.store_id, r.rating, r.comment, r.created_at, u.name AS user_name").
		Joins("JOIN users u ON u.id = r.user_id").
		Joins("JOIN stores s ON s.id = r.store_id").
		Where("s.owner_id = ?", ownerID).
		Order("r.created_at DESC").Order("r.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("list owner ratings", err)
	}
	return rows, nil
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Rating{}).Count(&n).Error
	return n, translate("count ratings", err)
}
