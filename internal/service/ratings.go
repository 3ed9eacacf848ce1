package service

import (
	"context" // Request-scoped context
	"errors"  // Error matching
	"strings" // Comment trimming

	"store_rating/internal/domain"     // Domain models
	"store_rating/internal/metrics"    // Prometheus counters
	"store_rating/internal/repository" // Data access
	"store_rating/internal/utils"      // Cache

	"github.com/sirupsen/logrus" // Structured logging
)

// SubmitResult reports the stored rating and whether the submission
// created it. Created is informational only.
type SubmitResult struct {
	Rating  *domain.Rating
	Created bool
}

// RatingService handles rating submissions by normal users
type RatingService struct {
	stores  repository.StoreRepository
	ratings repository.RatingRepository
	cache   *utils.Cache
}

// NewRatingService wires a RatingService
func NewRatingService(stores repository.StoreRepository, ratings repository.RatingRepository, cache *utils.Cache) *RatingService {
	return &RatingService{stores: stores, ratings: ratings, cache: cache}
}

// Submit creates or replaces the rating of userID for storeID. A second
// submission for the same pair overwrites rating and comment in place.
func (s *RatingService) Submit(ctx context.Context, userID, storeID uint, value int, comment *string) (*SubmitResult, error) {
	if storeID == 0 || value == 0 {
		return nil, domain.Validation("Store ID and rating required")
	}
	if !domain.ValidRating(value) {
		return nil, domain.Validation("Rating must be between 1 and 5")
	}
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Store not found")
		}
		return nil, err
	}

	rating := &domain.Rating{
		UserID:  userID,
		StoreID: storeID,
		Rating:  value,
		Comment: normalizeComment(comment), // Empty comments are stored as NULL
	}
	created, err := s.ratings.Upsert(ctx, rating)
	if err != nil {
		return nil, err
	}

	result := "updated"
	if created {
		result = "created"
	}
	metrics.RatingsSubmittedTotal.WithLabelValues(result).Inc()
	invalidateAdminCache(ctx, s.cache) // Averages in the admin store list changed
	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"store_id": storeID,
		"rating":   value,
		"result":   result,
	}).Info("Rating stored")

	return &SubmitResult{Rating: rating, Created: created}, nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
