package service

import (
	"context" // Request-scoped context
	"errors"  // Error matching
	"math"    // Rounding

	"store_rating/internal/domain"     // Domain models
	"store_rating/internal/repository" // Data access
	"store_rating/internal/utils"      // Cache

	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/sync/errgroup" // Concurrent counts
)

// DashboardStats holds the admin dashboard totals
type DashboardStats struct {
	TotalUsers   int64
	TotalStores  int64
	TotalRatings int64
}

// OwnerDashboard is a store owner's store with its rating aggregate
type OwnerDashboard struct {
	Store         *domain.Store
	TotalRatings  int64
	AverageRating float64
}

// ReportService serves read-only aggregate views for every role
type ReportService struct {
	users   repository.UserRepository
	stores  repository.StoreRepository
	ratings repository.RatingRepository
	cache   *utils.Cache
}

// NewReportService wires a ReportService
func NewReportService(users repository.UserRepository, stores repository.StoreRepository,
	ratings repository.RatingRepository, cache *utils.Cache) *ReportService {
	return &ReportService{users: users, stores: stores, ratings: ratings, cache: cache}
}

// round2 rounds an average to two decimals
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DashboardStats counts users, stores and ratings concurrently
func (s *ReportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.stores.Count(gctx)
		stats.TotalStores = n
		return err
	})
	g.Go(func() error {
		n, err := s.ratings.Count(gctx)
		stats.TotalRatings = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers returns users matching filter ordered by name. The bool
// reports whether the result came from the cache.
func (s *ReportService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, bool, error) {
	key := cacheKey("users",
		"name", filter.Name,
		"email", filter.Email,
		"address", filter.Address,
		"role", string(filter.Role),
	)
	var users []domain.User
	if found := s.cached(ctx, key, &users); found {
		return users, true, nil
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, key, users)
	return users, false, nil
}

// ListStores returns stores matching filter with owner name and rating
// aggregate, ordered by name. The bool reports a cache hit.
func (s *ReportService) ListStores(ctx context.Context, filter repository.StoreFilter) ([]repository.StoreSummary, bool, error) {
	key := cacheKey("stores",
		"name", filter.Name,
		"email", filter.Email,
		"address", filter.Address,
	)
	var rows []repository.StoreSummary
	if found := s.cached(ctx, key, &rows); found {
		return rows, true, nil
	}

	rows, err := s.stores.ListSummaries(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	for i := range rows {
		rows[i].AverageRating = round2(rows[i].AverageRating)
	}
	s.store(ctx, key, rows)
	return rows, false, nil
}

// StoresForUser lists every store with its aggregate and the caller's own rating
func (s *ReportService) StoresForUser(ctx context.Context, userID uint, filter repository.StoreFilter) ([]repository.UserStoreRow, error) {
	rows, err := s.stores.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AverageRating = round2(rows[i].AverageRating)
	}
	return rows, nil
}

// OwnerDashboard returns the owner's store with totals; averages are 0
// while the store has no ratings.
func (s *ReportService) OwnerDashboard(ctx context.Context, ownerID uint) (*OwnerDashboard, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No store found for this owner")
		}
		return nil, err
	}
	stats, err := s.ratings.StatsForStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	return &OwnerDashboard{
		Store:         store,
		TotalRatings:  stats.Total,
		AverageRating: round2(stats.Average),
	}, nil
}

// OwnerRatings lists ratings on the owner's stores, newest first
func (s *ReportService) OwnerRatings(ctx context.Context, ownerID uint) ([]repository.OwnerRatingRow, error) {
	return s.ratings.ListForOwner(ctx, ownerID)
}

// OwnerAverage is the mean rating across every store of the owner
func (s *ReportService) OwnerAverage(ctx context.Context, ownerID uint) (float64, error) {
	stats, err := s.ratings.StatsForOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return round2(stats.Average), nil
}

// cached reads key into dest; cache errors count as a miss
func (s *ReportService) cached(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return found
}

func (s *ReportService) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
